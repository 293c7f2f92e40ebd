// Package curriculum loads the tabular curriculum dataset and exposes the
// per-chapter views the planner needs.
package curriculum

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/erpacad/erpacad/internal/domain"
)

// Row is one (grade, subject, chapter, learning outcome) line.
type Row struct {
	Board           string
	Grade           domain.Grade
	Subject         string
	Chapter         string
	LearningOutcome string
}

// Dataset is an in-memory curriculum table. Row order is preserved and
// defines chapter order.
type Dataset struct {
	rows []Row
}

// columnAliases maps normalised header names onto canonical columns.
var columnAliases = map[string]string{
	"board":             "board",
	"grade":             "grade",
	"class":             "grade",
	"subject":           "subject",
	"chapter":           "chapter",
	"chapter name":      "chapter",
	"learning outcome":  "learning outcome",
	"learning outcomes": "learning outcome",
}

var requiredColumns = []string{"grade", "subject", "chapter", "learning outcome"}

// Load reads a tab-separated dataset file.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()
	ds, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", path, err)
	}
	return ds, nil
}

// Parse reads tab-separated rows with a header line. Header names are
// trimmed, lower-cased and underscores become spaces before matching.
func Parse(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty dataset")
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}

	idx := make(map[string]int)
	for i, h := range header {
		name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), "_", " ")
		if canon, ok := columnAliases[name]; ok {
			if _, dup := idx[canon]; !dup {
				idx[canon] = i
			}
		}
	}
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("required column missing: %s", col)
		}
	}

	ds := &Dataset{}
	var errs []error
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if isBlank(rec) {
			continue
		}
		row, err := toRow(rec, idx)
		if err != nil {
			errs = append(errs, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		ds.rows = append(ds.rows, row)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return ds, nil
}

// NewDataset builds a dataset from rows. Used by tests and importers.
func NewDataset(rows []Row) *Dataset {
	return &Dataset{rows: append([]Row(nil), rows...)}
}

func toRow(rec []string, idx map[string]int) (Row, error) {
	field := func(col string) string {
		i, ok := idx[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}
	grade, err := domain.ParseGrade(field("grade"))
	if err != nil {
		return Row{}, err
	}
	row := Row{
		Board:           field("board"),
		Grade:           grade,
		Subject:         field("subject"),
		Chapter:         field("chapter"),
		LearningOutcome: field("learning outcome"),
	}
	if row.Subject == "" {
		return Row{}, errors.New("subject is required")
	}
	if row.Chapter == "" {
		return Row{}, errors.New("chapter is required")
	}
	return row, nil
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// ForBoard narrows the dataset to one board. Rows without a board belong
// to every board; an empty board keeps all rows.
func (d *Dataset) ForBoard(board string) *Dataset {
	board = strings.TrimSpace(board)
	if board == "" {
		return d
	}
	out := &Dataset{}
	for _, r := range d.rows {
		if r.Board == "" || strings.EqualFold(r.Board, board) {
			out.rows = append(out.rows, r)
		}
	}
	return out
}

// CanonicalSubject returns the dataset's spelling of subject for a grade.
// Unknown subjects come back trimmed but otherwise unchanged.
func (d *Dataset) CanonicalSubject(grade domain.Grade, subject string) string {
	subject = strings.TrimSpace(subject)
	for _, r := range d.rows {
		if r.Grade == grade && strings.EqualFold(r.Subject, subject) {
			return r.Subject
		}
	}
	return subject
}

// CanonicalChapter returns the dataset's spelling of a chapter name.
func (d *Dataset) CanonicalChapter(grade domain.Grade, subject, chapter string) string {
	chapter = strings.TrimSpace(chapter)
	for _, c := range d.Chapters(grade, subject) {
		if strings.EqualFold(c, chapter) {
			return c
		}
	}
	return chapter
}

// Sample draws up to count distinct learning-outcome rows for the given
// chapters without replacement. No chapters means every chapter of the
// subject. Rows come back in draw order.
func (d *Dataset) Sample(grade domain.Grade, subject string, chapters []string, count int, rng *rand.Rand) []Row {
	want := make(map[string]bool, len(chapters))
	for _, c := range chapters {
		want[strings.ToLower(strings.TrimSpace(c))] = true
	}
	ok := d.match(grade, subject)
	var pool []Row
	for _, r := range d.rows {
		if !ok(r) || r.LearningOutcome == "" {
			continue
		}
		if len(want) > 0 && !want[strings.ToLower(r.Chapter)] {
			continue
		}
		pool = append(pool, r)
	}

	n := min(count, len(pool))
	for i := range n {
		j := i + rng.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:max(n, 0)]
}

func (d *Dataset) match(grade domain.Grade, subject string) func(Row) bool {
	return func(r Row) bool {
		return r.Grade == grade && strings.EqualFold(r.Subject, subject)
	}
}

// Subjects lists distinct subjects for a grade in first-seen order.
func (d *Dataset) Subjects(grade domain.Grade) []string {
	var out []string
	seen := make(map[string]bool)
	for _, r := range d.rows {
		k := strings.ToLower(r.Subject)
		if r.Grade == grade && !seen[k] {
			seen[k] = true
			out = append(out, r.Subject)
		}
	}
	return out
}

// Chapters lists distinct chapters for a grade and subject in first-seen order.
func (d *Dataset) Chapters(grade domain.Grade, subject string) []string {
	var out []string
	seen := make(map[string]bool)
	ok := d.match(grade, subject)
	for _, r := range d.rows {
		if ok(r) && !seen[r.Chapter] {
			seen[r.Chapter] = true
			out = append(out, r.Chapter)
		}
	}
	return out
}

// LearningOutcomes lists distinct non-empty outcomes of a chapter in first-seen order.
func (d *Dataset) LearningOutcomes(grade domain.Grade, subject, chapter string) []string {
	var out []string
	seen := make(map[string]bool)
	ok := d.match(grade, subject)
	for _, r := range d.rows {
		if !ok(r) || r.Chapter != chapter || r.LearningOutcome == "" || seen[r.LearningOutcome] {
			continue
		}
		seen[r.LearningOutcome] = true
		out = append(out, r.LearningOutcome)
	}
	return out
}

// Weight is the distinct learning-outcome count of a chapter.
func (d *Dataset) Weight(grade domain.Grade, subject, chapter string) int {
	return len(d.LearningOutcomes(grade, subject, chapter))
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return len(d.rows)
}
