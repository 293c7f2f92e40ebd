package cli

import (
	"fmt"
	"strings"

	"github.com/erpacad/erpacad/internal/contract"
	"github.com/erpacad/erpacad/internal/domain"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// keyFlags identifies a plan: board, grade, subject and chapter.
type keyFlags struct {
	board   string
	grade   string
	subject string
	chapter string
}

type keyFlagOpts struct {
	board   bool
	chapter bool
}

// flagSet builds the shared identification flags. The board flag is only
// offered where the session board may be overridden.
func (f *keyFlags) flagSet(defaultBoard string, opts keyFlagOpts) *pflag.FlagSet {
	fs := pflag.NewFlagSet("key", pflag.ContinueOnError)
	if opts.board {
		fs.StringVar(&f.board, "board", defaultBoard, "Curriculum board")
	}
	fs.StringVar(&f.grade, "grade", "", "Class: NURSERY, LKG, UKG or 1-12")
	fs.StringVar(&f.subject, "subject", "", "Subject name as it appears in the dataset")
	if opts.chapter {
		fs.StringVar(&f.chapter, "chapter", "", "Chapter name")
	}
	return fs
}

// bind adds the flags to cmd and marks grade, subject and chapter required.
func (f *keyFlags) bind(cmd *cobra.Command, defaultBoard string, opts keyFlagOpts) {
	cmd.Flags().AddFlagSet(f.flagSet(defaultBoard, opts))
	_ = cmd.MarkFlagRequired("grade")
	_ = cmd.MarkFlagRequired("subject")
	if opts.chapter {
		_ = cmd.MarkFlagRequired("chapter")
	}
}

func (f *keyFlags) parseGrade() (domain.Grade, error) {
	return domain.ParseGrade(f.grade)
}

func (f *keyFlags) chapterKey() (domain.ChapterKey, error) {
	g, err := f.parseGrade()
	if err != nil {
		return domain.ChapterKey{}, err
	}
	if strings.TrimSpace(f.chapter) == "" {
		return domain.ChapterKey{}, fmt.Errorf("--chapter is required")
	}
	return domain.ChapterKey{Grade: g, Subject: f.subject, Chapter: f.chapter}, nil
}

func (f *keyFlags) approvalKey() (domain.ApprovalKey, error) {
	ck, err := f.chapterKey()
	if err != nil {
		return domain.ApprovalKey{}, err
	}
	return domain.KeyFor(f.board, ck), nil
}

// planFlags adds the allocation inputs to the key flags.
type planFlags struct {
	keyFlags
	days    int
	budget  int
	unit    string
	weights string
}

func (f *planFlags) bind(cmd *cobra.Command, defaultBoard string, opts keyFlagOpts) {
	f.keyFlags.bind(cmd, defaultBoard, opts)
	fs := pflag.NewFlagSet("plan", pflag.ContinueOnError)
	fs.IntVar(&f.days, "days", contract.DefaultWorkingDays, "Working days in the academic year")
	fs.IntVar(&f.budget, "budget", 0, "Teaching units to allocate; overrides --days")
	fs.StringVar(&f.unit, "unit", string(domain.UnitPeriod), "Unit of instruction: period or day")
	fs.StringVar(&f.weights, "weights", "", "Weight mode: outcomes (default) or band_constant")
	cmd.Flags().AddFlagSet(fs)
}

func (f *planFlags) request() (contract.AnnualPlanRequest, error) {
	g, err := f.parseGrade()
	if err != nil {
		return contract.AnnualPlanRequest{}, err
	}
	kind, err := domain.ParseUnitKind(f.unit)
	if err != nil {
		return contract.AnnualPlanRequest{}, err
	}
	if f.budget < 0 {
		return contract.AnnualPlanRequest{}, fmt.Errorf("--budget must not be negative")
	}
	if f.days <= 0 {
		return contract.AnnualPlanRequest{}, fmt.Errorf("--days must be positive")
	}
	req := contract.NewAnnualPlanRequest(g, f.subject)
	req.Board = f.board
	req.WorkingDays = f.days
	req.Budget = f.budget
	req.UnitKind = kind
	req.WeightMode = f.weights
	return req, nil
}

func (f *planFlags) openRequest() (contract.OpenChapterRequest, error) {
	req, err := f.request()
	if err != nil {
		return contract.OpenChapterRequest{}, err
	}
	if _, err := f.chapterKey(); err != nil {
		return contract.OpenChapterRequest{}, err
	}
	return contract.OpenChapterRequest{Plan: req, Chapter: f.chapter}, nil
}
