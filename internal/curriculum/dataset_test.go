package curriculum

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/erpacad/erpacad/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTSV = "Board\tGrade\tSubject\tChapter Name\tLearning Outcomes\n" +
	"CBSE\t8\tScience\tLight\tExplains reflection\n" +
	"CBSE\t8\tScience\tLight\tDraws ray diagrams\n" +
	"CBSE\t8\tScience\tLight\tExplains reflection\n" +
	"CBSE\t8\tScience\tSound\tRelates pitch to frequency\n" +
	"\t\t\t\t\n" +
	"CBSE\t8\tScience\tForce\t\n" +
	"CBSE\t8\tMathematics\tRational Numbers\tOrders rationals\n" +
	"CBSE\tLKG\tLiteracy\tSounds\tHears beginning sounds\n"

func TestParse_Views(t *testing.T) {
	ds, err := Parse(strings.NewReader(sampleTSV))
	require.NoError(t, err)
	assert.Equal(t, 7, ds.Len())

	assert.Equal(t, []string{"Light", "Sound", "Force"}, ds.Chapters(8, "Science"))
	assert.Equal(t, []string{"Light", "Sound", "Force"}, ds.Chapters(8, "science"), "subject match is case-insensitive")
	assert.Equal(t, []string{"Science", "Mathematics"}, ds.Subjects(8))

	assert.Equal(t, []string{"Explains reflection", "Draws ray diagrams"}, ds.LearningOutcomes(8, "Science", "Light"))
	assert.Equal(t, 2, ds.Weight(8, "Science", "Light"))
	assert.Equal(t, 1, ds.Weight(8, "Science", "Sound"))
	assert.Equal(t, 0, ds.Weight(8, "Science", "Force"))

	assert.Equal(t, []string{"Sounds"}, ds.Chapters(domain.GradeLKG, "Literacy"))
	assert.Empty(t, ds.Chapters(9, "Science"))
}

func TestParse_UnderscoreHeaders(t *testing.T) {
	doc := "grade\tsubject\tchapter\tlearning_outcome\n6\tEnglish\tA Letter\tReads aloud\n"
	ds, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, []string{"A Letter"}, ds.Chapters(6, "English"))
}

func TestParse_MissingColumn(t *testing.T) {
	_, err := Parse(strings.NewReader("grade\tsubject\tchapter name\n8\tScience\tLight\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "learning outcome")
}

func TestParse_BadRowsReportedWithLine(t *testing.T) {
	doc := "grade\tsubject\tchapter\tlearning outcome\n" +
		"eight\tScience\tLight\tX\n" +
		"8\t\tLight\tX\n"
	_, err := Parse(strings.NewReader(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
	assert.Contains(t, err.Error(), "line 3")
	assert.ErrorIs(t, err, domain.ErrUnknownGrade)
}

func TestParse_Empty(t *testing.T) {
	_, err := Parse(strings.NewReader(""))
	assert.Error(t, err)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "master.tsv")
	require.NoError(t, os.WriteFile(path, []byte(sampleTSV), 0o644))

	ds, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, ds.Len())

	_, err = Load(filepath.Join(t.TempDir(), "missing.tsv"))
	assert.Error(t, err)
}

func boardRows() *Dataset {
	return NewDataset([]Row{
		{Board: "CBSE", Grade: 8, Subject: "Science", Chapter: "Light", LearningOutcome: "Explains reflection"},
		{Board: "ICSE", Grade: 8, Subject: "Science", Chapter: "Matter", LearningOutcome: "Classifies mixtures"},
		{Board: "", Grade: 8, Subject: "Science", Chapter: "Safety", LearningOutcome: "Handles apparatus"},
	})
}

func TestForBoard(t *testing.T) {
	ds := boardRows()

	assert.Equal(t, []string{"Light", "Safety"}, ds.ForBoard("CBSE").Chapters(8, "Science"))
	assert.Equal(t, []string{"Matter", "Safety"}, ds.ForBoard(" icse ").Chapters(8, "Science"), "board match ignores case and padding")
	assert.Equal(t, []string{"Light", "Matter", "Safety"}, ds.ForBoard("").Chapters(8, "Science"))
	assert.Equal(t, []string{"Safety"}, ds.ForBoard("IB").Chapters(8, "Science"), "rows without a board serve every board")
	assert.Equal(t, 3, ds.Len(), "filtering leaves the source untouched")
}

func TestCanonicalNames(t *testing.T) {
	ds, err := Parse(strings.NewReader(sampleTSV))
	require.NoError(t, err)

	assert.Equal(t, "Science", ds.CanonicalSubject(8, " SCIENCE "))
	assert.Equal(t, "Geography", ds.CanonicalSubject(8, "Geography"), "unknown subjects pass through")
	assert.Equal(t, "Science", ds.CanonicalSubject(9, "Science"))
	assert.Equal(t, "science", ds.CanonicalSubject(9, "science"), "no row for the grade")

	assert.Equal(t, "Light", ds.CanonicalChapter(8, "science", "light"))
	assert.Equal(t, "Optics", ds.CanonicalChapter(8, "Science", " Optics "))
}

func TestSample(t *testing.T) {
	ds, err := Parse(strings.NewReader(sampleTSV))
	require.NoError(t, err)

	t.Run("same seed draws the same rows", func(t *testing.T) {
		first := ds.Sample(8, "Science", nil, 2, rand.New(rand.NewPCG(7, 7)))
		second := ds.Sample(8, "Science", nil, 2, rand.New(rand.NewPCG(7, 7)))
		require.Len(t, first, 2)
		assert.Equal(t, first, second)
	})

	t.Run("count above the pool returns every outcome row once", func(t *testing.T) {
		got := ds.Sample(8, "Science", nil, 50, rand.New(rand.NewPCG(1, 2)))
		// Force has no outcome and is never drawn.
		require.Len(t, got, 4)
		outcomes := make([]string, 0, len(got))
		for _, r := range got {
			outcomes = append(outcomes, r.LearningOutcome)
		}
		assert.ElementsMatch(t, []string{
			"Explains reflection", "Draws ray diagrams", "Explains reflection", "Relates pitch to frequency",
		}, outcomes)
	})

	t.Run("chapter filter ignores case", func(t *testing.T) {
		got := ds.Sample(8, "science", []string{"sound"}, 5, rand.New(rand.NewPCG(3, 3)))
		require.Len(t, got, 1)
		assert.Equal(t, "Sound", got[0].Chapter)
	})

	t.Run("non-positive count draws nothing", func(t *testing.T) {
		assert.Empty(t, ds.Sample(8, "Science", nil, 0, rand.New(rand.NewPCG(1, 1))))
		assert.Empty(t, ds.Sample(8, "Science", nil, -3, rand.New(rand.NewPCG(1, 1))))
	})

	t.Run("unknown chapter draws nothing", func(t *testing.T) {
		assert.Empty(t, ds.Sample(8, "Science", []string{"Optics"}, 3, rand.New(rand.NewPCG(1, 1))))
	})
}
