package domain

// ChapterWeight is a numeric proxy for a chapter's instructional complexity.
// Derived from the dataset on every planning run; never persisted.
type ChapterWeight struct {
	ChapterID string
	Weight    int
}

// PlannedChapter is one row of an annual plan.
type PlannedChapter struct {
	ChapterID     string
	RequiredUnits int
}

// AnnualPlan distributes a fixed unit budget across the chapters of one
// grade and subject. Chapters keep dataset order.
type AnnualPlan struct {
	Grade       Grade
	Subject     string
	Band        Band
	TotalBudget int
	Chapters    []PlannedChapter
}

// TotalUnits sums RequiredUnits across chapters.
func (p *AnnualPlan) TotalUnits() int {
	total := 0
	for _, c := range p.Chapters {
		total += c.RequiredUnits
	}
	return total
}

// Chapter returns the plan entry for chapterID.
func (p *AnnualPlan) Chapter(chapterID string) (PlannedChapter, bool) {
	for _, c := range p.Chapters {
		if c.ChapterID == chapterID {
			return c, true
		}
	}
	return PlannedChapter{}, false
}
