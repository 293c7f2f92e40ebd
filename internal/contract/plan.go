package contract

import "github.com/erpacad/erpacad/internal/domain"

// DefaultWorkingDays is used when neither a budget nor working days are given.
const DefaultWorkingDays = 200

type AnnualPlanRequest struct {
	Board   string
	Grade   domain.Grade
	Subject string

	// WorkingDays derives the budget through the calendar. Ignored when
	// Budget is set.
	WorkingDays int
	Budget      int

	UnitKind   domain.UnitKind
	WeightMode string
}

func NewAnnualPlanRequest(grade domain.Grade, subject string) AnnualPlanRequest {
	return AnnualPlanRequest{
		Grade:       grade,
		Subject:     subject,
		WorkingDays: DefaultWorkingDays,
		UnitKind:    domain.UnitPeriod,
	}
}

// CalendarBlocks is the non-teaching share of the calendar, in units.
type CalendarBlocks struct {
	Total      int
	Revision   int
	Assessment int
	Exams      int
	Buffer     int
}

type PlannedChapterView struct {
	Chapter       string
	Weight        int
	RequiredUnits int
	ApproxWeeks   float64
	Locked        bool
}

type AnnualPlanResponse struct {
	Board       string
	Grade       domain.Grade
	Subject     string
	Band        domain.Band
	UnitKind    domain.UnitKind
	WorkingDays int

	// Budget is the teaching budget the chapters sum to.
	Budget int

	// BudgetDerived is false when the caller supplied the budget directly;
	// Blocks is then nil.
	BudgetDerived bool
	Blocks        *CalendarBlocks

	WeeklySubject string
	UnitsPerWeek  int

	Chapters []PlannedChapterView
}

// TotalUnits sums RequiredUnits across chapters.
func (r *AnnualPlanResponse) TotalUnits() int {
	total := 0
	for _, c := range r.Chapters {
		total += c.RequiredUnits
	}
	return total
}
