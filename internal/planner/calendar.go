package planner

import (
	"fmt"
	"math"

	"github.com/erpacad/erpacad/internal/config"
	"github.com/erpacad/erpacad/internal/domain"
)

// Allocation is the calendar split of a year into blocks, in units.
type Allocation struct {
	Kind       domain.UnitKind
	Total      int
	Teaching   int
	Revision   int
	Assessment int
	Exams      int
	Buffer     int
}

// Calendar derives unit budgets from working days.
type Calendar struct {
	cal config.Calendar
}

func NewCalendar(policy *config.Policy) *Calendar {
	return &Calendar{cal: policy.Calendar}
}

// Budget splits workingDays into blocks. Period budgets count
// days × periods_per_day units; day budgets count days.
func (c *Calendar) Budget(workingDays int, kind domain.UnitKind) (Allocation, error) {
	if workingDays <= 0 {
		return Allocation{}, fmt.Errorf("%w: %d working days", domain.ErrInvalidBudget, workingDays)
	}
	total := workingDays
	if kind == domain.UnitPeriod {
		total = workingDays * c.cal.PeriodsPerDay
	}
	b := c.cal.Blocks
	a := Allocation{
		Kind:       kind,
		Total:      total,
		Teaching:   share(total, b.Teaching),
		Revision:   share(total, b.Revision),
		Assessment: share(total, b.Assessment),
		Exams:      share(total, b.Exams),
		Buffer:     share(total, b.Buffer),
	}
	if a.Teaching <= 0 {
		return Allocation{}, fmt.Errorf("%w: %d working days leave no teaching units", domain.ErrInvalidBudget, workingDays)
	}
	return a, nil
}

// UnitsPerWeek is how many units of a subject are taught per week.
func (c *Calendar) UnitsPerWeek(weeklyPeriods int, kind domain.UnitKind) int {
	if kind == domain.UnitDay {
		return c.cal.DaysPerWeek
	}
	return weeklyPeriods
}

// ApproxWeeks rounds units / perWeek to one decimal place.
func ApproxWeeks(units, perWeek int) float64 {
	if perWeek <= 0 {
		return 0
	}
	return math.Round(float64(units)/float64(perWeek)*10) / 10
}

// share floors total × fraction. The epsilon keeps 200×0.65 at 130.
func share(total int, fraction float64) int {
	return int(math.Floor(float64(total)*fraction + 1e-9))
}
