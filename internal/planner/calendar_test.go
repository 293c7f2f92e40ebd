package planner

import (
	"testing"
	"time"

	"github.com/erpacad/erpacad/internal/config"
	"github.com/erpacad/erpacad/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var unitTime = time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)

func TestCalendarBudget_Periods(t *testing.T) {
	c := NewCalendar(config.DefaultPolicy())

	a, err := c.Budget(200, domain.UnitPeriod)
	require.NoError(t, err)
	assert.Equal(t, Allocation{
		Kind:       domain.UnitPeriod,
		Total:      1600,
		Teaching:   1040,
		Revision:   160,
		Assessment: 160,
		Exams:      160,
		Buffer:     80,
	}, a)
}

func TestCalendarBudget_Days(t *testing.T) {
	c := NewCalendar(config.DefaultPolicy())

	a, err := c.Budget(200, domain.UnitDay)
	require.NoError(t, err)
	assert.Equal(t, 200, a.Total)
	assert.Equal(t, 130, a.Teaching)
	assert.Equal(t, 10, a.Buffer)
}

func TestCalendarBudget_Invalid(t *testing.T) {
	c := NewCalendar(config.DefaultPolicy())

	_, err := c.Budget(0, domain.UnitPeriod)
	assert.ErrorIs(t, err, domain.ErrInvalidBudget)

	_, err = c.Budget(1, domain.UnitDay)
	assert.ErrorIs(t, err, domain.ErrInvalidBudget, "one day leaves no teaching units")
}

func TestUnitsPerWeek(t *testing.T) {
	c := NewCalendar(config.DefaultPolicy())
	assert.Equal(t, 4, c.UnitsPerWeek(4, domain.UnitPeriod))
	assert.Equal(t, 6, c.UnitsPerWeek(4, domain.UnitDay))
}

func TestApproxWeeks(t *testing.T) {
	assert.Equal(t, 2.2, ApproxWeeks(11, 5))
	assert.Equal(t, 3.3, ApproxWeeks(13, 4))
	assert.Equal(t, 2.0, ApproxWeeks(10, 5))
	assert.Equal(t, 0.0, ApproxWeeks(10, 0))
}
