package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrBudgetTooSmall means the budget cannot grant every chapter its
	// band minimum. Plan generation aborts; nothing partial is returned.
	ErrBudgetTooSmall = errors.New("budget too small for chapter minimums")

	// ErrNoChapters means there was nothing to allocate.
	ErrNoChapters = errors.New("no chapters to allocate")

	// ErrInvalidBudget means the budget is not a positive integer.
	ErrInvalidBudget = errors.New("budget must be a positive integer")

	// ErrUnknownGrade means a grade label could not be parsed.
	ErrUnknownGrade = errors.New("unknown grade")

	// ErrNoActiveUnit means a chapter plan does not have exactly one
	// unlocked unit. Under correct UI sequencing this never happens.
	ErrNoActiveUnit = errors.New("no active unit")

	// ErrAlreadyFinished means every unit of the chapter plan is completed.
	ErrAlreadyFinished = errors.New("chapter plan already finished")

	// ErrAlreadyApproved is the expected rejection for a submission whose
	// key already has an approved record.
	ErrAlreadyApproved = errors.New("plan already approved and locked")

	// ErrPlanLocked is returned when regeneration is attempted for a locked key.
	ErrPlanLocked = errors.New("plan is locked")

	// ErrChapterNotPlanned means the requested chapter is absent from the annual plan.
	ErrChapterNotPlanned = errors.New("chapter not in annual plan")
)

// BudgetTooSmallError carries the numbers behind an ErrBudgetTooSmall.
type BudgetTooSmallError struct {
	Chapters int
	MinUnits int
	Budget   int
}

func (e *BudgetTooSmallError) Error() string {
	return fmt.Sprintf("%s: %d chapters need at least %d units each (%d total) but budget is %d",
		ErrBudgetTooSmall, e.Chapters, e.MinUnits, e.Chapters*e.MinUnits, e.Budget)
}

func (e *BudgetTooSmallError) Unwrap() error {
	return ErrBudgetTooSmall
}
