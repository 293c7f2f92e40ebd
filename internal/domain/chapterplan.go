package domain

import (
	"fmt"
	"time"
)

type UnitStatus string

const (
	UnitLocked    UnitStatus = "locked"
	UnitUnlocked  UnitStatus = "unlocked"
	UnitCompleted UnitStatus = "completed"
)

// IntegrationTag marks a unit that carries a mandatory integration activity.
type IntegrationTag string

const (
	IntegrationNone    IntegrationTag = ""
	IntegrationArt     IntegrationTag = "art"
	IntegrationSubject IntegrationTag = "subject"
	IntegrationPlay    IntegrationTag = "play"
)

// ValidIntegrationTags is the canonical set accepted in placement tables.
var ValidIntegrationTags = map[IntegrationTag]bool{
	IntegrationArt: true, IntegrationSubject: true, IntegrationPlay: true,
}

// PlanState is the chapter-level state derived from unit statuses.
type PlanState string

const (
	PlanInProgress PlanState = "in_progress"
	PlanFinished   PlanState = "finished"
)

// ChapterKey identifies a chapter for a grade and subject.
type ChapterKey struct {
	Grade   Grade
	Subject string
	Chapter string
}

func (k ChapterKey) String() string {
	return fmt.Sprintf("%s/%s/%s", k.Grade, k.Subject, k.Chapter)
}

// ExecutionUnit is one scheduled period or day of a chapter.
type ExecutionUnit struct {
	UnitNo         int
	Status         UnitStatus
	IntegrationTag IntegrationTag
	PhaseTemplate  string

	// PayloadRef points at generated teaching content. Empty until the
	// unit is first displayed.
	PayloadRef string

	CompletedAt *time.Time
}

// ChapterPlan is the ordered list of execution units for one chapter.
// It is owned by a single operator session and mutated only through
// CompleteCurrent.
type ChapterPlan struct {
	Key      ChapterKey
	UnitKind UnitKind
	Outcomes []string
	Units    []ExecutionUnit
}

// NewChapterPlan creates k units numbered 1..k with unit 1 unlocked.
func NewChapterPlan(key ChapterKey, kind UnitKind, k int) (*ChapterPlan, error) {
	if k < 1 {
		return nil, fmt.Errorf("chapter %s: unit count must be positive, got %d", key, k)
	}
	units := make([]ExecutionUnit, k)
	for i := range units {
		units[i] = ExecutionUnit{UnitNo: i + 1, Status: UnitLocked}
	}
	units[0].Status = UnitUnlocked
	return &ChapterPlan{Key: key, UnitKind: kind, Units: units}, nil
}

// Total returns the number of units.
func (p *ChapterPlan) Total() int {
	return len(p.Units)
}

// State reports finished once every unit is completed.
func (p *ChapterPlan) State() PlanState {
	for _, u := range p.Units {
		if u.Status != UnitCompleted {
			return PlanInProgress
		}
	}
	return PlanFinished
}

// Progress returns completed and total unit counts.
func (p *ChapterPlan) Progress() (done, total int) {
	for _, u := range p.Units {
		if u.Status == UnitCompleted {
			done++
		}
	}
	return done, len(p.Units)
}

// Validate checks the single-unlocked-unit invariant. A finished plan has
// no unlocked unit; any other plan has exactly one, and every unit before
// it is completed while every unit after it is locked.
func (p *ChapterPlan) Validate() error {
	if p.State() == PlanFinished {
		return nil
	}
	active := -1
	for i, u := range p.Units {
		if u.UnitNo != i+1 {
			return fmt.Errorf("%w: unit at position %d numbered %d", ErrNoActiveUnit, i+1, u.UnitNo)
		}
		if u.Status != UnitUnlocked {
			continue
		}
		if active >= 0 {
			return fmt.Errorf("%w: units %d and %d are both unlocked", ErrNoActiveUnit, active+1, i+1)
		}
		active = i
	}
	if active < 0 {
		return fmt.Errorf("%w: plan %s has incomplete units but none unlocked", ErrNoActiveUnit, p.Key)
	}
	for i, u := range p.Units {
		switch {
		case i < active && u.Status != UnitCompleted:
			return fmt.Errorf("%w: unit %d is %s before active unit %d", ErrNoActiveUnit, u.UnitNo, u.Status, active+1)
		case i > active && u.Status != UnitLocked:
			return fmt.Errorf("%w: unit %d is %s after active unit %d", ErrNoActiveUnit, u.UnitNo, u.Status, active+1)
		}
	}
	return nil
}

// Current returns the unlocked unit.
func (p *ChapterPlan) Current() (*ExecutionUnit, error) {
	if p.State() == PlanFinished {
		return nil, ErrAlreadyFinished
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	for i := range p.Units {
		if p.Units[i].Status == UnitUnlocked {
			return &p.Units[i], nil
		}
	}
	return nil, ErrNoActiveUnit
}

// CompleteCurrent marks the unlocked unit completed and unlocks its
// successor. Completion is monotone: there is no way back. Calling it on
// a finished plan fails with ErrAlreadyFinished.
func (p *ChapterPlan) CompleteCurrent(now time.Time) (*ExecutionUnit, error) {
	cur, err := p.Current()
	if err != nil {
		return nil, err
	}
	completedAt := now
	cur.Status = UnitCompleted
	cur.CompletedAt = &completedAt

	if next := cur.UnitNo; next < len(p.Units) {
		p.Units[next].Status = UnitUnlocked
	}
	return cur, nil
}
