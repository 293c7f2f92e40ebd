package contract

import (
	"time"

	"github.com/erpacad/erpacad/internal/domain"
)

// OpenChapterRequest asks a session for a chapter's execution plan.
type OpenChapterRequest struct {
	Plan    AnnualPlanRequest
	Chapter string
}

// UnitView is what the presentation layer shows for the active unit.
type UnitView struct {
	Chapter        domain.ChapterKey
	UnitNo         int
	Total          int
	IntegrationTag domain.IntegrationTag
	PhaseTemplate  string
	PayloadRef     string

	Script          string
	ScriptTitle     string
	ScriptAvailable bool
	ScriptSource    string
}

type UnitStatusView struct {
	UnitNo         int
	Status         domain.UnitStatus
	IntegrationTag domain.IntegrationTag
	CompletedAt    *time.Time
}

// ChapterPlanView is a read-only snapshot of a chapter plan.
type ChapterPlanView struct {
	Chapter   domain.ChapterKey
	UnitKind  domain.UnitKind
	State     domain.PlanState
	Completed int
	Total     int
	Locked    bool
	Units     []UnitStatusView
}

// CompletionView reports a completed unit and what comes next. NextUnitNo
// is zero once the plan is finished.
type CompletionView struct {
	Completed  UnitStatusView
	NextUnitNo int
	State      domain.PlanState
}
