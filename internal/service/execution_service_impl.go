package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/erpacad/erpacad/internal/contract"
	"github.com/erpacad/erpacad/internal/domain"
	"github.com/erpacad/erpacad/internal/lesson"
	"github.com/erpacad/erpacad/internal/logging"
	"github.com/erpacad/erpacad/internal/repository"
	"github.com/google/uuid"
)

type executionService struct {
	planning  PlanningService
	scripts   lesson.ScriptService
	approvals repository.ApprovalRepo
	logger    *slog.Logger
	observer  UseCaseObserver
	now       func() time.Time
}

// NewExecutionService drives chapter plans owned by operator sessions.
// approvals may be nil, which disables the regeneration lock gate.
func NewExecutionService(
	planning PlanningService,
	scripts lesson.ScriptService,
	approvals repository.ApprovalRepo,
	logger *slog.Logger,
	observers ...UseCaseObserver,
) ExecutionService {
	if logger == nil {
		logger = logging.Discard()
	}
	return &executionService{
		planning:  planning,
		scripts:   scripts,
		approvals: approvals,
		logger:    logger,
		observer:  useCaseObserverOrNoop(observers),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *executionService) Open(ctx context.Context, sess *Session, req contract.OpenChapterRequest) (view *contract.ChapterPlanView, err error) {
	startedAt := time.Now()
	fields := map[string]any{"session": sess.ID, "chapter": req.Chapter}
	defer func() { observe(ctx, s.observer, "open-chapter", startedAt, fields, err) }()

	req = s.withBoard(sess, req)
	key := s.planning.ResolveChapter(req)

	sess.mu.Lock()
	_, exists := sess.plans[key]
	sess.mu.Unlock()
	fields["reused"] = exists
	if exists {
		return s.Snapshot(ctx, sess, key)
	}

	plan, err := s.planning.BuildChapter(ctx, req)
	if err != nil {
		return nil, err
	}
	fields["units"] = plan.Total()

	sess.mu.Lock()
	if _, raced := sess.plans[key]; !raced {
		sess.plans[key] = &openPlan{plan: plan, request: req}
	}
	sess.mu.Unlock()
	return s.Snapshot(ctx, sess, key)
}

func (s *executionService) Regenerate(ctx context.Context, sess *Session, req contract.OpenChapterRequest) (view *contract.ChapterPlanView, err error) {
	startedAt := time.Now()
	fields := map[string]any{"session": sess.ID, "chapter": req.Chapter}
	defer func() { observe(ctx, s.observer, "regenerate-chapter", startedAt, fields, err) }()

	req = s.withBoard(sess, req)
	key := s.planning.ResolveChapter(req)
	locked, err := s.isLocked(ctx, sess.approvalKey(key))
	if err != nil {
		return nil, err
	}
	if locked {
		return nil, fmt.Errorf("%s: %w", sess.approvalKey(key), domain.ErrPlanLocked)
	}

	plan, err := s.planning.BuildChapter(ctx, req)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	if old, ok := sess.plans[key]; ok {
		for _, u := range old.plan.Units {
			delete(sess.scripts, u.PayloadRef)
		}
	}
	sess.plans[key] = &openPlan{plan: plan, request: req}
	sess.mu.Unlock()
	return s.Snapshot(ctx, sess, key)
}

// Current returns the unlocked unit, rendering its script the first time
// the unit is shown.
func (s *executionService) Current(ctx context.Context, sess *Session, key domain.ChapterKey) (*contract.UnitView, error) {
	sess.mu.Lock()
	op, key, ok := sess.find(key)
	if !ok {
		sess.mu.Unlock()
		return nil, fmt.Errorf("%s: %w", key, ErrChapterNotOpen)
	}
	cur, err := op.plan.Current()
	if err != nil {
		sess.mu.Unlock()
		s.logMisuse(ctx, sess, key, "current", err)
		return nil, err
	}
	unit := *cur
	total := op.plan.Total()
	outcomes := op.plan.Outcomes
	script, rendered := sess.scripts[unit.PayloadRef]
	sess.mu.Unlock()

	if !rendered {
		script = s.scripts.Script(ctx, lesson.ScriptRequest{
			Grade:          key.Grade,
			Subject:        key.Subject,
			Chapter:        key.Chapter,
			UnitNo:         unit.UnitNo,
			Total:          total,
			Outcomes:       outcomes,
			IntegrationTag: unit.IntegrationTag,
			Template:       unit.PhaseTemplate,
		})

		sess.mu.Lock()
		// The plan may have been regenerated while the script rendered.
		if cur := sess.plans[key]; cur == op {
			u := &op.plan.Units[unit.UnitNo-1]
			if u.PayloadRef == "" {
				u.PayloadRef = "script/" + uuid.New().String()
			}
			sess.scripts[u.PayloadRef] = script
			unit.PayloadRef = u.PayloadRef
		}
		sess.mu.Unlock()
	}

	return &contract.UnitView{
		Chapter:         key,
		UnitNo:          unit.UnitNo,
		Total:           total,
		IntegrationTag:  unit.IntegrationTag,
		PhaseTemplate:   unit.PhaseTemplate,
		PayloadRef:      unit.PayloadRef,
		Script:          script.Text(),
		ScriptTitle:     script.Title,
		ScriptAvailable: script.Available(),
		ScriptSource:    string(script.Source),
	}, nil
}

func (s *executionService) Complete(ctx context.Context, sess *Session, key domain.ChapterKey) (view *contract.CompletionView, err error) {
	startedAt := time.Now()
	fields := map[string]any{"session": sess.ID, "chapter": key.String()}
	defer func() { observe(ctx, s.observer, "complete-unit", startedAt, fields, err) }()

	sess.mu.Lock()
	defer sess.mu.Unlock()

	op, key, ok := sess.find(key)
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, ErrChapterNotOpen)
	}
	done, err := op.plan.CompleteCurrent(s.now())
	if err != nil {
		s.logMisuse(ctx, sess, key, "complete", err)
		return nil, err
	}
	fields["unit"] = done.UnitNo

	view = &contract.CompletionView{
		Completed: unitStatusView(*done),
		State:     op.plan.State(),
	}
	if view.State == domain.PlanInProgress {
		view.NextUnitNo = done.UnitNo + 1
	}
	return view, nil
}

func (s *executionService) Snapshot(ctx context.Context, sess *Session, key domain.ChapterKey) (*contract.ChapterPlanView, error) {
	sess.mu.Lock()
	op, key, ok := sess.find(key)
	if !ok {
		sess.mu.Unlock()
		return nil, fmt.Errorf("%s: %w", key, ErrChapterNotOpen)
	}
	done, total := op.plan.Progress()
	view := &contract.ChapterPlanView{
		Chapter:   key,
		UnitKind:  op.plan.UnitKind,
		State:     op.plan.State(),
		Completed: done,
		Total:     total,
		Units:     make([]contract.UnitStatusView, 0, total),
	}
	for _, u := range op.plan.Units {
		view.Units = append(view.Units, unitStatusView(u))
	}
	sess.mu.Unlock()

	locked, err := s.isLocked(ctx, sess.approvalKey(key))
	if err != nil {
		return nil, err
	}
	view.Locked = locked
	return view, nil
}

func (s *executionService) isLocked(ctx context.Context, key domain.ApprovalKey) (bool, error) {
	if s.approvals == nil {
		return false, nil
	}
	return s.approvals.IsLocked(ctx, key)
}

// withBoard fills the plan request's board from the session.
func (s *executionService) withBoard(sess *Session, req contract.OpenChapterRequest) contract.OpenChapterRequest {
	if req.Plan.Board == "" {
		req.Plan.Board = sess.Board
	}
	return req
}

// logMisuse records a state-machine call the UI should never make.
func (s *executionService) logMisuse(ctx context.Context, sess *Session, key domain.ChapterKey, op string, err error) {
	if !errors.Is(err, domain.ErrAlreadyFinished) && !errors.Is(err, domain.ErrNoActiveUnit) {
		return
	}
	s.logger.ErrorContext(ctx, "state_machine_misuse",
		"op", op,
		"session", sess.ID,
		"chapter", key.String(),
		"error", err,
	)
}

func unitStatusView(u domain.ExecutionUnit) contract.UnitStatusView {
	return contract.UnitStatusView{
		UnitNo:         u.UnitNo,
		Status:         u.Status,
		IntegrationTag: u.IntegrationTag,
		CompletedAt:    u.CompletedAt,
	}
}
