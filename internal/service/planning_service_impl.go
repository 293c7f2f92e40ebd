package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/erpacad/erpacad/internal/config"
	"github.com/erpacad/erpacad/internal/contract"
	"github.com/erpacad/erpacad/internal/curriculum"
	"github.com/erpacad/erpacad/internal/domain"
	"github.com/erpacad/erpacad/internal/planner"
	"github.com/erpacad/erpacad/internal/repository"
)

type planningService struct {
	curriculum *curriculum.Dataset
	policy     *config.Policy
	approvals  repository.ApprovalRepo
	allocator  *planner.Allocator
	builder    *planner.Builder
	calendar   *planner.Calendar
	observer   UseCaseObserver
}

// NewPlanningService builds annual and chapter plans. approvals may be nil,
// in which case plans carry no lock flags.
func NewPlanningService(
	curriculum *curriculum.Dataset,
	policy *config.Policy,
	approvals repository.ApprovalRepo,
	observers ...UseCaseObserver,
) PlanningService {
	return &planningService{
		curriculum: curriculum,
		policy:     policy,
		approvals:  approvals,
		allocator:  planner.NewAllocator(policy),
		builder:    planner.NewBuilder(policy),
		calendar:   planner.NewCalendar(policy),
		observer:   useCaseObserverOrNoop(observers),
	}
}

// planned is an allocation together with the numbers it was derived from.
type planned struct {
	src     *curriculum.Dataset
	plan    *domain.AnnualPlan
	weights []domain.ChapterWeight
	blocks  *planner.Allocation
	kind    domain.UnitKind
}

func (s *planningService) allocate(req contract.AnnualPlanRequest) (*planned, error) {
	if strings.TrimSpace(req.Subject) == "" {
		return nil, fmt.Errorf("subject is required")
	}
	src := s.curriculum.ForBoard(req.Board)
	subject := src.CanonicalSubject(req.Grade, req.Subject)
	kind := req.UnitKind
	if kind == "" {
		kind = domain.UnitPeriod
	}
	mode, err := planner.ParseWeightMode(req.WeightMode)
	if err != nil {
		return nil, err
	}

	budget := req.Budget
	var blocks *planner.Allocation
	if budget == 0 {
		days := req.WorkingDays
		if days == 0 {
			days = contract.DefaultWorkingDays
		}
		alloc, err := s.calendar.Budget(days, kind)
		if err != nil {
			return nil, err
		}
		blocks = &alloc
		budget = alloc.Teaching
	}

	weights, err := planner.ExtractWeights(src, s.policy, req.Grade, subject, mode)
	if err != nil {
		return nil, err
	}
	plan, err := s.allocator.Allocate(weights, req.Grade, subject, budget)
	if err != nil {
		return nil, err
	}
	return &planned{src: src, plan: plan, weights: weights, blocks: blocks, kind: kind}, nil
}

func (s *planningService) AnnualPlan(ctx context.Context, req contract.AnnualPlanRequest) (resp *contract.AnnualPlanResponse, err error) {
	startedAt := time.Now()
	fields := map[string]any{
		"grade":   req.Grade.String(),
		"subject": req.Subject,
	}
	defer func() { observe(ctx, s.observer, "annual-plan", startedAt, fields, err) }()

	var p *planned
	p, err = s.allocate(req)
	if err != nil {
		return nil, fmt.Errorf("planning %s %s: %w", req.Grade, req.Subject, err)
	}
	fields["chapters"] = len(p.plan.Chapters)
	fields["budget"] = p.plan.TotalBudget

	weeklySubject, weekly := s.policy.WeeklyPeriodsFor(req.Subject)
	perWeek := s.calendar.UnitsPerWeek(weekly, p.kind)

	resp = &contract.AnnualPlanResponse{
		Board:         req.Board,
		Grade:         p.plan.Grade,
		Subject:       p.plan.Subject,
		Band:          p.plan.Band,
		UnitKind:      p.kind,
		Budget:        p.plan.TotalBudget,
		BudgetDerived: p.blocks != nil,
		WeeklySubject: weeklySubject,
		UnitsPerWeek:  perWeek,
		Chapters:      make([]contract.PlannedChapterView, 0, len(p.plan.Chapters)),
	}
	if p.blocks != nil {
		resp.WorkingDays = req.WorkingDays
		if resp.WorkingDays == 0 {
			resp.WorkingDays = contract.DefaultWorkingDays
		}
		resp.Blocks = &contract.CalendarBlocks{
			Total:      p.blocks.Total,
			Revision:   p.blocks.Revision,
			Assessment: p.blocks.Assessment,
			Exams:      p.blocks.Exams,
			Buffer:     p.blocks.Buffer,
		}
	}

	for i, ch := range p.plan.Chapters {
		view := contract.PlannedChapterView{
			Chapter:       ch.ChapterID,
			Weight:        p.weights[i].Weight,
			RequiredUnits: ch.RequiredUnits,
			ApproxWeeks:   planner.ApproxWeeks(ch.RequiredUnits, perWeek),
		}
		if s.approvals != nil {
			key := domain.ApprovalKey{Board: req.Board, Grade: p.plan.Grade, Subject: p.plan.Subject, Chapter: ch.ChapterID}
			view.Locked, err = s.approvals.IsLocked(ctx, key)
			if err != nil {
				return nil, err
			}
		}
		resp.Chapters = append(resp.Chapters, view)
	}
	return resp, nil
}

func (s *planningService) BuildChapter(ctx context.Context, req contract.OpenChapterRequest) (*domain.ChapterPlan, error) {
	p, err := s.allocate(req.Plan)
	if err != nil {
		return nil, fmt.Errorf("planning %s %s: %w", req.Plan.Grade, req.Plan.Subject, err)
	}
	chapter := p.src.CanonicalChapter(p.plan.Grade, p.plan.Subject, req.Chapter)
	entry, ok := p.plan.Chapter(chapter)
	if !ok {
		return nil, fmt.Errorf("%q: %w", req.Chapter, domain.ErrChapterNotPlanned)
	}
	outcomes := p.src.LearningOutcomes(p.plan.Grade, p.plan.Subject, chapter)
	return s.builder.Build(entry, p.plan.Grade, p.plan.Subject, p.kind, outcomes)
}

func (s *planningService) ResolveChapter(req contract.OpenChapterRequest) domain.ChapterKey {
	src := s.curriculum.ForBoard(req.Plan.Board)
	subject := src.CanonicalSubject(req.Plan.Grade, req.Plan.Subject)
	return domain.ChapterKey{
		Grade:   req.Plan.Grade,
		Subject: subject,
		Chapter: src.CanonicalChapter(req.Plan.Grade, subject, req.Chapter),
	}
}
