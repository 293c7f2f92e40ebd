package service

import (
	"context"
	"errors"

	"github.com/erpacad/erpacad/internal/contract"
	"github.com/erpacad/erpacad/internal/domain"
	"github.com/erpacad/erpacad/internal/repository"
)

// ErrChapterNotOpen means the session has no plan for the chapter.
var ErrChapterNotOpen = errors.New("chapter not open in session")

type PlanningService interface {
	AnnualPlan(ctx context.Context, req contract.AnnualPlanRequest) (*contract.AnnualPlanResponse, error)
	BuildChapter(ctx context.Context, req contract.OpenChapterRequest) (*domain.ChapterPlan, error)

	// ResolveChapter returns the key a chapter request plans under, with
	// subject and chapter spelled as the dataset spells them.
	ResolveChapter(req contract.OpenChapterRequest) domain.ChapterKey
}

type ExecutionService interface {
	Open(ctx context.Context, s *Session, req contract.OpenChapterRequest) (*contract.ChapterPlanView, error)
	Current(ctx context.Context, s *Session, key domain.ChapterKey) (*contract.UnitView, error)
	Complete(ctx context.Context, s *Session, key domain.ChapterKey) (*contract.CompletionView, error)
	Regenerate(ctx context.Context, s *Session, req contract.OpenChapterRequest) (*contract.ChapterPlanView, error)
	Snapshot(ctx context.Context, s *Session, key domain.ChapterKey) (*contract.ChapterPlanView, error)
}

type ApprovalService interface {
	Submit(ctx context.Context, req contract.SubmitRequest) (*contract.SubmitResult, error)
	Approve(ctx context.Context, req contract.ApproveRequest) (*contract.ApproveResult, error)
	IsLocked(ctx context.Context, key domain.ApprovalKey) (bool, error)
	Get(ctx context.Context, id string) (*contract.ApprovalView, error)
	List(ctx context.Context, filter repository.ApprovalFilter) ([]contract.ApprovalView, error)
	ImportLegacy(ctx context.Context, dir string) (*contract.ImportResult, error)
}

type AssessmentService interface {
	Questions(ctx context.Context, req contract.QuestionRequest) (*contract.QuestionSet, error)
}
