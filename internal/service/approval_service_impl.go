package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/erpacad/erpacad/internal/contract"
	"github.com/erpacad/erpacad/internal/db"
	"github.com/erpacad/erpacad/internal/domain"
	"github.com/erpacad/erpacad/internal/importer"
	"github.com/erpacad/erpacad/internal/logging"
	"github.com/erpacad/erpacad/internal/repository"
	"github.com/google/uuid"
)

// LockedReason is shown to an operator whose submission hit a lock.
const LockedReason = "this plan is locked"

type approvalService struct {
	approvals repository.ApprovalRepo
	uow       db.UnitOfWork
	logger    *slog.Logger
	observer  UseCaseObserver
	now       func() time.Time
}

func NewApprovalService(
	approvals repository.ApprovalRepo,
	uow db.UnitOfWork,
	logger *slog.Logger,
	observers ...UseCaseObserver,
) ApprovalService {
	if logger == nil {
		logger = logging.Discard()
	}
	return &approvalService{
		approvals: approvals,
		uow:       uow,
		logger:    logger,
		observer:  useCaseObserverOrNoop(observers),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Submit records a new PENDING submission. A locked key is reported in the
// result, not as an error.
func (s *approvalService) Submit(ctx context.Context, req contract.SubmitRequest) (res *contract.SubmitResult, err error) {
	startedAt := time.Now()
	fields := map[string]any{"key": req.Key.String()}
	defer func() { observe(ctx, s.observer, "submit-approval", startedAt, fields, err) }()

	if err = validateKey(req.Key); err != nil {
		return nil, err
	}
	payload := req.Payload
	if len(payload) == 0 {
		payload = []byte("null")
	}
	if !json.Valid(payload) {
		return nil, fmt.Errorf("submission payload is not valid JSON")
	}

	rec := &domain.ApprovalRecord{
		ID:          uuid.New().String(),
		Key:         req.Key,
		Status:      domain.ApprovalPending,
		Payload:     payload,
		SubmittedAt: s.now(),
	}
	err = s.approvals.Submit(ctx, rec)
	if errors.Is(err, domain.ErrAlreadyApproved) {
		fields["rejected"] = true
		s.logger.InfoContext(ctx, "submission_rejected", "key", req.Key.String(), "reason", LockedReason)
		return &contract.SubmitResult{Rejected: true, Reason: LockedReason}, nil
	}
	if err != nil {
		return nil, err
	}
	fields["id"] = rec.ID
	view := contract.NewApprovalView(rec)
	return &contract.SubmitResult{Record: &view}, nil
}

// Approve moves a PENDING record to APPROVED and takes the key's lock.
// Approving an APPROVED record changes nothing and succeeds.
func (s *approvalService) Approve(ctx context.Context, req contract.ApproveRequest) (res *contract.ApproveResult, err error) {
	startedAt := time.Now()
	fields := map[string]any{"id": req.ID}
	defer func() { observe(ctx, s.observer, "approve", startedAt, fields, err) }()

	res = &contract.ApproveResult{}
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repo := repository.NewSQLiteApprovalRepo(tx)
		rec, err := repo.GetByID(ctx, req.ID)
		if err != nil {
			return fmt.Errorf("approval %s: %w", req.ID, err)
		}
		if rec.Approve(req.Remark, s.now()) {
			if err := repo.MarkApproved(ctx, rec); err != nil {
				return err
			}
			res.Changed = true
		}
		res.Record = contract.NewApprovalView(rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	fields["changed"] = res.Changed
	return res, nil
}

func (s *approvalService) IsLocked(ctx context.Context, key domain.ApprovalKey) (bool, error) {
	return s.approvals.IsLocked(ctx, key)
}

func (s *approvalService) Get(ctx context.Context, id string) (*contract.ApprovalView, error) {
	rec, err := s.approvals.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("approval %s: %w", id, err)
	}
	view := contract.NewApprovalView(rec)
	return &view, nil
}

func (s *approvalService) List(ctx context.Context, filter repository.ApprovalFilter) ([]contract.ApprovalView, error) {
	recs, err := s.approvals.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	views := make([]contract.ApprovalView, len(recs))
	for i, r := range recs {
		views[i] = contract.NewApprovalView(r)
	}
	return views, nil
}

// ImportLegacy loads a legacy approvals directory and inserts every record
// in one transaction. Any invalid file aborts the whole import.
func (s *approvalService) ImportLegacy(ctx context.Context, dir string) (res *contract.ImportResult, err error) {
	startedAt := time.Now()
	fields := map[string]any{"dir": dir}
	defer func() { observe(ctx, s.observer, "import-legacy", startedAt, fields, err) }()

	files, err := importer.LoadLegacyDir(dir)
	if err != nil {
		return nil, fmt.Errorf("loading legacy approvals: %w", err)
	}
	recs, errs := importer.ConvertAll(files)
	if len(errs) > 0 {
		return nil, formatValidationErrors(errs)
	}

	res = &contract.ImportResult{}
	locked := make(map[domain.ApprovalKey]bool)
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repo := repository.NewSQLiteApprovalRepo(tx)
		for _, rec := range recs {
			if err := repo.Import(ctx, rec, repository.SourceLegacy); err != nil {
				return err
			}
			if rec.IsApproved() {
				res.Approved++
				if !locked[rec.Key] {
					locked[rec.Key] = true
					res.Locked = append(res.Locked, rec.Key)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	res.Imported = len(recs)
	fields["imported"] = res.Imported
	fields["approved"] = res.Approved
	return res, nil
}

func validateKey(k domain.ApprovalKey) error {
	if strings.TrimSpace(k.Subject) == "" {
		return fmt.Errorf("approval key: subject is required")
	}
	if strings.TrimSpace(k.Chapter) == "" {
		return fmt.Errorf("approval key: chapter is required")
	}
	return nil
}

func formatValidationErrors(errs []error) error {
	msg := fmt.Sprintf("import validation failed (%d errors):", len(errs))
	for _, e := range errs {
		msg += "\n  - " + e.Error()
	}
	return fmt.Errorf("%s", msg)
}
