package repository

import (
	"context"
	"errors"

	"github.com/erpacad/erpacad/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Source values stored with each approval.
const (
	SourceLocal  = "erpacad"
	SourceLegacy = "legacy"
)

// ApprovalFilter narrows List. Zero-valued fields match everything.
type ApprovalFilter struct {
	Status  domain.ApprovalStatus
	Board   string
	Grade   *domain.Grade
	Subject string
	Chapter string
}

type ApprovalRepo interface {
	// Submit inserts a PENDING record unless the key is locked, in one
	// statement. A locked key yields domain.ErrAlreadyApproved.
	Submit(ctx context.Context, r *domain.ApprovalRecord) error

	// MarkApproved moves a PENDING record to APPROVED and claims the key's
	// lock if no earlier approval holds it. Run it inside a UnitOfWork.
	MarkApproved(ctx context.Context, r *domain.ApprovalRecord) error

	// Import inserts a record as-is, claiming the lock when approved.
	Import(ctx context.Context, r *domain.ApprovalRecord, source string) error

	GetByID(ctx context.Context, id string) (*domain.ApprovalRecord, error)
	List(ctx context.Context, f ApprovalFilter) ([]*domain.ApprovalRecord, error)
	IsLocked(ctx context.Context, key domain.ApprovalKey) (bool, error)
}
