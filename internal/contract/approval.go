package contract

import (
	"time"

	"github.com/erpacad/erpacad/internal/domain"
)

type SubmitRequest struct {
	Key     domain.ApprovalKey
	Payload []byte
}

type ApproveRequest struct {
	ID     string
	Remark string
}

type ApprovalView struct {
	ID          string
	Key         domain.ApprovalKey
	Status      domain.ApprovalStatus
	Remark      string
	SubmittedAt time.Time
	ApprovedAt  *time.Time
	PayloadSize int
}

// SubmitResult carries either the created record or the lock rejection.
// A rejection is a normal outcome, not an error.
type SubmitResult struct {
	Record   *ApprovalView
	Rejected bool
	Reason   string
}

// ApproveResult reports whether the call changed anything.
type ApproveResult struct {
	Record  ApprovalView
	Changed bool
}

type ImportResult struct {
	Imported int
	Approved int
	Locked   []domain.ApprovalKey
}

func NewApprovalView(r *domain.ApprovalRecord) ApprovalView {
	return ApprovalView{
		ID:          r.ID,
		Key:         r.Key,
		Status:      r.Status,
		Remark:      r.Remark,
		SubmittedAt: r.SubmittedAt,
		ApprovedAt:  r.ApprovedAt,
		PayloadSize: len(r.Payload),
	}
}
