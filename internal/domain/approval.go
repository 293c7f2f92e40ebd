package domain

import (
	"fmt"
	"time"
)

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "PENDING"
	ApprovalApproved ApprovalStatus = "APPROVED"
)

// ApprovalKey identifies the plan an approval locks. Board is optional.
type ApprovalKey struct {
	Board   string
	Grade   Grade
	Subject string
	Chapter string
}

// KeyFor builds an ApprovalKey for a chapter under the given board.
func KeyFor(board string, ck ChapterKey) ApprovalKey {
	return ApprovalKey{Board: board, Grade: ck.Grade, Subject: ck.Subject, Chapter: ck.Chapter}
}

func (k ApprovalKey) String() string {
	if k.Board == "" {
		return fmt.Sprintf("%s/%s/%s", k.Grade, k.Subject, k.Chapter)
	}
	return fmt.Sprintf("%s:%s/%s/%s", k.Board, k.Grade, k.Subject, k.Chapter)
}

// ApprovalRecord is one submission of a plan for review. APPROVED is terminal.
type ApprovalRecord struct {
	ID          string
	Key         ApprovalKey
	Status      ApprovalStatus
	Payload     []byte
	Remark      string
	SubmittedAt time.Time
	ApprovedAt  *time.Time
}

// IsApproved reports whether the record reached its terminal state.
func (r *ApprovalRecord) IsApproved() bool {
	return r.Status == ApprovalApproved
}

// Approve moves a pending record to APPROVED. Approving an approved record
// is a no-op and reports false.
func (r *ApprovalRecord) Approve(remark string, now time.Time) bool {
	if r.IsApproved() {
		return false
	}
	at := now
	r.Status = ApprovalApproved
	r.Remark = remark
	r.ApprovedAt = &at
	return true
}
