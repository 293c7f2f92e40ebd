package testutil

import (
	"fmt"
	"time"

	"github.com/erpacad/erpacad/internal/domain"
	"github.com/google/uuid"
)

// FixedNow is the clock used by fixtures.
var FixedNow = time.Date(2026, 6, 15, 9, 30, 0, 0, time.UTC)

// LightKey is the chapter most tests plan and submit.
var LightKey = domain.ApprovalKey{Board: "CBSE", Grade: 8, Subject: "Science", Chapter: "Light"}

// Approval options
type ApprovalOption func(*domain.ApprovalRecord)

func WithKey(k domain.ApprovalKey) ApprovalOption {
	return func(r *domain.ApprovalRecord) {
		r.Key = k
	}
}

func WithChapter(chapter string) ApprovalOption {
	return func(r *domain.ApprovalRecord) {
		r.Key.Chapter = chapter
	}
}

func WithSubmittedAt(t time.Time) ApprovalOption {
	return func(r *domain.ApprovalRecord) {
		r.SubmittedAt = t
	}
}

func WithPayload(p string) ApprovalOption {
	return func(r *domain.ApprovalRecord) {
		r.Payload = []byte(p)
	}
}

// Approved marks the record APPROVED at SubmittedAt plus one hour.
func Approved(remark string) ApprovalOption {
	return func(r *domain.ApprovalRecord) {
		r.Approve(remark, r.SubmittedAt.Add(time.Hour))
	}
}

func NewTestApproval(opts ...ApprovalOption) *domain.ApprovalRecord {
	r := &domain.ApprovalRecord{
		ID:          uuid.New().String(),
		Key:         LightKey,
		Status:      domain.ApprovalPending,
		Payload:     []byte(`{"units":[]}`),
		SubmittedAt: FixedNow,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewTestChapterPlan builds a fresh plan of k units for chapter under grade 8 Science.
func NewTestChapterPlan(chapter string, k int) *domain.ChapterPlan {
	plan, err := domain.NewChapterPlan(domain.ChapterKey{Grade: 8, Subject: "Science", Chapter: chapter}, domain.UnitPeriod, k)
	if err != nil {
		panic(fmt.Sprintf("testutil: %v", err))
	}
	return plan
}

// MasterTSV is a small curriculum dataset for grade 8 Science and LKG Literacy.
const MasterTSV = "Board\tGrade\tSubject\tChapter Name\tLearning Outcomes\n" +
	"CBSE\t8\tScience\tLight\tExplains reflection\n" +
	"CBSE\t8\tScience\tLight\tDraws ray diagrams\n" +
	"CBSE\t8\tScience\tSound\tRelates pitch to frequency\n" +
	"CBSE\t8\tScience\tSound\tNames sound sources\n" +
	"CBSE\t8\tScience\tSound\tMeasures loudness\n" +
	"CBSE\t8\tScience\tSound\tExplains echoes\n" +
	"CBSE\t8\tScience\tSound\tDescribes noise pollution\n" +
	"CBSE\t8\tScience\tForce\tIdentifies contact forces\n" +
	"CBSE\tLKG\tLiteracy\tSounds\tHears beginning sounds\n"
