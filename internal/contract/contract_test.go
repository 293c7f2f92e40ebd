package contract

import (
	"testing"
	"time"

	"github.com/erpacad/erpacad/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestNewAnnualPlanRequest_SetsDefaults(t *testing.T) {
	req := NewAnnualPlanRequest(8, "Science")

	assert.Equal(t, domain.Grade(8), req.Grade)
	assert.Equal(t, "Science", req.Subject)
	assert.Equal(t, DefaultWorkingDays, req.WorkingDays)
	assert.Equal(t, domain.UnitPeriod, req.UnitKind)
	assert.Zero(t, req.Budget)
	assert.Empty(t, req.WeightMode)
}

func TestAnnualPlanResponse_TotalUnits(t *testing.T) {
	resp := &AnnualPlanResponse{Chapters: []PlannedChapterView{
		{Chapter: "A", RequiredUnits: 11},
		{Chapter: "B", RequiredUnits: 13},
	}}
	assert.Equal(t, 24, resp.TotalUnits())
}

func TestNewApprovalView(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	rec := &domain.ApprovalRecord{
		ID:          "a-1",
		Key:         domain.ApprovalKey{Grade: 8, Subject: "Science", Chapter: "Light"},
		Status:      domain.ApprovalPending,
		Payload:     []byte(`{"x":1}`),
		SubmittedAt: at,
	}
	v := NewApprovalView(rec)
	assert.Equal(t, "a-1", v.ID)
	assert.Equal(t, 7, v.PayloadSize)
	assert.Nil(t, v.ApprovedAt)
	assert.Equal(t, at, v.SubmittedAt)
}
