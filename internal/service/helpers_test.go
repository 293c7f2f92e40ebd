package service

import (
	"bytes"
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/erpacad/erpacad/internal/config"
	"github.com/erpacad/erpacad/internal/contract"
	"github.com/erpacad/erpacad/internal/curriculum"
	"github.com/erpacad/erpacad/internal/db"
	"github.com/erpacad/erpacad/internal/domain"
	"github.com/erpacad/erpacad/internal/lesson"
	"github.com/erpacad/erpacad/internal/repository"
	"github.com/erpacad/erpacad/internal/testutil"
	"github.com/stretchr/testify/require"
)

// lightRequest opens grade 8 Science "Light", which gets 11 units from a
// budget of 34.
func lightRequest() contract.OpenChapterRequest {
	plan := contract.NewAnnualPlanRequest(8, "Science")
	plan.Budget = 34
	return contract.OpenChapterRequest{Plan: plan, Chapter: "Light"}
}

var lightKey = domain.ChapterKey{Grade: 8, Subject: "Science", Chapter: "Light"}

func testDataset(t *testing.T) *curriculum.Dataset {
	t.Helper()
	ds, err := curriculum.Parse(strings.NewReader(testutil.MasterTSV))
	require.NoError(t, err)
	return ds
}

// countingScripts records requests and serves deterministic scripts.
type countingScripts struct {
	mu       sync.Mutex
	requests []lesson.ScriptRequest
	policy   *config.Policy
}

func (c *countingScripts) Script(_ context.Context, req lesson.ScriptRequest) lesson.Script {
	c.mu.Lock()
	c.requests = append(c.requests, req)
	c.mu.Unlock()
	return lesson.DeterministicScript(req, c.policy.PhaseTemplates[req.Template])
}

func (c *countingScripts) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.requests)
}

// recordingObserver keeps every use-case event.
type recordingObserver struct {
	mu     sync.Mutex
	events []UseCaseEvent
}

func (o *recordingObserver) ObserveUseCase(_ context.Context, e UseCaseEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
}

func (o *recordingObserver) last() UseCaseEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.events[len(o.events)-1]
}

type fixture struct {
	db        *sql.DB
	approvals repository.ApprovalRepo
	planning  PlanningService
	execution ExecutionService
	approval  ApprovalService
	assess    AssessmentService
	scripts   *countingScripts
	observer  *recordingObserver
	logs      *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	database := testutil.NewTestDB(t)
	policy := config.DefaultPolicy()
	repo := repository.NewSQLiteApprovalRepo(database)
	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	obs := &recordingObserver{}
	scripts := &countingScripts{policy: policy}

	dataset := testDataset(t)
	planning := NewPlanningService(dataset, policy, repo, obs)
	execution := NewExecutionService(planning, scripts, repo, logger, obs)
	execution.(*executionService).now = func() time.Time { return testutil.FixedNow }
	approval := NewApprovalService(repo, db.NewSQLiteUnitOfWork(database), logger, obs)
	approval.(*approvalService).now = func() time.Time { return testutil.FixedNow }

	assess := NewAssessmentService(dataset, obs)
	assess.(*assessmentService).seed = func() uint64 { return 42 }

	return &fixture{
		db:        database,
		approvals: repo,
		planning:  planning,
		execution: execution,
		approval:  approval,
		assess:    assess,
		scripts:   scripts,
		observer:  obs,
		logs:      logs,
	}
}

// lockLight submits and approves grade 8 Science "Light" under CBSE.
func (f *fixture) lockLight(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	res, err := f.approval.Submit(ctx, contract.SubmitRequest{Key: testutil.LightKey, Payload: []byte(`{}`)})
	require.NoError(t, err)
	require.False(t, res.Rejected)
	_, err = f.approval.Approve(ctx, contract.ApproveRequest{ID: res.Record.ID, Remark: "ok"})
	require.NoError(t, err)
}
