package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/erpacad/erpacad/internal/config"
	"github.com/erpacad/erpacad/internal/curriculum"
	"github.com/erpacad/erpacad/internal/db"
	"github.com/erpacad/erpacad/internal/domain"
	"github.com/erpacad/erpacad/internal/lesson"
	"github.com/erpacad/erpacad/internal/repository"
	"github.com/erpacad/erpacad/internal/service"
	"github.com/erpacad/erpacad/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

// testApp wires a full App backed by an in-memory DB. Scripts come from the
// deterministic renderer since no LLM client is configured.
func testApp(t *testing.T) *App {
	t.Helper()
	database := testutil.NewTestDB(t)
	policy := config.DefaultPolicy()
	ds, err := curriculum.Parse(strings.NewReader(testutil.MasterTSV))
	require.NoError(t, err)

	repo := repository.NewSQLiteApprovalRepo(database)
	planning := service.NewPlanningService(ds, policy, repo)
	scripts := lesson.NewScriptService(nil, policy, nil)

	return &App{
		Planning:   planning,
		Execution:  service.NewExecutionService(planning, scripts, repo, nil),
		Approvals:  service.NewApprovalService(repo, db.NewSQLiteUnitOfWork(database), nil),
		Assessment: service.NewAssessmentService(ds),
		Session:    service.NewSession("tester", "CBSE"),
		Now:        func() time.Time { return testutil.FixedNow },
	}
}

// executeCmd runs a cobra command and captures its output.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return stripANSI(buf.String()), err
}

// lightKeyArgs identifies grade 8 Science "Light"; lightArgs adds the
// budget for commands that plan.
var (
	lightKeyArgs = []string{"--grade", "8", "--subject", "Science", "--chapter", "Light"}
	lightArgs    = append(append([]string(nil), lightKeyArgs...), "--budget", "34")
)

func withLight(args ...string) []string {
	return append(args, lightArgs...)
}

func withLightKey(args ...string) []string {
	return append(args, lightKeyArgs...)
}

// --- plan ---

func TestPlanAnnual_ExplicitBudget(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "plan", "annual", "--grade", "8", "--subject", "Science", "--budget", "34")
	require.NoError(t, err)

	assert.Contains(t, out, "CBSE CLASS 8 SCIENCE")
	assert.Contains(t, out, "Teaching budget  34 periods")
	assert.NotContains(t, out, "working days")
	assert.Regexp(t, `Light\s+2\s+11\s`, out)
	assert.Regexp(t, `Sound\s+5\s+13\s`, out)
	assert.Regexp(t, `Force\s+1\s+10\s`, out)
	assert.Contains(t, out, "Total: 34 periods")
}

func TestPlanAnnual_DerivedFromWorkingDays(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "plan", "annual", "--grade", "8", "--subject", "Science")
	require.NoError(t, err)

	assert.Contains(t, out, "1040 periods from 200 working days")
	assert.Contains(t, out, "1600 total, 160 revision, 160 assessment, 160 exams, 80 buffer")
	assert.Contains(t, out, "Total: 1040 periods")
}

func TestPlanAnnual_InputErrors(t *testing.T) {
	app := testApp(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad grade", []string{"--grade", "13", "--subject", "Science"}, "unknown grade"},
		{"bad unit", []string{"--grade", "8", "--subject", "Science", "--unit", "week"}, "unknown unit kind"},
		{"bad weights", []string{"--grade", "8", "--subject", "Science", "--weights", "equal"}, "unknown weight mode"},
		{"negative budget", []string{"--grade", "8", "--subject", "Science", "--budget", "-1"}, "--budget"},
		{"budget too small", []string{"--grade", "8", "--subject", "Science", "--budget", "29"}, "budget"},
		{"missing subject", []string{"--grade", "8"}, "subject"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executeCmd(t, app, append([]string{"plan", "annual"}, tt.args...)...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestPlanChapter_ShowsUnits(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, withLight("plan", "chapter")...)
	require.NoError(t, err)
	assert.Contains(t, out, "LIGHT")
	assert.Contains(t, out, "0/11")
	assert.Contains(t, out, "Period 11")
	assert.Contains(t, out, "Art integration")
	assert.Len(t, app.Session.OpenChapters(), 1)
}

func TestPlanChapter_UnknownChapter(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, "plan", "chapter", "--grade", "8", "--subject", "Science", "--chapter", "Magnetism")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrChapterNotPlanned)
}

// --- unit ---

func TestUnit_ShowAndCompleteShareSession(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, withLight("unit", "show")...)
	require.NoError(t, err)
	assert.Contains(t, out, "LIGHT · UNIT 1 OF 11")
	assert.Contains(t, out, lesson.UnavailableMarker)

	out, err = executeCmd(t, app, withLight("unit", "complete", "--count", "3")...)
	require.NoError(t, err)
	assert.Contains(t, out, "✔ Unit 1 completed  unit 2 is now unlocked")
	assert.Contains(t, out, "✔ Unit 3 completed  unit 4 is now unlocked")

	out, err = executeCmd(t, app, withLight("unit", "show")...)
	require.NoError(t, err)
	assert.Contains(t, out, "3/11")
	assert.Contains(t, out, "LIGHT · UNIT 4 OF 11")
	assert.Contains(t, out, "Art integration")
}

func TestUnit_CompleteAfterFinishFails(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, withLight("unit", "complete", "--count", "11")...)
	require.NoError(t, err)
	assert.Contains(t, out, "✔ Unit 11 completed  Chapter finished.")

	out, err = executeCmd(t, app, withLight("unit", "show")...)
	require.NoError(t, err)
	assert.Contains(t, out, "11/11")
	assert.Contains(t, out, "Chapter finished.")

	_, err = executeCmd(t, app, withLight("unit", "complete")...)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAlreadyFinished)
}

func TestUnit_CompleteRejectsZeroCount(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, withLight("unit", "complete", "--count", "0")...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--count")
}

func TestTeach_RequiresTerminal(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, withLight("teach")...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interactive terminal")
}

// --- approvals ---

func submitLight(t *testing.T, app *App) string {
	t.Helper()
	out, err := executeCmd(t, app, withLight("submit", "--yes")...)
	require.NoError(t, err)
	require.Contains(t, out, "✔ Submitted CBSE:8/Science/Light")

	views, err := app.Approvals.List(context.Background(), repository.ApprovalFilter{Status: domain.ApprovalPending})
	require.NoError(t, err)
	require.NotEmpty(t, views)
	return views[len(views)-1].ID
}

func TestSubmitApproveLock_Flow(t *testing.T) {
	app := testApp(t)

	id := submitLight(t, app)

	out, err := executeCmd(t, app, "approvals", "list", "--status", "PENDING")
	require.NoError(t, err)
	assert.Contains(t, out, "○ Pending")
	assert.Contains(t, out, id[:8])

	out, err = executeCmd(t, app, withLightKey("lock", "status")...)
	require.NoError(t, err)
	assert.Contains(t, out, "● OPEN  CBSE:8/Science/Light")

	out, err = executeCmd(t, app, "approve", id, "--remark", "Good flow")
	require.NoError(t, err)
	assert.Contains(t, out, "✔ Approved CBSE:8/Science/Light")

	out, err = executeCmd(t, app, "approve", id, "--remark", "again")
	require.NoError(t, err)
	assert.Contains(t, out, "was already approved")

	out, err = executeCmd(t, app, withLightKey("lock", "status")...)
	require.NoError(t, err)
	assert.Contains(t, out, "▲ LOCKED  CBSE:8/Science/Light")

	out, err = executeCmd(t, app, withLight("submit", "--yes")...)
	require.NoError(t, err)
	assert.Contains(t, out, "✖ Submission rejected: this plan is locked")

	out, err = executeCmd(t, app, "approvals", "show", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Good flow")
	assert.Contains(t, out, "✔ Approved")

	out, err = executeCmd(t, app, "plan", "annual", "--grade", "8", "--subject", "Science", "--budget", "34")
	require.NoError(t, err)
	assert.Regexp(t, `Light\s+2\s+11\s+\S+\s+▲ LOCKED`, out)

	_, err = executeCmd(t, app, withLight("plan", "regenerate")...)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPlanLocked)
}

func TestLock_IgnoresSubjectCase(t *testing.T) {
	app := testApp(t)
	id := submitLight(t, app)
	_, err := executeCmd(t, app, "approve", id, "--remark", "ok")
	require.NoError(t, err)

	lower := []string{"--grade", "8", "--subject", "science", "--chapter", "light"}

	out, err := executeCmd(t, app, append([]string{"lock", "status"}, lower...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "▲ LOCKED  CBSE:8/Science/Light")

	out, err = executeCmd(t, app, append([]string{"submit", "--yes", "--budget", "34"}, lower...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "✖ Submission rejected: this plan is locked")

	_, err = executeCmd(t, app, append([]string{"plan", "regenerate", "--budget", "34"}, lower...)...)
	assert.ErrorIs(t, err, domain.ErrPlanLocked)

	out, err = executeCmd(t, app, append([]string{"unit", "complete", "--budget", "34"}, lower...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "✔ Unit 1 completed")
}

func TestSubmit_PayloadIsChapterPlan(t *testing.T) {
	app := testApp(t)

	id := submitLight(t, app)
	view, err := app.Approvals.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Positive(t, view.PayloadSize)

	req, err := (&planFlags{
		keyFlags: keyFlags{board: "CBSE", grade: "8", subject: "Science", chapter: "Light"},
		days:     200, budget: 34, unit: "period",
	}).openRequest()
	require.NoError(t, err)
	plan, err := app.Planning.BuildChapter(context.Background(), req)
	require.NoError(t, err)
	payload, err := encodePlan("CBSE", plan)
	require.NoError(t, err)
	assert.Equal(t, len(payload), view.PayloadSize)
	assert.Contains(t, string(payload), `"unit_no":11`)
	assert.Contains(t, string(payload), `"integration_tag":"art"`)
}

func TestSubmit_PayloadFile(t *testing.T) {
	app := testApp(t)
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o644))
	_, err := executeCmd(t, app, withLight("submit", "--yes", "--payload", bad)...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not valid JSON")

	good := filepath.Join(dir, "good.json")
	require.NoError(t, os.WriteFile(good, []byte(`{"edited":true}`), 0o644))
	out, err := executeCmd(t, app, withLight("submit", "--yes", "--payload", good)...)
	require.NoError(t, err)
	assert.Contains(t, out, "✔ Submitted")
}

func TestApprove_UnknownID(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, "approve", "missing", "--remark", "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestApprovalsList_Filters(t *testing.T) {
	app := testApp(t)
	submitLight(t, app)

	out, err := executeCmd(t, app, "approvals", "list", "--status", "APPROVED")
	require.NoError(t, err)
	assert.Contains(t, out, "No approvals found.")

	out, err = executeCmd(t, app, "approvals", "list", "--grade", "8", "--chapter", "Light")
	require.NoError(t, err)
	assert.Contains(t, out, "CBSE:8/Science/Light")

	_, err = executeCmd(t, app, "approvals", "list", "--status", "DRAFT")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --status")

	_, err = executeCmd(t, app, "approvals", "list", "--grade", "13")
	assert.ErrorIs(t, err, domain.ErrUnknownGrade)
}

func TestApprovalsImport_LocksLegacyApprovals(t *testing.T) {
	app := testApp(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "light.json"), []byte(`{
  "id": "legacy-1",
  "submitted_at": "2025-06-15T09:30:00",
  "status": "APPROVED",
  "meta": {"board": "CBSE", "grade": 8, "subject": "Science", "chapter": "Light"},
  "plans": {"1": "Period one"},
  "principal_remark": "ok",
  "approved_at": "2025-06-15T11:00:00"
}`), 0o644))

	out, err := executeCmd(t, app, "approvals", "import", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✔ Imported 1 records, 1 approved")
	assert.Contains(t, out, "▲ LOCKED CBSE:8/Science/Light")

	out, err = executeCmd(t, app, withLight("submit", "--yes")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Submission rejected")
}

func TestApprovalsImport_InvalidDirectory(t *testing.T) {
	app := testApp(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "x.json"), []byte(`{"id": "x", "status": "DRAFT"}`), 0o644))

	_, err := executeCmd(t, app, "approvals", "import", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "import validation failed")

	views, err := app.Approvals.List(context.Background(), repository.ApprovalFilter{})
	require.NoError(t, err)
	assert.Empty(t, views)
}

// --- questions ---

func TestQuestions_SeededDrawRepeats(t *testing.T) {
	app := testApp(t)
	args := []string{"questions", "--grade", "8", "--subject", "science", "--chapter", "Light,Force", "--count", "3", "--seed", "11"}

	first, err := executeCmd(t, app, args...)
	require.NoError(t, err)
	second, err := executeCmd(t, app, args...)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Contains(t, first, "CBSE Class 8 Science (3 of 3 requested)")
	assert.Contains(t, first, "Explains reflection")
	assert.Contains(t, first, "Draws ray diagrams")
	assert.Contains(t, first, "Identifies contact forces")
	assert.NotContains(t, first, "Sound")
	assert.Contains(t, first, "Seed: 11")
}

func TestQuestions_RepeatedChapterFlag(t *testing.T) {
	app := testApp(t)

	out, err := executeCmd(t, app, "questions", "--grade", "8", "--subject", "Science",
		"--chapter", "Sound", "--chapter", "Force", "--count", "2", "--seed", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "(2 of 2 requested)")
	assert.NotContains(t, out, "Light")
}

func TestQuestions_Errors(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, "questions", "--grade", "8", "--subject", "Science", "--count", "0")
	assert.ErrorContains(t, err, "at least 1")

	_, err = executeCmd(t, app, "questions", "--grade", "13", "--subject", "Science")
	assert.Error(t, err)

	out, err := executeCmd(t, app, "questions", "--board", "ICSE", "--grade", "8", "--subject", "Science")
	require.NoError(t, err)
	assert.Contains(t, out, "No learning outcomes match ICSE Class 8 Science.")
}
