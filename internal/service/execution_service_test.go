package service

import (
	"context"
	"strings"
	"testing"

	"github.com/erpacad/erpacad/internal/contract"
	"github.com/erpacad/erpacad/internal/domain"
	"github.com/erpacad/erpacad/internal/lesson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecution_OpenCreatesFreshPlan(t *testing.T) {
	f := newFixture(t)
	sess := NewSession("asha", "CBSE")

	view, err := f.execution.Open(context.Background(), sess, lightRequest())
	require.NoError(t, err)
	assert.Equal(t, lightKey, view.Chapter)
	assert.Equal(t, domain.PlanInProgress, view.State)
	assert.Equal(t, 11, view.Total)
	assert.Zero(t, view.Completed)
	assert.False(t, view.Locked)
	assert.Equal(t, domain.UnitUnlocked, view.Units[0].Status)
	for _, u := range view.Units[1:] {
		assert.Equal(t, domain.UnitLocked, u.Status)
	}
	assert.Equal(t, []domain.ChapterKey{lightKey}, sess.OpenChapters())
	assert.Zero(t, f.scripts.calls(), "opening a chapter renders nothing")
}

func TestExecution_OpenTwiceKeepsProgress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess := NewSession("asha", "CBSE")

	_, err := f.execution.Open(ctx, sess, lightRequest())
	require.NoError(t, err)
	_, err = f.execution.Complete(ctx, sess, lightKey)
	require.NoError(t, err)

	view, err := f.execution.Open(ctx, sess, lightRequest())
	require.NoError(t, err)
	assert.Equal(t, 1, view.Completed)
	assert.Equal(t, true, f.observer.last().Fields["reused"])
}

func TestExecution_SessionsAreIndependent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := NewSession("asha", "CBSE")
	b := NewSession("ravi", "CBSE")

	_, err := f.execution.Open(ctx, a, lightRequest())
	require.NoError(t, err)
	_, err = f.execution.Open(ctx, b, lightRequest())
	require.NoError(t, err)

	_, err = f.execution.Complete(ctx, a, lightKey)
	require.NoError(t, err)

	snapB, err := f.execution.Snapshot(ctx, b, lightKey)
	require.NoError(t, err)
	assert.Zero(t, snapB.Completed)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestExecution_CurrentRendersOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess := NewSession("asha", "CBSE")
	_, err := f.execution.Open(ctx, sess, lightRequest())
	require.NoError(t, err)

	first, err := f.execution.Current(ctx, sess, lightKey)
	require.NoError(t, err)
	assert.Equal(t, 1, first.UnitNo)
	assert.Equal(t, 11, first.Total)
	assert.Equal(t, "depth-plus", first.PhaseTemplate)
	assert.NotEmpty(t, first.PayloadRef)
	assert.True(t, strings.HasPrefix(first.Script, lesson.UnavailableMarker))
	assert.False(t, first.ScriptAvailable)
	assert.Equal(t, string(lesson.SourceFallback), first.ScriptSource)

	again, err := f.execution.Current(ctx, sess, lightKey)
	require.NoError(t, err)
	assert.Equal(t, first.PayloadRef, again.PayloadRef)
	assert.Equal(t, first.Script, again.Script)
	assert.Equal(t, 1, f.scripts.calls())

	stored, ok := sess.Script(first.PayloadRef)
	require.True(t, ok)
	assert.Equal(t, first.ScriptTitle, stored.Title)

	req := f.scripts.requests[0]
	assert.Equal(t, "Light", req.Chapter)
	assert.Equal(t, 1, req.UnitNo)
	assert.Equal(t, []string{"Explains reflection", "Draws ray diagrams"}, req.Outcomes)
}

func TestExecution_CompleteWalksEveryUnit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess := NewSession("asha", "CBSE")
	_, err := f.execution.Open(ctx, sess, lightRequest())
	require.NoError(t, err)

	tags := map[int]domain.IntegrationTag{}
	for i := 1; i <= 11; i++ {
		cur, err := f.execution.Current(ctx, sess, lightKey)
		require.NoError(t, err)
		require.Equal(t, i, cur.UnitNo, "no unit is skipped")
		if cur.IntegrationTag != domain.IntegrationNone {
			tags[i] = cur.IntegrationTag
		}

		done, err := f.execution.Complete(ctx, sess, lightKey)
		require.NoError(t, err)
		assert.Equal(t, i, done.Completed.UnitNo)
		assert.Equal(t, domain.UnitCompleted, done.Completed.Status)
		require.NotNil(t, done.Completed.CompletedAt)
		if i < 11 {
			assert.Equal(t, i+1, done.NextUnitNo)
			assert.Equal(t, domain.PlanInProgress, done.State)
		} else {
			assert.Zero(t, done.NextUnitNo)
			assert.Equal(t, domain.PlanFinished, done.State)
		}
	}
	assert.Equal(t, map[int]domain.IntegrationTag{4: domain.IntegrationArt, 8: domain.IntegrationSubject, 11: domain.IntegrationPlay}, tags)

	snap, err := f.execution.Snapshot(ctx, sess, lightKey)
	require.NoError(t, err)
	assert.Equal(t, domain.PlanFinished, snap.State)
	assert.Equal(t, 11, snap.Completed)
}

func TestExecution_CompleteAfterFinishFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess := NewSession("asha", "CBSE")

	req := lightRequest()
	req.Plan.Grade = domain.GradeLKG
	req.Plan.Subject = "Literacy"
	req.Plan.Budget = 6
	req.Chapter = "Sounds"
	key := domain.ChapterKey{Grade: domain.GradeLKG, Subject: "Literacy", Chapter: "Sounds"}

	_, err := f.execution.Open(ctx, sess, req)
	require.NoError(t, err)
	for i := 0; i < 6; i++ {
		_, err := f.execution.Complete(ctx, sess, key)
		require.NoError(t, err)
	}

	_, err = f.execution.Complete(ctx, sess, key)
	assert.ErrorIs(t, err, domain.ErrAlreadyFinished)
	assert.Contains(t, f.logs.String(), "level=ERROR msg=state_machine_misuse")
	assert.Contains(t, f.logs.String(), "op=complete")

	_, err = f.execution.Current(ctx, sess, key)
	assert.ErrorIs(t, err, domain.ErrAlreadyFinished)
}

func TestExecution_PrePrimaryUsesReadiness(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess := NewSession("asha", "CBSE")

	req := lightRequest()
	req.Plan.Grade = domain.GradeLKG
	req.Plan.Subject = "Literacy"
	req.Plan.Budget = 6
	req.Chapter = "Sounds"
	_, err := f.execution.Open(ctx, sess, req)
	require.NoError(t, err)

	cur, err := f.execution.Current(ctx, sess, domain.ChapterKey{Grade: domain.GradeLKG, Subject: "Literacy", Chapter: "Sounds"})
	require.NoError(t, err)
	assert.Equal(t, "readiness", cur.PhaseTemplate)
	assert.Contains(t, cur.Script, "READINESS")
}

func TestExecution_UnknownChapter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess := NewSession("asha", "CBSE")

	_, err := f.execution.Current(ctx, sess, lightKey)
	assert.ErrorIs(t, err, ErrChapterNotOpen)
	_, err = f.execution.Complete(ctx, sess, lightKey)
	assert.ErrorIs(t, err, ErrChapterNotOpen)
	_, err = f.execution.Snapshot(ctx, sess, lightKey)
	assert.ErrorIs(t, err, ErrChapterNotOpen)

	req := lightRequest()
	req.Chapter = "Magnetism"
	_, err = f.execution.Open(ctx, sess, req)
	assert.ErrorIs(t, err, domain.ErrChapterNotPlanned)
	assert.Empty(t, sess.OpenChapters())
}

func TestExecution_RegenerateResetsProgress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess := NewSession("asha", "CBSE")
	_, err := f.execution.Open(ctx, sess, lightRequest())
	require.NoError(t, err)
	cur, err := f.execution.Current(ctx, sess, lightKey)
	require.NoError(t, err)
	_, err = f.execution.Complete(ctx, sess, lightKey)
	require.NoError(t, err)

	req := lightRequest()
	req.Plan.Budget = 40
	view, err := f.execution.Regenerate(ctx, sess, req)
	require.NoError(t, err)
	assert.Zero(t, view.Completed)
	assert.Equal(t, 13, view.Total)

	_, ok := sess.Script(cur.PayloadRef)
	assert.False(t, ok, "scripts of the replaced plan are dropped")
}

func TestExecution_RegenerateBlockedByLock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess := NewSession("asha", "CBSE")
	_, err := f.execution.Open(ctx, sess, lightRequest())
	require.NoError(t, err)
	_, err = f.execution.Complete(ctx, sess, lightKey)
	require.NoError(t, err)

	f.lockLight(t)

	_, err = f.execution.Regenerate(ctx, sess, lightRequest())
	assert.ErrorIs(t, err, domain.ErrPlanLocked)

	snap, err := f.execution.Snapshot(ctx, sess, lightKey)
	require.NoError(t, err)
	assert.True(t, snap.Locked)
	assert.Equal(t, 1, snap.Completed, "locked plan keeps its progress")

	other := NewSession("ravi", "")
	_, err = f.execution.Regenerate(ctx, other, lightRequest())
	assert.NoError(t, err, "the lock belongs to the CBSE key")
}

func TestExecution_LockHoldsAcrossSubjectCase(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess := NewSession("asha", "CBSE")
	f.lockLight(t)

	req := lightRequest()
	req.Plan.Subject = "science"
	req.Chapter = "light"
	_, err := f.execution.Regenerate(ctx, sess, req)
	assert.ErrorIs(t, err, domain.ErrPlanLocked)

	view, err := f.execution.Open(ctx, sess, req)
	require.NoError(t, err)
	assert.Equal(t, lightKey, view.Chapter, "keys use the dataset spelling")
	assert.True(t, view.Locked)

	_, err = f.execution.Complete(ctx, sess, domain.ChapterKey{Grade: 8, Subject: "SCIENCE", Chapter: "Light"})
	require.NoError(t, err)
	snap, err := f.execution.Snapshot(ctx, sess, lightKey)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Completed)
	assert.Equal(t, []domain.ChapterKey{lightKey}, sess.OpenChapters())

	res, err := f.approval.Submit(ctx, contract.SubmitRequest{
		Key:     domain.ApprovalKey{Board: "CBSE", Grade: 8, Subject: "science", Chapter: "Light"},
		Payload: []byte(`{}`),
	})
	require.NoError(t, err)
	assert.True(t, res.Rejected)
}
