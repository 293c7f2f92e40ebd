package repository

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/erpacad/erpacad/internal/db"
	"github.com/erpacad/erpacad/internal/domain"
	"github.com/erpacad/erpacad/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConcurrentAccess_SubmitRacesApprove runs submitters against an
// approval on a file-backed database. Whatever the interleaving, no record
// for the key may be submitted after the approval committed.
func TestConcurrentAccess_SubmitRacesApprove(t *testing.T) {
	database := testutil.NewFileTestDB(t)
	uow := db.NewSQLiteUnitOfWork(database)
	repo := NewSQLiteApprovalRepo(database)
	ctx := context.Background()

	first := testutil.NewTestApproval()
	require.NoError(t, repo.Submit(ctx, first))

	const submitters = 8
	const perSubmitter = 10

	var wg sync.WaitGroup
	var accepted, rejected, lateAccepted atomic.Int32
	var approved atomic.Bool
	errs := make(chan error, submitters*perSubmitter+1)
	start := make(chan struct{})

	for i := 0; i < submitters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			for j := 0; j < perSubmitter; j++ {
				afterApproval := approved.Load()
				err := repo.Submit(ctx, testutil.NewTestApproval())
				switch {
				case err == nil:
					accepted.Add(1)
					if afterApproval {
						lateAccepted.Add(1)
					}
				case errors.Is(err, domain.ErrAlreadyApproved):
					rejected.Add(1)
				default:
					errs <- err
				}
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		<-start
		first.Approve("ok", testutil.FixedNow)
		err := uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
			return NewSQLiteApprovalRepo(tx).MarkApproved(ctx, first)
		})
		if err == nil {
			approved.Store(true)
		}
		errs <- err
	}()

	close(start)
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.Equal(t, int32(submitters*perSubmitter), accepted.Load()+rejected.Load())

	// Once approved, every later submit is rejected.
	err := repo.Submit(ctx, testutil.NewTestApproval())
	assert.ErrorIs(t, err, domain.ErrAlreadyApproved)

	assert.Zero(t, lateAccepted.Load(), "no submit started after the approval committed may succeed")

	recs, err := repo.List(ctx, ApprovalFilter{Chapter: "Light"})
	require.NoError(t, err)
	assert.Len(t, recs, 1+int(accepted.Load()))
}

// TestConcurrentAccess_ParallelSubmitsDistinctKeys verifies concurrent
// submitters for unrelated chapters never block each other out.
func TestConcurrentAccess_ParallelSubmitsDistinctKeys(t *testing.T) {
	database := testutil.NewFileTestDB(t)
	repo := NewSQLiteApprovalRepo(database)
	ctx := context.Background()

	chapters := []string{"Light", "Sound", "Force", "Cells", "Metals"}
	var wg sync.WaitGroup
	errs := make(chan error, len(chapters)*5)
	for _, ch := range chapters {
		wg.Add(1)
		go func(ch string) {
			defer wg.Done()
			for i := 0; i < 5; i++ {
				if err := repo.Submit(ctx, testutil.NewTestApproval(testutil.WithChapter(ch))); err != nil {
					errs <- err
				}
			}
		}(ch)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	recs, err := repo.List(ctx, ApprovalFilter{Status: domain.ApprovalPending})
	require.NoError(t, err)
	assert.Len(t, recs, 25)
}
