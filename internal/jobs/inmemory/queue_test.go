package inmemory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/statement-editor/internal/jobs"
)

func TestStoreSaveAndGetReturnsCopies(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	job := &jobs.ExtractStatementJob{JobID: "j1", RawText: "text", Status: jobs.JobStatusPending}
	require.NoError(t, store.SaveJob(ctx, job))

	got, err := store.GetJob(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, "text", got.RawText)

	// Mutating the returned copy must not affect the stored job.
	got.Status = jobs.JobStatusFailed
	again, err := store.GetJob(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, jobs.JobStatusPending, again.Status)
}

func TestStoreRejectsEmptyJobID(t *testing.T) {
	store := NewStore()
	err := store.SaveJob(context.Background(), &jobs.ExtractStatementJob{})
	assert.Error(t, err)
}

func TestStoreGetUnknownJob(t *testing.T) {
	store := NewStore()
	_, err := store.GetJob(context.Background(), "missing")
	assert.Error(t, err)
}

func TestStoreListJobsFilters(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	require.NoError(t, store.SaveJob(ctx, &jobs.ExtractStatementJob{JobID: "a", StatementID: "st-1", Status: jobs.JobStatusCompleted}))
	require.NoError(t, store.SaveJob(ctx, &jobs.ExtractStatementJob{JobID: "b", StatementID: "st-2", Status: jobs.JobStatusPending}))
	require.NoError(t, store.SaveJob(ctx, &jobs.ExtractStatementJob{JobID: "c", StatementID: "st-2", Status: jobs.JobStatusCompleted}))

	byStatement, err := store.ListJobs(ctx, jobs.JobFilter{StatementID: "st-2"})
	require.NoError(t, err)
	assert.Len(t, byStatement, 2)

	byStatus, err := store.ListJobs(ctx, jobs.JobFilter{Status: jobs.JobStatusCompleted})
	require.NoError(t, err)
	assert.Len(t, byStatus, 2)

	limited, err := store.ListJobs(ctx, jobs.JobFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestQueueProcessesJobToCompletion(t *testing.T) {
	store := NewStore()
	queue := NewQueue(10, store)
	defer queue.Close()

	var mu sync.Mutex
	var handled []string
	handler := func(ctx context.Context, job jobs.Job) error {
		mu.Lock()
		handled = append(handled, job.GetID())
		mu.Unlock()
		return nil
	}

	ctx := context.Background()
	require.NoError(t, queue.Start(ctx, handler))

	job := &jobs.ExtractStatementJob{RawText: "raw statement text"}
	require.NoError(t, queue.PublishExtractStatement(ctx, job))
	require.NotEmpty(t, job.JobID)

	require.Eventually(t, func() bool {
		got, err := store.GetJob(ctx, job.JobID)
		return err == nil && got.Status == jobs.JobStatusCompleted
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{job.JobID}, handled)
}

func TestQueueRejectsPublishAfterClose(t *testing.T) {
	queue := NewQueue(1, nil)
	require.NoError(t, queue.Close())

	err := queue.PublishExtractStatement(context.Background(), &jobs.ExtractStatementJob{})
	assert.Error(t, err)
}
