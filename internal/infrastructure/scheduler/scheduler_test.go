package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingExecutor struct {
	mu   sync.Mutex
	jobs []OrderJob
	done chan struct{}
}

func newRecordingExecutor(expected int) *recordingExecutor {
	return &recordingExecutor{done: make(chan struct{}, expected)}
}

func (e *recordingExecutor) Execute(_ context.Context, job OrderJob) error {
	e.mu.Lock()
	e.jobs = append(e.jobs, job)
	e.mu.Unlock()
	e.done <- struct{}{}
	return nil
}

func (e *recordingExecutor) executed() []OrderJob {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]OrderJob(nil), e.jobs...)
}

func waitFor(t *testing.T, ch chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for job execution")
	}
}

func TestDeferredScheduler(t *testing.T) {
	t.Run("fires a job after the delay", func(t *testing.T) {
		executor := newRecordingExecutor(1)
		s := NewDeferredScheduler(executor, zap.NewNop())
		require.NoError(t, s.Start(context.Background()))
		defer s.Stop(context.Background())

		job := NewOrderJob(JobKindCompleteDraft, uuid.New(), 9001)
		require.NoError(t, s.Schedule(job, 10*time.Millisecond))

		waitFor(t, executor.done)
		executed := executor.executed()
		require.Len(t, executed, 1)
		assert.Equal(t, job.ID, executed[0].ID)
		assert.Equal(t, JobKindCompleteDraft, executed[0].Kind)
		assert.Zero(t, s.PendingCount())
	})

	t.Run("rejects jobs before start", func(t *testing.T) {
		s := NewDeferredScheduler(newRecordingExecutor(1), zap.NewNop())
		err := s.Schedule(NewOrderJob(JobKindCompleteDraft, uuid.New(), 9001), time.Minute)
		assert.ErrorIs(t, err, ErrSchedulerNotRunning)
	})

	t.Run("cancel stops a pending job", func(t *testing.T) {
		executor := newRecordingExecutor(1)
		s := NewDeferredScheduler(executor, zap.NewNop())
		require.NoError(t, s.Start(context.Background()))
		defer s.Stop(context.Background())

		job := NewOrderJob(JobKindCreateAndComplete, uuid.New(), 9001)
		require.NoError(t, s.Schedule(job, time.Hour))
		assert.Equal(t, 1, s.PendingCount())

		assert.True(t, s.Cancel(job.ID))
		assert.Zero(t, s.PendingCount())
		assert.False(t, s.Cancel(job.ID))
		assert.Empty(t, executor.executed())
	})

	t.Run("stop discards pending timers", func(t *testing.T) {
		executor := newRecordingExecutor(1)
		s := NewDeferredScheduler(executor, zap.NewNop())
		require.NoError(t, s.Start(context.Background()))

		require.NoError(t, s.Schedule(NewOrderJob(JobKindUpdateAndComplete, uuid.New(), 9001), time.Hour))
		require.NoError(t, s.Stop(context.Background()))

		assert.Zero(t, s.PendingCount())
		assert.Empty(t, executor.executed())
	})

	t.Run("runs independent jobs concurrently", func(t *testing.T) {
		executor := newRecordingExecutor(2)
		s := NewDeferredScheduler(executor, zap.NewNop())
		require.NoError(t, s.Start(context.Background()))
		defer s.Stop(context.Background())

		require.NoError(t, s.Schedule(NewOrderJob(JobKindCompleteDraft, uuid.New(), 9001), 5*time.Millisecond))
		require.NoError(t, s.Schedule(NewOrderJob(JobKindCompleteDraft, uuid.New(), 9002), 5*time.Millisecond))

		waitFor(t, executor.done)
		waitFor(t, executor.done)
		assert.Len(t, executor.executed(), 2)
	})
}
