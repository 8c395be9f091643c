package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrSchedulerNotRunning = errors.New("scheduler: not running")
)

// JobKind selects what a deferred job does when it fires.
type JobKind string

const (
	// JobKindCompleteDraft completes an existing draft order
	JobKindCompleteDraft JobKind = "COMPLETE_DRAFT"
	// JobKindCreateAndComplete creates a draft order for a reconciled order
	// and completes it
	JobKindCreateAndComplete JobKind = "CREATE_AND_COMPLETE"
	// JobKindUpdateAndComplete refreshes an existing draft order for a
	// reconciled order and completes it
	JobKindUpdateAndComplete JobKind = "UPDATE_AND_COMPLETE"
)

// OrderJob is a deferred completion job. It carries identifiers only; the
// executor reloads all state at fire time so decisions reflect the present,
// not the moment of scheduling.
type OrderJob struct {
	ID                 uuid.UUID
	Kind               JobKind
	MerchantID         uuid.UUID
	MarketplaceOrderID int64
	DraftOrderID       string
	PaymentMethod      string
}

// NewOrderJob builds a job for the given order
func NewOrderJob(kind JobKind, merchantID uuid.UUID, marketplaceOrderID int64) OrderJob {
	return OrderJob{
		ID:                 uuid.New(),
		Kind:               kind,
		MerchantID:         merchantID,
		MarketplaceOrderID: marketplaceOrderID,
	}
}

// JobExecutor runs a fired job.
type JobExecutor interface {
	Execute(ctx context.Context, job OrderJob) error
}

// DeferredScheduler fires jobs after a fixed delay using in-process timers.
// Pending timers do not survive a restart; the delays are short enough that
// a lost job is recovered by the next order_updated delivery or operator
// reconciliation.
type DeferredScheduler struct {
	executor JobExecutor
	logger   *zap.Logger

	mu        sync.Mutex
	timers    map[uuid.UUID]*time.Timer
	isRunning bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewDeferredScheduler creates a scheduler delivering jobs to the executor
func NewDeferredScheduler(executor JobExecutor, logger *zap.Logger) *DeferredScheduler {
	return &DeferredScheduler{
		executor: executor,
		logger:   logger,
		timers:   make(map[uuid.UUID]*time.Timer),
	}
}

// Start makes the scheduler accept jobs
func (s *DeferredScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return nil
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.isRunning = true
	s.logger.Info("Deferred scheduler started")
	return nil
}

// Stop cancels all pending timers and waits for in-flight executions
func (s *DeferredScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Deferred scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Deferred scheduler stop timed out")
		return ctx.Err()
	}
}

// Schedule arms a timer that executes the job after the delay
func (s *DeferredScheduler) Schedule(job OrderJob, delay time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isRunning {
		return ErrSchedulerNotRunning
	}

	s.timers[job.ID] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.timers, job.ID)
		running := s.isRunning
		if running {
			s.wg.Add(1)
		}
		s.mu.Unlock()
		if !running {
			return
		}
		defer s.wg.Done()

		if err := s.executor.Execute(s.ctx, job); err != nil {
			s.logger.Error("Deferred job failed",
				zap.String("job_id", job.ID.String()),
				zap.String("kind", string(job.Kind)),
				zap.String("merchant_id", job.MerchantID.String()),
				zap.Int64("marketplace_order_id", job.MarketplaceOrderID),
				zap.Error(err),
			)
		}
	})

	s.logger.Info("Deferred job scheduled",
		zap.String("job_id", job.ID.String()),
		zap.String("kind", string(job.Kind)),
		zap.Int64("marketplace_order_id", job.MarketplaceOrderID),
		zap.Duration("delay", delay),
	)
	return nil
}

// Cancel stops a pending job if its timer has not fired yet
func (s *DeferredScheduler) Cancel(jobID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	timer, ok := s.timers[jobID]
	if !ok {
		return false
	}
	timer.Stop()
	delete(s.timers, jobID)
	return true
}

// PendingCount reports how many timers are armed
func (s *DeferredScheduler) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}
