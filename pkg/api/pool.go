package api

import (
	"context"
	"sync/atomic"
)

// WorkerPool bounds concurrent request processing. Decisions and
// classifications are read-mostly and may run in parallel; outcome updates
// mutate the Q-table and trigger sampled persistence, so the update pool
// defaults to a single slot to keep table writes and file saves serialized.
type WorkerPool struct {
	decideSem chan struct{} // Semaphore for decision/classify/info operations
	updateSem chan struct{} // Semaphore for learning updates

	queuedDecide int64
	queuedUpdate int64
	activeDecide int64
	activeUpdate int64
	totalDecide  int64
	totalUpdate  int64
}

// PoolConfig configures the worker pool.
type PoolConfig struct {
	MaxDecideWorkers int // Max concurrent decisions (default: 100)
	MaxUpdateWorkers int // Max concurrent updates (default: 1)
}

// DefaultPoolConfig returns a PoolConfig with sensible defaults.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxDecideWorkers: 100,
		MaxUpdateWorkers: 1,
	}
}

// NewWorkerPool creates a worker pool with the given configuration.
func NewWorkerPool(config PoolConfig) *WorkerPool {
	if config.MaxDecideWorkers <= 0 {
		config.MaxDecideWorkers = 100
	}
	if config.MaxUpdateWorkers <= 0 {
		config.MaxUpdateWorkers = 1
	}

	return &WorkerPool{
		decideSem: make(chan struct{}, config.MaxDecideWorkers),
		updateSem: make(chan struct{}, config.MaxUpdateWorkers),
	}
}

// AcquireDecide acquires a slot for a decision-side operation. Returns an
// error if the context is cancelled while waiting.
func (p *WorkerPool) AcquireDecide(ctx context.Context) error {
	atomic.AddInt64(&p.queuedDecide, 1)
	defer atomic.AddInt64(&p.queuedDecide, -1)

	select {
	case p.decideSem <- struct{}{}:
		atomic.AddInt64(&p.activeDecide, 1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ReleaseDecide releases a decision slot.
func (p *WorkerPool) ReleaseDecide() {
	atomic.AddInt64(&p.activeDecide, -1)
	atomic.AddInt64(&p.totalDecide, 1)
	<-p.decideSem
}

// AcquireUpdate acquires a slot for a learning update. Returns an error if
// the context is cancelled while waiting.
func (p *WorkerPool) AcquireUpdate(ctx context.Context) error {
	atomic.AddInt64(&p.queuedUpdate, 1)
	defer atomic.AddInt64(&p.queuedUpdate, -1)

	select {
	case p.updateSem <- struct{}{}:
		atomic.AddInt64(&p.activeUpdate, 1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ReleaseUpdate releases an update slot.
func (p *WorkerPool) ReleaseUpdate() {
	atomic.AddInt64(&p.activeUpdate, -1)
	atomic.AddInt64(&p.totalUpdate, 1)
	<-p.updateSem
}

// PoolStats is a snapshot of pool activity.
type PoolStats struct {
	ActiveDecide int64 `json:"active_decide"`
	ActiveUpdate int64 `json:"active_update"`
	QueuedDecide int64 `json:"queued_decide"`
	QueuedUpdate int64 `json:"queued_update"`
	TotalDecide  int64 `json:"total_decide"`
	TotalUpdate  int64 `json:"total_update"`
	MaxDecide    int   `json:"max_decide"`
	MaxUpdate    int   `json:"max_update"`
}

// Stats returns current pool statistics.
func (p *WorkerPool) Stats() PoolStats {
	return PoolStats{
		ActiveDecide: atomic.LoadInt64(&p.activeDecide),
		ActiveUpdate: atomic.LoadInt64(&p.activeUpdate),
		QueuedDecide: atomic.LoadInt64(&p.queuedDecide),
		QueuedUpdate: atomic.LoadInt64(&p.queuedUpdate),
		TotalDecide:  atomic.LoadInt64(&p.totalDecide),
		TotalUpdate:  atomic.LoadInt64(&p.totalUpdate),
		MaxDecide:    cap(p.decideSem),
		MaxUpdate:    cap(p.updateSem),
	}
}

// TryAcquireDecide tries to acquire a decision slot without blocking.
func (p *WorkerPool) TryAcquireDecide() bool {
	select {
	case p.decideSem <- struct{}{}:
		atomic.AddInt64(&p.activeDecide, 1)
		return true
	default:
		return false
	}
}
