package parallel

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// JobResult is the outcome of one submitted job.
type JobResult struct {
	JobID    string
	Error    error
	Duration time.Duration
	// Skipped is set when the pool was cancelled before the job ran.
	Skipped bool
}

// WorkerPool manages concurrent job execution with bounded concurrency.
type WorkerPool struct {
	maxWorkers int
	semaphore  chan struct{}
	wg         sync.WaitGroup
	mu         sync.Mutex
	results    []JobResult
	errors     []error
	failFast   bool
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewWorkerPool creates a new worker pool with bounded concurrency.
// If maxWorkers is 0, every submitted job runs at once.
// If failFast is true, the context will be cancelled on the first error.
func NewWorkerPool(ctx context.Context, maxWorkers int, failFast bool) *WorkerPool {
	if maxWorkers < 0 {
		maxWorkers = 0
	}
	ctx, cancel := context.WithCancel(ctx)
	return &WorkerPool{
		maxWorkers: maxWorkers,
		semaphore:  make(chan struct{}, maxWorkers),
		failFast:   failFast,
		ctx:        ctx,
		cancel:     cancel,
		results:    make([]JobResult, 0),
	}
}

// Context returns the pool context. It is cancelled by Cancel, by Wait, or
// by the first error when failFast is set.
func (p *WorkerPool) Context() context.Context {
	return p.ctx
}

// Submit schedules fn. If the pool is at capacity the job waits in its own
// goroutine for a free slot, so Submit never blocks.
func (p *WorkerPool) Submit(jobID string, fn func(ctx context.Context) error) {
	p.mu.Lock()
	slot := len(p.results)
	p.results = append(p.results, JobResult{JobID: jobID, Skipped: true})
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		// Acquire semaphore slot
		if p.maxWorkers > 0 {
			select {
			case p.semaphore <- struct{}{}:
				defer func() { <-p.semaphore }()
			case <-p.ctx.Done():
				return
			}
		}

		// Check if we should still run (fail-fast or cancelled)
		select {
		case <-p.ctx.Done():
			return
		default:
		}

		start := time.Now()
		err := fn(p.ctx)
		duration := time.Since(start)

		p.mu.Lock()
		defer p.mu.Unlock()

		p.results[slot] = JobResult{JobID: jobID, Error: err, Duration: duration}
		if err != nil {
			p.errors = append(p.errors, fmt.Errorf("%s: %w", jobID, err))
			if p.failFast {
				p.cancel()
			}
		}
	}()
}

// Wait waits for all submitted jobs and returns one result per job in
// submission order. Jobs that never ran are marked Skipped.
func (p *WorkerPool) Wait() ([]JobResult, []error) {
	p.wg.Wait()
	p.mu.Lock()
	defer p.mu.Unlock()

	// Cancel the context to clean up
	p.cancel()

	results := make([]JobResult, len(p.results))
	copy(results, p.results)

	errors := make([]error, len(p.errors))
	copy(errors, p.errors)

	return results, errors
}

// Cancel cancels all pending work in the pool.
func (p *WorkerPool) Cancel() {
	p.cancel()
}
