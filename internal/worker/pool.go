package worker

import (
	"context"
	"sync"
	"time"

	"github.com/dpereira/leitnerbox/internal/logger"
)

// Job is a unit of background work, typically a persistence checkpoint.
type Job interface {
	Run(context.Context) error
	Name() string
}

// Pool runs jobs on a fixed set of workers so callers never block on
// persistence I/O.
type Pool struct {
	jobs      chan Job
	wg        sync.WaitGroup
	workers   int
	cancel    context.CancelFunc
	closeOnce sync.Once
	log       *logger.Logger
}

func NewPool(workers, queueSize int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 32
	}
	log := logger.Default().WithPrefix("worker-pool")
	log.Debug("creating worker pool with %d workers and queue size %d", workers, queueSize)
	return &Pool{
		jobs:    make(chan Job, queueSize),
		workers: workers,
		log:     log,
	}
}

func (p *Pool) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.log.Info("starting worker pool with %d workers", p.workers)

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			workerLog := p.log.WithField("worker_id", id)
			workerLog.Debug("worker started")

			for {
				select {
				case <-ctx.Done():
					workerLog.Debug("worker shutting down (context cancelled)")
					return
				case job, ok := <-p.jobs:
					if !ok {
						workerLog.Debug("worker shutting down (queue closed)")
						return
					}
					jobLog := workerLog.WithField("job", job.Name())
					start := time.Now()
					jobCtx := logger.NewContext(ctx, jobLog)
					if err := job.Run(jobCtx); err != nil {
						jobLog.Error("job failed after %v: %v", time.Since(start), err)
					} else {
						jobLog.Debug("job completed in %v", time.Since(start))
					}
				}
			}
		}(i + 1)
	}
}

// Stop cancels the worker context and waits for workers to exit. Jobs still
// queued may be abandoned; use Drain when they must run.
func (p *Pool) Stop() {
	p.log.Info("stopping worker pool")
	if p.cancel != nil {
		p.cancel()
	}
	p.closeOnce.Do(func() { close(p.jobs) })
	p.wg.Wait()
	p.log.Info("worker pool stopped")
}

// Drain stops accepting new jobs, runs everything already queued to
// completion with a live context, and only then cancels the workers. This is
// the shutdown path: accepted save jobs must reach the database.
func (p *Pool) Drain() {
	p.log.Info("draining worker pool: %d jobs queued", len(p.jobs))
	p.closeOnce.Do(func() { close(p.jobs) })
	p.wg.Wait()
	if p.cancel != nil {
		p.cancel()
	}
	p.log.Info("worker pool drained")
}

// TrySubmit enqueues a job without blocking. When the queue is full the job
// is dropped and false is returned; checkpoint jobs are safe to drop because
// the next answer enqueues a fresher snapshot.
func (p *Pool) TrySubmit(job Job) bool {
	select {
	case p.jobs <- job:
		return true
	default:
		p.log.Warn("job queue full, dropping job: %s", job.Name())
		return false
	}
}

// Submit enqueues a job, blocking while the queue is full.
func (p *Pool) Submit(job Job) {
	p.jobs <- job
}

// QueueSize returns the current number of pending jobs.
func (p *Pool) QueueSize() int {
	return len(p.jobs)
}
