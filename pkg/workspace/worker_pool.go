package workspace

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gnana997/esmshift/pkg/util"
)

// ErrPoolStopped is returned by Submit after Stop or cancellation.
var ErrPoolStopped = errors.New("worker pool is stopped")

// Job is one file to convert.
type Job struct {
	Path  string
	Rel   string
	JobID int
}

// ProcessFunc converts a single job.
type ProcessFunc func(ctx context.Context, job Job) (FileReport, error)

// WorkerPool runs a fixed number of goroutines that pull jobs from a
// buffered channel and deliver reports and errors on separate channels.
//
// The worker count should match the parser pool size so a worker never
// waits on a parser:
//
//	pool := NewWorkerPool(ctx, 0, process, logger)
//	pool.Start()
//	defer pool.Stop()
//
//	for i, file := range files {
//	    pool.Submit(Job{Path: file, JobID: i})
//	}
//	pool.FinishSubmitting()
//
// Results and Errors must be drained concurrently with Submit.
type WorkerPool struct {
	numWorkers int
	jobs       chan Job
	results    chan FileReport
	errors     chan FileError
	wg         sync.WaitGroup
	process    ProcessFunc
	logger     *slog.Logger

	ctx        context.Context
	cancel     context.CancelFunc
	started    atomic.Bool
	stopped    atomic.Bool
	jobsClosed atomic.Bool

	jobsSubmitted atomic.Int64
	jobsProcessed atomic.Int64
	jobsFailed    atomic.Int64
}

// NewWorkerPool creates a pool bound to ctx. numWorkers 0 selects
// util.GetOptimalPoolSize().
func NewWorkerPool(ctx context.Context, numWorkers int, process ProcessFunc, logger *slog.Logger) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = util.GetOptimalPoolSize()
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(ctx)

	return &WorkerPool{
		numWorkers: numWorkers,
		jobs:       make(chan Job, numWorkers*2),
		results:    make(chan FileReport, numWorkers),
		errors:     make(chan FileError, numWorkers),
		process:    process,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start spawns the workers. It must be called before Submit.
func (wp *WorkerPool) Start() {
	if !wp.started.CompareAndSwap(false, true) {
		wp.logger.Warn("worker pool already started")
		return
	}

	wp.logger.Debug("starting worker pool", "workers", wp.numWorkers)

	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for {
		select {
		case <-wp.ctx.Done():
			return

		case job, ok := <-wp.jobs:
			if !ok {
				return
			}
			wp.logger.Debug("worker received job", "worker_id", id, "file", job.Rel, "job_id", job.JobID)
			wp.processJob(job)
		}
	}
}

func (wp *WorkerPool) processJob(job Job) {
	report, err := wp.process(wp.ctx, job)
	if err != nil {
		wp.jobsFailed.Add(1)
		select {
		case wp.errors <- FileError{Path: job.Path, Rel: job.Rel, Error: err}:
		case <-wp.ctx.Done():
		}
		return
	}

	wp.jobsProcessed.Add(1)
	select {
	case wp.results <- report:
	case <-wp.ctx.Done():
	}
}

// Submit enqueues a job, blocking while the queue is full.
func (wp *WorkerPool) Submit(job Job) error {
	if wp.stopped.Load() {
		return ErrPoolStopped
	}

	select {
	case <-wp.ctx.Done():
		return ErrPoolStopped
	case wp.jobs <- job:
		wp.jobsSubmitted.Add(1)
		return nil
	}
}

// Results returns the channel of successful conversions.
func (wp *WorkerPool) Results() <-chan FileReport {
	return wp.results
}

// Errors returns the channel of per-file failures.
func (wp *WorkerPool) Errors() <-chan FileError {
	return wp.errors
}

// FinishSubmitting closes the job queue so workers exit once it drains. It
// is idempotent.
func (wp *WorkerPool) FinishSubmitting() {
	if wp.jobsClosed.CompareAndSwap(false, true) {
		close(wp.jobs)
		wp.logger.Debug("job queue closed", "total_submitted", wp.jobsSubmitted.Load())
	}
}

// Wait blocks until every worker has exited.
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

// Stop closes the queue, waits for in-flight jobs and closes the result
// channels. It is idempotent.
func (wp *WorkerPool) Stop() {
	if !wp.stopped.CompareAndSwap(false, true) {
		return
	}

	wp.FinishSubmitting()
	wp.wg.Wait()

	close(wp.results)
	close(wp.errors)
	wp.cancel()

	wp.logger.Debug("worker pool stopped",
		"jobs_submitted", wp.jobsSubmitted.Load(),
		"jobs_processed", wp.jobsProcessed.Load(),
		"jobs_failed", wp.jobsFailed.Load())
}

// GetStats returns current worker pool statistics.
func (wp *WorkerPool) GetStats() WorkerPoolStats {
	return WorkerPoolStats{
		NumWorkers:    wp.numWorkers,
		JobsSubmitted: wp.jobsSubmitted.Load(),
		JobsProcessed: wp.jobsProcessed.Load(),
		JobsFailed:    wp.jobsFailed.Load(),
		QueueLength:   len(wp.jobs),
	}
}

// WorkerPoolStats contains statistics about the worker pool.
type WorkerPoolStats struct {
	NumWorkers    int
	JobsSubmitted int64
	JobsProcessed int64
	JobsFailed    int64
	QueueLength   int
}
