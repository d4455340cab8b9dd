package queue

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

// TriggerType distinguishes how a sync job was requested.
type TriggerType string

const (
	TriggerManual    TriggerType = "manual"
	TriggerScheduled TriggerType = "scheduled"
)

// Job is the single job type both the scheduler and the manual trigger produce.
type Job struct {
	ProjectID string
	UserID    string
	Type      TriggerType
}

// Result reports the outcome of one executed job. Payload carries whatever
// the handler produced, for callers that block on Submit.
type Result struct {
	Success       bool
	ProjectID     string
	SyncStartTime time.Time
	CompletedAt   time.Time
	Payload       interface{}
	Err           error
}

// Checkpoint names a progress point a job reports while running.
type Checkpoint string

const (
	CheckpointConnected Checkpoint = "connected"
	CheckpointFetched   Checkpoint = "fetched"
	CheckpointSynced    Checkpoint = "synced"
)

// Handler executes one job. Progress is reported through the callback; a nil
// callback must be tolerated.
type Handler func(ctx context.Context, job Job, progress func(Checkpoint)) (interface{}, error)

// ErrQueueFull is returned when the job buffer cannot accept more work.
var ErrQueueFull = errors.New("job queue full")

// JobRunner executes jobs at-least-once with bounded concurrency.
type JobRunner interface {
	Enqueue(job Job) error
	Submit(ctx context.Context, job Job) Result
	Stop()
}

// workerRunner runs a fixed pool of workers over a buffered job channel.
type workerRunner struct {
	handler  Handler
	jobs     chan queuedJob
	wg       sync.WaitGroup
	stopOnce sync.Once
}

type queuedJob struct {
	job    Job
	result chan Result
}

// NewRunner starts workerCount workers draining the queue.
func NewRunner(handler Handler, workerCount, buffer int) JobRunner {
	if workerCount < 1 {
		workerCount = 1
	}
	if buffer < workerCount {
		buffer = workerCount * 4
	}

	r := &workerRunner{
		handler: handler,
		jobs:    make(chan queuedJob, buffer),
	}
	for i := 0; i < workerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}
	return r
}

func (r *workerRunner) worker(workerID int) {
	defer r.wg.Done()

	for qj := range r.jobs {
		res := r.run(qj.job, workerID)
		if qj.result != nil {
			qj.result <- res
		}
	}
}

func (r *workerRunner) run(job Job, workerID int) Result {
	start := time.Now()
	progress := func(cp Checkpoint) {
		log.Printf("[JobRunner] Worker %d: job project=%s type=%s checkpoint=%s", workerID, job.ProjectID, job.Type, cp)
	}

	payload, err := r.handler(context.Background(), job, progress)
	res := Result{
		Success:       err == nil,
		ProjectID:     job.ProjectID,
		SyncStartTime: start,
		CompletedAt:   time.Now(),
		Payload:       payload,
		Err:           err,
	}
	if err != nil {
		log.Printf("[JobRunner] Worker %d: job project=%s type=%s failed: %v", workerID, job.ProjectID, job.Type, err)
	}
	return res
}

// Enqueue queues a job without waiting for its result.
func (r *workerRunner) Enqueue(job Job) error {
	select {
	case r.jobs <- queuedJob{job: job}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Submit queues a job and blocks until it completes or ctx is done.
// A job that outlives ctx keeps running; only the wait is abandoned.
func (r *workerRunner) Submit(ctx context.Context, job Job) Result {
	resultCh := make(chan Result, 1)
	select {
	case r.jobs <- queuedJob{job: job, result: resultCh}:
	default:
		return Result{Success: false, ProjectID: job.ProjectID, Err: ErrQueueFull}
	}

	select {
	case res := <-resultCh:
		return res
	case <-ctx.Done():
		return Result{Success: false, ProjectID: job.ProjectID, Err: ctx.Err()}
	}
}

// Stop closes the queue and waits for in-flight jobs to finish.
func (r *workerRunner) Stop() {
	r.stopOnce.Do(func() {
		close(r.jobs)
	})
	r.wg.Wait()
}
