// Package queue implements a named in-memory job queue with per-type FIFO
// ordering, lifecycle events and at-most-once delivery. Serialization of
// counter mutations comes from running a job type with concurrency 1.
package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rl1809/reservation-service/internal/core/domain"
	"github.com/rl1809/reservation-service/internal/obs"
	"github.com/rl1809/reservation-service/internal/port"
)

var (
	ErrQueueFull   = errors.New("queue is full")
	ErrQueueClosed = errors.New("queue is closed")
)

// Handler processes one dequeued job. A nil return completes the job, an
// error fails it. Failed jobs are not retried.
type Handler func(ctx context.Context, job *domain.Job) error

// typeQueue is the backlog for one job type. Workers pop the head under
// the queue mutex, so enqueue order is delivery order.
type typeQueue struct {
	backlog []*domain.Job
	notify  chan struct{}
}

type Queue struct {
	name    string
	size    int
	log     *zap.SugaredLogger
	records port.JobRepository

	mu         sync.Mutex
	types      map[string]*typeQueue
	jobs       map[string]*domain.Job
	registered map[string]bool
	closed     bool

	subMu sync.RWMutex
	subs  []chan domain.JobEvent

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type Option func(*Queue)

// WithLogger sets the queue logger. Default is a nop logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(q *Queue) { q.log = log }
}

// WithJobRecords persists job state transitions through repo.
func WithJobRecords(repo port.JobRepository) Option {
	return func(q *Queue) { q.records = repo }
}

// WithBuffer caps the per-type backlog.
func WithBuffer(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.size = n
		}
	}
}

func New(name string, opts ...Option) *Queue {
	ctx, cancel := context.WithCancel(context.Background())
	q := &Queue{
		name:       name,
		size:       1024,
		log:        zap.NewNop().Sugar(),
		types:      make(map[string]*typeQueue),
		jobs:       make(map[string]*domain.Job),
		registered: make(map[string]bool),
		ctx:        ctx,
		cancel:     cancel,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

func (q *Queue) Name() string { return q.name }

// Create allocates a job in state created. The job is not visible to
// workers until Save.
func (q *Queue) Create(jobType string, payload map[string]any) *domain.Job {
	return domain.NewJob(uuid.NewString(), jobType, payload)
}

// Save transitions the job to enqueued, persists its record, publishes the
// enqueued event and appends it to its type's FIFO backlog.
func (q *Queue) Save(ctx context.Context, job *domain.Job) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	t := q.typeQueueLocked(job.Type)
	if len(t.backlog) >= q.size {
		q.mu.Unlock()
		return ErrQueueFull
	}
	job.Transition(domain.JobStateEnqueued)
	q.jobs[job.ID] = job
	t.backlog = append(t.backlog, job)
	q.mu.Unlock()

	q.persistInsert(ctx, job)
	obs.QueueDepth.WithLabelValues(q.name, job.Type).Inc()
	q.publish(domain.JobEvent{JobID: job.ID, JobType: job.Type, Kind: domain.EventEnqueued})

	select {
	case t.notify <- struct{}{}:
	default:
	}
	return nil
}

// Process registers handler for jobType and starts concurrency workers
// draining its backlog. Registration is idempotent per type: later calls
// are no-ops, so repeated triggers cannot spawn competing consumers.
func (q *Queue) Process(jobType string, concurrency int, handler Handler) error {
	if concurrency <= 0 {
		concurrency = 1
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	if q.registered[jobType] {
		q.mu.Unlock()
		return nil
	}
	q.registered[jobType] = true
	t := q.typeQueueLocked(jobType)
	q.mu.Unlock()

	for i := 0; i < concurrency; i++ {
		q.wg.Add(1)
		go func() {
			defer q.wg.Done()
			q.consume(t, jobType, handler)
		}()
	}
	q.log.Infow("queue processing started",
		"queue", q.name, "type", jobType, "concurrency", concurrency)
	return nil
}

// Subscribe returns a channel of lifecycle events. Slow subscribers drop
// events rather than stalling workers.
func (q *Queue) Subscribe(buf int) <-chan domain.JobEvent {
	if buf <= 0 {
		buf = 64
	}
	ch := make(chan domain.JobEvent, buf)
	q.subMu.Lock()
	q.subs = append(q.subs, ch)
	q.subMu.Unlock()
	return ch
}

// Job returns a previously saved job by id.
func (q *Queue) Job(id string) (*domain.Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	job, ok := q.jobs[id]
	return job, ok
}

// Pending returns the number of jobs waiting in jobType's backlog.
func (q *Queue) Pending(jobType string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	t, ok := q.types[jobType]
	if !ok {
		return 0
	}
	return len(t.backlog)
}

// Close rejects further saves, stops the workers and waits for in-flight
// jobs. Dequeued jobs run to completion; backlogged jobs stay enqueued.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.cancel()
	q.wg.Wait()
}

func (q *Queue) typeQueueLocked(jobType string) *typeQueue {
	t, ok := q.types[jobType]
	if !ok {
		t = &typeQueue{notify: make(chan struct{}, 1)}
		q.types[jobType] = t
	}
	return t
}

func (q *Queue) consume(t *typeQueue, jobType string, handler Handler) {
	for {
		job := q.pop(t)
		if job == nil {
			select {
			case <-q.ctx.Done():
				return
			case <-t.notify:
				continue
			}
		}
		obs.QueueDepth.WithLabelValues(q.name, jobType).Dec()
		q.runJob(job, handler)
	}
}

func (q *Queue) pop(t *typeQueue) *domain.Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(t.backlog) == 0 {
		return nil
	}
	job := t.backlog[0]
	t.backlog = t.backlog[1:]
	return job
}

// runJob drives one job through processing to a terminal state. A handler
// error fails the job and the loop moves on; one job's failure must not
// stop the ones behind it.
func (q *Queue) runJob(job *domain.Job, handler Handler) {
	job.Transition(domain.JobStateProcessing)
	job.SetProgressReporter(func(current, total int) {
		q.publish(domain.JobEvent{
			JobID:   job.ID,
			JobType: job.Type,
			Kind:    domain.EventProgress,
			Current: current,
			Total:   total,
		})
	})

	err := q.invoke(job, handler)
	if err != nil {
		job.FailWith(err.Error())
		q.persistUpdate(job)
		obs.JobsTotal.WithLabelValues(q.name, job.Type, "failed").Inc()
		q.publish(domain.JobEvent{
			JobID:   job.ID,
			JobType: job.Type,
			Kind:    domain.EventFailed,
			Err:     err.Error(),
		})
		return
	}

	job.Transition(domain.JobStateCompleted)
	q.persistUpdate(job)
	obs.JobsTotal.WithLabelValues(q.name, job.Type, "completed").Inc()
	q.publish(domain.JobEvent{JobID: job.ID, JobType: job.Type, Kind: domain.EventCompleted})
}

// invoke shields the worker loop from a panicking handler. The job gets a
// fresh context: once dequeued it runs to completion or failure, never
// mid-flight cancellation.
func (q *Queue) invoke(job *domain.Job, handler Handler) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return handler(context.Background(), job)
}

func (q *Queue) publish(ev domain.JobEvent) {
	q.subMu.RLock()
	defer q.subMu.RUnlock()
	for _, ch := range q.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (q *Queue) persistInsert(ctx context.Context, job *domain.Job) {
	if q.records == nil {
		return
	}
	rec := domain.JobRecord{
		ID:        job.ID,
		Queue:     q.name,
		Type:      job.Type,
		State:     job.State(),
		CreatedAt: job.CreatedAt,
		UpdatedAt: job.CreatedAt,
	}
	if err := q.records.InsertJob(ctx, rec); err != nil {
		q.log.Warnw("job record insert failed", "job_id", job.ID, "error", err)
	}
}

func (q *Queue) persistUpdate(job *domain.Job) {
	if q.records == nil {
		return
	}
	if err := q.records.UpdateJobState(context.Background(), job.ID, job.State(), job.Err()); err != nil {
		q.log.Warnw("job record update failed", "job_id", job.ID, "error", err)
	}
}
