package domain

import (
	"sync"
	"time"
)

type JobState string

const (
	JobStateCreated    JobState = "created"
	JobStateEnqueued   JobState = "enqueued"
	JobStateProcessing JobState = "processing"
	JobStateCompleted  JobState = "completed"
	JobStateFailed     JobState = "failed"
)

// Terminal reports whether the state allows no further transitions.
func (s JobState) Terminal() bool {
	return s == JobStateCompleted || s == JobStateFailed
}

type EventKind string

const (
	EventEnqueued  EventKind = "enqueued"
	EventProgress  EventKind = "progress"
	EventCompleted EventKind = "completed"
	EventFailed    EventKind = "failed"
)

// JobEvent is a lifecycle notification published by the queue. Progress
// events are informational only and never gate completion.
type JobEvent struct {
	JobID   string
	JobType string
	Kind    EventKind
	Current int
	Total   int
	Err     string
}

// Job is one queued unit of work, typically a single reservation attempt
// against a resource pool. State transitions are driven by the queue;
// terminal states are immutable.
type Job struct {
	ID        string
	Type      string
	Payload   map[string]any
	CreatedAt time.Time

	mu       sync.Mutex
	state    JobState
	errMsg   string
	progress func(current, total int)
}

func NewJob(id, jobType string, payload map[string]any) *Job {
	return &Job{
		ID:        id,
		Type:      jobType,
		Payload:   payload,
		CreatedAt: time.Now(),
		state:     JobStateCreated,
	}
}

func (j *Job) State() JobState {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state
}

// Err returns the failure message for a failed job, empty otherwise.
func (j *Job) Err() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.errMsg
}

// Transition moves the job to the given state. Transitions out of a
// terminal state are ignored.
func (j *Job) Transition(to JobState) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.state.Terminal() {
		return false
	}
	j.state = to
	return true
}

// FailWith marks the job failed and records the message.
func (j *Job) FailWith(msg string) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.state.Terminal() {
		return false
	}
	j.state = JobStateFailed
	j.errMsg = msg
	return true
}

// Progress reports fractional completion to the queue's subscribers.
// It is a no-op until the queue installs a reporter at dequeue time.
func (j *Job) Progress(current, total int) {
	j.mu.Lock()
	report := j.progress
	j.mu.Unlock()
	if report != nil {
		report(current, total)
	}
}

// SetProgressReporter installs the callback invoked by Progress. Called
// by the queue only.
func (j *Job) SetProgressReporter(report func(current, total int)) {
	j.mu.Lock()
	j.progress = report
	j.mu.Unlock()
}

// PayloadString returns the payload value under key if it is a string.
func (j *Job) PayloadString(key string) string {
	if j.Payload == nil {
		return ""
	}
	if s, ok := j.Payload[key].(string); ok {
		return s
	}
	return ""
}

// JobRecord is the persisted form of a job, kept as a durable trail of
// reservation attempts.
type JobRecord struct {
	ID        string
	Queue     string
	Type      string
	State     JobState
	Error     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
