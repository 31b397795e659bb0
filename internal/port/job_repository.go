package port

import (
	"context"

	"github.com/rl1809/reservation-service/internal/core/domain"
)

// JobRepository persists reservation job records. The queue treats it as
// best-effort: persistence failures are logged, never fail the job.
type JobRepository interface {
	// InsertJob stores a new job record at enqueue time.
	InsertJob(ctx context.Context, rec domain.JobRecord) error

	// UpdateJobState records a state transition for an existing job.
	UpdateJobState(ctx context.Context, id string, state domain.JobState, errMsg string) error
}
