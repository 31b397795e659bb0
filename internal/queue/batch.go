package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rl1809/reservation-service/internal/core/domain"
)

// SaveBatchJSON creates and enqueues one job per element of a JSON array
// of payload objects. Any document that is not an array is rejected with
// domain.ErrInvalidInput and nothing is enqueued.
func (q *Queue) SaveBatchJSON(ctx context.Context, jobType string, raw []byte) ([]*domain.Job, error) {
	var payloads []map[string]any
	if err := json.Unmarshal(raw, &payloads); err != nil {
		return nil, fmt.Errorf("%w: jobs payload is not an array", domain.ErrInvalidInput)
	}

	jobs := make([]*domain.Job, 0, len(payloads))
	for _, payload := range payloads {
		job := q.Create(jobType, payload)
		if err := q.Save(ctx, job); err != nil {
			return jobs, err
		}
		jobs = append(jobs, job)
	}

	return jobs, nil
}
