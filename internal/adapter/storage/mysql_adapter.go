package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rl1809/reservation-service/internal/core/domain"
)

var ErrJobNotFound = errors.New("job record not found")

// MySQLAdapter keeps a durable trail of reservation jobs.
//
// Schema:
//
//	CREATE TABLE reservation_jobs (
//	    id         VARCHAR(36) PRIMARY KEY,
//	    queue      VARCHAR(64)  NOT NULL,
//	    type       VARCHAR(64)  NOT NULL,
//	    state      VARCHAR(16)  NOT NULL,
//	    error      TEXT         NOT NULL,
//	    created_at DATETIME     NOT NULL,
//	    updated_at DATETIME     NOT NULL
//	);
type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

func (m *MySQLAdapter) InsertJob(ctx context.Context, rec domain.JobRecord) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO reservation_jobs (id, queue, type, state, error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Queue, rec.Type, rec.State, rec.Error, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}

	return nil
}

func (m *MySQLAdapter) UpdateJobState(ctx context.Context, id string, state domain.JobState, errMsg string) error {
	result, err := m.db.ExecContext(ctx, `
		UPDATE reservation_jobs
		SET state = ?, error = ?, updated_at = NOW()
		WHERE id = ?`,
		state, errMsg, id,
	)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrJobNotFound
	}

	return nil
}
