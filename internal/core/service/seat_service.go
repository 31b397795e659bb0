package service

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/rl1809/reservation-service/internal/core/domain"
	"github.com/rl1809/reservation-service/internal/obs"
	"github.com/rl1809/reservation-service/internal/port"
	"github.com/rl1809/reservation-service/internal/queue"
)

const (
	// SeatPoolKey is the counter key holding the shared seat pool.
	SeatPoolKey = "available_seats"

	JobTypeReserveSeat = "reserve_seat"
)

// SeatService owns the seat pool: the admission gate, the read path, and
// the serialized worker that is the only writer of the pool counter.
type SeatService struct {
	counters port.CounterRepository
	queue    *queue.Queue
	log      *zap.SugaredLogger

	// gate admits new reservation requests. Closed until the first
	// successful reset; closed again by the worker on the last unit.
	gate atomic.Bool
}

func NewSeatService(counters port.CounterRepository, q *queue.Queue, log *zap.SugaredLogger) *SeatService {
	return &SeatService{counters: counters, queue: q, log: log}
}

// AvailableSeats returns the current pool count. An absent counter reads
// as zero.
func (s *SeatService) AvailableSeats(ctx context.Context) (int64, error) {
	n, _, err := s.counters.GetCount(ctx, SeatPoolKey)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return n, nil
}

// ResetSeats writes the pool counter and opens the admission gate, but
// only once the write has landed.
func (s *SeatService) ResetSeats(ctx context.Context, seats int64) error {
	if err := s.counters.SetCount(ctx, SeatPoolKey, seats); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	s.gate.Store(true)
	return nil
}

// ReservationsOpen is the handlers' read-only view of the admission gate.
func (s *SeatService) ReservationsOpen() bool {
	return s.gate.Load()
}

// RequestReservation enqueues one reservation attempt. While the gate is
// closed the request is rejected immediately and no job is created.
func (s *SeatService) RequestReservation(ctx context.Context) (*domain.Job, error) {
	if !s.gate.Load() {
		obs.ReservationsBlockedTotal.Inc()
		return nil, domain.ErrReservationsBlocked
	}

	job := s.queue.Create(JobTypeReserveSeat, nil)
	if err := s.queue.Save(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// StartProcessing registers the reservation worker. Concurrency is pinned
// to 1: with no lock on the counter, FIFO single-consumer ordering is the
// only thing keeping the read-modify-write sequence safe.
func (s *SeatService) StartProcessing() error {
	return s.queue.Process(JobTypeReserveSeat, 1, s.reserveOne)
}

func (s *SeatService) reserveOne(ctx context.Context, _ *domain.Job) error {
	n, _, err := s.counters.GetCount(ctx, SeatPoolKey)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	if n <= 0 {
		return fmt.Errorf("%w: not enough seats available", domain.ErrResourceExhausted)
	}

	if n <= 1 {
		// Last unit: stop admitting before the write lands so no new
		// request can race it.
		s.gate.Store(false)
	}

	if err := s.counters.SetCount(ctx, SeatPoolKey, n-1); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// WatchJobs logs seat reservation job outcomes until ctx is cancelled.
func (s *SeatService) WatchJobs(ctx context.Context) {
	events := s.queue.Subscribe(64)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-events:
				if ev.JobType != JobTypeReserveSeat {
					continue
				}
				switch ev.Kind {
				case domain.EventEnqueued:
					s.log.Infow("seat reservation job created", "job_id", ev.JobID)
				case domain.EventCompleted:
					s.log.Infow("seat reservation job completed", "job_id", ev.JobID)
				case domain.EventFailed:
					s.log.Warnw("seat reservation job failed", "job_id", ev.JobID, "error", ev.Err)
				}
			}
		}
	}()
}
