package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/rl1809/reservation-service/internal/adapter/storage"
	"github.com/rl1809/reservation-service/internal/core/domain"
	"github.com/rl1809/reservation-service/internal/queue"
)

func awaitTerminal(t *testing.T, events <-chan domain.JobEvent, n int) []domain.JobEvent {
	t.Helper()

	var out []domain.JobEvent
	timeout := time.After(5 * time.Second)
	for len(out) < n {
		select {
		case ev := <-events:
			if ev.Kind == domain.EventCompleted || ev.Kind == domain.EventFailed {
				out = append(out, ev)
			}
		case <-timeout:
			t.Fatalf("timed out after %d of %d terminal events", len(out), n)
		}
	}
	return out
}

func newSeatService(t *testing.T) (*SeatService, *queue.Queue, *storage.MemoryAdapter) {
	t.Helper()
	counters := storage.NewMemoryAdapter()
	q := queue.New("seat-test")
	t.Cleanup(q.Close)
	return NewSeatService(counters, q, zap.NewNop().Sugar()), q, counters
}

func TestRequestReservation_GateStartsClosed(t *testing.T) {
	svc, q, _ := newSeatService(t)

	if svc.ReservationsOpen() {
		t.Error("gate should start closed")
	}

	_, err := svc.RequestReservation(context.Background())
	if !errors.Is(err, domain.ErrReservationsBlocked) {
		t.Errorf("expected ErrReservationsBlocked, got: %v", err)
	}
	if q.Pending(JobTypeReserveSeat) != 0 {
		t.Error("blocked request must not enqueue a job")
	}
}

func TestResetSeats_OpensGate(t *testing.T) {
	svc, _, _ := newSeatService(t)

	if err := svc.ResetSeats(context.Background(), 50); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if !svc.ReservationsOpen() {
		t.Error("gate should open after a successful reset")
	}

	seats, err := svc.AvailableSeats(context.Background())
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if seats != 50 {
		t.Errorf("expected 50 seats, got %d", seats)
	}
}

func TestAvailableSeats_ReadIsIdempotent(t *testing.T) {
	svc, _, _ := newSeatService(t)
	ctx := context.Background()

	if err := svc.ResetSeats(ctx, 7); err != nil {
		t.Fatalf("reset failed: %v", err)
	}

	first, err := svc.AvailableSeats(ctx)
	if err != nil {
		t.Fatalf("first read failed: %v", err)
	}
	second, err := svc.AvailableSeats(ctx)
	if err != nil {
		t.Fatalf("second read failed: %v", err)
	}
	if first != second {
		t.Errorf("reads differ without intervening reservation: %d vs %d", first, second)
	}
}

func TestAvailableSeats_AbsentCounterReadsZero(t *testing.T) {
	svc, _, _ := newSeatService(t)

	seats, err := svc.AvailableSeats(context.Background())
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if seats != 0 {
		t.Errorf("expected 0 for absent counter, got %d", seats)
	}
}

func TestReservation_TwoSeatsThreeJobs(t *testing.T) {
	svc, q, _ := newSeatService(t)
	ctx := context.Background()

	events := q.Subscribe(16)

	if err := svc.ResetSeats(ctx, 2); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := svc.RequestReservation(ctx); err != nil {
			t.Fatalf("request %d failed: %v", i, err)
		}
	}
	if err := svc.StartProcessing(); err != nil {
		t.Fatalf("start processing failed: %v", err)
	}

	terminal := awaitTerminal(t, events, 3)

	wantKinds := []domain.EventKind{domain.EventCompleted, domain.EventCompleted, domain.EventFailed}
	for i, want := range wantKinds {
		if terminal[i].Kind != want {
			t.Errorf("job %d: got %s, want %s", i, terminal[i].Kind, want)
		}
	}
	if !strings.Contains(terminal[2].Err, "not enough seats available") {
		t.Errorf("unexpected failure message: %q", terminal[2].Err)
	}

	seats, err := svc.AvailableSeats(ctx)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if seats != 0 {
		t.Errorf("expected empty pool, got %d", seats)
	}
	if svc.ReservationsOpen() {
		t.Error("gate should be closed once the pool is depleted")
	}

	// Once closed, no further jobs are admitted.
	_, err = svc.RequestReservation(ctx)
	if !errors.Is(err, domain.ErrReservationsBlocked) {
		t.Errorf("expected ErrReservationsBlocked, got: %v", err)
	}
	if q.Pending(JobTypeReserveSeat) != 0 {
		t.Error("blocked request must not enqueue a job")
	}
}

func TestReservation_Concurrent(t *testing.T) {
	initialSeats := 20
	totalRequests := 50

	svc, q, _ := newSeatService(t)
	ctx := context.Background()

	events := q.Subscribe(2 * totalRequests)

	if err := svc.ResetSeats(ctx, int64(initialSeats)); err != nil {
		t.Fatalf("reset failed: %v", err)
	}

	// Enqueue everything before the worker starts so the gate stays open
	// and all requests compete fairly.
	var wg sync.WaitGroup
	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.RequestReservation(ctx); err != nil {
				t.Errorf("enqueue failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if err := svc.StartProcessing(); err != nil {
		t.Fatalf("start processing failed: %v", err)
	}

	terminal := awaitTerminal(t, events, totalRequests)

	var completed, failed int
	for _, ev := range terminal {
		switch ev.Kind {
		case domain.EventCompleted:
			completed++
		case domain.EventFailed:
			failed++
		}
	}
	if completed != initialSeats {
		t.Errorf("expected %d completed reservations, got %d", initialSeats, completed)
	}
	if failed != totalRequests-initialSeats {
		t.Errorf("expected %d failed reservations, got %d", totalRequests-initialSeats, failed)
	}

	seats, err := svc.AvailableSeats(ctx)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if seats != 0 {
		t.Errorf("expected empty pool, got %d", seats)
	}
}

func TestReservation_EmptyPoolNeverGoesNegative(t *testing.T) {
	svc, q, _ := newSeatService(t)
	ctx := context.Background()

	events := q.Subscribe(8)

	if err := svc.ResetSeats(ctx, 0); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if _, err := svc.RequestReservation(ctx); err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if err := svc.StartProcessing(); err != nil {
		t.Fatalf("start processing failed: %v", err)
	}

	terminal := awaitTerminal(t, events, 1)
	if terminal[0].Kind != domain.EventFailed {
		t.Errorf("expected failure against empty pool, got %s", terminal[0].Kind)
	}

	seats, err := svc.AvailableSeats(ctx)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if seats != 0 {
		t.Errorf("counter mutated on exhausted pool: %d", seats)
	}
}

// flakyCounters injects write failures around an otherwise working store.
type flakyCounters struct {
	*storage.MemoryAdapter
	failSet atomic.Bool
}

func (f *flakyCounters) SetCount(ctx context.Context, key string, value int64) error {
	if f.failSet.Load() {
		return errors.New("connection refused")
	}
	return f.MemoryAdapter.SetCount(ctx, key, value)
}

func TestReservation_StoreFailureFailsJobNotWorker(t *testing.T) {
	counters := &flakyCounters{MemoryAdapter: storage.NewMemoryAdapter()}
	q := queue.New("seat-test")
	defer q.Close()
	svc := NewSeatService(counters, q, zap.NewNop().Sugar())
	ctx := context.Background()

	events := q.Subscribe(16)

	if err := svc.ResetSeats(ctx, 5); err != nil {
		t.Fatalf("reset failed: %v", err)
	}

	counters.failSet.Store(true)
	if _, err := svc.RequestReservation(ctx); err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if err := svc.StartProcessing(); err != nil {
		t.Fatalf("start processing failed: %v", err)
	}

	terminal := awaitTerminal(t, events, 1)
	if terminal[0].Kind != domain.EventFailed {
		t.Fatalf("expected failed job, got %s", terminal[0].Kind)
	}
	if !strings.Contains(terminal[0].Err, "counter store unavailable") {
		t.Errorf("unexpected failure message: %q", terminal[0].Err)
	}

	// The worker loop survives: the next job goes through once the store
	// recovers.
	counters.failSet.Store(false)
	if _, err := svc.RequestReservation(ctx); err != nil {
		t.Fatalf("request failed: %v", err)
	}
	terminal = awaitTerminal(t, events, 1)
	if terminal[0].Kind != domain.EventCompleted {
		t.Errorf("expected completed job after store recovery, got %s", terminal[0].Kind)
	}
}
