package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rl1809/reservation-service/internal/adapter/storage"
	"github.com/rl1809/reservation-service/internal/core/service"
	"github.com/rl1809/reservation-service/internal/queue"
)

func newSeatMux(t *testing.T) (*http.ServeMux, *service.SeatService) {
	t.Helper()

	counters := storage.NewMemoryAdapter()
	q := queue.New("seat-http-test")
	t.Cleanup(q.Close)
	seats := service.NewSeatService(counters, q, zap.NewNop().Sugar())

	mux := http.NewServeMux()
	NewSeatHandler(seats, zap.NewNop().Sugar()).Register(mux)
	mux.HandleFunc("GET /health", Health)
	return mux, seats
}

func getJSON(t *testing.T, mux *http.ServeMux, path string) (int, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestAvailableSeatsEndpoint(t *testing.T) {
	mux, seats := newSeatMux(t)
	require.NoError(t, seats.ResetSeats(context.Background(), 5))

	code, body := getJSON(t, mux, "/available_seats")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "5", body["numberOfAvailableSeats"])
}

func TestReserveSeatEndpoint_BlockedBeforeReset(t *testing.T) {
	mux, _ := newSeatMux(t)

	code, body := getJSON(t, mux, "/reserve_seat")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "Reservations are blocked", body["status"])
}

func TestReserveSeatEndpoint_InProcess(t *testing.T) {
	mux, seats := newSeatMux(t)
	require.NoError(t, seats.ResetSeats(context.Background(), 5))

	code, body := getJSON(t, mux, "/reserve_seat")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "Reservation in process", body["status"])
}

func TestProcessEndpoint_DrainsQueue(t *testing.T) {
	mux, seats := newSeatMux(t)
	require.NoError(t, seats.ResetSeats(context.Background(), 1))

	_, body := getJSON(t, mux, "/reserve_seat")
	require.Equal(t, "Reservation in process", body["status"])

	code, body := getJSON(t, mux, "/process")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "Queue processing", body["status"])

	require.Eventually(t, func() bool {
		_, body := getJSON(t, mux, "/available_seats")
		return body["numberOfAvailableSeats"] == "0"
	}, 5*time.Second, 10*time.Millisecond, "reservation job never drained")

	// Pool is gone, so the gate rejects the next request outright.
	_, body = getJSON(t, mux, "/reserve_seat")
	require.Equal(t, "Reservations are blocked", body["status"])
}

func TestHealthEndpoint(t *testing.T) {
	mux, _ := newSeatMux(t)

	code, body := getJSON(t, mux, "/health")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "ok", body["status"])
}
