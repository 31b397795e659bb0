package handler

import (
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/rl1809/reservation-service/internal/core/domain"
	"github.com/rl1809/reservation-service/internal/core/service"
)

type availableSeatsResponse struct {
	NumberOfAvailableSeats string `json:"numberOfAvailableSeats"`
}

// SeatHandler translates the seat HTTP surface into service calls.
// Business failures are JSON status fields, never 5xx responses.
type SeatHandler struct {
	seats *service.SeatService
	log   *zap.SugaredLogger
}

func NewSeatHandler(seats *service.SeatService, log *zap.SugaredLogger) *SeatHandler {
	return &SeatHandler{seats: seats, log: log}
}

func (h *SeatHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /available_seats", h.AvailableSeats)
	mux.HandleFunc("GET /reserve_seat", h.ReserveSeat)
	mux.HandleFunc("GET /process", h.Process)
}

func (h *SeatHandler) AvailableSeats(w http.ResponseWriter, r *http.Request) {
	seats, err := h.seats.AvailableSeats(r.Context())
	if err != nil {
		h.log.Errorw("available seats read failed", "error", err)
		writeJSON(w, http.StatusOK, statusResponse{Status: statusStoreDown})
		return
	}

	writeJSON(w, http.StatusOK, availableSeatsResponse{
		NumberOfAvailableSeats: strconv.FormatInt(seats, 10),
	})
}

// ReserveSeat enqueues a reservation attempt and answers immediately; it
// never blocks on the job outcome.
func (h *SeatHandler) ReserveSeat(w http.ResponseWriter, r *http.Request) {
	_, err := h.seats.RequestReservation(r.Context())
	switch {
	case errors.Is(err, domain.ErrReservationsBlocked):
		writeJSON(w, http.StatusOK, statusResponse{Status: statusBlocked})
	case err != nil:
		h.log.Errorw("seat reservation enqueue failed", "error", err)
		writeJSON(w, http.StatusOK, statusResponse{Status: statusFailed})
	default:
		writeJSON(w, http.StatusOK, statusResponse{Status: statusInProcess})
	}
}

// Process starts the queue consumer. The response is sent first; worker
// registration is idempotent so repeated calls are harmless.
func (h *SeatHandler) Process(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{Status: statusProcessing})

	if err := h.seats.StartProcessing(); err != nil {
		h.log.Errorw("queue processing start failed", "error", err)
	}
}
