package handler

import (
	"encoding/json"
	"net/http"
)

// Status strings are part of the external contract: business outcomes are
// reported through them with HTTP 200, never through 5xx codes.
const (
	statusBlocked      = "Reservations are blocked"
	statusInProcess    = "Reservation in process"
	statusFailed       = "Reservation failed"
	statusProcessing   = "Queue processing"
	statusStoreDown    = "Service unavailable"
	statusConfirmed    = "Reservation confirmed"
	statusOutOfStock   = "Not enough stock available"
	statusItemNotFound = "Product not found"
)

type statusResponse struct {
	Status string `json:"status"`
}

// Health answers liveness probes.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
