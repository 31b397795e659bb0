package obs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// JobsTotal counts terminal job outcomes per queue and job type.
	JobsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reservation_jobs_total",
		Help: "Reservation jobs by queue, job type and outcome.",
	}, []string{"queue", "type", "outcome"})

	// QueueDepth tracks jobs enqueued but not yet picked up by a worker.
	QueueDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "reservation_queue_depth",
		Help: "Jobs waiting in the queue backlog.",
	}, []string{"queue", "type"})

	// ReservationsBlockedTotal counts requests rejected at the admission
	// gate before any job was created.
	ReservationsBlockedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reservations_blocked_total",
		Help: "Reservation requests rejected while the admission gate was closed.",
	})
)
