package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReservationRequestsTotal counts workflow requests by terminal state
	// (locked, rejected, lock_conflict, invalid, error).
	ReservationRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reservation_requests_total",
			Help: "Reservation requests by outcome.",
		},
		[]string{"outcome"},
	)

	ReservationCommitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reservation_commits_total",
			Help: "Reservation commits by outcome.",
		},
		[]string{"outcome"},
	)

	LockAcquisitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reservation_lock_acquisitions_total",
			Help: "Conflict-avoidance lock acquisition attempts by result.",
		},
		[]string{"result"},
	)

	LocksSweptTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reservation_locks_swept_total",
			Help: "Expired lock entries removed by the background sweeper.",
		},
	)
)
