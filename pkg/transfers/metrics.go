package transfers

import (
	"time"

	"github.com/chris/account-transfers/pkg/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sagaOutcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "transfer_saga_outcomes_total",
		Help: "Total number of transfer sagas by final state",
	}, []string{"state"})

	legDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "transfer_leg_duration_seconds",
		Help:    "Duration of transfer legs including retries",
		Buckets: prometheus.DefBuckets,
	}, []string{"type", "result"})
)

func observeLeg(movementType models.MovementType, err error, elapsed time.Duration) {
	result := "ok"
	switch {
	case models.IsRejection(err):
		result = "rejected"
	case err != nil:
		result = "error"
	}
	legDuration.WithLabelValues(string(movementType), result).Observe(elapsed.Seconds())
}

func observeOutcome(state models.SagaState) {
	sagaOutcomesTotal.WithLabelValues(string(state)).Inc()
}
