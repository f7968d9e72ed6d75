package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RideRequests     = promauto.NewCounter(prometheus.CounterOpts{Namespace: "ride_ledger", Name: "ride_requests_total", Help: "Total ride requests that passed validation"})
	RideOutcomes     = promauto.NewCounterVec(prometheus.CounterOpts{Namespace: "ride_ledger", Name: "ride_outcomes_total", Help: "Ride lifecycle transitions by outcome"}, []string{"outcome"})
	PickupDistance   = promauto.NewHistogram(prometheus.HistogramOpts{Namespace: "ride_ledger", Name: "pickup_distance_km", Help: "Distance from matched driver to pickup", Buckets: []float64{0.5, 1, 2, 3, 4, 6, 10, 20}})
	FareAmount       = promauto.NewHistogram(prometheus.HistogramOpts{Namespace: "ride_ledger", Name: "fare_amount", Help: "Fares charged on completion", Buckets: prometheus.LinearBuckets(5, 5, 10)})
	DriversAvailable = promauto.NewGauge(prometheus.GaugeOpts{Namespace: "ride_ledger", Name: "drivers_available", Help: "Number of available drivers"})
	ActiveRides      = promauto.NewGauge(prometheus.GaugeOpts{Namespace: "ride_ledger", Name: "active_rides", Help: "Number of active assignments"})
	SinkErrors       = promauto.NewCounterVec(prometheus.CounterOpts{Namespace: "ride_ledger", Name: "sink_errors_total", Help: "Failed journal, event or dispatch writes"}, []string{"sink"})

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "ride_ledger", Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ride_ledger",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
