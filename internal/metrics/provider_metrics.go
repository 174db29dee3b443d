// Package metrics defines stats-provider-specific metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Provider counter vectors
var (
	ProviderRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "injury_edge",
		Name:      "provider_requests_total",
		Help:      "Total number of stats provider requests by endpoint",
	}, []string{"endpoint"})

	ProviderErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "injury_edge",
		Name:      "provider_errors_total",
		Help:      "Total number of stats provider failures by endpoint and code",
	}, []string{"endpoint", "code"})

	CircuitBreakerTripsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "injury_edge",
		Name:      "circuit_breaker_trips_total",
		Help:      "Total number of provider circuit breaker trips",
	})
)

// Provider histogram vectors
var (
	ProviderRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "injury_edge",
		Name:      "provider_request_duration_seconds",
		Help:      "Duration of stats provider requests in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint"})
)

// RecordProviderRequest records a completed provider request.
func RecordProviderRequest(endpoint string, durationSeconds float64) {
	ProviderRequestsTotal.WithLabelValues(endpoint).Inc()
	ProviderRequestDuration.WithLabelValues(endpoint).Observe(durationSeconds)
}

// RecordProviderError records a failed provider request.
func RecordProviderError(endpoint, code string) {
	ProviderErrorsTotal.WithLabelValues(endpoint, code).Inc()
}

// RecordCircuitBreakerTrip records a provider circuit breaker trip.
func RecordCircuitBreakerTrip() {
	CircuitBreakerTripsTotal.Inc()
}
