// Package metrics provides the centralized Prometheus registry for the
// injury edge engine.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Ingestion counters
var (
	SyncRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "injury_edge",
		Name:      "sync_runs_total",
		Help:      "Total number of team sync runs by team and status",
	}, []string{"team", "status"})
	SyncErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "injury_edge",
		Name:      "sync_errors_total",
		Help:      "Total number of errors encountered during sync runs",
	})
	GameLogsIngestedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "injury_edge",
		Name:      "game_logs_ingested_total",
		Help:      "Total number of game log rows written to storage",
	})
	InvalidRecordsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "injury_edge",
		Name:      "invalid_records_total",
		Help:      "Total number of provider rows dropped by validation",
	})
)

// Ledger counters
var (
	BetsRecordedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "injury_edge",
		Name:      "bets_recorded_total",
		Help:      "Total number of bets recorded in the ledger",
	})
	BetsSettledTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "injury_edge",
		Name:      "bets_settled_total",
		Help:      "Total number of bets settled by result",
	}, []string{"result"})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Ingestion metrics
		registry.MustRegister(SyncRunsTotal)
		registry.MustRegister(SyncErrorsTotal)
		registry.MustRegister(GameLogsIngestedTotal)
		registry.MustRegister(InvalidRecordsTotal)

		// Ledger metrics
		registry.MustRegister(BetsRecordedTotal)
		registry.MustRegister(BetsSettledTotal)

		// Analysis metrics
		registry.MustRegister(AnalysesTotal)
		registry.MustRegister(AnalysisDuration)
		registry.MustRegister(OpportunitiesTotal)
		registry.MustRegister(EdgeDistribution)
		registry.MustRegister(SignificantImpactsTotal)
		registry.MustRegister(ModelCacheHits)
		registry.MustRegister(ModelCacheMisses)

		// Provider metrics
		registry.MustRegister(ProviderRequestsTotal)
		registry.MustRegister(ProviderRequestDuration)
		registry.MustRegister(ProviderErrorsTotal)
		registry.MustRegister(CircuitBreakerTripsTotal)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordSyncRun records a completed team sync.
// status should be one of: "success", "partial", "failure"
func RecordSyncRun(team, status string) {
	SyncRunsTotal.WithLabelValues(team, status).Inc()
}

// RecordSyncError records an error during a sync run.
func RecordSyncError() {
	SyncErrorsTotal.Inc()
}

// RecordGameLogsIngested records game log rows written to storage.
func RecordGameLogsIngested(count int) {
	GameLogsIngestedTotal.Add(float64(count))
}

// RecordInvalidRecords records provider rows dropped by validation.
func RecordInvalidRecords(count int) {
	InvalidRecordsTotal.Add(float64(count))
}

// RecordBetRecorded records a new ledger entry.
func RecordBetRecorded() {
	BetsRecordedTotal.Inc()
}

// RecordBetSettled records a bet settlement by result.
func RecordBetSettled(result string) {
	BetsSettledTotal.WithLabelValues(result).Inc()
}
