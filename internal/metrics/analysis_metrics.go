// Package metrics defines analysis-specific metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Analysis counters
var (
	AnalysesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "injury_edge",
		Name:      "analyses_total",
		Help:      "Total number of absence analyses run by status",
	}, []string{"status"})

	OpportunitiesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "injury_edge",
		Name:      "opportunities_total",
		Help:      "Total number of betting opportunities found by recommendation",
	}, []string{"recommendation"})

	SignificantImpactsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "injury_edge",
		Name:      "significant_impacts_total",
		Help:      "Total number of statistically significant teammate impacts",
	})
)

// Analysis histograms
var (
	AnalysisDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "injury_edge",
		Name:      "analysis_duration_seconds",
		Help:      "Duration of absence analysis runs in seconds",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300},
	})

	EdgeDistribution = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "injury_edge",
		Name:      "opportunity_edge",
		Help:      "Expected value per unit staked for scored opportunities",
		Buckets:   []float64{-0.25, -0.1, -0.05, 0, 0.05, 0.1, 0.15, 0.25, 0.5},
	})
)

// Model cache gauges, set from the cache's running totals after each analysis
var (
	ModelCacheHits = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "injury_edge",
		Name:      "model_cache_hits",
		Help:      "Cumulative prediction model cache hits",
	})
	ModelCacheMisses = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "injury_edge",
		Name:      "model_cache_misses",
		Help:      "Cumulative prediction model cache misses",
	})
)

// RecordAnalysis records a completed analysis run.
// status should be one of: "success", "failure"
func RecordAnalysis(status string, durationSeconds float64) {
	AnalysesTotal.WithLabelValues(status).Inc()
	AnalysisDuration.Observe(durationSeconds)
}

// RecordOpportunity records a scored opportunity by recommendation.
func RecordOpportunity(recommendation string, edge float64) {
	OpportunitiesTotal.WithLabelValues(recommendation).Inc()
	EdgeDistribution.Observe(edge)
}

// RecordSignificantImpact records a teammate impact that passed the
// significance test.
func RecordSignificantImpact() {
	SignificantImpactsTotal.Inc()
}

// UpdateModelCacheStats publishes the model cache's running hit and miss
// totals.
func UpdateModelCacheStats(hits, misses uint64) {
	ModelCacheHits.Set(float64(hits))
	ModelCacheMisses.Set(float64(misses))
}
