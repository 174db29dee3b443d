package metrics

import (
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistry(t *testing.T) {
	InitRegistry()
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
}

func TestRecordGameLogsIngested(t *testing.T) {
	InitRegistry()

	before := testutil.ToFloat64(GameLogsIngestedTotal)
	RecordGameLogsIngested(42)
	assert.Equal(t, before+42, testutil.ToFloat64(GameLogsIngestedTotal))
}

func TestRecordBetLifecycleCounters(t *testing.T) {
	InitRegistry()

	before := testutil.ToFloat64(BetsRecordedTotal)
	RecordBetRecorded()
	assert.Equal(t, before+1, testutil.ToFloat64(BetsRecordedTotal))

	assert.NotPanics(t, func() {
		RecordBetSettled("WIN")
		RecordBetSettled("PUSH")
	})
}

func TestRecordSyncRun(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordSyncRun("PHI", "success")
		RecordSyncRun("BOS", "failure")
		RecordSyncError()
	})
}

func TestRecordAnalysis(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordAnalysis("success", 1.25)
		RecordOpportunity("OVER", 0.12)
		RecordOpportunity("NO_BET", -0.03)
		RecordSignificantImpact()
		UpdateModelCacheStats(10, 3)
	})

	assert.Equal(t, 10.0, testutil.ToFloat64(ModelCacheHits))
	assert.Equal(t, 3.0, testutil.ToFloat64(ModelCacheMisses))
}

func TestRecordProviderMetrics(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordProviderRequest("playergamelog", 0.35)
		RecordProviderError("playergamelog", "server_error")
		RecordCircuitBreakerTrip()
	})
}

func TestMetricsHandler(t *testing.T) {
	InitRegistry()

	handler := Handler()
	require.NotNil(t, handler)
	assert.Implements(t, (*http.Handler)(nil), handler)
}

func TestAllMetricsGather(t *testing.T) {
	InitRegistry()

	RecordSyncRun("PHI", "success")
	RecordGameLogsIngested(1)
	RecordBetRecorded()
	RecordAnalysis("success", 0.5)
	RecordProviderRequest("commonteamroster", 0.1)

	families, err := GetRegistry().Gather()
	require.NoError(t, err)

	seen := make(map[string]bool, len(families))
	for _, fam := range families {
		seen[fam.GetName()] = true
	}
	for _, name := range []string{
		"injury_edge_sync_runs_total",
		"injury_edge_game_logs_ingested_total",
		"injury_edge_bets_recorded_total",
		"injury_edge_analyses_total",
		"injury_edge_provider_requests_total",
	} {
		assert.True(t, seen[name], "metric %s not gathered", name)
	}
}
