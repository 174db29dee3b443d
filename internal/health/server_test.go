package health

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(ctx context.Context) error { return p.err }

type stubSource struct {
	err error
}

func (s stubSource) HealthCheck(ctx context.Context) error { return s.err }

func (s stubSource) Name() string { return "stub" }

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestServer(db DatabasePinger, source SourceChecker) *Server {
	return NewServer(Config{
		ServiceName: "injury-edge-sync",
		Version:     "test",
		Commit:      "abc1234",
		Port:        "0",
		Logger:      quietLogger(),
		DB:          db,
		Source:      source,
	})
}

func decodeReady(t *testing.T, rec *httptest.ResponseRecorder) ReadyResponse {
	t.Helper()
	var body ReadyResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(nil, nil)

	rec := httptest.NewRecorder()
	srv.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "injury-edge-sync", body.Service)
	assert.Equal(t, "test", body.Version)
	assert.NotEmpty(t, body.Timestamp)
}

func TestHandleLiveAlwaysOK(t *testing.T) {
	srv := newTestServer(stubPinger{err: errors.New("down")}, nil)

	rec := httptest.NewRecorder()
	srv.handleLive(rec, httptest.NewRequest(http.MethodGet, "/live", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleReadyBeforeStartup(t *testing.T) {
	srv := newTestServer(stubPinger{}, stubSource{})

	rec := httptest.NewRecorder()
	srv.handleReady(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decodeReady(t, rec)
	assert.Equal(t, "not_ready", body.Status)
	assert.Equal(t, "not_ready", body.Checks["service"])
}

func TestHandleReadyAllHealthy(t *testing.T) {
	srv := newTestServer(stubPinger{}, stubSource{})
	srv.SetReady(true)

	rec := httptest.NewRecorder()
	srv.handleReady(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeReady(t, rec)
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "ok", body.Checks["service"])
	assert.Equal(t, "ok", body.Checks["database"])
	assert.Equal(t, "ok", body.Checks["provider:stub"])
	assert.NotEmpty(t, body.Duration)
}

func TestHandleReadyDatabaseDown(t *testing.T) {
	srv := newTestServer(stubPinger{err: errors.New("connection refused")}, stubSource{})
	srv.SetReady(true)

	rec := httptest.NewRecorder()
	srv.handleReady(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decodeReady(t, rec)
	assert.Equal(t, "not_ready", body.Status)
	assert.Contains(t, body.Checks["database"], "connection refused")
	assert.Equal(t, "ok", body.Checks["provider:stub"])
}

func TestHandleReadyProviderDown(t *testing.T) {
	srv := newTestServer(stubPinger{}, stubSource{err: errors.New("rate limited")})
	srv.SetReady(true)

	rec := httptest.NewRecorder()
	srv.handleReady(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decodeReady(t, rec)
	assert.Equal(t, "ok", body.Checks["database"])
	assert.Contains(t, body.Checks["provider:stub"], "rate limited")
}

func TestHandleReadySkipsMissingDependencies(t *testing.T) {
	srv := newTestServer(nil, nil)
	srv.SetReady(true)

	rec := httptest.NewRecorder()
	srv.handleReady(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeReady(t, rec)
	assert.NotContains(t, body.Checks, "database")
	assert.Len(t, body.Checks, 1)
}

func TestNewServerPortDefaults(t *testing.T) {
	t.Setenv("HEALTH_PORT", "9191")
	srv := NewServer(Config{ServiceName: "x"})
	assert.Equal(t, "9191", srv.port)

	t.Setenv("HEALTH_PORT", "")
	srv = NewServer(Config{ServiceName: "x"})
	assert.Equal(t, "8080", srv.port)

	srv = NewServer(Config{ServiceName: "x", Port: "7070"})
	assert.Equal(t, "7070", srv.port)
}

func TestSetReadyToggles(t *testing.T) {
	srv := newTestServer(nil, nil)
	assert.False(t, srv.IsReady())

	srv.SetReady(true)
	assert.True(t, srv.IsReady())

	srv.SetReady(false)
	assert.False(t, srv.IsReady())
}
