package datasource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestCurrentSeasonRollover(t *testing.T) {
	tests := []struct {
		name     string
		at       time.Time
		expected string
	}{
		{"early season", time.Date(2024, 11, 15, 0, 0, 0, 0, time.UTC), "2024-25"},
		{"october start", time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC), "2024-25"},
		{"spring of same season", time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), "2024-25"},
		{"september before rollover", time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC), "2024-25"},
		{"next october", time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC), "2025-26"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := currentSeasonAt(tt.at); got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestTeamIDForAbbreviation(t *testing.T) {
	if id := TeamIDForAbbreviation("PHI"); id != 1610612755 {
		t.Errorf("expected 1610612755 for PHI, got %d", id)
	}
	if id := TeamIDForAbbreviation(" bos "); id != 1610612738 {
		t.Errorf("expected case and whitespace insensitive lookup, got %d", id)
	}
	if id := TeamIDForAbbreviation("XYZ"); id != 0 {
		t.Errorf("expected 0 for unknown abbreviation, got %d", id)
	}
}

func TestParseMinutes(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected float64
	}{
		{"numeric", float64(36), 36},
		{"numeric string", "33", 33},
		{"clock format", "33:15", 33.25},
		{"clock format half", "20:30", 20.5},
		{"nil", nil, 0},
		{"garbage", "dnp", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseMinutes(tt.input); got != tt.expected {
				t.Errorf("expected %.2f, got %.2f", tt.expected, got)
			}
		})
	}
}

func TestParseGameDate(t *testing.T) {
	got, err := parseGameDate("APR 09, 2024")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Format("2006-01-02") != "2024-04-09" {
		t.Errorf("expected 2024-04-09, got %s", got.Format("2006-01-02"))
	}

	got, err = parseGameDate("2024-11-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Format("2006-01-02") != "2024-11-01" {
		t.Errorf("expected 2024-11-01, got %s", got.Format("2006-01-02"))
	}

	if _, err := parseGameDate("next tuesday"); err == nil {
		t.Errorf("expected error for unparseable date")
	}
}

const gameLogFixture = `{
	"resource": "playergamelog",
	"resultSets": [{
		"name": "PlayerGameLog",
		"headers": ["SEASON_ID", "Player_ID", "Game_ID", "GAME_DATE", "MATCHUP", "WL", "MIN",
			"FGM", "FGA", "FG_PCT", "FG3M", "FG3A", "FG3_PCT", "FTM", "FTA", "FT_PCT",
			"OREB", "DREB", "REB", "AST", "STL", "BLK", "TOV", "PF", "PTS", "PLUS_MINUS", "VIDEO_AVAILABLE"],
		"rowSet": [
			["22024", 1630178, "0022400102", "NOV 02, 2024", "PHI vs. BOS", "W", 38,
				11, 21, 0.524, 3, 8, 0.375, 5, 6, 0.833, 1, 3, 4, 7, 2, 0, 3, 2, 30, 8, 1],
			["22024", 1630178, "0022400088", "OCT 30, 2024", "PHI @ DET", "L", "35:30",
				9, 20, 0.45, 2, 7, 0.286, 4, 4, 1.0, 0, 4, 4, 6, 1, 1, 2, 3, 24, -5, 1]
		]
	}]
}`

const rosterFixture = `{
	"resource": "commonteamroster",
	"resultSets": [{
		"name": "CommonTeamRoster",
		"headers": ["TeamID", "SEASON", "LeagueID", "PLAYER", "NICKNAME", "PLAYER_SLUG", "NUM",
			"POSITION", "HEIGHT", "WEIGHT", "BIRTH_DATE", "AGE", "EXP", "SCHOOL", "PLAYER_ID", "HOW_ACQUIRED"],
		"rowSet": [
			[1610612755, "2024-25", "00", "Joel Embiid", "Joel", "joel-embiid", "21",
				"C", "7-0", "280", "MAR 16, 1994", 30.0, "8", "Kansas", 203954, "Draft"],
			[1610612755, "2024-25", "00", "Tyrese Maxey", "Tyrese", "tyrese-maxey", "0",
				"G", "6-2", "200", "NOV 04, 2000", 24.0, "4", "Kentucky", 1630178, "Draft"]
		]
	}]
}`

func newFixtureServer(t *testing.T, body string, wantPath string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if wantPath != "" && r.URL.Path != wantPath {
			t.Errorf("expected request to %s, got %s", wantPath, r.URL.Path)
		}
		if r.Header.Get("x-nba-stats-origin") != "stats" {
			t.Errorf("missing provider headers on request")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
}

func newTestClient(baseURL string) *NBAStatsClient {
	httpCfg := DefaultHTTPClientConfig()
	httpCfg.RequestDelay = time.Millisecond
	httpCfg.MaxRetries = 0
	return NewNBAStatsClient(NewRateLimitedHTTPClient(httpCfg, nil), baseURL, nil)
}

func TestFetchPlayerGameLog(t *testing.T) {
	server := newFixtureServer(t, gameLogFixture, "/playergamelog")
	defer server.Close()

	client := newTestClient(server.URL)
	records, err := client.FetchPlayerGameLog(context.Background(), 1630178, "2024-25")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	first := records[0]
	if first.GameID != "0022400102" {
		t.Errorf("expected game 0022400102, got %s", first.GameID)
	}
	if first.PlayerID != 1630178 {
		t.Errorf("expected player 1630178, got %d", first.PlayerID)
	}
	if first.TeamID != 1610612755 {
		t.Errorf("expected PHI team id from matchup, got %d", first.TeamID)
	}
	if first.Points != 30 {
		t.Errorf("expected 30 points, got %.1f", first.Points)
	}
	if first.Minutes != 38 {
		t.Errorf("expected 38 minutes, got %.2f", first.Minutes)
	}
	if !first.Played {
		t.Errorf("provider rows always represent played games")
	}
	if !first.IsHomeGame() {
		t.Errorf("expected home game for 'PHI vs. BOS'")
	}
	if first.GameDate.Format("2006-01-02") != "2024-11-02" {
		t.Errorf("expected game date 2024-11-02, got %s", first.GameDate.Format("2006-01-02"))
	}

	second := records[1]
	if second.Minutes != 35.5 {
		t.Errorf("expected clock minutes 35.5, got %.2f", second.Minutes)
	}
	if second.PlusMinus != -5 {
		t.Errorf("expected plus minus -5, got %.1f", second.PlusMinus)
	}
	if second.IsHomeGame() {
		t.Errorf("expected away game for 'PHI @ DET'")
	}
}

func TestFetchTeamRoster(t *testing.T) {
	server := newFixtureServer(t, rosterFixture, "/commonteamroster")
	defer server.Close()

	client := newTestClient(server.URL)
	roster, err := client.FetchTeamRoster(context.Background(), 1610612755, "2024-25")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(roster) != 2 {
		t.Fatalf("expected 2 players, got %d", len(roster))
	}
	if roster[0].ID != 203954 || roster[0].Name != "Joel Embiid" {
		t.Errorf("unexpected first roster entry: %+v", roster[0])
	}
	if roster[0].Position != "C" {
		t.Errorf("expected position C, got %q", roster[0].Position)
	}
	if roster[1].TeamID != 1610612755 {
		t.Errorf("expected team id set from request, got %d", roster[1].TeamID)
	}
}

func TestFetchPlayerGameLogServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such player", http.StatusBadRequest)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.FetchPlayerGameLog(context.Background(), 999, "2024-25")
	if err == nil {
		t.Fatalf("expected error for non-200 response")
	}
	dsErr, ok := err.(DataSourceError)
	if !ok {
		t.Fatalf("expected DataSourceError, got %T", err)
	}
	if dsErr.Code != ErrCodeServerError {
		t.Errorf("expected code %s, got %s", ErrCodeServerError, dsErr.Code)
	}
}

func TestFetchPlayerGameLogEmptyResultSets(t *testing.T) {
	server := newFixtureServer(t, `{"resource": "playergamelog", "resultSets": []}`, "")
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.FetchPlayerGameLog(context.Background(), 999, "2024-25")
	if err == nil {
		t.Fatalf("expected error for empty result sets")
	}
	dsErr, ok := err.(DataSourceError)
	if !ok {
		t.Fatalf("expected DataSourceError, got %T", err)
	}
	if dsErr.Code != ErrCodeInvalidData {
		t.Errorf("expected code %s, got %s", ErrCodeInvalidData, dsErr.Code)
	}
}

func TestCircuitBreakerOpensAndRecovers(t *testing.T) {
	var hits int32
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer failing.Close()

	cfg := DefaultHTTPClientConfig()
	cfg.RequestDelay = time.Millisecond
	cfg.MaxRetries = 0
	cfg.BreakerFailureLimit = 2
	cfg.BreakerReset = 50 * time.Millisecond
	client := NewRateLimitedHTTPClient(cfg, nil)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := client.Get(ctx, failing.URL); err == nil {
			t.Fatalf("request %d should fail against a 500 server", i)
		}
	}
	if n := atomic.LoadInt32(&hits); n != 2 {
		t.Fatalf("expected 2 server hits before the breaker opens, got %d", n)
	}

	// breaker is now open, the next call must fail fast without a request
	_, err := client.Get(ctx, failing.URL)
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
	if n := atomic.LoadInt32(&hits); n != 2 {
		t.Fatalf("breaker let a request through, server saw %d hits", n)
	}
	if err := client.Healthy(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected Healthy to report the open breaker, got %v", err)
	}

	// after the reset window a probe reaches the server again
	time.Sleep(60 * time.Millisecond)
	_, err = client.Get(ctx, failing.URL)
	if errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected half-open probe, still getting %v", err)
	}
	if n := atomic.LoadInt32(&hits); n != 3 {
		t.Fatalf("expected the probe to hit the server, saw %d hits", n)
	}
}

func TestRateLimiterSpacesRequests(t *testing.T) {
	server := newFixtureServer(t, `{"resultSets": [{"name": "x", "headers": [], "rowSet": []}]}`, "")
	defer server.Close()

	cfg := DefaultHTTPClientConfig()
	cfg.RequestDelay = 30 * time.Millisecond
	cfg.MaxRetries = 0
	client := NewRateLimitedHTTPClient(cfg, nil)

	ctx := context.Background()
	start := time.Now()
	for i := 0; i < 3; i++ {
		resp, err := client.Get(ctx, server.URL)
		if err != nil {
			t.Fatalf("request %d failed: %v", i, err)
		}
		resp.Body.Close()
	}
	elapsed := time.Since(start)

	// three requests at 30ms spacing need at least two full delays
	if elapsed < 55*time.Millisecond {
		t.Errorf("requests not spaced by the limiter, took %v", elapsed)
	}
}

func TestParseGameLogRowsMissingColumns(t *testing.T) {
	rs := &resultSet{
		Name:    "PlayerGameLog",
		Headers: []string{"SEASON_ID", "Player_ID"},
		RowSet:  [][]interface{}{},
	}
	if _, err := parseGameLogRows(rs, "2024-25"); err == nil {
		t.Fatalf("expected error for missing columns")
	}
}

var _ GameLogSource = (*NBAStatsClient)(nil)

func TestSourceName(t *testing.T) {
	client := newTestClient("http://localhost")
	if client.Name() != "nba_stats" {
		t.Errorf("expected source name nba_stats, got %s", client.Name())
	}
}
