package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/injury-edge/internal/metrics"
	"github.com/yourusername/injury-edge/internal/models"
)

const nbaStatsSourceName = "nba_stats"

// The stats API rejects requests that do not look like they come from a
// browser on stats.nba.com.
var statsHeaders = map[string]string{
	"User-Agent":         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
	"Accept":             "application/json",
	"Accept-Language":    "en-US,en;q=0.9",
	"Referer":            "https://stats.nba.com/",
	"x-nba-stats-origin": "stats",
	"x-nba-stats-token":  "true",
}

// nbaTeamIDs maps team abbreviations to the provider's franchise IDs
var nbaTeamIDs = map[string]int64{
	"ATL": 1610612737, "BOS": 1610612738, "BKN": 1610612751, "CHA": 1610612766,
	"CHI": 1610612741, "CLE": 1610612739, "DAL": 1610612742, "DEN": 1610612743,
	"DET": 1610612765, "GSW": 1610612744, "HOU": 1610612745, "IND": 1610612754,
	"LAC": 1610612746, "LAL": 1610612747, "MEM": 1610612763, "MIA": 1610612748,
	"MIL": 1610612749, "MIN": 1610612750, "NOP": 1610612740, "NYK": 1610612752,
	"OKC": 1610612760, "ORL": 1610612753, "PHI": 1610612755, "PHX": 1610612756,
	"POR": 1610612757, "SAC": 1610612758, "SAS": 1610612759, "TOR": 1610612761,
	"UTA": 1610612762, "WAS": 1610612764,
}

// TeamIDForAbbreviation resolves a team abbreviation like "PHI" to the
// provider's franchise ID. Returns 0 when the abbreviation is unknown.
func TeamIDForAbbreviation(abbrev string) int64 {
	return nbaTeamIDs[strings.ToUpper(strings.TrimSpace(abbrev))]
}

// CurrentSeason returns the season string in effect now, e.g. "2024-25".
// Seasons roll over in October.
func CurrentSeason() string {
	return currentSeasonAt(time.Now())
}

func currentSeasonAt(now time.Time) string {
	year := now.Year()
	if now.Month() >= time.October {
		return fmt.Sprintf("%d-%02d", year, (year+1)%100)
	}
	return fmt.Sprintf("%d-%02d", year-1, year%100)
}

// NBAStatsClient implements GameLogSource against the stats.nba.com API
type NBAStatsClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	logger     *logrus.Logger
}

// NewNBAStatsClient creates a new stats API client. baseURL defaults to the
// public endpoint when empty.
func NewNBAStatsClient(httpClient *RateLimitedHTTPClient, baseURL string, logger *logrus.Logger) *NBAStatsClient {
	if baseURL == "" {
		baseURL = "https://stats.nba.com/stats"
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &NBAStatsClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
	}
}

// Name returns the data source name
func (c *NBAStatsClient) Name() string {
	return nbaStatsSourceName
}

// HealthCheck reports provider availability from the client's point of view.
// It consults the circuit breaker instead of issuing a request, since probes
// run far more often than the provider's rate limit allows.
func (c *NBAStatsClient) HealthCheck(ctx context.Context) error {
	return c.httpClient.Healthy()
}

// statsResponse is the provider's tabular response envelope
type statsResponse struct {
	Resource   string      `json:"resource"`
	ResultSets []resultSet `json:"resultSets"`
}

type resultSet struct {
	Name    string          `json:"name"`
	Headers []string        `json:"headers"`
	RowSet  [][]interface{} `json:"rowSet"`
}

// columnIndex finds a header position, ignoring case since the provider
// mixes conventions like Player_ID and PLAYER_ID across endpoints
func (rs *resultSet) columnIndex(name string) int {
	for i, h := range rs.Headers {
		if strings.EqualFold(h, name) {
			return i
		}
	}
	return -1
}

// FetchPlayerGameLog retrieves one player's regular season game records.
// The provider only returns games the player appeared in, so every record
// comes back with Played set. PlayerName is not part of this endpoint's
// response and is left empty for the caller to resolve from the roster.
func (c *NBAStatsClient) FetchPlayerGameLog(ctx context.Context, playerID int64, season string) ([]models.GameRecord, error) {
	if season == "" {
		season = CurrentSeason()
	}

	params := url.Values{}
	params.Set("PlayerID", strconv.FormatInt(playerID, 10))
	params.Set("Season", season)
	params.Set("SeasonType", "Regular Season")

	rs, err := c.fetchResultSet(ctx, "playergamelog", params)
	if err != nil {
		return nil, err
	}

	records, err := parseGameLogRows(rs, season)
	if err != nil {
		return nil, NewDataSourceError(nbaStatsSourceName, ErrCodeInvalidData, "failed to parse game log", err)
	}

	c.logger.WithFields(logrus.Fields{
		"player_id": playerID,
		"season":    season,
		"games":     len(records),
	}).Debug("Fetched player game log")

	return records, nil
}

// FetchTeamRoster retrieves the current roster for a team
func (c *NBAStatsClient) FetchTeamRoster(ctx context.Context, teamID int64, season string) ([]models.Player, error) {
	if season == "" {
		season = CurrentSeason()
	}

	params := url.Values{}
	params.Set("TeamID", strconv.FormatInt(teamID, 10))
	params.Set("Season", season)

	rs, err := c.fetchResultSet(ctx, "commonteamroster", params)
	if err != nil {
		return nil, err
	}

	idCol := rs.columnIndex("PLAYER_ID")
	nameCol := rs.columnIndex("PLAYER")
	posCol := rs.columnIndex("POSITION")
	if idCol < 0 || nameCol < 0 {
		return nil, NewDataSourceError(nbaStatsSourceName, ErrCodeInvalidData, "roster response missing expected columns", nil)
	}

	players := make([]models.Player, 0, len(rs.RowSet))
	for _, row := range rs.RowSet {
		player := models.Player{
			ID:     int64Value(cell(row, idCol)),
			Name:   stringValue(cell(row, nameCol)),
			TeamID: teamID,
		}
		if posCol >= 0 {
			player.Position = stringValue(cell(row, posCol))
		}
		if player.ID == 0 || player.Name == "" {
			continue
		}
		players = append(players, player)
	}

	return players, nil
}

// SearchPlayers finds active league players whose name contains the query,
// case-insensitively
func (c *NBAStatsClient) SearchPlayers(ctx context.Context, name string) ([]models.Player, error) {
	params := url.Values{}
	params.Set("LeagueID", "00")
	params.Set("Season", CurrentSeason())
	params.Set("IsOnlyCurrentSeason", "1")

	rs, err := c.fetchResultSet(ctx, "commonallplayers", params)
	if err != nil {
		return nil, err
	}

	idCol := rs.columnIndex("PERSON_ID")
	nameCol := rs.columnIndex("DISPLAY_FIRST_LAST")
	teamCol := rs.columnIndex("TEAM_ID")
	if idCol < 0 || nameCol < 0 {
		return nil, NewDataSourceError(nbaStatsSourceName, ErrCodeInvalidData, "player index response missing expected columns", nil)
	}

	query := strings.ToLower(strings.TrimSpace(name))
	var matches []models.Player
	for _, row := range rs.RowSet {
		display := stringValue(cell(row, nameCol))
		if query != "" && !strings.Contains(strings.ToLower(display), query) {
			continue
		}
		player := models.Player{
			ID:   int64Value(cell(row, idCol)),
			Name: display,
		}
		if teamCol >= 0 {
			player.TeamID = int64Value(cell(row, teamCol))
		}
		if player.ID == 0 {
			continue
		}
		matches = append(matches, player)
	}

	return matches, nil
}

func (c *NBAStatsClient) fetchResultSet(ctx context.Context, endpoint string, params url.Values) (*resultSet, error) {
	requestURL := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, NewDataSourceError(nbaStatsSourceName, ErrCodeNetworkError, "failed to create request", err)
	}
	for key, value := range statsHeaders {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		metrics.RecordProviderError(endpoint, ErrCodeNetworkError)
		return nil, NewDataSourceError(nbaStatsSourceName, ErrCodeNetworkError, fmt.Sprintf("request to %s failed", endpoint), err)
	}
	defer resp.Body.Close()
	metrics.RecordProviderRequest(endpoint, time.Since(start).Seconds())

	if resp.StatusCode == http.StatusTooManyRequests {
		metrics.RecordProviderError(endpoint, ErrCodeRateLimitExceeded)
		return nil, NewDataSourceError(nbaStatsSourceName, ErrCodeRateLimitExceeded, "provider rate limit exceeded", nil)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		metrics.RecordProviderError(endpoint, ErrCodeServerError)
		return nil, NewDataSourceError(nbaStatsSourceName, ErrCodeServerError,
			fmt.Sprintf("unexpected status %d from %s: %s", resp.StatusCode, endpoint, string(body)), nil)
	}

	var payload statsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		metrics.RecordProviderError(endpoint, ErrCodeInvalidData)
		return nil, NewDataSourceError(nbaStatsSourceName, ErrCodeInvalidData, "failed to decode response", err)
	}
	if len(payload.ResultSets) == 0 {
		metrics.RecordProviderError(endpoint, ErrCodeInvalidData)
		return nil, NewDataSourceError(nbaStatsSourceName, ErrCodeInvalidData, "response contained no result sets", nil)
	}

	return &payload.ResultSets[0], nil
}

func parseGameLogRows(rs *resultSet, season string) ([]models.GameRecord, error) {
	cols := map[string]int{}
	for _, name := range []string{"Game_ID", "Player_ID", "GAME_DATE", "MATCHUP", "WL", "MIN",
		"PTS", "REB", "AST", "STL", "BLK", "TOV", "FG_PCT", "FG3M", "PLUS_MINUS"} {
		cols[name] = rs.columnIndex(name)
	}
	for _, required := range []string{"Game_ID", "Player_ID", "GAME_DATE", "MATCHUP", "PTS"} {
		if cols[required] < 0 {
			return nil, fmt.Errorf("game log response missing column %s", required)
		}
	}

	records := make([]models.GameRecord, 0, len(rs.RowSet))
	for i, row := range rs.RowSet {
		gameDate, err := parseGameDate(stringValue(cell(row, cols["GAME_DATE"])))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}

		matchup := stringValue(cell(row, cols["MATCHUP"]))
		rec := models.GameRecord{
			GameID:       stringValue(cell(row, cols["Game_ID"])),
			PlayerID:     int64Value(cell(row, cols["Player_ID"])),
			TeamID:       teamIDFromMatchup(matchup),
			GameDate:     gameDate,
			Matchup:      matchup,
			WinLoss:      stringValue(cell(row, cols["WL"])),
			Season:       season,
			Played:       true,
			Minutes:      parseMinutes(cell(row, cols["MIN"])),
			Points:       floatValue(cell(row, cols["PTS"])),
			Rebounds:     floatValue(cell(row, cols["REB"])),
			Assists:      floatValue(cell(row, cols["AST"])),
			Steals:       floatValue(cell(row, cols["STL"])),
			Blocks:       floatValue(cell(row, cols["BLK"])),
			Turnovers:    floatValue(cell(row, cols["TOV"])),
			FieldGoalPct: floatValue(cell(row, cols["FG_PCT"])),
			ThreePtMade:  floatValue(cell(row, cols["FG3M"])),
			PlusMinus:    floatValue(cell(row, cols["PLUS_MINUS"])),
			CreatedAt:    time.Now(),
		}
		if rec.GameID == "" || rec.PlayerID == 0 {
			return nil, fmt.Errorf("row %d: missing game or player identifier", i)
		}
		records = append(records, rec)
	}

	return records, nil
}

// teamIDFromMatchup derives the player's own team from the matchup string,
// whose first token is always the player's team abbreviation
// ("PHI vs. BOS" at home, "PHI @ BOS" away)
func teamIDFromMatchup(matchup string) int64 {
	fields := strings.Fields(matchup)
	if len(fields) == 0 {
		return 0
	}
	return TeamIDForAbbreviation(fields[0])
}

// parseGameDate handles the provider's "APR 09, 2024" format as well as
// plain ISO dates
func parseGameDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("Jan 02, 2006", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unrecognized game date %q", s)
}

// parseMinutes accepts numeric minutes as well as "MM:SS" strings
func parseMinutes(v interface{}) float64 {
	switch m := v.(type) {
	case float64:
		return m
	case string:
		if strings.Contains(m, ":") {
			parts := strings.SplitN(m, ":", 2)
			mins, err := strconv.ParseFloat(parts[0], 64)
			if err != nil {
				return 0
			}
			secs, err := strconv.ParseFloat(parts[1], 64)
			if err != nil {
				return mins
			}
			return mins + secs/60
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(m), 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}

func cell(row []interface{}, idx int) interface{} {
	if idx < 0 || idx >= len(row) {
		return nil
	}
	return row[idx]
}

func stringValue(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func floatValue(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}

func int64Value(v interface{}) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		if err != nil {
			return 0
		}
		return i
	}
	return 0
}
