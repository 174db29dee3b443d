// Package config provides configuration management for the Injury Edge application.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App      AppConfig      `mapstructure:"app" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	NBAAPI   NBAAPIConfig   `mapstructure:"nba_api" validate:"required"`
	Analysis AnalysisConfig `mapstructure:"analysis" validate:"required"`
	Ledger   LedgerConfig   `mapstructure:"ledger" validate:"required"`
	Sync     SyncConfig     `mapstructure:"sync" validate:"required"`
	Scan     ScanConfig     `mapstructure:"scan"`
	Metrics  MetricsConfig  `mapstructure:"metrics" validate:"required"`
	Features FeaturesConfig `mapstructure:"features"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host" validate:"required"`
	Port               int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required"`
	User               string `mapstructure:"user" validate:"required"`
	Password           string `mapstructure:"password" validate:"required"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"required,gt=0"`
}

// NBAAPIConfig represents the stats.nba.com client configuration
type NBAAPIConfig struct {
	BaseURL             string `mapstructure:"base_url" validate:"required,url"`
	TimeoutSeconds      int    `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	RetryAttempts       int    `mapstructure:"retry_attempts" validate:"gte=0"`
	RequestDelayMillis  int    `mapstructure:"request_delay_ms" validate:"required,gt=0"`
	BreakerFailureLimit int    `mapstructure:"breaker_failure_limit" validate:"omitempty,gt=0"`
	BreakerResetSeconds int    `mapstructure:"breaker_reset_seconds" validate:"omitempty,gt=0"`
}

// AnalysisConfig represents impact analysis and edge scanning configuration
type AnalysisConfig struct {
	DefaultStat          string      `mapstructure:"default_stat" validate:"required,stat_code"`
	RosterMinGames       int         `mapstructure:"roster_min_games" validate:"required,gt=0"`
	MaterialityThreshold float64     `mapstructure:"materiality_threshold" validate:"gte=0"`
	MinEdge              float64     `mapstructure:"min_edge" validate:"required,gt=0,lte=1"`
	EdgeThreshold        float64     `mapstructure:"edge_threshold" validate:"required,gt=0,lte=1"`
	TopImpacts           int         `mapstructure:"top_impacts" validate:"required,gt=0"`
	BaselineWindow       int         `mapstructure:"baseline_window" validate:"required,gt=0"`
	Model                ModelConfig `mapstructure:"model" validate:"required"`
	Kelly                KellyConfig `mapstructure:"kelly" validate:"required"`
}

// ModelConfig represents the prediction ensemble configuration
type ModelConfig struct {
	Trees           int   `mapstructure:"trees" validate:"required,gt=0"`
	MaxDepth        int   `mapstructure:"max_depth" validate:"required,gt=0"`
	Seed            int64 `mapstructure:"seed"`
	CacheTTLSeconds int   `mapstructure:"cache_ttl_seconds" validate:"gte=0"`
	CacheMaxSize    int   `mapstructure:"cache_max_size" validate:"required,gt=0"`
}

// KellyConfig represents stake sizing configuration
type KellyConfig struct {
	NetOdds  float64 `mapstructure:"net_odds" validate:"required,gt=0"`
	Fraction float64 `mapstructure:"fraction" validate:"required,gt=0,lte=1"`
}

// LedgerConfig represents bet tracking configuration
type LedgerConfig struct {
	CSVPath      string  `mapstructure:"csv_path" validate:"required"`
	AmericanOdds int     `mapstructure:"american_odds" validate:"required"`
	Bankroll     float64 `mapstructure:"bankroll" validate:"gte=0"`
}

// SyncConfig represents game log synchronization configuration
type SyncConfig struct {
	Team      string `mapstructure:"team" validate:"required,team_abbrev"`
	Season    string `mapstructure:"season" validate:"omitempty,season"`
	Schedule  string `mapstructure:"schedule" validate:"required"`
	BatchSize int    `mapstructure:"batch_size" validate:"required,gt=0"`
}

// ScanConfig represents the scheduled watchlist opportunity scan. The scan
// only runs when it is enabled, at least one star is listed, and a lines
// file is configured.
type ScanConfig struct {
	Enabled   bool     `mapstructure:"enabled"`
	Schedule  string   `mapstructure:"schedule"`
	Stars     []string `mapstructure:"stars"`
	Stat      string   `mapstructure:"stat" validate:"omitempty,stat_code"`
	LinesPath string   `mapstructure:"lines_path"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// FeaturesConfig represents feature flags
type FeaturesConfig struct {
	PersistenceEnabled bool `mapstructure:"persistence_enabled"`
	SampleDataEnabled  bool `mapstructure:"sample_data_enabled"`
	TracingEnabled     bool `mapstructure:"tracing_enabled"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// RequestDelay returns the pause between consecutive NBA API requests
func (c *Config) RequestDelay() time.Duration {
	return time.Duration(c.NBAAPI.RequestDelayMillis) * time.Millisecond
}

// HTTPTimeout returns the per-request timeout for the NBA API client
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.NBAAPI.TimeoutSeconds) * time.Second
}

// ModelCacheTTL returns the prediction model cache lifetime; zero means
// models never expire
func (c *Config) ModelCacheTTL() time.Duration {
	return time.Duration(c.Analysis.Model.CacheTTLSeconds) * time.Second
}

// BreakerReset returns how long the NBA API circuit breaker stays open
func (c *Config) BreakerReset() time.Duration {
	return time.Duration(c.NBAAPI.BreakerResetSeconds) * time.Second
}
