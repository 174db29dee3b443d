// Package config provides configuration management for the Injury Edge application.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "INJURY_EDGE"

// Load reads and parses the configuration from file and environment variables
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the configuration (${VAR} syntax)
	expanded := os.ExpandEnv(string(data))

	v := viper.New()
	v.SetConfigType("yaml")

	if err := v.ReadConfig(bytes.NewBuffer([]byte(expanded))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration with default values for optional fields.
// A missing config file is not an error; defaults and environment variables
// alone can produce a workable development configuration.
func LoadWithDefaults(configPath string) (*Config, error) {
	v := viper.New()

	if configPath == "" {
		configPath = "config/config.yaml"
	}

	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		expanded := os.ExpandEnv(string(data))
		if err := v.ReadConfig(bytes.NewBuffer([]byte(expanded))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "injury-edge")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("nba_api.base_url", "https://stats.nba.com/stats")
	v.SetDefault("nba_api.timeout_seconds", 30)
	v.SetDefault("nba_api.retry_attempts", 3)
	v.SetDefault("nba_api.request_delay_ms", 600)
	v.SetDefault("nba_api.breaker_failure_limit", 5)
	v.SetDefault("nba_api.breaker_reset_seconds", 60)

	v.SetDefault("analysis.default_stat", "PTS")
	v.SetDefault("analysis.roster_min_games", 3)
	v.SetDefault("analysis.materiality_threshold", 1.0)
	v.SetDefault("analysis.min_edge", 0.05)
	v.SetDefault("analysis.edge_threshold", 0.05)
	v.SetDefault("analysis.top_impacts", 5)
	v.SetDefault("analysis.baseline_window", 15)
	v.SetDefault("analysis.model.trees", 100)
	v.SetDefault("analysis.model.max_depth", 5)
	v.SetDefault("analysis.model.seed", 42)
	v.SetDefault("analysis.model.cache_ttl_seconds", 0)
	v.SetDefault("analysis.model.cache_max_size", 256)
	v.SetDefault("analysis.kelly.net_odds", 0.909)
	v.SetDefault("analysis.kelly.fraction", 0.25)

	v.SetDefault("ledger.csv_path", "bet_tracker.csv")
	v.SetDefault("ledger.american_odds", -110)

	v.SetDefault("sync.schedule", "0 7 * * *")
	v.SetDefault("sync.batch_size", 100)

	v.SetDefault("scan.schedule", "30 8 * * *")
	v.SetDefault("scan.stat", "PTS")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("features.sample_data_enabled", true)
}

// ReloadFromEnv reloads the configuration from the path named by
// INJURY_EDGE_CONFIG_PATH, when set
func ReloadFromEnv(cfg *Config) error {
	if envPath := os.Getenv(envPrefix + "_CONFIG_PATH"); envPath != "" {
		newCfg, err := Load(envPath)
		if err != nil {
			return err
		}
		*cfg = *newCfg
	}

	return nil
}
