package datasource

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/injury-edge/internal/config"
	"github.com/yourusername/injury-edge/internal/sample"
)

// SourceType represents the type of data source
type SourceType string

const (
	// NBAStatsSourceType is the live stats.nba.com provider
	NBAStatsSourceType SourceType = "nba_stats"
	// SampleSourceType is the deterministic generated season
	SampleSourceType SourceType = "sample"
)

// Factory creates GameLogSource implementations based on configuration
type Factory struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewFactory creates a new data source factory
func NewFactory(cfg *config.Config, logger *logrus.Logger) *Factory {
	return &Factory{cfg: cfg, logger: logger}
}

// Create builds the requested data source
func (f *Factory) Create(sourceType SourceType) (GameLogSource, error) {
	switch sourceType {
	case NBAStatsSourceType:
		return f.createNBAStatsSource(), nil
	case SampleSourceType:
		return sample.NewSource(sample.DefaultConfig()), nil
	default:
		return nil, fmt.Errorf("unknown data source type: %s", sourceType)
	}
}

// CreateFromConfig picks the source the configuration asks for: the sample
// season when sample data is enabled, the live provider otherwise
func (f *Factory) CreateFromConfig() (GameLogSource, error) {
	if f.cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if f.cfg.Features.SampleDataEnabled {
		if f.logger != nil {
			f.logger.Info("Using generated sample season as data source")
		}
		return f.Create(SampleSourceType)
	}
	return f.Create(NBAStatsSourceType)
}

func (f *Factory) createNBAStatsSource() GameLogSource {
	httpCfg := DefaultHTTPClientConfig()
	if f.cfg != nil {
		api := f.cfg.NBAAPI
		httpCfg.Timeout = f.cfg.HTTPTimeout()
		httpCfg.RequestDelay = f.cfg.RequestDelay()
		if api.RetryAttempts > 0 {
			httpCfg.MaxRetries = api.RetryAttempts
		}
		if api.BreakerFailureLimit > 0 {
			httpCfg.BreakerFailureLimit = api.BreakerFailureLimit
		}
		if api.BreakerResetSeconds > 0 {
			httpCfg.BreakerReset = f.cfg.BreakerReset()
		}
	}

	httpClient := NewRateLimitedHTTPClient(httpCfg, f.logger)

	baseURL := ""
	if f.cfg != nil {
		baseURL = f.cfg.NBAAPI.BaseURL
	}
	return NewNBAStatsClient(httpClient, baseURL, f.logger)
}
