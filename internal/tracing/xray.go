// Package tracing provides AWS X-Ray distributed tracing integration.
package tracing

import (
	"context"
	"fmt"

	"github.com/aws/aws-xray-sdk-go/strategy/sampling"
	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/aws/aws-xray-sdk-go/xraylog"
	"github.com/sirupsen/logrus"
)

// Config contains X-Ray configuration.
type Config struct {
	ServiceName  string
	Enabled      bool
	SamplingRate float64
	DaemonAddr   string
}

// xrayLoggerAdapter routes the SDK's internal logging through logrus.
type xrayLoggerAdapter struct {
	logger *logrus.Logger
}

func (l *xrayLoggerAdapter) Log(level xraylog.LogLevel, msg fmt.Stringer) {
	switch level {
	case xraylog.LogLevelDebug:
		l.logger.Debug(msg.String())
	case xraylog.LogLevelInfo:
		l.logger.Info(msg.String())
	case xraylog.LogLevelWarn:
		l.logger.Warn(msg.String())
	default:
		l.logger.Error(msg.String())
	}
}

// Initialize configures AWS X-Ray. A disabled config is a no-op, so callers
// can run without a daemon in development. An empty DaemonAddr falls back to
// the SDK default (127.0.0.1:2000 or AWS_XRAY_DAEMON_ADDRESS).
func Initialize(cfg Config, logger *logrus.Logger) error {
	if !cfg.Enabled {
		return nil
	}

	if cfg.SamplingRate <= 0 {
		cfg.SamplingRate = 0.05
	}

	xray.SetLogger(&xrayLoggerAdapter{logger: logger})

	ruleJSON := fmt.Sprintf(`{"version": 2, "default": {"fixed_target": 1, "rate": %g}}`, cfg.SamplingRate)
	strategy, err := sampling.NewLocalizedStrategyFromJSONBytes([]byte(ruleJSON))
	if err != nil {
		return fmt.Errorf("failed to build sampling strategy: %w", err)
	}

	if err := xray.Configure(xray.Config{
		DaemonAddr:       cfg.DaemonAddr,
		SamplingStrategy: strategy,
	}); err != nil {
		return fmt.Errorf("failed to configure xray: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"daemon_addr":   cfg.DaemonAddr,
		"sampling_rate": cfg.SamplingRate,
		"service_name":  cfg.ServiceName,
	}).Info("AWS X-Ray initialized")

	return nil
}

// StartSegment starts a new X-Ray segment.
func StartSegment(ctx context.Context, segmentName string) (context.Context, *xray.Segment) {
	return xray.BeginSegment(ctx, segmentName)
}

// StartSubsegment starts a new X-Ray subsegment.
func StartSubsegment(ctx context.Context, subsegmentName string) (context.Context, *xray.Segment) {
	return xray.BeginSubsegment(ctx, subsegmentName)
}

// AddAnnotation adds an indexed annotation to the current segment.
func AddAnnotation(ctx context.Context, key string, value interface{}) {
	if seg := xray.GetSegment(ctx); seg != nil {
		_ = seg.AddAnnotation(key, value)
	}
}

// AddMetadata adds unindexed metadata to the current segment.
func AddMetadata(ctx context.Context, key string, value interface{}) {
	if seg := xray.GetSegment(ctx); seg != nil {
		_ = seg.AddMetadata(key, value)
	}
}

// AddError marks the current segment as failed.
func AddError(ctx context.Context, err error) {
	if seg := xray.GetSegment(ctx); seg != nil {
		_ = seg.AddError(err)
	}
}
