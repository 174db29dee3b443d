package datasource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/yourusername/injury-edge/internal/metrics"
)

// HTTPClientConfig holds configuration for HTTP clients
type HTTPClientConfig struct {
	Timeout             time.Duration
	MaxRetries          int
	RetryWaitMin        time.Duration
	RetryWaitMax        time.Duration
	RequestDelay        time.Duration // minimum spacing between requests
	BreakerFailureLimit int           // consecutive failures before the circuit opens
	BreakerReset        time.Duration // how long the circuit stays open
}

// DefaultHTTPClientConfig returns the defaults tuned for the NBA stats API,
// which throttles aggressively when requests arrive faster than ~2/s.
func DefaultHTTPClientConfig() HTTPClientConfig {
	return HTTPClientConfig{
		Timeout:             30 * time.Second,
		MaxRetries:          3,
		RetryWaitMin:        500 * time.Millisecond,
		RetryWaitMax:        10 * time.Second,
		RequestDelay:        600 * time.Millisecond,
		BreakerFailureLimit: 5,
		BreakerReset:        60 * time.Second,
	}
}

// RateLimitedHTTPClient wraps retryablehttp.Client with request spacing and a
// circuit breaker. Safe for concurrent use.
type RateLimitedHTTPClient struct {
	client  *retryablehttp.Client
	limiter *rate.Limiter
	logger  *logrus.Logger

	mu           sync.Mutex
	failureLimit int
	resetAfter   time.Duration
	failures     int
	isOpen       bool
	openedAt     time.Time
	lastError    error
}

// NewRateLimitedHTTPClient creates a new rate-limited HTTP client
func NewRateLimitedHTTPClient(cfg HTTPClientConfig, logger *logrus.Logger) *RateLimitedHTTPClient {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient.Timeout = cfg.Timeout
	retryClient.RetryMax = cfg.MaxRetries
	retryClient.RetryWaitMin = cfg.RetryWaitMin
	retryClient.RetryWaitMax = cfg.RetryWaitMax
	retryClient.CheckRetry = customRetryPolicy()
	retryClient.Logger = nil

	delay := cfg.RequestDelay
	if delay <= 0 {
		delay = 600 * time.Millisecond
	}

	return &RateLimitedHTTPClient{
		client:       retryClient,
		limiter:      rate.NewLimiter(rate.Every(delay), 1),
		logger:       logger,
		failureLimit: cfg.BreakerFailureLimit,
		resetAfter:   cfg.BreakerReset,
	}
}

// Do executes an HTTP request with rate limiting and circuit breaking
func (c *RateLimitedHTTPClient) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if err := c.allowRequest(); err != nil {
		return nil, err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	retryReq, err := retryablehttp.FromRequest(req)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare request: %w", err)
	}

	resp, err := c.client.Do(retryReq.WithContext(ctx))
	if err != nil {
		c.recordFailure(err)
		return nil, err
	}

	if resp.StatusCode >= 500 {
		c.recordFailure(fmt.Errorf("server returned %d", resp.StatusCode))
	} else {
		c.recordSuccess()
	}

	return resp, nil
}

// Get executes a GET request
func (c *RateLimitedHTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(ctx, req)
}

// Close releases any resources held by the client
func (c *RateLimitedHTTPClient) Close() error {
	c.client.HTTPClient.CloseIdleConnections()
	return nil
}

// Healthy reports the circuit breaker state: nil while requests are allowed,
// ErrCircuitOpen (with the last failure) while the provider is shunned
func (c *RateLimitedHTTPClient) Healthy() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isOpen && time.Since(c.openedAt) < c.resetAfter {
		return fmt.Errorf("%w: %v", ErrCircuitOpen, c.lastError)
	}
	return nil
}

// allowRequest checks the circuit breaker, letting a single probe through
// once the reset window has elapsed
func (c *RateLimitedHTTPClient) allowRequest() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isOpen {
		return nil
	}
	if time.Since(c.openedAt) >= c.resetAfter {
		c.isOpen = false
		c.failures = c.failureLimit - 1
		c.logger.Info("Circuit breaker half-open, probing provider")
		return nil
	}
	return fmt.Errorf("%w: %v", ErrCircuitOpen, c.lastError)
}

func (c *RateLimitedHTTPClient) recordFailure(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.failures++
	c.lastError = err
	if c.failures >= c.failureLimit && !c.isOpen {
		c.isOpen = true
		c.openedAt = time.Now()
		metrics.RecordCircuitBreakerTrip()
		c.logger.WithFields(logrus.Fields{
			"consecutive_failures": c.failures,
			"reset_after":          c.resetAfter.String(),
		}).Warn("Circuit breaker opened")
	}
}

func (c *RateLimitedHTTPClient) recordSuccess() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.failures = 0
	c.isOpen = false
}

// customRetryPolicy defines which HTTP responses should trigger a retry
func customRetryPolicy() retryablehttp.CheckRetry {
	return func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		if err != nil {
			return true, err
		}

		// Retry on rate limiting and transient server errors
		switch resp.StatusCode {
		case 429, 500, 502, 503, 504:
			return true, nil
		}

		return false, nil
	}
}
