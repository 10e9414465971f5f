package dataset

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// HTTPClientConfig holds tuning for the cutoff-file HTTP client.
type HTTPClientConfig struct {
	Timeout           time.Duration
	MaxRetries        int
	RetryWaitMin      time.Duration
	RetryWaitMax      time.Duration
	RateLimit         float64 // requests per second
	CircuitBreakerMax int     // consecutive failures before the circuit opens
}

// DefaultHTTPClientConfig returns recommended defaults.
func DefaultHTTPClientConfig() HTTPClientConfig {
	return HTTPClientConfig{
		Timeout:           30 * time.Second,
		MaxRetries:        3,
		RetryWaitMin:      200 * time.Millisecond,
		RetryWaitMax:      5 * time.Second,
		RateLimit:         2.0,
		CircuitBreakerMax: 5,
	}
}

// RateLimitedClient wraps retryablehttp.Client with rate limiting and a
// simple circuit breaker. Cutoff hosts are slow shared mirrors; the limiter
// keeps scheduled refreshes polite and the breaker stops hammering a host
// that is down.
type RateLimitedClient struct {
	client            *retryablehttp.Client
	limiter           *rate.Limiter
	circuitBreakerMax int
	consecutiveErrors int
	open              bool
	lastError         error
	logger            *logrus.Logger
}

// NewRateLimitedClient creates a rate-limited retrying HTTP client.
func NewRateLimitedClient(cfg HTTPClientConfig, logger *logrus.Logger) *RateLimitedClient {
	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient.Timeout = cfg.Timeout
	retryClient.RetryMax = cfg.MaxRetries
	retryClient.RetryWaitMin = cfg.RetryWaitMin
	retryClient.RetryWaitMax = cfg.RetryWaitMax
	retryClient.Logger = nil

	return &RateLimitedClient{
		client:            retryClient,
		limiter:           rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		circuitBreakerMax: cfg.CircuitBreakerMax,
		logger:            logger,
	}
}

// Get executes a GET request, honoring the rate limiter and circuit breaker.
func (c *RateLimitedClient) Get(ctx context.Context, url string) (*http.Response, error) {
	if c.open {
		return nil, fmt.Errorf("circuit breaker open: %v", c.lastError)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.consecutiveErrors++
		c.lastError = err
		if c.consecutiveErrors >= c.circuitBreakerMax {
			c.open = true
			if c.logger != nil {
				c.logger.WithError(err).WithField("failures", c.consecutiveErrors).
					Warn("Circuit breaker opened for cutoff host")
			}
		}
		return nil, err
	}

	if resp.StatusCode < 500 {
		c.consecutiveErrors = 0
		c.open = false
	}
	return resp, nil
}

// Close releases idle connections held by the client.
func (c *RateLimitedClient) Close() error {
	c.client.HTTPClient.CloseIdleConnections()
	return nil
}
