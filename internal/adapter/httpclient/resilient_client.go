package httpclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/elchacal801/flame-fraud/internal/adapter/metrics"
)

// ResilientClient retries transient upstream failures and stops calling an
// upstream host that keeps failing. Breakers are kept per host.
type ResilientClient struct {
	client *http.Client
	config Config
	logger zerolog.Logger

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker
}

type Config struct {
	// Circuit breaker settings
	EnableCircuitBreaker bool
	MaxFailures          uint32
	CircuitTimeout       time.Duration

	// Retry settings
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultConfig reads FLAME_HTTP_* variables, falling back to defaults.
func DefaultConfig() Config {
	return Config{
		EnableCircuitBreaker: getEnvBool("FLAME_HTTP_CIRCUIT_BREAKER_ENABLED", true),
		MaxFailures:          uint32(getEnvInt("FLAME_HTTP_CIRCUIT_BREAKER_MAX_FAILURES", 5)),
		CircuitTimeout:       time.Duration(getEnvInt("FLAME_HTTP_CIRCUIT_BREAKER_TIMEOUT_SECONDS", 30)) * time.Second,
		MaxRetries:           getEnvInt("FLAME_HTTP_RETRY_MAX_ATTEMPTS", 3),
		InitialInterval:      time.Duration(getEnvInt("FLAME_HTTP_RETRY_INITIAL_INTERVAL_MS", 500)) * time.Millisecond,
		MaxInterval:          time.Duration(getEnvInt("FLAME_HTTP_RETRY_MAX_INTERVAL_MS", 5000)) * time.Millisecond,
	}
}

func NewResilientClient(timeout time.Duration, config Config, logger zerolog.Logger) *ResilientClient {
	return &ResilientClient{
		client:   &http.Client{Timeout: timeout},
		config:   config,
		logger:   logger.With().Str("component", "httpclient").Logger(),
		breakers: map[string]*gobreaker.CircuitBreaker{},
	}
}

// breakerFor returns the breaker guarding host, or nil when breaking is
// disabled.
func (c *ResilientClient) breakerFor(host string) *gobreaker.CircuitBreaker {
	if !c.config.EnableCircuitBreaker {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if b, ok := c.breakers[host]; ok {
		return b
	}

	b := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "regulatory-fetch:" + host,
		MaxRequests: 1,
		Timeout:     c.config.CircuitTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= c.config.MaxFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			c.logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	})
	c.breakers[host] = b
	return b
}

// Do sends req. Responses with status >= 400 are returned as errors after
// the body is closed, so callers only ever see successful responses.
func (c *ResilientClient) Do(req *http.Request) (*http.Response, error) {
	breaker := c.breakerFor(req.URL.Host)
	if breaker == nil {
		return c.doWithRetry(req)
	}

	result, err := breaker.Execute(func() (interface{}, error) {
		return c.doWithRetry(req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.RecordHTTPError("circuit_open")
			return nil, fmt.Errorf("circuit breaker is open: %w", err)
		}
		return nil, err
	}

	return result.(*http.Response), nil
}

func (c *ResilientClient) doWithRetry(req *http.Request) (*http.Response, error) {
	body, err := drainBody(req)
	if err != nil {
		return nil, err
	}

	var resp *http.Response
	var lastErr error

	attempt := func() error {
		if body != nil {
			req.Body = io.NopCloser(bytes.NewReader(body))
		}

		r, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			metrics.RecordHTTPError("connection")
			if c.shouldRetry(err, nil) {
				return err
			}
			return backoff.Permanent(err)
		}

		if r.StatusCode >= 400 {
			metrics.RecordHTTPError(classifyStatus(r.StatusCode))
			r.Body.Close()
			lastErr = fmt.Errorf("HTTP %d: %s", r.StatusCode, r.Status)
			if c.shouldRetry(nil, r) {
				c.logger.Debug().Str("url", req.URL.String()).Int("status", r.StatusCode).Msg("retrying request")
				return lastErr
			}
			return backoff.Permanent(lastErr)
		}

		resp = r
		return nil
	}

	if c.config.MaxRetries <= 0 {
		if err := attempt(); err != nil {
			return nil, lastErr
		}
		return resp, nil
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = c.config.InitialInterval
	expBackoff.MaxInterval = c.config.MaxInterval
	expBackoff.Multiplier = 2.0
	expBackoff.MaxElapsedTime = 0 // bounded by MaxRetries instead

	policy := backoff.WithContext(
		backoff.WithMaxRetries(expBackoff, uint64(c.config.MaxRetries)),
		req.Context(),
	)

	if err := backoff.Retry(attempt, policy); err != nil {
		if lastErr == nil {
			lastErr = err
		}
		return nil, fmt.Errorf("request failed after retries: %w", lastErr)
	}

	return resp, nil
}

// shouldRetry reports whether a transport error or status is transient.
func (c *ResilientClient) shouldRetry(err error, resp *http.Response) bool {
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return true
		}
		msg := err.Error()
		return strings.Contains(msg, "connection refused") ||
			strings.Contains(msg, "connection reset") ||
			strings.Contains(msg, "EOF")
	}

	if resp == nil {
		return false
	}
	switch resp.StatusCode {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

func classifyStatus(code int) string {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return "auth"
	case http.StatusTooManyRequests:
		return "rate_limit"
	case http.StatusRequestTimeout:
		return "timeout"
	case http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return "server_error"
	}
	return "http_error"
}

func drainBody(req *http.Request) ([]byte, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}
	defer req.Body.Close()
	data, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	return data, nil
}

func getEnvInt(key string, defaultValue int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if val := os.Getenv(key); val != "" {
		if boolVal, err := strconv.ParseBool(val); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
