// Package resilience wraps net/http with a circuit breaker and exponential
// retry for calls to external boundaries. A tripped breaker fails fast so a
// dead boundary cannot stall cycle execution.
package resilience

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
)

// ErrCircuitOpen is returned when the circuit breaker rejects the call.
var ErrCircuitOpen = errors.New("resilience: circuit breaker is open")

// ServerError represents an HTTP 5xx response, retried and counted as a
// breaker failure.
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return "server error: " + http.StatusText(e.StatusCode)
}

// Config holds tuning for one resilient client.
type Config struct {
	// Name identifies the client in breaker state transitions and logs.
	Name            string
	Timeout         time.Duration
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
	// BreakerTimeout is the open-state period before a half-open probe.
	BreakerTimeout time.Duration
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Timeout == 0 {
		c.Timeout = 10 * time.Second
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.InitialInterval == 0 {
		c.InitialInterval = 100 * time.Millisecond
	}
	if c.MaxInterval == 0 {
		c.MaxInterval = 5 * time.Second
	}
	if c.BreakerTimeout == 0 {
		c.BreakerTimeout = 60 * time.Second
	}
}

// Client is an HTTP client with circuit breaker protection and retry logic.
type Client struct {
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*http.Response]
	cfg        Config
}

// NewClient creates a resilient client. The breaker trips after five or more
// requests with a failure rate of at least 50%.
func NewClient(cfg Config) *Client {
	cfg.SetDefaults()
	breaker := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && ratio >= 0.5
		},
	})
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    breaker,
		cfg:        cfg,
	}
}

// Do executes the request, retrying transient failures (network errors, 5xx)
// with exponential backoff. A request that keeps returning 5xx after all
// retries yields the last response rather than an error; callers decide on
// status. Client errors (4xx) are returned immediately.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.cfg.InitialInterval
	bo.MaxInterval = c.cfg.MaxInterval
	bo.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, c.cfg.MaxRetries), ctx)

	var lastResp *http.Response
	operation := func() error {
		resp, err := c.breaker.Execute(func() (*http.Response, error) {
			attempt := req.Clone(ctx)
			if req.GetBody != nil {
				// The original body is consumed by the first attempt;
				// every attempt needs a fresh reader.
				body, err := req.GetBody()
				if err != nil {
					return nil, err
				}
				attempt.Body = body
			}
			r, err := c.httpClient.Do(attempt)
			if err != nil {
				return nil, err
			}
			if r.StatusCode >= 500 {
				return rebuffer(r), &ServerError{StatusCode: r.StatusCode}
			}
			return r, nil
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(ErrCircuitOpen)
			}
			if resp != nil {
				lastResp = resp
			}
			return err
		}
		lastResp = resp
		return nil
	}

	if err := backoff.Retry(operation, policy); err != nil {
		if lastResp != nil {
			return lastResp, nil
		}
		return nil, err
	}
	return lastResp, nil
}

// maxErrorBody bounds how much of a 5xx body is kept for the caller.
const maxErrorBody = 64 << 10

// rebuffer consumes an error response's body into memory. The underlying
// connection is released before the next attempt, and the caller can still
// read the body of the response it ultimately receives.
func rebuffer(r *http.Response) *http.Response {
	b, _ := io.ReadAll(io.LimitReader(r.Body, maxErrorBody))
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(b))
	return r
}

// State returns the current breaker state.
func (c *Client) State() gobreaker.State { return c.breaker.State() }
