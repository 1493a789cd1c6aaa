package resilience

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

var (
	// ErrCircuitOpen is returned without calling the provider while the breaker is open.
	ErrCircuitOpen = errors.New("circuit breaker is open")

	// ErrMaxRetriesExceeded is returned when every attempt failed without a response.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)

// ClientConfig holds configuration for the resilient HTTP client.
type ClientConfig struct {
	// Name identifies the provider (breaker name and registry key).
	Name string

	// Timeout bounds each individual attempt (default: 10s).
	Timeout time.Duration

	// MaxRetries is the number of retries after the first attempt (default: 3).
	MaxRetries uint64

	// InitialInterval and MaxInterval shape the exponential backoff
	// (defaults: 100ms and 5s).
	InitialInterval time.Duration
	MaxInterval     time.Duration

	// CircuitBreaker overrides DefaultCircuitBreakerConfig(Name).
	CircuitBreaker *CircuitBreakerConfig

	// Transport overrides http.DefaultTransport (optional).
	Transport http.RoundTripper

	// Registry, when set, receives the client and its success/failure outcomes.
	Registry *Registry

	// Logger for retries and breaker transitions.
	Logger zerolog.Logger
}

// DefaultClientConfig returns the defaults used for map providers.
func DefaultClientConfig(name string) ClientConfig {
	cb := DefaultCircuitBreakerConfig(name)
	return ClientConfig{
		Name:            name,
		Timeout:         10 * time.Second,
		MaxRetries:      3,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		CircuitBreaker:  &cb,
		Logger:          zerolog.Nop(),
	}
}

// Client is an HTTP client that retries transient failures with exponential
// backoff behind a circuit breaker.
type Client struct {
	name       string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*http.Response]
	registry   *Registry
	logger     zerolog.Logger
	config     ClientConfig
}

// NewClient creates a resilient HTTP client and registers it when a registry is configured.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = 100 * time.Millisecond
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = 5 * time.Second
	}

	cbCfg := DefaultCircuitBreakerConfig(cfg.Name)
	if cfg.CircuitBreaker != nil {
		cbCfg = *cfg.CircuitBreaker
	}

	c := &Client{
		name:       cfg.Name,
		httpClient: &http.Client{Timeout: cfg.Timeout, Transport: cfg.Transport},
		breaker:    NewCircuitBreaker[*http.Response](cbCfg, cfg.Logger), //nolint:bodyclose // type parameter
		registry:   cfg.Registry,
		logger:     cfg.Logger,
		config:     cfg,
	}

	if c.registry != nil {
		c.registry.Register(cfg.Name, c)
	}

	return c
}

// Name returns the provider name the client was created for.
func (c *Client) Name() string {
	return c.name
}

// Do executes req with retries and breaker protection.
// 5xx responses and network errors are retried; other responses are returned as-is.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.DoWithContext(req.Context(), req)
}

// DoWithContext executes req under ctx. If retries are exhausted on 5xx
// responses the last response is returned so the caller can map its status.
func (c *Client) DoWithContext(ctx context.Context, req *http.Request) (*http.Response, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.config.InitialInterval
	bo.MaxInterval = c.config.MaxInterval
	bo.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, c.config.MaxRetries), ctx)

	var (
		lastResp *http.Response
		attempt  int
	)

	operation := func() error {
		attempt++
		resp, err := c.breaker.Execute(func() (*http.Response, error) { //nolint:bodyclose // returned to caller
			r, err := c.httpClient.Do(req.Clone(ctx))
			if err != nil {
				return nil, err
			}
			if r.StatusCode >= http.StatusInternalServerError {
				return r, &ServerError{StatusCode: r.StatusCode}
			}
			return r, nil
		})

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return backoff.Permanent(ErrCircuitOpen)
		}
		if lastResp != nil && lastResp != resp {
			lastResp.Body.Close()
			lastResp = nil
		}
		if err != nil {
			lastResp = resp
			c.logger.Debug().Err(err).
				Str("provider", c.name).
				Int("attempt", attempt).
				Msg("provider request failed")
			return err
		}

		lastResp = resp
		return nil
	}

	err := backoff.Retry(operation, policy)
	switch {
	case err == nil:
		c.recordSuccess()
		return lastResp, nil
	case lastResp != nil:
		c.recordFailure(err)
		return lastResp, nil
	default:
		c.recordFailure(err)
		if errors.Is(err, ErrCircuitOpen) || ctx.Err() != nil {
			return nil, err
		}
		return nil, errors.Join(ErrMaxRetriesExceeded, err)
	}
}

func (c *Client) recordSuccess() {
	if c.registry != nil {
		c.registry.RecordSuccess(c.name)
	}
}

func (c *Client) recordFailure(err error) {
	if c.registry != nil {
		c.registry.RecordFailure(c.name, err)
	}
}

// ServerError represents an HTTP 5xx response.
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return "server error: " + http.StatusText(e.StatusCode)
}

// CircuitBreakerState returns the current state of the circuit breaker.
func (c *Client) CircuitBreakerState() gobreaker.State {
	return c.breaker.State()
}

// CircuitBreakerCounts returns the current counts of the circuit breaker.
func (c *Client) CircuitBreakerCounts() gobreaker.Counts {
	return c.breaker.Counts()
}
