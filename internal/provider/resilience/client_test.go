package resilience_test

import (
	"context"
	"io"
	"strings"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartmobility/tripplanner/internal/provider/resilience"
)

func fastConfig(name string, retries uint64) resilience.ClientConfig {
	cb := resilience.DefaultCircuitBreakerConfig(name)
	cb.ReadyToTrip = func(counts gobreaker.Counts) bool { return counts.Requests >= 100 }
	return resilience.ClientConfig{
		Name:            name,
		Timeout:         2 * time.Second,
		MaxRetries:      retries,
		InitialInterval: 5 * time.Millisecond,
		MaxInterval:     20 * time.Millisecond,
		CircuitBreaker:  &cb,
		Logger:          zerolog.Nop(),
	}
}

func get(t *testing.T, client *resilience.Client, url string) (*http.Response, error) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, http.NoBody)
	require.NoError(t, err)
	return client.Do(req)
}

func TestClient_SuccessfulRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"OK"}`))
	}))
	defer server.Close()

	client := resilience.NewClient(resilience.DefaultClientConfig("maps"))
	resp, err := get(t, client, server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "maps", client.Name())
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := resilience.NewClient(fastConfig("retry", 5))
	resp, err := get(t, client, server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), attempts.Load())
}

// trackedBody records when the client or caller closes a response body.
type trackedBody struct {
	io.Reader
	closed *atomic.Int32
}

func (b trackedBody) Close() error {
	b.closed.Add(1)
	return nil
}

// scriptedTransport answers each round trip with the next status code.
type scriptedTransport struct {
	statuses []int
	calls    atomic.Int32
	closed   atomic.Int32
}

func (t *scriptedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	i := int(t.calls.Add(1)) - 1
	status := t.statuses[min(i, len(t.statuses)-1)]
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{},
		Body:       trackedBody{Reader: strings.NewReader(`{"status":"OK"}`), closed: &t.closed},
		Request:    req,
	}, nil
}

func TestClient_ClosesFailedResponsesOnRecovery(t *testing.T) {
	transport := &scriptedTransport{statuses: []int{http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusOK}}
	cfg := fastConfig("recovering", 5)
	cfg.Transport = transport
	client := resilience.NewClient(cfg)

	resp, err := get(t, client, "http://maps.test/directions")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(2), transport.closed.Load(), "failed attempts are closed by the client")

	resp.Body.Close()
	assert.Equal(t, int32(3), transport.calls.Load())
	assert.Equal(t, int32(3), transport.closed.Load(), "every body closed exactly once")
}

func TestClient_ClosesAllButLastServerError(t *testing.T) {
	transport := &scriptedTransport{statuses: []int{http.StatusBadGateway}}
	cfg := fastConfig("failing", 2)
	cfg.Transport = transport
	client := resilience.NewClient(cfg)

	resp, err := get(t, client, "http://maps.test/directions")
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, int32(3), transport.calls.Load())
	assert.Equal(t, int32(2), transport.closed.Load())

	resp.Body.Close()
	assert.Equal(t, int32(3), transport.closed.Load())
}

func TestClient_ReturnsLastServerErrorResponse(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	registry := resilience.NewRegistry()
	cfg := fastConfig("exhausted", 2)
	cfg.Registry = registry
	client := resilience.NewClient(cfg)

	resp, err := get(t, client, server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, int32(3), attempts.Load(), "first attempt plus two retries")

	health := registry.GetHealth("exhausted")
	require.NotNil(t, health)
	assert.NotNil(t, health.LastFailureAt)
	assert.Nil(t, health.LastSuccessAt)
}

func TestClient_ClientErrorsAreNotRetried(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := resilience.NewClient(fastConfig("no-retry", 3))
	resp, err := get(t, client, server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestClient_CircuitBreakerOpens(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	var transitions atomic.Int32
	cb := resilience.CircuitBreakerConfig{
		Name:        "trip",
		MaxRequests: 1,
		Timeout:     time.Minute,
		ReadyToTrip: resilience.DefaultReadyToTrip,
		OnStateChange: func(string, gobreaker.State, gobreaker.State) {
			transitions.Add(1)
		},
	}
	cfg := fastConfig("trip", 4)
	cfg.CircuitBreaker = &cb
	client := resilience.NewClient(cfg)

	resp, _ := get(t, client, server.URL)
	if resp != nil {
		resp.Body.Close()
	}

	assert.Equal(t, gobreaker.StateOpen, client.CircuitBreakerState())
	assert.Equal(t, int32(1), transitions.Load())
	assert.Equal(t, int32(5), attempts.Load())

	_, err := get(t, client, server.URL)
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, int32(5), attempts.Load(), "open breaker must not reach the server")
}

func TestClient_NetworkErrorExhaustsRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	client := resilience.NewClient(fastConfig("down", 1))
	resp, err := get(t, client, url)
	if resp != nil {
		resp.Body.Close()
	}
	assert.ErrorIs(t, err, resilience.ErrMaxRetriesExceeded)
}

func TestClient_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := resilience.NewClient(fastConfig("cancel", 3))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, http.NoBody)
	require.NoError(t, err)

	resp, err := client.Do(req)
	if resp != nil {
		resp.Body.Close()
	}
	assert.Error(t, err)
}

func TestDefaultReadyToTrip(t *testing.T) {
	tests := []struct {
		name     string
		counts   gobreaker.Counts
		expected bool
	}{
		{"not enough requests", gobreaker.Counts{Requests: 4, TotalFailures: 4}, false},
		{"low failure rate", gobreaker.Counts{Requests: 10, TotalFailures: 4}, false},
		{"half failing", gobreaker.Counts{Requests: 10, TotalFailures: 5}, true},
		{"five of five failing", gobreaker.Counts{Requests: 5, TotalFailures: 5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, resilience.DefaultReadyToTrip(tt.counts))
		})
	}
}

func TestDefaultClientConfig(t *testing.T) {
	cfg := resilience.DefaultClientConfig("google-maps")

	assert.Equal(t, "google-maps", cfg.Name)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, uint64(3), cfg.MaxRetries)
	require.NotNil(t, cfg.CircuitBreaker)
	assert.Equal(t, 30*time.Second, cfg.CircuitBreaker.Timeout)
}

func TestServerError(t *testing.T) {
	err := &resilience.ServerError{StatusCode: http.StatusBadGateway}
	assert.Contains(t, err.Error(), "Bad Gateway")
}
