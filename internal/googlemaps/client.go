// Package googlemaps provides a client for the Google Maps Directions,
// Geocoding and Places APIs.
package googlemaps

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/smartmobility/tripplanner/internal/provider/resilience"
)

const (
	// ProviderName identifies this provider in trip plans and logs.
	ProviderName = "google-maps"

	// DefaultBaseURL is the Google Maps Platform base URL.
	DefaultBaseURL = "https://maps.googleapis.com"

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 10 * time.Second

	// DefaultLanguage is used when a request does not set one.
	DefaultLanguage = "es"

	directionsPath = "/maps/api/directions/json"
	geocodePath    = "/maps/api/geocode/json"
	nearbyPath     = "/maps/api/place/nearbysearch/json"
)

// Registry names of the per-API resilient clients.
const (
	DirectionsClientName = "google-directions"
	GeocodingClientName  = "google-geocoding"
	PlacesClientName     = "google-places"
)

// Status values returned in the "status" field of every API response.
const (
	StatusOK                = "OK"
	StatusZeroResults       = "ZERO_RESULTS"
	StatusNotFound          = "NOT_FOUND"
	StatusOverQueryLimit    = "OVER_QUERY_LIMIT"
	StatusOverDailyLimit    = "OVER_DAILY_LIMIT"
	StatusRequestDenied     = "REQUEST_DENIED"
	StatusInvalidRequest    = "INVALID_REQUEST"
	StatusMaxRouteLengthErr = "MAX_ROUTE_LENGTH_EXCEEDED"
	StatusUnknownError      = "UNKNOWN_ERROR"
)

// HTTPDoer is an interface for executing HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the Google Maps client.
type ClientConfig struct {
	// APIKey is the Google Maps Platform key (required).
	APIKey string

	// BaseURL is the API base URL (optional, defaults to maps.googleapis.com).
	BaseURL string

	// Language for instructions and place names (optional, defaults to "es").
	Language string

	// HTTPClient is used for every API (optional).
	// If nil, each API gets its own resilient client so that one tripped
	// breaker does not take the others down.
	HTTPClient HTTPDoer

	// Timeout is the request timeout (optional, defaults to 10s).
	Timeout time.Duration

	// Registry is the provider registry for health tracking (optional).
	Registry *resilience.Registry

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client talks to the Google Maps web services. It implements both
// routing.Provider and geocoding.Provider.
type Client struct {
	apiKey     string
	baseURL    string
	language   string
	directions HTTPDoer
	geocoding  HTTPDoer
	places     HTTPDoer
	logger     zerolog.Logger
}

// NewClient creates a new Google Maps client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	language := cfg.Language
	if language == "" {
		language = DefaultLanguage
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	newDoer := func(name string) HTTPDoer {
		if cfg.HTTPClient != nil {
			return cfg.HTTPClient
		}
		clientCfg := resilience.DefaultClientConfig(name)
		clientCfg.Timeout = timeout
		clientCfg.Registry = cfg.Registry
		clientCfg.Logger = cfg.Logger
		return resilience.NewClient(clientCfg)
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		language:   language,
		directions: newDoer(DirectionsClientName),
		geocoding:  newDoer(GeocodingClientName),
		places:     newDoer(PlacesClientName),
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// httpStatusError is returned for non-200 responses.
type httpStatusError struct {
	StatusCode int
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("google maps returned HTTP %d", e.StatusCode)
}

// get issues a GET to path with params plus the API key and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, doer HTTPDoer, path string, params url.Values, out any) error {
	params.Set("key", c.apiKey)
	endpoint := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := doer.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return &httpStatusError{StatusCode: resp.StatusCode}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func formatLatLng(lat, lng float64) string {
	return fmt.Sprintf("%.6f,%.6f", lat, lng)
}
