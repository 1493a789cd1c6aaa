package routing

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/singleflight"
)

// ServiceConfig holds configuration for the routing service.
type ServiceConfig struct {
	// Provider is the directions data provider.
	Provider Provider

	// Classifier turns provider steps into segments (default: DefaultClassifier).
	Classifier *Classifier

	// Logger for service operations.
	Logger zerolog.Logger

	// Meter records trip planning metrics (default: global meter).
	Meter metric.Meter

	// CacheTTL is how long to cache directions (default: 5 minutes).
	CacheTTL time.Duration

	// CacheGridSize is the size of cache grid cells in degrees (default: 0.002 ~ 220m).
	// Trips whose endpoints fall in the same cells share cached directions.
	CacheGridSize float64

	// DepartureBucket groups explicit departure times into cache slots (default: 5 minutes).
	DepartureBucket time.Duration

	// StaleIfErrorTTL allows serving stale directions on provider errors (default: 15 minutes).
	StaleIfErrorTTL time.Duration

	// CleanupInterval is how often to clean up expired entries (default: 5 minutes).
	CleanupInterval time.Duration
}

// Service plans trips: it fetches directions with caching and turns them
// into priced routes.
type Service struct {
	provider        Provider
	classifier      Classifier
	logger          zerolog.Logger
	cacheTTL        time.Duration
	cacheGridSize   float64
	departureBucket time.Duration
	staleIfErrorTTL time.Duration
	cleanupInterval time.Duration

	plans       metric.Int64Counter
	cacheLookup metric.Int64Counter
	skipped     metric.Int64Counter

	mu          sync.RWMutex
	cache       map[string]*cachedDirections
	lastCleanup time.Time
	inflight    singleflight.Group
}

type cachedDirections struct {
	response  *DirectionsResponse
	fetchedAt time.Time
	expiresAt time.Time
}

// NewService creates a new routing service.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 5 * time.Minute
	}

	cacheGridSize := cfg.CacheGridSize
	if cacheGridSize == 0 {
		cacheGridSize = 0.002
	}

	departureBucket := cfg.DepartureBucket
	if departureBucket == 0 {
		departureBucket = 5 * time.Minute
	}

	staleIfErrorTTL := cfg.StaleIfErrorTTL
	if staleIfErrorTTL == 0 {
		staleIfErrorTTL = 15 * time.Minute
	}

	cleanupInterval := cfg.CleanupInterval
	if cleanupInterval == 0 {
		cleanupInterval = 5 * time.Minute
	}

	classifier := DefaultClassifier
	if cfg.Classifier != nil {
		classifier = *cfg.Classifier
	}

	meter := cfg.Meter
	if meter == nil {
		meter = otel.Meter("github.com/smartmobility/tripplanner/internal/routing")
	}

	s := &Service{
		provider:        cfg.Provider,
		classifier:      classifier,
		logger:          cfg.Logger,
		cacheTTL:        cacheTTL,
		cacheGridSize:   cacheGridSize,
		departureBucket: departureBucket,
		staleIfErrorTTL: staleIfErrorTTL,
		cleanupInterval: cleanupInterval,
		cache:           make(map[string]*cachedDirections),
	}

	// Instrument creation only fails on invalid names.
	s.plans, _ = meter.Int64Counter("trip_plans_total",
		metric.WithDescription("Trip plans by outcome"))
	s.cacheLookup, _ = meter.Int64Counter("directions_cache_lookups_total",
		metric.WithDescription("Directions cache lookups by result"))
	s.skipped, _ = meter.Int64Counter("route_steps_skipped_total",
		metric.WithDescription("Provider steps or segments ignored during processing"))

	return s
}

// PlanTrip fetches transit directions and returns every alternative as a
// classified, priced route in provider order. Alternatives that cannot be
// aggregated are logged and left out.
func (s *Service) PlanTrip(ctx context.Context, req DirectionsRequest) (*TripPlan, error) {
	resp, err := s.GetDirections(ctx, req)
	if err != nil {
		s.plans.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "provider_error")))
		return nil, err
	}

	var (
		routes    []Route
		malformed error
	)
	for _, processed := range s.classifier.ProcessAll(resp) {
		if processed.Err != nil {
			s.logger.Warn().Err(processed.Err).
				Str("provider", resp.Provider).
				Msg("dropping malformed route alternative")
			malformed = errors.Join(malformed, processed.Err)
			continue
		}

		route := processed.Route
		s.logSkipped(ctx, route, processed.Fare)
		s.logger.Debug().
			Int("route_id", route.ID).
			Int("segments", route.TotalSegments).
			Int("transfers", route.Transfers).
			Int("fare_total", processed.Fare.Total).
			Bool("fare_integration", processed.Fare.HasIntegration).
			Bool("fare_computed", processed.Fare.Computed).
			Msg("processed route alternative")
		routes = append(routes, *route)
	}

	if len(routes) == 0 {
		if malformed != nil {
			s.plans.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "malformed")))
			return nil, &Error{
				Provider: s.provider.Name(),
				Code:     "MALFORMED_RESPONSE",
				Message:  "no usable route in provider response",
				Err:      malformed,
			}
		}
		s.plans.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "no_route")))
		return nil, &Error{
			Provider: s.provider.Name(),
			Code:     "ZERO_RESULTS",
			Message:  "no transit route found",
			Err:      ErrNoRouteFound,
		}
	}

	s.plans.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "ok")))
	return &TripPlan{
		Origin:      req.Origin,
		Destination: req.Destination,
		Routes:      routes,
		Provider:    resp.Provider,
		FetchedAt:   resp.FetchedAt,
	}, nil
}

func (s *Service) logSkipped(ctx context.Context, route *Route, fare FareBreakdown) {
	for _, mode := range route.SkippedModes() {
		s.skipped.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", "travel_mode")))
		s.logger.Debug().
			Int("route_id", route.ID).
			Str("travel_mode", mode).
			Msg("ignoring step with unknown travel mode")
	}
	for _, seg := range fare.Unpriced {
		s.skipped.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", "fare")))
		ev := s.logger.Debug().
			Int("route_id", route.ID).
			Str("type", string(seg.Type)).
			Str("departure_time", seg.DepartureTime())
		if seg.Transit != nil {
			ev = ev.Str("vehicle_type", seg.Transit.VehicleType)
		}
		ev.Msg("segment left out of fare calculation")
	}
}

// GetDirections returns transit directions between two points.
// Uses cached data if available and not expired.
func (s *Service) GetDirections(ctx context.Context, req DirectionsRequest) (*DirectionsResponse, error) {
	if err := validateCoordinates(req.Origin); err != nil {
		return nil, &Error{
			Provider: s.provider.Name(),
			Code:     "INVALID_ORIGIN",
			Message:  "invalid origin coordinates",
			Err:      ErrInvalidCoordinates,
		}
	}
	if err := validateCoordinates(req.Destination); err != nil {
		return nil, &Error{
			Provider: s.provider.Name(),
			Code:     "INVALID_DESTINATION",
			Message:  "invalid destination coordinates",
			Err:      ErrInvalidCoordinates,
		}
	}

	cacheKey := s.cacheKey(req)

	if cached, ok := s.lookup(cacheKey); ok && time.Now().Before(cached.expiresAt) {
		s.cacheLookup.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "hit")))
		s.logger.Debug().
			Str("cache_key", cacheKey).
			Msg("cache hit for directions")
		return cached.response, nil
	}

	s.cacheLookup.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "miss")))
	return s.fetchDirections(ctx, req, cacheKey)
}

// fetchDirections fetches directions from the provider and updates the cache.
// Concurrent misses on the same key share one provider call; s.mu only
// guards the map, never the network request.
func (s *Service) fetchDirections(ctx context.Context, req DirectionsRequest, cacheKey string) (*DirectionsResponse, error) {
	v, err, shared := s.inflight.Do(cacheKey, func() (any, error) {
		// An earlier flight may have filled the entry after our cache lookup.
		if cached, ok := s.lookup(cacheKey); ok && time.Now().Before(cached.expiresAt) {
			return cached.response, nil
		}
		return s.fetchAndStore(ctx, req, cacheKey)
	})
	if shared {
		s.logger.Debug().Str("cache_key", cacheKey).Msg("shared in-flight directions request")
	}
	if err != nil {
		return nil, err
	}
	return v.(*DirectionsResponse), nil
}

func (s *Service) fetchAndStore(ctx context.Context, req DirectionsRequest, cacheKey string) (*DirectionsResponse, error) {
	log := s.logger.With().
		Float64("origin_lat", req.Origin.Latitude).
		Float64("origin_lon", req.Origin.Longitude).
		Float64("dest_lat", req.Destination.Latitude).
		Float64("dest_lon", req.Destination.Longitude).
		Str("provider", s.provider.Name()).
		Logger()

	log.Debug().Msg("fetching directions from provider")

	resp, err := s.provider.GetDirections(ctx, req)
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch directions")

		if cached, ok := s.lookup(cacheKey); ok && time.Now().Before(cached.fetchedAt.Add(s.staleIfErrorTTL)) {
			log.Warn().
				Time("fetched_at", cached.fetchedAt).
				Str("cache_key", cacheKey).
				Msg("serving stale directions due to provider error")
			return cached.response, nil
		}
		return nil, err
	}

	now := time.Now()
	s.mu.Lock()
	s.cache[cacheKey] = &cachedDirections{
		response:  resp,
		fetchedAt: now,
		expiresAt: now.Add(s.cacheTTL),
	}
	s.cleanupIfNeeded()
	s.mu.Unlock()

	log.Debug().
		Str("cache_key", cacheKey).
		Int("route_count", len(resp.Routes)).
		Msg("cached directions response")

	return resp, nil
}

func (s *Service) lookup(cacheKey string) (*cachedDirections, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cached, ok := s.cache[cacheKey]
	return cached, ok
}

// cacheKey quantizes both endpoints to the cache grid and the departure
// time to its bucket (0 for "now").
// Format: transit:{originLat},{originLon}:{destLat},{destLon}:{departureUnix}.
func (s *Service) cacheKey(req DirectionsRequest) string {
	snap := func(v float64) float64 {
		return math.Floor(v/s.cacheGridSize) * s.cacheGridSize
	}

	var departure int64
	if !req.DepartureTime.IsZero() {
		departure = req.DepartureTime.Truncate(s.departureBucket).Unix()
	}

	return fmt.Sprintf("transit:%.3f,%.3f:%.3f,%.3f:%d",
		snap(req.Origin.Latitude), snap(req.Origin.Longitude),
		snap(req.Destination.Latitude), snap(req.Destination.Longitude),
		departure,
	)
}

// cleanupIfNeeded removes expired entries if the cleanup interval has passed.
// Callers must hold s.mu.
func (s *Service) cleanupIfNeeded() {
	now := time.Now()
	if now.Sub(s.lastCleanup) < s.cleanupInterval {
		return
	}

	s.lastCleanup = now
	expired := 0

	for key, cached := range s.cache {
		if now.After(cached.fetchedAt.Add(s.staleIfErrorTTL)) {
			delete(s.cache, key)
			expired++
		}
	}

	if expired > 0 {
		s.logger.Debug().
			Int("expired_entries", expired).
			Msg("cleaned up expired directions cache entries")
	}
}

// CacheStats returns cache statistics.
func (s *Service) CacheStats() CacheStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now()
	var fresh, stale int
	for _, c := range s.cache {
		switch {
		case now.Before(c.expiresAt):
			fresh++
		case now.Before(c.fetchedAt.Add(s.staleIfErrorTTL)):
			stale++
		}
	}

	return CacheStats{
		TotalEntries: len(s.cache),
		FreshEntries: fresh,
		StaleEntries: stale,
		Provider:     s.provider.Name(),
	}
}

// CacheStats contains cache statistics.
type CacheStats struct {
	TotalEntries int    `json:"totalEntries"`
	FreshEntries int    `json:"freshEntries"`
	StaleEntries int    `json:"staleEntries"`
	Provider     string `json:"provider"`
}

func validateCoordinates(c Coordinate) error {
	if c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("latitude %f out of range [-90, 90]", c.Latitude)
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("longitude %f out of range [-180, 180]", c.Longitude)
	}
	return nil
}

// ValidateCoordinate reports ErrInvalidCoordinates for out-of-range points.
func ValidateCoordinate(c Coordinate) error {
	if err := validateCoordinates(c); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidCoordinates, err.Error())
	}
	return nil
}
