package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/smartmobility/tripplanner/internal/routing"
)

const (
	defaultRadiusMeters = 1000
	maxRadiusMeters     = 50000
)

// NewRedisCache returns a string cache backed by Redis whose entries expire after ttl.
func NewRedisCache(client *redis.Client, ttl time.Duration) *cache.Cache[string] {
	redisStore := redisstore.NewRedis(client, store.WithExpiration(ttl))
	return cache.New[string](redisStore)
}

// ServiceConfig holds configuration for the geocoding service.
type ServiceConfig struct {
	// Provider is the geocoding/places data source.
	Provider Provider

	// Cache stores JSON-encoded results (optional).
	Cache *cache.Cache[string]

	// Logger for service operations.
	Logger zerolog.Logger

	// Region, Language and Bounds bias every geocoding request
	// (defaults: "co", "es", MedellinBounds).
	Region   string
	Language string
	Bounds   *Bounds
}

// Service geocodes destinations and finds nearby places, caching results when configured.
type Service struct {
	provider Provider
	cache    *cache.Cache[string]
	logger   zerolog.Logger
	region   string
	language string
	bounds   *Bounds
}

// NewService creates a new geocoding service.
func NewService(cfg ServiceConfig) *Service {
	region := cfg.Region
	if region == "" {
		region = "co"
	}
	language := cfg.Language
	if language == "" {
		language = "es"
	}
	bounds := cfg.Bounds
	if bounds == nil {
		bounds = MedellinBounds
	}

	return &Service{
		provider: cfg.Provider,
		cache:    cfg.Cache,
		logger:   cfg.Logger,
		region:   region,
		language: language,
		bounds:   bounds,
	}
}

// Geocode returns the places matching query, best match first.
func (s *Service) Geocode(ctx context.Context, query string) ([]Place, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", ErrInvalidQuery)
	}

	key := "geocode:" + s.language + ":" + strings.ToLower(query)
	return s.cached(ctx, key, func() ([]Place, error) {
		return s.provider.Geocode(ctx, GeocodeRequest{
			Query:    query,
			Region:   s.region,
			Language: s.language,
			Bounds:   s.bounds,
		})
	})
}

// Resolve returns the best match for query.
func (s *Service) Resolve(ctx context.Context, query string) (Place, error) {
	places, err := s.Geocode(ctx, query)
	if err != nil {
		return Place{}, err
	}
	if len(places) == 0 {
		return Place{}, ErrNotFound
	}
	return places[0], nil
}

// NearbyPlaces returns points of interest of placeType around center.
// A zero radius uses 1 km.
func (s *Service) NearbyPlaces(ctx context.Context, center routing.Coordinate, radiusMeters int, placeType string) ([]Place, error) {
	if err := routing.ValidateCoordinate(center); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidQuery, err.Error())
	}
	if radiusMeters == 0 {
		radiusMeters = defaultRadiusMeters
	}
	if radiusMeters < 0 || radiusMeters > maxRadiusMeters {
		return nil, fmt.Errorf("%w: radius must be between 1 and %d meters", ErrInvalidQuery, maxRadiusMeters)
	}

	key := fmt.Sprintf("nearby:%.3f,%.3f:%d:%s", center.Latitude, center.Longitude, radiusMeters, placeType)
	places, err := s.cached(ctx, key, func() ([]Place, error) {
		return s.provider.NearbyPlaces(ctx, NearbyRequest{
			Center:       center,
			RadiusMeters: radiusMeters,
			Type:         placeType,
			Language:     s.language,
		})
	})
	if err != nil {
		return nil, err
	}

	for i := range places {
		places[i].PlaceType = placeType
	}
	return places, nil
}

// cached serves key from the cache or calls fetch and stores its result.
// Cache failures are logged and never fail the request.
func (s *Service) cached(ctx context.Context, key string, fetch func() ([]Place, error)) ([]Place, error) {
	if s.cache != nil {
		if value, err := s.cache.Get(ctx, key); err == nil {
			var places []Place
			if err := json.Unmarshal([]byte(value), &places); err == nil {
				s.logger.Debug().Str("cache_key", key).Msg("geocoding cache hit")
				return places, nil
			}
			s.logger.Warn().Str("cache_key", key).Msg("discarding undecodable geocoding cache entry")
		}
	}

	places, err := fetch()
	if err != nil {
		s.logger.Error().Err(err).
			Str("provider", s.provider.Name()).
			Str("cache_key", key).
			Msg("geocoding request failed")
		return nil, err
	}

	if s.cache != nil {
		if encoded, err := json.Marshal(places); err == nil {
			if err := s.cache.Set(ctx, key, string(encoded)); err != nil {
				s.logger.Warn().Err(err).Str("cache_key", key).Msg("failed to cache geocoding result")
			}
		}
	}

	return places, nil
}
