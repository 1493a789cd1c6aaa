package geocoding_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartmobility/tripplanner/internal/geocoding"
	"github.com/smartmobility/tripplanner/internal/routing"
)

type fakeProvider struct {
	mu          sync.Mutex
	places      []geocoding.Place
	err         error
	geocodes    []geocoding.GeocodeRequest
	nearbyCalls []geocoding.NearbyRequest
}

func (f *fakeProvider) Geocode(_ context.Context, req geocoding.GeocodeRequest) ([]geocoding.Place, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.geocodes = append(f.geocodes, req)
	if f.err != nil {
		return nil, f.err
	}
	return append([]geocoding.Place(nil), f.places...), nil
}

func (f *fakeProvider) NearbyPlaces(_ context.Context, req geocoding.NearbyRequest) ([]geocoding.Place, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nearbyCalls = append(f.nearbyCalls, req)
	if f.err != nil {
		return nil, f.err
	}
	return append([]geocoding.Place(nil), f.places...), nil
}

func (f *fakeProvider) Name() string { return "fake" }

var parqueLleras = geocoding.Place{
	ID:       "ChIJ-lleras",
	Name:     "Parque Lleras",
	Address:  "Cl. 9A #37-15, El Poblado, Medellín, Antioquia",
	Location: routing.Coordinate{Latitude: 6.2086, Longitude: -75.5673},
}

func newRedisCache(t *testing.T) (*miniredis.Miniredis, *geocoding.Service, *fakeProvider) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	provider := &fakeProvider{places: []geocoding.Place{parqueLleras}}
	svc := geocoding.NewService(geocoding.ServiceConfig{
		Provider: provider,
		Cache:    geocoding.NewRedisCache(client, time.Hour),
		Logger:   zerolog.Nop(),
	})
	return mr, svc, provider
}

func TestService_GeocodeAppliesRegionBias(t *testing.T) {
	provider := &fakeProvider{places: []geocoding.Place{parqueLleras}}
	svc := geocoding.NewService(geocoding.ServiceConfig{Provider: provider, Logger: zerolog.Nop()})

	places, err := svc.Geocode(context.Background(), "  Parque Lleras ")
	require.NoError(t, err)
	require.Len(t, places, 1)
	assert.Equal(t, "Parque Lleras", places[0].Name)

	require.Len(t, provider.geocodes, 1)
	req := provider.geocodes[0]
	assert.Equal(t, "Parque Lleras", req.Query)
	assert.Equal(t, "co", req.Region)
	assert.Equal(t, "es", req.Language)
	assert.Equal(t, geocoding.MedellinBounds, req.Bounds)
}

func TestService_GeocodeRejectsEmptyQuery(t *testing.T) {
	provider := &fakeProvider{}
	svc := geocoding.NewService(geocoding.ServiceConfig{Provider: provider, Logger: zerolog.Nop()})

	_, err := svc.Geocode(context.Background(), "   ")
	assert.ErrorIs(t, err, geocoding.ErrInvalidQuery)
	assert.Empty(t, provider.geocodes)
}

func TestService_GeocodeCachesInRedis(t *testing.T) {
	mr, svc, provider := newRedisCache(t)
	ctx := context.Background()

	first, err := svc.Geocode(ctx, "Parque Lleras")
	require.NoError(t, err)
	second, err := svc.Geocode(ctx, "parque lleras")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, provider.geocodes, 1, "second lookup must be served from redis")
	assert.True(t, mr.Exists("geocode:es:parque lleras"))
}

func TestService_CacheEntriesExpire(t *testing.T) {
	mr, svc, provider := newRedisCache(t)
	ctx := context.Background()

	_, err := svc.Geocode(ctx, "Parque Lleras")
	require.NoError(t, err)

	mr.FastForward(2 * time.Hour)

	_, err = svc.Geocode(ctx, "Parque Lleras")
	require.NoError(t, err)
	assert.Len(t, provider.geocodes, 2)
}

func TestService_ErrorsAreNotCached(t *testing.T) {
	mr, svc, provider := newRedisCache(t)
	provider.err = geocoding.ErrProviderUnavailable

	_, err := svc.Geocode(context.Background(), "Parque Lleras")
	assert.ErrorIs(t, err, geocoding.ErrProviderUnavailable)
	assert.False(t, mr.Exists("geocode:es:parque lleras"))
}

func TestService_CacheFailureFallsBackToProvider(t *testing.T) {
	mr, svc, provider := newRedisCache(t)
	mr.Close()

	places, err := svc.Geocode(context.Background(), "Parque Lleras")
	require.NoError(t, err)
	assert.Len(t, places, 1)
	assert.Len(t, provider.geocodes, 1)
}

func TestService_Resolve(t *testing.T) {
	provider := &fakeProvider{}
	svc := geocoding.NewService(geocoding.ServiceConfig{Provider: provider, Logger: zerolog.Nop()})

	_, err := svc.Resolve(context.Background(), "Nowhere")
	assert.ErrorIs(t, err, geocoding.ErrNotFound)

	provider.places = []geocoding.Place{parqueLleras, {Name: "Lleras II"}}
	place, err := svc.Resolve(context.Background(), "Lleras")
	require.NoError(t, err)
	assert.Equal(t, "Parque Lleras", place.Name)
}

func TestService_NearbyPlaces(t *testing.T) {
	center := routing.Coordinate{Latitude: 6.2088, Longitude: -75.5680}

	t.Run("default radius and place type tagging", func(t *testing.T) {
		provider := &fakeProvider{places: []geocoding.Place{{Name: "Pergamino Café"}}}
		svc := geocoding.NewService(geocoding.ServiceConfig{Provider: provider, Logger: zerolog.Nop()})

		places, err := svc.NearbyPlaces(context.Background(), center, 0, "cafe")
		require.NoError(t, err)
		require.Len(t, places, 1)
		assert.Equal(t, "cafe", places[0].PlaceType)

		require.Len(t, provider.nearbyCalls, 1)
		assert.Equal(t, 1000, provider.nearbyCalls[0].RadiusMeters)
		assert.Equal(t, "cafe", provider.nearbyCalls[0].Type)
	})

	t.Run("invalid input", func(t *testing.T) {
		provider := &fakeProvider{}
		svc := geocoding.NewService(geocoding.ServiceConfig{Provider: provider, Logger: zerolog.Nop()})

		_, err := svc.NearbyPlaces(context.Background(), routing.Coordinate{Latitude: 120}, 500, "cafe")
		assert.ErrorIs(t, err, geocoding.ErrInvalidQuery)

		_, err = svc.NearbyPlaces(context.Background(), center, 60000, "cafe")
		assert.ErrorIs(t, err, geocoding.ErrInvalidQuery)
		assert.Empty(t, provider.nearbyCalls)
	})

	t.Run("cached per type", func(t *testing.T) {
		_, svc, provider := newRedisCache(t)
		ctx := context.Background()

		_, err := svc.NearbyPlaces(ctx, center, 500, "cafe")
		require.NoError(t, err)
		_, err = svc.NearbyPlaces(ctx, center, 500, "cafe")
		require.NoError(t, err)
		_, err = svc.NearbyPlaces(ctx, center, 500, "pharmacy")
		require.NoError(t, err)

		assert.Len(t, provider.nearbyCalls, 2)
	})

	t.Run("provider error", func(t *testing.T) {
		provider := &fakeProvider{err: errors.New("boom")}
		svc := geocoding.NewService(geocoding.ServiceConfig{Provider: provider, Logger: zerolog.Nop()})

		_, err := svc.NearbyPlaces(context.Background(), center, 500, "cafe")
		assert.EqualError(t, err, "boom")
	})
}
