// Package geocoding resolves destination queries to coordinates and finds
// points of interest near a route.
package geocoding

import (
	"context"
	"errors"

	"github.com/smartmobility/tripplanner/internal/routing"
)

var (
	// ErrNotFound indicates the query matched no place.
	ErrNotFound = errors.New("no place matches the query")
	// ErrInvalidQuery indicates an empty query or out-of-range search parameters.
	ErrInvalidQuery = errors.New("invalid geocoding query")
	// ErrProviderUnavailable indicates the provider is down, over quota or rejecting requests.
	ErrProviderUnavailable = errors.New("geocoding provider unavailable")
)

// Place is a geocoded address or a point of interest.
type Place struct {
	ID       string             `json:"id"`
	Name     string             `json:"name"`
	Address  string             `json:"address"`
	Location routing.Coordinate `json:"location"`
	Types    []string           `json:"types,omitempty"`
	Rating   float64            `json:"rating,omitempty"`
	OpenNow  *bool              `json:"openNow,omitempty"`
	// PlaceType is the type the place was searched by, for nearby results.
	PlaceType string `json:"placeType,omitempty"`
}

// GeocodeRequest resolves free text to places.
type GeocodeRequest struct {
	Query    string
	Region   string // ccTLD region bias, e.g. "co"
	Language string
	Bounds   *Bounds
}

// NearbyRequest searches points of interest around a point.
type NearbyRequest struct {
	Center       routing.Coordinate
	RadiusMeters int
	Type         string
	Language     string
}

// Bounds biases geocoding towards a viewport.
type Bounds struct {
	Southwest routing.Coordinate
	Northeast routing.Coordinate
}

// MedellinBounds covers the Aburrá valley.
var MedellinBounds = &Bounds{
	Southwest: routing.Coordinate{Latitude: 6.08, Longitude: -75.70},
	Northeast: routing.Coordinate{Latitude: 6.40, Longitude: -75.45},
}

// Provider is a geocoding and places data source.
type Provider interface {
	Geocode(ctx context.Context, req GeocodeRequest) ([]Place, error)
	NearbyPlaces(ctx context.Context, req NearbyRequest) ([]Place, error)
	Name() string
}
