// Package destination keeps each user's destination history and derives the
// popular and recent shortcuts shown when planning a trip.
package destination

import (
	"errors"
	"math"
	"time"

	"github.com/smartmobility/tripplanner/internal/routing"
)

// Service errors.
var (
	ErrNameRequired    = errors.New("destination name is required")
	ErrInvalidLocation = errors.New("destination location is invalid")
)

// Default shortcut sizes.
const (
	DefaultPopularLimit = 4
	DefaultRecentLimit  = 3
)

// ProximityDegrees is how close, in degrees on both axes, two destinations
// must be to count as the same place (about 100 m).
const ProximityDegrees = 0.001

// Destination is a place a user has searched for.
type Destination struct {
	ID       string              `json:"id"`
	UserID   string              `json:"-"`
	Name     string              `json:"name"`
	Address  string              `json:"address"`
	Icon     string              `json:"icon,omitempty"`
	Location *routing.Coordinate `json:"coordinates,omitempty"`
	// Count is the number of times the destination was searched.
	Count     int       `json:"count"`
	LastUsed  time.Time `json:"lastUsed"`
	CreatedAt time.Time `json:"-"`
}

// SaveInput describes a destination the user just searched for.
type SaveInput struct {
	ID       string              `json:"id,omitempty"`
	Name     string              `json:"name"`
	Address  string              `json:"address"`
	Icon     string              `json:"icon,omitempty"`
	Location *routing.Coordinate `json:"coordinates,omitempty"`
}

// sameAs reports whether d is the place described by in: same ID, same name,
// or both located within ProximityDegrees.
func (d *Destination) sameAs(in *SaveInput) bool {
	if in.ID != "" && d.ID == in.ID {
		return true
	}
	if d.Name == in.Name {
		return true
	}
	if d.Location != nil && in.Location != nil {
		latDiff := d.Location.Latitude - in.Location.Latitude
		lngDiff := d.Location.Longitude - in.Location.Longitude
		return math.Abs(latDiff) < ProximityDegrees && math.Abs(lngDiff) < ProximityDegrees
	}
	return false
}
