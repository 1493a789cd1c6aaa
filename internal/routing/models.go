// Package routing turns raw transit directions into classified, priced routes.
package routing

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for routing operations.
var (
	// ErrProviderUnavailable indicates the directions provider is down or the circuit breaker is open.
	ErrProviderUnavailable = errors.New("directions provider unavailable")
	// ErrNoRouteFound indicates the provider returned no itinerary between the given points.
	ErrNoRouteFound = errors.New("no route found between the given points")
	// ErrRateLimitExceeded indicates the API quota has been exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	// ErrInvalidCoordinates indicates the provided coordinates are invalid or out of range.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	// ErrRequestDenied indicates the provider rejected the request (bad key, disabled API).
	ErrRequestDenied = errors.New("directions request denied")
	// ErrMalformedRoute indicates a route whose shape cannot be processed at all.
	ErrMalformedRoute = errors.New("malformed route")
)

// Provider defines the interface for directions providers.
type Provider interface {
	// GetDirections retrieves transit itineraries between two points.
	GetDirections(ctx context.Context, req DirectionsRequest) (*DirectionsResponse, error)
	// Name returns the provider identifier for logging and metrics.
	Name() string
}

// Coordinate is a geographic point.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// DirectionsRequest is the request for computing transit routes.
type DirectionsRequest struct {
	Origin        Coordinate
	Destination   Coordinate
	DepartureTime time.Time // zero means "now"
	Language      string    // defaults to the provider's configured language
}

// TransportType discriminates Segment variants.
type TransportType string

const (
	TransportWalking      TransportType = "WALKING"
	TransportBus          TransportType = "BUS"
	TransportMetro        TransportType = "METRO"
	TransportOtherTransit TransportType = "OTHER_TRANSIT"
)

// Default display values used when the provider omits a field.
const (
	DefaultBusName         = "Bus"
	DefaultTransitName     = "Transporte"
	DefaultBusColor        = "#1976D2"
	DefaultTransitColor    = "#FF9800"
	DefaultStopName        = "Parada sin nombre"
	FareUnavailable        = "Información no disponible"
	metroNamePrefix        = "Metro Línea "
	integrationFareSuffix  = " (con integración)"
	walkingTravelMode      = "WALKING"
	transitTravelMode      = "TRANSIT"
	busVehicleType         = "bus"
	subwayVehicleType      = "subway"
	metroLineNameSubstring = "metro"
)

// Segment is one normalized leg of an itinerary.
// Exactly one of Walking or Transit is set, matching Type.
type Segment struct {
	Type            TransportType `json:"type"`
	Duration        string        `json:"duration"`
	DurationSeconds int           `json:"durationSeconds"`
	Polyline        string        `json:"polyline,omitempty"`
	StartLocation   *Coordinate   `json:"startLocation,omitempty"`
	EndLocation     *Coordinate   `json:"endLocation,omitempty"`

	Walking *WalkingDetails `json:"walking,omitempty"`
	Transit *TransitDetails `json:"transit,omitempty"`
}

// WalkingDetails is the WALKING payload of a Segment.
type WalkingDetails struct {
	Distance     string `json:"distance"`
	Instructions string `json:"instructions"`
	ToBusStop    string `json:"toBusStop"`
	IsFirst      bool   `json:"isFirst"`
	IsLast       bool   `json:"isLast"`
}

// TransitDetails is the payload shared by BUS, METRO and OTHER_TRANSIT segments.
// Line is only set for METRO; VehicleType is the lower-cased provider vehicle type.
type TransitDetails struct {
	Name              string      `json:"name"`
	Line              MetroLine   `json:"line,omitempty"`
	VehicleType       string      `json:"vehicleType,omitempty"`
	DepartureStop     string      `json:"departureStop"`
	ArrivalStop       string      `json:"arrivalStop"`
	DepartureTime     string      `json:"departureTime,omitempty"`
	ArrivalTime       string      `json:"arrivalTime,omitempty"`
	// DepartureUnix is the provider's departure in epoch seconds (0 if absent).
	DepartureUnix     int64       `json:"departureUnix,omitempty"`
	NumStops          int         `json:"numStops"`
	Color             string      `json:"color,omitempty"`
	Headsign          string      `json:"headsign,omitempty"`
	DepartureLocation *Coordinate `json:"departureLocation,omitempty"`
	ArrivalLocation   *Coordinate `json:"arrivalLocation,omitempty"`
}

// IsTransit reports whether the segment is a vehicle leg.
func (s Segment) IsTransit() bool {
	switch s.Type {
	case TransportBus, TransportMetro, TransportOtherTransit:
		return true
	case TransportWalking:
		return false
	default:
		return false
	}
}

// DepartureTime returns the transit departure time text, or "" for walking legs.
func (s Segment) DepartureTime() string {
	if s.Transit == nil {
		return ""
	}
	return s.Transit.DepartureTime
}

// BusSummary is a bus leg without geometry, as listed on route cards.
type BusSummary struct {
	Name          string `json:"name"`
	DepartureStop string `json:"departureStop"`
	ArrivalStop   string `json:"arrivalStop"`
	DepartureTime string `json:"departureTime,omitempty"`
	ArrivalTime   string `json:"arrivalTime,omitempty"`
	NumStops      int    `json:"numStops"`
	Color         string `json:"color"`
}

// Route is one itinerary alternative.
type Route struct {
	ID             int          `json:"id"`
	Summary        string       `json:"summary,omitempty"`
	Duration       string       `json:"duration"`
	Distance       string       `json:"distance"`
	StartAddress   string       `json:"startAddress,omitempty"`
	EndAddress     string       `json:"endAddress,omitempty"`
	Buses          []BusSummary `json:"buses"`
	Metro          []Segment    `json:"metro"`
	Segments       []Segment    `json:"segments"`
	Polyline       string       `json:"polyline"`
	Fare           string       `json:"fare"`
	ProviderFare   string       `json:"providerFare,omitempty"`
	DepartureTime  string       `json:"departureTime,omitempty"`
	ArrivalTime    string       `json:"arrivalTime,omitempty"`
	TotalSegments  int          `json:"totalSegments"`
	Transfers      int          `json:"transfers"`
	WalkingMinutes int          `json:"walkingMinutes"`

	// skippedModes lists travel modes of steps the classifier dropped.
	skippedModes []string
}

// TripPlan is the result of planning a trip.
type TripPlan struct {
	Origin      Coordinate `json:"origin"`
	Destination Coordinate `json:"destination"`
	Routes      []Route    `json:"routes"`
	Provider    string     `json:"provider"`
	FetchedAt   time.Time  `json:"fetchedAt"`
}

// Error provides detailed error information from the directions provider.
type Error struct {
	Provider string // Provider that generated the error
	Code     string // Status code from the provider
	Message  string // Human-readable error message
	Err      error  // Underlying error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is transient and the request can be retried.
func (e *Error) IsRetryable() bool {
	return errors.Is(e.Err, ErrProviderUnavailable) || errors.Is(e.Err, ErrRateLimitExceeded)
}

// MalformedRouteError reports a route alternative that lacks the structure
// needed for aggregation, as opposed to a missing optional field.
type MalformedRouteError struct {
	Index  int
	Reason string
}

func (e *MalformedRouteError) Error() string {
	return fmt.Sprintf("route %d: %s", e.Index, e.Reason)
}

func (e *MalformedRouteError) Unwrap() error {
	return ErrMalformedRoute
}
