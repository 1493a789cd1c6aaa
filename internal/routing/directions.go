package routing

import (
	"strings"
	"time"
)

// DirectionsResponse mirrors the Google Directions API JSON document.
// Nested objects are pointers so that absent fields stay distinguishable
// from zero values.
type DirectionsResponse struct {
	Status       string     `json:"status"`
	ErrorMessage string     `json:"error_message,omitempty"`
	Routes       []RawRoute `json:"routes"`

	// Set by the provider client, not part of the wire format.
	Provider  string    `json:"-"`
	FetchedAt time.Time `json:"-"`
}

// RawRoute is one itinerary alternative as returned by the provider.
type RawRoute struct {
	Summary          string       `json:"summary"`
	Legs             []RawLeg     `json:"legs"`
	OverviewPolyline *RawPolyline `json:"overview_polyline"`
	Fare             *RawFare     `json:"fare"`
	Warnings         []string     `json:"warnings"`
}

// RawLeg is a leg between two waypoints. Transit requests only ever have one.
type RawLeg struct {
	Duration      *TextValue `json:"duration"`
	Distance      *TextValue `json:"distance"`
	DepartureTime *TimeValue `json:"departure_time"`
	ArrivalTime   *TimeValue `json:"arrival_time"`
	StartAddress  string     `json:"start_address"`
	EndAddress    string     `json:"end_address"`
	StartLocation *LatLng    `json:"start_location"`
	EndLocation   *LatLng    `json:"end_location"`
	Steps         []RawStep  `json:"steps"`
}

// RawStep is a single step of a leg.
type RawStep struct {
	TravelMode       string             `json:"travel_mode"`
	Duration         *TextValue         `json:"duration"`
	Distance         *TextValue         `json:"distance"`
	HTMLInstructions string             `json:"html_instructions"`
	Polyline         *RawPolyline       `json:"polyline"`
	StartLocation    *LatLng            `json:"start_location"`
	EndLocation      *LatLng            `json:"end_location"`
	TransitDetails   *RawTransitDetails `json:"transit_details"`
}

// RawTransitDetails describes the vehicle leg of a TRANSIT step.
type RawTransitDetails struct {
	Line          *RawLine   `json:"line"`
	DepartureStop *RawStop   `json:"departure_stop"`
	ArrivalStop   *RawStop   `json:"arrival_stop"`
	DepartureTime *TimeValue `json:"departure_time"`
	ArrivalTime   *TimeValue `json:"arrival_time"`
	Headsign      string     `json:"headsign"`
	NumStops      int        `json:"num_stops"`
}

// RawLine is the transit line serving a step.
type RawLine struct {
	Name      string      `json:"name"`
	ShortName string      `json:"short_name"`
	Color     string      `json:"color"`
	TextColor string      `json:"text_color"`
	Vehicle   *RawVehicle `json:"vehicle"`
}

// RawVehicle is the vehicle type of a line (BUS, SUBWAY, TRAM, ...).
type RawVehicle struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// RawStop is a transit stop.
type RawStop struct {
	Name     string  `json:"name"`
	Location *LatLng `json:"location"`
}

// TextValue is the provider's {text, value} pair for durations and distances.
type TextValue struct {
	Text  string `json:"text"`
	Value int    `json:"value"`
}

// TimeValue is the provider's localized time with its epoch value.
type TimeValue struct {
	Text     string `json:"text"`
	TimeZone string `json:"time_zone"`
	Value    int64  `json:"value"`
}

// LatLng is the provider's coordinate object.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// RawPolyline wraps an encoded polyline.
type RawPolyline struct {
	Points string `json:"points"`
}

// RawFare is the provider's own fare estimate.
type RawFare struct {
	Currency string  `json:"currency"`
	Text     string  `json:"text"`
	Value    float64 `json:"value"`
}

func (t *TextValue) text() string {
	if t == nil {
		return ""
	}
	return t.Text
}

func (t *TextValue) value() int {
	if t == nil {
		return 0
	}
	return t.Value
}

func (t *TimeValue) text() string {
	if t == nil {
		return ""
	}
	return t.Text
}

func (t *TimeValue) unix() int64 {
	if t == nil {
		return 0
	}
	return t.Value
}

func (p *RawPolyline) points() string {
	if p == nil {
		return ""
	}
	return p.Points
}

func (l *LatLng) coordinate() *Coordinate {
	if l == nil {
		return nil
	}
	return &Coordinate{Latitude: l.Lat, Longitude: l.Lng}
}

func (s *RawStop) name() string {
	if s == nil {
		return ""
	}
	return s.Name
}

func (s *RawStop) location() *Coordinate {
	if s == nil {
		return nil
	}
	return s.Location.coordinate()
}

// vehicleType returns the lower-cased vehicle type of a transit step, or "".
func (d *RawTransitDetails) vehicleType() string {
	if d == nil || d.Line == nil || d.Line.Vehicle == nil {
		return ""
	}
	return strings.ToLower(d.Line.Vehicle.Type)
}

func (d *RawTransitDetails) line() *RawLine {
	if d == nil || d.Line == nil {
		return &RawLine{}
	}
	return d.Line
}
