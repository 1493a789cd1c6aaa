package models

import (
	"strings"

	"github.com/smartmobility/tripplanner/internal/accessibility"
	"github.com/smartmobility/tripplanner/internal/routing"
)

// PlanTripRequest is the body of POST /v1/trips:plan. Exactly one of
// Destination and DestinationQuery is required.
type PlanTripRequest struct {
	Origin           *routing.Coordinate `json:"origin"`
	Destination      *routing.Coordinate `json:"destination,omitempty"`
	DestinationQuery string              `json:"destinationQuery,omitempty"`
	DepartureTime    *Timestamp          `json:"departureTime,omitempty"`
	Language         string              `json:"language,omitempty"`
}

// Validate returns every problem with the request.
func (r *PlanTripRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Origin == nil {
		errs = append(errs, FieldError{Field: "origin", Message: "required", Code: "REQUIRED"})
	} else if routing.ValidateCoordinate(*r.Origin) != nil {
		errs = append(errs, FieldError{Field: "origin", Message: "must be a valid coordinate", Code: "OUT_OF_RANGE"})
	}

	query := strings.TrimSpace(r.DestinationQuery)
	switch {
	case r.Destination == nil && query == "":
		errs = append(errs, FieldError{Field: "destination", Message: "destination or destinationQuery is required", Code: "REQUIRED"})
	case r.Destination != nil && query != "":
		errs = append(errs, FieldError{Field: "destinationQuery", Message: "must not be combined with destination", Code: "CONFLICT"})
	case r.Destination != nil && routing.ValidateCoordinate(*r.Destination) != nil:
		errs = append(errs, FieldError{Field: "destination", Message: "must be a valid coordinate", Code: "OUT_OF_RANGE"})
	}
	return errs
}

// PlanTripResponse lists the planned route alternatives in provider order.
type PlanTripResponse struct {
	Origin          routing.Coordinate `json:"origin"`
	Destination     routing.Coordinate `json:"destination"`
	DestinationName string             `json:"destinationName,omitempty"`
	Routes          []routing.Route    `json:"routes"`
	Provider        string             `json:"provider"`
	GeneratedAt     Timestamp          `json:"generatedAt"`
}

// NavigateRequest is the body of POST /v1/trips:navigate.
type NavigateRequest struct {
	Route *routing.Route `json:"route"`
	// AudioRadiusMeters overrides the trigger radius of audio cues.
	AudioRadiusMeters float64 `json:"audioRadiusMeters,omitempty"`
}

// NavigateResponse carries the navigation parameters for the selected route
// and the accessibility audio cues along it.
type NavigateResponse struct {
	Params      map[string]string          `json:"params"`
	AudioPoints []accessibility.AudioPoint `json:"audioPoints"`
}

// AudioCheckRequest is the body of POST /v1/trips:audio-check. Params are the
// navigation parameters returned by trips:navigate; Triggered lists the audio
// point IDs that already spoke on this trip.
type AudioCheckRequest struct {
	Params            map[string]string   `json:"params"`
	Position          *routing.Coordinate `json:"position"`
	Triggered         []string            `json:"triggered,omitempty"`
	AudioRadiusMeters float64             `json:"audioRadiusMeters,omitempty"`
}

// Validate returns every problem with the request.
func (r *AudioCheckRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Params["segments"] == "" {
		errs = append(errs, FieldError{Field: "params.segments", Message: "required", Code: "REQUIRED"})
	}
	if r.Position == nil {
		errs = append(errs, FieldError{Field: "position", Message: "required", Code: "REQUIRED"})
	} else if routing.ValidateCoordinate(*r.Position) != nil {
		errs = append(errs, FieldError{Field: "position", Message: "must be a valid coordinate", Code: "OUT_OF_RANGE"})
	}
	if r.AudioRadiusMeters < 0 {
		errs = append(errs, FieldError{Field: "audioRadiusMeters", Message: "must not be negative", Code: "OUT_OF_RANGE"})
	}
	return errs
}

// AudioCheckResponse lists the audio points that fire at the reported
// position and every point triggered so far, including those.
type AudioCheckResponse struct {
	Fired     []accessibility.AudioPoint `json:"fired"`
	Triggered []string                   `json:"triggered"`
}

// MapLayersRequest is the body of POST /v1/map/layers.
type MapLayersRequest struct {
	Origin           *routing.Coordinate `json:"origin"`
	Destination      *routing.Coordinate `json:"destination"`
	Route            *routing.Route      `json:"route,omitempty"`
	OverviewPolyline string              `json:"overviewPolyline,omitempty"`
	// PlaceType adds nearby places of this type around the destination.
	PlaceType string `json:"placeType,omitempty"`
	// IncludeReports adds reports near the destination.
	IncludeReports bool `json:"includeReports,omitempty"`
	// IncludeAudio adds audio cue markers for the route.
	IncludeAudio bool `json:"includeAudio,omitempty"`
}

// Validate returns every problem with the request.
func (r *MapLayersRequest) Validate() []FieldError {
	var errs []FieldError
	for _, f := range []struct {
		name string
		c    *routing.Coordinate
	}{{"origin", r.Origin}, {"destination", r.Destination}} {
		if f.c == nil {
			errs = append(errs, FieldError{Field: f.name, Message: "required", Code: "REQUIRED"})
		} else if routing.ValidateCoordinate(*f.c) != nil {
			errs = append(errs, FieldError{Field: f.name, Message: "must be a valid coordinate", Code: "OUT_OF_RANGE"})
		}
	}
	return errs
}
