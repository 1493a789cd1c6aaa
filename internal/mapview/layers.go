// Package mapview turns a planned route and its surroundings into drawable
// map layers: colored segment polylines, stop and station markers, points of
// interest, reports, audio cue areas and the viewport to fit.
package mapview

import (
	"github.com/smartmobility/tripplanner/internal/accessibility"
	"github.com/smartmobility/tripplanner/internal/geocoding"
	"github.com/smartmobility/tripplanner/internal/report"
	"github.com/smartmobility/tripplanner/internal/routing"
	"github.com/smartmobility/tripplanner/pkg/polyline"
)

// MarkerKind identifies what a marker stands for.
type MarkerKind string

// Marker kinds.
const (
	MarkerOrigin       MarkerKind = "origin"
	MarkerDestination  MarkerKind = "destination"
	MarkerBusStop      MarkerKind = "bus_stop"
	MarkerMetroStation MarkerKind = "metro_station"
	MarkerPlace        MarkerKind = "place"
	MarkerReport       MarkerKind = "report"
	MarkerAudioPoint   MarkerKind = "audio_point"
)

// OverviewSegmentIndex marks the fallback overview line.
const OverviewSegmentIndex = -1

// Line is a polyline to draw.
type Line struct {
	// SegmentIndex is the route segment drawn, or OverviewSegmentIndex.
	SegmentIndex int                   `json:"segmentIndex"`
	Type         routing.TransportType `json:"type,omitempty"`
	Color        string                `json:"color"`
	Width        int                   `json:"width"`
	Coordinates  []polyline.Coordinate `json:"coordinates"`
}

// Marker is a point to pin.
type Marker struct {
	Kind        MarkerKind          `json:"kind"`
	Location    polyline.Coordinate `json:"location"`
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	Color       string              `json:"color,omitempty"`
	Icon        string              `json:"icon,omitempty"`
	// RefID links the marker to its place, report or audio point.
	RefID string `json:"refId,omitempty"`
}

// Circle is a radius around a point.
type Circle struct {
	Center       polyline.Coordinate `json:"center"`
	RadiusMeters float64             `json:"radius"`
	StrokeColor  string              `json:"strokeColor"`
	FillColor    string              `json:"fillColor"`
}

// Layers is everything needed to render one map view.
type Layers struct {
	Lines   []Line          `json:"lines"`
	Markers []Marker        `json:"markers"`
	Circles []Circle        `json:"circles"`
	Bounds  polyline.Bounds `json:"bounds"`
}

// Input is what the map shows.
type Input struct {
	Origin      routing.Coordinate
	Destination routing.Coordinate
	// Route is the selected route (optional).
	Route *routing.Route
	// OverviewPolyline is drawn when there is no route with segments.
	// Defaults to Route.Polyline.
	OverviewPolyline string
	Places           []geocoding.Place
	Reports          []*report.Report
	AudioPoints      []accessibility.AudioPoint
}

// Build computes the layers for in.
//
// Bounds cover every decoded segment point when the route has segment
// geometry, otherwise the decoded overview polyline, otherwise origin and
// destination.
func Build(in Input) *Layers {
	layers := &Layers{
		Lines:   []Line{},
		Markers: []Marker{},
		Circles: []Circle{},
	}

	layers.Markers = append(layers.Markers,
		Marker{
			Kind:        MarkerOrigin,
			Location:    toPoint(in.Origin),
			Title:       "Mi Ubicación",
			Description: "Tu ubicación actual",
			Color:       "#4CAF50",
			Icon:        "person-circle",
		},
		Marker{
			Kind:        MarkerDestination,
			Location:    toPoint(in.Destination),
			Title:       "Destino",
			Description: "Tu destino seleccionado",
			Color:       "#F44336",
			Icon:        "flag",
		},
	)

	var fit []polyline.Coordinate
	hasSegments := in.Route != nil && len(in.Route.Segments) > 0

	if hasSegments {
		for i, seg := range in.Route.Segments {
			points := polyline.Decode(seg.Polyline)
			if len(points) == 0 {
				continue
			}
			layers.Lines = append(layers.Lines, Line{
				SegmentIndex: i,
				Type:         seg.Type,
				Color:        SegmentColor(seg),
				Width:        SegmentWidth,
				Coordinates:  points,
			})
			layers.Markers = append(layers.Markers, stopMarkers(seg, points)...)
			fit = append(fit, points...)
		}
	} else {
		overview := in.OverviewPolyline
		if overview == "" && in.Route != nil {
			overview = in.Route.Polyline
		}
		if points := polyline.Decode(overview); len(points) > 0 {
			layers.Lines = append(layers.Lines, Line{
				SegmentIndex: OverviewSegmentIndex,
				Color:        OverviewColor,
				Width:        OverviewWidth,
				Coordinates:  points,
			})
			fit = points
		}
	}

	if len(fit) == 0 {
		fit = []polyline.Coordinate{toPoint(in.Origin), toPoint(in.Destination)}
	}
	layers.Bounds, _ = polyline.BoundsOf(fit)

	for _, p := range in.Places {
		color, icon := PlaceStyle(p.PlaceType)
		layers.Markers = append(layers.Markers, Marker{
			Kind:        MarkerPlace,
			Location:    toPoint(p.Location),
			Title:       p.Name,
			Description: p.Address,
			Color:       color,
			Icon:        icon,
			RefID:       p.ID,
		})
	}

	for _, r := range in.Reports {
		color, icon := ReportStyle(r.Category)
		layers.Markers = append(layers.Markers, Marker{
			Kind:        MarkerReport,
			Location:    toPoint(r.Location),
			Title:       r.Title,
			Description: string(r.Category) + " - " + r.Description,
			Color:       color,
			Icon:        icon,
			RefID:       r.ID,
		})
	}

	for _, a := range in.AudioPoints {
		center := toPoint(a.Location)
		layers.Markers = append(layers.Markers, Marker{
			Kind:        MarkerAudioPoint,
			Location:    center,
			Title:       a.Title,
			Description: a.Description,
			Color:       "#FF6B35",
			Icon:        "volume-high",
			RefID:       a.ID,
		})
		layers.Circles = append(layers.Circles, Circle{
			Center:       center,
			RadiusMeters: a.RadiusMeters,
			StrokeColor:  "rgba(255, 107, 53, 0.3)",
			FillColor:    "rgba(255, 107, 53, 0.1)",
		})
	}

	return layers
}

// stopMarkers pins bus stops and metro stations at the first and last point
// of the segment geometry.
func stopMarkers(seg routing.Segment, points []polyline.Coordinate) []Marker {
	var (
		kind        MarkerKind
		prefix      string
		description string
		icon        string
		color       string
	)
	td := seg.Transit
	if td == nil {
		td = &routing.TransitDetails{}
	}

	switch seg.Type {
	case routing.TransportBus:
		kind, prefix, icon, color = MarkerBusStop, "Parada: ", "bus", BusColor
		description = "Bus: " + td.Name
	case routing.TransportMetro:
		kind, prefix, icon, color = MarkerMetroStation, "Estación: ", "train", MetroColor
		description = "Metro Línea " + string(td.Line)
	default:
		return nil
	}

	return []Marker{
		{
			Kind:        kind,
			Location:    points[0],
			Title:       prefix + orDefault(td.DepartureStop, "Salida"),
			Description: description,
			Color:       color,
			Icon:        icon,
		},
		{
			Kind:        kind,
			Location:    points[len(points)-1],
			Title:       prefix + orDefault(td.ArrivalStop, "Llegada"),
			Description: description,
			Color:       color,
			Icon:        icon,
		},
	}
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func toPoint(c routing.Coordinate) polyline.Coordinate {
	return polyline.Coordinate{Latitude: c.Latitude, Longitude: c.Longitude}
}
