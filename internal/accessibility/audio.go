// Package accessibility produces spoken cues for visually impaired riders:
// audio points placed along a route that fire once when the rider enters
// their radius.
package accessibility

import (
	"fmt"
	"sync"

	"github.com/smartmobility/tripplanner/internal/routing"
	"github.com/smartmobility/tripplanner/pkg/polyline"
)

// DefaultRadiusMeters is the trigger radius of generated audio points.
const DefaultRadiusMeters = 50.0

// AudioPoint is a location that speaks AudioText when approached.
type AudioPoint struct {
	ID          string             `json:"id"`
	Location    routing.Coordinate `json:"location"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	// RadiusMeters is the distance at which the point triggers.
	RadiusMeters float64 `json:"radius"`
	AudioText    string  `json:"audioText"`
	Triggered    bool    `json:"triggered"`
}

// PointsForRoute places an audio point at the boarding and alighting stop of
// every transit segment of route. Segments without stop locations get no points.
func PointsForRoute(route *routing.Route, radiusMeters float64) []AudioPoint {
	if radiusMeters <= 0 {
		radiusMeters = DefaultRadiusMeters
	}

	var points []AudioPoint
	for i, seg := range route.Segments {
		td := seg.Transit
		if td == nil {
			continue
		}
		vehicle := vehicleLabel(seg)

		if td.DepartureLocation != nil {
			points = append(points, AudioPoint{
				ID:           fmt.Sprintf("route-%d-seg-%d-board", route.ID, i),
				Location:     *td.DepartureLocation,
				Title:        "Abordaje: " + td.DepartureStop,
				Description:  vehicle,
				RadiusMeters: radiusMeters,
				AudioText:    fmt.Sprintf("Estás llegando a %s. Aquí debes tomar %s.", td.DepartureStop, vehicle),
			})
		}
		if td.ArrivalLocation != nil {
			points = append(points, AudioPoint{
				ID:           fmt.Sprintf("route-%d-seg-%d-alight", route.ID, i),
				Location:     *td.ArrivalLocation,
				Title:        "Descenso: " + td.ArrivalStop,
				Description:  vehicle,
				RadiusMeters: radiusMeters,
				AudioText:    fmt.Sprintf("Próxima parada: %s. Prepárate para bajar.", td.ArrivalStop),
			})
		}
	}
	return points
}

func vehicleLabel(seg routing.Segment) string {
	switch seg.Type {
	case routing.TransportMetro:
		return "el Metro Línea " + string(seg.Transit.Line)
	case routing.TransportBus:
		return "el bus " + seg.Transit.Name
	default:
		return seg.Transit.Name
	}
}

// Tracker fires each audio point at most once as positions arrive.
// It is safe for concurrent use.
type Tracker struct {
	mu     sync.Mutex
	points []AudioPoint
}

// NewTracker tracks a copy of points. Points already marked as triggered never fire.
func NewTracker(points []AudioPoint) *Tracker {
	return &Tracker{points: append([]AudioPoint(nil), points...)}
}

// Check returns the points whose radius contains position and that had not
// triggered before, marking them triggered.
func (t *Tracker) Check(position routing.Coordinate) []AudioPoint {
	t.mu.Lock()
	defer t.mu.Unlock()

	here := polyline.Coordinate{Latitude: position.Latitude, Longitude: position.Longitude}

	var fired []AudioPoint
	for i := range t.points {
		p := &t.points[i]
		if p.Triggered {
			continue
		}
		at := polyline.Coordinate{Latitude: p.Location.Latitude, Longitude: p.Location.Longitude}
		if polyline.Distance(here, at) <= p.RadiusMeters {
			p.Triggered = true
			fired = append(fired, *p)
		}
	}
	return fired
}

// Points returns a snapshot of all tracked points with their trigger state.
func (t *Tracker) Points() []AudioPoint {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]AudioPoint(nil), t.points...)
}
