package routing

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// NavigationParams flattens a selected route into the string parameters the
// navigation screen is opened with. Segments travel as a JSON string and the
// fare is recomputed at selection time.
func NavigationParams(route Route) (map[string]string, error) {
	segments, err := json.Marshal(route.Segments)
	if err != nil {
		return nil, fmt.Errorf("encoding segments: %w", err)
	}

	return map[string]string{
		"routeId":       strconv.Itoa(route.ID),
		"duration":      route.Duration,
		"distance":      route.Distance,
		"fare":          ComputeFare(route.Segments, route.ProviderFare),
		"transfers":     strconv.Itoa(TransferCount(route.Segments)),
		"departureTime": route.DepartureTime,
		"arrivalTime":   route.ArrivalTime,
		"polyline":      route.Polyline,
		"segments":      string(segments),
	}, nil
}

// SegmentsFromParams decodes the "segments" navigation parameter.
func SegmentsFromParams(params map[string]string) ([]Segment, error) {
	raw, ok := params["segments"]
	if !ok || raw == "" {
		return nil, nil
	}
	var segments []Segment
	if err := json.Unmarshal([]byte(raw), &segments); err != nil {
		return nil, fmt.Errorf("decoding segments: %w", err)
	}
	return segments, nil
}
