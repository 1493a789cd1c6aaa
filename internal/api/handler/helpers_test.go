package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/smartmobility/tripplanner/internal/api/middleware"
	"github.com/smartmobility/tripplanner/internal/api/models"
	"github.com/smartmobility/tripplanner/internal/auth"
	"github.com/smartmobility/tripplanner/internal/geocoding"
	"github.com/smartmobility/tripplanner/internal/routing"
)

var (
	sanAntonio   = routing.Coordinate{Latitude: 6.2476, Longitude: -75.5695}
	parqueLleras = routing.Coordinate{Latitude: 6.2087, Longitude: -75.5671}
)

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func asUser(req *http.Request, userID string) *http.Request {
	ctx := middleware.WithPrincipal(req.Context(), auth.Principal{UserID: userID, Name: "Ana"})
	return req.WithContext(ctx)
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) models.Problem {
	t.Helper()
	var p models.Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	return p
}

type fakePlaces struct {
	places    []geocoding.Place
	err       error
	lastQuery string
	lastType  string
	lastRad   int
}

func (f *fakePlaces) Geocode(_ context.Context, query string) ([]geocoding.Place, error) {
	f.lastQuery = query
	return f.places, f.err
}

func (f *fakePlaces) Resolve(_ context.Context, query string) (geocoding.Place, error) {
	f.lastQuery = query
	if f.err != nil {
		return geocoding.Place{}, f.err
	}
	if len(f.places) == 0 {
		return geocoding.Place{}, geocoding.ErrNotFound
	}
	return f.places[0], nil
}

func (f *fakePlaces) NearbyPlaces(_ context.Context, _ routing.Coordinate, radius int, placeType string) ([]geocoding.Place, error) {
	f.lastRad = radius
	f.lastType = placeType
	return f.places, f.err
}

type fakePlanner struct {
	plan *routing.TripPlan
	err  error
	got  routing.DirectionsRequest
}

func (f *fakePlanner) PlanTrip(_ context.Context, req routing.DirectionsRequest) (*routing.TripPlan, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return f.plan, nil
}

// metroRoute is a walk to San Antonio, Line A to Poblado and a walk out.
func metroRoute() routing.Route {
	return routing.Route{
		ID:       0,
		Duration: "25 mins",
		Distance: "6.1 km",
		Polyline: "_p~iF~ps|U_ulLnnqC_mqNvxq`@",
		Segments: []routing.Segment{
			{
				Type:     routing.TransportWalking,
				Duration: "4 mins",
				Walking:  &routing.WalkingDetails{Distance: "300 m", ToBusStop: "San Antonio", IsFirst: true},
			},
			{
				Type:     routing.TransportMetro,
				Duration: "12 mins",
				Polyline: "_p~iF~ps|U_ulLnnqC",
				Transit: &routing.TransitDetails{
					Name:              "Metro Línea A",
					Line:              "A",
					VehicleType:       "subway",
					DepartureStop:     "San Antonio",
					ArrivalStop:       "Poblado",
					DepartureTime:     "8:05 AM",
					NumStops:          4,
					DepartureLocation: &sanAntonio,
					ArrivalLocation:   &routing.Coordinate{Latitude: 6.2125, Longitude: -75.5780},
				},
			},
			{
				Type:     routing.TransportWalking,
				Duration: "9 mins",
				Walking:  &routing.WalkingDetails{Distance: "700 m", IsLast: true},
			},
		},
	}
}
