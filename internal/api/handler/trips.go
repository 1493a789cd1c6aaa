package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/smartmobility/tripplanner/internal/accessibility"
	"github.com/smartmobility/tripplanner/internal/api/models"
	"github.com/smartmobility/tripplanner/internal/api/response"
	"github.com/smartmobility/tripplanner/internal/geocoding"
	"github.com/smartmobility/tripplanner/internal/routing"
)

// TripPlanner plans transit trips between two points.
type TripPlanner interface {
	PlanTrip(ctx context.Context, req routing.DirectionsRequest) (*routing.TripPlan, error)
}

// PlaceResolver turns a free-text destination into a place.
type PlaceResolver interface {
	Resolve(ctx context.Context, query string) (geocoding.Place, error)
}

// TripHandler handles trip planning endpoints.
type TripHandler struct {
	planner  TripPlanner
	resolver PlaceResolver
}

// NewTripHandler creates a new TripHandler. resolver may be nil, in which
// case destinationQuery is rejected.
func NewTripHandler(planner TripPlanner, resolver PlaceResolver) *TripHandler {
	return &TripHandler{planner: planner, resolver: resolver}
}

// PlanTrip handles POST /v1/trips:plan.
func (h *TripHandler) PlanTrip(w http.ResponseWriter, r *http.Request) {
	var req models.PlanTripRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		response.BadRequest(w, r, "validation failed", errs)
		return
	}

	ctx := r.Context()
	destination := req.Destination
	var destinationName string
	if query := strings.TrimSpace(req.DestinationQuery); query != "" {
		if h.resolver == nil {
			response.ServiceUnavailable(w, r, "destination search is not configured")
			return
		}
		place, err := h.resolver.Resolve(ctx, query)
		if err != nil {
			writeError(w, r, err)
			return
		}
		destination = &place.Location
		destinationName = place.Name
	}

	var departure time.Time
	if req.DepartureTime != nil {
		departure = req.DepartureTime.Time()
	}

	plan, err := h.planner.PlanTrip(ctx, routing.DirectionsRequest{
		Origin:        *req.Origin,
		Destination:   *destination,
		DepartureTime: departure,
		Language:      req.Language,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.PlanTripResponse{
		Origin:          *req.Origin,
		Destination:     *destination,
		DestinationName: destinationName,
		Routes:          plan.Routes,
		Provider:        plan.Provider,
		GeneratedAt:     models.Timestamp(plan.FetchedAt),
	})
}

// Navigate handles POST /v1/trips:navigate. It serializes the selected
// route into navigation parameters and lists its audio cues.
func (h *TripHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	var req models.NavigateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Route == nil {
		response.BadRequest(w, r, "validation failed", []models.FieldError{
			{Field: "route", Message: "required", Code: "REQUIRED"},
		})
		return
	}
	if req.AudioRadiusMeters < 0 {
		response.BadRequest(w, r, "validation failed", []models.FieldError{
			{Field: "audioRadiusMeters", Message: "must not be negative", Code: "OUT_OF_RANGE"},
		})
		return
	}

	params, err := routing.NavigationParams(*req.Route)
	if err != nil {
		writeError(w, r, err)
		return
	}

	radius := req.AudioRadiusMeters
	if radius == 0 {
		radius = accessibility.DefaultRadiusMeters
	}
	points := accessibility.PointsForRoute(req.Route, radius)
	if points == nil {
		points = []accessibility.AudioPoint{}
	}

	response.JSON(w, r, http.StatusOK, models.NavigateResponse{
		Params:      params,
		AudioPoints: points,
	})
}

// AudioCheck handles POST /v1/trips:audio-check. The rider's client sends
// its position with the navigation parameters and the IDs already spoken;
// the response names the cues to speak now.
func (h *TripHandler) AudioCheck(w http.ResponseWriter, r *http.Request) {
	var req models.AudioCheckRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		response.BadRequest(w, r, "validation failed", errs)
		return
	}

	segments, err := routing.SegmentsFromParams(req.Params)
	if err != nil {
		response.BadRequest(w, r, "validation failed", []models.FieldError{
			{Field: "params.segments", Message: "must be a JSON segment list", Code: "INVALID"},
		})
		return
	}
	route := routing.Route{Segments: segments}
	if id := req.Params["routeId"]; id != "" {
		if route.ID, err = strconv.Atoi(id); err != nil {
			response.BadRequest(w, r, "validation failed", []models.FieldError{
				{Field: "params.routeId", Message: "must be an integer", Code: "INVALID"},
			})
			return
		}
	}

	radius := req.AudioRadiusMeters
	if radius == 0 {
		radius = accessibility.DefaultRadiusMeters
	}
	points := accessibility.PointsForRoute(&route, radius)
	spoken := make(map[string]bool, len(req.Triggered))
	for _, id := range req.Triggered {
		spoken[id] = true
	}
	for i := range points {
		points[i].Triggered = spoken[points[i].ID]
	}

	tracker := accessibility.NewTracker(points)
	resp := models.AudioCheckResponse{
		Fired:     tracker.Check(*req.Position),
		Triggered: []string{},
	}
	if resp.Fired == nil {
		resp.Fired = []accessibility.AudioPoint{}
	}
	for _, p := range tracker.Points() {
		if p.Triggered {
			resp.Triggered = append(resp.Triggered, p.ID)
		}
	}

	response.JSON(w, r, http.StatusOK, resp)
}
