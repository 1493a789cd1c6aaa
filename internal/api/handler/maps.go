package handler

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/smartmobility/tripplanner/internal/accessibility"
	"github.com/smartmobility/tripplanner/internal/api/models"
	"github.com/smartmobility/tripplanner/internal/api/response"
	"github.com/smartmobility/tripplanner/internal/geocoding"
	"github.com/smartmobility/tripplanner/internal/mapview"
	"github.com/smartmobility/tripplanner/internal/report"
	"github.com/smartmobility/tripplanner/internal/routing"
)

// Radius in meters around the destination for place and report overlays.
const mapOverlayRadius = 1000

// NearbySearcher finds places around a point.
type NearbySearcher interface {
	NearbyPlaces(ctx context.Context, center routing.Coordinate, radiusMeters int, placeType string) ([]geocoding.Place, error)
}

// ReportLister lists reports.
type ReportLister interface {
	List(ctx context.Context, q report.Query) ([]*report.Report, error)
}

// MapHandler builds map layers for a trip.
type MapHandler struct {
	places  NearbySearcher
	reports ReportLister
}

// NewMapHandler creates a new MapHandler. Either dependency may be nil, which
// disables that overlay.
func NewMapHandler(places NearbySearcher, reports ReportLister) *MapHandler {
	return &MapHandler{places: places, reports: reports}
}

// Layers handles POST /v1/map/layers. Overlay lookups are best effort: a
// failed place or report lookup leaves that overlay empty.
func (h *MapHandler) Layers(w http.ResponseWriter, r *http.Request) {
	var req models.MapLayersRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		response.BadRequest(w, r, "validation failed", errs)
		return
	}

	ctx := r.Context()
	log := zerolog.Ctx(ctx)
	in := mapview.Input{
		Origin:           *req.Origin,
		Destination:      *req.Destination,
		Route:            req.Route,
		OverviewPolyline: req.OverviewPolyline,
	}

	if req.PlaceType != "" && h.places != nil {
		places, err := h.places.NearbyPlaces(ctx, *req.Destination, mapOverlayRadius, req.PlaceType)
		if err != nil {
			log.Warn().Err(err).Str("place_type", req.PlaceType).Msg("nearby places overlay skipped")
		}
		in.Places = places
	}

	if req.IncludeReports && h.reports != nil {
		reports, err := h.reports.List(ctx, report.Query{
			Center:       req.Destination,
			RadiusMeters: mapOverlayRadius,
		})
		if err != nil {
			log.Warn().Err(err).Msg("reports overlay skipped")
		}
		in.Reports = reports
	}

	if req.IncludeAudio && req.Route != nil {
		in.AudioPoints = accessibility.PointsForRoute(req.Route, accessibility.DefaultRadiusMeters)
	}

	response.JSON(w, r, http.StatusOK, mapview.Build(in))
}
