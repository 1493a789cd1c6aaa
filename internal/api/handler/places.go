package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/smartmobility/tripplanner/internal/api/models"
	"github.com/smartmobility/tripplanner/internal/api/response"
	"github.com/smartmobility/tripplanner/internal/geocoding"
	"github.com/smartmobility/tripplanner/internal/routing"
)

// Nearby search radius limits in meters.
const (
	DefaultNearbyRadius = 1000
	MaxNearbyRadius     = 50000
)

// PlaceSearcher looks up places by text and by proximity.
type PlaceSearcher interface {
	Geocode(ctx context.Context, query string) ([]geocoding.Place, error)
	NearbyPlaces(ctx context.Context, center routing.Coordinate, radiusMeters int, placeType string) ([]geocoding.Place, error)
}

// PlaceHandler handles geocoding and nearby place endpoints.
type PlaceHandler struct {
	places PlaceSearcher
}

// NewPlaceHandler creates a new PlaceHandler.
func NewPlaceHandler(places PlaceSearcher) *PlaceHandler {
	return &PlaceHandler{places: places}
}

// Geocode handles GET /v1/geocode?q=.
func (h *PlaceHandler) Geocode(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		response.BadRequest(w, r, "validation failed", []models.FieldError{
			{Field: "q", Message: "required", Code: "REQUIRED"},
		})
		return
	}

	places, err := h.places.Geocode(r.Context(), query)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePlaces(w, r, query, places)
}

// Nearby handles GET /v1/places/nearby?lat&lon&radius&type.
func (h *PlaceHandler) Nearby(w http.ResponseWriter, r *http.Request) {
	q := newQueryParams(r)
	center := q.point(true)
	radius := q.intValue("radius", DefaultNearbyRadius, 1, MaxNearbyRadius)
	placeType := q.stringValue("type")
	if len(q.errs) > 0 {
		response.BadRequest(w, r, "validation failed", q.errs)
		return
	}

	places, err := h.places.NearbyPlaces(r.Context(), *center, radius, placeType)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePlaces(w, r, "", places)
}

func writePlaces(w http.ResponseWriter, r *http.Request, query string, places []geocoding.Place) {
	if places == nil {
		places = []geocoding.Place{}
	}
	response.JSON(w, r, http.StatusOK, models.PlacesResponse{
		Query: query,
		Items: places,
		Meta:  models.ListMeta{Count: len(places)},
	})
}
