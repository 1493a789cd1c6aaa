package handler

import (
	"net/http"
	"strconv"

	"github.com/smartmobility/tripplanner/internal/api/models"
	"github.com/smartmobility/tripplanner/internal/routing"
)

// queryParams collects field errors while reading URL query parameters.
type queryParams struct {
	r    *http.Request
	errs []models.FieldError
}

func newQueryParams(r *http.Request) *queryParams {
	return &queryParams{r: r}
}

func (q *queryParams) floatValue(name string) (float64, bool) {
	raw := q.r.URL.Query().Get(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		q.errs = append(q.errs, models.FieldError{Field: name, Message: "must be a number", Code: "INVALID"})
		return 0, false
	}
	return v, true
}

func (q *queryParams) intValue(name string, fallback, lo, hi int) int {
	raw := q.r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < lo || v > hi {
		q.errs = append(q.errs, models.FieldError{
			Field:   name,
			Message: "must be an integer between " + strconv.Itoa(lo) + " and " + strconv.Itoa(hi),
			Code:    "OUT_OF_RANGE",
		})
		return fallback
	}
	return v
}

// point reads lat and lon. Both or neither must be present.
func (q *queryParams) point(required bool) *routing.Coordinate {
	lat, hasLat := q.floatValue("lat")
	lon, hasLon := q.floatValue("lon")
	if !hasLat && !hasLon {
		if required {
			q.errs = append(q.errs,
				models.FieldError{Field: "lat", Message: "required", Code: "REQUIRED"},
				models.FieldError{Field: "lon", Message: "required", Code: "REQUIRED"},
			)
		}
		return nil
	}
	if hasLat != hasLon {
		q.errs = append(q.errs, models.FieldError{Field: "lat", Message: "lat and lon must be given together", Code: "REQUIRED"})
		return nil
	}
	c := routing.Coordinate{Latitude: lat, Longitude: lon}
	if routing.ValidateCoordinate(c) != nil {
		q.errs = append(q.errs, models.FieldError{Field: "lat", Message: "must be a valid coordinate", Code: "OUT_OF_RANGE"})
		return nil
	}
	return &c
}

func (q *queryParams) stringValue(name string) string {
	return q.r.URL.Query().Get(name)
}
