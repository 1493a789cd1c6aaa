package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/smartmobility/tripplanner/internal/api/models"
	"github.com/smartmobility/tripplanner/internal/api/response"
	"github.com/smartmobility/tripplanner/internal/destination"
	"github.com/smartmobility/tripplanner/internal/geocoding"
	"github.com/smartmobility/tripplanner/internal/report"
	"github.com/smartmobility/tripplanner/internal/routing"
)

// maxBodyBytes caps request bodies. A route with long polylines fits well
// inside it.
const maxBodyBytes = 1 << 20

// decodeJSON reads the request body into dst and writes a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return false
	}
	return true
}

// writeError maps service errors to Problem responses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var validation *report.ValidationError
	var upstream *routing.Error

	switch {
	case errors.As(err, &validation):
		fields := make([]models.FieldError, 0, len(validation.Violations))
		for _, v := range validation.Violations {
			fields = append(fields, models.FieldError{Field: v.Field, Message: v.Message, Code: "INVALID"})
		}
		response.BadRequest(w, r, "validation failed", fields)

	case errors.Is(err, routing.ErrInvalidCoordinates):
		response.BadRequest(w, r, err.Error(), nil)
	case errors.Is(err, geocoding.ErrInvalidQuery):
		response.BadRequest(w, r, err.Error(), []models.FieldError{{Field: "q", Message: "must not be empty", Code: "REQUIRED"}})
	case errors.Is(err, destination.ErrNameRequired):
		response.BadRequest(w, r, "validation failed", []models.FieldError{{Field: "name", Message: "required", Code: "REQUIRED"}})
	case errors.Is(err, destination.ErrInvalidLocation):
		response.BadRequest(w, r, "validation failed", []models.FieldError{{Field: "coordinates", Message: "must be a valid coordinate", Code: "OUT_OF_RANGE"}})

	case errors.Is(err, routing.ErrNoRouteFound):
		response.NoRoute(w, r, "no transit route connects the given points")
	case errors.Is(err, geocoding.ErrNotFound):
		response.NotFound(w, r, "no place matches the query")
	case errors.Is(err, report.ErrReportNotFound):
		response.NotFound(w, r, "report not found")
	case errors.Is(err, report.ErrInvalidTransition):
		response.Conflict(w, r, err.Error())

	case errors.Is(err, routing.ErrRequestDenied):
		logError(r, err)
		response.BadGateway(w, r, "the directions provider rejected the request")
	case errors.Is(err, routing.ErrProviderUnavailable),
		errors.Is(err, routing.ErrRateLimitExceeded),
		errors.Is(err, geocoding.ErrProviderUnavailable),
		errors.Is(err, context.DeadlineExceeded):
		logError(r, err)
		response.ServiceUnavailable(w, r, "an upstream provider is temporarily unavailable")
	case errors.As(err, &upstream):
		logError(r, err)
		response.BadGateway(w, r, "the directions provider returned an error")

	default:
		logError(r, err)
		response.InternalError(w, r, "an unexpected error occurred")
	}
}

func logError(r *http.Request, err error) {
	zerolog.Ctx(r.Context()).Error().Err(err).Msg("request failed")
}
