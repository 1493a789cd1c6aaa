// Package response writes JSON and problem+json bodies tagged with the
// request id.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/smartmobility/tripplanner/internal/api/middleware"
	"github.com/smartmobility/tripplanner/internal/api/models"
)

// JSON encodes data with the given status. A nil data writes headers only.
func JSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	write(w, r, status, "", data)
}

// Created writes a 201 with a Location header pointing at the new resource.
func Created(w http.ResponseWriter, r *http.Request, location string, data any) {
	write(w, r, http.StatusCreated, location, data)
}

func write(w http.ResponseWriter, r *http.Request, status int, location string, data any) {
	h := w.Header()
	if id := middleware.GetRequestID(r.Context()); id != "" {
		h.Set("X-Request-Id", id)
	}
	h.Set("Content-Type", "application/json")
	if location != "" {
		h.Set("Location", location)
	}
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// Error writes problem with Instance set to the request path.
func Error(w http.ResponseWriter, r *http.Request, problem *models.Problem) {
	problem.Instance = r.URL.Path
	problem.Write(w)
}

type problemFunc func(traceID, detail string) *models.Problem

func send(w http.ResponseWriter, r *http.Request, newProblem problemFunc, detail string) {
	Error(w, r, newProblem(middleware.GetRequestID(r.Context()), detail))
}

// BadRequest writes a 400 with optional per-field errors.
func BadRequest(w http.ResponseWriter, r *http.Request, detail string, errs []models.FieldError) {
	Error(w, r, models.NewBadRequest(middleware.GetRequestID(r.Context()), detail, errs))
}

func Unauthorized(w http.ResponseWriter, r *http.Request, detail string) {
	send(w, r, models.NewUnauthorized, detail)
}

func NotFound(w http.ResponseWriter, r *http.Request, detail string) {
	send(w, r, models.NewNotFound, detail)
}

// NoRoute writes the 404 for a trip with no transit itinerary.
func NoRoute(w http.ResponseWriter, r *http.Request, detail string) {
	send(w, r, models.NewNoRoute, detail)
}

func Conflict(w http.ResponseWriter, r *http.Request, detail string) {
	send(w, r, models.NewConflict, detail)
}

func InternalError(w http.ResponseWriter, r *http.Request, detail string) {
	send(w, r, models.NewInternalError, detail)
}

// BadGateway writes a 502 for a provider that refused or failed the request.
func BadGateway(w http.ResponseWriter, r *http.Request, detail string) {
	send(w, r, models.NewBadGateway, detail)
}

func ServiceUnavailable(w http.ResponseWriter, r *http.Request, detail string) {
	send(w, r, models.NewServiceUnavailable, detail)
}
