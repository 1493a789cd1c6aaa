package response_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/smartmobility/tripplanner/internal/api/middleware"
	"github.com/smartmobility/tripplanner/internal/api/models"
	"github.com/smartmobility/tripplanner/internal/api/response"
)

// withRequestID returns req as seen by a handler behind the RequestID middleware.
func withRequestID(t *testing.T, req *http.Request) *http.Request {
	t.Helper()
	var seen *http.Request
	middleware.RequestID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = r
	})).ServeHTTP(httptest.NewRecorder(), req)
	return seen
}

func TestJSON(t *testing.T) {
	req := withRequestID(t, httptest.NewRequest(http.MethodGet, "/v1/geocode?q=lleras", http.NoBody))
	rec := httptest.NewRecorder()

	response.JSON(rec, req, http.StatusOK, map[string]string{"name": "Parque Lleras"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("expected application/json, got %q", got)
	}
	if got := rec.Header().Get("X-Request-Id"); got != middleware.GetRequestID(req.Context()) || got == "" {
		t.Errorf("expected X-Request-Id to echo the context id, got %q", got)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body["name"] != "Parque Lleras" {
		t.Errorf("unexpected body %v", body)
	}
}

func TestJSON_NoRequestIDOrData(t *testing.T) {
	rec := httptest.NewRecorder()

	response.JSON(rec, httptest.NewRequest(http.MethodGet, "/", http.NoBody), http.StatusOK, nil)

	if got := rec.Header().Get("X-Request-Id"); got != "" {
		t.Errorf("expected no X-Request-Id without middleware, got %q", got)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", rec.Body.String())
	}
}

func TestCreated(t *testing.T) {
	req := withRequestID(t, httptest.NewRequest(http.MethodPost, "/v1/reports", http.NoBody))
	rec := httptest.NewRecorder()

	response.Created(rec, req, "/v1/reports/rep_1", map[string]string{"id": "rep_1"})

	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/v1/reports/rep_1" {
		t.Errorf("expected Location /v1/reports/rep_1, got %q", got)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Error("expected X-Request-Id")
	}
}

func TestProblemWriters(t *testing.T) {
	tests := []struct {
		name   string
		write  func(http.ResponseWriter, *http.Request)
		status int
		typ    string
	}{
		{"bad request", func(w http.ResponseWriter, r *http.Request) {
			response.BadRequest(w, r, "invalid coordinates", []models.FieldError{{Field: "origin.latitude", Message: "out of range"}})
		}, http.StatusBadRequest, models.ProblemTypeValidation},
		{"unauthorized", func(w http.ResponseWriter, r *http.Request) {
			response.Unauthorized(w, r, "missing token")
		}, http.StatusUnauthorized, models.ProblemTypeUnauthorized},
		{"not found", func(w http.ResponseWriter, r *http.Request) {
			response.NotFound(w, r, "report not found")
		}, http.StatusNotFound, models.ProblemTypeNotFound},
		{"no route", func(w http.ResponseWriter, r *http.Request) {
			response.NoRoute(w, r, "no transit route between these points")
		}, http.StatusNotFound, models.ProblemTypeNoRoute},
		{"conflict", func(w http.ResponseWriter, r *http.Request) {
			response.Conflict(w, r, "report is already resolved")
		}, http.StatusConflict, models.ProblemTypeConflict},
		{"internal", func(w http.ResponseWriter, r *http.Request) {
			response.InternalError(w, r, "an unexpected error occurred")
		}, http.StatusInternalServerError, models.ProblemTypeInternal},
		{"bad gateway", func(w http.ResponseWriter, r *http.Request) {
			response.BadGateway(w, r, "directions request denied")
		}, http.StatusBadGateway, models.ProblemTypeUpstream},
		{"unavailable", func(w http.ResponseWriter, r *http.Request) {
			response.ServiceUnavailable(w, r, "directions provider unavailable")
		}, http.StatusServiceUnavailable, models.ProblemTypeUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := withRequestID(t, httptest.NewRequest(http.MethodPost, "/v1/trips:plan", http.NoBody))
			rec := httptest.NewRecorder()

			tt.write(rec, req)

			if rec.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, rec.Code)
			}
			if got := rec.Header().Get("Content-Type"); got != "application/problem+json" {
				t.Errorf("expected application/problem+json, got %q", got)
			}

			var p models.Problem
			if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
				t.Fatalf("decoding problem: %v", err)
			}
			if p.Type != tt.typ {
				t.Errorf("expected type %s, got %s", tt.typ, p.Type)
			}
			if p.Instance != "/v1/trips:plan" {
				t.Errorf("expected instance to be the request path, got %q", p.Instance)
			}
			if p.TraceID == "" || p.TraceID != rec.Header().Get("X-Request-Id") {
				t.Errorf("expected traceId %q to match X-Request-Id %q", p.TraceID, rec.Header().Get("X-Request-Id"))
			}
			if p.Detail == "" {
				t.Error("expected detail")
			}
		})
	}
}

func TestBadRequest_FieldErrors(t *testing.T) {
	req := withRequestID(t, httptest.NewRequest(http.MethodPost, "/v1/reports", http.NoBody))
	rec := httptest.NewRecorder()

	response.BadRequest(rec, req, "invalid report", []models.FieldError{
		{Field: "category", Message: "unknown category", Code: "INVALID"},
	})

	var p models.Problem
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("decoding problem: %v", err)
	}
	if len(p.Errors) != 1 || p.Errors[0].Field != "category" || p.Errors[0].Code != "INVALID" {
		t.Errorf("unexpected field errors %+v", p.Errors)
	}
}
