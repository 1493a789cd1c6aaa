package models

import (
	"encoding/json"
	"net/http"
)

// Problem is an RFC 7807 error body, served as application/problem+json.
type Problem struct {
	Type     string       `json:"type"`
	Title    string       `json:"title"`
	Status   int          `json:"status"`
	Detail   string       `json:"detail,omitempty"`
	Instance string       `json:"instance,omitempty"`
	TraceID  string       `json:"traceId"`
	Errors   []FieldError `json:"errors,omitempty"`
}

// FieldError points a validation failure at one request field.
// Field uses dotted JSON paths such as "origin.latitude".
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

const problemBase = "https://api.smartmobility.co/problems/"

// Problem type URIs.
const (
	ProblemTypeValidation      = problemBase + "validation-error"
	ProblemTypeUnauthorized    = problemBase + "unauthorized"
	ProblemTypeNotFound        = problemBase + "not-found"
	ProblemTypeNoRoute         = problemBase + "no-route"
	ProblemTypeConflict        = problemBase + "conflict"
	ProblemTypeUnsupportedType = problemBase + "unsupported-media-type"
	ProblemTypeTLSRequired     = problemBase + "tls-required"
	ProblemTypeTooManyRequests = problemBase + "too-many-requests"
	ProblemTypeInternal        = problemBase + "internal-error"
	ProblemTypeUpstream        = problemBase + "upstream-error"
	ProblemTypeUnavailable     = problemBase + "service-unavailable"
)

type problemKind struct {
	typ    string
	title  string
	status int
}

var (
	kindValidation   = problemKind{ProblemTypeValidation, "Validation error", http.StatusBadRequest}
	kindUnauthorized = problemKind{ProblemTypeUnauthorized, "Unauthorized", http.StatusUnauthorized}
	kindNotFound     = problemKind{ProblemTypeNotFound, "Not found", http.StatusNotFound}
	kindNoRoute      = problemKind{ProblemTypeNoRoute, "No route found", http.StatusNotFound}
	kindConflict     = problemKind{ProblemTypeConflict, "Conflict", http.StatusConflict}
	kindMediaType    = problemKind{ProblemTypeUnsupportedType, "Unsupported media type", http.StatusUnsupportedMediaType}
	kindRateLimited  = problemKind{ProblemTypeTooManyRequests, "Too many requests", http.StatusTooManyRequests}
	kindInternal     = problemKind{ProblemTypeInternal, "Internal server error", http.StatusInternalServerError}
	kindUpstream     = problemKind{ProblemTypeUpstream, "Upstream provider error", http.StatusBadGateway}
	kindUnavailable  = problemKind{ProblemTypeUnavailable, "Service unavailable", http.StatusServiceUnavailable}
)

func (k problemKind) new(traceID, detail string) *Problem {
	return &Problem{Type: k.typ, Title: k.title, Status: k.status, Detail: detail, TraceID: traceID}
}

// NewProblem builds a Problem of an arbitrary type.
func NewProblem(problemType, title string, status int, traceID string) *Problem {
	return problemKind{problemType, title, status}.new(traceID, "")
}

// WithDetail sets Detail and returns p.
func (p *Problem) WithDetail(detail string) *Problem {
	p.Detail = detail
	return p
}

// WithInstance sets Instance and returns p.
func (p *Problem) WithInstance(instance string) *Problem {
	p.Instance = instance
	return p
}

// WithErrors sets the field errors and returns p.
func (p *Problem) WithErrors(errs []FieldError) *Problem {
	p.Errors = errs
	return p
}

// Write serializes p with its status code. The trace id is echoed in
// X-Request-Id so clients can quote it.
func (p *Problem) Write(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Content-Type", "application/problem+json")
	h.Set("X-Request-Id", p.TraceID)
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// NewBadRequest is a 400 validation problem carrying per-field errors.
func NewBadRequest(traceID, detail string, errs []FieldError) *Problem {
	return kindValidation.new(traceID, detail).WithErrors(errs)
}

func NewUnauthorized(traceID, detail string) *Problem { return kindUnauthorized.new(traceID, detail) }

func NewNotFound(traceID, detail string) *Problem { return kindNotFound.new(traceID, detail) }

// NewNoRoute is the 404 returned when the provider has no transit itinerary.
func NewNoRoute(traceID, detail string) *Problem { return kindNoRoute.new(traceID, detail) }

func NewConflict(traceID, detail string) *Problem { return kindConflict.new(traceID, detail) }

func NewUnsupportedMediaType(traceID, detail string) *Problem {
	return kindMediaType.new(traceID, detail)
}

func NewTooManyRequests(traceID, detail string) *Problem { return kindRateLimited.new(traceID, detail) }

func NewInternalError(traceID, detail string) *Problem { return kindInternal.new(traceID, detail) }

// NewBadGateway is the 502 used when Google refuses or fails a request.
func NewBadGateway(traceID, detail string) *Problem { return kindUpstream.new(traceID, detail) }

func NewServiceUnavailable(traceID, detail string) *Problem { return kindUnavailable.new(traceID, detail) }
