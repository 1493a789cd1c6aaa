// Package report manages citizen reports about accessibility, safety and
// infrastructure problems along transit routes.
package report

import (
	"errors"
	"strings"
	"time"

	"github.com/smartmobility/tripplanner/internal/routing"
)

// Repository and service errors.
var (
	ErrReportNotFound    = errors.New("report not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Category classifies what a report is about.
type Category string

// Report categories.
const (
	CategoryAccessibility  Category = "accessibility"
	CategorySafety         Category = "safety"
	CategoryInfrastructure Category = "infrastructure"
	CategoryTransport      Category = "transport"
	CategoryOther          Category = "other"
)

// Categories lists every valid category.
var Categories = []Category{
	CategoryAccessibility,
	CategorySafety,
	CategoryInfrastructure,
	CategoryTransport,
	CategoryOther,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Status is the lifecycle state of a report.
type Status string

// Report statuses.
const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusResolved:
		return true
	}
	return false
}

// CanTransitionTo reports whether a report may move from s to next.
// Reports only move forward; resolved is terminal.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusInProgress || next == StatusResolved
	case StatusInProgress:
		return next == StatusResolved
	default:
		return false
	}
}

// Report is a user-submitted issue pinned to a location.
type Report struct {
	ID          string             `json:"id"`
	Location    routing.Coordinate `json:"location"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Category    Category           `json:"category"`
	ImageURI    string             `json:"imageUri,omitempty"`
	UserID      string             `json:"userId"`
	UserName    string             `json:"userName,omitempty"`
	Status      Status             `json:"status"`
	CreatedAt   time.Time          `json:"timestamp"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// CreateInput is the user-provided part of a new report.
type CreateInput struct {
	Location    routing.Coordinate `json:"location"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Category    Category           `json:"category"`
	ImageURI    string             `json:"imageUri,omitempty"`
}

// Field limits for CreateInput.
const (
	MaxTitleLength       = 120
	MaxDescriptionLength = 1000
)

// FieldViolation describes one invalid input field.
type FieldViolation struct {
	Field   string
	Message string
}

// ValidationError is returned when CreateInput or a status update is invalid.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Message)
	}
	return "invalid report: " + strings.Join(parts, "; ")
}

// Validate checks the input and returns a *ValidationError listing every problem.
func (in *CreateInput) Validate() error {
	var violations []FieldViolation

	if err := routing.ValidateCoordinate(in.Location); err != nil {
		violations = append(violations, FieldViolation{Field: "location", Message: "must be a valid coordinate"})
	}

	title := strings.TrimSpace(in.Title)
	switch {
	case title == "":
		violations = append(violations, FieldViolation{Field: "title", Message: "is required"})
	case len([]rune(title)) > MaxTitleLength:
		violations = append(violations, FieldViolation{Field: "title", Message: "is too long"})
	}

	if len([]rune(in.Description)) > MaxDescriptionLength {
		violations = append(violations, FieldViolation{Field: "description", Message: "is too long"})
	}

	if !in.Category.Valid() {
		violations = append(violations, FieldViolation{Field: "category", Message: "must be one of accessibility, safety, infrastructure, transport, other"})
	}

	if in.ImageURI != "" && !strings.HasPrefix(in.ImageURI, "https://") && !strings.HasPrefix(in.ImageURI, "http://") {
		violations = append(violations, FieldViolation{Field: "imageUri", Message: "must be an http(s) URL"})
	}

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

// StatusChange is the payload of a report.status_changed event.
type StatusChange struct {
	ReportID string `json:"reportId"`
	From     Status `json:"from"`
	To       Status `json:"to"`
}
