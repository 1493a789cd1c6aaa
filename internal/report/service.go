package report

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/smartmobility/tripplanner/internal/events"
	"github.com/smartmobility/tripplanner/internal/routing"
	"github.com/smartmobility/tripplanner/pkg/polyline"
)

const (
	// DefaultListLimit caps listings that do not set a limit.
	DefaultListLimit = 50
	// MaxListLimit is the largest accepted limit.
	MaxListLimit = 200

	metersPerDegreeLat = 111320.0
)

// ServiceConfig holds configuration for the report service.
type ServiceConfig struct {
	Repository Repository
	Events     events.Publisher // optional
	Logger     zerolog.Logger
	// Now overrides the clock in tests.
	Now func() time.Time
}

// Service provides report operations.
type Service struct {
	repo   Repository
	events events.Publisher
	logger zerolog.Logger
	now    func() time.Time
}

// NewService creates a new report service.
func NewService(cfg ServiceConfig) *Service {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo:   cfg.Repository,
		events: cfg.Events,
		logger: cfg.Logger,
		now:    now,
	}
}

// Author identifies who files a report.
type Author struct {
	UserID   string
	UserName string
}

// Create validates input and stores a new pending report.
func (s *Service) Create(ctx context.Context, author Author, input CreateInput) (*Report, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	report := &Report{
		ID:          "rpt_" + uuid.New().String()[:22],
		Location:    input.Location,
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Category:    input.Category,
		ImageURI:    input.ImageURI,
		UserID:      author.UserID,
		UserName:    author.UserName,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("storing report: %w", err)
	}

	s.logger.Info().
		Str("report_id", report.ID).
		Str("category", string(report.Category)).
		Str("user_id", report.UserID).
		Msg("report created")

	s.publish(ctx, events.ReportCreated, *report)
	return report, nil
}

// Get returns a report by ID.
func (s *Service) Get(ctx context.Context, id string) (*Report, error) {
	return s.repo.Get(ctx, id)
}

// Query selects reports for listing.
type Query struct {
	// Center and RadiusMeters restrict results to a circle. Both must be set.
	Center       *routing.Coordinate
	RadiusMeters float64
	Status       Status
	Category     Category
	Limit        int
}

// List returns reports matching q. With a center, results are ordered by
// distance; otherwise newest first.
func (s *Service) List(ctx context.Context, q Query) ([]*Report, error) {
	var violations []FieldViolation
	if q.Status != "" && !q.Status.Valid() {
		violations = append(violations, FieldViolation{Field: "status", Message: "unknown status"})
	}
	if q.Category != "" && !q.Category.Valid() {
		violations = append(violations, FieldViolation{Field: "category", Message: "unknown category"})
	}
	if q.Center != nil {
		if err := routing.ValidateCoordinate(*q.Center); err != nil {
			violations = append(violations, FieldViolation{Field: "center", Message: "must be a valid coordinate"})
		}
		if q.RadiusMeters <= 0 {
			violations = append(violations, FieldViolation{Field: "radius", Message: "must be positive"})
		}
	}
	if len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	limit = min(limit, MaxListLimit)

	filter := ListFilter{Status: q.Status, Category: q.Category}
	if q.Center != nil {
		bounds := boundsAround(*q.Center, q.RadiusMeters)
		filter.Bounds = &bounds
	}

	reports, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}

	if q.Center != nil {
		center := polyline.Coordinate{Latitude: q.Center.Latitude, Longitude: q.Center.Longitude}
		distances := make(map[string]float64, len(reports))
		nearby := reports[:0]
		for _, r := range reports {
			d := polyline.Distance(center, polyline.Coordinate{Latitude: r.Location.Latitude, Longitude: r.Location.Longitude})
			if d <= q.RadiusMeters {
				distances[r.ID] = d
				nearby = append(nearby, r)
			}
		}
		reports = nearby
		sort.SliceStable(reports, func(i, j int) bool {
			return distances[reports[i].ID] < distances[reports[j].ID]
		})
	}

	if len(reports) > limit {
		reports = reports[:limit]
	}
	return reports, nil
}

// UpdateStatus moves a report to status. Only forward transitions are allowed.
func (s *Service) UpdateStatus(ctx context.Context, id string, status Status) (*Report, error) {
	if !status.Valid() {
		return nil, &ValidationError{Violations: []FieldViolation{{Field: "status", Message: "unknown status"}}}
	}

	report, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !report.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, report.Status, status)
	}

	now := s.now().UTC()
	if err := s.repo.UpdateStatus(ctx, id, status, now); err != nil {
		return nil, fmt.Errorf("updating report status: %w", err)
	}

	change := StatusChange{ReportID: id, From: report.Status, To: status}
	report.Status = status
	report.UpdatedAt = now

	s.logger.Info().
		Str("report_id", id).
		Str("from", string(change.From)).
		Str("to", string(change.To)).
		Msg("report status changed")

	s.publish(ctx, events.ReportStatusChanged, change)
	return report, nil
}

func (s *Service) publish(ctx context.Context, eventType events.Type, payload any) {
	if s.events != nil {
		s.events.Publish(ctx, eventType, payload)
	}
}

// boundsAround returns a box that contains the circle of radius meters around center.
func boundsAround(center routing.Coordinate, radius float64) polyline.Bounds {
	dLat := radius / metersPerDegreeLat
	cosLat := math.Cos(center.Latitude * math.Pi / 180)
	dLng := 180.0
	if cosLat > 1e-9 {
		dLng = math.Min(radius/(metersPerDegreeLat*cosLat), 180)
	}
	return polyline.Bounds{
		North: center.Latitude + dLat,
		South: center.Latitude - dLat,
		East:  center.Longitude + dLng,
		West:  center.Longitude - dLng,
	}
}
