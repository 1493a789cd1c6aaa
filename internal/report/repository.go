package report

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/smartmobility/tripplanner/pkg/polyline"
)

// ListFilter narrows a repository listing. Zero fields do not filter.
type ListFilter struct {
	Bounds   *polyline.Bounds
	Status   Status
	Category Category
}

// Repository stores reports.
type Repository interface {
	Create(ctx context.Context, report *Report) error
	Get(ctx context.Context, id string) (*Report, error)
	// List returns matching reports, newest first.
	List(ctx context.Context, filter ListFilter) ([]*Report, error)
	UpdateStatus(ctx context.Context, id string, status Status, updatedAt time.Time) error
}

// InMemoryRepository is an in-memory implementation of Repository for tests
// and local development.
type InMemoryRepository struct {
	mu      sync.RWMutex
	reports map[string]*Report
}

// NewInMemoryRepository creates an empty repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{reports: make(map[string]*Report)}
}

// Create stores a copy of report.
func (r *InMemoryRepository) Create(_ context.Context, report *Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	reportCopy := *report
	r.reports[report.ID] = &reportCopy
	return nil
}

// Get returns a copy of the report with id.
func (r *InMemoryRepository) Get(_ context.Context, id string) (*Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	report, ok := r.reports[id]
	if !ok {
		return nil, ErrReportNotFound
	}
	reportCopy := *report
	return &reportCopy, nil
}

// List returns copies of the matching reports, newest first.
func (r *InMemoryRepository) List(_ context.Context, filter ListFilter) ([]*Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Report, 0, len(r.reports))
	for _, report := range r.reports {
		if !filter.matches(report) {
			continue
		}
		reportCopy := *report
		out = append(out, &reportCopy)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// UpdateStatus sets the status of the report with id.
func (r *InMemoryRepository) UpdateStatus(_ context.Context, id string, status Status, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	report, ok := r.reports[id]
	if !ok {
		return ErrReportNotFound
	}
	report.Status = status
	report.UpdatedAt = updatedAt
	return nil
}

func (f ListFilter) matches(report *Report) bool {
	if f.Status != "" && report.Status != f.Status {
		return false
	}
	if f.Category != "" && report.Category != f.Category {
		return false
	}
	if f.Bounds != nil {
		lat, lng := report.Location.Latitude, report.Location.Longitude
		if lat < f.Bounds.South || lat > f.Bounds.North || lng < f.Bounds.West || lng > f.Bounds.East {
			return false
		}
	}
	return true
}
