package destination

import (
	"context"
	"sort"
	"sync"
)

// Repository stores destination history.
type Repository interface {
	// ListByUser returns a user's destinations in creation order.
	ListByUser(ctx context.Context, userID string) ([]*Destination, error)
	// Save inserts the destination or replaces the one with the same ID.
	Save(ctx context.Context, d *Destination) error
}

// InMemoryRepository is an in-memory implementation of Repository for tests
// and local development.
type InMemoryRepository struct {
	mu     sync.RWMutex
	byUser map[string]map[string]*Destination
}

// NewInMemoryRepository creates an empty repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{byUser: make(map[string]map[string]*Destination)}
}

// ListByUser returns copies of the user's destinations in creation order.
func (r *InMemoryRepository) ListByUser(_ context.Context, userID string) ([]*Destination, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Destination, 0, len(r.byUser[userID]))
	for _, d := range r.byUser[userID] {
		out = append(out, copyDestination(d))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Save stores a copy of d.
func (r *InMemoryRepository) Save(_ context.Context, d *Destination) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.byUser[d.UserID] == nil {
		r.byUser[d.UserID] = make(map[string]*Destination)
	}
	r.byUser[d.UserID][d.ID] = copyDestination(d)
	return nil
}

func copyDestination(d *Destination) *Destination {
	c := *d
	if d.Location != nil {
		loc := *d.Location
		c.Location = &loc
	}
	return &c
}
