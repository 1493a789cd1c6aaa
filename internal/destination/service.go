package destination

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/smartmobility/tripplanner/internal/events"
	"github.com/smartmobility/tripplanner/internal/routing"
)

// ServiceConfig holds configuration for the destination service.
type ServiceConfig struct {
	Repository Repository
	Events     events.Publisher // optional
	Logger     zerolog.Logger
	// Now overrides the clock in tests.
	Now func() time.Time
}

// Service records searched destinations and ranks them.
type Service struct {
	repo   Repository
	events events.Publisher
	logger zerolog.Logger
	now    func() time.Time

	// mu serializes the read-match-write in Save within this process.
	mu sync.Mutex
}

// NewService creates a new destination service.
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

// Save records a search for in. A matching destination (same ID, same name
// or within ProximityDegrees) has its count incremented and its address and
// icon refreshed when in provides them; otherwise a new destination with
// count 1 and a server-assigned ID is created.
func (s *Service) Save(ctx context.Context, userID string, in SaveInput) (*Destination, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, ErrNameRequired
	}
	if in.Location != nil {
		if err := routing.ValidateCoordinate(*in.Location); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidLocation, err.Error())
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading destinations: %w", err)
	}

	now := s.now().UTC()
	var saved *Destination
	for _, d := range existing {
		if d.sameAs(&in) {
			saved = d
			break
		}
	}

	if saved != nil {
		saved.Count++
		saved.LastUsed = now
		if in.Address != "" {
			saved.Address = in.Address
		}
		if in.Icon != "" {
			saved.Icon = in.Icon
		}
	} else {
		saved = &Destination{
			ID:        "dst_" + uuid.New().String()[:22],
			UserID:    userID,
			Name:      in.Name,
			Address:   in.Address,
			Icon:      in.Icon,
			Location:  in.Location,
			Count:     1,
			LastUsed:  now,
			CreatedAt: now,
		}
	}

	if err := s.repo.Save(ctx, saved); err != nil {
		return nil, fmt.Errorf("saving destination: %w", err)
	}

	s.logger.Debug().
		Str("user_id", userID).
		Str("destination_id", saved.ID).
		Int("count", saved.Count).
		Msg("destination saved")

	if s.events != nil {
		s.events.Publish(ctx, events.DestinationUpdated, *saved)
	}
	return saved, nil
}

// Popular returns the user's most searched destinations. Ties keep creation
// order. limit <= 0 uses DefaultPopularLimit.
func (s *Service) Popular(ctx context.Context, userID string, limit int) ([]*Destination, error) {
	if limit <= 0 {
		limit = DefaultPopularLimit
	}
	return s.ranked(ctx, userID, limit, func(a, b *Destination) bool {
		return a.Count > b.Count
	})
}

// Recent returns the user's most recently searched destinations.
// limit <= 0 uses DefaultRecentLimit.
func (s *Service) Recent(ctx context.Context, userID string, limit int) ([]*Destination, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	return s.ranked(ctx, userID, limit, func(a, b *Destination) bool {
		return a.LastUsed.After(b.LastUsed)
	})
}

func (s *Service) ranked(ctx context.Context, userID string, limit int, less func(a, b *Destination) bool) ([]*Destination, error) {
	destinations, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading destinations: %w", err)
	}

	sort.SliceStable(destinations, func(i, j int) bool {
		return less(destinations[i], destinations[j])
	})
	if len(destinations) > limit {
		destinations = destinations[:limit]
	}
	return destinations, nil
}
