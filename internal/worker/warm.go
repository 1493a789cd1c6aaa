package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"

	"github.com/smartmobility/tripplanner/internal/geocoding"
	"github.com/smartmobility/tripplanner/internal/routing"
)

// TripPlanner plans transit trips.
type TripPlanner interface {
	PlanTrip(ctx context.Context, req routing.DirectionsRequest) (*routing.TripPlan, error)
}

// PlaceResolver resolves a free-text destination to a place.
type PlaceResolver interface {
	Resolve(ctx context.Context, query string) (geocoding.Place, error)
}

// WarmJob pre-plans trips from hubs to popular destinations so the geocoding
// cache and the directions provider are exercised before users ask.
type WarmJob struct {
	config   WarmConfig
	planner  TripPlanner
	resolver PlaceResolver
	logger   zerolog.Logger

	metrics *WarmMetrics
}

// WarmMetrics tracks warm-up job statistics.
type WarmMetrics struct {
	mu sync.RWMutex

	TotalRuns       int64
	PlannedTrips    int64
	FailedTrips     int64
	UnresolvedPlace int64
	RoutesSeen      int64

	LastRunAt       time.Time
	LastRunDuration time.Duration
	TotalDuration   time.Duration
}

// WarmJobConfig holds configuration for creating a WarmJob.
type WarmJobConfig struct {
	Config   WarmConfig
	Planner  TripPlanner
	Resolver PlaceResolver
	Logger   zerolog.Logger
}

// NewWarmJob creates a new warm-up job.
func NewWarmJob(cfg WarmJobConfig) *WarmJob {
	return &WarmJob{
		config:   cfg.Config.withDefaults(),
		planner:  cfg.Planner,
		resolver: cfg.Resolver,
		logger:   cfg.Logger,
		metrics:  &WarmMetrics{},
	}
}

// WarmResult contains the result of a warm-up run.
type WarmResult struct {
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
	TotalTrips int
	Planned    int
	Failed     int
	Unresolved int
	Routes     int
	Errors     []WarmError
}

// WarmError represents a failed hub-destination pair.
type WarmError struct {
	Hub         string
	Destination string
	Error       string
}

type tripResult struct {
	routes int
	err    *WarmError
}

// Run resolves every destination, then plans a trip from every hub to every
// resolved destination with bounded concurrency.
func (j *WarmJob) Run(ctx context.Context) *WarmResult {
	startTime := time.Now()
	result := &WarmResult{
		StartTime:  startTime,
		TotalTrips: j.config.TotalTrips(),
	}

	j.logger.Info().
		Int("total_trips", result.TotalTrips).
		Int("concurrency", j.config.Concurrency).
		Msg("starting route warm-up job")

	places := j.resolveDestinations(ctx, result)

	p := pool.NewWithResults[tripResult]().WithMaxGoroutines(j.config.Concurrency)
	for _, hub := range j.config.Hubs {
		for _, place := range places {
			p.Go(func() tripResult {
				return j.planPair(ctx, hub, place)
			})
		}
	}

	for _, tr := range p.Wait() {
		if tr.err != nil {
			result.Failed++
			result.Errors = append(result.Errors, *tr.err)
			continue
		}
		result.Planned++
		result.Routes += tr.routes
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(startTime)
	j.updateMetrics(result)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("planned", result.Planned).
		Int("failed", result.Failed).
		Int("unresolved", result.Unresolved).
		Int("routes", result.Routes).
		Msg("route warm-up job completed")

	return result
}

// resolveDestinations geocodes each destination once. Unresolved destinations
// count every trip they would have started as failed.
func (j *WarmJob) resolveDestinations(ctx context.Context, result *WarmResult) []geocoding.Place {
	places := make([]geocoding.Place, 0, len(j.config.Destinations))
	for _, query := range j.config.Destinations {
		if ctx.Err() != nil {
			result.Unresolved++
			result.Failed += len(j.config.Hubs)
			continue
		}
		place, err := j.resolve(ctx, query)
		if err != nil {
			j.logger.Warn().Err(err).Str("destination", query).Msg("destination not resolved")
			result.Unresolved++
			result.Failed += len(j.config.Hubs)
			for _, hub := range j.config.Hubs {
				result.Errors = append(result.Errors, WarmError{Hub: hub.Name, Destination: query, Error: err.Error()})
			}
			continue
		}
		if place.Name == "" {
			place.Name = query
		}
		places = append(places, place)
	}
	return places
}

func (j *WarmJob) resolve(ctx context.Context, query string) (geocoding.Place, error) {
	if j.resolver == nil {
		return geocoding.Place{}, geocoding.ErrProviderUnavailable
	}
	ctx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()
	return j.resolver.Resolve(ctx, query)
}

func (j *WarmJob) planPair(ctx context.Context, hub Hub, place geocoding.Place) tripResult {
	fail := func(err error) tripResult {
		return tripResult{err: &WarmError{Hub: hub.Name, Destination: place.Name, Error: err.Error()}}
	}
	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	if j.planner == nil {
		return fail(routing.ErrProviderUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	plan, err := j.planner.PlanTrip(ctx, routing.DirectionsRequest{
		Origin:      hub.Location,
		Destination: place.Location,
	})
	if err != nil {
		j.logger.Debug().Err(err).
			Str("hub", hub.Name).
			Str("destination", place.Name).
			Msg("warm-up trip failed")
		return fail(err)
	}
	return tripResult{routes: len(plan.Routes)}
}

func (j *WarmJob) updateMetrics(result *WarmResult) {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()

	j.metrics.TotalRuns++
	j.metrics.PlannedTrips += int64(result.Planned)
	j.metrics.FailedTrips += int64(result.Failed)
	j.metrics.UnresolvedPlace += int64(result.Unresolved)
	j.metrics.RoutesSeen += int64(result.Routes)
	j.metrics.LastRunAt = result.EndTime
	j.metrics.LastRunDuration = result.Duration
	j.metrics.TotalDuration += result.Duration
}

// GetMetrics returns a copy of the current metrics.
func (j *WarmJob) GetMetrics() WarmMetrics {
	j.metrics.mu.RLock()
	defer j.metrics.mu.RUnlock()

	return WarmMetrics{
		TotalRuns:       j.metrics.TotalRuns,
		PlannedTrips:    j.metrics.PlannedTrips,
		FailedTrips:     j.metrics.FailedTrips,
		UnresolvedPlace: j.metrics.UnresolvedPlace,
		RoutesSeen:      j.metrics.RoutesSeen,
		LastRunAt:       j.metrics.LastRunAt,
		LastRunDuration: j.metrics.LastRunDuration,
		TotalDuration:   j.metrics.TotalDuration,
	}
}

// MetricsSnapshot returns a snapshot of the current metrics as a map.
func (j *WarmJob) MetricsSnapshot() map[string]interface{} {
	m := j.GetMetrics()
	return map[string]interface{}{
		"total_runs":        m.TotalRuns,
		"planned_trips":     m.PlannedTrips,
		"failed_trips":      m.FailedTrips,
		"unresolved_places": m.UnresolvedPlace,
		"routes_seen":       m.RoutesSeen,
		"last_run_at":       m.LastRunAt,
		"last_run_duration": m.LastRunDuration.String(),
		"total_duration":    m.TotalDuration.String(),
	}
}
