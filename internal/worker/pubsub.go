package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"

	"github.com/smartmobility/tripplanner/internal/provider/resilience"
)

// Job types accepted on the worker subscription.
const (
	JobWarmRoutes  = "warm_routes"
	JobHealthCheck = "health_check"
)

// JobMessage represents a worker job message.
type JobMessage struct {
	JobType string `json:"job_type"`

	// Destinations overrides the configured warm-up destinations for one run.
	Destinations []string `json:"destinations,omitempty"`
}

// Outcome tells the subscriber whether to acknowledge a message.
type Outcome int

// Message outcomes.
const (
	Ack Outcome = iota
	Nack
)

// Dispatcher runs jobs decoded from message payloads.
type Dispatcher struct {
	warmJob  *WarmJob
	registry *resilience.Registry
	logger   zerolog.Logger
}

// NewDispatcher creates a job dispatcher. registry may be nil.
func NewDispatcher(warmJob *WarmJob, registry *resilience.Registry, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{warmJob: warmJob, registry: registry, logger: logger}
}

// Dispatch decodes and runs one job. Malformed payloads and failed jobs are
// nacked; unknown job types are acked so they are not redelivered.
func (d *Dispatcher) Dispatch(ctx context.Context, data []byte) Outcome {
	startTime := time.Now()

	var msg JobMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		d.logger.Error().Err(err).Msg("failed to parse message")
		return Nack
	}

	var err error
	switch msg.JobType {
	case JobWarmRoutes:
		err = d.handleWarmRoutes(ctx, msg)
	case JobHealthCheck:
		err = d.handleHealthCheck(ctx)
	default:
		d.logger.Warn().Str("job_type", msg.JobType).Msg("unknown job type")
		return Ack
	}

	if err != nil {
		d.logger.Error().Err(err).Str("job_type", msg.JobType).Msg("job failed")
		return Nack
	}

	d.logger.Info().
		Str("job_type", msg.JobType).
		Dur("duration", time.Since(startTime)).
		Msg("job completed successfully")
	return Ack
}

func (d *Dispatcher) handleWarmRoutes(ctx context.Context, msg JobMessage) error {
	job := d.warmJob
	if len(msg.Destinations) > 0 {
		cfg := job.config
		cfg.Destinations = msg.Destinations
		job = NewWarmJob(WarmJobConfig{
			Config:   cfg,
			Planner:  job.planner,
			Resolver: job.resolver,
			Logger:   d.logger,
		})
	}

	result := job.Run(ctx)

	// Consider it successful if at least half the trips were planned.
	if result.Failed > result.Planned {
		return fmt.Errorf("too many warm-up failures: %d/%d", result.Failed, result.TotalTrips)
	}
	return nil
}

func (d *Dispatcher) handleHealthCheck(ctx context.Context) error {
	d.logger.Debug().Msg("running health check")

	if d.registry != nil {
		for _, h := range d.registry.GetAllHealth() {
			if h.IsUnhealthy() {
				return fmt.Errorf("provider %s is unhealthy: %s", h.Name, h.LastError)
			}
		}
	}

	// Plan a single trip to verify provider connectivity.
	cfg := d.warmJob.config
	probe := NewWarmJob(WarmJobConfig{
		Config: WarmConfig{
			Hubs:         cfg.Hubs[:1],
			Destinations: cfg.Destinations[:1],
			Concurrency:  1,
			Timeout:      10 * time.Second,
		},
		Planner:  d.warmJob.planner,
		Resolver: d.warmJob.resolver,
		Logger:   d.logger,
	})

	result := probe.Run(ctx)
	if result.Failed > 0 {
		return fmt.Errorf("health check failed: %d errors", result.Failed)
	}

	d.logger.Debug().Msg("health check passed")
	return nil
}

// PubSubHandler handles Pub/Sub messages for the worker.
type PubSubHandler struct {
	client           *pubsub.Client
	subscriber       *pubsub.Subscriber
	subscriptionName string
	dispatcher       *Dispatcher
	logger           zerolog.Logger
}

// PubSubConfig holds configuration for the Pub/Sub handler.
type PubSubConfig struct {
	ProjectID        string
	SubscriptionName string
	Dispatcher       *Dispatcher
	Logger           zerolog.Logger
}

// NewPubSubHandler creates a new Pub/Sub handler.
func NewPubSubHandler(ctx context.Context, cfg PubSubConfig) (*PubSubHandler, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}

	subscriber := client.Subscriber(cfg.SubscriptionName)
	subscriber.ReceiveSettings.MaxOutstandingMessages = 10
	subscriber.ReceiveSettings.MaxExtension = 10 * time.Minute

	return &PubSubHandler{
		client:           client,
		subscriber:       subscriber,
		subscriptionName: cfg.SubscriptionName,
		dispatcher:       cfg.Dispatcher,
		logger:           cfg.Logger,
	}, nil
}

// Start begins processing Pub/Sub messages.
func (h *PubSubHandler) Start(ctx context.Context) error {
	h.logger.Info().
		Str("subscription", h.subscriptionName).
		Msg("starting pubsub handler")

	return h.subscriber.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		h.handleMessage(ctx, msg)
	})
}

// Close closes the Pub/Sub client.
func (h *PubSubHandler) Close() error {
	return h.client.Close()
}

func (h *PubSubHandler) handleMessage(ctx context.Context, msg *pubsub.Message) {
	logger := h.logger.With().
		Str("message_id", msg.ID).
		Str("publish_time", msg.PublishTime.Format(time.RFC3339)).
		Logger()

	logger.Debug().Msg("received pubsub message")

	if h.dispatcher.Dispatch(logger.WithContext(ctx), msg.Data) == Nack {
		msg.Nack()
		return
	}
	msg.Ack()
}
