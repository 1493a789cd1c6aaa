package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"
)

// MessagePublisher sends an encoded event to a broker.
type MessagePublisher interface {
	Publish(ctx context.Context, data []byte, attributes map[string]string) error
}

// TopicPublisher publishes to a Cloud Pub/Sub topic.
type TopicPublisher struct {
	publisher *pubsub.Publisher
}

// NewTopicPublisher returns a publisher for topic on client.
func NewTopicPublisher(client *pubsub.Client, topic string) *TopicPublisher {
	return &TopicPublisher{publisher: client.Publisher(topic)}
}

// Publish sends one message and waits for the server to acknowledge it.
func (p *TopicPublisher) Publish(ctx context.Context, data []byte, attributes map[string]string) error {
	result := p.publisher.Publish(ctx, &pubsub.Message{Data: data, Attributes: attributes})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publishing message: %w", err)
	}
	return nil
}

// Stop flushes pending messages and stops the publisher.
func (p *TopicPublisher) Stop() {
	p.publisher.Stop()
}

// PubSubForwarder relays bus events to a broker so the worker and other
// services can react to them.
type PubSubForwarder struct {
	publisher MessagePublisher
	timeout   time.Duration
	logger    zerolog.Logger
}

// NewPubSubForwarder creates a forwarder. Each publish is bounded by timeout
// (default 5s).
func NewPubSubForwarder(publisher MessagePublisher, timeout time.Duration, logger zerolog.Logger) *PubSubForwarder {
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &PubSubForwarder{publisher: publisher, timeout: timeout, logger: logger}
}

// Attach subscribes the forwarder to every event on bus.
func (f *PubSubForwarder) Attach(bus *Bus) (detach func()) {
	return bus.SubscribeAll(f.Handle)
}

// Handle encodes event as JSON and publishes it. Failures are logged; the
// publishing request is never failed because of the broker.
func (f *PubSubForwarder) Handle(ctx context.Context, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		f.logger.Error().Err(err).
			Str("event_id", event.ID).
			Str("event_type", string(event.Type)).
			Msg("failed to encode event")
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.timeout)
	defer cancel()

	attributes := map[string]string{
		"event_id":   event.ID,
		"event_type": string(event.Type),
	}
	if err := f.publisher.Publish(ctx, data, attributes); err != nil {
		f.logger.Warn().Err(err).
			Str("event_id", event.ID).
			Str("event_type", string(event.Type)).
			Msg("failed to forward event")
		return
	}

	f.logger.Debug().
		Str("event_id", event.ID).
		Str("event_type", string(event.Type)).
		Msg("event forwarded")
}
