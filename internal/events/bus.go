// Package events provides the in-process event bus that decouples domain
// services from their observers, plus a forwarder to Cloud Pub/Sub.
package events

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Type names an event.
type Type string

// Event types published by the domain services.
const (
	DestinationUpdated  Type = "destination.updated"
	ReportCreated       Type = "report.created"
	ReportStatusChanged Type = "report.status_changed"
)

// Event is a single published occurrence.
type Event struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload"`
}

// Handler receives events. Handlers run synchronously on the publishing goroutine.
type Handler func(ctx context.Context, event Event)

// Publisher is the side of the bus domain services depend on.
type Publisher interface {
	Publish(ctx context.Context, eventType Type, payload any) Event
}

// Bus is a typed publish/subscribe hub. The zero value is not usable; use NewBus.
type Bus struct {
	mu       sync.RWMutex
	handlers map[Type]map[uint64]Handler
	wildcard map[uint64]Handler
	nextID   uint64
	logger   zerolog.Logger
}

// NewBus creates an empty bus.
func NewBus(logger zerolog.Logger) *Bus {
	return &Bus{
		handlers: make(map[Type]map[uint64]Handler),
		wildcard: make(map[uint64]Handler),
		logger:   logger,
	}
}

// Subscribe registers h for eventType and returns a function that removes it.
// Calling the returned function more than once is a no-op.
func (b *Bus) Subscribe(eventType Type, h Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	if b.handlers[eventType] == nil {
		b.handlers[eventType] = make(map[uint64]Handler)
	}
	b.handlers[eventType][id] = h

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers[eventType], id)
	}
}

// SubscribeAll registers h for every event type.
func (b *Bus) SubscribeAll(h Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.wildcard[id] = h

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.wildcard, id)
	}
}

// Publish delivers an event to the subscribers of eventType and to wildcard
// subscribers, in subscription order. A panicking handler is logged and does
// not stop delivery to the others.
func (b *Bus) Publish(ctx context.Context, eventType Type, payload any) Event {
	event := Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}

	for _, h := range b.snapshot(eventType) {
		b.deliver(ctx, event, h)
	}

	return event
}

func (b *Bus) snapshot(eventType Type) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()

	ids := make([]uint64, 0, len(b.handlers[eventType])+len(b.wildcard))
	byID := make(map[uint64]Handler, cap(ids))
	for id, h := range b.handlers[eventType] {
		ids = append(ids, id)
		byID[id] = h
	}
	for id, h := range b.wildcard {
		ids = append(ids, id)
		byID[id] = h
	}

	slices.Sort(ids)
	out := make([]Handler, len(ids))
	for i, id := range ids {
		out[i] = byID[id]
	}
	return out
}

func (b *Bus) deliver(ctx context.Context, event Event, h Handler) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error().
				Interface("panic", r).
				Str("event_id", event.ID).
				Str("event_type", string(event.Type)).
				Msg("event handler panicked")
		}
	}()
	h(ctx, event)
}
