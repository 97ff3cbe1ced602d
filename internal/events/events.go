package events

import (
	"context"
	"log"
	"time"
)

const (
	TypeReminderCreated     = "reminder.created"
	TypeNotificationCreated = "operator_notification.created"
	TypeNotificationForward = "operator_notification.forwarded"
	TypeNotificationRead    = "operator_notification.read"
)

// Audience selects who receives an event. An empty audience means every
// connected operator.
type Audience struct {
	Role       string `json:"role,omitempty"`
	OperatorID string `json:"operator_id,omitempty"`
}

type Event struct {
	Type       string    `json:"type"`
	Audience   Audience  `json:"audience"`
	Payload    any       `json:"payload,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func New(eventType string, audience Audience, payload any) Event {
	return Event{
		Type:       eventType,
		Audience:   audience,
		Payload:    payload,
		OccurredAt: time.Now().UTC(),
	}
}

// Sink receives domain events. Publish must not block the caller for long
// and never fails the operation that produced the event.
type Sink interface {
	Publish(ctx context.Context, ev Event)
}

// Fanout forwards every event to each non-nil sink.
type Fanout []Sink

func (f Fanout) Publish(ctx context.Context, ev Event) {
	for _, s := range f {
		if s != nil {
			s.Publish(ctx, ev)
		}
	}
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(context.Context, Event) {}

type JSONPublisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

// BrokerSink publishes events with the event type as routing key.
type BrokerSink struct {
	pub JSONPublisher
}

func NewBrokerSink(pub JSONPublisher) *BrokerSink {
	return &BrokerSink{pub: pub}
}

func (b *BrokerSink) Publish(ctx context.Context, ev Event) {
	if err := b.pub.PublishJSON(ctx, ev.Type, ev); err != nil {
		log.Printf("event publish failed type=%s err=%v", ev.Type, err)
	}
}
