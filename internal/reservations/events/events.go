// Package events publishes reservation lifecycle events.
package events

import (
	"context"
	"fmt"
	"time"

	"rentals/pkg/kafka"
	"rentals/pkg/middleware"
	"rentals/pkg/model"
)

type Type string

const (
	TypeConfirmed Type = "reservation.confirmed"
	TypeCancelled Type = "reservation.cancelled"

	SchemaVersion = "1"
	Source        = "rentals"
)

type Event struct {
	Type          Type                    `json:"type"`
	ReservationID string                  `json:"reservation_id"`
	ResourceID    string                  `json:"resource_id"`
	GuestID       string                  `json:"guest_id"`
	CheckIn       time.Time               `json:"check_in"`
	CheckOut      time.Time               `json:"check_out"`
	Status        model.ReservationStatus `json:"status"`
	OccurredAt    time.Time               `json:"occurred_at"`
}

func NewEvent(t Type, r *model.Reservation, at time.Time) Event {
	return Event{
		Type:          t,
		ReservationID: r.ID,
		ResourceID:    r.ResourceID,
		GuestID:       r.GuestID,
		CheckIn:       r.CheckIn,
		CheckOut:      r.CheckOut,
		Status:        r.Status,
		OccurredAt:    at.UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// MessagePublisher is the part of kafka.Producer the publisher needs.
type MessagePublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type KafkaPublisher struct {
	producer MessagePublisher
}

func NewKafkaPublisher(producer MessagePublisher) *KafkaPublisher {
	return &KafkaPublisher{producer: producer}
}

// Publish keys the record by resource so a resource's events stay ordered
// within one partition.
func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	msg, err := kafka.NewMessage().
		WithKey(event.ResourceID).
		WithValue(event).
		WithEventType(string(event.Type)).
		WithCorrelationID(middleware.RequestID(ctx)).
		WithSchemaVersion(SchemaVersion).
		WithSource(Source).
		WithTimestamp(event.OccurredAt).
		Build()
	if err != nil {
		return err
	}
	if err := p.producer.Publish(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}
	return nil
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error {
	return nil
}
