package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
)

type mockWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *mockWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *mockWriter) Close() error {
	w.closed = true
	return nil
}

func buildMessage(t *testing.T) Message {
	t.Helper()
	msg, err := NewMessage().
		WithKey("house-1").
		WithValue(map[string]string{"reservation_id": "r-1"}).
		WithEventType("reservation.confirmed").
		WithSource("rentals").
		Build()
	if err != nil {
		t.Fatal(err)
	}
	return msg
}

func TestMessageBuilder(t *testing.T) {
	msg := buildMessage(t)

	if msg.EventID() == "" {
		t.Error("expected generated event id")
	}
	if msg.EventType() != "reservation.confirmed" {
		t.Errorf("unexpected event type %q", msg.EventType())
	}
	if msg.Headers[HeaderTimestamp] == "" {
		t.Error("expected timestamp header")
	}

	var payload map[string]string
	if err := msg.DecodeValue(&payload); err != nil {
		t.Fatal(err)
	}
	if payload["reservation_id"] != "r-1" {
		t.Errorf("unexpected payload %v", payload)
	}
}

func TestMessageBuilder_EncodeError(t *testing.T) {
	_, err := NewMessage().WithKey("k").WithValue(make(chan int)).Build()
	if err == nil {
		t.Error("expected encoding error")
	}
}

func TestProducer_Publish(t *testing.T) {
	w := &mockWriter{}
	p := NewProducerWithWriter(w, "reservation-events")

	var seenTopic string
	p.Use(func(ctx context.Context, msg Message, next func(context.Context, Message) error) error {
		seenTopic = msg.Topic
		return next(ctx, msg)
	})

	if err := p.Publish(context.Background(), buildMessage(t)); err != nil {
		t.Fatal(err)
	}
	if seenTopic != "reservation-events" {
		t.Errorf("middleware saw topic %q", seenTopic)
	}
	if len(w.messages) != 1 {
		t.Fatalf("expected 1 written message, got %d", len(w.messages))
	}
	if string(w.messages[0].Key) != "house-1" {
		t.Errorf("unexpected key %q", w.messages[0].Key)
	}
	if len(w.messages[0].Headers) == 0 {
		t.Error("expected headers to be forwarded")
	}
}

func TestProducer_MiddlewareOrder(t *testing.T) {
	p := NewProducerWithWriter(&mockWriter{}, "t")
	var order []string
	for _, name := range []string{"outer", "inner"} {
		name := name
		p.Use(func(ctx context.Context, msg Message, next func(context.Context, Message) error) error {
			order = append(order, name)
			return next(ctx, msg)
		})
	}

	if err := p.Publish(context.Background(), buildMessage(t)); err != nil {
		t.Fatal(err)
	}
	if len(order) != 2 || order[0] != "outer" || order[1] != "inner" {
		t.Errorf("unexpected middleware order %v", order)
	}
}

func TestProducer_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("empty key", func(t *testing.T) {
		p := NewProducerWithWriter(&mockWriter{}, "t")
		msg := buildMessage(t)
		msg.Key = ""
		if err := p.Publish(ctx, msg); !errors.Is(err, ErrEmptyKey) {
			t.Errorf("expected ErrEmptyKey, got %v", err)
		}
	})

	t.Run("empty value", func(t *testing.T) {
		p := NewProducerWithWriter(&mockWriter{}, "t")
		msg := buildMessage(t)
		msg.Value = nil
		if err := p.Publish(ctx, msg); !errors.Is(err, ErrEmptyValue) {
			t.Errorf("expected ErrEmptyValue, got %v", err)
		}
	})

	t.Run("writer failure", func(t *testing.T) {
		cause := errors.New("broker down")
		p := NewProducerWithWriter(&mockWriter{err: cause}, "t")
		if err := p.Publish(ctx, buildMessage(t)); !errors.Is(err, cause) {
			t.Errorf("expected writer error, got %v", err)
		}
	})

	t.Run("closed", func(t *testing.T) {
		w := &mockWriter{}
		p := NewProducerWithWriter(w, "t")
		if err := p.Close(); err != nil {
			t.Fatal(err)
		}
		if !w.closed {
			t.Error("expected writer to be closed")
		}
		if err := p.Publish(ctx, buildMessage(t)); !errors.Is(err, ErrProducerClosed) {
			t.Errorf("expected ErrProducerClosed, got %v", err)
		}
		if err := p.Close(); err != nil {
			t.Errorf("second close should be a no-op, got %v", err)
		}
	})
}
