package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/IBM/sarama"
)

type flakyHandler struct {
	failures int
	calls    int
}

func (h *flakyHandler) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	h.calls++
	if h.calls <= h.failures {
		return errors.New("mongo unavailable")
	}
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDeliverRetriesUntilSuccess(t *testing.T) {
	h := &flakyHandler{failures: 2}
	msg := &sarama.ConsumerMessage{Topic: "booking.events.v1", Offset: 4}
	if !deliver(context.Background(), h, msg, []time.Duration{time.Millisecond, time.Millisecond}, quietLogger()) {
		t.Fatalf("message should settle")
	}
	if h.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", h.calls)
	}
}

func TestDeliverGivesUpAfterRetries(t *testing.T) {
	h := &flakyHandler{failures: 10}
	msg := &sarama.ConsumerMessage{Topic: "booking.events.v1"}
	if !deliver(context.Background(), h, msg, []time.Duration{time.Millisecond}, quietLogger()) {
		t.Fatalf("exhausted message should still settle")
	}
	if h.calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", h.calls)
	}
}

func TestDeliverStopsWhenSessionEnds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	h := &flakyHandler{failures: 10}
	if deliver(ctx, h, &sarama.ConsumerMessage{}, []time.Duration{time.Hour}, quietLogger()) {
		t.Fatalf("a cancelled session must leave the message unsettled")
	}
}

func TestNewMessageSortsHeaders(t *testing.T) {
	msg := newMessage("stage.booking.events.v1", "villa-1", []byte(`{}`), map[string]string{
		"event-name":   "booking.interval_changed",
		"content-type": "application/cloudevents+json",
	})
	if len(msg.Headers) != 2 || string(msg.Headers[0].Key) != "content-type" {
		t.Fatalf("unexpected headers %+v", msg.Headers)
	}
	key, err := msg.Key.Encode()
	if err != nil || string(key) != "villa-1" {
		t.Fatalf("unexpected key %q (%v)", key, err)
	}
}
