package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"maps"
	"time"

	"github.com/google/uuid"

	appoutbox "staydesk/internal/app/outbox"
)

// Producer is the broker side of the relay; kafka.Producer in production.
type Producer interface {
	Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error
}

// EventStore is the claim/ack surface of the outbox collection.
type EventStore interface {
	Claim(ctx context.Context, workerID string) (*EventDocument, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error
	ReleaseStale(ctx context.Context, cutoff time.Time) (int64, error)
	Purge(ctx context.Context, cutoff time.Time) (int64, error)
}

// Worker relays stored records to the broker as cloudevents.
type Worker struct {
	Store       EventStore
	Producer    Producer
	Interval    time.Duration
	TopicPrefix string
	Source      string
	ID          string
	Backoff     []time.Duration
	// BatchSize caps records delivered per tick.
	BatchSize int
	// ClaimTimeout is how long a claim may stay unacknowledged before release.
	ClaimTimeout time.Duration
	// Retention is how long delivered records are kept; zero keeps them.
	Retention time.Duration
	Logger    *slog.Logger
}

var (
	ErrWorkerNotConfigured = errors.New("outbox: worker missing dependencies")
	ErrMalformedPayload    = errors.New("outbox: record payload is not json")
)

// Run relays records every Interval until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	if w.Store == nil || w.Producer == nil {
		return ErrWorkerNotConfigured
	}
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	ticker := time.NewTicker(w.interval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.tick(ctx); err != nil && ctx.Err() != nil {
				return ctx.Err()
			}
		}
	}
}

func (w *Worker) tick(ctx context.Context) error {
	now := time.Now()
	if n, err := w.Store.ReleaseStale(ctx, now.Add(-w.claimTimeout())); err != nil {
		w.logger().Warn("outbox release failed", "error", err)
	} else if n > 0 {
		w.logger().Info("outbox claims released", "count", n)
	}
	if w.Retention > 0 {
		if _, err := w.Store.Purge(ctx, now.Add(-w.Retention)); err != nil {
			w.logger().Warn("outbox purge failed", "error", err)
		}
	}
	sent, err := w.Drain(ctx)
	if err != nil {
		w.logger().Warn("outbox drain failed", "worker_id", w.ID, "error", err)
		return err
	}
	if sent > 0 {
		w.logger().Debug("outbox relayed", "worker_id", w.ID, "count", sent)
	}
	return nil
}

// Drain delivers up to BatchSize records and returns how many were published.
func (w *Worker) Drain(ctx context.Context) (int, error) {
	sent := 0
	for i := 0; i < w.batchSize(); i++ {
		ok, err := w.processOnce(ctx)
		if err != nil {
			return sent, err
		}
		if !ok {
			return sent, nil
		}
		sent++
	}
	return sent, nil
}

// processOnce reports false when there was nothing to deliver or delivery failed.
func (w *Worker) processOnce(ctx context.Context) (bool, error) {
	doc, err := w.Store.Claim(ctx, w.ID)
	if err != nil || doc == nil {
		return false, err
	}
	rec := doc.Record()
	topic := w.TopicPrefix + rec.Stream() + ".events." + appoutbox.SchemaVersion
	payload, headers, err := w.cloudEvent(rec)
	if err == nil {
		err = w.Producer.Publish(ctx, topic, rec.Aggregate, payload, headers)
	}
	if err != nil {
		w.logger().Warn("outbox publish failed", "event_id", doc.ID, "topic", topic, "attempts", doc.Attempts+1, "error", err)
		return false, w.Store.MarkFailed(ctx, doc.ID, w.nextRetry(doc.Attempts), err.Error())
	}
	return true, w.Store.MarkSent(ctx, doc.ID)
}

// cloudEvent wraps the record in a structured-mode cloudevents envelope. The
// record id becomes the event id so consumers can deduplicate redeliveries.
func (w *Worker) cloudEvent(rec appoutbox.EventRecord) ([]byte, map[string]string, error) {
	if !json.Valid(rec.Payload) {
		return nil, nil, ErrMalformedPayload
	}
	payload, err := json.Marshal(cloudEvent{
		SpecVersion:     "1.0",
		ID:              rec.ID,
		Type:            rec.Type(),
		Source:          w.source(),
		Subject:         rec.Aggregate,
		Time:            rec.OccurredAt,
		DataContentType: "application/json",
		Data:            json.RawMessage(rec.Payload),
	})
	if err != nil {
		return nil, nil, err
	}
	headers := maps.Clone(rec.Headers)
	if headers == nil {
		headers = map[string]string{}
	}
	headers["content-type"] = "application/cloudevents+json"
	return payload, headers, nil
}

type cloudEvent struct {
	SpecVersion     string          `json:"specversion"`
	ID              string          `json:"id"`
	Type            string          `json:"type"`
	Source          string          `json:"source"`
	Subject         string          `json:"subject,omitempty"`
	Time            time.Time       `json:"time"`
	DataContentType string          `json:"datacontenttype"`
	Data            json.RawMessage `json:"data"`
}

func (w *Worker) interval() time.Duration {
	if w.Interval <= 0 {
		return 500 * time.Millisecond
	}
	return w.Interval
}

func (w *Worker) batchSize() int {
	if w.BatchSize <= 0 {
		return 50
	}
	return w.BatchSize
}

func (w *Worker) claimTimeout() time.Duration {
	if w.ClaimTimeout <= 0 {
		return time.Minute
	}
	return w.ClaimTimeout
}

func (w *Worker) nextRetry(attempts int) time.Time {
	if attempts < len(w.Backoff) {
		return time.Now().Add(w.Backoff[attempts])
	}
	if len(w.Backoff) > 0 {
		return time.Now().Add(w.Backoff[len(w.Backoff)-1])
	}
	return time.Now().Add(5 * time.Second)
}

func (w *Worker) source() string {
	if w.Source != "" {
		return w.Source
	}
	return "app://staydesk"
}

func (w *Worker) logger() *slog.Logger {
	if w.Logger == nil {
		return slog.Default()
	}
	return w.Logger
}
