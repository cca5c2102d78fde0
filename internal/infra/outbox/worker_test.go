package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

type fakeStore struct {
	queue  []*EventDocument
	sent   []string
	failed map[string]time.Time

	purgedBefore time.Time
}

func (s *fakeStore) Claim(ctx context.Context, workerID string) (*EventDocument, error) {
	if len(s.queue) == 0 {
		return nil, nil
	}
	doc := s.queue[0]
	s.queue = s.queue[1:]
	doc.ClaimedBy = workerID
	return doc, nil
}

func (s *fakeStore) MarkSent(ctx context.Context, id string) error {
	s.sent = append(s.sent, id)
	return nil
}

func (s *fakeStore) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	if s.failed == nil {
		s.failed = map[string]time.Time{}
	}
	s.failed[id] = next
	return nil
}

func (s *fakeStore) ReleaseStale(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func (s *fakeStore) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	s.purgedBefore = cutoff
	return 0, nil
}

type published struct {
	topic   string
	key     string
	payload []byte
	headers map[string]string
}

type fakeProducer struct {
	out  []published
	fail bool
}

func (p *fakeProducer) Publish(ctx context.Context, topic, key string, payload []byte, headers map[string]string) error {
	if p.fail {
		return errors.New("broker down")
	}
	p.out = append(p.out, published{topic: topic, key: key, payload: payload, headers: headers})
	return nil
}

func overlapDoc(id string) *EventDocument {
	return &EventDocument{
		ID:         id,
		Name:       "availability.overlap_detected",
		Payload:    []byte(`{"PropertyID":"villa-1","BookingID":"b9"}`),
		OccurredAt: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		Aggregate:  "villa-1",
		Headers:    map[string]string{"event-name": "availability.overlap_detected"},
	}
}

func TestWorkerDrainPublishesCloudEvents(t *testing.T) {
	store := &fakeStore{queue: []*EventDocument{overlapDoc("evt-1"), overlapDoc("evt-2")}}
	producer := &fakeProducer{}
	w := &Worker{Store: store, Producer: producer, TopicPrefix: "stage.", ID: "w1"}

	sent, err := w.Drain(context.Background())
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	if sent != 2 || len(store.sent) != 2 {
		t.Fatalf("expected 2 records sent, got %d (%v)", sent, store.sent)
	}
	msg := producer.out[0]
	if msg.topic != "stage.availability.events.v1" || msg.key != "villa-1" {
		t.Fatalf("unexpected destination %s/%s", msg.topic, msg.key)
	}
	if msg.headers["content-type"] != "application/cloudevents+json" || msg.headers["event-name"] != "availability.overlap_detected" {
		t.Fatalf("unexpected headers %v", msg.headers)
	}
	var envelope map[string]any
	if err := json.Unmarshal(msg.payload, &envelope); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if envelope["id"] != "evt-1" || envelope["type"] != "availability.overlap_detected.v1" || envelope["source"] != "app://staydesk" {
		t.Fatalf("unexpected envelope %v", envelope)
	}
}

func TestWorkerDrainSchedulesRetryOnFailure(t *testing.T) {
	store := &fakeStore{queue: []*EventDocument{overlapDoc("evt-1"), overlapDoc("evt-2")}}
	w := &Worker{Store: store, Producer: &fakeProducer{fail: true}, Backoff: []time.Duration{time.Minute}}

	before := time.Now()
	sent, err := w.Drain(context.Background())
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	if sent != 0 || len(store.sent) != 0 {
		t.Fatalf("nothing should be marked sent")
	}
	next, ok := store.failed["evt-1"]
	if !ok || next.Before(before.Add(time.Minute)) {
		t.Fatalf("expected retry scheduled a minute out, got %v", next)
	}
	if len(store.queue) != 1 {
		t.Fatalf("drain must stop after a failed delivery")
	}
}

func TestWorkerRunRequiresDependencies(t *testing.T) {
	if err := (&Worker{}).Run(context.Background()); !errors.Is(err, ErrWorkerNotConfigured) {
		t.Fatalf("expected ErrWorkerNotConfigured, got %v", err)
	}
}

func TestWorkerRejectsMalformedPayload(t *testing.T) {
	doc := overlapDoc("evt-1")
	doc.Payload = []byte("not json")
	store := &fakeStore{queue: []*EventDocument{doc}}
	producer := &fakeProducer{}
	w := &Worker{Store: store, Producer: producer}

	if _, err := w.Drain(context.Background()); err != nil {
		t.Fatalf("drain: %v", err)
	}
	if len(producer.out) != 0 {
		t.Fatalf("malformed record must not be published")
	}
	if _, ok := store.failed["evt-1"]; !ok {
		t.Fatalf("malformed record must be scheduled for retry")
	}
}

func TestWorkerTickPurgesDeliveredRecords(t *testing.T) {
	store := &fakeStore{}
	w := &Worker{Store: store, Producer: &fakeProducer{}, Retention: time.Hour}

	before := time.Now()
	if err := w.tick(context.Background()); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if store.purgedBefore.IsZero() || store.purgedBefore.After(before.Add(-time.Hour+time.Second)) {
		t.Fatalf("expected purge cutoff an hour back, got %v", store.purgedBefore)
	}
}
