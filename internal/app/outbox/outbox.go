// Package outbox turns domain events into records that are stored with the
// unit of work and relayed to the broker afterwards.
package outbox

import (
	"context"
	"encoding/json"
	"maps"
	"strings"
	"time"

	"github.com/google/uuid"

	"staydesk/internal/domain/shared/events"
)

// SchemaVersion is appended to event names to form the published type.
const SchemaVersion = "v1"

type EventRecord struct {
	ID         string
	Name       string
	Payload    []byte
	OccurredAt time.Time
	Aggregate  string
	Headers    map[string]string
}

// Stream is the first segment of the event name: "availability" for
// "availability.overlap_detected".
func (r EventRecord) Stream() string {
	stream, _, _ := strings.Cut(r.Name, ".")
	return stream
}

// Type is the versioned name consumers match on.
func (r EventRecord) Type() string {
	return r.Name + "." + SchemaVersion
}

type Outbox interface {
	Add(ctx context.Context, record EventRecord) error
	Flush(ctx context.Context) error
}

type EventEncoder interface {
	Encode(ev events.DomainEvent) (EventRecord, error)
}

// JSONEventEncoder marshals the event value as the payload. Headers are
// copied onto every record after the event-name and aggregate-id headers.
type JSONEventEncoder struct {
	IDGenerator func() string
	Headers     map[string]string
}

func (e JSONEventEncoder) Encode(ev events.DomainEvent) (EventRecord, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return EventRecord{}, err
	}
	newID := e.IDGenerator
	if newID == nil {
		newID = uuid.NewString
	}
	headers := map[string]string{
		"event-name":   ev.EventName(),
		"aggregate-id": ev.AggregateID(),
	}
	maps.Copy(headers, e.Headers)
	return EventRecord{
		ID:         newID(),
		Name:       ev.EventName(),
		Payload:    payload,
		OccurredAt: ev.OccurredAt().UTC(),
		Aggregate:  ev.AggregateID(),
		Headers:    headers,
	}, nil
}

// RecordDomainEvents encodes evs and adds them to box in order, stopping at
// the first failure.
func RecordDomainEvents(ctx context.Context, box Outbox, encoder EventEncoder, evs []events.DomainEvent) error {
	if box == nil || len(evs) == 0 {
		return nil
	}
	if encoder == nil {
		encoder = JSONEventEncoder{}
	}
	for _, ev := range evs {
		rec, err := encoder.Encode(ev)
		if err != nil {
			return err
		}
		if err := box.Add(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

// Drain moves the pending events of an aggregate into box.
func Drain(ctx context.Context, box Outbox, encoder EventEncoder, source interface {
	TakeEvents() []events.DomainEvent
}) error {
	return RecordDomainEvents(ctx, box, encoder, source.TakeEvents())
}
