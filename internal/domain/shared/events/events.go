// Package events holds the minimal contract aggregates use to surface facts
// that the application layer relays through the outbox.
package events

import "time"

// DomainEvent is a fact raised by an aggregate. EventName is dot separated,
// the first segment naming the stream, e.g. "availability.overlap_detected".
type DomainEvent interface {
	EventName() string
	AggregateID() string
	OccurredAt() time.Time
}

// EventRecorder is embedded by aggregates that raise events. The zero value
// is ready to use.
type EventRecorder struct {
	pending []DomainEvent
}

func (r *EventRecorder) Record(event DomainEvent) {
	if event == nil {
		return
	}
	r.pending = append(r.pending, event)
}

// PendingEvents returns a copy; the recorder keeps its events.
func (r *EventRecorder) PendingEvents() []DomainEvent {
	if len(r.pending) == 0 {
		return nil
	}
	out := make([]DomainEvent, len(r.pending))
	copy(out, r.pending)
	return out
}

// TakeEvents returns the pending events and resets the recorder.
func (r *EventRecorder) TakeEvents() []DomainEvent {
	out := r.pending
	r.pending = nil
	return out
}
