package memory

import (
	"context"
	"sync"

	appoutbox "staydesk/internal/app/outbox"
)

// Outbox buffers event records until Flush hands them to Sink. Records the
// sink rejects stay buffered for the next flush.
type Outbox struct {
	mu      sync.Mutex
	records []appoutbox.EventRecord
	Sink    func(ctx context.Context, record appoutbox.EventRecord) error
}

func NewOutbox(sink func(ctx context.Context, record appoutbox.EventRecord) error) *Outbox {
	return &Outbox{Sink: sink}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.records = append(o.records, record)
	return nil
}

func (o *Outbox) Flush(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.Sink == nil {
		o.records = nil
		return nil
	}
	for i, rec := range o.records {
		if err := o.Sink(ctx, rec); err != nil {
			o.records = o.records[i:]
			return err
		}
	}
	o.records = nil
	return nil
}

// Pending returns a copy of the buffered records.
func (o *Outbox) Pending() []appoutbox.EventRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]appoutbox.EventRecord, len(o.records))
	copy(out, o.records)
	return out
}

var _ appoutbox.Outbox = (*Outbox)(nil)
