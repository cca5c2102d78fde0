package projection

import (
	"context"
	"errors"
	"testing"

	"staydesk/internal/app/commands"
	handleravailability "staydesk/internal/app/handlers/availability"
	handlerpricing "staydesk/internal/app/handlers/pricing"
	"staydesk/internal/infra/storage/memory"
)

type recordingBus struct {
	dispatched []commands.Command
	err        error
}

func (b *recordingBus) Dispatch(ctx context.Context, cmd commands.Command) (any, error) {
	b.dispatched = append(b.dispatched, cmd)
	return nil, b.err
}

const intervalEvent = `{
	"id": "evt-42",
	"type": "booking.interval_changed.v1",
	"data": {"booking_id": "b1", "property_id": "villa-1", "check_in": "2025-06-01", "check_out": "2025-06-04", "status": "confirmed"}
}`

func TestApplyDispatchesCommandOnce(t *testing.T) {
	bus := &recordingBus{}
	h := &Handler{Bus: bus, Inbox: memory.NewInbox()}

	for i := 0; i < 2; i++ {
		if err := h.Apply(context.Background(), []byte(intervalEvent)); err != nil {
			t.Fatalf("apply: %v", err)
		}
	}
	if len(bus.dispatched) != 1 {
		t.Fatalf("expected one dispatch, got %d", len(bus.dispatched))
	}
	cmd, ok := bus.dispatched[0].(handleravailability.RecordBookingIntervalCommand)
	if !ok {
		t.Fatalf("unexpected command %T", bus.dispatched[0])
	}
	if cmd.EventID != "evt-42" || cmd.BookingID != "b1" || cmd.Status != "confirmed" {
		t.Fatalf("unexpected command %+v", cmd)
	}
}

func TestApplyDecodesPricingEvents(t *testing.T) {
	bus := &recordingBus{}
	h := &Handler{Bus: bus}

	profile := `{"id":"evt-1","type":"property.pricing_updated.v1","data":{"property_id":"villa-1","currency":"IDR","base_rate":"500000"}}`
	rate := `{"id":"evt-2","type":"seasonal_rate.upserted.v1","data":{"id":7,"property_id":"villa-1","name":"High","start_date":"2025-07-01","end_date":"2025-08-31","rate_type":"percentage","rate_value":"20","active":true}}`
	for _, raw := range []string{profile, rate} {
		if err := h.Apply(context.Background(), []byte(raw)); err != nil {
			t.Fatalf("apply: %v", err)
		}
	}
	if len(bus.dispatched) != 2 {
		t.Fatalf("expected two dispatches, got %d", len(bus.dispatched))
	}
	if cmd, ok := bus.dispatched[0].(handlerpricing.UpsertPricingProfileCommand); !ok || cmd.EventID != "evt-1" || cmd.BaseRate != "500000" {
		t.Fatalf("unexpected profile command %+v", bus.dispatched[0])
	}
	if cmd, ok := bus.dispatched[1].(handlerpricing.UpsertSeasonalRateCommand); !ok || cmd.ID != 7 || cmd.RateType != "percentage" {
		t.Fatalf("unexpected seasonal command %+v", bus.dispatched[1])
	}
}

func TestApplySkipsUnknownAndMalformed(t *testing.T) {
	bus := &recordingBus{}
	h := &Handler{Bus: bus, Inbox: memory.NewInbox()}

	inputs := []string{
		`not json`,
		`{"type":"booking.interval_changed.v1"}`,
		`{"id":"evt-9","type":"guest.reviewed.v1","data":{}}`,
	}
	for _, raw := range inputs {
		if err := h.Apply(context.Background(), []byte(raw)); err != nil {
			t.Fatalf("apply %q: %v", raw, err)
		}
	}
	if len(bus.dispatched) != 0 {
		t.Fatalf("expected nothing dispatched, got %d", len(bus.dispatched))
	}
}

func TestApplyReleasesInboxOnFailure(t *testing.T) {
	bus := &recordingBus{err: errors.New("store offline")}
	inbox := memory.NewInbox()
	h := &Handler{Bus: bus, Inbox: inbox}

	if err := h.Apply(context.Background(), []byte(intervalEvent)); err == nil {
		t.Fatalf("expected dispatch failure to surface")
	}
	bus.err = nil
	if err := h.Apply(context.Background(), []byte(intervalEvent)); err != nil {
		t.Fatalf("redelivery: %v", err)
	}
	if len(bus.dispatched) != 2 {
		t.Fatalf("redelivered event must be dispatched again, got %d", len(bus.dispatched))
	}
}
