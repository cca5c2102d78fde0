package availability

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"staydesk/internal/app/commands"
	"staydesk/internal/app/dto"
	"staydesk/internal/app/handlers/support"
	"staydesk/internal/app/middleware"
	"staydesk/internal/app/outbox"
	domainavailability "staydesk/internal/domain/availability"
	domainproperties "staydesk/internal/domain/properties"
	"staydesk/internal/domain/shared/daterange"
)

const RecordBookingIntervalKey = "availability.record_interval"

// RecordBookingIntervalCommand mirrors the dates and status of an upstream booking.
type RecordBookingIntervalCommand struct {
	EventID    string `json:"event_id"`
	BookingID  string `json:"booking_id" validate:"required"`
	PropertyID string `json:"property_id" validate:"required"`
	CheckIn    string `json:"check_in" validate:"required"`
	CheckOut   string `json:"check_out" validate:"required"`
	Status     string `json:"status" validate:"required,oneof=pending_verification confirmed checked_in checked_out cancelled"`
}

func (c RecordBookingIntervalCommand) Key() string { return RecordBookingIntervalKey }

func (c RecordBookingIntervalCommand) IdempotencyKey() string { return c.EventID }

func (c RecordBookingIntervalCommand) ResultPrototype() any { return &dto.IntervalAck{} }

type RecordBookingIntervalHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
	Clock   func() time.Time
}

// Handle stores the interval even when it collides with another occupying
// booking; the collision is reported through an overlap event.
func (h *RecordBookingIntervalHandler) Handle(ctx context.Context, cmd RecordBookingIntervalCommand) (*dto.IntervalAck, error) {
	unit, err := support.WriteUnit(ctx)
	if err != nil {
		return nil, err
	}
	dr, err := daterange.Parse(cmd.CheckIn, cmd.CheckOut)
	if err != nil {
		return nil, fmt.Errorf("availability: %w", err)
	}
	status, err := domainavailability.ParseBookingStatus(cmd.Status)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if h.Clock != nil {
		now = h.Clock().UTC()
	}
	interval, err := domainavailability.NewBookingInterval(
		domainavailability.BookingID(cmd.BookingID),
		domainproperties.PropertyID(cmd.PropertyID),
		dr, status, now,
	)
	if err != nil {
		return nil, err
	}

	existing, err := unit.Bookings().ForProperty(ctx, interval.PropertyID, dr)
	if err != nil {
		return nil, err
	}
	hits := interval.MarkOverlaps(existing, now)
	if err := unit.Bookings().Save(ctx, interval); err != nil {
		return nil, err
	}
	if err := outbox.Drain(ctx, h.Outbox, h.Encoder, interval); err != nil {
		return nil, err
	}

	ack := &dto.IntervalAck{BookingID: cmd.BookingID, PropertyID: cmd.PropertyID, Status: string(status)}
	for _, hit := range hits {
		ack.Overlaps = append(ack.Overlaps, string(hit.BookingID))
	}
	if len(hits) > 0 && h.Logger != nil {
		h.Logger.WarnContext(ctx, "booking interval overlaps existing bookings",
			"booking_id", cmd.BookingID,
			"property_id", cmd.PropertyID,
			"overlaps", ack.Overlaps,
		)
	}
	return ack, nil
}

var _ commands.Handler[RecordBookingIntervalCommand, *dto.IntervalAck] = (*RecordBookingIntervalHandler)(nil)
var _ middleware.IdempotentCommand = RecordBookingIntervalCommand{}
