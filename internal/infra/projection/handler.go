package projection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/IBM/sarama"

	"staydesk/internal/app/commands"
	handleravailability "staydesk/internal/app/handlers/availability"
	handlerpricing "staydesk/internal/app/handlers/pricing"
)

const (
	TypePricingUpdated       = "property.pricing_updated.v1"
	TypeSeasonalRateUpserted = "seasonal_rate.upserted.v1"
	TypeIntervalChanged      = "booking.interval_changed.v1"
)

var ErrMalformedEvent = errors.New("projection: malformed event")

// Inbox filters redelivered events.
type Inbox interface {
	Seen(ctx context.Context, eventID string) (bool, error)
	Forget(ctx context.Context, eventID string) error
}

type envelope struct {
	ID   string          `json:"id"`
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type decoder func(id string, data json.RawMessage) (commands.Command, error)

var decoders = map[string]decoder{
	TypePricingUpdated: func(id string, data json.RawMessage) (commands.Command, error) {
		var cmd handlerpricing.UpsertPricingProfileCommand
		err := json.Unmarshal(data, &cmd)
		cmd.EventID = id
		return cmd, err
	},
	TypeSeasonalRateUpserted: func(id string, data json.RawMessage) (commands.Command, error) {
		var cmd handlerpricing.UpsertSeasonalRateCommand
		err := json.Unmarshal(data, &cmd)
		cmd.EventID = id
		return cmd, err
	},
	TypeIntervalChanged: func(id string, data json.RawMessage) (commands.Command, error) {
		var cmd handleravailability.RecordBookingIntervalCommand
		err := json.Unmarshal(data, &cmd)
		cmd.EventID = id
		return cmd, err
	},
}

// Handler turns upstream cloudevents into commands that keep the property,
// seasonal rate and booking interval stores current.
type Handler struct {
	Bus    commands.Bus
	Inbox  Inbox
	Logger *slog.Logger
}

func (h *Handler) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	return h.Apply(ctx, msg.Value)
}

// Apply processes one encoded event. Malformed and unknown events are logged
// and dropped; a failed command releases the inbox claim and returns the error.
func (h *Handler) Apply(ctx context.Context, raw []byte) error {
	var evt envelope
	if err := json.Unmarshal(raw, &evt); err != nil || strings.TrimSpace(evt.ID) == "" {
		h.logger().Warn("dropping malformed event", "error", errors.Join(ErrMalformedEvent, err))
		return nil
	}
	decode, ok := decoders[evt.Type]
	if !ok {
		h.logger().Debug("skipping unknown event type", "event_id", evt.ID, "type", evt.Type)
		return nil
	}
	cmd, err := decode(evt.ID, evt.Data)
	if err != nil {
		h.logger().Warn("dropping undecodable event", "event_id", evt.ID, "type", evt.Type, "error", err)
		return nil
	}

	if h.Inbox != nil {
		seen, err := h.Inbox.Seen(ctx, evt.ID)
		if err != nil {
			return err
		}
		if seen {
			h.logger().Debug("duplicate event ignored", "event_id", evt.ID, "type", evt.Type)
			return nil
		}
	}
	if _, err := h.Bus.Dispatch(ctx, cmd); err != nil {
		if h.Inbox != nil {
			if ferr := h.Inbox.Forget(ctx, evt.ID); ferr != nil {
				err = errors.Join(err, ferr)
			}
		}
		return fmt.Errorf("projection: %s %s: %w", evt.Type, evt.ID, err)
	}
	return nil
}

func (h *Handler) logger() *slog.Logger {
	if h.Logger == nil {
		return slog.Default()
	}
	return h.Logger
}
