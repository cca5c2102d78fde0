package pricing

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"staydesk/internal/app/commands"
	"staydesk/internal/app/dto"
	"staydesk/internal/app/handlers/support"
	"staydesk/internal/app/middleware"
	"staydesk/internal/app/outbox"
	domainproperties "staydesk/internal/domain/properties"
	"staydesk/internal/domain/shared/money"
)

const UpsertPricingProfileKey = "pricing.upsert_profile"

var (
	ErrPricingUnavailable = errors.New("pricing: engine not configured")
	ErrInvalidAmount      = errors.New("pricing: invalid amount")
)

// UpsertPricingProfileCommand mirrors an upstream property pricing change.
type UpsertPricingProfileCommand struct {
	EventID               string `json:"event_id"`
	PropertyID            string `json:"property_id" validate:"required"`
	Name                  string `json:"name"`
	Currency              string `json:"currency" validate:"required,len=3"`
	BaseRate              string `json:"base_rate" validate:"required,numeric"`
	WeekendPremiumPercent string `json:"weekend_premium_percent" validate:"omitempty,numeric"`
	CleaningFee           string `json:"cleaning_fee" validate:"omitempty,numeric"`
	ExtraBedRate          string `json:"extra_bed_rate" validate:"omitempty,numeric"`
	Capacity              int    `json:"capacity" validate:"gte=0"`
	MinStayWeekday        int    `json:"min_stay_weekday" validate:"gte=0"`
	MinStayWeekend        int    `json:"min_stay_weekend" validate:"gte=0"`
	MinStayPeak           int    `json:"min_stay_peak" validate:"gte=0"`
}

func (c UpsertPricingProfileCommand) Key() string { return UpsertPricingProfileKey }

func (c UpsertPricingProfileCommand) IdempotencyKey() string { return c.EventID }

func (c UpsertPricingProfileCommand) ResultPrototype() any { return &dto.PropertyAck{} }

func (c UpsertPricingProfileCommand) Profile() (domainproperties.PricingProfile, error) {
	currency := strings.ToUpper(strings.TrimSpace(c.Currency))
	base, err := parseAmount(c.BaseRate, currency)
	if err != nil {
		return domainproperties.PricingProfile{}, err
	}
	cleaning, err := parseAmount(c.CleaningFee, currency)
	if err != nil {
		return domainproperties.PricingProfile{}, err
	}
	extraBed, err := parseAmount(c.ExtraBedRate, currency)
	if err != nil {
		return domainproperties.PricingProfile{}, err
	}
	weekend := decimal.Zero
	if raw := strings.TrimSpace(c.WeekendPremiumPercent); raw != "" {
		weekend, err = decimal.NewFromString(raw)
		if err != nil {
			return domainproperties.PricingProfile{}, errors.Join(ErrInvalidAmount, err)
		}
	}
	return domainproperties.PricingProfile{
		BaseRate:              base,
		WeekendPremiumPercent: weekend,
		CleaningFee:           cleaning,
		ExtraBedRate:          extraBed,
		Capacity:              c.Capacity,
		MinStayWeekday:        c.MinStayWeekday,
		MinStayWeekend:        c.MinStayWeekend,
		MinStayPeak:           c.MinStayPeak,
	}, nil
}

type UpsertPricingProfileHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Clock   func() time.Time
}

func (h *UpsertPricingProfileHandler) Handle(ctx context.Context, cmd UpsertPricingProfileCommand) (*dto.PropertyAck, error) {
	unit, err := support.WriteUnit(ctx)
	if err != nil {
		return nil, err
	}
	profile, err := cmd.Profile()
	if err != nil {
		return nil, err
	}
	now := h.now()
	id := domainproperties.PropertyID(cmd.PropertyID)

	property, err := unit.Properties().ByID(ctx, id)
	switch {
	case errors.Is(err, domainproperties.ErrPropertyNotFound):
		property, err = domainproperties.NewProperty(id, cmd.Name, profile, now)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	case strings.TrimSpace(cmd.Name) != "":
		property.Name = strings.TrimSpace(cmd.Name)
	}
	if err := property.UpdatePricing(profile, now); err != nil {
		return nil, err
	}

	if err := unit.Properties().Save(ctx, property); err != nil {
		return nil, err
	}
	if err := outbox.Drain(ctx, h.Outbox, h.Encoder, property); err != nil {
		return nil, err
	}
	return &dto.PropertyAck{PropertyID: string(property.ID), Version: property.Version}, nil
}

func (h *UpsertPricingProfileHandler) now() time.Time {
	if h.Clock != nil {
		return h.Clock().UTC()
	}
	return time.Now().UTC()
}

func parseAmount(raw, currency string) (money.Money, error) {
	if strings.TrimSpace(raw) == "" {
		return money.Zero(currency), nil
	}
	m, err := money.Parse(raw, currency)
	if err != nil {
		return money.Money{}, errors.Join(ErrInvalidAmount, err)
	}
	return m, nil
}

var _ commands.Handler[UpsertPricingProfileCommand, *dto.PropertyAck] = (*UpsertPricingProfileHandler)(nil)
var _ middleware.IdempotentCommand = UpsertPricingProfileCommand{}
