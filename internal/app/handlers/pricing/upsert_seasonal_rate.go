package pricing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"staydesk/internal/app/commands"
	"staydesk/internal/app/dto"
	"staydesk/internal/app/handlers/support"
	"staydesk/internal/app/middleware"
	domainpricing "staydesk/internal/domain/pricing"
	domainproperties "staydesk/internal/domain/properties"
	"staydesk/internal/domain/shared/daterange"
)

const UpsertSeasonalRateKey = "pricing.upsert_seasonal_rate"

var ErrUnknownWeekday = errors.New("pricing: unknown weekday")

type UpsertSeasonalRateCommand struct {
	EventID        string   `json:"event_id"`
	ID             int64    `json:"id" validate:"gt=0"`
	PropertyID     string   `json:"property_id" validate:"required"`
	Name           string   `json:"name" validate:"required"`
	StartDate      string   `json:"start_date" validate:"required"`
	EndDate        string   `json:"end_date" validate:"required"`
	RateType       string   `json:"rate_type" validate:"required"`
	RateValue      string   `json:"rate_value" validate:"required,numeric"`
	MinStayNights  int      `json:"min_stay_nights" validate:"gte=0"`
	WeekendsOnly   bool     `json:"weekends_only"`
	ApplicableDays []string `json:"applicable_days"`
	Active         bool     `json:"active"`
	Priority       int      `json:"priority"`
}

func (c UpsertSeasonalRateCommand) Key() string { return UpsertSeasonalRateKey }

func (c UpsertSeasonalRateCommand) IdempotencyKey() string { return c.EventID }

func (c UpsertSeasonalRateCommand) ResultPrototype() any { return &dto.SeasonalRateAck{} }

// SeasonalRate converts the command into a validated domain rate.
func (c UpsertSeasonalRateCommand) SeasonalRate() (domainpricing.SeasonalRate, error) {
	start, err := daterange.ParseDate(c.StartDate)
	if err != nil {
		return domainpricing.SeasonalRate{}, fmt.Errorf("pricing: %w", err)
	}
	end, err := daterange.ParseDate(c.EndDate)
	if err != nil {
		return domainpricing.SeasonalRate{}, fmt.Errorf("pricing: %w", err)
	}
	rateType, err := domainpricing.ParseRateType(c.RateType)
	if err != nil {
		return domainpricing.SeasonalRate{}, err
	}
	value, err := decimal.NewFromString(strings.TrimSpace(c.RateValue))
	if err != nil {
		return domainpricing.SeasonalRate{}, errors.Join(ErrInvalidAmount, err)
	}
	days, err := ParseWeekdays(c.ApplicableDays)
	if err != nil {
		return domainpricing.SeasonalRate{}, err
	}
	rate := domainpricing.SeasonalRate{
		ID:             domainpricing.SeasonalRateID(c.ID),
		PropertyID:     domainproperties.PropertyID(c.PropertyID),
		Name:           strings.TrimSpace(c.Name),
		StartDate:      start,
		EndDate:        end,
		Type:           rateType,
		Value:          value,
		MinStayNights:  c.MinStayNights,
		WeekendsOnly:   c.WeekendsOnly,
		ApplicableDays: days,
		Active:         c.Active,
		Priority:       c.Priority,
	}
	if err := rate.Validate(); err != nil {
		return domainpricing.SeasonalRate{}, err
	}
	return rate, nil
}

type UpsertSeasonalRateHandler struct{}

func (h *UpsertSeasonalRateHandler) Handle(ctx context.Context, cmd UpsertSeasonalRateCommand) (*dto.SeasonalRateAck, error) {
	unit, err := support.WriteUnit(ctx)
	if err != nil {
		return nil, err
	}
	rate, err := cmd.SeasonalRate()
	if err != nil {
		return nil, err
	}
	if _, err := unit.Properties().ByID(ctx, rate.PropertyID); err != nil {
		return nil, err
	}
	if err := unit.SeasonalRates().Save(ctx, rate); err != nil {
		return nil, err
	}
	return &dto.SeasonalRateAck{ID: int64(rate.ID), PropertyID: string(rate.PropertyID)}, nil
}

var weekdayNames = map[string]time.Weekday{
	"sunday": time.Sunday, "sun": time.Sunday,
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
}

// ParseWeekdays accepts full or three-letter English day names in any case.
func ParseWeekdays(raw []string) ([]time.Weekday, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]time.Weekday, 0, len(raw))
	for _, name := range raw {
		wd, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownWeekday, name)
		}
		out = append(out, wd)
	}
	return out, nil
}

var _ commands.Handler[UpsertSeasonalRateCommand, *dto.SeasonalRateAck] = (*UpsertSeasonalRateHandler)(nil)
var _ middleware.IdempotentCommand = UpsertSeasonalRateCommand{}
