package pricing

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"staydesk/internal/domain/properties"
	"staydesk/internal/domain/shared/daterange"
	"staydesk/internal/domain/shared/money"
)

var (
	ErrUnknownRateType   = errors.New("pricing: unknown rate type")
	ErrSeasonBounds      = errors.New("pricing: seasonal rate start must not be after end")
	ErrSeasonValue       = errors.New("pricing: seasonal rate value must be non-negative")
	ErrSeasonMinStay     = errors.New("pricing: seasonal minimum stay must be non-negative")
	ErrSeasonIDRequired  = errors.New("pricing: seasonal rate id is required")
	ErrSeasonNameMissing = errors.New("pricing: seasonal rate name is required")
)

type SeasonalRateID int64

// SeasonalRate adjusts the nightly rate of a property within an inclusive date window.
type SeasonalRate struct {
	ID             SeasonalRateID
	PropertyID     properties.PropertyID
	Name           string
	StartDate      time.Time
	EndDate        time.Time
	Type           RateType
	Value          decimal.Decimal
	MinStayNights  int
	WeekendsOnly   bool
	ApplicableDays []time.Weekday
	Active         bool
	Priority       int
}

type SeasonalRateRepository interface {
	ForProperty(ctx context.Context, id properties.PropertyID, window daterange.DateRange) ([]SeasonalRate, error)
	Save(ctx context.Context, rate SeasonalRate) error
}

func (r SeasonalRate) Validate() error {
	if r.ID <= 0 {
		return ErrSeasonIDRequired
	}
	if strings.TrimSpace(r.Name) == "" {
		return ErrSeasonNameMissing
	}
	if !r.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownRateType, r.Type)
	}
	if r.StartDate.IsZero() || r.EndDate.IsZero() || daterange.Day(r.StartDate).After(daterange.Day(r.EndDate)) {
		return ErrSeasonBounds
	}
	if r.Type != RatePercentage && r.Value.IsNegative() {
		return ErrSeasonValue
	}
	if r.MinStayNights < 0 {
		return ErrSeasonMinStay
	}
	return nil
}

// Intersects reports whether the inclusive season window touches the half-open stay.
func (r SeasonalRate) Intersects(stay daterange.DateRange) bool {
	start, end := daterange.Day(r.StartDate), daterange.Day(r.EndDate)
	return start.Before(stay.CheckOut) && !end.Before(stay.CheckIn)
}

// AppliesTo checks the window, the weekends-only flag (Saturday and Sunday)
// and the optional weekday set for a single night.
func (r SeasonalRate) AppliesTo(night time.Time) bool {
	night = daterange.Day(night)
	if night.Before(daterange.Day(r.StartDate)) || night.After(daterange.Day(r.EndDate)) {
		return false
	}
	wd := night.Weekday()
	if r.WeekendsOnly && wd != time.Saturday && wd != time.Sunday {
		return false
	}
	if len(r.ApplicableDays) > 0 && !slices.Contains(r.ApplicableDays, wd) {
		return false
	}
	return true
}

// Apply returns the nightly rate after this seasonal adjustment.
func (r SeasonalRate) Apply(dayRate money.Money) money.Money {
	adjust, ok := rateAdjusters[r.Type]
	if !ok {
		return dayRate
	}
	return adjust(dayRate, r.Value)
}

func (r SeasonalRate) Ref() SeasonalRateRef {
	return SeasonalRateRef{
		ID:            r.ID,
		Name:          r.Name,
		Type:          r.Type,
		Value:         r.Value,
		MinStayNights: r.MinStayNights,
		WeekendsOnly:  r.WeekendsOnly,
		Priority:      r.Priority,
	}
}

// effectiveOrder sorts by priority descending, then by id ascending.
func effectiveOrder(a, b SeasonalRate) int {
	if a.Priority != b.Priority {
		return b.Priority - a.Priority
	}
	switch {
	case a.ID < b.ID:
		return -1
	case a.ID > b.ID:
		return 1
	default:
		return 0
	}
}

// seasonCalendar maps each night of a stay to the seasonal rate in effect.
type seasonCalendar map[string]SeasonalRate

func resolveSeasons(stay daterange.DateRange, rates []SeasonalRate) seasonCalendar {
	candidates := make([]SeasonalRate, 0, len(rates))
	for _, r := range rates {
		if r.Active && r.Type.Valid() && r.Intersects(stay) {
			candidates = append(candidates, r)
		}
	}
	cal := seasonCalendar{}
	if len(candidates) == 0 {
		return cal
	}
	slices.SortStableFunc(candidates, effectiveOrder)
	for night := range stay.Nights() {
		for _, r := range candidates {
			if r.AppliesTo(night) {
				cal[night.Format(daterange.DateLayout)] = r
				break
			}
		}
	}
	return cal
}

func (c seasonCalendar) on(night time.Time) (SeasonalRate, bool) {
	r, ok := c[night.Format(daterange.DateLayout)]
	return r, ok
}
