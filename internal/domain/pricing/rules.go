package pricing

import (
	"encoding/json"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var ErrInvalidRules = errors.New("pricing: invalid rule table")

type Holiday struct {
	Name  string     `json:"name"`
	Month time.Month `json:"month"`
	Day   int        `json:"day"`
}

func (h Holiday) matches(night time.Time) bool {
	return night.Month() == h.Month && night.Day() == h.Day
}

type LengthOfStayTier struct {
	MinNights int             `json:"min_nights"`
	Percent   decimal.Decimal `json:"percent"`
}

// Rules is the table of calendar and tax constants the engine prices against.
type Rules struct {
	// PremiumNights receive the weekend premium and count as weekend nights.
	PremiumNights         []time.Weekday     `json:"premium_nights"`
	Holidays              []Holiday          `json:"holidays"`
	HolidayPremiumPercent decimal.Decimal    `json:"holiday_premium_percent"`
	PeakMonths            []time.Month       `json:"peak_months"`
	TaxPercent            decimal.Decimal    `json:"tax_percent"`
	LengthOfStayDiscounts []LengthOfStayTier `json:"length_of_stay_discounts"`
}

func DefaultRules() Rules {
	return Rules{
		PremiumNights: []time.Weekday{time.Friday, time.Saturday},
		Holidays: []Holiday{
			{Name: "New Year", Month: time.January, Day: 1},
			{Name: "Independence Day", Month: time.August, Day: 17},
			{Name: "Christmas", Month: time.December, Day: 25},
		},
		HolidayPremiumPercent: decimal.NewFromInt(15),
		PeakMonths:            []time.Month{time.July, time.August, time.December},
		TaxPercent:            decimal.NewFromInt(11),
		LengthOfStayDiscounts: []LengthOfStayTier{
			{MinNights: 7, Percent: decimal.NewFromInt(10)},
			{MinNights: 3, Percent: decimal.NewFromInt(5)},
		},
	}
}

// LoadRules overlays a JSON document on DefaultRules. Keys absent from the
// document keep their default value; an invalid document yields the defaults.
func LoadRules(raw string, logger *slog.Logger) Rules {
	if strings.TrimSpace(raw) == "" {
		return DefaultRules()
	}
	rules := DefaultRules()
	if err := json.Unmarshal([]byte(raw), &rules); err != nil {
		if logger != nil {
			logger.Warn("invalid PRICING_RULES JSON, using defaults", "error", err)
		}
		return DefaultRules()
	}
	if err := rules.Validate(); err != nil {
		if logger != nil {
			logger.Warn("PRICING_RULES rejected, using defaults", "error", err)
		}
		return DefaultRules()
	}
	return rules.normalized()
}

func (r Rules) Validate() error {
	for _, h := range r.Holidays {
		if h.Month < time.January || h.Month > time.December || h.Day < 1 || h.Day > 31 {
			return ErrInvalidRules
		}
	}
	for _, m := range r.PeakMonths {
		if m < time.January || m > time.December {
			return ErrInvalidRules
		}
	}
	for _, wd := range r.PremiumNights {
		if wd < time.Sunday || wd > time.Saturday {
			return ErrInvalidRules
		}
	}
	if r.TaxPercent.IsNegative() || r.HolidayPremiumPercent.IsNegative() {
		return ErrInvalidRules
	}
	for _, tier := range r.LengthOfStayDiscounts {
		if tier.MinNights < 1 || tier.Percent.IsNegative() || tier.Percent.GreaterThan(hundred) {
			return ErrInvalidRules
		}
	}
	return nil
}

// normalized orders discount tiers so the longest threshold is checked first.
func (r Rules) normalized() Rules {
	tiers := slices.Clone(r.LengthOfStayDiscounts)
	slices.SortStableFunc(tiers, func(a, b LengthOfStayTier) int { return b.MinNights - a.MinNights })
	r.LengthOfStayDiscounts = tiers
	return r
}

func (r Rules) isPremiumNight(night time.Time) bool {
	return slices.Contains(r.PremiumNights, night.Weekday())
}

func (r Rules) isPeak(night time.Time) bool {
	return slices.Contains(r.PeakMonths, night.Month())
}

func (r Rules) holiday(night time.Time) (Holiday, bool) {
	for _, h := range r.Holidays {
		if h.matches(night) {
			return h, true
		}
	}
	return Holiday{}, false
}

func (r Rules) discountPercent(nights int) decimal.Decimal {
	for _, tier := range r.LengthOfStayDiscounts {
		if nights >= tier.MinNights {
			return tier.Percent
		}
	}
	return decimal.Zero
}
