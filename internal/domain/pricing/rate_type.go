package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"staydesk/internal/domain/shared/money"
)

type RateType string

const (
	RatePercentage RateType = "percentage"
	RateFixed      RateType = "fixed"
	RateMultiplier RateType = "multiplier"
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// rateAdjuster turns the running nightly rate into the seasonal rate for that night.
type rateAdjuster func(dayRate money.Money, value decimal.Decimal) money.Money

var rateAdjusters = map[RateType]rateAdjuster{
	RatePercentage: func(dayRate money.Money, value decimal.Decimal) money.Money {
		return dayRate.Scale(one.Add(value.Div(hundred)))
	},
	// fixed replaces the nightly rate instead of adding to it
	RateFixed: func(dayRate money.Money, value decimal.Decimal) money.Money {
		return money.Money{Amount: value.Round(money.Precision), Currency: dayRate.Currency}
	},
	RateMultiplier: func(dayRate money.Money, value decimal.Decimal) money.Money {
		return dayRate.Scale(value)
	},
}

func (t RateType) Valid() bool {
	_, ok := rateAdjusters[t]
	return ok
}

func ParseRateType(raw string) (RateType, error) {
	t := RateType(strings.ToLower(strings.TrimSpace(raw)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRateType, raw)
	}
	return t, nil
}

func (t RateType) describe(value decimal.Decimal) string {
	switch t {
	case RatePercentage:
		if value.IsNegative() {
			return value.String() + "%"
		}
		return "+" + value.String() + "%"
	case RateFixed:
		return "fixed " + value.StringFixed(money.Precision)
	case RateMultiplier:
		return "x" + value.String()
	default:
		return string(t)
	}
}
