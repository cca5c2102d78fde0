package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"staydesk/internal/domain/shared/daterange"
	"staydesk/internal/domain/shared/money"
)

type PremiumKind string

const (
	PremiumSeasonal PremiumKind = "seasonal"
	PremiumWeekend  PremiumKind = "weekend"
	PremiumHoliday  PremiumKind = "holiday"
)

type AppliedPremium struct {
	Kind        PremiumKind
	Name        string
	Description string
	Amount      money.Money
}

type SeasonalRateRef struct {
	ID            SeasonalRateID
	Name          string
	Type          RateType
	Value         decimal.Decimal
	MinStayNights int
	WeekendsOnly  bool
	Priority      int
}

// DailyRate is the priced result of one night of the stay.
type DailyRate struct {
	Date         time.Time
	DayName      string
	BaseRate     money.Money
	FinalRate    money.Money
	Premiums     []AppliedPremium
	SeasonalRate *SeasonalRateRef
	Weekend      bool
	Holiday      bool
}

type MinimumStaySource string

const (
	MinimumStaySeasonal MinimumStaySource = "seasonal_rate"
	MinimumStayPeak     MinimumStaySource = "peak_season"
	MinimumStayWeekend  MinimumStaySource = "weekend"
	MinimumStayWeekday  MinimumStaySource = "weekday"
)

// MinimumStay is informational; a quote is never rejected for failing it.
type MinimumStay struct {
	RequiredNights   int
	Source           MinimumStaySource
	SeasonalRateID   SeasonalRateID
	Nights           int
	MeetsRequirement bool
}

type Breakdown struct {
	Currency              string
	BaseRate              money.Money
	WeekendPremiumPercent decimal.Decimal
	HolidayPremiumPercent decimal.Decimal
	DiscountPercent       decimal.Decimal
	TaxPercent            decimal.Decimal
	SeasonalRates         []SeasonalRateRef
}

type Summary struct {
	AverageNightlyRate money.Money
	TotalNights        int
	TotalPremiums      money.Money
	TotalFees          money.Money
	GrandTotal         money.Money
}

type RateQuote struct {
	Range  daterange.DateRange
	Guests int

	TotalNights    int
	WeekdayNights  int
	WeekendNights  int
	SeasonalNights int
	HolidayNights  int

	BaseAmount      money.Money
	TotalBaseAmount money.Money
	WeekendPremium  money.Money
	SeasonalPremium money.Money
	HolidayPremium  money.Money

	ExtraBeds      int
	ExtraBedAmount money.Money
	CleaningFee    money.Money

	MinimumStayDiscount money.Money
	Subtotal            money.Money
	Tax                 money.Money
	Total               money.Money

	MinimumStay MinimumStay
	Breakdown   Breakdown
	Daily       []DailyRate
	Summary     Summary
}
