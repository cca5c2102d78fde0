package pricing

import (
	"fmt"
	"iter"
	"slices"
	"time"

	"staydesk/internal/domain/properties"
	"staydesk/internal/domain/shared/money"
)

// Engine prices stays night by night. It holds no state besides its rule
// table and is safe for concurrent use.
type Engine struct {
	rules Rules
}

func NewEngine(rules Rules) *Engine {
	return &Engine{rules: rules.normalized()}
}

func (e *Engine) Rules() Rules {
	if e == nil {
		return DefaultRules()
	}
	return e.rules
}

// Quote computes the full price breakdown for a stay. Identical inputs always
// produce identical quotes.
func (e *Engine) Quote(req StayRequest, profile properties.PricingProfile, rates []SeasonalRate) (RateQuote, error) {
	if err := req.Validate(); err != nil {
		return RateQuote{}, err
	}
	profile = profile.Normalized()
	if err := profile.Validate(); err != nil {
		return RateQuote{}, fmt.Errorf("pricing: %w", err)
	}
	rules := e.Rules()
	currency := profile.Currency()

	seasons := resolveSeasons(req.Range, rates)
	tally := fold(req.Range.Nights(), newNightTally(currency), func(t nightTally, night time.Time) nightTally {
		season, ok := seasons.on(night)
		var applied *SeasonalRate
		if ok {
			applied = &season
		}
		return t.with(priceNight(night, profile, applied, rules), applied)
	})

	nights := tally.nights
	q := RateQuote{
		Range:           req.Range,
		Guests:          req.Guests,
		TotalNights:     nights,
		WeekdayNights:   tally.weekdayNights,
		WeekendNights:   tally.weekendNights,
		SeasonalNights:  tally.seasonalNights,
		HolidayNights:   tally.holidayNights,
		BaseAmount:      profile.BaseRate.Multiply(int64(nights)),
		TotalBaseAmount: tally.totalBase,
		WeekendPremium:  tally.weekendPremium,
		SeasonalPremium: tally.seasonalPremium,
		HolidayPremium:  tally.holidayPremium,
		CleaningFee:     profile.CleaningFee,
		Daily:           tally.daily,
	}

	q.ExtraBeds = extraBeds(req.Guests, profile.Capacity)
	q.ExtraBedAmount = profile.ExtraBedRate.Multiply(int64(q.ExtraBeds * nights))

	discountPercent := rules.discountPercent(nights)
	q.MinimumStayDiscount = q.TotalBaseAmount.Percent(discountPercent)

	q.Subtotal = sum(currency, q.TotalBaseAmount, q.ExtraBedAmount, q.CleaningFee, q.MinimumStayDiscount.Neg())
	q.Tax = q.Subtotal.Percent(rules.TaxPercent)
	q.Total = sum(currency, q.Subtotal, q.Tax)

	q.MinimumStay = minimumStay(tally, profile, rules)
	q.Breakdown = Breakdown{
		Currency:              currency,
		BaseRate:              profile.BaseRate,
		WeekendPremiumPercent: profile.WeekendPremiumPercent,
		HolidayPremiumPercent: rules.HolidayPremiumPercent,
		DiscountPercent:       discountPercent,
		TaxPercent:            rules.TaxPercent,
		SeasonalRates:         refs(tally.seasons),
	}
	q.Summary = Summary{
		AverageNightlyRate: q.TotalBaseAmount.Div(int64(nights)),
		TotalNights:        nights,
		TotalPremiums:      sum(currency, q.WeekendPremium, q.SeasonalPremium, q.HolidayPremium),
		TotalFees:          sum(currency, q.CleaningFee, q.ExtraBedAmount),
		GrandTotal:         q.Total,
	}
	return q, nil
}

// pricedNight is the outcome of pricing a single night.
type pricedNight struct {
	rate            DailyRate
	seasonalPremium money.Money
	weekendPremium  money.Money
	holidayPremium  money.Money
}

func priceNight(night time.Time, profile properties.PricingProfile, season *SeasonalRate, rules Rules) pricedNight {
	base := profile.BaseRate
	dayRate := base
	out := pricedNight{
		seasonalPremium: money.Zero(base.Currency),
		weekendPremium:  money.Zero(base.Currency),
		holidayPremium:  money.Zero(base.Currency),
	}
	var premiums []AppliedPremium

	if season != nil {
		adjusted := season.Apply(dayRate)
		delta := sum(base.Currency, adjusted, dayRate.Neg())
		premiums = append(premiums, AppliedPremium{
			Kind:        PremiumSeasonal,
			Name:        season.Name,
			Description: fmt.Sprintf("%s (%s)", season.Name, season.Type.describe(season.Value)),
			Amount:      delta,
		})
		out.seasonalPremium = delta
		dayRate = adjusted
	}

	weekend := rules.isPremiumNight(night)
	// A seasonal rate suppresses the weekend premium only when it is not
	// weekends-only. Kept as-is until the intended rule is confirmed.
	suppressed := season != nil && !season.WeekendsOnly
	if weekend && !suppressed && profile.WeekendPremiumPercent.IsPositive() {
		premium := base.Percent(profile.WeekendPremiumPercent)
		premiums = append(premiums, AppliedPremium{
			Kind:        PremiumWeekend,
			Name:        "Weekend premium",
			Description: fmt.Sprintf("Weekend premium %s%%", profile.WeekendPremiumPercent.String()),
			Amount:      premium,
		})
		out.weekendPremium = premium
		dayRate = sum(base.Currency, dayRate, premium)
	}

	holiday, isHoliday := rules.holiday(night)
	if isHoliday {
		premium := base.Percent(rules.HolidayPremiumPercent)
		premiums = append(premiums, AppliedPremium{
			Kind:        PremiumHoliday,
			Name:        holiday.Name,
			Description: fmt.Sprintf("Holiday premium %s%% (%s)", rules.HolidayPremiumPercent.String(), holiday.Name),
			Amount:      premium,
		})
		out.holidayPremium = premium
		dayRate = sum(base.Currency, dayRate, premium)
	}

	out.rate = DailyRate{
		Date:      night,
		DayName:   night.Weekday().String(),
		BaseRate:  base,
		FinalRate: dayRate,
		Premiums:  premiums,
		Weekend:   weekend,
		Holiday:   isHoliday,
	}
	if season != nil {
		ref := season.Ref()
		out.rate.SeasonalRate = &ref
	}
	return out
}

// nightTally accumulates priced nights. with returns a new tally and never
// mutates the receiver's visible state.
type nightTally struct {
	nights         int
	weekdayNights  int
	weekendNights  int
	seasonalNights int
	holidayNights  int

	totalBase       money.Money
	seasonalPremium money.Money
	weekendPremium  money.Money
	holidayPremium  money.Money

	daily   []DailyRate
	seasons []SeasonalRate
}

func newNightTally(currency string) nightTally {
	return nightTally{
		totalBase:       money.Zero(currency),
		seasonalPremium: money.Zero(currency),
		weekendPremium:  money.Zero(currency),
		holidayPremium:  money.Zero(currency),
	}
}

func (t nightTally) with(n pricedNight, season *SeasonalRate) nightTally {
	currency := t.totalBase.Currency
	t.nights++
	if n.rate.Weekend {
		t.weekendNights++
	} else {
		t.weekdayNights++
	}
	if n.rate.Holiday {
		t.holidayNights++
	}
	if season != nil {
		t.seasonalNights++
		if !slices.ContainsFunc(t.seasons, func(s SeasonalRate) bool { return s.ID == season.ID }) {
			t.seasons = append(slices.Clip(t.seasons), *season)
		}
	}
	t.totalBase = sum(currency, t.totalBase, n.rate.FinalRate)
	t.seasonalPremium = sum(currency, t.seasonalPremium, n.seasonalPremium)
	t.weekendPremium = sum(currency, t.weekendPremium, n.weekendPremium)
	t.holidayPremium = sum(currency, t.holidayPremium, n.holidayPremium)
	t.daily = append(slices.Clip(t.daily), n.rate)
	return t
}

func (t nightTally) touches(pred func(time.Time) bool) bool {
	return slices.ContainsFunc(t.daily, func(d DailyRate) bool { return pred(d.Date) })
}

func minimumStay(t nightTally, profile properties.PricingProfile, rules Rules) MinimumStay {
	ms := MinimumStay{Nights: t.nights}
	for _, s := range t.seasons {
		if s.MinStayNights > 0 && s.MinStayNights > ms.RequiredNights {
			ms.RequiredNights = s.MinStayNights
			ms.SeasonalRateID = s.ID
			ms.Source = MinimumStaySeasonal
		}
	}
	if ms.Source == "" {
		switch {
		case t.touches(rules.isPeak):
			ms.RequiredNights, ms.Source = profile.MinStayPeak, MinimumStayPeak
		case t.touches(rules.isPremiumNight):
			ms.RequiredNights, ms.Source = profile.MinStayWeekend, MinimumStayWeekend
		default:
			ms.RequiredNights, ms.Source = profile.MinStayWeekday, MinimumStayWeekday
		}
	}
	ms.MeetsRequirement = t.nights >= ms.RequiredNights
	return ms
}

func extraBeds(guests, capacity int) int {
	if guests <= 0 || guests <= capacity {
		return 0
	}
	return guests - capacity
}

func refs(rates []SeasonalRate) []SeasonalRateRef {
	out := make([]SeasonalRateRef, 0, len(rates))
	for _, r := range rates {
		out = append(out, r.Ref())
	}
	return out
}

// sum adds amounts of one currency. Callers guarantee matching currencies.
func sum(currency string, amounts ...money.Money) money.Money {
	total := money.Zero(currency)
	for _, m := range amounts {
		total, _ = total.Add(m)
	}
	return total
}

func fold[T, A any](seq iter.Seq[T], acc A, step func(A, T) A) A {
	for v := range seq {
		acc = step(acc, v)
	}
	return acc
}
