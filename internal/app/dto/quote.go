package dto

import (
	"staydesk/internal/domain/pricing"
	"staydesk/internal/domain/shared/daterange"
)

type AppliedPremium struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Amount      Money  `json:"amount"`
}

type SeasonalRate struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	RateType      string `json:"rate_type"`
	RateValue     string `json:"rate_value"`
	MinStayNights int    `json:"min_stay_nights,omitempty"`
	WeekendsOnly  bool   `json:"weekends_only"`
	Priority      int    `json:"priority"`
}

type DailyRate struct {
	Date            string           `json:"date"`
	DayName         string           `json:"day_name"`
	BaseRate        Money            `json:"base_rate"`
	FinalRate       Money            `json:"final_rate"`
	IsWeekend       bool             `json:"is_weekend"`
	IsHoliday       bool             `json:"is_holiday"`
	AppliedPremiums []AppliedPremium `json:"applied_premiums"`
	SeasonalRate    *SeasonalRate    `json:"seasonal_rate,omitempty"`
}

type MinimumStay struct {
	RequiredNights   int    `json:"required_nights"`
	Source           string `json:"source"`
	SeasonalRateID   int64  `json:"seasonal_rate_id,omitempty"`
	Nights           int    `json:"nights"`
	MeetsRequirement bool   `json:"meets_requirement"`
}

type RateBreakdown struct {
	Currency              string         `json:"currency"`
	BaseRate              Money          `json:"base_rate"`
	WeekendPremiumPercent string         `json:"weekend_premium_percent"`
	HolidayPremiumPercent string         `json:"holiday_premium_percent"`
	DiscountPercent       string         `json:"discount_percent"`
	TaxPercent            string         `json:"tax_percent"`
	SeasonalRates         []SeasonalRate `json:"seasonal_rates"`
}

type QuoteSummary struct {
	AverageNightlyRate Money `json:"average_nightly_rate"`
	TotalNights        int   `json:"total_nights"`
	TotalPremiums      Money `json:"total_premiums"`
	TotalFees          Money `json:"total_fees"`
	GrandTotal         Money `json:"grand_total"`
}

// RateQuote is the wire form of a priced stay.
type RateQuote struct {
	PropertyID string `json:"property_id"`
	CheckIn    string `json:"check_in"`
	CheckOut   string `json:"check_out"`
	Guests     int    `json:"guests"`

	TotalNights    int `json:"total_nights"`
	WeekdayNights  int `json:"weekday_nights"`
	WeekendNights  int `json:"weekend_nights"`
	SeasonalNights int `json:"seasonal_nights"`
	HolidayNights  int `json:"holiday_nights"`

	BaseAmount          Money `json:"base_amount"`
	TotalBaseAmount     Money `json:"total_base_amount"`
	WeekendPremium      Money `json:"weekend_premium"`
	SeasonalPremium     Money `json:"seasonal_premium"`
	HolidayPremium      Money `json:"holiday_premium"`
	ExtraBeds           int   `json:"extra_beds"`
	ExtraBedAmount      Money `json:"extra_bed_amount"`
	CleaningFee         Money `json:"cleaning_fee"`
	MinimumStayDiscount Money `json:"minimum_stay_discount"`
	Subtotal            Money `json:"subtotal"`
	TaxAmount           Money `json:"tax_amount"`
	TotalAmount         Money `json:"total_amount"`

	MinimumStay    MinimumStay   `json:"minimum_stay"`
	RateBreakdown  RateBreakdown `json:"rate_breakdown"`
	DailyBreakdown []DailyRate   `json:"daily_breakdown"`
	Summary        QuoteSummary  `json:"summary"`
	Cached         bool          `json:"cached"`
}

func MapRateQuote(propertyID string, q pricing.RateQuote) RateQuote {
	out := RateQuote{
		PropertyID:          propertyID,
		CheckIn:             q.Range.CheckIn.Format(daterange.DateLayout),
		CheckOut:            q.Range.CheckOut.Format(daterange.DateLayout),
		Guests:              q.Guests,
		TotalNights:         q.TotalNights,
		WeekdayNights:       q.WeekdayNights,
		WeekendNights:       q.WeekendNights,
		SeasonalNights:      q.SeasonalNights,
		HolidayNights:       q.HolidayNights,
		BaseAmount:          MapMoney(q.BaseAmount),
		TotalBaseAmount:     MapMoney(q.TotalBaseAmount),
		WeekendPremium:      MapMoney(q.WeekendPremium),
		SeasonalPremium:     MapMoney(q.SeasonalPremium),
		HolidayPremium:      MapMoney(q.HolidayPremium),
		ExtraBeds:           q.ExtraBeds,
		ExtraBedAmount:      MapMoney(q.ExtraBedAmount),
		CleaningFee:         MapMoney(q.CleaningFee),
		MinimumStayDiscount: MapMoney(q.MinimumStayDiscount),
		Subtotal:            MapMoney(q.Subtotal),
		TaxAmount:           MapMoney(q.Tax),
		TotalAmount:         MapMoney(q.Total),
		MinimumStay: MinimumStay{
			RequiredNights:   q.MinimumStay.RequiredNights,
			Source:           string(q.MinimumStay.Source),
			SeasonalRateID:   int64(q.MinimumStay.SeasonalRateID),
			Nights:           q.MinimumStay.Nights,
			MeetsRequirement: q.MinimumStay.MeetsRequirement,
		},
		RateBreakdown: RateBreakdown{
			Currency:              q.Breakdown.Currency,
			BaseRate:              MapMoney(q.Breakdown.BaseRate),
			WeekendPremiumPercent: q.Breakdown.WeekendPremiumPercent.String(),
			HolidayPremiumPercent: q.Breakdown.HolidayPremiumPercent.String(),
			DiscountPercent:       q.Breakdown.DiscountPercent.String(),
			TaxPercent:            q.Breakdown.TaxPercent.String(),
			SeasonalRates:         make([]SeasonalRate, 0, len(q.Breakdown.SeasonalRates)),
		},
		DailyBreakdown: make([]DailyRate, 0, len(q.Daily)),
		Summary: QuoteSummary{
			AverageNightlyRate: MapMoney(q.Summary.AverageNightlyRate),
			TotalNights:        q.Summary.TotalNights,
			TotalPremiums:      MapMoney(q.Summary.TotalPremiums),
			TotalFees:          MapMoney(q.Summary.TotalFees),
			GrandTotal:         MapMoney(q.Summary.GrandTotal),
		},
	}
	for _, ref := range q.Breakdown.SeasonalRates {
		out.RateBreakdown.SeasonalRates = append(out.RateBreakdown.SeasonalRates, mapSeasonalRef(ref))
	}
	for _, d := range q.Daily {
		day := DailyRate{
			Date:            d.Date.Format(daterange.DateLayout),
			DayName:         d.DayName,
			BaseRate:        MapMoney(d.BaseRate),
			FinalRate:       MapMoney(d.FinalRate),
			IsWeekend:       d.Weekend,
			IsHoliday:       d.Holiday,
			AppliedPremiums: make([]AppliedPremium, 0, len(d.Premiums)),
		}
		for _, p := range d.Premiums {
			day.AppliedPremiums = append(day.AppliedPremiums, AppliedPremium{
				Type:        string(p.Kind),
				Name:        p.Name,
				Description: p.Description,
				Amount:      MapMoney(p.Amount),
			})
		}
		if d.SeasonalRate != nil {
			ref := mapSeasonalRef(*d.SeasonalRate)
			day.SeasonalRate = &ref
		}
		out.DailyBreakdown = append(out.DailyBreakdown, day)
	}
	return out
}

func mapSeasonalRef(ref pricing.SeasonalRateRef) SeasonalRate {
	return SeasonalRate{
		ID:            int64(ref.ID),
		Name:          ref.Name,
		RateType:      string(ref.Type),
		RateValue:     ref.Value.String(),
		MinStayNights: ref.MinStayNights,
		WeekendsOnly:  ref.WeekendsOnly,
		Priority:      ref.Priority,
	}
}
