package properties

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"staydesk/internal/domain/shared/events"
	"staydesk/internal/domain/shared/money"
)

var (
	ErrPropertyNotFound = errors.New("properties: property not found")
	ErrIDRequired       = errors.New("properties: id is required")
	ErrBaseRate         = errors.New("properties: base rate must be positive")
	ErrNegativeFee      = errors.New("properties: fees must be non-negative")
	ErrWeekendPremium   = errors.New("properties: weekend premium percent must be non-negative")
	ErrCapacity         = errors.New("properties: capacity must be non-negative")
	ErrMinimumStay      = errors.New("properties: minimum stay thresholds must be non-negative")
	ErrCurrencyMismatch = errors.New("properties: profile amounts must share one currency")
	ErrConcurrentUpdate = errors.New("properties: concurrent update detected")
)

type PropertyID string

// PricingProfile holds the per-property constants consumed by the rate engine.
type PricingProfile struct {
	BaseRate              money.Money
	WeekendPremiumPercent decimal.Decimal
	CleaningFee           money.Money
	ExtraBedRate          money.Money
	Capacity              int
	MinStayWeekday        int
	MinStayWeekend        int
	MinStayPeak           int
}

func (p PricingProfile) Currency() string {
	return p.BaseRate.Currency
}

func (p PricingProfile) Validate() error {
	if p.BaseRate.Currency == "" || !p.BaseRate.Amount.IsPositive() {
		return ErrBaseRate
	}
	if p.WeekendPremiumPercent.IsNegative() {
		return ErrWeekendPremium
	}
	for _, fee := range []money.Money{p.CleaningFee, p.ExtraBedRate} {
		if fee.IsNegative() {
			return ErrNegativeFee
		}
		if fee.Currency != "" && fee.Currency != p.BaseRate.Currency {
			return ErrCurrencyMismatch
		}
	}
	if p.Capacity < 0 {
		return ErrCapacity
	}
	if p.MinStayWeekday < 0 || p.MinStayWeekend < 0 || p.MinStayPeak < 0 {
		return ErrMinimumStay
	}
	return nil
}

// Normalized fills unset fee currencies with the base rate currency.
func (p PricingProfile) Normalized() PricingProfile {
	currency := p.BaseRate.Currency
	if p.CleaningFee.Currency == "" {
		p.CleaningFee = money.Money{Amount: p.CleaningFee.Amount, Currency: currency}
	}
	if p.ExtraBedRate.Currency == "" {
		p.ExtraBedRate = money.Money{Amount: p.ExtraBedRate.Amount, Currency: currency}
	}
	return p
}

type Property struct {
	ID        PropertyID
	Name      string
	Pricing   PricingProfile
	Version   int64
	UpdatedAt time.Time
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id PropertyID) (*Property, error)
	// Save stores the property if its Version matches the stored one and
	// increments Version on success.
	Save(ctx context.Context, property *Property) error
}

func NewProperty(id PropertyID, name string, profile PricingProfile, now time.Time) (*Property, error) {
	if strings.TrimSpace(string(id)) == "" {
		return nil, ErrIDRequired
	}
	profile = profile.Normalized()
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	return &Property{
		ID:        id,
		Name:      strings.TrimSpace(name),
		Pricing:   profile,
		UpdatedAt: now.UTC(),
	}, nil
}

// UpdatePricing replaces the pricing profile and records a change event.
func (p *Property) UpdatePricing(profile PricingProfile, now time.Time) error {
	profile = profile.Normalized()
	if err := profile.Validate(); err != nil {
		return err
	}
	p.Pricing = profile
	p.UpdatedAt = now.UTC()
	p.Record(PricingUpdated{PropertyID: p.ID, BaseRate: profile.BaseRate, At: p.UpdatedAt})
	return nil
}

type PricingUpdated struct {
	PropertyID PropertyID
	BaseRate   money.Money
	At         time.Time
}

func (e PricingUpdated) EventName() string     { return "property.pricing_updated" }
func (e PricingUpdated) AggregateID() string   { return string(e.PropertyID) }
func (e PricingUpdated) OccurredAt() time.Time { return e.At }
