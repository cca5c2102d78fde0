package memory

import (
	"context"
	"errors"

	"staydesk/internal/app/policies"
	domainpricing "staydesk/internal/domain/pricing"
	domainproperties "staydesk/internal/domain/properties"
)

var ErrPricingEngineMissing = errors.New("pricing: engine missing")

// PricingPortAdapter exposes the in-process rate engine through the
// application pricing port.
type PricingPortAdapter struct {
	Engine *domainpricing.Engine
}

func (p PricingPortAdapter) Quote(ctx context.Context, req domainpricing.StayRequest, profile domainproperties.PricingProfile, rates []domainpricing.SeasonalRate) (domainpricing.RateQuote, error) {
	if p.Engine == nil {
		return domainpricing.RateQuote{}, ErrPricingEngineMissing
	}
	if err := ctx.Err(); err != nil {
		return domainpricing.RateQuote{}, err
	}
	return p.Engine.Quote(req, profile, rates)
}

var _ policies.PricingPort = PricingPortAdapter{}
