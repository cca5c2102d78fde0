package policies

import (
	"context"

	domainpricing "staydesk/internal/domain/pricing"
	domainproperties "staydesk/internal/domain/properties"
)

// PricingPort prices a stay from already loaded inputs.
type PricingPort interface {
	Quote(ctx context.Context, req domainpricing.StayRequest, profile domainproperties.PricingProfile, rates []domainpricing.SeasonalRate) (domainpricing.RateQuote, error)
}
