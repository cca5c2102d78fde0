package uow

import (
	"context"

	domainavailability "staydesk/internal/domain/availability"
	domainpricing "staydesk/internal/domain/pricing"
	domainproperties "staydesk/internal/domain/properties"
)

// UnitOfWork groups the repositories the pricing and availability flows read
// and write inside one transaction boundary.
type UnitOfWork interface {
	Properties() domainproperties.Repository
	SeasonalRates() domainpricing.SeasonalRateRepository
	Bookings() domainavailability.BookingRepository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

type TxOptions struct {
	ReadOnly bool
}
