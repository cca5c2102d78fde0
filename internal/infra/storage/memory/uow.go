package memory

import (
	"context"
	"errors"

	"staydesk/internal/app/uow"
	domainavailability "staydesk/internal/domain/availability"
	domainpricing "staydesk/internal/domain/pricing"
	domainproperties "staydesk/internal/domain/properties"
)

// Factory wires in-memory repositories into a unit-of-work boundary.
type Factory struct {
	PropertiesRepo    domainproperties.Repository
	SeasonalRatesRepo domainpricing.SeasonalRateRepository
	BookingsRepo      domainavailability.BookingRepository
}

var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Begin hands out the shared repositories. No isolation is provided; each
// repository serialises its own access.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.PropertiesRepo == nil || f.SeasonalRatesRepo == nil || f.BookingsRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{
		properties:    f.PropertiesRepo,
		seasonalRates: f.SeasonalRatesRepo,
		bookings:      f.BookingsRepo,
		readOnly:      opts.ReadOnly,
	}, nil
}

type Unit struct {
	properties    domainproperties.Repository
	seasonalRates domainpricing.SeasonalRateRepository
	bookings      domainavailability.BookingRepository
	readOnly      bool
}

func (u *Unit) Properties() domainproperties.Repository {
	return u.properties
}

func (u *Unit) SeasonalRates() domainpricing.SeasonalRateRepository {
	return u.seasonalRates
}

func (u *Unit) Bookings() domainavailability.BookingRepository {
	return u.bookings
}

func (u *Unit) Commit(ctx context.Context) error {
	if u.readOnly {
		return uow.ErrReadOnly
	}
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	return nil
}
