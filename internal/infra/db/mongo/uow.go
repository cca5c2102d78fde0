package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"

	"staydesk/internal/app/uow"
	domainavailability "staydesk/internal/domain/availability"
	domainpricing "staydesk/internal/domain/pricing"
	domainproperties "staydesk/internal/domain/properties"
)

// Factory wires Mongo transactions into the generic UnitOfWork interface.
type Factory struct {
	DB *mongo.Database

	PropertiesRepo    domainproperties.Repository
	SeasonalRatesRepo domainpricing.SeasonalRateRepository
	BookingsRepo      domainavailability.BookingRepository
}

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// Begin starts a session with a transaction. Read-only units use snapshot
// read concern so a quote sees one consistent view of profile and rates.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().SetReadConcern(f.DB.ReadConcern()).SetWriteConcern(f.DB.WriteConcern())
	if opts.ReadOnly {
		txnOpts = txnOpts.SetReadConcern(readconcern.Snapshot())
	}
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &Unit{
		session:       session,
		properties:    f.PropertiesRepo,
		seasonalRates: f.SeasonalRatesRepo,
		bookings:      f.BookingsRepo,
	}, nil
}

type Unit struct {
	session mongo.Session

	properties    domainproperties.Repository
	seasonalRates domainpricing.SeasonalRateRepository
	bookings      domainavailability.BookingRepository
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
	defer u.session.EndSession(ctx)
	return u.session.CommitTransaction(ctx)
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

// InjectContext makes the session visible to repositories reading ctx.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}
