package pricing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"staydesk/internal/app/commands"
	"staydesk/internal/app/dto"
	"staydesk/internal/app/middleware"
	domainpricing "staydesk/internal/domain/pricing"
	domainproperties "staydesk/internal/domain/properties"
	"staydesk/internal/domain/shared/daterange"
	"staydesk/internal/domain/shared/money"
	"staydesk/internal/infra/storage/memory"
)

type fixture struct {
	factory    memory.Factory
	properties *memory.PropertyRepository
	rates      *memory.SeasonalRateRepository
	cache      *memory.QuoteCache
	handler    *QuoteStayHandler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		properties: memory.NewPropertyRepository(),
		rates:      memory.NewSeasonalRateRepository(),
		cache:      memory.NewQuoteCache(),
	}
	f.factory = memory.Factory{
		PropertiesRepo:    f.properties,
		SeasonalRatesRepo: f.rates,
		BookingsRepo:      memory.NewBookingRepository(),
	}
	f.handler = &QuoteStayHandler{
		UoWFactory: f.factory,
		Pricing:    memory.PricingPortAdapter{Engine: domainpricing.NewEngine(domainpricing.DefaultRules())},
		Cache:      f.cache,
		CacheTTL:   time.Minute,
	}
	villa, err := domainproperties.NewProperty("villa-1", "Villa Kelapa", domainproperties.PricingProfile{
		BaseRate: money.Must(500000, "IDR"),
		Capacity: 2,
	}, time.Now())
	if err != nil {
		t.Fatalf("property: %v", err)
	}
	if err := f.properties.Save(context.Background(), villa); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return f
}

func TestQuoteStayPricesAndCaches(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	q := QuoteStayQuery{PropertyID: "villa-1", CheckIn: "2025-03-03", CheckOut: "2025-03-05", Guests: 2}

	first, err := f.handler.Handle(ctx, q)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if first.Cached || first.TotalNights != 2 || first.TotalAmount.Amount != "1110000.00" {
		t.Fatalf("unexpected quote %+v", first)
	}

	second, err := f.handler.Handle(ctx, q)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if !second.Cached || second.TotalAmount != first.TotalAmount {
		t.Fatalf("expected cached replay, got cached=%v total=%v", second.Cached, second.TotalAmount)
	}
}

func TestQuoteStayCacheFollowsSeasonalRates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	q := QuoteStayQuery{PropertyID: "villa-1", CheckIn: "2025-03-03", CheckOut: "2025-03-05"}

	if _, err := f.handler.Handle(ctx, q); err != nil {
		t.Fatalf("quote: %v", err)
	}
	err := f.rates.Save(ctx, domainpricing.SeasonalRate{
		ID:         1,
		PropertyID: "villa-1",
		Name:       "Festival",
		StartDate:  time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
		Type:       domainpricing.RateFixed,
		Value:      decimal.NewFromInt(600000),
		Active:     true,
	})
	if err != nil {
		t.Fatalf("save rate: %v", err)
	}
	repriced, err := f.handler.Handle(ctx, q)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if repriced.Cached || repriced.TotalBaseAmount.Amount != "1200000.00" || repriced.SeasonalNights != 2 {
		t.Fatalf("expected a fresh seasonal quote, got %+v", repriced)
	}
}

func TestQuoteStayErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.handler.Handle(ctx, QuoteStayQuery{PropertyID: "villa-404", CheckIn: "2025-03-03", CheckOut: "2025-03-05"})
	if !errors.Is(err, domainproperties.ErrPropertyNotFound) {
		t.Fatalf("expected ErrPropertyNotFound, got %v", err)
	}
	_, err = f.handler.Handle(ctx, QuoteStayQuery{PropertyID: "villa-1", CheckIn: "2025-03-05", CheckOut: "2025-03-03"})
	if !errors.Is(err, daterange.ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
	if _, err := (&QuoteStayHandler{}).Handle(ctx, QuoteStayQuery{}); !errors.Is(err, ErrPricingUnavailable) {
		t.Fatalf("expected ErrPricingUnavailable, got %v", err)
	}
}

func TestUpsertCommandsThroughTransaction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	box := memory.NewOutbox(nil)

	bus := commands.NewInMemoryBus()
	commands.RegisterHandler[UpsertPricingProfileCommand, *dto.PropertyAck](bus, UpsertPricingProfileKey, &UpsertPricingProfileHandler{Outbox: box})
	commands.RegisterHandler[UpsertSeasonalRateCommand, *dto.SeasonalRateAck](bus, UpsertSeasonalRateKey, &UpsertSeasonalRateHandler{})
	dispatch := middleware.ChainCommands(bus, middleware.Transaction(f.factory, nil))

	res, err := dispatch.Dispatch(ctx, UpsertPricingProfileCommand{
		PropertyID: "villa-1",
		Currency:   "idr",
		BaseRate:   "650000",
		Capacity:   4,
	})
	if err != nil {
		t.Fatalf("upsert profile: %v", err)
	}
	if ack := res.(*dto.PropertyAck); ack.Version != 2 {
		t.Fatalf("expected version 2, got %d", ack.Version)
	}
	if pending := box.Pending(); len(pending) != 1 || pending[0].Name != "property.pricing_updated" {
		t.Fatalf("expected a pricing event, got %+v", pending)
	}

	_, err = dispatch.Dispatch(ctx, UpsertSeasonalRateCommand{
		ID: 3, PropertyID: "villa-404", Name: "Lebaran", StartDate: "2025-03-28", EndDate: "2025-04-06",
		RateType: "percentage", RateValue: "25", Active: true,
	})
	if !errors.Is(err, domainproperties.ErrPropertyNotFound) {
		t.Fatalf("expected ErrPropertyNotFound, got %v", err)
	}
	_, err = dispatch.Dispatch(ctx, UpsertSeasonalRateCommand{
		ID: 3, PropertyID: "villa-1", Name: "Lebaran", StartDate: "2025-03-28", EndDate: "2025-04-06",
		RateType: "surge", RateValue: "25", Active: true,
	})
	if !errors.Is(err, domainpricing.ErrUnknownRateType) {
		t.Fatalf("expected ErrUnknownRateType, got %v", err)
	}
}

func TestParseWeekdays(t *testing.T) {
	days, err := ParseWeekdays([]string{"Fri", "saturday", " SUN "})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(days) != 3 || days[0] != time.Friday || days[1] != time.Saturday || days[2] != time.Sunday {
		t.Fatalf("unexpected days %v", days)
	}
	if _, err := ParseWeekdays([]string{"funday"}); !errors.Is(err, ErrUnknownWeekday) {
		t.Fatalf("expected ErrUnknownWeekday, got %v", err)
	}
}
