package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"staydesk/internal/app/commands"
	"staydesk/internal/app/dto"
	availabilityapp "staydesk/internal/app/handlers/availability"
	pricingapp "staydesk/internal/app/handlers/pricing"
	"staydesk/internal/app/middleware"
	appoutbox "staydesk/internal/app/outbox"
	"staydesk/internal/app/policies"
	"staydesk/internal/app/queries"
	"staydesk/internal/app/uow"
	"staydesk/internal/app/validation"
	domainavailability "staydesk/internal/domain/availability"
	domainpricing "staydesk/internal/domain/pricing"
	"staydesk/internal/infra/broker/kafka"
	rediscache "staydesk/internal/infra/cache/redis"
	"staydesk/internal/infra/config"
	mongostore "staydesk/internal/infra/db/mongo"
	ginserver "staydesk/internal/infra/http/gin"
	"staydesk/internal/infra/inbox"
	"staydesk/internal/infra/obs"
	infraoutbox "staydesk/internal/infra/outbox"
	"staydesk/internal/infra/projection"
	"staydesk/internal/infra/storage/memory"
)

type task struct {
	name string
	fn   func(ctx context.Context) error
}

type application struct {
	handlers   ginserver.Handlers
	health     obs.HealthHandlers
	commands   commands.Bus
	queries    queries.Bus
	background []task
	closers    []func(ctx context.Context) error
}

// infrastructure is the storage-mode specific part of the wiring.
type infrastructure struct {
	factory     uow.UoWFactory
	outbox      appoutbox.Outbox
	idempotency middleware.IdempotencyStore
	inbox       projection.Inbox
	checks      map[string]obs.Check
	background  []task
	closers     []func(ctx context.Context) error
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (*application, error) {
	rules := domainpricing.LoadRules(cfg.PricingRules, logger)
	engine := domainpricing.NewEngine(rules)

	var (
		infra *infrastructure
		err   error
	)
	switch cfg.StorageMode {
	case config.StorageMongo:
		infra, err = mongoInfrastructure(ctx, cfg, logger)
	default:
		infra = memoryInfrastructure(cfg, logger)
	}
	if err != nil {
		return nil, err
	}

	cache, cacheChecks, cacheCloser := quoteCache(cfg, logger)
	for name, check := range cacheChecks {
		infra.checks[name] = check
	}
	if cacheCloser != nil {
		infra.closers = append(infra.closers, cacheCloser)
	}

	checker := &domainavailability.Checker{Logger: logger}
	encoder := appoutbox.JSONEventEncoder{Headers: map[string]string{"producer": "staydesk"}}
	validator := validation.New()

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler[pricingapp.UpsertPricingProfileCommand, *dto.PropertyAck](commandBus, pricingapp.UpsertPricingProfileKey,
		&pricingapp.UpsertPricingProfileHandler{Outbox: infra.outbox, Encoder: encoder})
	commands.RegisterHandler[pricingapp.UpsertSeasonalRateCommand, *dto.SeasonalRateAck](commandBus, pricingapp.UpsertSeasonalRateKey,
		&pricingapp.UpsertSeasonalRateHandler{})
	commands.RegisterHandler[availabilityapp.RecordBookingIntervalCommand, *dto.IntervalAck](commandBus, availabilityapp.RecordBookingIntervalKey,
		&availabilityapp.RecordBookingIntervalHandler{Outbox: infra.outbox, Encoder: encoder, Logger: logger})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler[pricingapp.QuoteStayQuery, dto.RateQuote](queryBus, pricingapp.QuoteStayKey, &pricingapp.QuoteStayHandler{
		UoWFactory:     infra.factory,
		Pricing:        memory.PricingPortAdapter{Engine: engine},
		Cache:          cache,
		CacheTTL:       cfg.QuoteCacheTTL,
		CacheNamespace: rulesFingerprint(rules),
		Logger:         logger,
	})
	queries.RegisterHandler[availabilityapp.CheckAvailabilityQuery, dto.Availability](queryBus, availabilityapp.CheckAvailabilityKey,
		&availabilityapp.CheckAvailabilityHandler{UoWFactory: infra.factory, Checker: checker, Logger: logger})
	queries.RegisterHandler[availabilityapp.BookedDatesQuery, dto.BookedDates](queryBus, availabilityapp.BookedDatesKey,
		&availabilityapp.BookedDatesHandler{UoWFactory: infra.factory, Checker: checker})

	commandBusWithMiddleware := middleware.CommandPipeline{
		Logger:      logger,
		Validator:   validator,
		Idempotency: infra.idempotency,
		Factory:     infra.factory,
		Outbox:      infra.outbox,
	}.Build(commandBus)
	queryBusWithMiddleware := middleware.QueryPipeline{Logger: logger, Validator: validator}.Build(queryBus)
	logger.Info("buses ready", "commands", commandBus.Describe(), "queries", queryBus.Keys())

	app := &application{
		handlers: ginserver.Handlers{
			Pricing:      ginserver.PricingHandler{Queries: queryBusWithMiddleware, Logger: logger},
			Availability: ginserver.AvailabilityHandler{Queries: queryBusWithMiddleware, Logger: logger},
		},
		health:     obs.HealthHandlers{Checks: infra.checks},
		commands:   commandBusWithMiddleware,
		queries:    queryBusWithMiddleware,
		background: infra.background,
		closers:    infra.closers,
	}

	if cfg.StorageMode == config.StorageMongo && cfg.KafkaConsume {
		consumerTask, closer, err := projectionConsumer(cfg, commandBusWithMiddleware, infra.inbox, logger)
		if err != nil {
			app.close(logger)
			return nil, err
		}
		app.background = append(app.background, consumerTask)
		app.closers = append(app.closers, closer)
	}
	return app, nil
}

func memoryInfrastructure(cfg config.Config, logger *slog.Logger) *infrastructure {
	box := memory.NewOutbox(func(ctx context.Context, rec appoutbox.EventRecord) error {
		logger.InfoContext(ctx, "domain event", "event", rec.Name, "aggregate", rec.Aggregate, "event_id", rec.ID)
		return nil
	})
	return &infrastructure{
		factory: memory.Factory{
			PropertiesRepo:    memory.NewPropertyRepository(),
			SeasonalRatesRepo: memory.NewSeasonalRateRepository(),
			BookingsRepo:      memory.NewBookingRepository(),
		},
		outbox:      box,
		idempotency: memory.NewIdempotencyStore(cfg.IdempotencyTTL),
		inbox:       memory.NewInbox(),
		checks:      map[string]obs.Check{},
	}
}

func mongoInfrastructure(ctx context.Context, cfg config.Config, logger *slog.Logger) (*infrastructure, error) {
	client, err := mongostore.New(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	db := client.DB
	fail := func(step string, err error) (*infrastructure, error) {
		_ = client.Close(context.Background())
		return nil, fmt.Errorf("%s: %w", step, err)
	}
	store := infraoutbox.NewStore(db)
	if err := store.EnsureIndexes(ctx); err != nil {
		return fail("outbox indexes", err)
	}
	idempotency, err := mongostore.NewIdempotencyStore(ctx, db, cfg.IdempotencyTTL)
	if err != nil {
		return fail("idempotency store", err)
	}
	dedupe, err := inbox.NewStore(ctx, db, cfg.KafkaConsumerGroup, cfg.IdempotencyTTL)
	if err != nil {
		return fail("inbox store", err)
	}

	producer, err := kafka.NewProducer(cfg.KafkaBrokers, "staydesk-outbox", nil)
	if err != nil {
		return fail("kafka producer", err)
	}
	worker := &infraoutbox.Worker{
		Store:       store,
		Producer:    producer,
		Interval:    cfg.OutboxPollInterval,
		TopicPrefix: cfg.KafkaTopicPrefix,
		ID:          "staydesk-" + uuid.NewString(),
		Backoff:     cfg.RetryBackoff,
		Retention:   cfg.OutboxRetention,
		Logger:      logger,
	}

	return &infrastructure{
		factory: mongostore.Factory{
			DB:                db,
			PropertiesRepo:    mongostore.NewPropertyRepository(db),
			SeasonalRatesRepo: mongostore.NewSeasonalRateRepository(db),
			BookingsRepo:      mongostore.NewBookingIntervalRepository(db),
		},
		outbox:      store,
		idempotency: idempotency,
		inbox:       dedupe,
		checks:      map[string]obs.Check{"mongo": client.Ping},
		background:  []task{{name: "outbox-worker", fn: worker.Run}},
		closers: []func(ctx context.Context) error{
			func(context.Context) error { return producer.Close() },
			client.Close,
		},
	}, nil
}

func quoteCache(cfg config.Config, logger *slog.Logger) (policies.QuoteCache, map[string]obs.Check, func(ctx context.Context) error) {
	if cfg.RedisAddr == "" {
		logger.Info("quote cache in memory")
		return memory.NewQuoteCache(), nil, nil
	}
	client := rediscache.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	logger.Info("quote cache in redis", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
	checks := map[string]obs.Check{"redis": func(ctx context.Context) error { return rediscache.Ping(ctx, client) }}
	return &rediscache.QuoteCache{Store: client}, checks, func(context.Context) error { return client.Close() }
}

func projectionConsumer(cfg config.Config, bus commands.Bus, dedupe projection.Inbox, logger *slog.Logger) (task, func(ctx context.Context) error, error) {
	handler := &projection.Handler{Bus: bus, Inbox: dedupe, Logger: logger}
	consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaConsumerGroup, nil, handler, logger)
	if err != nil {
		return task{}, nil, fmt.Errorf("kafka consumer: %w", err)
	}
	run := func(ctx context.Context) error { return consumer.Run(ctx, cfg.KafkaTopics) }
	return task{name: "projection-consumer", fn: run}, func(context.Context) error { return consumer.Close() }, nil
}

// rulesFingerprint namespaces cached quotes by the rule table they were priced under.
func rulesFingerprint(rules domainpricing.Rules) string {
	raw, err := json.Marshal(rules)
	if err != nil {
		return "default"
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:6])
}

func (a *application) close(logger *slog.Logger) {
	ctx := context.Background()
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			logger.Warn("shutdown step failed", "error", err)
		}
	}
}
