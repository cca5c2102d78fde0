package middleware

import (
	"log/slog"

	"staydesk/internal/app/commands"
	"staydesk/internal/app/outbox"
	"staydesk/internal/app/queries"
	"staydesk/internal/app/uow"
)

type CommandMiddleware func(next commands.Bus) commands.Bus

type QueryMiddleware func(next queries.Bus) queries.Bus

// ChainCommands wraps base so that mws[0] sees the command first.
func ChainCommands(base commands.Bus, mws ...CommandMiddleware) commands.Bus {
	return chain(base, mws)
}

func ChainQueries(base queries.Bus, mws ...QueryMiddleware) queries.Bus {
	return chain(base, mws)
}

func chain[B any, M ~func(B) B](base B, mws []M) B {
	for i := len(mws) - 1; i >= 0; i-- {
		base = mws[i](base)
	}
	return base
}

// CommandPipeline assembles the write path in its fixed order: logging,
// validation, idempotency, outbox flush, transaction. The flush wraps the
// transaction so records leave only after a commit. Stages whose dependency
// is nil are left out, except the transaction which is required.
type CommandPipeline struct {
	Logger      *slog.Logger
	Validator   Validator
	Idempotency IdempotencyStore
	Factory     uow.UoWFactory
	Outbox      outbox.Outbox
}

func (p CommandPipeline) Build(base commands.Bus) commands.Bus {
	mws := []CommandMiddleware{Logging(p.Logger)}
	if p.Validator != nil {
		mws = append(mws, Validation(p.Validator))
	}
	if p.Idempotency != nil {
		mws = append(mws, Idempotency(p.Idempotency, nil))
	}
	if p.Outbox != nil {
		mws = append(mws, OutboxFlush(p.Outbox, p.Logger))
	}
	mws = append(mws, Transaction(p.Factory, nil))
	return ChainCommands(base, mws...)
}

// QueryPipeline assembles the read path: logging then validation.
type QueryPipeline struct {
	Logger    *slog.Logger
	Validator Validator
}

func (p QueryPipeline) Build(base queries.Bus) queries.Bus {
	mws := []QueryMiddleware{QueryLogging(p.Logger)}
	if p.Validator != nil {
		mws = append(mws, QueryValidation(p.Validator))
	}
	return ChainQueries(base, mws...)
}
