package middleware

import (
	"context"

	"staydesk/internal/app/commands"
	"staydesk/internal/app/uow"
)

// TxOptionsFor picks transaction options per command; nil means defaults.
type TxOptionsFor func(cmd commands.Command) uow.TxOptions

// Transaction opens a unit of work per command and commits it only when the
// handler succeeds. Nested dispatches join the unit already in ctx.
func Transaction(factory uow.UoWFactory, optionsFor TxOptionsFor) CommandMiddleware {
	if factory == nil {
		panic("middleware: uow factory required")
	}
	return func(next commands.Bus) commands.Bus {
		return commands.BusFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			if _, joined := uow.FromContext(ctx); joined {
				return next.Dispatch(ctx, cmd)
			}
			var opts uow.TxOptions
			if optionsFor != nil {
				opts = optionsFor(cmd)
			}
			unit, txCtx, err := uow.Begin(ctx, factory, opts)
			if err != nil {
				return nil, err
			}
			res, err := next.Dispatch(txCtx, cmd)
			if err != nil {
				_ = unit.Rollback(txCtx)
				return nil, err
			}
			if err := unit.Commit(txCtx); err != nil {
				_ = unit.Rollback(txCtx)
				return nil, err
			}
			return res, nil
		})
	}
}
