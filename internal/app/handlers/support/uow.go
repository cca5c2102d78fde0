package support

import (
	"context"

	"staydesk/internal/app/uow"
)

// ReadUnit returns the unit of work from ctx, or begins a read-only one. The
// returned done func is never nil and must be called when the caller finishes.
func ReadUnit(ctx context.Context, factory uow.UoWFactory) (uow.UnitOfWork, context.Context, func(), error) {
	if unit, ok := uow.FromContext(ctx); ok {
		return unit, ctx, func() {}, nil
	}
	if factory == nil {
		return nil, ctx, func() {}, uow.ErrUnitOfWorkMissing
	}
	unit, readCtx, err := uow.Begin(ctx, factory, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, ctx, func() {}, err
	}
	return unit, readCtx, func() { _ = unit.Rollback(readCtx) }, nil
}

// WriteUnit returns the unit opened by the transaction middleware.
func WriteUnit(ctx context.Context) (uow.UnitOfWork, error) {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	return unit, nil
}
