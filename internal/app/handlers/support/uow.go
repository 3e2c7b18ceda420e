package support

import (
	"context"

	"staybook/internal/app/uow"
)

// BeginUnit reuses a unit of work already stashed in context (the
// Transaction middleware path) or starts one from the factory. The
// returned cleanup rolls back self-managed units; commit stays with the
// caller.
func BeginUnit(ctx context.Context, factory uow.UoWFactory, opts uow.TxOptions) (uow.UnitOfWork, context.Context, func(), bool, error) {
	if unit, ok := uow.FromContext(ctx); ok {
		return unit, ctx, nil, false, nil
	}
	if factory == nil {
		return nil, ctx, nil, false, uow.ErrUnitOfWorkMissing
	}
	unit, err := factory.Begin(ctx, opts)
	if err != nil {
		return nil, ctx, nil, false, err
	}
	execCtx := ctx
	if injector, ok := unit.(interface {
		InjectContext(context.Context) context.Context
	}); ok {
		execCtx = injector.InjectContext(ctx)
	}
	execCtx = uow.ContextWithUnitOfWork(execCtx, unit)
	cleanup := func() {
		_ = unit.Rollback(execCtx)
	}
	return unit, execCtx, cleanup, true, nil
}

// BeginReadOnlyUnit is BeginUnit for queries.
func BeginReadOnlyUnit(ctx context.Context, factory uow.UoWFactory) (uow.UnitOfWork, context.Context, func(), error) {
	unit, execCtx, cleanup, _, err := BeginUnit(ctx, factory, uow.TxOptions{ReadOnly: true})
	return unit, execCtx, cleanup, err
}
