package uow

import (
	"context"
	"errors"
)

// ErrUnitOfWorkMissing is returned when a handler needs a unit of work
// but neither the context nor a factory can supply one.
var ErrUnitOfWorkMissing = errors.New("uow: no unit of work available")

type unitKey struct{}

// ContextWithUnitOfWork stashes the open unit so nested handlers join
// the same transaction boundary instead of opening their own.
func ContextWithUnitOfWork(ctx context.Context, unit UnitOfWork) context.Context {
	return context.WithValue(ctx, unitKey{}, unit)
}

// FromContext returns the unit stashed by the transaction middleware,
// if any.
func FromContext(ctx context.Context) (UnitOfWork, bool) {
	unit, ok := ctx.Value(unitKey{}).(UnitOfWork)
	return unit, ok
}
