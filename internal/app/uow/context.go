package uow

import "context"

type unitKey struct{}

// ContextWithUnitOfWork returns ctx carrying unit so nested handlers share it.
func ContextWithUnitOfWork(ctx context.Context, unit UnitOfWork) context.Context {
	if unit == nil {
		return ctx
	}
	return context.WithValue(ctx, unitKey{}, unit)
}

// FromContext returns the unit stored by ContextWithUnitOfWork.
func FromContext(ctx context.Context) (UnitOfWork, bool) {
	unit, ok := ctx.Value(unitKey{}).(UnitOfWork)
	return unit, ok && unit != nil
}
