package support

import (
	"context"
	"fmt"

	"villarent/internal/app/uow"
)

// SessionBinder is implemented by units whose repositories read their
// session from the context, such as the Mongo unit.
type SessionBinder interface {
	InjectContext(ctx context.Context) context.Context
}

// Read runs fn against a read-only unit. A unit already bound to ctx is
// shared and left open; otherwise one is begun from factory and rolled back
// once fn returns.
func Read[T any](ctx context.Context, factory uow.UoWFactory, fn func(context.Context, uow.UnitOfWork) (T, error)) (T, error) {
	if unit, ok := uow.FromContext(ctx); ok {
		return fn(ctx, unit)
	}
	var zero T
	if factory == nil {
		return zero, uow.ErrUnitOfWorkMissing
	}
	unit, err := factory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return zero, fmt.Errorf("begin read: %w", err)
	}
	scoped := ctx
	if binder, ok := unit.(SessionBinder); ok {
		scoped = binder.InjectContext(scoped)
	}
	scoped = uow.ContextWithUnitOfWork(scoped, unit)
	// nothing is written, so the rollback error carries no information
	defer func() { _ = unit.Rollback(scoped) }()
	return fn(scoped, unit)
}
