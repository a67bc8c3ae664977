package uow

import (
	"context"
	"errors"

	domaincalendar "villarent/internal/domain/calendar"
	domainvillas "villarent/internal/domain/villas"
)

// ErrUnitOfWorkMissing is returned when neither a bound unit nor a factory is available.
var ErrUnitOfWorkMissing = errors.New("uow: unit of work missing")

// UnitOfWork scopes the repositories used by one request.
type UnitOfWork interface {
	Villas() domainvillas.Repository
	Calendar() domaincalendar.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries. Availability and quote queries
// always begin ReadOnly units.
type TxOptions struct {
	ReadOnly bool
}
