package memory

import (
	"context"
	"errors"

	"villarent/internal/app/uow"
	domaincalendar "villarent/internal/domain/calendar"
	domainvillas "villarent/internal/domain/villas"
)

// Factory wires in-memory repositories into a unit-of-work boundary.
type Factory struct {
	VillasRepo   domainvillas.Repository
	CalendarRepo domaincalendar.Repository
}

// ErrFactoryMisconfigured indicates missing repositories.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Begin returns a unit over the shared stores. No isolation is provided.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.VillasRepo == nil || f.CalendarRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{villas: f.VillasRepo, calendar: f.CalendarRepo}, nil
}

// Unit is a uow.UnitOfWork backed by in-memory stores.
type Unit struct {
	villas   domainvillas.Repository
	calendar domaincalendar.Repository
}

func (u *Unit) Villas() domainvillas.Repository {
	return u.villas
}

func (u *Unit) Calendar() domaincalendar.Repository {
	return u.calendar
}

func (u *Unit) Commit(ctx context.Context) error {
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	return nil
}
