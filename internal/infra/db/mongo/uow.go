package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"villarent/internal/app/uow"
	domaincalendar "villarent/internal/domain/calendar"
	domainvillas "villarent/internal/domain/villas"
)

// Factory wires Mongo sessions into the generic UnitOfWork interface.
type Factory struct {
	DB *mongo.Database

	VillasRepo   domainvillas.Repository
	CalendarRepo domaincalendar.Repository
}

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// NewFactory builds a factory over the villa and calendar collections of db.
func NewFactory(db *mongo.Database) Factory {
	return Factory{
		DB:           db,
		VillasRepo:   NewVillaRepository(db),
		CalendarRepo: NewCalendarRepository(db),
	}
}

// Begin starts a session. Read-only units skip the transaction so they work
// against standalone servers as well as replica sets.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil || f.VillasRepo == nil || f.CalendarRepo == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, fmt.Errorf("mongo: start session: %w", err)
	}
	unit := &Unit{session: session, villas: f.VillasRepo, calendar: f.CalendarRepo}
	if !opts.ReadOnly {
		txnOpts := options.Transaction().SetReadConcern(f.DB.ReadConcern()).SetWriteConcern(f.DB.WriteConcern())
		if err := session.StartTransaction(txnOpts); err != nil {
			session.EndSession(ctx)
			return nil, fmt.Errorf("mongo: start transaction: %w", err)
		}
		unit.inTxn = true
	}
	return unit, nil
}

type Unit struct {
	session mongo.Session
	inTxn   bool

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
	defer u.session.EndSession(ctx)
	if !u.inTxn {
		return nil
	}
	return u.session.CommitTransaction(ctx)
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	if !u.inTxn {
		return nil
	}
	return u.session.AbortTransaction(ctx)
}

// InjectContext ensures Mongo session is available in context for downstream repos.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}
