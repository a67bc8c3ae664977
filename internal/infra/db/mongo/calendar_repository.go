package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domaincalendar "villarent/internal/domain/calendar"
	"villarent/internal/domain/shared/daterange"
	"villarent/internal/domain/shared/money"
	domainvillas "villarent/internal/domain/villas"
)

const calendarCollection = "calendars"

type CalendarRepository struct {
	col *mongo.Collection
}

func NewCalendarRepository(db *mongo.Database) *CalendarRepository {
	return &CalendarRepository{col: db.Collection(calendarCollection)}
}

// EnsureIndexes enforces one row per villa and day.
func (r *CalendarRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "villa_id", Value: 1}, {Key: "date", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("mongo: calendar indexes: %w", err)
	}
	return nil
}

func (r *CalendarRepository) InRange(ctx context.Context, dr daterange.DateRange, villa domainvillas.VillaID) ([]domaincalendar.Entry, error) {
	query := bson.M{"date": bson.M{"$gte": dr.CheckIn, "$lt": dr.CheckOut}}
	if villa != "" {
		query["villa_id"] = string(villa)
	}
	opts := options.Find().SetSort(bson.D{{Key: "villa_id", Value: 1}, {Key: "date", Value: 1}})
	cur, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: find calendar: %w", err)
	}
	var docs []calendarDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo: decode calendar: %w", err)
	}
	out := make([]domaincalendar.Entry, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.toEntry())
	}
	return out, nil
}

// Upsert writes entries in one unordered bulk, replacing rows of the same villa and day.
func (r *CalendarRepository) Upsert(ctx context.Context, entries []domaincalendar.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	models := make([]mongo.WriteModel, 0, len(entries))
	for _, e := range entries {
		day := daterange.Day(e.Date)
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"villa_id": string(e.VillaID), "date": day}).
			SetUpdate(bson.M{"$set": bson.M{"is_available": e.Available, "rate": e.Rate.Int64()}}).
			SetUpsert(true))
	}
	if _, err := r.col.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("mongo: upsert calendar: %w", err)
	}
	return nil
}

// Reset removes every calendar row.
func (r *CalendarRepository) Reset(ctx context.Context) error {
	_, err := r.col.DeleteMany(ctx, bson.M{})
	return err
}

type calendarDocument struct {
	VillaID   string    `bson:"villa_id"`
	Date      time.Time `bson:"date"`
	Available bool      `bson:"is_available"`
	Rate      int64     `bson:"rate"`
}

func (d calendarDocument) toEntry() domaincalendar.Entry {
	return domaincalendar.Entry{
		VillaID:   domainvillas.VillaID(d.VillaID),
		Date:      daterange.Day(d.Date),
		Available: d.Available,
		Rate:      money.Amount(d.Rate),
	}
}

var (
	_ domaincalendar.Repository = (*CalendarRepository)(nil)
	_ domaincalendar.Writer     = (*CalendarRepository)(nil)
)
