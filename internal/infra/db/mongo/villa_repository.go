package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"villarent/internal/domain/shared/money"
	domainvillas "villarent/internal/domain/villas"
)

const villasCollection = "villas"

type VillaRepository struct {
	col *mongo.Collection
}

func NewVillaRepository(db *mongo.Database) *VillaRepository {
	return &VillaRepository{col: db.Collection(villasCollection)}
}

func (r *VillaRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "location", Value: 1}}})
	if err != nil {
		return fmt.Errorf("mongo: villa indexes: %w", err)
	}
	return nil
}

func (r *VillaRepository) ByID(ctx context.Context, id domainvillas.VillaID) (*domainvillas.Villa, error) {
	var doc villaDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainvillas.ErrVillaNotFound
		}
		return nil, fmt.Errorf("mongo: find villa %s: %w", id, err)
	}
	return doc.toVilla(), nil
}

func (r *VillaRepository) List(ctx context.Context, filter domainvillas.Filter) ([]*domainvillas.Villa, error) {
	return r.find(ctx, locationFilter(bson.M{}, filter))
}

func (r *VillaRepository) ByIDs(ctx context.Context, ids []domainvillas.VillaID, filter domainvillas.Filter) ([]*domainvillas.Villa, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	raw := make([]string, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, string(id))
	}
	return r.find(ctx, locationFilter(bson.M{"_id": bson.M{"$in": raw}}, filter))
}

func (r *VillaRepository) find(ctx context.Context, query bson.M) ([]*domainvillas.Villa, error) {
	cur, err := r.col.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("mongo: find villas: %w", err)
	}
	var docs []villaDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo: decode villas: %w", err)
	}
	out := make([]*domainvillas.Villa, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.toVilla())
	}
	return out, nil
}

func (r *VillaRepository) Upsert(ctx context.Context, villa *domainvillas.Villa) error {
	now := time.Now().UTC()
	createdAt := villa.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	update := bson.M{
		"$set": bson.M{
			"name":       villa.Name,
			"location":   villa.Location,
			"base_price": villa.BasePrice.Int64(),
			"updated_at": now,
		},
		"$setOnInsert": bson.M{"created_at": createdAt},
	}
	if _, err := r.col.UpdateByID(ctx, string(villa.ID), update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("mongo: upsert villa %s: %w", villa.ID, err)
	}
	return nil
}

// Reset removes every villa.
func (r *VillaRepository) Reset(ctx context.Context) error {
	_, err := r.col.DeleteMany(ctx, bson.M{})
	return err
}

func locationFilter(query bson.M, filter domainvillas.Filter) bson.M {
	if filter.Location != "" {
		query["location"] = filter.Location
	}
	return query
}

type villaDocument struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Location  string    `bson:"location"`
	BasePrice int64     `bson:"base_price"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func (d villaDocument) toVilla() *domainvillas.Villa {
	return &domainvillas.Villa{
		ID:        domainvillas.VillaID(d.ID),
		Name:      d.Name,
		Location:  d.Location,
		BasePrice: money.Amount(d.BasePrice),
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

var (
	_ domainvillas.Repository = (*VillaRepository)(nil)
	_ domainvillas.Writer     = (*VillaRepository)(nil)
)
