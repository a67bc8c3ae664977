package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	inboxCollection = "app_inbox"
	inboxRetention  = 30 * 24 * time.Hour
)

// Inbox records processed event ids per consumer.
type Inbox struct {
	col      *mongo.Collection
	consumer string
}

func NewInbox(db *mongo.Database, consumer string) *Inbox {
	return &Inbox{col: db.Collection(inboxCollection), consumer: consumer}
}

func (s *Inbox) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "event_id", Value: 1}, {Key: "consumer", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "received_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(inboxRetention.Seconds())),
		},
	})
	if err != nil {
		return fmt.Errorf("mongo: inbox indexes: %w", err)
	}
	return nil
}

func (s *Inbox) Seen(ctx context.Context, eventID string) (bool, error) {
	doc := bson.M{"event_id": eventID, "consumer": s.consumer, "received_at": time.Now().UTC()}
	_, err := s.col.InsertOne(ctx, doc)
	if err == nil {
		return false, nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return true, nil
	}
	return false, fmt.Errorf("mongo: inbox insert: %w", err)
}

func (s *Inbox) Forget(ctx context.Context, eventID string) error {
	if _, err := s.col.DeleteOne(ctx, bson.M{"event_id": eventID, "consumer": s.consumer}); err != nil {
		return fmt.Errorf("mongo: inbox delete: %w", err)
	}
	return nil
}
