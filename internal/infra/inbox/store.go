// Package inbox deduplicates broker deliveries per consumer group.
package inbox

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store claims event ids for one consumer. Claims expire after the retention
// window; a redelivery older than that is applied again and relies on the
// idempotency store.
type Store struct {
	col      *mongo.Collection
	consumer string
}

type claim struct {
	EventID    string    `bson:"event_id"`
	Consumer   string    `bson:"consumer"`
	ReceivedAt time.Time `bson:"received_at"`
}

func NewStore(ctx context.Context, db *mongo.Database, consumer string, retention time.Duration) (*Store, error) {
	col := db.Collection("app_inbox")
	models := []mongo.IndexModel{{
		Keys:    bson.D{{Key: "consumer", Value: 1}, {Key: "event_id", Value: 1}},
		Options: options.Index().SetName("consumer_event").SetUnique(true),
	}}
	if retention > 0 {
		models = append(models, mongo.IndexModel{
			Keys:    bson.D{{Key: "received_at", Value: 1}},
			Options: options.Index().SetName("received_at_ttl").SetExpireAfterSeconds(int32(retention / time.Second)),
		})
	}
	if _, err := col.Indexes().CreateMany(ctx, models); err != nil {
		return nil, err
	}
	return &Store{col: col, consumer: consumer}, nil
}

// Seen claims eventID and reports whether it had been claimed before.
func (s *Store) Seen(ctx context.Context, eventID string) (bool, error) {
	_, err := s.col.InsertOne(ctx, claim{EventID: eventID, Consumer: s.consumer, ReceivedAt: time.Now().UTC()})
	switch {
	case err == nil:
		return false, nil
	case mongo.IsDuplicateKeyError(err):
		return true, nil
	default:
		return false, err
	}
}

// Forget releases a claim so a redelivered event is processed again.
func (s *Store) Forget(ctx context.Context, eventID string) error {
	_, err := s.col.DeleteOne(ctx, bson.M{"consumer": s.consumer, "event_id": eventID})
	return err
}
