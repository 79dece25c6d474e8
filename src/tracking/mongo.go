package tracking

import (
	"context"
	"fmt"
	"time"

	"github.com/teambots/teambots/src/data"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoTracker upserts into the "users" collection keyed by Telegram id.
type MongoTracker struct {
	mongo *data.Mongo
}

func NewMongoTracker(m *data.Mongo) *MongoTracker {
	return &MongoTracker{mongo: m}
}

func (t *MongoTracker) Touch(ctx context.Context, u User) error {
	db, err := t.mongo.Database(ctx)
	if err != nil {
		return fmt.Errorf("tracking: touch: %w", err)
	}
	now := time.Now().UTC()
	_, err = db.Collection("users").UpdateOne(ctx,
		bson.M{"_id": u.ID},
		bson.M{
			"$set":         bson.M{"username": u.Username, "first_name": u.FirstName, "last_active_at": now},
			"$setOnInsert": bson.M{"joined_at": now},
			"$inc":         bson.M{"interaction_count": 1},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("tracking: touch: %w", err)
	}
	return nil
}

func (t *MongoTracker) Stats(ctx context.Context) (Stats, error) {
	db, err := t.mongo.Database(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("tracking: stats: %w", err)
	}
	users := db.Collection("users")
	now := time.Now().UTC()
	var st Stats
	if st.Total, err = users.CountDocuments(ctx, bson.M{}); err != nil {
		return Stats{}, fmt.Errorf("tracking: stats: %w", err)
	}
	if st.Day, err = users.CountDocuments(ctx, bson.M{"last_active_at": bson.M{"$gte": now.Add(-24 * time.Hour)}}); err != nil {
		return Stats{}, fmt.Errorf("tracking: stats: %w", err)
	}
	if st.Week, err = users.CountDocuments(ctx, bson.M{"last_active_at": bson.M{"$gte": now.Add(-7 * 24 * time.Hour)}}); err != nil {
		return Stats{}, fmt.Errorf("tracking: stats: %w", err)
	}
	return st, nil
}
