package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/teambots/teambots/src/data"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collection   = "tasks"
	writeTimeout = 3 * time.Second
)

type document struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    int64              `bson:"user_id"`
	Type      string             `bson:"type"`
	Action    string             `bson:"action"`
	Tag       string             `bson:"tag"`
	Deadline  string             `bson:"deadline"`
	Status    string             `bson:"status"`
	CreatedAt time.Time          `bson:"created_at"`
}

func (d document) task() Task {
	return Task{
		ID:        d.ID.Hex(),
		UserID:    d.UserID,
		Type:      d.Type,
		Action:    d.Action,
		Tag:       d.Tag,
		Deadline:  d.Deadline,
		Status:    Status(d.Status),
		CreatedAt: d.CreatedAt,
	}
}

// MongoStore keeps tasks in the "tasks" collection.
type MongoStore struct {
	mongo *data.Mongo
}

func NewMongoStore(m *data.Mongo) *MongoStore {
	return &MongoStore{mongo: m}
}

func (s *MongoStore) coll(ctx context.Context) (*mongo.Collection, error) {
	db, err := s.mongo.Database(ctx)
	if err != nil {
		return nil, err
	}
	return db.Collection(collection), nil
}

func (s *MongoStore) Add(ctx context.Context, t Task) (Task, error) {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	c, err := s.coll(ctx)
	if err != nil {
		return Task{}, fmt.Errorf("tasks: add: %w", err)
	}
	t = normalize(t)
	doc := document{
		UserID:    t.UserID,
		Type:      t.Type,
		Action:    t.Action,
		Tag:       t.Tag,
		Deadline:  t.Deadline,
		Status:    string(t.Status),
		CreatedAt: t.CreatedAt,
	}
	res, err := c.InsertOne(ctx, doc)
	if err != nil {
		return Task{}, fmt.Errorf("tasks: add: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = id
	}
	return doc.task(), nil
}

func (s *MongoStore) Active(ctx context.Context, user int64, limit int) ([]Task, error) {
	c, err := s.coll(ctx)
	if err != nil {
		return nil, fmt.Errorf("tasks: active: %w", err)
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(clampLimit(limit)))
	cur, err := c.Find(ctx, bson.M{"user_id": user, "status": string(Pending)}, opts)
	if err != nil {
		return nil, fmt.Errorf("tasks: active: %w", err)
	}
	var docs []document
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("tasks: active: %w", err)
	}
	out := make([]Task, len(docs))
	for i, d := range docs {
		out[i] = d.task()
	}
	return out, nil
}

func (s *MongoStore) MarkDone(ctx context.Context, user int64, index int) (Task, error) {
	active, err := s.Active(ctx, user, DefaultLimit)
	if err != nil {
		return Task{}, err
	}
	target, err := pick(active, index)
	if err != nil {
		return Task{}, err
	}
	id, err := primitive.ObjectIDFromHex(target.ID)
	if err != nil {
		return Task{}, fmt.Errorf("tasks: mark done: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	c, err := s.coll(ctx)
	if err != nil {
		return Task{}, fmt.Errorf("tasks: mark done: %w", err)
	}
	res, err := c.UpdateOne(ctx,
		bson.M{"_id": id, "status": string(Pending)},
		bson.M{"$set": bson.M{"status": string(Done)}},
	)
	if err != nil {
		return Task{}, fmt.Errorf("tasks: mark done: %w", err)
	}
	if res.ModifiedCount == 0 {
		return Task{}, ErrNoSuchTask
	}
	target.Status = Done
	return target, nil
}

func (s *MongoStore) Stats(ctx context.Context) (Stats, error) {
	c, err := s.coll(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("tasks: stats: %w", err)
	}
	var st Stats
	if st.Total, err = c.CountDocuments(ctx, bson.M{}); err != nil {
		return Stats{}, fmt.Errorf("tasks: stats: %w", err)
	}
	if st.Pending, err = c.CountDocuments(ctx, bson.M{"status": string(Pending)}); err != nil {
		return Stats{}, fmt.Errorf("tasks: stats: %w", err)
	}
	return st, nil
}
