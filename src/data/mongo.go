package data

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo is a lazily connected, shared MongoDB handle.
type Mongo struct {
	uri    string
	dbName string

	mu     sync.Mutex
	client *mongo.Client
	db     *mongo.Database
}

func NewMongo(uri, dbName string) *Mongo {
	return &Mongo{uri: uri, dbName: dbName}
}

// Database connects on first use and returns the same handle afterwards.
func (m *Mongo) Database(ctx context.Context) (*mongo.Database, error) {
	if m == nil || m.uri == "" {
		return nil, fmt.Errorf("data: MONGO_URI is not set")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.db != nil {
		return m.db, nil
	}

	opts := options.Client().
		ApplyURI(m.uri).
		SetServerSelectionTimeout(3 * time.Second).
		SetConnectTimeout(3 * time.Second)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("data: mongo connect: %w", err)
	}

	m.client = client
	m.db = client.Database(m.dbName)
	log.Printf("data: mongo client ready for %s", m.dbName)
	return m.db, nil
}

func (m *Mongo) Close(ctx context.Context) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client != nil {
		if err := m.client.Disconnect(ctx); err != nil {
			log.Printf("data: mongo disconnect: %v", err)
		}
		m.client, m.db = nil, nil
	}
}
