package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

var (
	// ErrNotFound is returned when a lookup matches no document.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when an insert violates a unique index.
	ErrDuplicate = errors.New("duplicate key")
)

const serverSelectionTimeout = 20 * time.Second

// Connect opens a client for uri and pings the primary. The database named in
// the URI path wins over fallbackDB.
func Connect(ctx context.Context, uri, fallbackDB string) (*mongo.Client, *mongo.Database, error) {
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil {
		return nil, nil, fmt.Errorf("mongo uri: %w", err)
	}
	dbName := cs.Database
	if dbName == "" {
		dbName = fallbackDB
	}

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(serverSelectionTimeout))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, client.Database(dbName), nil
}

// EnsureIndexes creates the indexes the stores rely on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("users index: %w", err)
	}
	_, err = db.Collection(priceRequestsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user", Value: 1}, {Key: "requestDate", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("price requests index: %w", err)
	}
	return nil
}

// Redact strips credentials and options from a connection string for logging.
func Redact(uri string) string {
	if i := strings.LastIndex(uri, "@"); i >= 0 {
		uri = uri[i+1:]
	} else if i := strings.Index(uri, "://"); i >= 0 {
		uri = uri[i+3:]
	}
	if i := strings.IndexByte(uri, '?'); i >= 0 {
		uri = uri[:i]
	}
	return uri
}
