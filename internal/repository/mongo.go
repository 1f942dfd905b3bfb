package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoConnectTimeout = 10 * time.Second

// NewMongoStore connects to MongoDB, ensures the ledger indexes and returns
// the Mongo backed repositories
func NewMongoStore(ctx context.Context, uri, database string, logger *slog.Logger) (*Store, error) {
	connectCtx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(database)
	if err := EnsureIndexes(connectCtx, db, logger); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	return &Store{
		Rooms:        NewRoomRepo(db),
		Participants: NewParticipantRepo(db),
		Users:        NewUserRepo(db),
		Ping: func(ctx context.Context) error {
			return client.Ping(ctx, nil)
		},
		Close: client.Disconnect,
	}, nil
}

// EnsureIndexes creates the indexes the ledger's atomicity depends on
func EnsureIndexes(ctx context.Context, db *mongo.Database, logger *slog.Logger) error {
	participants := db.Collection("participants")
	if err := createIndex(ctx, participants, bson.D{
		{Key: "roomId", Value: 1},
		{Key: "userId", Value: 1},
	}, true); err != nil {
		return err
	}
	if err := createIndex(ctx, participants, bson.D{
		{Key: "roomId", Value: 1},
		{Key: "status", Value: 1},
		{Key: "joinedAt", Value: 1},
	}, false); err != nil {
		return err
	}
	if err := createIndex(ctx, db.Collection("interviews"), bson.D{{Key: "createdBy", Value: 1}}, false); err != nil {
		return err
	}

	logger.Debug("mongo indexes ensured", "database", db.Name())
	return nil
}

func createIndex(ctx context.Context, coll *mongo.Collection, keys bson.D, unique bool) error {
	opts := options.Index().SetUnique(unique)
	if _, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: keys, Options: opts}); err != nil {
		return fmt.Errorf("failed to create index on %s: %w", coll.Name(), err)
	}
	return nil
}
