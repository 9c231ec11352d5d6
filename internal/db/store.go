package db

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNoSession = errors.New("session not found")
)

type Store struct {
	sessions *mongo.Collection
	users    *mongo.Collection
}

func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

func NewStore(database *mongo.Database) *Store {
	return &Store{
		sessions: database.Collection("attendance_sessions"),
		users:    database.Collection("users"),
	}
}

func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.sessions.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "qrCode", Value: 1}}},
		{Keys: bson.D{{Key: "facultyId", Value: 1}, {Key: "createdAt", Value: 1}}},
		{Keys: bson.D{{Key: "attendees", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: 1}}},
	})
	return err
}
