// Package store persists the bot's channels, known users and films in
// MongoDB. Uniqueness is enforced with unique indexes; callers see the
// violations as ErrDuplicate.
package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var (
	// ErrNotFound is returned when a lookup or strict delete misses.
	ErrNotFound = errors.New("store: not found")
	// ErrDuplicate is returned when an insert violates a unique index.
	ErrDuplicate = errors.New("store: duplicate key")
)

const (
	channelsCollection = "channels"
	usersCollection    = "users"
	filmsCollection    = "films"
)

// Store bundles the per-collection repositories over one Mongo database.
type Store struct {
	client *mongo.Client

	Channels Channels
	Users    Users
	Films    Films
}

// Connect dials MongoDB, verifies the connection and ensures the unique
// indexes the data model relies on. This is the only place a store
// failure is fatal; after boot every store error degrades to a reply.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(database)
	s := &Store{
		client:   client,
		Channels: &mongoChannels{coll: db.Collection(channelsCollection)},
		Users:    &mongoUsers{coll: db.Collection(usersCollection)},
		Films:    &mongoFilms{coll: db.Collection(filmsCollection)},
	}

	if err := s.ensureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)

	_, err := db.Collection(channelsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "chatId", Value: 1}}, Options: unique},
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique},
	})
	if err != nil {
		return fmt.Errorf("ensure channel indexes: %w", err)
	}

	_, err = db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "chatId", Value: 1}}, Options: unique,
	})
	if err != nil {
		return fmt.Errorf("ensure user index: %w", err)
	}

	_, err = db.Collection(filmsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "code", Value: 1}}, Options: unique},
		{Keys: bson.D{{Key: "url", Value: 1}}, Options: unique},
	})
	if err != nil {
		return fmt.Errorf("ensure film indexes: %w", err)
	}
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// mapWriteErr converts driver errors to the store's sentinel errors.
func mapWriteErr(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}
