package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

// User records a chat id the bot has seen at least once. Used only for
// aggregate counting.
type User struct {
	ChatID string `bson:"chatId"`
}

type Users interface {
	// Ensure creates the user record if absent. Racing creations are
	// resolved by the unique index; the loser's duplicate error is
	// swallowed.
	Ensure(ctx context.Context, chatID string) error
	Count(ctx context.Context) (int64, error)
}

type mongoUsers struct {
	coll *mongo.Collection
}

func (u *mongoUsers) Ensure(ctx context.Context, chatID string) error {
	_, err := u.coll.InsertOne(ctx, User{ChatID: chatID})
	if err = mapWriteErr(err); errors.Is(err, ErrDuplicate) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}
	return nil
}

func (u *mongoUsers) Count(ctx context.Context) (int64, error) {
	return u.coll.EstimatedDocumentCount(ctx)
}
