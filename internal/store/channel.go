package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Channel is a required Telegram channel: users must be members of every
// stored channel before the bot serves them.
type Channel struct {
	ChatID   string `bson:"chatId"`
	Name     string `bson:"name"`
	Username string `bson:"username"`
}

// Channels is the channel repository consumed by the directory and gate.
type Channels interface {
	Insert(ctx context.Context, ch Channel) error
	FindByChatID(ctx context.Context, chatID string) (Channel, error)
	// All returns channels in insertion order.
	All(ctx context.Context) ([]Channel, error)
	// Delete removes the record matching (chatID, name). It reports nil
	// whether or not a record matched.
	Delete(ctx context.Context, chatID, name string) error
	Count(ctx context.Context) (int64, error)
}

type mongoChannels struct {
	coll *mongo.Collection
}

func (c *mongoChannels) Insert(ctx context.Context, ch Channel) error {
	_, err := c.coll.InsertOne(ctx, ch)
	return mapWriteErr(err)
}

func (c *mongoChannels) FindByChatID(ctx context.Context, chatID string) (Channel, error) {
	var ch Channel
	err := c.coll.FindOne(ctx, bson.M{"chatId": chatID}).Decode(&ch)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Channel{}, ErrNotFound
	}
	if err != nil {
		return Channel{}, fmt.Errorf("find channel: %w", err)
	}
	return ch, nil
}

func (c *mongoChannels) All(ctx context.Context) ([]Channel, error) {
	cur, err := c.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	var channels []Channel
	if err := cur.All(ctx, &channels); err != nil {
		return nil, fmt.Errorf("decode channels: %w", err)
	}
	return channels, nil
}

func (c *mongoChannels) Delete(ctx context.Context, chatID, name string) error {
	_, err := c.coll.DeleteOne(ctx, bson.M{"chatId": chatID, "name": name})
	if err != nil {
		return fmt.Errorf("delete channel: %w", err)
	}
	return nil
}

func (c *mongoChannels) Count(ctx context.Context) (int64, error) {
	return c.coll.EstimatedDocumentCount(ctx)
}
