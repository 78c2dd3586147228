// Package directory manages the list of channels a user must belong to.
package directory

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ozodbekdev/kinokod/internal/store"
)

var (
	// ErrDuplicate means a channel with the same chat id or username is
	// already in the directory.
	ErrDuplicate = errors.New("directory: channel already added")
	// ErrNotResolvable means Telegram could not resolve the username to
	// a channel.
	ErrNotResolvable = errors.New("directory: channel not resolvable")
)

// ChatResolver resolves a public @username to its chat identity.
type ChatResolver interface {
	GetChat(config tgbotapi.ChatInfoConfig) (tgbotapi.Chat, error)
}

type Directory struct {
	channels store.Channels
	resolver ChatResolver
}

func New(channels store.Channels, resolver ChatResolver) *Directory {
	return &Directory{channels: channels, resolver: resolver}
}

// Add resolves username through Telegram and inserts the channel. The
// chat id and title come from the resolver, never from the caller.
func (d *Directory) Add(ctx context.Context, username string) (store.Channel, error) {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")

	chat, err := d.resolver.GetChat(tgbotapi.ChatInfoConfig{
		ChatConfig: tgbotapi.ChatConfig{SuperGroupUsername: "@" + username},
	})
	if err != nil {
		return store.Channel{}, fmt.Errorf("%w: %v", ErrNotResolvable, err)
	}

	chatID := strconv.FormatInt(chat.ID, 10)
	_, err = d.channels.FindByChatID(ctx, chatID)
	if err == nil {
		return store.Channel{}, ErrDuplicate
	}
	if !errors.Is(err, store.ErrNotFound) {
		return store.Channel{}, err
	}

	ch := store.Channel{ChatID: chatID, Name: chat.Title, Username: username}
	if err := d.channels.Insert(ctx, ch); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return store.Channel{}, ErrDuplicate
		}
		return store.Channel{}, fmt.Errorf("insert channel: %w", err)
	}
	return ch, nil
}

// List returns the required channels in insertion order.
func (d *Directory) List(ctx context.Context) ([]store.Channel, error) {
	return d.channels.All(ctx)
}

// Remove deletes the channel matching (chatID, name). A miss is not an
// error: the delete reports success either way.
func (d *Directory) Remove(ctx context.Context, chatID, name string) error {
	return d.channels.Delete(ctx, chatID, name)
}
