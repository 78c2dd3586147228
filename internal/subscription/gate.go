package subscription

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/ozodbekdev/kinokod/internal/store"
)

// Result is the admission decision for one interaction. It is computed
// fresh on every evaluation and never cached.
type Result struct {
	// Pending lists required channels the user is confirmed not to be
	// a member of. Empty means admitted.
	Pending []store.Channel
}

func (r Result) Admitted() bool {
	return len(r.Pending) == 0
}

// Gate evaluates every inbound interaction against the channel
// directory. Admins bypass the pending check but are still recorded as
// known users.
type Gate struct {
	channels store.Channels
	users    store.Users
	checker  Checker
	admins   map[int64]bool
	logger   *zap.SugaredLogger
}

func NewGate(channels store.Channels, users store.Users, checker Checker, admins map[int64]bool, logger *zap.SugaredLogger) *Gate {
	return &Gate{
		channels: channels,
		users:    users,
		checker:  checker,
		admins:   admins,
		logger:   logger,
	}
}

// Evaluate classifies userID against every required channel. Channels
// whose check comes back Unknown are left out of the pending set: a
// channel the bot cannot verify never blocks the user. A failure to
// record the known user is logged and does not block either.
func (g *Gate) Evaluate(ctx context.Context, userID int64) (Result, error) {
	if err := g.users.Ensure(ctx, strconv.FormatInt(userID, 10)); err != nil {
		g.logger.Warnf("[gate] record user %d: %v", userID, err)
	}

	channels, err := g.channels.All(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list required channels: %w", err)
	}

	var pending []store.Channel
	for _, ch := range channels {
		if g.checker.Check(ch.ChatID, userID) == StatusNotMember {
			pending = append(pending, ch)
		}
	}

	if len(pending) > 0 && !g.admins[userID] {
		return Result{Pending: pending}, nil
	}
	return Result{}, nil
}

// IsAdmin reports whether userID is in the fixed admin set.
func (g *Gate) IsAdmin(userID int64) bool {
	return g.admins[userID]
}
