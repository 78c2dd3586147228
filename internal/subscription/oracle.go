// Package subscription implements the admission gate: a per-channel
// membership oracle and the classification of an interaction into
// admitted / pending-channels.
package subscription

import (
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Status is the three-state outcome of a single membership check.
type Status int

const (
	// StatusUnknown means the check itself failed. Unknown channels are
	// excluded from the pending set (fail-open), never retried.
	StatusUnknown Status = iota
	StatusMember
	StatusNotMember
)

func (s Status) String() string {
	switch s {
	case StatusMember:
		return "member"
	case StatusNotMember:
		return "not-member"
	default:
		return "unknown"
	}
}

// Checker answers whether a user currently belongs to one channel.
type Checker interface {
	Check(channelChatID string, userID int64) Status
}

// ChatMemberAPI is the slice of the Telegram client the oracle needs.
type ChatMemberAPI interface {
	GetChatMember(config tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error)
}

// TelegramChecker resolves membership through getChatMember. Telegram
// reports "left" or "kicked" for users outside the channel; every other
// status (member, administrator, creator, restricted) counts as inside.
type TelegramChecker struct {
	api    ChatMemberAPI
	logger *zap.SugaredLogger
}

func NewTelegramChecker(api ChatMemberAPI, logger *zap.SugaredLogger) *TelegramChecker {
	return &TelegramChecker{api: api, logger: logger}
}

func (c *TelegramChecker) Check(channelChatID string, userID int64) Status {
	chatID, err := strconv.ParseInt(channelChatID, 10, 64)
	if err != nil {
		c.logger.Warnf("[oracle] bad channel chat id %q: %v", channelChatID, err)
		return StatusUnknown
	}

	member, err := c.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID: chatID,
			UserID: userID,
		},
	})
	if err != nil {
		c.logger.Debugf("[oracle] check channel %s user %d failed: %v", channelChatID, userID, err)
		return StatusUnknown
	}

	switch member.Status {
	case "left", "kicked":
		return StatusNotMember
	default:
		return StatusMember
	}
}
