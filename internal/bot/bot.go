// Package bot wires the Telegram transport to the command router: long
// polling, per-update dispatch, and the subscription-gate middleware.
package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ozodbekdev/kinokod/internal/config"
)

// TelegramBot is the slice of tgbotapi the bot consumes, as an
// interface so tests can run against a fake.
type TelegramBot interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetSelf() tgbotapi.User
	GetChat(config tgbotapi.ChatInfoConfig) (tgbotapi.Chat, error)
	GetChatMember(config tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error)
}

// tgBotWrapper adapts *tgbotapi.BotAPI to the TelegramBot interface.
type tgBotWrapper struct {
	bot *tgbotapi.BotAPI
}

func (w *tgBotWrapper) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return w.bot.GetUpdatesChan(config)
}

func (w *tgBotWrapper) StopReceivingUpdates() {
	w.bot.StopReceivingUpdates()
}

func (w *tgBotWrapper) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	return w.bot.Send(c)
}

func (w *tgBotWrapper) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return w.bot.Request(c)
}

func (w *tgBotWrapper) GetSelf() tgbotapi.User {
	return w.bot.Self
}

func (w *tgBotWrapper) GetChat(config tgbotapi.ChatInfoConfig) (tgbotapi.Chat, error) {
	return w.bot.GetChat(config)
}

func (w *tgBotWrapper) GetChatMember(config tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error) {
	return w.bot.GetChatMember(config)
}

// NewAPI authorizes against the Bot API and returns the client used by
// the bot, the membership oracle and the chat resolver.
func NewAPI(token string) (TelegramBot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &tgBotWrapper{bot: api}, nil
}

// Bot runs the long-polling loop and hands every update to the router
// in its own goroutine.
type Bot struct {
	api    TelegramBot
	router *Router
	cfg    config.TelegramConfig
	logger *zap.SugaredLogger
	cancel context.CancelFunc
}

func New(api TelegramBot, router *Router, cfg config.TelegramConfig, logger *zap.SugaredLogger) *Bot {
	return &Bot{api: api, router: router, cfg: cfg, logger: logger}
}

func (b *Bot) Start(ctx context.Context) error {
	ctx, b.cancel = context.WithCancel(ctx)

	b.setupCommands()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.PollTimeout
	updates := b.api.GetUpdatesChan(u)

	go func() {
		for {
			select {
			case update := <-updates:
				go b.router.HandleUpdate(ctx, update)
			case <-ctx.Done():
				return
			}
		}
	}()

	b.logger.Infof("[telegram] authorized as @%s, polling started", b.api.GetSelf().UserName)
	return nil
}

func (b *Bot) setupCommands() {
	commands := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "start", Description: "Botni ishga tushirish"},
	)
	if _, err := b.api.Request(commands); err != nil {
		b.logger.Warnf("[telegram] set commands failed: %v", err)
	}
}

func (b *Bot) Stop() {
	if b.cancel != nil {
		b.cancel()
	}
	b.api.StopReceivingUpdates()
}
