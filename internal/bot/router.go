package bot

import (
	"context"
	"regexp"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ozodbekdev/kinokod/internal/catalog"
	"github.com/ozodbekdev/kinokod/internal/directory"
	"github.com/ozodbekdev/kinokod/internal/stats"
	"github.com/ozodbekdev/kinokod/internal/store"
	"github.com/ozodbekdev/kinokod/internal/subscription"
)

// bareCode matches a message that is nothing but a film code.
var bareCode = regexp.MustCompile(`^\d+$`)

// Router classifies inbound updates: the subscription gate runs first,
// then command dispatch. Privileged commands are admin-only; a
// non-admin caller gets the same reply as for a command that does not
// exist.
type Router struct {
	api       TelegramBot
	gate      *subscription.Gate
	directory *directory.Directory
	catalog   *catalog.Catalog
	stats     *stats.Collector
	admins    map[int64]bool
	logger    *zap.SugaredLogger
}

func NewRouter(
	api TelegramBot,
	gate *subscription.Gate,
	dir *directory.Directory,
	cat *catalog.Catalog,
	collector *stats.Collector,
	admins map[int64]bool,
	logger *zap.SugaredLogger,
) *Router {
	return &Router{
		api:       api,
		gate:      gate,
		directory: dir,
		catalog:   cat,
		stats:     collector,
		admins:    admins,
		logger:    logger,
	}
}

// HandleUpdate processes one update to completion. A defect in any
// handler is caught here so one interaction can never take down the
// polling loop.
func (r *Router) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Errorf("[router] panic while handling update %d: %v", update.UpdateID, p)
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		r.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		r.handleMessage(ctx, update.Message)
	}
}

func (r *Router) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}

	res, err := r.gate.Evaluate(ctx, msg.From.ID)
	if err != nil {
		r.logger.Errorf("[gate] evaluate user %d: %v", msg.From.ID, err)
		r.reply(msg.Chat.ID, replyGenericFailure)
		return
	}
	if !res.Admitted() {
		r.sendSubscribePrompt(msg.Chat.ID, res.Pending)
		return
	}

	r.dispatch(ctx, msg)
}

func (r *Router) dispatch(ctx context.Context, msg *tgbotapi.Message) {
	switch {
	case msg.IsCommand():
		r.dispatchCommand(ctx, msg)
	case bareCode.MatchString(strings.TrimSpace(msg.Text)):
		r.handleLookup(ctx, msg)
	}
}

func (r *Router) dispatchCommand(ctx context.Context, msg *tgbotapi.Message) {
	cmd := msg.Command()

	if cmd == "start" {
		r.reply(msg.Chat.ID, replyWelcome)
		return
	}

	switch cmd {
	case "add_channel", "list_channels", "delete_channel", "add_film", "delete_film", "stat":
		// Privileged commands are invisible to non-admins.
		if !r.admins[msg.From.ID] {
			r.reply(msg.Chat.ID, replyUnknownCommand)
			return
		}
	default:
		r.reply(msg.Chat.ID, replyUnknownCommand)
		return
	}

	switch cmd {
	case "add_channel":
		r.handleAddChannel(ctx, msg)
	case "list_channels":
		r.handleListChannels(ctx, msg)
	case "delete_channel":
		r.handleDeleteChannel(ctx, msg)
	case "add_film":
		r.handleAddFilm(ctx, msg)
	case "delete_film":
		r.handleDeleteFilm(ctx, msg)
	case "stat":
		r.handleStat(ctx, msg)
	}
}

// handleCallback serves the re-check button: re-evaluate the gate and
// either confirm or re-issue the (possibly smaller) pending list.
func (r *Router) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if _, err := r.api.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
		r.logger.Warnf("[router] answer callback: %v", err)
	}

	if cq.Data != callbackCheckSubscription {
		return
	}

	chatID := cq.From.ID
	if cq.Message != nil {
		chatID = cq.Message.Chat.ID
	}

	res, err := r.gate.Evaluate(ctx, cq.From.ID)
	if err != nil {
		r.logger.Errorf("[gate] re-evaluate user %d: %v", cq.From.ID, err)
		r.reply(chatID, replyGenericFailure)
		return
	}

	if res.Admitted() {
		r.reply(chatID, replySubscribed)
		return
	}
	r.sendSubscribePrompt(chatID, res.Pending)
}

// sendSubscribePrompt sends one join link per pending channel plus the
// re-check button.
func (r *Router) sendSubscribePrompt(chatID int64, pending []store.Channel) {
	buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(pending))
	for _, ch := range pending {
		buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonURL(ch.Name, "https://t.me/"+ch.Username))
	}

	msg := tgbotapi.NewMessage(chatID, replySubscribePrompt)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(buttons...),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(buttonCheckAgain, callbackCheckSubscription),
		),
	)
	r.send(msg)
}

func (r *Router) reply(chatID int64, text string) {
	r.send(tgbotapi.NewMessage(chatID, text))
}

func (r *Router) send(c tgbotapi.Chattable) {
	if _, err := r.api.Send(c); err != nil {
		r.logger.Errorf("[router] send failed: %v", err)
	}
}
