package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ozodbekdev/kinokod/internal/catalog"
	"github.com/ozodbekdev/kinokod/internal/directory"
)

func (r *Router) handleAddChannel(ctx context.Context, msg *tgbotapi.Message) {
	username := strings.TrimSpace(msg.CommandArguments())
	if username == "" {
		r.reply(msg.Chat.ID, replyAddChannelUsage)
		return
	}

	ch, err := r.directory.Add(ctx, username)
	switch {
	case errors.Is(err, directory.ErrNotResolvable):
		r.reply(msg.Chat.ID, replyChannelNotResolved)
	case errors.Is(err, directory.ErrDuplicate):
		r.reply(msg.Chat.ID, replyChannelExists)
	case err != nil:
		r.logger.Errorf("[router] add channel @%s: %v", username, err)
		r.reply(msg.Chat.ID, replyChannelAddFailed)
	default:
		r.reply(msg.Chat.ID, fmt.Sprintf("Kanal qo'shildi: %s", ch.Name))
	}
}

func (r *Router) handleListChannels(ctx context.Context, msg *tgbotapi.Message) {
	channels, err := r.directory.List(ctx)
	if err != nil {
		r.logger.Errorf("[router] list channels: %v", err)
		r.reply(msg.Chat.ID, replyGenericFailure)
		return
	}

	var sb strings.Builder
	sb.WriteString(replyChannelListHeader + "\n<b>")
	for i, ch := range channels {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("%d. %s", i+1, html.EscapeString(ch.Name)))
	}
	sb.WriteString("</b>")

	out := tgbotapi.NewMessage(msg.Chat.ID, sb.String())
	out.ParseMode = tgbotapi.ModeHTML
	r.send(out)
}

// handleDeleteChannel keys the delete on the interaction's chat id plus
// the given name, and reports success even when nothing matched.
func (r *Router) handleDeleteChannel(ctx context.Context, msg *tgbotapi.Message) {
	name := strings.TrimSpace(msg.CommandArguments())
	if name == "" {
		r.reply(msg.Chat.ID, replyDeleteChannelUsage)
		return
	}

	chatID := strconv.FormatInt(msg.Chat.ID, 10)
	if err := r.directory.Remove(ctx, chatID, name); err != nil {
		r.logger.Errorf("[router] delete channel %q: %v", name, err)
		r.reply(msg.Chat.ID, replyChannelDeleteFailed)
		return
	}
	r.reply(msg.Chat.ID, fmt.Sprintf("Kanal o'chirildi: %s", name))
}

func (r *Router) handleAddFilm(ctx context.Context, msg *tgbotapi.Message) {
	fields := strings.Fields(msg.CommandArguments())
	if len(fields) < 3 {
		r.reply(msg.Chat.ID, replyFilmArgsMissing)
		return
	}
	url, rawCode, name := fields[0], fields[1], strings.Join(fields[2:], " ")

	film, err := r.catalog.Add(ctx, url, rawCode, name)
	switch {
	case errors.Is(err, catalog.ErrInvalidCode):
		r.reply(msg.Chat.ID, replyFilmCodeNotNum)
	case errors.Is(err, catalog.ErrDuplicateURL):
		r.reply(msg.Chat.ID, replyFilmURLExists)
	case errors.Is(err, catalog.ErrDuplicateCode):
		r.reply(msg.Chat.ID, replyFilmCodeExists)
	case err != nil:
		r.logger.Errorf("[router] add film %s: %v", url, err)
		r.reply(msg.Chat.ID, replyFilmAddFailed)
	default:
		r.reply(msg.Chat.ID, fmt.Sprintf("Kino qo'shildi: %s", film.Name))
	}
}

func (r *Router) handleDeleteFilm(ctx context.Context, msg *tgbotapi.Message) {
	arg := strings.TrimSpace(msg.CommandArguments())
	if arg == "" {
		r.reply(msg.Chat.ID, replyDeleteFilmUsage)
		return
	}

	code, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		r.reply(msg.Chat.ID, replyFilmCodeNotNum)
		return
	}

	err = r.catalog.Remove(ctx, code)
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		r.reply(msg.Chat.ID, replyFilmNotFound)
	case err != nil:
		r.logger.Errorf("[router] delete film %d: %v", code, err)
		r.reply(msg.Chat.ID, replyFilmDeleteFailed)
	default:
		r.reply(msg.Chat.ID, fmt.Sprintf("Kino o'chirildi: %d", code))
	}
}

func (r *Router) handleStat(ctx context.Context, msg *tgbotapi.Message) {
	snap, err := r.stats.Snapshot(ctx)
	if err != nil {
		r.logger.Errorf("[router] stat: %v", err)
		r.reply(msg.Chat.ID, replyGenericFailure)
		return
	}
	r.reply(msg.Chat.ID, fmt.Sprintf(
		"Foydalanuvchilar: %d\nKinolar: %d\nKanallar: %d",
		snap.Users, snap.Films, snap.Channels,
	))
}

// handleLookup serves a bare-code message with the matching film video.
func (r *Router) handleLookup(ctx context.Context, msg *tgbotapi.Message) {
	code, err := strconv.ParseInt(strings.TrimSpace(msg.Text), 10, 64)
	if err != nil {
		// Overflows the code range, nothing can match.
		r.reply(msg.Chat.ID, replyFilmNotFound)
		return
	}

	film, err := r.catalog.FindByCode(ctx, code)
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		r.reply(msg.Chat.ID, replyFilmNotFound)
	case err != nil:
		r.logger.Errorf("[router] lookup film %d: %v", code, err)
		r.reply(msg.Chat.ID, replyGenericFailure)
	default:
		video := tgbotapi.NewVideo(msg.Chat.ID, tgbotapi.FileURL(film.URL))
		video.Caption = film.Name
		r.send(video)
	}
}
