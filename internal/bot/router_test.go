package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ozodbekdev/kinokod/internal/catalog"
	"github.com/ozodbekdev/kinokod/internal/directory"
	"github.com/ozodbekdev/kinokod/internal/stats"
	"github.com/ozodbekdev/kinokod/internal/store"
	"github.com/ozodbekdev/kinokod/internal/subscription"
)

// fakeTelegram implements TelegramBot: it records outgoing traffic and
// serves chat-member/chat lookups from fixtures.
type fakeTelegram struct {
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable

	// memberStatus maps required-channel chat id to the test user's
	// membership status. Unlisted channels fail the lookup.
	memberStatus map[int64]string
	memberErr    map[int64]error

	chat    tgbotapi.Chat
	chatErr error
}

func (f *fakeTelegram) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return make(tgbotapi.UpdatesChannel)
}

func (f *fakeTelegram) StopReceivingUpdates() {}

func (f *fakeTelegram) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeTelegram) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeTelegram) GetSelf() tgbotapi.User {
	return tgbotapi.User{UserName: "kinokod_bot"}
}

func (f *fakeTelegram) GetChat(config tgbotapi.ChatInfoConfig) (tgbotapi.Chat, error) {
	if f.chatErr != nil {
		return tgbotapi.Chat{}, f.chatErr
	}
	return f.chat, nil
}

func (f *fakeTelegram) GetChatMember(config tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error) {
	if err, ok := f.memberErr[config.ChatID]; ok {
		return tgbotapi.ChatMember{}, err
	}
	if status, ok := f.memberStatus[config.ChatID]; ok {
		return tgbotapi.ChatMember{Status: status}, nil
	}
	return tgbotapi.ChatMember{}, errors.New("Bad Request: chat not found")
}

// In-memory repositories backing the router under test.

type memChannels struct {
	items []store.Channel
}

func (m *memChannels) Insert(ctx context.Context, ch store.Channel) error {
	for _, existing := range m.items {
		if existing.ChatID == ch.ChatID || existing.Username == ch.Username {
			return store.ErrDuplicate
		}
	}
	m.items = append(m.items, ch)
	return nil
}

func (m *memChannels) FindByChatID(ctx context.Context, chatID string) (store.Channel, error) {
	for _, ch := range m.items {
		if ch.ChatID == chatID {
			return ch, nil
		}
	}
	return store.Channel{}, store.ErrNotFound
}

func (m *memChannels) All(ctx context.Context) ([]store.Channel, error) {
	return m.items, nil
}

func (m *memChannels) Delete(ctx context.Context, chatID, name string) error {
	for i, ch := range m.items {
		if ch.ChatID == chatID && ch.Name == name {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *memChannels) Count(ctx context.Context) (int64, error) {
	return int64(len(m.items)), nil
}

type memUsers struct {
	ids map[string]bool
}

func (m *memUsers) Ensure(ctx context.Context, chatID string) error {
	if m.ids == nil {
		m.ids = make(map[string]bool)
	}
	m.ids[chatID] = true
	return nil
}

func (m *memUsers) Count(ctx context.Context) (int64, error) {
	return int64(len(m.ids)), nil
}

type memFilms struct {
	items []store.Film
}

func (m *memFilms) Insert(ctx context.Context, f store.Film) error {
	for _, existing := range m.items {
		if existing.Code == f.Code || existing.URL == f.URL {
			return store.ErrDuplicate
		}
	}
	m.items = append(m.items, f)
	return nil
}

func (m *memFilms) FindByCode(ctx context.Context, code int64) (store.Film, error) {
	for _, f := range m.items {
		if f.Code == code {
			return f, nil
		}
	}
	return store.Film{}, store.ErrNotFound
}

func (m *memFilms) FindByURL(ctx context.Context, url string) (store.Film, error) {
	for _, f := range m.items {
		if f.URL == url {
			return f, nil
		}
	}
	return store.Film{}, store.ErrNotFound
}

func (m *memFilms) Delete(ctx context.Context, code int64) error {
	for i, f := range m.items {
		if f.Code == code {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (m *memFilms) Count(ctx context.Context) (int64, error) {
	return int64(len(m.items)), nil
}

// env bundles the full router stack over fakes.
type env struct {
	api      *fakeTelegram
	channels *memChannels
	users    *memUsers
	films    *memFilms
	router   *Router
}

func newEnv(admins map[int64]bool) *env {
	api := &fakeTelegram{
		memberStatus: make(map[int64]string),
		memberErr:    make(map[int64]error),
	}
	channels := &memChannels{}
	users := &memUsers{}
	films := &memFilms{}

	log := zap.NewNop().Sugar()
	checker := subscription.NewTelegramChecker(api, log)
	gate := subscription.NewGate(channels, users, checker, admins, log)
	dir := directory.New(channels, api)
	cat := catalog.New(films)
	collector := stats.NewCollector(channels, users, films)

	return &env{
		api:      api,
		channels: channels,
		users:    users,
		films:    films,
		router:   NewRouter(api, gate, dir, cat, collector, admins, log),
	}
}

func textUpdate(userID, chatID int64, text string) tgbotapi.Update {
	msg := &tgbotapi.Message{
		From: &tgbotapi.User{ID: userID},
		Chat: &tgbotapi.Chat{ID: chatID},
		Text: text,
	}
	if strings.HasPrefix(text, "/") {
		msg.Entities = []tgbotapi.MessageEntity{{
			Type:   "bot_command",
			Offset: 0,
			Length: len(strings.Fields(text)[0]),
		}}
	}
	return tgbotapi.Update{Message: msg}
}

func callbackUpdate(userID, chatID int64, data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb1",
		From:    &tgbotapi.User{ID: userID},
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}},
		Data:    data,
	}}
}

func lastMessage(t *testing.T, api *fakeTelegram) tgbotapi.MessageConfig {
	t.Helper()
	if len(api.sent) == 0 {
		t.Fatal("no message sent")
	}
	mc, ok := api.sent[len(api.sent)-1].(tgbotapi.MessageConfig)
	if !ok {
		t.Fatalf("last sent is %T, want MessageConfig", api.sent[len(api.sent)-1])
	}
	return mc
}

func TestStartCommand(t *testing.T) {
	e := newEnv(nil)

	e.router.HandleUpdate(context.Background(), textUpdate(2, 2, "/start"))

	if got := lastMessage(t, e.api).Text; got != replyWelcome {
		t.Errorf("reply = %q, want %q", got, replyWelcome)
	}
}

func TestUnknownCommand(t *testing.T) {
	e := newEnv(nil)

	e.router.HandleUpdate(context.Background(), textUpdate(2, 2, "/whoami"))

	if got := lastMessage(t, e.api).Text; got != replyUnknownCommand {
		t.Errorf("reply = %q, want %q", got, replyUnknownCommand)
	}
}

func TestPrivilegedCommandHiddenFromNonAdmin(t *testing.T) {
	e := newEnv(map[int64]bool{1: true})

	e.router.HandleUpdate(context.Background(), textUpdate(2, 2, "/add_channel foo"))

	if got := lastMessage(t, e.api).Text; got != replyUnknownCommand {
		t.Errorf("reply = %q, want %q", got, replyUnknownCommand)
	}
	if len(e.channels.items) != 0 {
		t.Errorf("directory mutated by non-admin: %v", e.channels.items)
	}
}

func TestGateBlocksUnsubscribedUser(t *testing.T) {
	e := newEnv(nil)
	e.channels.items = []store.Channel{{ChatID: "100", Name: "News", Username: "news"}}
	e.api.memberStatus[100] = "left"

	e.router.HandleUpdate(context.Background(), textUpdate(2, 2, "/start"))

	mc := lastMessage(t, e.api)
	if mc.Text != replySubscribePrompt {
		t.Fatalf("reply = %q, want subscribe prompt", mc.Text)
	}

	kb, ok := mc.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	if !ok {
		t.Fatalf("reply markup is %T, want InlineKeyboardMarkup", mc.ReplyMarkup)
	}
	if len(kb.InlineKeyboard) != 2 {
		t.Fatalf("expected 2 keyboard rows, got %d", len(kb.InlineKeyboard))
	}
	join := kb.InlineKeyboard[0][0]
	if join.URL == nil || *join.URL != "https://t.me/news" {
		t.Errorf("join button url = %v, want https://t.me/news", join.URL)
	}
	if join.Text != "News" {
		t.Errorf("join button text = %q, want channel name", join.Text)
	}
	check := kb.InlineKeyboard[1][0]
	if check.CallbackData == nil || *check.CallbackData != callbackCheckSubscription {
		t.Errorf("check button data = %v, want %q", check.CallbackData, callbackCheckSubscription)
	}

	if !e.users.ids["2"] {
		t.Error("blocked user must still be recorded")
	}
}

func TestGateFailsOpenOnCheckError(t *testing.T) {
	e := newEnv(nil)
	e.channels.items = []store.Channel{{ChatID: "100", Name: "News", Username: "news"}}
	e.api.memberErr[100] = errors.New("Forbidden: bot is not a member")

	e.router.HandleUpdate(context.Background(), textUpdate(2, 2, "/start"))

	if got := lastMessage(t, e.api).Text; got != replyWelcome {
		t.Errorf("reply = %q, want %q (unknown check must admit)", got, replyWelcome)
	}
}

func TestRecheckCallbackConfirmsAfterJoin(t *testing.T) {
	e := newEnv(nil)
	e.channels.items = []store.Channel{{ChatID: "100", Name: "News", Username: "news"}}
	e.api.memberStatus[100] = "left"

	e.router.HandleUpdate(context.Background(), textUpdate(2, 2, "/start"))
	if got := lastMessage(t, e.api).Text; got != replySubscribePrompt {
		t.Fatalf("expected subscribe prompt, got %q", got)
	}

	// Still unsubscribed: the prompt is re-issued.
	e.router.HandleUpdate(context.Background(), callbackUpdate(2, 2, callbackCheckSubscription))
	if got := lastMessage(t, e.api).Text; got != replySubscribePrompt {
		t.Fatalf("expected prompt re-issued, got %q", got)
	}

	// User joins, the re-check confirms.
	e.api.memberStatus[100] = "member"
	e.router.HandleUpdate(context.Background(), callbackUpdate(2, 2, callbackCheckSubscription))
	if got := lastMessage(t, e.api).Text; got != replySubscribed {
		t.Errorf("reply = %q, want %q", got, replySubscribed)
	}

	if len(e.api.requests) == 0 {
		t.Error("callback was never answered")
	}
}

func TestAddFilmThenLookup(t *testing.T) {
	e := newEnv(map[int64]bool{1: true})
	ctx := context.Background()

	e.router.HandleUpdate(ctx, textUpdate(1, 1, "/add_film https://x/1 7 My Movie"))
	if got := lastMessage(t, e.api).Text; got != "Kino qo'shildi: My Movie" {
		t.Fatalf("add reply = %q", got)
	}

	e.router.HandleUpdate(ctx, textUpdate(1, 1, "7"))

	last := e.api.sent[len(e.api.sent)-1]
	video, ok := last.(tgbotapi.VideoConfig)
	if !ok {
		t.Fatalf("last sent is %T, want VideoConfig", last)
	}
	if video.Caption != "My Movie" {
		t.Errorf("caption = %q, want My Movie", video.Caption)
	}
	url, ok := video.File.(tgbotapi.FileURL)
	if !ok || string(url) != "https://x/1" {
		t.Errorf("video file = %v, want https://x/1", video.File)
	}
}

func TestLookupUnknownCode(t *testing.T) {
	e := newEnv(nil)

	e.router.HandleUpdate(context.Background(), textUpdate(2, 2, "404"))

	if got := lastMessage(t, e.api).Text; got != replyFilmNotFound {
		t.Errorf("reply = %q, want %q", got, replyFilmNotFound)
	}
}

func TestStatCommand(t *testing.T) {
	e := newEnv(map[int64]bool{1: true})
	e.channels.items = []store.Channel{{ChatID: "100", Name: "News", Username: "news"}}
	e.films.items = []store.Film{{Code: 7, URL: "https://x/1", Name: "My Movie"}}
	e.api.memberStatus[100] = "member"

	e.router.HandleUpdate(context.Background(), textUpdate(1, 1, "/stat"))

	got := lastMessage(t, e.api).Text
	// The admin themselves was just recorded as a known user.
	want := fmt.Sprintf("Foydalanuvchilar: %d\nKinolar: %d\nKanallar: %d", 1, 1, 1)
	if got != want {
		t.Errorf("stat reply = %q, want %q", got, want)
	}
}
