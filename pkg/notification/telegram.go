// Package notification delivers status lines to chat and mail recipients
package notification

import (
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/raykavin/stocklens/pkg/core"
	log "github.com/sirupsen/logrus"
	tb "gopkg.in/tucnak/telebot.v2"
)

const (
	defaultHistoryLimit = 5
	sendTimeout         = 30 * time.Second
)

// sender is the part of the bot client used to deliver messages
type sender interface {
	Send(to tb.Recipient, what interface{}, options ...interface{}) (*tb.Message, error)
}

// Telegram sends every status line to the configured users and answers
// /status and /history commands
type Telegram struct {
	mu      sync.Mutex
	users   []int
	client  sender
	bot     *tb.Bot
	history core.StatusRecorder
	last    *core.Status
	started bool
}

// TelegramOption configures a Telegram instance
type TelegramOption func(*Telegram)

// WithHistory lets /history read past statuses
func WithHistory(history core.StatusRecorder) TelegramOption {
	return func(t *Telegram) {
		t.history = history
	}
}

// NewTelegram creates and initializes a Telegram notifier
func NewTelegram(token string, users []int, options ...TelegramOption) (*Telegram, error) {
	poller := &tb.LongPoller{Timeout: 10 * time.Second}

	client, err := tb.NewBot(tb.Settings{
		ParseMode: tb.ModeMarkdown,
		Token:     token,
		Poller:    createAuthMiddleware(poller, users),
		Client:    &http.Client{Timeout: poller.Timeout + sendTimeout},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	if err := setupCommands(client); err != nil {
		return nil, fmt.Errorf("failed to set commands: %w", err)
	}

	bot := newTelegram(client, users, options...)
	bot.bot = client
	registerHandlers(client, bot)

	return bot, nil
}

func newTelegram(client sender, users []int, options ...TelegramOption) *Telegram {
	bot := &Telegram{client: client, users: users}
	for _, option := range options {
		option(bot)
	}
	return bot
}

// createAuthMiddleware drops updates from users outside the allow list
func createAuthMiddleware(poller *tb.LongPoller, users []int) *tb.MiddlewarePoller {
	return tb.NewMiddlewarePoller(poller, func(u *tb.Update) bool {
		if u.Message == nil || u.Message.Sender == nil {
			log.Error("message or sender is nil ", u)
			return false
		}

		if slices.Contains(users, int(u.Message.Sender.ID)) {
			return true
		}

		log.Error("unauthorized user ", u.Message.Sender.ID)
		return false
	})
}

func setupCommands(client *tb.Bot) error {
	return client.SetCommands([]tb.Command{
		{Text: "/help", Description: "Display help instructions"},
		{Text: "/status", Description: "Latest analysis status"},
		{Text: "/history", Description: "Recent analyses, e.g. /history 10"},
	})
}

func registerHandlers(client *tb.Bot, bot *Telegram) {
	client.Handle("/help", bot.HelpHandle)
	client.Handle("/status", bot.StatusHandle)
	client.Handle("/history", bot.HistoryHandle)
}

// Start polls for commands until Stop is called
func (t *Telegram) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.bot != nil && !t.started {
		t.started = true
		go t.bot.Start()
	}
}

// Stop ends command polling
func (t *Telegram) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.bot != nil && t.started {
		t.started = false
		t.bot.Stop()
	}
}

// Notify implements core.Notifier. Delivery errors are logged, never returned.
func (t *Telegram) Notify(status core.Status) {
	t.mu.Lock()
	t.last = &status
	t.mu.Unlock()

	text := formatStatus(status)
	for _, user := range t.users {
		if _, err := t.client.Send(&tb.User{ID: int64(user)}, text); err != nil {
			log.WithError(err).WithField("user", user).Error("failed to send notification")
		}
	}
}

func (t *Telegram) sendMessage(to *tb.User, text string) {
	if _, err := t.client.Send(to, text); err != nil {
		log.WithError(err).Error("failed to send message")
	}
}

// HelpHandle lists the available commands
func (t *Telegram) HelpHandle(m *tb.Message) {
	t.sendMessage(m.Sender, strings.Join([]string{
		"/status - Latest analysis status",
		"/history [n] - Recent analyses",
	}, "\n"))
}

// StatusHandle replies with the latest status line
func (t *Telegram) StatusHandle(m *tb.Message) {
	t.mu.Lock()
	last := t.last
	t.mu.Unlock()

	if last == nil {
		t.sendMessage(m.Sender, "No analysis yet.")
		return
	}
	t.sendMessage(m.Sender, formatStatus(*last))
}

// HistoryHandle replies with the most recent statuses, newest first
func (t *Telegram) HistoryHandle(m *tb.Message) {
	if t.history == nil {
		t.sendMessage(m.Sender, "History is not enabled.")
		return
	}

	limit := defaultHistoryLimit
	if payload := strings.TrimSpace(m.Payload); payload != "" {
		parsed, err := strconv.Atoi(payload)
		if err != nil || parsed <= 0 {
			t.sendMessage(m.Sender, "Invalid command.\nExample of usage:\n`/history 10`")
			return
		}
		limit = parsed
	}

	statuses, err := t.history.Statuses(limit)
	if err != nil {
		log.WithError(err).Error("failed to read status history")
		t.sendMessage(m.Sender, "History is unavailable.")
		return
	}

	t.sendMessage(m.Sender, formatHistory(statuses))
}

func formatStatus(status core.Status) string {
	if status.Failed {
		return fmt.Sprintf("🛑 `%s`: %s", status.Ticker, status)
	}
	return fmt.Sprintf("📈 `%s`", status)
}

func formatHistory(statuses []core.Status) string {
	if len(statuses) == 0 {
		return "No analyses registered."
	}

	lines := make([]string, 0, len(statuses))
	for _, status := range statuses {
		lines = append(lines, formatStatus(status))
	}
	return strings.Join(lines, "\n")
}
