package bot

import (
	"MenuHub/internal/lib/sl"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"
	"github.com/PaulSonOfLars/gotgbot/v2/ext/handlers"
)

const maxMessageLength = 4000

// StatusSource reports the live dashboard connections.
type StatusSource interface {
	ClientCount() int
}

// AdminBot delivers log alerts to the operator's Telegram chat and answers
// /status from that chat only.
type AdminBot struct {
	log     *slog.Logger
	api     *tgbotapi.Bot
	adminId int64
	started time.Time
	queue   chan string

	mu     sync.RWMutex
	status StatusSource
}

func NewAdminBot(botName, apiKey string, adminId int64, log *slog.Logger) (*AdminBot, error) {
	api, err := tgbotapi.NewBot(apiKey, nil)
	if err != nil {
		return nil, fmt.Errorf("creating api instance: %v", err)
	}

	return &AdminBot{
		log:     log.With(sl.Module("tgbot"), slog.String("bot", botName)),
		api:     api,
		adminId: adminId,
		started: time.Now(),
		queue:   make(chan string, 100),
	}, nil
}

func (b *AdminBot) SetStatusSource(status StatusSource) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.status = status
}

// Start polls for commands and drains the alert queue until ctx is done.
func (b *AdminBot) Start(ctx context.Context) error {
	dispatcher := ext.NewDispatcher(&ext.DispatcherOpts{
		Error: func(_ *tgbotapi.Bot, _ *ext.Context, err error) ext.DispatcherAction {
			b.log.With(sl.Err(err)).Warn("handling update")
			return ext.DispatcherActionNoop
		},
		MaxRoutines: ext.DefaultMaxRoutines,
	})
	dispatcher.AddHandler(handlers.NewCommand("status", b.handleStatus))

	updater := ext.NewUpdater(dispatcher, nil)
	err := updater.StartPolling(b.api, &ext.PollingOpts{
		DropPendingUpdates: true,
		GetUpdatesOpts: &tgbotapi.GetUpdatesOpts{
			Timeout: 9,
			RequestOpts: &tgbotapi.RequestOpts{
				Timeout: time.Second * 10,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("start polling: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return updater.Stop()
		case msg := <-b.queue:
			b.send(msg)
		}
	}
}

// SendMessage queues an alert; alerts are dropped while the queue is full.
func (b *AdminBot) SendMessage(msg string) {
	select {
	case b.queue <- truncate(msg, maxMessageLength):
	default:
	}
}

func (b *AdminBot) send(text string) {
	if text == "" {
		return
	}
	if _, err := b.api.SendMessage(b.adminId, text, nil); err != nil {
		b.log.With(slog.Int64("id", b.adminId), sl.Err(err)).Debug("sending alert")
	}
}

func (b *AdminBot) handleStatus(bot *tgbotapi.Bot, ctx *ext.Context) error {
	if ctx.EffectiveUser == nil || ctx.EffectiveUser.Id != b.adminId {
		return nil
	}
	_, err := ctx.EffectiveMessage.Reply(bot, b.statusText(), nil)
	return err
}

func (b *AdminBot) statusText() string {
	b.mu.RLock()
	status := b.status
	b.mu.RUnlock()

	clients := 0
	if status != nil {
		clients = status.ClientCount()
	}
	return fmt.Sprintf("MenuHub up %s\ndashboard clients: %d",
		time.Since(b.started).Truncate(time.Second), clients)
}

func truncate(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:limit-1]) + "…"
}
