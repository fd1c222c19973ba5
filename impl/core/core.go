package core

import (
	"MenuHub/entity"
	"MenuHub/internal/config"
	"MenuHub/internal/lib/sl"
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type Repository interface {
	GetIntegrationByInstanceKey(ctx context.Context, instanceKey string) (*entity.Integration, error)
	GetIntegrationByCompany(ctx context.Context, companyID string) (*entity.Integration, error)

	TouchChat(ctx context.Context, touch *entity.ChatTouch) (*entity.Chat, error)
	SetChatPaused(ctx context.Context, companyID, chatID string, paused bool) error
	MarkChatRead(ctx context.Context, companyID, chatID string) error
	ListChats(ctx context.Context, companyID string, limit, offset int) ([]entity.Chat, error)
	SaveMessage(ctx context.Context, msg *entity.ChatMessage) error
	CountInboundMessages(ctx context.Context, companyID, chatID string) (int, error)
	GetChatMessages(ctx context.Context, companyID, chatID string, limit, offset int) ([]entity.ChatMessage, error)
	SaveAiLog(ctx context.Context, entry *entity.AiConversationLog) error

	CheckExistingOrder(ctx context.Context, companyID, paymentID string) (*entity.ExistingOrder, error)
	UpsertCustomer(ctx context.Context, customer *entity.Customer) (string, error)
	CreateOrder(ctx context.Context, order *entity.Order) (*entity.Order, error)
	CreateOrderItem(ctx context.Context, item *entity.OrderItem) (*entity.OrderItem, error)
	CreateOrderItemAddons(ctx context.Context, addons []entity.OrderItemAddon) error
	DeleteOrder(ctx context.Context, orderID string) error
	DebitCashback(ctx context.Context, companyID, customerID string, amount float64) (bool, error)

	GetFiscalSettings(ctx context.Context, companyID string) (*entity.FiscalSettings, error)
	SaveNfce(ctx context.Context, rec *entity.NfceRecord) error

	CheckEmailRateLimit(ctx context.Context, email, kind string) (bool, error)
	GenerateLink(ctx context.Context, kind entity.LinkKind, email, redirect string) (string, error)
}

// KeyStore keeps API keys and the raw webhook archive.
type KeyStore interface {
	CheckApiKey(key string) (*entity.UserAuth, error)
	GenerateApiKey(username, companyID string) (string, error)
	ArchiveWebhook(ctx context.Context, event *entity.WebhookEvent) error
}

type Assistant interface {
	Welcome(ctx context.Context, in entity.ReplyInput) (entity.AiReply, error)
	Reply(ctx context.Context, in entity.ReplyInput) (entity.AiReply, error)
}

type Messenger interface {
	SendText(ctx context.Context, integration *entity.Integration, to, text string) (string, error)
}

type FiscalService interface {
	Issue(ctx context.Context, settings *entity.FiscalSettings, ref string, payload map[string]any) (*entity.NfceResult, error)
	Query(ctx context.Context, settings *entity.FiscalSettings, ref string) (*entity.NfceResult, error)
}

type Mailer interface {
	SendLink(ctx context.Context, kind, to, link string) error
}

type Broadcaster interface {
	Broadcast(companyID, event string, data interface{})
}

type Core struct {
	repo      Repository
	keys      KeyStore
	ass       Assistant
	messenger Messenger
	fiscal    FiscalService
	mailer    Mailer
	feed      Broadcaster
	authKey   string

	replyMode       string
	welcomeMessage  string
	archive         bool
	resetRedirect   string
	confirmRedirect string

	limitEvery rate.Limit
	limitBurst int
	limitMu    sync.Mutex
	limiters   map[string]*rate.Limiter

	locks *keyedLocks
	log   *slog.Logger
}

func New(conf *config.Config, log *slog.Logger) *Core {
	c := &Core{
		replyMode:       conf.AutoReply.Mode,
		welcomeMessage:  conf.AutoReply.WelcomeMessage,
		archive:         conf.Webhook.Archive,
		resetRedirect:   conf.Resend.ResetRedirect,
		confirmRedirect: conf.Resend.ConfirmRedirect,
		authKey:         conf.Listen.ApiKey,
		limiters:        make(map[string]*rate.Limiter),
		locks:           newKeyedLocks(),
		log:             log.With(sl.Module("core")),
	}
	if c.replyMode == "" {
		c.replyMode = config.AutoReplyDraft
	}
	c.SetWebhookLimit(conf.Webhook.RatePerMinute, conf.Webhook.Burst)
	return c
}

func (c *Core) SetRepository(repo Repository) {
	c.repo = repo
}

func (c *Core) SetKeyStore(keys KeyStore) {
	c.keys = keys
}

func (c *Core) SetAssistant(ass Assistant) {
	c.ass = ass
}

func (c *Core) SetMessenger(messenger Messenger) {
	c.messenger = messenger
}

func (c *Core) SetFiscalService(fiscal FiscalService) {
	c.fiscal = fiscal
}

func (c *Core) SetMailer(mailer Mailer) {
	c.mailer = mailer
}

func (c *Core) SetBroadcaster(feed Broadcaster) {
	c.feed = feed
}

func (c *Core) SetReplyMode(mode string) {
	c.replyMode = mode
}

// SetWebhookLimit sets the per-instance budget; perMinute <= 0 disables throttling.
func (c *Core) SetWebhookLimit(perMinute, burst int) {
	c.limitMu.Lock()
	defer c.limitMu.Unlock()

	c.limiters = make(map[string]*rate.Limiter)
	if perMinute <= 0 {
		c.limitEvery = rate.Inf
		return
	}
	if burst <= 0 {
		burst = 1
	}
	c.limitEvery = rate.Every(time.Minute / time.Duration(perMinute))
	c.limitBurst = burst
}

func (c *Core) allowInstance(instanceKey string) bool {
	c.limitMu.Lock()
	defer c.limitMu.Unlock()

	if c.limitEvery == rate.Inf {
		return true
	}
	limiter, ok := c.limiters[instanceKey]
	if !ok {
		limiter = rate.NewLimiter(c.limitEvery, c.limitBurst)
		c.limiters[instanceKey] = limiter
	}
	return limiter.Allow()
}

func (c *Core) broadcast(companyID, event string, data interface{}) {
	if c.feed != nil {
		c.feed.Broadcast(companyID, event, data)
	}
}
