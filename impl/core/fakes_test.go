package core

import (
	"MenuHub/entity"
	"MenuHub/internal/config"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
)

type fakeRepo struct {
	mu sync.Mutex

	integrations   map[string]*entity.Integration
	integrationErr error

	chats    map[string]*entity.Chat
	touchErr error
	messages []entity.ChatMessage
	aiLogs   []entity.AiConversationLog
	countErr error

	orders      []*entity.Order
	existingErr error
	customers   []entity.Customer
	items       []entity.OrderItem
	addons      []entity.OrderItemAddon
	itemErr     error
	deleted     []string
	cashback    []float64

	fiscal map[string]*entity.FiscalSettings
	nfce   []entity.NfceRecord

	rateAllowed bool
	rateErr     error
	linkErr     error
	links       []entity.LinkKind
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		integrations: map[string]*entity.Integration{
			"inst-1": {CompanyID: "company-1", CompanyName: "Pizzaria Bella", InstanceKey: "inst-1", Token: "tok"},
		},
		chats:       make(map[string]*entity.Chat),
		fiscal:      make(map[string]*entity.FiscalSettings),
		rateAllowed: true,
	}
}

func chatKey(companyID, chatID string) string {
	return companyID + ":" + chatID
}

func (f *fakeRepo) GetIntegrationByInstanceKey(_ context.Context, instanceKey string) (*entity.Integration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.integrationErr != nil {
		return nil, f.integrationErr
	}
	integration, ok := f.integrations[instanceKey]
	if !ok {
		return nil, entity.ErrTenantNotFound
	}
	return integration, nil
}

func (f *fakeRepo) GetIntegrationByCompany(_ context.Context, companyID string) (*entity.Integration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, integration := range f.integrations {
		if integration.CompanyID == companyID {
			return integration, nil
		}
	}
	return nil, entity.ErrTenantNotFound
}

func (f *fakeRepo) TouchChat(_ context.Context, touch *entity.ChatTouch) (*entity.Chat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.touchErr != nil {
		return nil, f.touchErr
	}
	key := chatKey(touch.CompanyID, touch.ChatID)
	chat, ok := f.chats[key]
	if !ok {
		chat = &entity.Chat{CompanyID: touch.CompanyID, ChatID: touch.ChatID, Phone: touch.Phone}
		f.chats[key] = chat
	}
	chat.LastMessage = touch.LastMessage
	chat.LastMessageAt = touch.LastMessageAt
	if touch.ContactName != "" {
		chat.ContactName = touch.ContactName
	}
	if touch.IncrementUnread {
		chat.UnreadCount++
	}
	cp := *chat
	return &cp, nil
}

func (f *fakeRepo) SetChatPaused(_ context.Context, companyID, chatID string, paused bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	chat, ok := f.chats[chatKey(companyID, chatID)]
	if !ok {
		return entity.ErrChatNotFound
	}
	chat.AiPaused = paused
	return nil
}

func (f *fakeRepo) MarkChatRead(_ context.Context, companyID, chatID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	chat, ok := f.chats[chatKey(companyID, chatID)]
	if !ok {
		return entity.ErrChatNotFound
	}
	chat.UnreadCount = 0
	return nil
}

func (f *fakeRepo) ListChats(_ context.Context, companyID string, limit, offset int) ([]entity.Chat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var chats []entity.Chat
	for _, chat := range f.chats {
		if chat.CompanyID == companyID {
			chats = append(chats, *chat)
		}
	}
	return chats, nil
}

func (f *fakeRepo) SaveMessage(_ context.Context, msg *entity.ChatMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, *msg)
	return nil
}

func (f *fakeRepo) CountInboundMessages(_ context.Context, companyID, chatID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.countErr != nil {
		return 0, f.countErr
	}
	n := 0
	for _, m := range f.messages {
		if m.CompanyID == companyID && m.ChatID == chatID && m.Direction == entity.DirectionInbound {
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) GetChatMessages(_ context.Context, companyID, chatID string, limit, offset int) ([]entity.ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.ChatMessage
	for _, m := range f.messages {
		if m.CompanyID == companyID && m.ChatID == chatID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeRepo) SaveAiLog(_ context.Context, entry *entity.AiConversationLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.aiLogs = append(f.aiLogs, *entry)
	return nil
}

func (f *fakeRepo) logsOf(event string) []entity.AiConversationLog {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.AiConversationLog
	for _, l := range f.aiLogs {
		if l.EventType == event {
			out = append(out, l)
		}
	}
	return out
}

func (f *fakeRepo) CheckExistingOrder(_ context.Context, companyID, paymentID string) (*entity.ExistingOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.existingErr != nil {
		return nil, f.existingErr
	}
	for _, o := range f.orders {
		if o.CompanyID == companyID && o.PaymentID == paymentID {
			return &entity.ExistingOrder{OrderID: o.ID, Number: o.Number}, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) UpsertCustomer(_ context.Context, customer *entity.Customer) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.customers = append(f.customers, *customer)
	return "customer-" + customer.Phone, nil
}

func (f *fakeRepo) CreateOrder(_ context.Context, order *entity.Order) (*entity.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *order
	cp.Number = int64(len(f.orders) + 1)
	cp.ID = fmt.Sprintf("order-%d", cp.Number)
	f.orders = append(f.orders, &cp)
	return &cp, nil
}

func (f *fakeRepo) CreateOrderItem(_ context.Context, item *entity.OrderItem) (*entity.OrderItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.itemErr != nil {
		return nil, f.itemErr
	}
	cp := *item
	cp.ID = fmt.Sprintf("item-%d", len(f.items)+1)
	f.items = append(f.items, cp)
	return &cp, nil
}

func (f *fakeRepo) CreateOrderItemAddons(_ context.Context, addons []entity.OrderItemAddon) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addons = append(f.addons, addons...)
	return nil
}

func (f *fakeRepo) DeleteOrder(_ context.Context, orderID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, orderID)
	kept := f.orders[:0]
	for _, o := range f.orders {
		if o.ID != orderID {
			kept = append(kept, o)
		}
	}
	f.orders = kept
	return nil
}

func (f *fakeRepo) DebitCashback(_ context.Context, _, _ string, amount float64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cashback = append(f.cashback, amount)
	return true, nil
}

func (f *fakeRepo) GetFiscalSettings(_ context.Context, companyID string) (*entity.FiscalSettings, error) {
	settings, ok := f.fiscal[companyID]
	if !ok {
		return nil, entity.ErrFiscalNotConfigured
	}
	return settings, nil
}

func (f *fakeRepo) SaveNfce(_ context.Context, rec *entity.NfceRecord) error {
	f.nfce = append(f.nfce, *rec)
	return nil
}

func (f *fakeRepo) CheckEmailRateLimit(_ context.Context, _, _ string) (bool, error) {
	return f.rateAllowed, f.rateErr
}

func (f *fakeRepo) GenerateLink(_ context.Context, kind entity.LinkKind, email, _ string) (string, error) {
	if f.linkErr != nil {
		return "", f.linkErr
	}
	f.links = append(f.links, kind)
	return "https://auth.example/verify?type=" + string(kind) + "&email=" + email, nil
}

type fakeAssistant struct {
	mu       sync.Mutex
	err      error
	welcomes int
	replies  int
}

func (a *fakeAssistant) Welcome(_ context.Context, in entity.ReplyInput) (entity.AiReply, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.welcomes++
	if a.err != nil {
		return entity.AiReply{Model: "gpt-4o-mini"}, a.err
	}
	return entity.AiReply{Text: "Olá! Bem-vindo à " + in.Integration.CompanyName, Model: "gpt-4o-mini"}, nil
}

func (a *fakeAssistant) Reply(_ context.Context, in entity.ReplyInput) (entity.AiReply, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.replies++
	if a.err != nil {
		return entity.AiReply{Model: "gpt-4o-mini"}, a.err
	}
	return entity.AiReply{Text: "Resposta para: " + in.Text, Model: "gpt-4o-mini"}, nil
}

type sentText struct {
	instance, to, text string
}

type fakeMessenger struct {
	mu   sync.Mutex
	err  error
	sent []sentText
}

func (m *fakeMessenger) SendText(_ context.Context, integration *entity.Integration, to, text string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	m.sent = append(m.sent, sentText{integration.InstanceKey, to, text})
	return fmt.Sprintf("wamid-%d", len(m.sent)), nil
}

type fakeFeed struct {
	mu     sync.Mutex
	events []string
}

func (f *fakeFeed) Broadcast(_, event string, _ interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

type fakeKeys struct {
	mu       sync.Mutex
	keys     map[string]entity.UserAuth
	archived []entity.WebhookEvent
}

func (k *fakeKeys) CheckApiKey(key string) (*entity.UserAuth, error) {
	if user, ok := k.keys[key]; ok {
		return &user, nil
	}
	return nil, errors.New("api key not found")
}

func (k *fakeKeys) GenerateApiKey(username, companyID string) (string, error) {
	if companyID != "" {
		return "key-" + companyID + "-" + username, nil
	}
	return "key-" + username, nil
}

func (k *fakeKeys) ArchiveWebhook(_ context.Context, event *entity.WebhookEvent) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.archived = append(k.archived, *event)
	return nil
}

type testEnv struct {
	core      *Core
	repo      *fakeRepo
	assistant *fakeAssistant
	messenger *fakeMessenger
	feed      *fakeFeed
	keys      *fakeKeys
}

func newTestEnv(t *testing.T, mode string) *testEnv {
	t.Helper()

	conf := &config.Config{}
	conf.AutoReply.Mode = mode
	conf.Webhook.RatePerMinute = 0
	conf.Webhook.Archive = true
	conf.Listen.ApiKey = "static-key"

	keys := map[string]entity.UserAuth{
		"mongo-key":  {Username: "maria"},
		"pizzas-key": {Username: "joao", CompanyID: "company-1"},
	}
	env := &testEnv{
		core:      New(conf, slog.New(slog.NewTextHandler(io.Discard, nil))),
		repo:      newFakeRepo(),
		assistant: &fakeAssistant{},
		messenger: &fakeMessenger{},
		feed:      &fakeFeed{},
		keys:      &fakeKeys{keys: keys},
	}
	env.core.SetRepository(env.repo)
	env.core.SetAssistant(env.assistant)
	env.core.SetMessenger(env.messenger)
	env.core.SetBroadcaster(env.feed)
	env.core.SetKeyStore(env.keys)
	return env
}
