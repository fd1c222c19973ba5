package core

import (
	"MenuHub/entity"
	"MenuHub/internal/config"
	"MenuHub/internal/lib/sl"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// HandleWebhook runs one gateway callback through lookup, persistence,
// reply composition and the send gate.
func (c *Core) HandleWebhook(ctx context.Context, body []byte) (result *entity.WebhookResult, err error) {
	payload, err := entity.ParseInboundPayload(body)
	if err != nil {
		return nil, err
	}

	event := &entity.WebhookEvent{
		InstanceKey: payload.InstanceKey(),
		Payload:     payload,
		ReceivedAt:  time.Now(),
	}
	defer func() {
		c.archiveWebhook(ctx, event, result, err)
	}()

	if event.InstanceKey == "" {
		return nil, entity.ErrMissingInstanceKey
	}

	integration, err := c.repo.GetIntegrationByInstanceKey(ctx, event.InstanceKey)
	if err != nil {
		if !errors.Is(err, entity.ErrTenantNotFound) {
			c.log.With(
				slog.String("instance", event.InstanceKey),
				sl.Err(err),
			).Error("integration lookup")
		}
		return nil, entity.ErrTenantNotFound
	}
	event.CompanyID = integration.CompanyID

	if !c.allowInstance(event.InstanceKey) {
		return nil, entity.ErrRateLimited
	}

	msg := payload.Message()
	if msg.RemoteJid == "" {
		return &entity.WebhookResult{Status: entity.WebhookStatusIgnored, Reason: "no_sender"}, nil
	}
	if msg.IsGroup() {
		return &entity.WebhookResult{Status: entity.WebhookStatusIgnored, ChatID: msg.RemoteJid, Reason: "group"}, nil
	}

	lockKey := integration.CompanyID + ":" + msg.RemoteJid
	c.locks.Lock(lockKey)
	defer c.locks.Unlock(lockKey)

	chat, stored, err := c.persistInbound(ctx, integration, msg)
	result = &entity.WebhookResult{ChatID: msg.RemoteJid, MessageID: stored.MessageID}
	if err != nil {
		result.Status = entity.WebhookStatusReceived
		result.Reason = "chat_unavailable"
		return result, nil
	}

	if msg.FromMe {
		result.Status = entity.WebhookStatusIgnored
		result.Reason = "from_me"
		return result, nil
	}

	if chat.AiPaused {
		c.saveAiLog(ctx, &entity.AiConversationLog{
			CompanyID:   integration.CompanyID,
			ChatID:      chat.ChatID,
			EventType:   entity.AiEventPaused,
			UserMessage: msg.Text,
		})
		result.Status = entity.WebhookStatusPaused
		return result, nil
	}

	if c.replyMode == config.AutoReplyOff {
		result.Status = entity.WebhookStatusReceived
		return result, nil
	}

	reply, kind := c.composeReply(ctx, integration, chat, msg)
	if reply.Text == "" {
		result.Status = entity.WebhookStatusReceived
		result.Reason = "no_reply"
		return result, nil
	}
	result.ReplyKind = kind

	c.saveAiLog(ctx, &entity.AiConversationLog{
		CompanyID:   integration.CompanyID,
		ChatID:      chat.ChatID,
		EventType:   entity.AiEventComposed,
		UserMessage: msg.Text,
		AiResponse:  reply.Text,
		Model:       reply.Model,
		Metadata:    map[string]any{"reply_kind": kind, "mode": c.replyMode},
	})

	if c.replyMode != config.AutoReplySend {
		result.Status = entity.WebhookStatusSuppressed
		return result, nil
	}

	if err = c.sendReply(ctx, integration, chat, reply); err != nil {
		c.log.With(
			slog.String("company_id", integration.CompanyID),
			slog.String("chat_id", chat.ChatID),
			sl.Err(err),
		).Error("send reply")
		c.saveAiLog(ctx, &entity.AiConversationLog{
			CompanyID:  integration.CompanyID,
			ChatID:     chat.ChatID,
			EventType:  entity.AiEventSendFailed,
			AiResponse: reply.Text,
			Model:      reply.Model,
			Metadata:   map[string]any{"error": err.Error()},
		})
		result.Status = entity.WebhookStatusReceived
		result.Reason = "send_failed"
		return result, nil
	}

	result.Status = entity.WebhookStatusSent
	return result, nil
}

// persistInbound stores the message and refreshes its chat row. The
// returned chat is the row after the update; when it could not be written
// the error is returned and no reply may be composed.
func (c *Core) persistInbound(ctx context.Context, integration *entity.Integration, msg entity.InboundMessage) (*entity.Chat, *entity.ChatMessage, error) {
	log := c.log.With(
		slog.String("company_id", integration.CompanyID),
		slog.String("chat_id", msg.RemoteJid),
	)
	now := time.Now()

	stored := &entity.ChatMessage{
		MessageID:   msg.ID,
		CompanyID:   integration.CompanyID,
		ChatID:      msg.RemoteJid,
		Direction:   entity.DirectionInbound,
		FromMe:      msg.FromMe,
		Content:     msg.Text,
		ContactName: msg.ContactName,
		MessageType: msg.Type,
		CreatedAt:   now,
	}
	if msg.FromMe {
		stored.Direction = entity.DirectionOutbound
	}
	if stored.MessageID == "" {
		stored.MessageID = uuid.NewString()
	}
	if err := c.repo.SaveMessage(ctx, stored); err != nil {
		log.With(sl.Err(err)).Error("save message")
	}

	touch := &entity.ChatTouch{
		CompanyID:       integration.CompanyID,
		ChatID:          msg.RemoteJid,
		Phone:           msg.Phone,
		LastMessage:     msg.Text,
		LastMessageAt:   now,
		IncrementUnread: !msg.FromMe,
	}
	if !msg.FromMe {
		touch.ContactName = msg.ContactName
	}
	chat, err := c.repo.TouchChat(ctx, touch)
	if err != nil {
		log.With(sl.Err(err)).Error("touch chat")
		return nil, stored, err
	}

	c.broadcast(integration.CompanyID, entity.EventNewMessage, stored)

	return chat, stored, nil
}

// composeReply answers a first contact with the static welcome when one is
// configured and asks the assistant otherwise. A failed AI call yields no reply.
func (c *Core) composeReply(ctx context.Context, integration *entity.Integration, chat *entity.Chat, msg entity.InboundMessage) (entity.AiReply, string) {
	first := c.isFirstContact(ctx, chat)
	static := integration.WelcomeMessage
	if static == "" {
		static = c.welcomeMessage
	}

	if first && static != "" {
		return entity.AiReply{Text: static}, entity.ReplyKindStaticWelcome
	}

	in := entity.ReplyInput{
		Integration: integration,
		ContactName: msg.ContactName,
		Text:        msg.Text,
	}

	var reply entity.AiReply
	var err error
	kind := entity.ReplyKindAiReply
	switch {
	case c.ass == nil:
		err = errors.New("assistant not configured")
	case first:
		kind = entity.ReplyKindAiWelcome
		reply, err = c.ass.Welcome(ctx, in)
	default:
		reply, err = c.ass.Reply(ctx, in)
	}
	if err == nil {
		return reply, kind
	}

	c.log.With(
		slog.String("company_id", integration.CompanyID),
		slog.String("chat_id", chat.ChatID),
		sl.Err(err),
	).Warn("compose reply")
	c.saveAiLog(ctx, &entity.AiConversationLog{
		CompanyID:   integration.CompanyID,
		ChatID:      chat.ChatID,
		EventType:   entity.AiEventComposeFailed,
		UserMessage: msg.Text,
		Model:       reply.Model,
		Metadata:    map[string]any{"error": err.Error()},
	})

	return entity.AiReply{}, ""
}

// isFirstContact reports whether the message just stored is the chat's first inbound one.
func (c *Core) isFirstContact(ctx context.Context, chat *entity.Chat) bool {
	count, err := c.repo.CountInboundMessages(ctx, chat.CompanyID, chat.ChatID)
	if err != nil {
		c.log.With(sl.Err(err)).Warn("count inbound messages")
		return false
	}
	return count <= 1
}

func (c *Core) sendReply(ctx context.Context, integration *entity.Integration, chat *entity.Chat, reply entity.AiReply) error {
	if c.messenger == nil {
		return errors.New("whatsapp gateway not configured")
	}
	id, err := c.messenger.SendText(ctx, integration, chat.ChatID, reply.Text)
	if err != nil {
		return err
	}

	c.storeOutbound(ctx, integration.CompanyID, chat.ChatID, id, reply.Text)
	c.saveAiLog(ctx, &entity.AiConversationLog{
		CompanyID:  integration.CompanyID,
		ChatID:     chat.ChatID,
		EventType:  entity.AiEventSent,
		AiResponse: reply.Text,
		Model:      reply.Model,
	})
	return nil
}

// storeOutbound records a message sent by the platform and refreshes the chat preview.
func (c *Core) storeOutbound(ctx context.Context, companyID, chatID, messageID, text string) *entity.ChatMessage {
	now := time.Now()
	if messageID == "" {
		messageID = uuid.NewString()
	}
	msg := &entity.ChatMessage{
		MessageID:   messageID,
		CompanyID:   companyID,
		ChatID:      chatID,
		Direction:   entity.DirectionOutbound,
		FromMe:      true,
		Content:     text,
		MessageType: "text",
		CreatedAt:   now,
	}
	if err := c.repo.SaveMessage(ctx, msg); err != nil {
		c.log.With(
			slog.String("chat_id", chatID),
			sl.Err(err),
		).Error("save outbound message")
	}

	_, err := c.repo.TouchChat(ctx, &entity.ChatTouch{
		CompanyID:     companyID,
		ChatID:        chatID,
		Phone:         entity.PhoneFromJid(chatID),
		LastMessage:   text,
		LastMessageAt: now,
	})
	if err != nil {
		c.log.With(sl.Err(err)).Error("update chat preview")
	}

	c.broadcast(companyID, entity.EventNewMessage, msg)
	return msg
}

func (c *Core) saveAiLog(ctx context.Context, entry *entity.AiConversationLog) {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if err := c.repo.SaveAiLog(ctx, entry); err != nil {
		c.log.With(
			slog.String("event", entry.EventType),
			sl.Err(err),
		).Error("save ai log")
	}
}

func (c *Core) archiveWebhook(ctx context.Context, event *entity.WebhookEvent, result *entity.WebhookResult, err error) {
	if !c.archive || c.keys == nil {
		return
	}
	switch {
	case err != nil:
		event.Status = "error"
		event.Error = err.Error()
	case result != nil:
		event.Status = result.Status
	}
	if aErr := c.keys.ArchiveWebhook(context.WithoutCancel(ctx), event); aErr != nil {
		c.log.With(sl.Err(fmt.Errorf("archive webhook: %w", aErr))).Warn("webhook archive")
	}
}
