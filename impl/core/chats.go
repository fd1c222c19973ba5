package core

import (
	"MenuHub/entity"
	"context"
	"fmt"
	"log/slog"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

func page(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (c *Core) ListChats(ctx context.Context, companyID string, limit, offset int) ([]entity.Chat, error) {
	limit, offset = page(limit, offset)
	return c.repo.ListChats(ctx, companyID, limit, offset)
}

func (c *Core) GetChatMessages(ctx context.Context, companyID, chatID string, limit, offset int) ([]entity.ChatMessage, error) {
	limit, offset = page(limit, offset)
	return c.repo.GetChatMessages(ctx, companyID, chatID, limit, offset)
}

// SetChatPaused toggles automated replies for one chat.
func (c *Core) SetChatPaused(ctx context.Context, companyID, chatID string, paused bool) error {
	if err := c.repo.SetChatPaused(ctx, companyID, chatID, paused); err != nil {
		return err
	}

	event := entity.AiEventResumedManual
	if paused {
		event = entity.AiEventPausedManual
	}
	c.saveAiLog(ctx, &entity.AiConversationLog{
		CompanyID: companyID,
		ChatID:    chatID,
		EventType: event,
	})

	c.broadcast(companyID, entity.EventChatPaused, map[string]interface{}{
		"company_id": companyID,
		"chat_id":    chatID,
		"ai_paused":  paused,
	})

	c.log.With(
		slog.String("company_id", companyID),
		slog.String("chat_id", chatID),
		slog.Bool("paused", paused),
	).Info("chat pause changed")
	return nil
}

// MarkChatRead clears the unread counter of a chat.
func (c *Core) MarkChatRead(ctx context.Context, companyID, chatID string) error {
	return c.repo.MarkChatRead(ctx, companyID, chatID)
}

// SendChatMessage sends a manager's reply through the company's gateway.
func (c *Core) SendChatMessage(ctx context.Context, companyID, chatID, text string) (*entity.ChatMessage, error) {
	if c.messenger == nil {
		return nil, fmt.Errorf("%w: whatsapp gateway", entity.ErrServiceUnavailable)
	}

	integration, err := c.repo.GetIntegrationByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	id, err := c.messenger.SendText(ctx, integration, chatID, text)
	if err != nil {
		return nil, fmt.Errorf("send to %s: %w", chatID, err)
	}

	return c.storeOutbound(ctx, companyID, chatID, id, text), nil
}
