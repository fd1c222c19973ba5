package repository

import (
	"MenuHub/entity"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/supabase-community/postgrest-go"
)

func (s *Supabase) GetIntegrationByInstanceKey(_ context.Context, instanceKey string) (*entity.Integration, error) {
	var rows []entity.Integration
	_, err := s.client.From(integrationsTable).
		Select("*", "", false).
		Eq("instance_key", instanceKey).
		Limit(1, "").
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("select integration: %w", err)
	}
	integration, err := first(rows)
	if errors.Is(err, errNoRows) {
		return nil, entity.ErrTenantNotFound
	}
	return integration, nil
}

func (s *Supabase) GetIntegrationByCompany(_ context.Context, companyID string) (*entity.Integration, error) {
	var rows []entity.Integration
	_, err := s.client.From(integrationsTable).
		Select("*", "", false).
		Eq("company_id", companyID).
		Limit(1, "").
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("select company integration: %w", err)
	}
	integration, err := first(rows)
	if errors.Is(err, errNoRows) {
		return nil, entity.ErrTenantNotFound
	}
	return integration, nil
}

// TouchChat creates the chat when missing and refreshes its preview in one
// statement. The function bumps unread_count in SQL and leaves ai_paused alone.
func (s *Supabase) TouchChat(_ context.Context, touch *entity.ChatTouch) (*entity.Chat, error) {
	body := s.client.Rpc(touchChatRpc, "", touch)
	rows, err := decodeRpcRows[entity.Chat](touchChatRpc, body)
	if err != nil {
		return nil, err
	}
	chat, err := first(rows)
	if err != nil {
		return nil, fmt.Errorf("rpc %s: %w", touchChatRpc, err)
	}
	return chat, nil
}

func (s *Supabase) SetChatPaused(_ context.Context, companyID, chatID string, paused bool) error {
	var result []entity.Chat
	_, err := s.client.From(chatsTable).
		Update(map[string]any{"ai_paused": paused}, "representation", "").
		Eq("company_id", companyID).
		Eq("chat_id", chatID).
		ExecuteTo(&result)
	if err != nil {
		return fmt.Errorf("update chat pause: %w", err)
	}
	if len(result) == 0 {
		return entity.ErrChatNotFound
	}
	return nil
}

func (s *Supabase) MarkChatRead(_ context.Context, companyID, chatID string) error {
	var result []entity.Chat
	_, err := s.client.From(chatsTable).
		Update(map[string]any{"unread_count": 0}, "representation", "").
		Eq("company_id", companyID).
		Eq("chat_id", chatID).
		ExecuteTo(&result)
	if err != nil {
		return fmt.Errorf("mark chat read: %w", err)
	}
	if len(result) == 0 {
		return entity.ErrChatNotFound
	}
	return nil
}

func (s *Supabase) ListChats(_ context.Context, companyID string, limit, offset int) ([]entity.Chat, error) {
	var rows []entity.Chat
	_, err := s.client.From(chatsTable).
		Select("*", "", false).
		Eq("company_id", companyID).
		Order("last_message_at", &postgrest.OrderOpts{Ascending: false}).
		Range(offset, offset+limit-1, "").
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("select chats: %w", err)
	}
	return rows, nil
}

func (s *Supabase) SaveMessage(_ context.Context, msg *entity.ChatMessage) error {
	var result []entity.ChatMessage
	_, err := s.client.From(messagesTable).
		Insert(msg, false, "", "representation", "").
		ExecuteTo(&result)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (s *Supabase) CountInboundMessages(_ context.Context, companyID, chatID string) (int, error) {
	var rows []struct {
		MessageID string `json:"message_id"`
	}
	count, err := s.client.From(messagesTable).
		Select("message_id", "exact", false).
		Eq("company_id", companyID).
		Eq("chat_id", chatID).
		Eq("direction", entity.DirectionInbound).
		Limit(2, "").
		ExecuteTo(&rows)
	if err != nil {
		return 0, fmt.Errorf("count inbound messages: %w", err)
	}
	if count > 0 {
		return int(count), nil
	}
	return len(rows), nil
}

func (s *Supabase) GetChatMessages(_ context.Context, companyID, chatID string, limit, offset int) ([]entity.ChatMessage, error) {
	var rows []entity.ChatMessage
	_, err := s.client.From(messagesTable).
		Select("*", "", false).
		Eq("company_id", companyID).
		Eq("chat_id", chatID).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Range(offset, offset+limit-1, "").
		ExecuteTo(&rows)
	if err != nil {
		return nil, fmt.Errorf("select messages: %w", err)
	}
	return rows, nil
}

func (s *Supabase) SaveAiLog(_ context.Context, entry *entity.AiConversationLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	var result []entity.AiConversationLog
	_, err := s.client.From(aiLogsTable).
		Insert(entry, false, "", "representation", "").
		ExecuteTo(&result)
	if err != nil {
		return fmt.Errorf("insert ai log: %w", err)
	}
	return nil
}
