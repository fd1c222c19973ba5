package entity

import (
	"MenuHub/internal/lib/validate"
	"net/http"
	"time"
)

const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

// Chat is a conversation thread keyed by (company_id, chat_id).
type Chat struct {
	CompanyID     string    `json:"company_id"`
	ChatID        string    `json:"chat_id"`
	Phone         string    `json:"phone"`
	ContactName   string    `json:"contact_name,omitempty"`
	LastMessage   string    `json:"last_message"`
	LastMessageAt time.Time `json:"last_message_at"`
	UnreadCount   int       `json:"unread_count"`
	AiPaused      bool      `json:"ai_paused"`
}

// ChatTouch is what a new message may change on its chat row. The row is
// created when missing; ai_paused is never part of it and unread_count is
// incremented by the database.
type ChatTouch struct {
	CompanyID       string    `json:"p_company_id"`
	ChatID          string    `json:"p_chat_id"`
	Phone           string    `json:"p_phone"`
	ContactName     string    `json:"p_contact_name"`
	LastMessage     string    `json:"p_last_message"`
	LastMessageAt   time.Time `json:"p_last_message_at"`
	IncrementUnread bool      `json:"p_increment_unread"`
}

// ChatMessage is an append-only row per inbound or outbound WhatsApp message.
type ChatMessage struct {
	MessageID   string    `json:"message_id"`
	CompanyID   string    `json:"company_id"`
	ChatID      string    `json:"chat_id"`
	Direction   string    `json:"direction"` // "inbound" | "outbound"
	FromMe      bool      `json:"from_me"`
	Content     string    `json:"content"`
	ContactName string    `json:"contact_name,omitempty"`
	MessageType string    `json:"message_type"`
	CreatedAt   time.Time `json:"created_at"`
}

type PauseRequest struct {
	Paused bool `json:"paused"`
}

func (p *PauseRequest) Bind(_ *http.Request) error {
	return nil
}

type SendTextRequest struct {
	Text string `json:"text" validate:"required,max=4096"`
}

func (s *SendTextRequest) Bind(_ *http.Request) error {
	return validate.Struct(s)
}
