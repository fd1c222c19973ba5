package entity

import "time"

const (
	AiEventPaused        = "ai_paused_netlify"
	AiEventComposed      = "ai_reply_composed"
	AiEventSent          = "ai_reply_sent"
	AiEventSendFailed    = "ai_reply_send_failed"
	AiEventComposeFailed = "ai_compose_failed"
	AiEventPausedManual  = "ai_paused_manual"
	AiEventResumedManual = "ai_resumed_manual"
)

type AiConversationLog struct {
	CompanyID   string         `json:"company_id"`
	ChatID      string         `json:"chat_id"`
	EventType   string         `json:"event_type"`
	UserMessage string         `json:"user_message,omitempty"`
	AiResponse  string         `json:"ai_response,omitempty"`
	Model       string         `json:"model,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

const (
	ReplyKindStaticWelcome = "static_welcome"
	ReplyKindAiWelcome     = "ai_welcome"
	ReplyKindAiReply       = "ai_reply"
)

// ReplyInput is what the composer needs to write a reply for one inbound message.
type ReplyInput struct {
	Integration *Integration
	ContactName string
	Text        string
}

type AiReply struct {
	Text  string
	Model string
}
