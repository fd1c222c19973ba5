package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	WebhookStatusReceived   = "received"
	WebhookStatusIgnored    = "ignored"
	WebhookStatusPaused     = "paused"
	WebhookStatusSuppressed = "suppressed"
	WebhookStatusSent       = "sent"
)

// InboundPayload is a gateway webhook body. Providers nest the same fields
// under different keys, so it is kept as a generic JSON object.
type InboundPayload map[string]any

// InboundMessage is the normalized sender and text of an inbound payload.
type InboundMessage struct {
	ID          string
	RemoteJid   string
	Phone       string
	ContactName string
	Text        string
	Type        string
	FromMe      bool
}

type WebhookResult struct {
	Status    string `json:"status"`
	ChatID    string `json:"chat_id,omitempty"`
	MessageID string `json:"message_id,omitempty"`
	ReplyKind string `json:"reply_kind,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// WebhookEvent is the archived copy of one webhook call.
type WebhookEvent struct {
	InstanceKey string         `json:"instance_key" bson:"instance_key"`
	CompanyID   string         `json:"company_id" bson:"company_id"`
	Status      string         `json:"status" bson:"status"`
	Error       string         `json:"error,omitempty" bson:"error,omitempty"`
	Payload     map[string]any `json:"payload" bson:"payload"`
	ReceivedAt  time.Time      `json:"received_at" bson:"received_at"`
}

func ParseInboundPayload(body []byte) (InboundPayload, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var p InboundPayload
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if p == nil {
		return nil, fmt.Errorf("%w: empty body", ErrInvalidPayload)
	}
	return p, nil
}

func (p InboundPayload) InstanceKey() string {
	return p.pickString(
		"instance_key",
		"instanceKey",
		"messageData.instance_key",
		"messageData.instanceKey",
		"instance.key",
	)
}

func (p InboundPayload) Message() InboundMessage {
	msg := InboundMessage{
		ID:          p.pickString("key.id", "messageData.key.id", "message_id", "messageData.id"),
		RemoteJid:   p.pickString("key.remoteJid", "messageData.key.remoteJid", "remoteJid", "messageData.jid"),
		ContactName: p.pickString("pushName", "messageData.pushName", "contact_name"),
		Text: p.pickString(
			"message.conversation",
			"message.extendedTextMessage.text",
			"message.imageMessage.caption",
			"message.videoMessage.caption",
			"messageData.message.conversation",
			"messageData.message.extendedTextMessage.text",
			"messageData.message.imageMessage.caption",
			"messageData.message.videoMessage.caption",
			"text",
		),
		Type:   p.pickString("messageType", "messageData.messageType"),
		FromMe: p.pickBool("key.fromMe", "messageData.key.fromMe", "is_from_me", "fromMe"),
	}
	msg.Phone = PhoneFromJid(msg.RemoteJid)
	if msg.Type == "" {
		msg.Type = "text"
	}
	return msg
}

// IsGroup reports chats that never receive automated replies: groups and status broadcasts.
func (m InboundMessage) IsGroup() bool {
	return strings.HasSuffix(m.RemoteJid, "@g.us") || strings.HasPrefix(m.RemoteJid, "status@")
}

func PhoneFromJid(jid string) string {
	phone, _, _ := strings.Cut(jid, "@")
	phone, _, _ = strings.Cut(phone, ":")
	return phone
}

func (p InboundPayload) lookup(path string) (any, bool) {
	var current any = map[string]any(p)
	for _, part := range strings.Split(path, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = node[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func (p InboundPayload) pickString(paths ...string) string {
	for _, path := range paths {
		v, ok := p.lookup(path)
		if !ok {
			continue
		}
		switch t := v.(type) {
		case string:
			if s := strings.TrimSpace(t); s != "" {
				return s
			}
		case json.Number:
			return t.String()
		}
	}
	return ""
}

func (p InboundPayload) pickBool(paths ...string) bool {
	for _, path := range paths {
		v, ok := p.lookup(path)
		if !ok {
			continue
		}
		switch t := v.(type) {
		case bool:
			return t
		case string:
			return strings.EqualFold(t, "true")
		}
	}
	return false
}
