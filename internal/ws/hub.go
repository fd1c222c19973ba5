package ws

import (
	"MenuHub/internal/lib/sl"
	"context"
	"encoding/json"
	"log/slog"
	"sync"
)

// ClientMessageHandler handles messages sent by dashboard clients.
type ClientMessageHandler interface {
	MarkChatRead(ctx context.Context, companyID, chatID string) error
}

// Event is one live feed frame.
type Event struct {
	Type      string      `json:"type"`
	CompanyID string      `json:"company_id"`
	Data      interface{} `json:"data"`
}

// Hub keeps the connected dashboard clients and fans events out to the ones
// watching the event's company.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan *Event
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
	handler    ClientMessageHandler
	log        *slog.Logger
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan *Event, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log.With(sl.Module("ws")),
	}
}

func (h *Hub) SetHandler(handler ClientMessageHandler) {
	h.handler = handler
}

// Run is the hub event loop; it returns when ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			data, err := json.Marshal(event)
			if err != nil {
				h.log.With(sl.Err(err)).Warn("marshal event")
				continue
			}
			h.mu.Lock()
			for client := range h.clients {
				if !client.watches(event.CompanyID) {
					continue
				}
				select {
				case client.send <- data:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast queues an event for the clients of companyID. It never blocks;
// events are dropped when the queue is full.
func (h *Hub) Broadcast(companyID, eventType string, data interface{}) {
	select {
	case h.broadcast <- &Event{Type: eventType, CompanyID: companyID, Data: data}:
	default:
		h.log.With(slog.String("type", eventType)).Warn("feed queue full, event dropped")
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

type clientEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// HandleClientMessage dispatches a frame received from a client.
func (h *Hub) HandleClientMessage(client *Client, raw []byte) {
	if h.handler == nil {
		return
	}

	var event clientEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		h.log.With(sl.Err(err)).Debug("parse client message")
		return
	}

	switch event.Type {
	case "mark_read":
		var data struct {
			CompanyID string `json:"company_id"`
			ChatID    string `json:"chat_id"`
		}
		if err := json.Unmarshal(event.Data, &data); err != nil {
			h.log.With(sl.Err(err)).Debug("parse mark_read")
			return
		}
		if data.CompanyID == "" || data.ChatID == "" || !client.watches(data.CompanyID) {
			return
		}
		if err := h.handler.MarkChatRead(context.Background(), data.CompanyID, data.ChatID); err != nil {
			h.log.With(
				slog.String("username", client.username),
				slog.String("chat_id", data.ChatID),
				sl.Err(err),
			).Error("mark chat read")
		}
	}
}
