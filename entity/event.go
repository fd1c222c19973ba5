package entity

// Live feed event types.
const (
	EventNewMessage = "new_message"
	EventNewOrder   = "new_order"
	EventChatPaused = "chat_paused"
)
