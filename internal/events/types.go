package events

// Client -> server event types.
const (
	EventTypeSendMessage          = "send_message"
	EventTypeTyping               = "typing"
	EventTypeMarkMessageSeen      = "mark_message_seen"
	EventTypeMarkConversationSeen = "mark_conversation_seen"
	EventTypeReact                = "react"
)

// Server -> client event types.
const (
	EventTypeOnlineUsers      = "online_users"
	EventTypeUserOnline       = "user_online"
	EventTypeUserOffline      = "user_offline"
	EventTypeJoinError        = "join_error"
	EventTypeMessageSent      = "message_sent"
	EventTypeMessageReceived  = "message_received"
	EventTypeMessageDelivered = "message_delivered"
	EventTypeMessageSeen      = "message_seen"
	EventTypeMessagesSeen     = "messages_seen"
	EventTypeUserTyping       = "user_typing"
	EventTypeMessageReaction  = "message_reaction"
	EventTypeMessageError     = "message_error"
	EventTypeError            = "error"
)
