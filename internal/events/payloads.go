package events

import "time"

// Inbound payloads (client -> server).

type SendMessagePayload struct {
	ReceiverID string          `json:"receiver_id"`
	Content    string          `json:"content"`
	Kind       string          `json:"kind"`
	Emotion    *EmotionPayload `json:"emotion,omitempty"`
	ImageURL   string          `json:"image_url,omitempty"`
	ReplyTo    string          `json:"reply_to,omitempty"`
}

type EmotionPayload struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence,omitempty"`
}

type TypingPayload struct {
	ReceiverID string `json:"receiver_id"`
	IsTyping   bool   `json:"is_typing"`
}

type MarkMessageSeenPayload struct {
	MessageID string `json:"message_id"`
}

type MarkConversationSeenPayload struct {
	SenderID string `json:"sender_id"`
}

type ReactPayload struct {
	MessageID string `json:"message_id"`
	Emoji     string `json:"emoji"`
}

// Outbound payloads (server -> client).

type OnlineUser struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

type PresencePayload struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

type DeliveredPayload struct {
	MessageID   string    `json:"message_id"`
	Status      string    `json:"status"`
	DeliveredAt time.Time `json:"delivered_at"`
}

type SeenPayload struct {
	MessageID string    `json:"message_id"`
	Status    string    `json:"status"`
	SeenAt    time.Time `json:"seen_at"`
	SeenBy    string    `json:"seen_by,omitempty"`
}

type MessagesSeenPayload struct {
	ReceiverID   string    `json:"receiver_id"`
	ReceiverName string    `json:"receiver_name,omitempty"`
	SeenAt       time.Time `json:"seen_at"`
	Count        int64     `json:"count"`
}

type UserTypingPayload struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	IsTyping bool   `json:"is_typing"`
}

type ReactionPayload struct {
	MessageID string              `json:"message_id"`
	Reactions map[string][]string `json:"reactions"`
	UserID    string              `json:"user_id"`
	Emoji     string              `json:"emoji"`
	Action    string              `json:"action"` // "add" or "remove"
}

type ErrorPayload struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
