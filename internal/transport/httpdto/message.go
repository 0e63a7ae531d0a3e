package httpdto

import (
	"time"

	"moodchat/internal/domain/message"
)

type ReactRequest struct {
	Emoji string `json:"emoji" binding:"required"`
}

type EmotionView struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence,omitempty"`
}

// MessageView is the wire shape of a message, shared by the REST history
// endpoints and the realtime events. ReplyTo is resolved one level deep;
// a dangling reference keeps ReplyToID set with ReplyTo left null.
type MessageView struct {
	ID          string              `json:"id"`
	SenderID    string              `json:"sender_id"`
	ReceiverID  string              `json:"receiver_id"`
	Content     string              `json:"content"`
	Kind        string              `json:"kind"`
	Emotion     *EmotionView        `json:"emotion,omitempty"`
	ImageURL    string              `json:"image_url,omitempty"`
	Status      string              `json:"status"`
	DeliveredAt *time.Time          `json:"delivered_at,omitempty"`
	SeenAt      *time.Time          `json:"seen_at,omitempty"`
	ReplyToID   string              `json:"reply_to_id,omitempty"`
	ReplyTo     *MessageView        `json:"reply_to,omitempty"`
	Reactions   map[string][]string `json:"reactions"`
	CreatedAt   time.Time           `json:"created_at"`
}

func NewMessageView(m message.Message) MessageView {
	v := MessageView{
		ID:         m.ID.String(),
		SenderID:   m.SenderID.String(),
		ReceiverID: m.ReceiverID.String(),
		Content:    m.Content,
		Kind:       m.Kind,
		Status:     m.Status,
		Reactions:  map[string][]string{},
		CreatedAt:  m.CreatedAt,
	}
	if m.EmotionLabel.Valid {
		v.Emotion = &EmotionView{Label: m.EmotionLabel.String}
		if m.EmotionConfidence.Valid {
			v.Emotion.Confidence = m.EmotionConfidence.Float64
		}
	}
	if m.ImageURL.Valid {
		v.ImageURL = m.ImageURL.String
	}
	if m.DeliveredAt.Valid {
		t := m.DeliveredAt.Time
		v.DeliveredAt = &t
	}
	if m.SeenAt.Valid {
		t := m.SeenAt.Time
		v.SeenAt = &t
	}
	if m.ReplyToID.Valid {
		v.ReplyToID = m.ReplyToID.UUID.String()
	}
	for emoji, users := range m.Reactions {
		v.Reactions[emoji] = append([]string(nil), users...)
	}
	return v
}

// NewMessageViewWithReply attaches the resolved reply target, if any.
func NewMessageViewWithReply(m message.Message, replyTo *message.Message) MessageView {
	v := NewMessageView(m)
	if replyTo != nil {
		rv := NewMessageView(*replyTo)
		v.ReplyTo = &rv
	}
	return v
}
