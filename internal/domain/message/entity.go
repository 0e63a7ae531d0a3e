package message

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Message kinds
const (
	KindText      = "text"
	KindEmotion   = "emotion"
	KindMoodImage = "mood_image"
)

// Delivery statuses. Transitions only move forward: sent -> delivered -> seen.
const (
	StatusSent      = "sent"
	StatusDelivered = "delivered"
	StatusSeen      = "seen"
)

// Message represents the messages table
type Message struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	SenderID          uuid.UUID `gorm:"type:uuid;index:idx_messages_pair;not null"`
	ReceiverID        uuid.UUID `gorm:"type:uuid;index:idx_messages_pair;not null"`
	Content           string
	Kind              string `gorm:"default:text"`
	EmotionLabel      sql.NullString
	EmotionConfidence sql.NullFloat64
	ImageURL          sql.NullString
	Status            string `gorm:"default:sent;index"`
	DeliveredAt       sql.NullTime
	SeenAt            sql.NullTime
	ReplyToID         uuid.NullUUID `gorm:"type:uuid"`
	Reactions         ReactionMap   `gorm:"type:jsonb;default:'{}'"`
	CreatedAt         time.Time     `gorm:"index"`
}

func (Message) TableName() string {
	return "messages"
}

// IsSelfChat reports whether the message lives in the sender's personal
// notes thread. Self-chat messages never route delivery or seen events.
func (m Message) IsSelfChat() bool {
	return m.SenderID == m.ReceiverID
}

// HasPayload reports whether the message carries anything worth persisting.
func (m Message) HasPayload() bool {
	return m.Content != "" || m.EmotionLabel.Valid || m.ImageURL.Valid
}

// StatusRank maps a status to its position in the sent->delivered->seen order.
// Unknown statuses rank below sent so guarded updates reject them.
func StatusRank(status string) int {
	switch status {
	case StatusSent:
		return 1
	case StatusDelivered:
		return 2
	case StatusSeen:
		return 3
	default:
		return 0
	}
}
