package repository

import (
	"context"
	"time"

	"moodchat/internal/domain/message"
	"moodchat/internal/domain/user"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	GetByID(ctx context.Context, id uuid.UUID) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByUsername(ctx context.Context, username string) (user.User, error)
	Update(ctx context.Context, u user.User) error
	SetOnline(ctx context.Context, id uuid.UUID, online bool, at time.Time) error
	ListOnline(ctx context.Context, excluding uuid.UUID) ([]user.User, error)
}

type MessageRepository interface {
	Create(ctx context.Context, m *message.Message) error
	GetByID(ctx context.Context, id uuid.UUID) (message.Message, error)

	// Conversation returns the full history between two users in
	// chronological order. When a == b it returns the self-chat thread.
	Conversation(ctx context.Context, a, b uuid.UUID) ([]message.Message, error)

	// MarkDelivered advances a sent message to delivered, setting
	// delivered_at exactly once. Returns false if the message was not
	// in the sent state (already delivered or seen).
	MarkDelivered(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)

	// MarkSeen advances a message to seen, setting seen_at exactly
	// once. Returns false if the message was already seen.
	MarkSeen(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)

	// MarkConversationSeen flips every non-seen message from sender to
	// receiver into seen with a single timestamp and returns the count.
	MarkConversationSeen(ctx context.Context, senderID, receiverID uuid.UUID, at time.Time) (int64, error)

	SaveReactions(ctx context.Context, id uuid.UUID, reactions message.ReactionMap) error
}
