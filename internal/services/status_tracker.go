package services

import (
	"context"
	"time"

	"moodchat/internal/domain/message"
	"moodchat/internal/events"
	"moodchat/internal/metrics"
	"moodchat/internal/presence"
	"moodchat/internal/repository"

	"github.com/google/uuid"
)

// StatusTracker owns the delivered -> seen half of the message lifecycle.
// Transitions only move forward; marking an already-seen message again is
// absorbed silently.
type StatusTracker struct {
	msgRepo  repository.MessageRepository
	userRepo repository.UserRepository
	registry *presence.Registry
	notifier Notifier
}

func NewStatusTracker(msgRepo repository.MessageRepository, userRepo repository.UserRepository, registry *presence.Registry, notifier Notifier) *StatusTracker {
	return &StatusTracker{msgRepo: msgRepo, userRepo: userRepo, registry: registry, notifier: notifier}
}

// MarkSeen flips one message to seen on behalf of observerID. Only the
// receiver can mark a message seen; anyone else is a no-op. The sender's
// live connection, if any, gets a message_seen notification.
func (t *StatusTracker) MarkSeen(ctx context.Context, messageID, observerID uuid.UUID) error {
	msg, err := t.msgRepo.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if msg.ReceiverID != observerID {
		return nil
	}
	if message.StatusRank(msg.Status) >= message.StatusRank(message.StatusSeen) {
		return nil
	}

	seenAt := time.Now()
	transitioned, err := t.msgRepo.MarkSeen(ctx, messageID, seenAt)
	if err != nil {
		return err
	}
	if !transitioned {
		// Already seen. Idempotent, not an error.
		return nil
	}
	metrics.StatusTransitions.WithLabelValues(message.StatusSeen).Inc()

	// Self-chat has no other side to notify.
	if msg.IsSelfChat() {
		return nil
	}

	if senderConn, online := t.registry.ConnectionFor(msg.SenderID.String()); online {
		_ = t.notifier.Push(senderConn, events.EventTypeMessageSeen, events.SeenPayload{
			MessageID: messageID.String(),
			Status:    message.StatusSeen,
			SeenAt:    seenAt,
			SeenBy:    t.usernameOf(ctx, observerID),
		})
	}
	return nil
}

// MarkAllSeenFrom bulk-flips every non-seen message from senderID to
// observerID and notifies the sender once with the aggregate count,
// instead of one event per message.
func (t *StatusTracker) MarkAllSeenFrom(ctx context.Context, senderID, observerID uuid.UUID) (int64, error) {
	seenAt := time.Now()
	count, err := t.msgRepo.MarkConversationSeen(ctx, senderID, observerID, seenAt)
	if err != nil {
		return 0, err
	}
	if count == 0 {
		return 0, nil
	}
	metrics.StatusTransitions.WithLabelValues(message.StatusSeen).Add(float64(count))

	if senderID == observerID {
		return count, nil
	}

	if senderConn, online := t.registry.ConnectionFor(senderID.String()); online {
		_ = t.notifier.Push(senderConn, events.EventTypeMessagesSeen, events.MessagesSeenPayload{
			ReceiverID:   observerID.String(),
			ReceiverName: t.usernameOf(ctx, observerID),
			SeenAt:       seenAt,
			Count:        count,
		})
	}
	return count, nil
}

func (t *StatusTracker) usernameOf(ctx context.Context, userID uuid.UUID) string {
	if t.userRepo == nil {
		return ""
	}
	u, err := t.userRepo.GetByID(ctx, userID)
	if err != nil {
		return ""
	}
	return u.Username
}
