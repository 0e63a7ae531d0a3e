package services

import (
	"context"
	"sync"

	"moodchat/internal/events"
	"moodchat/internal/metrics"
	"moodchat/internal/repository"
	moodchat_errors "moodchat/pkg/errors"

	"github.com/google/uuid"
)

// ReactionLedger toggles (message, emoji, user) memberships. The
// read-modify-write runs under a per-message mutex so racing toggles
// serialize and the final state is whatever the last toggle produced;
// reaction maps are never merged optimistically.
type ReactionLedger struct {
	msgRepo  repository.MessageRepository
	notifier Notifier

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewReactionLedger(msgRepo repository.MessageRepository, notifier Notifier) *ReactionLedger {
	return &ReactionLedger{
		msgRepo:  msgRepo,
		notifier: notifier,
		locks:    make(map[uuid.UUID]*sync.Mutex),
	}
}

// Toggle adds userID under emoji if absent, removes it if present, and
// broadcasts the complete updated reaction map to every connection.
// Reactions render wherever the message is visible, not just for the two
// conversation participants.
func (l *ReactionLedger) Toggle(ctx context.Context, messageID uuid.UUID, emoji string, userID uuid.UUID) (events.ReactionPayload, error) {
	if emoji == "" {
		return events.ReactionPayload{}, moodchat_errors.ErrInvalidInput
	}

	lock := l.lockFor(messageID)
	lock.Lock()
	defer lock.Unlock()

	msg, err := l.msgRepo.GetByID(ctx, messageID)
	if err != nil {
		return events.ReactionPayload{}, err
	}

	if msg.Reactions == nil {
		msg.Reactions = map[string][]string{}
	}
	added := msg.Reactions.Toggle(emoji, userID.String())

	if err := l.msgRepo.SaveReactions(ctx, messageID, msg.Reactions); err != nil {
		return events.ReactionPayload{}, err
	}

	action := "remove"
	if added {
		action = "add"
	}
	metrics.ReactionToggles.WithLabelValues(action).Inc()

	payload := events.ReactionPayload{
		MessageID: messageID.String(),
		Reactions: msg.Reactions,
		UserID:    userID.String(),
		Emoji:     emoji,
		Action:    action,
	}
	l.notifier.Broadcast(events.EventTypeMessageReaction, payload)
	return payload, nil
}

func (l *ReactionLedger) lockFor(messageID uuid.UUID) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[messageID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[messageID] = lock
	}
	return lock
}
