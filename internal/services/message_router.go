package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"moodchat/internal/domain/message"
	"moodchat/internal/events"
	"moodchat/internal/metrics"
	"moodchat/internal/presence"
	"moodchat/internal/repository"
	"moodchat/internal/transport/httpdto"
	moodchat_errors "moodchat/pkg/errors"
	"moodchat/pkg/logger"

	"github.com/google/uuid"
)

// MessageRouter drives the message lifecycle: validate, persist at sent,
// hand off to the receiver's live connection if there is one, advance to
// delivered, and echo confirmation to the sender. An offline receiver is
// an expected outcome, not an error; the message simply stays at sent.
type MessageRouter struct {
	msgRepo  repository.MessageRepository
	registry *presence.Registry
	notifier Notifier
	log      *logger.Logger
}

func NewMessageRouter(msgRepo repository.MessageRepository, registry *presence.Registry, notifier Notifier, log *logger.Logger) *MessageRouter {
	return &MessageRouter{msgRepo: msgRepo, registry: registry, notifier: notifier, log: log}
}

// Send processes an outbound intent from the connection senderConnID.
// Validation failures (ErrNotAuthenticated, ErrEmptyMessage,
// ErrInvalidInput, ErrNotFound for a bad reply target) leave no state
// behind; the caller reports them back on the same connection.
func (r *MessageRouter) Send(ctx context.Context, senderConnID string, in events.SendMessagePayload) (httpdto.MessageView, error) {
	senderRaw, ok := r.registry.UserFor(senderConnID)
	if !ok {
		return httpdto.MessageView{}, moodchat_errors.ErrNotAuthenticated
	}
	senderID, err := uuid.Parse(senderRaw)
	if err != nil {
		return httpdto.MessageView{}, moodchat_errors.ErrNotAuthenticated
	}

	receiverID, err := uuid.Parse(in.ReceiverID)
	if err != nil {
		return httpdto.MessageView{}, moodchat_errors.ErrInvalidInput
	}

	kind := in.Kind
	switch kind {
	case "":
		kind = message.KindText
	case message.KindText, message.KindEmotion, message.KindMoodImage:
	default:
		return httpdto.MessageView{}, moodchat_errors.ErrInvalidInput
	}

	msg := message.Message{
		ID:         uuid.New(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    in.Content,
		Kind:       kind,
		Status:     message.StatusSent,
		Reactions:  message.ReactionMap{},
		CreatedAt:  time.Now(),
	}
	if in.Emotion != nil {
		msg.EmotionLabel = sql.NullString{String: in.Emotion.Label, Valid: true}
		if in.Emotion.Confidence > 0 {
			msg.EmotionConfidence = sql.NullFloat64{Float64: in.Emotion.Confidence, Valid: true}
		}
	}
	if in.ImageURL != "" {
		msg.ImageURL = sql.NullString{String: in.ImageURL, Valid: true}
	}
	if !msg.HasPayload() {
		return httpdto.MessageView{}, moodchat_errors.ErrEmptyMessage
	}

	// The reply target must exist at send time. Targets deleted later
	// leave a dangling reference, which readers tolerate.
	var replyTo *message.Message
	if in.ReplyTo != "" {
		replyID, err := uuid.Parse(in.ReplyTo)
		if err != nil {
			return httpdto.MessageView{}, moodchat_errors.ErrInvalidInput
		}
		target, err := r.msgRepo.GetByID(ctx, replyID)
		if err != nil {
			return httpdto.MessageView{}, err
		}
		msg.ReplyToID = uuid.NullUUID{UUID: replyID, Valid: true}
		replyTo = &target
	}

	if err := r.msgRepo.Create(ctx, &msg); err != nil {
		return httpdto.MessageView{}, err
	}
	metrics.MessagesSent.WithLabelValues(kind).Inc()

	view := httpdto.NewMessageViewWithReply(msg, replyTo)

	// Self-chat never routes to "the other side"; there is no other side.
	if !msg.IsSelfChat() {
		if receiverConn, online := r.registry.ConnectionFor(receiverID.String()); online {
			r.deliver(ctx, senderConnID, receiverConn, msg, &view)
		}
	}

	// Echo to the sender last, so the confirmation carries the final
	// status for this round trip.
	_ = r.notifier.Push(senderConnID, events.EventTypeMessageSent, view)

	return view, nil
}

// deliver pushes the message to the receiver's connection and, if the
// push lands, advances the status to delivered and tells the sender. A
// failed push means the connection vanished after the presence lookup;
// the message stays at sent and the receiver catches up on reconnect.
func (r *MessageRouter) deliver(ctx context.Context, senderConnID, receiverConnID string, msg message.Message, view *httpdto.MessageView) {
	if err := r.notifier.Push(receiverConnID, events.EventTypeMessageReceived, *view); err != nil {
		if r.log != nil {
			r.log.InfofCtx(ctx, "receiver connection %s gone, message %s stays sent", receiverConnID, msg.ID)
		}
		return
	}

	deliveredAt := time.Now()
	transitioned, err := r.msgRepo.MarkDelivered(ctx, msg.ID, deliveredAt)
	if err != nil {
		if r.log != nil {
			r.log.ErrorfCtx(ctx, "mark delivered %s: %s", msg.ID, err)
		}
		return
	}
	if !transitioned {
		return
	}
	metrics.StatusTransitions.WithLabelValues(message.StatusDelivered).Inc()

	view.Status = message.StatusDelivered
	view.DeliveredAt = &deliveredAt

	_ = r.notifier.Push(senderConnID, events.EventTypeMessageDelivered, events.DeliveredPayload{
		MessageID:   msg.ID.String(),
		Status:      message.StatusDelivered,
		DeliveredAt: deliveredAt,
	})
}

// History returns the conversation between the caller and peer (the
// caller's self-chat thread when they are the same), with reply targets
// resolved one level deep.
func (r *MessageRouter) History(ctx context.Context, callerID, peerID uuid.UUID) ([]httpdto.MessageView, error) {
	msgs, err := r.msgRepo.Conversation(ctx, callerID, peerID)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*message.Message, len(msgs))
	for i := range msgs {
		byID[msgs[i].ID] = &msgs[i]
	}

	views := make([]httpdto.MessageView, 0, len(msgs))
	for _, m := range msgs {
		var replyTo *message.Message
		if m.ReplyToID.Valid {
			if target, ok := byID[m.ReplyToID.UUID]; ok {
				replyTo = target
			} else if loaded, err := r.msgRepo.GetByID(ctx, m.ReplyToID.UUID); err == nil {
				replyTo = &loaded
			} else if !errors.Is(err, moodchat_errors.ErrNotFound) {
				return nil, err
			}
			// A dangling reference renders with reply_to_id only.
		}
		views = append(views, httpdto.NewMessageViewWithReply(m, replyTo))
	}
	return views, nil
}
