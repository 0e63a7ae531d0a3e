package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"moodchat/internal/domain/message"
	moodchat_errors "moodchat/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresMessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &PostgresMessageRepository{db: db}
}

func (r *PostgresMessageRepository) Create(ctx context.Context, m *message.Message) error {
	res := r.db.WithContext(ctx).Create(m)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return moodchat_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresMessageRepository) GetByID(ctx context.Context, id uuid.UUID) (message.Message, error) {
	var m message.Message
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return message.Message{}, moodchat_errors.ErrNotFound
		}
		return message.Message{}, err
	}
	return m, nil
}

func (r *PostgresMessageRepository) Conversation(ctx context.Context, a, b uuid.UUID) ([]message.Message, error) {
	var messages []message.Message
	q := r.db.WithContext(ctx)
	if a == b {
		// Self-chat thread: both sides are the same user.
		q = q.Where("sender_id = ? AND receiver_id = ?", a, a)
	} else {
		q = q.Where(
			"(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			a, b, b, a,
		)
	}
	err := q.Order("created_at ASC").Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *PostgresMessageRepository) MarkDelivered(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	// The status guard in the WHERE clause makes the transition
	// monotonic: a message already delivered or seen is left untouched.
	res := r.db.WithContext(ctx).
		Model(&message.Message{}).
		Where("id = ? AND status = ?", id, message.StatusSent).
		Updates(map[string]interface{}{
			"status":       message.StatusDelivered,
			"delivered_at": sql.NullTime{Time: at, Valid: true},
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *PostgresMessageRepository) MarkSeen(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&message.Message{}).
		Where("id = ? AND status <> ?", id, message.StatusSeen).
		Updates(map[string]interface{}{
			"status":  message.StatusSeen,
			"seen_at": sql.NullTime{Time: at, Valid: true},
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *PostgresMessageRepository) MarkConversationSeen(ctx context.Context, senderID, receiverID uuid.UUID, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&message.Message{}).
		Where("sender_id = ? AND receiver_id = ? AND status <> ?", senderID, receiverID, message.StatusSeen).
		Updates(map[string]interface{}{
			"status":  message.StatusSeen,
			"seen_at": sql.NullTime{Time: at, Valid: true},
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *PostgresMessageRepository) SaveReactions(ctx context.Context, id uuid.UUID, reactions message.ReactionMap) error {
	res := r.db.WithContext(ctx).
		Model(&message.Message{}).
		Where("id = ?", id).
		Update("reactions", reactions)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return moodchat_errors.ErrNotFound
	}
	return nil
}
