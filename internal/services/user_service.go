package services

import (
	"context"
	"database/sql"
	"time"

	"moodchat/internal/domain/user"
	"moodchat/internal/presence"
	redisstore "moodchat/internal/redis"
	"moodchat/internal/repository"

	"github.com/google/uuid"
)

type UserService struct {
	repo     repository.UserRepository
	registry *presence.Registry
	lastSeen *redisstore.LastSeenCache
}

func NewUserService(repo repository.UserRepository, registry *presence.Registry, lastSeen *redisstore.LastSeenCache) *UserService {
	return &UserService{repo: repo, registry: registry, lastSeen: lastSeen}
}

func (s *UserService) Me(ctx context.Context, userID uuid.UUID) (user.User, error) {
	return s.repo.GetByID(ctx, userID)
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, displayName, avatarURL string) (user.User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return user.User{}, err
	}
	u.DisplayName = displayName
	if avatarURL != "" {
		u.AvatarURL = avatarURL
	}
	u.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, u); err != nil {
		return user.User{}, err
	}
	return u, nil
}

// OnlineUsers returns the users currently online, excluding the caller.
// The database rows are filtered against the live registry so a crashed
// connection that never flipped is_online back off cannot linger.
func (s *UserService) OnlineUsers(ctx context.Context, excluding uuid.UUID) ([]user.Public, error) {
	rows, err := s.repo.ListOnline(ctx, excluding)
	if err != nil {
		return nil, err
	}
	out := make([]user.Public, 0, len(rows))
	for _, u := range rows {
		if _, ok := s.registry.ConnectionFor(u.ID.String()); !ok {
			continue
		}
		out = append(out, u.ToPublic())
	}
	return out, nil
}

// GetPublic returns another user's public profile, preferring the cached
// last-seen timestamp over the persisted one when available.
func (s *UserService) GetPublic(ctx context.Context, userID uuid.UUID) (user.Public, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return user.Public{}, err
	}
	if s.lastSeen != nil {
		if at, ok, err := s.lastSeen.Get(ctx, userID.String()); err == nil && ok {
			u.LastSeenAt = sql.NullTime{Time: at, Valid: true}
		}
	}
	_, online := s.registry.ConnectionFor(userID.String())
	u.IsOnline = online
	return u.ToPublic(), nil
}
