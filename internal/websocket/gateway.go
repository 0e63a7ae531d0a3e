package websocket

import (
	"context"
	"time"

	"moodchat/internal/events"
	"moodchat/internal/metrics"
	"moodchat/internal/presence"
	redisstore "moodchat/internal/redis"
	"moodchat/internal/repository"
	"moodchat/pkg/logger"

	"github.com/google/uuid"
)

// Gateway turns authenticated connections into presence registry
// bindings and fans out presence-change notifications. It is the only
// component that mutates the registry.
type Gateway struct {
	registry *presence.Registry
	hub      *Hub
	userRepo repository.UserRepository
	lastSeen *redisstore.LastSeenCache
	log      *logger.Logger
}

func NewGateway(registry *presence.Registry, hub *Hub, userRepo repository.UserRepository, lastSeen *redisstore.LastSeenCache, log *logger.Logger) *Gateway {
	g := &Gateway{
		registry: registry,
		hub:      hub,
		userRepo: userRepo,
		lastSeen: lastSeen,
		log:      log,
	}
	registry.OnEvict(func(connID string) {
		metrics.Evictions.Inc()
		hub.CloseConnection(connID)
	})
	return g
}

// OnJoin binds the connection to the user, marks them online, tells
// everyone else, and sends the joining connection the current online
// set. A user id that does not resolve to a real account gets a
// join_error on their own connection; nothing else changes.
func (g *Gateway) OnJoin(ctx context.Context, userID uuid.UUID, connID string) error {
	u, err := g.userRepo.GetByID(ctx, userID)
	if err != nil {
		_ = g.hub.Push(connID, events.EventTypeJoinError, events.ErrorPayload{
			Error: "failed to join chat",
			Code:  "JOIN_ERROR",
		})
		return err
	}

	g.registry.Bind(userID.String(), connID)

	if err := g.userRepo.SetOnline(ctx, userID, true, time.Now()); err != nil && g.log != nil {
		g.log.ErrorfCtx(ctx, "persist online for %s: %s", userID, err)
	}

	g.hub.BroadcastExcept(connID, events.EventTypeUserOnline, events.PresencePayload{
		UserID:   userID.String(),
		Username: u.Username,
	})

	_ = g.hub.Push(connID, events.EventTypeOnlineUsers, g.onlineSnapshot(ctx, userID))

	if g.log != nil {
		g.log.InfofCtx(ctx, "%s joined, %d online", u.Username, g.registry.OnlineCount())
	}
	return nil
}

// OnDisconnect tears down the binding owned by connID. If a newer bind
// already evicted this connection, Unbind refuses to act and the newer
// session stays untouched.
func (g *Gateway) OnDisconnect(ctx context.Context, connID string) {
	userRaw, ok := g.registry.Unbind(connID)
	if !ok {
		return
	}
	userID, err := uuid.Parse(userRaw)
	if err != nil {
		return
	}

	now := time.Now()
	if err := g.userRepo.SetOnline(ctx, userID, false, now); err != nil && g.log != nil {
		g.log.ErrorfCtx(ctx, "persist offline for %s: %s", userID, err)
	}
	if g.lastSeen != nil {
		if err := g.lastSeen.Set(ctx, userRaw, now); err != nil && g.log != nil {
			g.log.ErrorfCtx(ctx, "cache last seen for %s: %s", userID, err)
		}
	}

	username := ""
	if u, err := g.userRepo.GetByID(ctx, userID); err == nil {
		username = u.Username
	}
	g.hub.Broadcast(events.EventTypeUserOffline, events.PresencePayload{
		UserID:   userRaw,
		Username: username,
	})
}

// Typing forwards a typing indicator to the receiver's connection if
// they are online. Fire and forget, nothing persisted.
func (g *Gateway) Typing(senderUserID, senderUsername string, p events.TypingPayload) {
	receiverConn, online := g.registry.ConnectionFor(p.ReceiverID)
	if !online {
		return
	}
	_ = g.hub.Push(receiverConn, events.EventTypeUserTyping, events.UserTypingPayload{
		UserID:   senderUserID,
		Username: senderUsername,
		IsTyping: p.IsTyping,
	})
}

// onlineSnapshot builds the online_users payload for a joining user.
// The database rows are cross-checked against the registry so only
// users with a live connection appear.
func (g *Gateway) onlineSnapshot(ctx context.Context, excluding uuid.UUID) []events.OnlineUser {
	out := []events.OnlineUser{}
	rows, err := g.userRepo.ListOnline(ctx, excluding)
	if err != nil {
		if g.log != nil {
			g.log.ErrorfCtx(ctx, "list online users: %s", err)
		}
		return out
	}
	for _, u := range rows {
		if _, ok := g.registry.ConnectionFor(u.ID.String()); !ok {
			continue
		}
		out = append(out, events.OnlineUser{
			ID:          u.ID.String(),
			Username:    u.Username,
			DisplayName: u.DisplayName,
			AvatarURL:   u.AvatarURL,
		})
	}
	return out
}
