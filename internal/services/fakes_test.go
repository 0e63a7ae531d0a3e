package services

import (
	"context"
	"sync"
	"time"

	"moodchat/internal/domain/message"
	"moodchat/internal/domain/user"
	moodchat_errors "moodchat/pkg/errors"

	"github.com/google/uuid"
)

// In-memory stand-ins for the gorm repositories and the websocket hub.
// The message fake enforces the same status guards as the SQL layer so
// the services can be exercised against the real transition rules.

type fakeMessageRepo struct {
	mu    sync.Mutex
	byID  map[uuid.UUID]*message.Message
	order []uuid.UUID
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{byID: make(map[uuid.UUID]*message.Message)}
}

func (f *fakeMessageRepo) Create(ctx context.Context, m *message.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *m
	f.byID[m.ID] = &cp
	f.order = append(f.order, m.ID)
	return nil
}

func (f *fakeMessageRepo) GetByID(ctx context.Context, id uuid.UUID) (message.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.byID[id]
	if !ok {
		return message.Message{}, moodchat_errors.ErrNotFound
	}
	return *m, nil
}

func (f *fakeMessageRepo) Conversation(ctx context.Context, a, b uuid.UUID) ([]message.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []message.Message
	for _, id := range f.order {
		m := f.byID[id]
		if a == b {
			if m.SenderID == a && m.ReceiverID == a {
				out = append(out, *m)
			}
			continue
		}
		if (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a) {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeMessageRepo) MarkDelivered(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.byID[id]
	if !ok {
		return false, moodchat_errors.ErrNotFound
	}
	if m.Status != message.StatusSent {
		return false, nil
	}
	m.Status = message.StatusDelivered
	m.DeliveredAt.Time = at
	m.DeliveredAt.Valid = true
	return true, nil
}

func (f *fakeMessageRepo) MarkSeen(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.byID[id]
	if !ok {
		return false, moodchat_errors.ErrNotFound
	}
	if m.Status == message.StatusSeen {
		return false, nil
	}
	m.Status = message.StatusSeen
	m.SeenAt.Time = at
	m.SeenAt.Valid = true
	return true, nil
}

func (f *fakeMessageRepo) MarkConversationSeen(ctx context.Context, senderID, receiverID uuid.UUID, at time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, m := range f.byID {
		if m.SenderID != senderID || m.ReceiverID != receiverID {
			continue
		}
		if m.Status == message.StatusSeen {
			continue
		}
		m.Status = message.StatusSeen
		m.SeenAt.Time = at
		m.SeenAt.Valid = true
		count++
	}
	return count, nil
}

func (f *fakeMessageRepo) SaveReactions(ctx context.Context, id uuid.UUID, reactions message.ReactionMap) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.byID[id]
	if !ok {
		return moodchat_errors.ErrNotFound
	}
	cp := make(message.ReactionMap, len(reactions))
	for emoji, users := range reactions {
		cp[emoji] = append([]string(nil), users...)
	}
	m.Reactions = cp
	return nil
}

type fakeUserRepo struct {
	mu   sync.Mutex
	byID map[uuid.UUID]user.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: make(map[uuid.UUID]user.User)}
}

func (f *fakeUserRepo) add(u user.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[u.ID] = u
}

func (f *fakeUserRepo) Create(ctx context.Context, u *user.User) error {
	f.add(*u)
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return user.User{}, moodchat_errors.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, moodchat_errors.ErrNotFound
}

func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Username == username {
			return u, nil
		}
	}
	return user.User{}, moodchat_errors.ErrNotFound
}

func (f *fakeUserRepo) Update(ctx context.Context, u user.User) error {
	f.add(u)
	return nil
}

func (f *fakeUserRepo) SetOnline(ctx context.Context, id uuid.UUID, online bool, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return moodchat_errors.ErrNotFound
	}
	u.IsOnline = online
	u.LastSeenAt.Time = at
	u.LastSeenAt.Valid = true
	f.byID[id] = u
	return nil
}

func (f *fakeUserRepo) ListOnline(ctx context.Context, excluding uuid.UUID) ([]user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []user.User
	for _, u := range f.byID {
		if u.ID == excluding || !u.IsOnline {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

type sentEvent struct {
	ConnID  string
	Type    string
	Payload any
}

type fakeNotifier struct {
	mu        sync.Mutex
	pushed    []sentEvent
	broadcast []sentEvent
	dead      map[string]bool
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{dead: make(map[string]bool)}
}

func (f *fakeNotifier) markDead(connID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dead[connID] = true
}

func (f *fakeNotifier) Push(connID, eventType string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dead[connID] {
		return moodchat_errors.ErrStaleConnection
	}
	f.pushed = append(f.pushed, sentEvent{ConnID: connID, Type: eventType, Payload: payload})
	return nil
}

func (f *fakeNotifier) Broadcast(eventType string, payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.broadcast = append(f.broadcast, sentEvent{Type: eventType, Payload: payload})
}

func (f *fakeNotifier) BroadcastExcept(connID, eventType string, payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.broadcast = append(f.broadcast, sentEvent{ConnID: connID, Type: eventType, Payload: payload})
}

// pushedTo returns the events pushed to one connection, in order.
func (f *fakeNotifier) pushedTo(connID string) []sentEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentEvent
	for _, e := range f.pushed {
		if e.ConnID == connID {
			out = append(out, e)
		}
	}
	return out
}

func (f *fakeNotifier) broadcastOf(eventType string) []sentEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentEvent
	for _, e := range f.broadcast {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}
