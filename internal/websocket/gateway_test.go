package websocket

import (
	"context"
	"testing"
	"time"

	"moodchat/internal/domain/user"
	"moodchat/internal/presence"
	moodchat_errors "moodchat/pkg/errors"

	"github.com/google/uuid"
)

type stubUserRepo struct {
	users map[uuid.UUID]user.User
}

func (s *stubUserRepo) Create(ctx context.Context, u *user.User) error { return nil }

func (s *stubUserRepo) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	u, ok := s.users[id]
	if !ok {
		return user.User{}, moodchat_errors.ErrNotFound
	}
	return u, nil
}

func (s *stubUserRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return user.User{}, moodchat_errors.ErrNotFound
}

func (s *stubUserRepo) GetByUsername(ctx context.Context, username string) (user.User, error) {
	return user.User{}, moodchat_errors.ErrNotFound
}

func (s *stubUserRepo) Update(ctx context.Context, u user.User) error { return nil }

func (s *stubUserRepo) SetOnline(ctx context.Context, id uuid.UUID, online bool, at time.Time) error {
	u, ok := s.users[id]
	if !ok {
		return moodchat_errors.ErrNotFound
	}
	u.IsOnline = online
	s.users[id] = u
	return nil
}

func (s *stubUserRepo) ListOnline(ctx context.Context, excluding uuid.UUID) ([]user.User, error) {
	var out []user.User
	for _, u := range s.users {
		if u.ID != excluding && u.IsOnline {
			out = append(out, u)
		}
	}
	return out, nil
}

func newGatewayFixture(users ...user.User) (*Gateway, *presence.Registry, *stubUserRepo) {
	repo := &stubUserRepo{users: make(map[uuid.UUID]user.User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	registry := presence.NewRegistry()
	hub := NewHub()
	gateway := NewGateway(registry, hub, repo, nil, nil)
	return gateway, registry, repo
}

func TestOnJoinBindsAndMarksOnline(t *testing.T) {
	alice := user.User{ID: uuid.New(), Username: "alice"}
	gateway, registry, repo := newGatewayFixture(alice)

	if err := gateway.OnJoin(context.Background(), alice.ID, "conn-1"); err != nil {
		t.Fatalf("OnJoin failed: %v", err)
	}

	if conn, ok := registry.ConnectionFor(alice.ID.String()); !ok || conn != "conn-1" {
		t.Fatalf("expected binding to conn-1, got %q ok=%v", conn, ok)
	}
	if !repo.users[alice.ID].IsOnline {
		t.Fatal("expected user flagged online")
	}
}

func TestOnJoinUnknownUserDoesNotBind(t *testing.T) {
	gateway, registry, _ := newGatewayFixture()

	if err := gateway.OnJoin(context.Background(), uuid.New(), "conn-1"); err == nil {
		t.Fatal("expected error for unknown user")
	}
	if registry.OnlineCount() != 0 {
		t.Fatal("a failed join must leave no binding")
	}
}

func TestSecondJoinEvictsFirstBinding(t *testing.T) {
	alice := user.User{ID: uuid.New(), Username: "alice"}
	gateway, registry, _ := newGatewayFixture(alice)

	if err := gateway.OnJoin(context.Background(), alice.ID, "conn-old"); err != nil {
		t.Fatalf("OnJoin failed: %v", err)
	}
	if err := gateway.OnJoin(context.Background(), alice.ID, "conn-new"); err != nil {
		t.Fatalf("second OnJoin failed: %v", err)
	}

	if conn, _ := registry.ConnectionFor(alice.ID.String()); conn != "conn-new" {
		t.Fatalf("expected newer connection to win, got %q", conn)
	}
	if _, ok := registry.UserFor("conn-old"); ok {
		t.Fatal("evicted connection must not stay bound")
	}
}

func TestStaleDisconnectCannotUndoNewerJoin(t *testing.T) {
	alice := user.User{ID: uuid.New(), Username: "alice"}
	gateway, registry, repo := newGatewayFixture(alice)

	_ = gateway.OnJoin(context.Background(), alice.ID, "conn-old")
	_ = gateway.OnJoin(context.Background(), alice.ID, "conn-new")

	// The evicted connection's teardown races in after the new bind.
	gateway.OnDisconnect(context.Background(), "conn-old")

	if conn, ok := registry.ConnectionFor(alice.ID.String()); !ok || conn != "conn-new" {
		t.Fatalf("stale disconnect must not remove the newer binding, got %q ok=%v", conn, ok)
	}
	if !repo.users[alice.ID].IsOnline {
		t.Fatal("user must stay online through the eviction handoff")
	}

	// The real disconnect then takes the user offline.
	gateway.OnDisconnect(context.Background(), "conn-new")
	if _, ok := registry.ConnectionFor(alice.ID.String()); ok {
		t.Fatal("expected user unbound after real disconnect")
	}
	if repo.users[alice.ID].IsOnline {
		t.Fatal("expected user flagged offline")
	}
}
