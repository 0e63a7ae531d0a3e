package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"moodchat/internal/domain/message"
	"moodchat/internal/events"
	moodchat_errors "moodchat/pkg/errors"

	"github.com/google/uuid"
)

func newLedgerFixture() (*ReactionLedger, *fakeMessageRepo, *fakeNotifier) {
	repo := newFakeMessageRepo()
	notifier := newFakeNotifier()
	ledger := NewReactionLedger(repo, notifier)
	return ledger, repo, notifier
}

func TestToggleAddThenRemove(t *testing.T) {
	ledger, repo, notifier := newLedgerFixture()
	msgID := seedMessage(repo, uuid.New(), uuid.New(), message.StatusSent)
	reactor := uuid.New()

	payload, err := ledger.Toggle(context.Background(), msgID, "🔥", reactor)
	if err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if payload.Action != "add" {
		t.Fatalf("expected add, got %q", payload.Action)
	}
	users := payload.Reactions["🔥"]
	if len(users) != 1 || users[0] != reactor.String() {
		t.Fatalf("unexpected reaction map %+v", payload.Reactions)
	}

	payload, err = ledger.Toggle(context.Background(), msgID, "🔥", reactor)
	if err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if payload.Action != "remove" {
		t.Fatalf("expected remove, got %q", payload.Action)
	}
	if _, ok := payload.Reactions["🔥"]; ok {
		t.Fatal("empty emoji entry must be pruned")
	}

	stored, _ := repo.GetByID(context.Background(), msgID)
	if len(stored.Reactions) != 0 {
		t.Fatalf("expected persisted map to be empty, got %+v", stored.Reactions)
	}

	if got := notifier.broadcastOf(events.EventTypeMessageReaction); len(got) != 2 {
		t.Fatalf("expected 2 broadcasts, got %d", len(got))
	}
}

func TestToggleIndependentPerUserAndEmoji(t *testing.T) {
	ledger, repo, _ := newLedgerFixture()
	msgID := seedMessage(repo, uuid.New(), uuid.New(), message.StatusSent)
	alice := uuid.New()
	bob := uuid.New()

	if _, err := ledger.Toggle(context.Background(), msgID, "🔥", alice); err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if _, err := ledger.Toggle(context.Background(), msgID, "🔥", bob); err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	payload, err := ledger.Toggle(context.Background(), msgID, "❤️", alice)
	if err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}

	if len(payload.Reactions["🔥"]) != 2 {
		t.Fatalf("expected both users under 🔥, got %+v", payload.Reactions)
	}
	if len(payload.Reactions["❤️"]) != 1 {
		t.Fatalf("expected alice under ❤️, got %+v", payload.Reactions)
	}

	// Removing one user leaves the other.
	payload, err = ledger.Toggle(context.Background(), msgID, "🔥", alice)
	if err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	users := payload.Reactions["🔥"]
	if len(users) != 1 || users[0] != bob.String() {
		t.Fatalf("expected only bob under 🔥, got %+v", users)
	}
}

func TestToggleEmptyEmojiRejected(t *testing.T) {
	ledger, repo, notifier := newLedgerFixture()
	msgID := seedMessage(repo, uuid.New(), uuid.New(), message.StatusSent)

	_, err := ledger.Toggle(context.Background(), msgID, "", uuid.New())
	if !errors.Is(err, moodchat_errors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if len(notifier.broadcast) != 0 {
		t.Fatal("a rejected toggle must not broadcast")
	}
}

func TestToggleMissingMessageRejected(t *testing.T) {
	ledger, _, _ := newLedgerFixture()

	_, err := ledger.Toggle(context.Background(), uuid.New(), "🔥", uuid.New())
	if !errors.Is(err, moodchat_errors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestToggleConcurrentUsersAllLand(t *testing.T) {
	ledger, repo, _ := newLedgerFixture()
	msgID := seedMessage(repo, uuid.New(), uuid.New(), message.StatusSent)

	const n = 16
	reactors := make([]uuid.UUID, n)
	for i := range reactors {
		reactors[i] = uuid.New()
	}

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for _, reactor := range reactors {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			if _, err := ledger.Toggle(context.Background(), msgID, "🔥", id); err != nil {
				errs <- fmt.Errorf("toggle for %s: %w", id, err)
			}
		}(reactor)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}

	stored, _ := repo.GetByID(context.Background(), msgID)
	if len(stored.Reactions["🔥"]) != n {
		t.Fatalf("expected %d reactors after concurrent toggles, got %d", n, len(stored.Reactions["🔥"]))
	}
}
