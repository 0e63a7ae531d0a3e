package presence

import (
	"fmt"
	"sort"
	"sync"
	"testing"
)

func TestBindAndLookup(t *testing.T) {
	r := NewRegistry()
	r.Bind("u1", "c1")

	connID, ok := r.ConnectionFor("u1")
	if !ok || connID != "c1" {
		t.Errorf("ConnectionFor(u1) = %q, %v, want c1, true", connID, ok)
	}
	userID, ok := r.UserFor("c1")
	if !ok || userID != "u1" {
		t.Errorf("UserFor(c1) = %q, %v, want u1, true", userID, ok)
	}
}

func TestBindEvictsOldConnection(t *testing.T) {
	r := NewRegistry()
	var evicted []string
	r.OnEvict(func(connID string) { evicted = append(evicted, connID) })

	r.Bind("u1", "c1")
	r.Bind("u1", "c2")

	if len(evicted) != 1 || evicted[0] != "c1" {
		t.Errorf("evicted = %v, want [c1]", evicted)
	}
	connID, _ := r.ConnectionFor("u1")
	if connID != "c2" {
		t.Errorf("ConnectionFor(u1) = %q, want c2", connID)
	}
	if _, ok := r.UserFor("c1"); ok {
		t.Error("evicted connection c1 still mapped to a user")
	}
	if r.OnlineCount() != 1 {
		t.Errorf("OnlineCount() = %d, want 1", r.OnlineCount())
	}
}

func TestBindSamePairIsIdempotent(t *testing.T) {
	r := NewRegistry()
	evictions := 0
	r.OnEvict(func(string) { evictions++ })

	r.Bind("u1", "c1")
	r.Bind("u1", "c1")

	if evictions != 0 {
		t.Errorf("evictions = %d, want 0", evictions)
	}
	if r.OnlineCount() != 1 {
		t.Errorf("OnlineCount() = %d, want 1", r.OnlineCount())
	}
}

func TestUnbindRemovesBinding(t *testing.T) {
	r := NewRegistry()
	r.Bind("u1", "c1")

	userID, ok := r.Unbind("c1")
	if !ok || userID != "u1" {
		t.Errorf("Unbind(c1) = %q, %v, want u1, true", userID, ok)
	}
	if _, ok := r.ConnectionFor("u1"); ok {
		t.Error("user still online after Unbind")
	}
}

func TestStaleUnbindCannotUndoNewerBind(t *testing.T) {
	r := NewRegistry()
	r.Bind("u1", "c1")
	r.Bind("u1", "c2") // evicts c1

	// The disconnect event for c1 arrives late.
	if _, ok := r.Unbind("c1"); ok {
		t.Error("stale Unbind(c1) acted after eviction")
	}
	connID, ok := r.ConnectionFor("u1")
	if !ok || connID != "c2" {
		t.Errorf("ConnectionFor(u1) = %q, %v, want c2, true", connID, ok)
	}
}

func TestUnbindUnknownConnectionIsNoop(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.Unbind("nope"); ok {
		t.Error("Unbind of unknown connection reported success")
	}
}

func TestListOnlineExcludesCaller(t *testing.T) {
	r := NewRegistry()
	r.Bind("u1", "c1")
	r.Bind("u2", "c2")
	r.Bind("u3", "c3")

	online := r.ListOnline("u2")
	sort.Strings(online)
	if len(online) != 2 || online[0] != "u1" || online[1] != "u3" {
		t.Errorf("ListOnline(u2) = %v, want [u1 u3]", online)
	}

	all := r.ListOnline("")
	if len(all) != 3 {
		t.Errorf("ListOnline(\"\") returned %d users, want 3", len(all))
	}
}

func TestAtMostOneConnectionPerUserUnderContention(t *testing.T) {
	r := NewRegistry()
	r.OnEvict(func(string) {})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		connID := fmt.Sprintf("c%d", i)
		go func(id string) {
			defer wg.Done()
			r.Bind("u1", id)
		}(connID)
		go func(id string) {
			defer wg.Done()
			r.Unbind(id)
		}(connID)
	}
	wg.Wait()

	// Whatever interleaving happened, the registry holds at most one
	// binding for u1 and the maps agree with each other.
	if n := r.OnlineCount(); n > 1 {
		t.Errorf("OnlineCount() = %d, want at most 1", n)
	}
	if connID, ok := r.ConnectionFor("u1"); ok {
		userID, ok2 := r.UserFor(connID)
		if !ok2 || userID != "u1" {
			t.Errorf("maps disagree: byUser has %q but byConn gives %q, %v", connID, userID, ok2)
		}
	}
}
