package message

import (
	"testing"
)

func TestReactionMapToggle(t *testing.T) {
	m := ReactionMap{}

	if added := m.Toggle("🔥", "u1"); !added {
		t.Fatal("first toggle must add")
	}
	if added := m.Toggle("🔥", "u2"); !added {
		t.Fatal("toggle for a second user must add")
	}
	if !m.Has("🔥", "u1") || !m.Has("🔥", "u2") {
		t.Fatalf("expected both users present, got %+v", m)
	}

	if added := m.Toggle("🔥", "u1"); added {
		t.Fatal("second toggle for the same user must remove")
	}
	if m.Has("🔥", "u1") {
		t.Fatal("u1 must be gone after removal")
	}

	m.Toggle("🔥", "u2")
	if _, ok := m["🔥"]; ok {
		t.Fatalf("an emoji with no users left must be pruned, got %+v", m)
	}
}

func TestReactionMapScanRoundTrip(t *testing.T) {
	m := ReactionMap{}
	m.Toggle("❤️", "u1")
	m.Toggle("❤️", "u2")
	m.Toggle("👍", "u1")

	raw, err := m.Value()
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}

	var loaded ReactionMap
	if err := loaded.Scan(raw); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(loaded["❤️"]) != 2 || len(loaded["👍"]) != 1 {
		t.Fatalf("unexpected map after round trip: %+v", loaded)
	}
}
