package presence

import "sync"

// Registry is the in-memory bidirectional mapping between a user id and
// the single live connection that currently represents them on this
// process. It is the only source of truth for "who is online right now";
// the users table merely mirrors it for clients that poll over HTTP.
//
// All operations are total: they mutate or read the maps and never fail.
// A single mutex gives the bind/unbind race for one user a deterministic
// outcome (last writer wins, with Unbind guarded by connection identity).
type Registry struct {
	mu sync.Mutex

	// byUser maps user id -> connection id, byConn the reverse.
	byUser map[string]string
	byConn map[string]string

	// onEvict, when set, is invoked outside registry-internal state
	// decisions (but under the same lock) for the connection displaced
	// by a newer Bind for the same user. The gateway wires this to a
	// forcible connection close.
	onEvict func(connID string)
}

func NewRegistry() *Registry {
	return &Registry{
		byUser: make(map[string]string),
		byConn: make(map[string]string),
	}
}

// OnEvict installs the eviction hook. Must be called during wiring,
// before the registry sees traffic.
func (r *Registry) OnEvict(fn func(connID string)) {
	r.onEvict = fn
}

// Bind installs connID as the live connection for userID. If the user
// already has a different connection bound, that connection is evicted
// first. Binding the same pair twice is a no-op.
func (r *Registry) Bind(userID, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	old, ok := r.byUser[userID]
	if ok && old == connID {
		return
	}
	if ok {
		delete(r.byConn, old)
		if r.onEvict != nil {
			r.onEvict(old)
		}
	}
	r.byUser[userID] = connID
	r.byConn[connID] = userID
}

// Unbind removes the binding owned by connID. It acts only if connID is
// still the current connection for its user, so a stale disconnect
// arriving after an eviction can never undo a newer bind. Returns the
// owning user id and whether anything was removed.
func (r *Registry) Unbind(connID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID, ok := r.byConn[connID]
	if !ok {
		return "", false
	}
	delete(r.byConn, connID)
	delete(r.byUser, userID)
	return userID, true
}

// ConnectionFor returns the live connection id for userID. Absence
// means offline.
func (r *Registry) ConnectionFor(userID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	connID, ok := r.byUser[userID]
	return connID, ok
}

// UserFor returns the user id bound to connID, if any.
func (r *Registry) UserFor(connID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	userID, ok := r.byConn[connID]
	return userID, ok
}

// ListOnline returns a snapshot of all online user ids, excluding the
// given user (pass "" to exclude nobody).
func (r *Registry) ListOnline(excluding string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.byUser))
	for userID := range r.byUser {
		if userID == excluding {
			continue
		}
		out = append(out, userID)
	}
	return out
}

// OnlineCount returns the number of bound users.
func (r *Registry) OnlineCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byUser)
}
