package services

// Notifier is the outbound edge of the core: "deliver this event to that
// connection" as a message, not a direct call into the transport. The
// websocket hub implements it in production; tests substitute a fake.
type Notifier interface {
	// Push delivers an event to one connection. An error means the
	// connection vanished between the presence lookup and the push;
	// callers treat that as the target being offline.
	Push(connID, eventType string, payload any) error

	// Broadcast delivers an event to every live connection.
	Broadcast(eventType string, payload any)

	// BroadcastExcept delivers an event to every live connection but one.
	BroadcastExcept(connID, eventType string, payload any)
}
