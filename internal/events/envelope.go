package events

import "encoding/json"

// Envelope is the wire frame every WebSocket message travels in,
// inbound and outbound.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Marshal wraps a payload into an encoded envelope. Encoding failures
// are programming errors; the caller gets an empty frame rather than a
// partial one.
func Marshal(eventType string, payload any) ([]byte, error) {
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		raw = data
	}
	return json.Marshal(Envelope{Type: eventType, Payload: raw})
}
