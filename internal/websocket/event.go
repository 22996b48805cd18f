package websocket

import "encoding/json"

// GlobalRoom is the well-known broadcast address. A message published here
// reaches every connected client except the sender.
const GlobalRoom = "GLOBAL"

// EventType identifies the kind of realtime event pushed to a room.
type EventType string

const (
	EventNewMessage  EventType = "message.new"
	EventReadReceipt EventType = "receipt.read"
	EventError       EventType = "error"
)

// Event is the frame written to connected clients.
type Event struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func newEvent(eventType EventType, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Event{Type: eventType, Payload: raw})
}

// Inbound is the frame read from connected clients. After persisting a
// message over the REST path, the client republishes it here for
// low-latency delivery; the durable path stays authoritative.
// Conversation membership is enforced there, not here: the hub fans out
// best-effort without re-checking who may publish into a room.
type Inbound struct {
	Action  string          `json:"action"`
	Room    string          `json:"room"` // recipient user id, or GLOBAL
	Message json.RawMessage `json:"message"`
}

const actionMessage = "message"

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
