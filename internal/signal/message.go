package signal

import "encoding/json"

// Client → server event names.
const (
	EventCheckRoom = "check-room"
	EventJoinRoom  = "join-room"
	EventSignal    = "signal"
	EventLeaveRoom = "leave-room"
)

// Server → client event names. EventSignal is reused for relayed payloads.
const (
	EventRoomStatus       = "room-status"
	EventRoomFull         = "room-full"
	EventUserConnected    = "user-connected"
	EventUserDisconnected = "user-disconnected"
)

// RoomStatus answers a check-room probe.
type RoomStatus struct {
	UserCount int  `json:"userCount"`
	IsFull    bool `json:"isFull"`
}

// Message is the JSON envelope for every frame in both directions.
// Signal carries an opaque WebRTC negotiation blob (offer, answer, or ICE
// candidate) that the server relays verbatim and never inspects.
type Message struct {
	Event  string          `json:"event"`
	RoomID string          `json:"roomId,omitempty"`
	UserID string          `json:"userId,omitempty"`
	Signal json.RawMessage `json:"signal,omitempty"`
	Status *RoomStatus     `json:"status,omitempty"`

	// client is the connection that sent the message. It is set on the
	// inbound path and used internally by the Hub, never serialized.
	client *Client
}
