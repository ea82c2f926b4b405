package ws

import "encoding/json"

// envelope is the inbound frame. Fields beyond Type are populated per
// event kind; unused ones stay at their zero value.
type envelope struct {
	Type string `json:"type"`

	// chat_message
	ChatID      uint64 `json:"chatId,omitempty"`
	Content     string `json:"content,omitempty"`
	RecipientID uint64 `json:"recipientId,omitempty"`

	// call_*
	StudentID     uint64 `json:"studentId,omitempty"`
	SupervisionID uint64 `json:"supervisionId,omitempty"`
	CallID        string `json:"callId,omitempty"`

	// webrtc_*
	Payload json.RawMessage `json:"payload,omitempty"`

	// presence_update
	Status string `json:"status,omitempty"`
}

// ConnectedEvent is the first frame sent on an admitted connection.
type ConnectedEvent struct {
	Type      string `json:"type"`
	UserID    uint64 `json:"userId"`
	Timestamp int64  `json:"timestamp"`
}

// ErrorEvent reports a failed action back to the sender. The connection
// stays open.
type ErrorEvent struct {
	Type    string `json:"type"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// SignalEvent carries a WebRTC offer/answer/candidate verbatim to the
// named recipient.
type SignalEvent struct {
	Type      string          `json:"type"`
	SenderID  uint64          `json:"senderId"`
	Payload   json.RawMessage `json:"payload"`
	CallID    string          `json:"callId,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// PresenceEvent relays a peer's presence status change.
type PresenceEvent struct {
	Type      string `json:"type"`
	SenderID  uint64 `json:"senderId"`
	Status    string `json:"status"`
	Timestamp int64  `json:"timestamp"`
}
