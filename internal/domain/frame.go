package domain

import (
	"encoding/json"
	"fmt"
)

// Phoenix channel events and topics used by the client.
const (
	EventJoin      = "phx_join"
	EventReply     = "phx_reply"
	EventHeartbeat = "heartbeat"
	EventError     = "phx_error"
	EventClose     = "phx_close"

	TopicPhoenix = "phoenix"
)

// Refs are fixed literals on the wire; the server only echoes them back.
const (
	JoinRef      = "1"
	HeartbeatRef = "2"
)

// Frame is an outbound Phoenix channel frame.
// It is constructed per message and never persisted.
type Frame struct {
	Topic   string `json:"topic"`
	Event   string `json:"event"`
	Payload any    `json:"payload"`
	Ref     string `json:"ref"`
	JoinRef string `json:"join_ref,omitempty"`
}

// JoinPayload is the payload of a phx_join frame.
type JoinPayload struct {
	Config JoinConfig `json:"config"`
}

// JoinConfig configures the channel on join.
type JoinConfig struct {
	Broadcast       BroadcastConfig `json:"broadcast"`
	Presence        PresenceConfig  `json:"presence"`
	PostgresChanges []Subscription  `json:"postgres_changes"`
}

// BroadcastConfig controls broadcast acknowledgements and self-delivery.
type BroadcastConfig struct {
	Ack  bool `json:"ack"`
	Self bool `json:"self"`
}

// PresenceConfig sets the presence key for the channel.
type PresenceConfig struct {
	Key string `json:"key"`
}

// NewJoinFrame builds the join frame for a subscription.
func NewJoinFrame(sub Subscription) Frame {
	return Frame{
		Topic: sub.Topic(),
		Event: EventJoin,
		Payload: JoinPayload{
			Config: JoinConfig{
				Broadcast:       BroadcastConfig{Ack: false, Self: false},
				Presence:        PresenceConfig{Key: ""},
				PostgresChanges: []Subscription{sub},
			},
		},
		Ref:     JoinRef,
		JoinRef: JoinRef,
	}
}

// NewHeartbeatFrame builds the keep-alive frame.
func NewHeartbeatFrame() Frame {
	return Frame{
		Topic:   TopicPhoenix,
		Event:   EventHeartbeat,
		Payload: struct{}{},
		Ref:     HeartbeatRef,
	}
}

// Encode serializes the frame as JSON.
func (f Frame) Encode() ([]byte, error) {
	b, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encode %s frame: %w", f.Event, err)
	}
	return b, nil
}

// Message is an inbound frame. Raw always holds the full JSON document;
// the envelope fields are only populated when the document is an object.
type Message struct {
	Topic   string          `json:"topic"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
	Ref     string          `json:"ref"`
	JoinRef string          `json:"join_ref"`

	Raw json.RawMessage `json:"-"`
}

// DecodeMessage parses an inbound frame.
// Returns ErrMalformedFrame if data is not well-formed JSON.
func DecodeMessage(data []byte) (Message, error) {
	if !json.Valid(data) {
		return Message{}, ErrMalformedFrame
	}

	var msg Message
	// Non-object documents are still forwarded; only Raw is set for them.
	_ = json.Unmarshal(data, &msg)
	msg.Raw = append(json.RawMessage(nil), data...)
	return msg, nil
}

// replyPayload is the payload of a phx_reply frame.
type replyPayload struct {
	Status string `json:"status"`
}

// ReplyStatus returns the status of a phx_reply message, or "" for other events.
func (m Message) ReplyStatus() string {
	if m.Event != EventReply || len(m.Payload) == 0 {
		return ""
	}
	var p replyPayload
	if err := json.Unmarshal(m.Payload, &p); err != nil {
		return ""
	}
	return p.Status
}
