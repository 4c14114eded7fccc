package models

import (
	"encoding/json"
	"errors"
)

// Envelope types exchanged over the websocket transport.
const (
	EnvelopeMessage    = "message"
	EnvelopeRead       = "read"
	EnvelopeError      = "error"
	EnvelopeConnection = "connection"
)

// Envelope is the raw inbound frame from a client. Data is decoded
// according to Type; only "message" and "read" are accepted inbound.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// InboundMessage is the canonical client payload for a "message" frame.
// All boundaries validate against this one shape.
type InboundMessage struct {
	PostID     string      `json:"postId"`
	PostType   PostType    `json:"postType"`
	SenderID   string      `json:"senderId"`
	ReceiverID string      `json:"receiverId"`
	Content    string      `json:"content"`
	Kind       MessageKind `json:"kind,omitempty"`
}

// Validate checks the required fields of an inbound message. An empty
// Kind defaults to text.
func (m *InboundMessage) Validate() error {
	switch {
	case m.PostID == "":
		return errors.New("postId is required")
	case !m.PostType.Valid():
		return errors.New("postType must be one of trip, car, hotel, room")
	case m.SenderID == "":
		return errors.New("senderId is required")
	case m.ReceiverID == "":
		return errors.New("receiverId is required")
	case m.Content == "":
		return errors.New("content is required")
	}
	if m.Kind == "" {
		m.Kind = KindText
	}
	if !m.Kind.Valid() {
		return errors.New("kind must be one of text, image, notification")
	}
	return nil
}

// InboundRead is the client payload for a "read" frame.
type InboundRead struct {
	PostID   string   `json:"postId"`
	PostType PostType `json:"postType"`
}

// Outbound is a server-to-client frame. Data is always one of the event
// payloads below or a ChatMessage; constructors keep the set closed.
type Outbound struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// ReadEvent notifies a sender that the counterpart has read the conversation.
type ReadEvent struct {
	PostID   string   `json:"postId"`
	PostType PostType `json:"postType"`
}

// ConnectionEvent notifies a participant that the counterpart came online
// for the given post.
type ConnectionEvent struct {
	PostID   string   `json:"postId"`
	PostType PostType `json:"postType"`
}

// ErrorEvent carries a validation or delivery error back to the client.
type ErrorEvent struct {
	Error string `json:"error"`
}

func NewMessageEvent(msg ChatMessage) Outbound {
	return Outbound{Type: EnvelopeMessage, Data: msg}
}

func NewReadEvent(postID string, postType PostType) Outbound {
	return Outbound{Type: EnvelopeRead, Data: ReadEvent{PostID: postID, PostType: postType}}
}

func NewConnectionEvent(postID string, postType PostType) Outbound {
	return Outbound{Type: EnvelopeConnection, Data: ConnectionEvent{PostID: postID, PostType: postType}}
}

func NewErrorEvent(err error) Outbound {
	return Outbound{Type: EnvelopeError, Data: ErrorEvent{Error: err.Error()}}
}
