package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// MessageType identifies websocket payload variants.
type MessageType string

const (
	TypeUserMessage MessageType = "user_message"
	TypeReply       MessageType = "assistant_reply"
	// TypeQuestion is the suspension payload put to the human while a
	// booking negotiation is waiting for more fields.
	TypeQuestion   MessageType = "ans"
	TypeErrorEvent MessageType = "error_event"
)

var ErrUnsupportedType = errors.New("unsupported message type")

type Envelope struct {
	Type MessageType `json:"type"`
}

// UserMessage is one human turn from the client. ThreadID scopes the
// conversation; an empty one means the server should mint a fresh thread.
type UserMessage struct {
	Type     MessageType `json:"type"`
	ThreadID string      `json:"thread_id,omitempty"`
	UserID   string      `json:"user_id,omitempty"`
	Text     string      `json:"text"`
}

// Reply is a terminal assistant answer for one turn.
type Reply struct {
	Type     MessageType `json:"type"`
	ThreadID string      `json:"thread_id"`
	Route    string      `json:"route,omitempty"`
	Text     string      `json:"text"`
}

// Question suspends the conversation awaiting the human's next message on
// the same thread.
type Question struct {
	Type     MessageType `json:"type"`
	ThreadID string      `json:"thread_id"`
	Question string      `json:"question"`
}

type ErrorEvent struct {
	Type   MessageType `json:"type"`
	Code   string      `json:"code"`
	Detail string      `json:"detail"`
}

// ParseClientMessage decodes and validates one inbound client payload.
func ParseClientMessage(raw []byte) (UserMessage, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return UserMessage{}, fmt.Errorf("invalid envelope: %w", err)
	}

	switch env.Type {
	case TypeUserMessage:
		var msg UserMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			return UserMessage{}, err
		}
		if msg.Text == "" {
			return UserMessage{}, errors.New("invalid user_message: empty text")
		}
		return msg, nil
	default:
		return UserMessage{}, ErrUnsupportedType
	}
}
