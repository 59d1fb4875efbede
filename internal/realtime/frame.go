package realtime

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	EventJoin     = "chat:join"
	EventLeave    = "chat:leave"
	EventTyping   = "chat:typing"
	EventRead     = "chat:read"
	EventMessage  = "chat:message"
	EventPresence = "chat:presence"
	EventError    = "chat:error"
	EventPet      = "pet:event"
	EventAck      = "ack"
)

// inbound is a client frame. AckID is set when the client wants a reply.
type inbound struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	AckID string          `json:"ackId,omitempty"`
}

type outbound struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
	AckID string `json:"ackId,omitempty"`
}

func encode(event string, data any) ([]byte, error) {
	return json.Marshal(outbound{Event: event, Data: data})
}

func encodeAck(ackID string, data any) ([]byte, error) {
	return json.Marshal(outbound{Event: EventAck, Data: data, AckID: ackID})
}

// conversationID accepts a JSON string or number.
type conversationID string

func (c *conversationID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*c = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = conversationID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("conversationId must be a string or number")
	}
	*c = conversationID(n.String())
	return nil
}

type roomRequest struct {
	ConversationID conversationID `json:"conversationId"`
}

type typingRequest struct {
	ConversationID conversationID `json:"conversationId"`
	IsTyping       any            `json:"isTyping"`
}

type readRequest struct {
	ConversationID conversationID `json:"conversationId"`
	At             string         `json:"at"`
}

type messageRequest struct {
	ConversationID conversationID    `json:"conversationId"`
	Text           string            `json:"text"`
	Attachments    []json.RawMessage `json:"attachments"`
}

type presence struct {
	ConversationID string    `json:"conversationId"`
	UserID         uuid.UUID `json:"userId"`
	Online         bool      `json:"online"`
}

type typing struct {
	ConversationID string    `json:"conversationId"`
	UserID         uuid.UUID `json:"userId"`
	IsTyping       bool      `json:"isTyping"`
}

type readReceipt struct {
	ConversationID string    `json:"conversationId"`
	UserID         uuid.UUID `json:"userId"`
	At             time.Time `json:"at"`
}

// Message is a relayed chat message. It is never stored.
type Message struct {
	ID             uuid.UUID         `json:"id"`
	ConversationID string            `json:"conversationId"`
	Sender         uuid.UUID         `json:"sender"`
	Text           string            `json:"text"`
	Attachments    []json.RawMessage `json:"attachments"`
	CreatedAt      time.Time         `json:"createdAt"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type ackError struct {
	Error string `json:"error"`
}

// truthy mirrors loose client booleans: false, 0, "" and null are false.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	default:
		return true
	}
}

func UserRoom(userID uuid.UUID) string {
	return "user:" + userID.String()
}

func ConversationRoom(id string) string {
	return "conv:" + id
}
