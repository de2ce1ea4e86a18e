package realtime

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/pawangupta079/skill-hire/pkg/model"
)

const (
	EventJoinRoom       = "join-room"
	EventLeaveRoom      = "leave-room"
	EventSendMessage    = "send-message"
	EventReceiveMessage = "receive-message"
	EventError          = "error"
)

// Envelope is the frame exchanged over the socket in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type roomPayload struct {
	RoomID string `json:"roomId"`
}

// SendPayload is the client's send-message body. The sender fields are
// accepted for compatibility but the authenticated user always wins.
type SendPayload struct {
	RoomID      string            `json:"roomId"`
	SenderID    string            `json:"senderId,omitempty"`
	SenderName  string            `json:"senderName,omitempty"`
	Message     string            `json:"message"`
	MessageType model.MessageType `json:"messageType,omitempty"`
}

type ReceivePayload struct {
	ID         string    `json:"id"`
	RoomID     string    `json:"roomId"`
	SenderID   string    `json:"senderId"`
	SenderName string    `json:"senderName"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
}

type errorPayload struct {
	Message string `json:"message"`
}

func receiveFrom(m *model.ChatMessage) ReceivePayload {
	return ReceivePayload{
		ID:         m.MessageID,
		RoomID:     m.RoomID,
		SenderID:   m.SenderID,
		SenderName: m.SenderName,
		Message:    m.Message,
		Timestamp:  m.CreatedAt,
	}
}

func encode(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}

// roomIDFrom accepts either a bare string or {"roomId": "..."}.
func roomIDFrom(raw json.RawMessage) string {
	var id string
	if err := json.Unmarshal(raw, &id); err == nil {
		return strings.TrimSpace(id)
	}
	var p roomPayload
	if err := json.Unmarshal(raw, &p); err == nil {
		return strings.TrimSpace(p.RoomID)
	}
	return ""
}
