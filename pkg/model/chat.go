package model

import "time"

const (
	MaxMessageLength      = 1000
	DeletedMessageBody    = "[Message deleted]"
	DefaultMessagePageLen = 50
)

type MessageType string

const (
	MessageText   MessageType = "text"
	MessageImage  MessageType = "image"
	MessageFile   MessageType = "file"
	MessageSystem MessageType = "system"
)

func (t MessageType) Valid() bool {
	switch t {
	case MessageText, MessageImage, MessageFile, MessageSystem:
		return true
	}
	return false
}

type ChatMessage struct {
	MessageID    string         `json:"message_id"`
	RoomID       string         `json:"room_id"`
	Participants []string       `json:"participants"`
	SenderID     string         `json:"sender_id"`
	SenderName   string         `json:"sender_name"`
	Sender       *PublicUser    `json:"sender,omitempty"`
	Message      string         `json:"message"`
	MessageType  MessageType    `json:"message_type"`
	Attachments  []Attachment   `json:"attachments"`
	ReadBy       []ReadMarker   `json:"read_by"`
	IsEdited     bool           `json:"is_edited"`
	EditedAt     *time.Time     `json:"edited_at,omitempty"`
	IsDeleted    bool           `json:"is_deleted"`
	DeletedAt    *time.Time     `json:"deleted_at,omitempty"`
	ReplyTo      *string        `json:"reply_to,omitempty"`
	Metadata     MessageContext `json:"metadata"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// IsReadBy reports whether userID has a read marker on m.
func (m *ChatMessage) IsReadBy(userID string) bool {
	for _, r := range m.ReadBy {
		if r.UserID == userID {
			return true
		}
	}
	return false
}

func (m *ChatMessage) HasParticipant(userID string) bool {
	for _, p := range m.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

type Attachment struct {
	Filename     string    `json:"filename"`
	OriginalName string    `json:"original_name,omitempty"`
	Path         string    `json:"path"`
	Size         int64     `json:"size"`
	MimeType     string    `json:"mime_type,omitempty"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

type ReadMarker struct {
	UserID string    `json:"user_id"`
	ReadAt time.Time `json:"read_at"`
}

type MessageContext struct {
	ApplicationID *string `json:"application_id,omitempty"`
	JobID         *string `json:"job_id,omitempty"`
}

type RoomParticipant struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type RoomApplication struct {
	ID       string            `json:"id"`
	JobTitle string            `json:"job_title"`
	Status   ApplicationStatus `json:"status"`
}

type Room struct {
	RoomID       string                     `json:"room_id"`
	Participants map[string]RoomParticipant `json:"participants"`
	Application  *RoomApplication           `json:"application,omitempty"`
}

type RoomSummary struct {
	RoomID          string    `json:"room_id"`
	Participants    []string  `json:"participants"`
	LastMessage     string    `json:"last_message"`
	LastMessageTime time.Time `json:"last_message_time"`
	UnreadCount     int       `json:"unread_count"`
}

type OpenRoomReq struct {
	ParticipantID string `json:"participant_id"`
	ApplicationID string `json:"application_id"`
}

type SendMessageReq struct {
	Message     string       `json:"message"`
	MessageType MessageType  `json:"message_type"`
	Attachments []Attachment `json:"attachments"`
	ReplyTo     *string      `json:"reply_to"`
}

type EditMessageReq struct {
	Message string `json:"message" binding:"required"`
}

type ListMessagesQuery struct {
	Page  int `form:"page,default=1"`
	Limit int `form:"limit,default=50"`
}
