package domain

import "time"

// MessageType tags what the message body carries.
type MessageType string

const (
	MessageTypeText  MessageType = "text"
	MessageTypeAudio MessageType = "audio" // body is base64 audio
	MessageTypeImage MessageType = "image" // body is a media URL
	MessageTypeVideo MessageType = "video" // body is "url####thumbnail"
)

// Message belongs to exactly one room or one conversation, never both.
// Messages are immutable once created; the only delete path is the retention
// trim and the room-deletion cascade.
type Message struct {
	ID              int64       `gorm:"primaryKey" json:"id"`
	RoomID          *int64      `gorm:"index" json:"room_id,omitempty"`
	ConversationID  *int64      `gorm:"index" json:"conversation_id,omitempty"`
	UserID          int64       `gorm:"not null" json:"user_id"`
	Body            string      `gorm:"type:text;not null" json:"message"`
	Type            MessageType `gorm:"size:16;not null;default:text" json:"msg_type"`
	QuotedMessageID *int64      `json:"quoted_message_id,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
}

// RoomMessageView is a message joined with its author's nickname, used for
// broadcasting and for reconstructing bot prompt history.
type RoomMessageView struct {
	Message
	Nickname string `json:"nickname"`
	IsBot    bool   `json:"-"`
}
