package events

import (
	"time"

	"nearchat/internal/domain"
)

// Inbound event names, one per client-originated action. The wire names match
// the event surface the frontend already speaks.
const (
	InboundJoinHome         = "join-home"
	InboundJoinRoom         = "join-room"
	InboundLeaveRoom        = "leave-room"
	InboundRoomMessage      = "message"
	InboundDeleteChat       = "delete_chat_process"
	InboundUpdateChatData   = "update_chat_data"
	InboundJoinPrivateRoom  = "join-private-room"
	InboundLeavePrivateRoom = "leave-private-room"
	InboundPrivateMessage   = "private-message"
)

// Outbound event names pushed server->client.
const (
	OutboundAlertMessage            = "alert_message"
	OutboundBroadcastMessages       = "broadcast_messages"
	OutboundBroadcastPrivateMessage = "broadcast_private_messages"
	OutboundBanned                  = "banned"
	OutboundNewPrivateMessages      = "new_private_messages"
	OutboundAck                     = "ack"
)

// MessageBody is the client-supplied message content shared by room and
// private publishes.
type MessageBody struct {
	Text      string `json:"text"`
	MsgType   string `json:"msg_type"`
	QuotedMsg *int64 `json:"quoted_msg,omitempty"`
}

// Inbound payloads. Each one is a closed variant returned by ParseInbound.

type JoinHome struct {
	UserID int64 `json:"user_id"`
}

type JoinRoom struct {
	RoomID   int64  `json:"room_id"`
	Nickname string `json:"nickname"`
	UserID   int64  `json:"user_id"`
}

type LeaveRoom struct {
	RoomID int64 `json:"room_id"`
}

type RoomMessage struct {
	RoomID  int64       `json:"room_id"`
	UserID  int64       `json:"user_id"`
	Message MessageBody `json:"message"`
}

type DeleteChat struct {
	RoomID int64  `json:"room_id"`
	Token  string `json:"token"`
}

type UpdateChatData struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type JoinPrivateRoom struct {
	ConversationID int64 `json:"conversation_id"`
	User           struct {
		ID       int64  `json:"id"`
		Nickname string `json:"nickname"`
	} `json:"user"`
}

type LeavePrivateRoom struct {
	ConversationID int64 `json:"conversation_id"`
}

type PrivateMessage struct {
	ConversationID int64 `json:"conversation_id"`
	Message        struct {
		MessageBody
		TargetID int64 `json:"target_id"`
	} `json:"message"`
}

// Outbound payloads.

// AlertMessage multiplexes room-level notices: presence refreshes, room
// deletion and room metadata edits.
type AlertMessage struct {
	Users      []string  `json:"users,omitempty"`
	DeleteChat bool      `json:"deleteChat,omitempty"`
	EditChat   *EditChat `json:"editChat,omitempty"`
}

type EditChat struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// QuotedPreview is the resolved quote attached to a broadcast message. It is
// nil when the quoted message was already trimmed by retention.
type QuotedPreview struct {
	ID       int64  `json:"id"`
	Nickname string `json:"nickname"`
	Message  string `json:"message"`
	MsgType  string `json:"msg_type"`
}

// BroadcastMessage is the persisted message as delivered to subscribers, id
// attached.
type BroadcastMessage struct {
	ID             int64          `json:"id"`
	RoomID         int64          `json:"room_id,omitempty"`
	ConversationID int64          `json:"conversation_id,omitempty"`
	UserID         int64          `json:"user_id"`
	Nickname       string         `json:"nickname"`
	Message        string         `json:"message"`
	MsgType        string         `json:"msg_type"`
	QuotedMsg      *QuotedPreview `json:"quoted_msg,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

type Banned struct {
	ChatID int64 `json:"chat_id"`
}

type NewPrivateMessages struct {
	UnreadPrivateMessagesCount int64 `json:"unread_private_messages_count"`
}

type Ack struct {
	ID int64 `json:"id"`
	OK bool  `json:"ok"`
}

// MsgTypeOf normalizes a wire msg_type string, defaulting to text.
func MsgTypeOf(s string) domain.MessageType {
	switch domain.MessageType(s) {
	case domain.MessageTypeAudio, domain.MessageTypeImage, domain.MessageTypeVideo:
		return domain.MessageType(s)
	}
	return domain.MessageTypeText
}
