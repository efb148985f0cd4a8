package services

import (
	"context"

	"nearchat/internal/domain"
)

// PresenceStore is the Redis-backed presence surface the services consume.
type PresenceStore interface {
	SetUserOnline(ctx context.Context, userID int64) error
	SetUserOffline(ctx context.Context, userID int64) error
	IsUserOnline(ctx context.Context, userID int64) (bool, error)

	JoinRoom(ctx context.Context, roomID int64, nickname string, userID int64) error
	LeaveRoom(ctx context.Context, roomID int64, nickname string, userID int64) error
	RoomMembers(ctx context.Context, roomID int64) ([]string, error)

	JoinConversation(ctx context.Context, conversationID, userID int64) error
	LeaveConversation(ctx context.Context, conversationID, userID int64) error
	IsViewing(ctx context.Context, conversationID, userID int64) (bool, error)

	RoomBots(ctx context.Context, roomID int64) ([]int64, error)
	ClearRoom(ctx context.Context, roomID int64) error
	RoomKeys(ctx context.Context) (map[int64][]string, error)
}

// Publisher pushes an encoded frame onto a pub/sub channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// PushSender delivers a notification to an offline user's browser.
type PushSender interface {
	Send(ctx context.Context, sub domain.PushSubscription, title, body string) error
}

// BotScheduler enqueues a delayed bot reply for a room message.
type BotScheduler interface {
	ScheduleReply(ctx context.Context, roomID, messageID int64) error
}
