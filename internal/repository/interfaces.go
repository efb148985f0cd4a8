package repository

import (
	"context"

	"nearchat/internal/domain"
)

type RoomRepository interface {
	Create(ctx context.Context, r *domain.Room) error
	GetByID(ctx context.Context, id int64) (domain.Room, error)
	UpdateInfo(ctx context.Context, id int64, name, description string) error
	Delete(ctx context.Context, id int64) error

	UpsertOnlineSnapshot(ctx context.Context, roomID int64, users []string) error
}

type MessageRepository interface {
	Create(ctx context.Context, m *domain.Message) error
	GetByID(ctx context.Context, id int64) (domain.Message, error)
	GetViewByID(ctx context.Context, id int64) (domain.RoomMessageView, error)

	CountByRoom(ctx context.Context, roomID int64) (int64, error)
	CountByConversation(ctx context.Context, conversationID int64) (int64, error)
	DeleteOldestInRoom(ctx context.Context, roomID int64) error
	DeleteOldestInConversation(ctx context.Context, conversationID int64) error

	// LastRoomMessages returns the most recent n room messages oldest-first,
	// joined with author nicknames.
	LastRoomMessages(ctx context.Context, roomID int64, n int) ([]domain.RoomMessageView, error)
	DeleteByRoom(ctx context.Context, roomID int64) error
}

type ConversationRepository interface {
	Create(ctx context.Context, c *domain.Conversation) error
	GetByID(ctx context.Context, id int64) (domain.Conversation, error)
	GetByPair(ctx context.Context, userA, userB int64) (domain.Conversation, error)
	SetReadFlags(ctx context.Context, id int64, read1, read2 bool) error
	MarkRead(ctx context.Context, id, userID int64) error
	CountUnread(ctx context.Context, userID int64) (int64, error)
}

type RoleRepository interface {
	Get(ctx context.Context, userID, roomID int64) (domain.Role, error)
	Upsert(ctx context.Context, r *domain.Role) error
	SetRoleType(ctx context.Context, userID, roomID int64, roleType domain.RoleType) error
	DeleteByRoom(ctx context.Context, roomID int64) error
}

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id int64) (domain.User, error)
	GetByToken(ctx context.Context, token string) (domain.User, error)
	// EnsureBot upserts a synthetic bot identity so role and message rows
	// keep referential integrity.
	EnsureBot(ctx context.Context, u *domain.User) error

	GetPushSubscription(ctx context.Context, userID int64) (domain.PushSubscription, error)
	SavePushSubscription(ctx context.Context, s *domain.PushSubscription) error
}
