// Package mocks provides testify mock implementations of the repository
// interfaces for service-level tests.
package mocks

import (
	"context"

	"nearchat/internal/domain"

	"github.com/stretchr/testify/mock"
)

type RoomRepository struct {
	mock.Mock
}

func (m *RoomRepository) Create(ctx context.Context, r *domain.Room) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *RoomRepository) GetByID(ctx context.Context, id int64) (domain.Room, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Room), args.Error(1)
}

func (m *RoomRepository) UpdateInfo(ctx context.Context, id int64, name, description string) error {
	args := m.Called(ctx, id, name, description)
	return args.Error(0)
}

func (m *RoomRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *RoomRepository) UpsertOnlineSnapshot(ctx context.Context, roomID int64, users []string) error {
	args := m.Called(ctx, roomID, users)
	return args.Error(0)
}

type MessageRepository struct {
	mock.Mock
}

func (m *MessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MessageRepository) GetByID(ctx context.Context, id int64) (domain.Message, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Message), args.Error(1)
}

func (m *MessageRepository) GetViewByID(ctx context.Context, id int64) (domain.RoomMessageView, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.RoomMessageView), args.Error(1)
}

func (m *MessageRepository) CountByRoom(ctx context.Context, roomID int64) (int64, error) {
	args := m.Called(ctx, roomID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MessageRepository) CountByConversation(ctx context.Context, conversationID int64) (int64, error) {
	args := m.Called(ctx, conversationID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MessageRepository) DeleteOldestInRoom(ctx context.Context, roomID int64) error {
	args := m.Called(ctx, roomID)
	return args.Error(0)
}

func (m *MessageRepository) DeleteOldestInConversation(ctx context.Context, conversationID int64) error {
	args := m.Called(ctx, conversationID)
	return args.Error(0)
}

func (m *MessageRepository) LastRoomMessages(ctx context.Context, roomID int64, n int) ([]domain.RoomMessageView, error) {
	args := m.Called(ctx, roomID, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RoomMessageView), args.Error(1)
}

func (m *MessageRepository) DeleteByRoom(ctx context.Context, roomID int64) error {
	args := m.Called(ctx, roomID)
	return args.Error(0)
}

type ConversationRepository struct {
	mock.Mock
}

func (m *ConversationRepository) Create(ctx context.Context, c *domain.Conversation) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *ConversationRepository) GetByID(ctx context.Context, id int64) (domain.Conversation, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Conversation), args.Error(1)
}

func (m *ConversationRepository) GetByPair(ctx context.Context, userA, userB int64) (domain.Conversation, error) {
	args := m.Called(ctx, userA, userB)
	return args.Get(0).(domain.Conversation), args.Error(1)
}

func (m *ConversationRepository) SetReadFlags(ctx context.Context, id int64, read1, read2 bool) error {
	args := m.Called(ctx, id, read1, read2)
	return args.Error(0)
}

func (m *ConversationRepository) MarkRead(ctx context.Context, id, userID int64) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *ConversationRepository) CountUnread(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

type RoleRepository struct {
	mock.Mock
}

func (m *RoleRepository) Get(ctx context.Context, userID, roomID int64) (domain.Role, error) {
	args := m.Called(ctx, userID, roomID)
	return args.Get(0).(domain.Role), args.Error(1)
}

func (m *RoleRepository) Upsert(ctx context.Context, r *domain.Role) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *RoleRepository) SetRoleType(ctx context.Context, userID, roomID int64, roleType domain.RoleType) error {
	args := m.Called(ctx, userID, roomID, roleType)
	return args.Error(0)
}

func (m *RoleRepository) DeleteByRoom(ctx context.Context, roomID int64) error {
	args := m.Called(ctx, roomID)
	return args.Error(0)
}

type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *UserRepository) GetByID(ctx context.Context, id int64) (domain.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *UserRepository) GetByToken(ctx context.Context, token string) (domain.User, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *UserRepository) EnsureBot(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *UserRepository) GetPushSubscription(ctx context.Context, userID int64) (domain.PushSubscription, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.PushSubscription), args.Error(1)
}

func (m *UserRepository) SavePushSubscription(ctx context.Context, s *domain.PushSubscription) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}
