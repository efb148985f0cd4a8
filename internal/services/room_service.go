package services

import (
	"context"
	"errors"
	"time"

	"nearchat/internal/domain"
	"nearchat/internal/events"
	"nearchat/internal/repository"
	nearchat_errors "nearchat/pkg/errors"
	"nearchat/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RoomService covers room membership, metadata edits and room deletion.
type RoomService struct {
	db        *gorm.DB
	rooms     repository.RoomRepository
	messages  repository.MessageRepository
	roles     repository.RoleRepository
	presence  PresenceStore
	publisher Publisher
	log       *logger.Logger
}

func NewRoomService(
	db *gorm.DB,
	rooms repository.RoomRepository,
	messages repository.MessageRepository,
	roles repository.RoleRepository,
	presence PresenceStore,
	publisher Publisher,
	log *logger.Logger,
) *RoomService {
	return &RoomService{
		db:        db,
		rooms:     rooms,
		messages:  messages,
		roles:     roles,
		presence:  presence,
		publisher: publisher,
		log:       log,
	}
}

// Join adds the user to the room's presence set, records membership and
// broadcasts the refreshed member list. Banned users are rejected before any
// state changes.
func (s *RoomService) Join(ctx context.Context, roomID, userID int64, nickname string) ([]string, error) {
	if _, err := s.rooms.GetByID(ctx, roomID); err != nil {
		return nil, err
	}

	role, err := s.roles.Get(ctx, userID, roomID)
	if err != nil && !errors.Is(err, nearchat_errors.ErrNotFound) {
		return nil, err
	}
	if err == nil && role.RoleType == domain.RoleTypeBanned {
		return nil, nearchat_errors.ErrBanned
	}

	if err := s.roles.Upsert(ctx, &domain.Role{
		UserID:     userID,
		RoomID:     roomID,
		RoleType:   domain.RoleTypeMember,
		LastAccess: time.Now(),
	}); err != nil {
		return nil, err
	}
	if err := s.presence.JoinRoom(ctx, roomID, nickname, userID); err != nil {
		return nil, err
	}
	return s.broadcastMembers(ctx, roomID)
}

// Leave drops the user from presence and broadcasts the member list.
func (s *RoomService) Leave(ctx context.Context, roomID, userID int64, nickname string) error {
	if err := s.presence.LeaveRoom(ctx, roomID, nickname, userID); err != nil {
		return err
	}
	_, err := s.broadcastMembers(ctx, roomID)
	return err
}

// UpdateInfo edits room metadata and tells subscribers via an editChat alert.
// Admin only.
func (s *RoomService) UpdateInfo(ctx context.Context, actorID, roomID int64, name, description string) error {
	if err := s.requireAdmin(ctx, actorID, roomID); err != nil {
		return err
	}
	if name == "" {
		return nearchat_errors.ErrInvalidInput
	}
	if err := s.rooms.UpdateInfo(ctx, roomID, name, description); err != nil {
		return err
	}

	payload, err := events.Encode(events.OutboundAlertMessage, events.AlertMessage{
		EditChat: &events.EditChat{Name: name, Description: description},
	})
	if err != nil {
		return err
	}
	if err := s.publisher.Publish(ctx, events.RoomChannel(roomID), payload); err != nil {
		s.log.Error("room edit publish failed", zap.Int64("room_id", roomID), zap.Error(err))
	}
	return nil
}

// Delete removes the room with its messages and roles, clears its presence
// keys and tells subscribers to drop the room. Admin only.
func (s *RoomService) Delete(ctx context.Context, actorID, roomID int64) error {
	if err := s.requireAdmin(ctx, actorID, roomID); err != nil {
		return err
	}

	err := s.withTx(ctx, func(messages repository.MessageRepository, roles repository.RoleRepository, rooms repository.RoomRepository) error {
		if err := messages.DeleteByRoom(ctx, roomID); err != nil {
			return err
		}
		if err := roles.DeleteByRoom(ctx, roomID); err != nil {
			return err
		}
		return rooms.Delete(ctx, roomID)
	})
	if err != nil {
		return err
	}

	if err := s.presence.ClearRoom(ctx, roomID); err != nil {
		s.log.Error("room presence cleanup failed", zap.Int64("room_id", roomID), zap.Error(err))
	}

	payload, err := events.Encode(events.OutboundAlertMessage, events.AlertMessage{DeleteChat: true})
	if err != nil {
		return err
	}
	if err := s.publisher.Publish(ctx, events.RoomChannel(roomID), payload); err != nil {
		s.log.Error("room delete publish failed", zap.Int64("room_id", roomID), zap.Error(err))
	}
	return nil
}

func (s *RoomService) requireAdmin(ctx context.Context, actorID, roomID int64) error {
	role, err := s.roles.Get(ctx, actorID, roomID)
	if err != nil {
		if errors.Is(err, nearchat_errors.ErrNotFound) {
			return nearchat_errors.ErrForbidden
		}
		return err
	}
	if role.RoleType != domain.RoleTypeAdmin {
		return nearchat_errors.ErrForbidden
	}
	return nil
}

func (s *RoomService) broadcastMembers(ctx context.Context, roomID int64) ([]string, error) {
	members, err := s.presence.RoomMembers(ctx, roomID)
	if err != nil {
		return nil, err
	}
	payload, err := events.Encode(events.OutboundAlertMessage, events.AlertMessage{Users: members})
	if err != nil {
		return nil, err
	}
	if err := s.publisher.Publish(ctx, events.RoomChannel(roomID), payload); err != nil {
		s.log.Error("member list publish failed", zap.Int64("room_id", roomID), zap.Error(err))
	}
	return members, nil
}

func (s *RoomService) withTx(ctx context.Context, fn func(repository.MessageRepository, repository.RoleRepository, repository.RoomRepository) error) error {
	if s.db == nil {
		return fn(s.messages, s.roles, s.rooms)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(repository.NewMessageRepository(tx), repository.NewRoleRepository(tx), repository.NewRoomRepository(tx))
	})
}
