package services

import (
	"context"
	"errors"

	"nearchat/internal/domain"
	"nearchat/internal/events"
	"nearchat/internal/repository"
	nearchat_errors "nearchat/pkg/errors"
	"nearchat/pkg/logger"

	"go.uber.org/zap"
)

// ModerationService handles ban and unban. A ban flips the target's role,
// evicts them from room presence, tells every connection of theirs to leave
// and refreshes the room's member list.
type ModerationService struct {
	roles     repository.RoleRepository
	users     repository.UserRepository
	presence  PresenceStore
	publisher Publisher
	log       *logger.Logger
}

func NewModerationService(
	roles repository.RoleRepository,
	users repository.UserRepository,
	presence PresenceStore,
	publisher Publisher,
	log *logger.Logger,
) *ModerationService {
	return &ModerationService{
		roles:     roles,
		users:     users,
		presence:  presence,
		publisher: publisher,
		log:       log,
	}
}

// Ban marks target banned in roomID and evicts them. Only the room admin may
// ban, and admins cannot be banned.
func (s *ModerationService) Ban(ctx context.Context, actorID, targetID, roomID int64) error {
	if err := s.requireAdmin(ctx, actorID, roomID); err != nil {
		return err
	}

	targetRole, roleErr := s.roles.Get(ctx, targetID, roomID)
	if roleErr != nil && !errors.Is(roleErr, nearchat_errors.ErrNotFound) {
		return roleErr
	}
	if roleErr == nil && targetRole.RoleType == domain.RoleTypeAdmin {
		return nearchat_errors.ErrForbidden
	}

	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return err
	}

	// A target without a membership row gets one created already banned;
	// an existing row just flips.
	if roleErr != nil {
		role := domain.Role{UserID: targetID, RoomID: roomID, RoleType: domain.RoleTypeBanned}
		if err := s.roles.Upsert(ctx, &role); err != nil {
			return err
		}
	} else if err := s.roles.SetRoleType(ctx, targetID, roomID, domain.RoleTypeBanned); err != nil {
		return err
	}

	if err := s.presence.LeaveRoom(ctx, roomID, target.Nickname, targetID); err != nil {
		s.log.Error("ban presence eviction failed",
			zap.Int64("room_id", roomID),
			zap.Int64("user_id", targetID),
			zap.Error(err),
		)
	}

	// The target hears about the ban on their user channel so every one of
	// their connections drops the room.
	payload, err := events.Encode(events.OutboundBanned, events.Banned{ChatID: roomID})
	if err != nil {
		return err
	}
	if err := s.publisher.Publish(ctx, events.UserChannel(targetID), payload); err != nil {
		s.log.Error("ban notice publish failed", zap.Int64("user_id", targetID), zap.Error(err))
	}

	s.broadcastMembers(ctx, roomID)
	return nil
}

// Unban restores the target to a plain member.
func (s *ModerationService) Unban(ctx context.Context, actorID, targetID, roomID int64) error {
	if err := s.requireAdmin(ctx, actorID, roomID); err != nil {
		return err
	}

	role, err := s.roles.Get(ctx, targetID, roomID)
	if err != nil {
		return err
	}
	if role.RoleType != domain.RoleTypeBanned {
		return nearchat_errors.ErrConflict
	}
	return s.roles.SetRoleType(ctx, targetID, roomID, domain.RoleTypeMember)
}

// IsBanned reports whether userID is banned in roomID. Absent roles count as
// not banned.
func (s *ModerationService) IsBanned(ctx context.Context, userID, roomID int64) (bool, error) {
	role, err := s.roles.Get(ctx, userID, roomID)
	if err != nil {
		if errors.Is(err, nearchat_errors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return role.RoleType == domain.RoleTypeBanned, nil
}

func (s *ModerationService) requireAdmin(ctx context.Context, actorID, roomID int64) error {
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

func (s *ModerationService) broadcastMembers(ctx context.Context, roomID int64) {
	members, err := s.presence.RoomMembers(ctx, roomID)
	if err != nil {
		s.log.Error("room member listing failed", zap.Int64("room_id", roomID), zap.Error(err))
		return
	}
	payload, err := events.Encode(events.OutboundAlertMessage, events.AlertMessage{Users: members})
	if err != nil {
		s.log.Error("member list encode failed", zap.Error(err))
		return
	}
	if err := s.publisher.Publish(ctx, events.RoomChannel(roomID), payload); err != nil {
		s.log.Error("member list publish failed", zap.Int64("room_id", roomID), zap.Error(err))
	}
}
