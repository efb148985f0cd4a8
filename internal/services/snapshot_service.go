package services

import (
	"context"

	"nearchat/internal/repository"
	"nearchat/pkg/logger"

	"go.uber.org/zap"
)

// SnapshotService periodically copies the live room presence sets into
// Postgres so room listings can show occupancy without touching Redis.
type SnapshotService struct {
	rooms    repository.RoomRepository
	presence PresenceStore
	log      *logger.Logger
}

func NewSnapshotService(rooms repository.RoomRepository, presence PresenceStore, log *logger.Logger) *SnapshotService {
	return &SnapshotService{rooms: rooms, presence: presence, log: log}
}

// SnapshotOnline persists the current member set of every room that has one.
func (s *SnapshotService) SnapshotOnline(ctx context.Context) error {
	byRoom, err := s.presence.RoomKeys(ctx)
	if err != nil {
		return err
	}
	for roomID, members := range byRoom {
		if err := s.rooms.UpsertOnlineSnapshot(ctx, roomID, members); err != nil {
			s.log.Error("online snapshot upsert failed", zap.Int64("room_id", roomID), zap.Error(err))
		}
	}
	return nil
}
