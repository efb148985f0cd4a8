package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"nearchat/internal/domain"
	nearchat_errors "nearchat/pkg/errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresRoomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(db *gorm.DB) RoomRepository {
	return &PostgresRoomRepository{db: db}
}

func (r *PostgresRoomRepository) Create(ctx context.Context, room *domain.Room) error {
	res := r.db.WithContext(ctx).Create(room)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return nearchat_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresRoomRepository) GetByID(ctx context.Context, id int64) (domain.Room, error) {
	var room domain.Room
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Room{}, nearchat_errors.ErrNotFound
		}
		return domain.Room{}, err
	}
	return room, nil
}

func (r *PostgresRoomRepository) UpdateInfo(ctx context.Context, id int64, name, description string) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Room{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"name": name, "description": description})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return nearchat_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresRoomRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&domain.Room{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return nearchat_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresRoomRepository) UpsertOnlineSnapshot(ctx context.Context, roomID int64, users []string) error {
	data, err := json.Marshal(users)
	if err != nil {
		return err
	}
	snap := domain.OnlineSnapshot{
		RoomID:    roomID,
		Users:     string(data),
		UpdatedAt: time.Now(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "room_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"users", "updated_at"}),
		}).
		Create(&snap).Error
}
