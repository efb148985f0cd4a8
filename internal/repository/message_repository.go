package repository

import (
	"context"
	"errors"

	"nearchat/internal/domain"
	nearchat_errors "nearchat/pkg/errors"

	"gorm.io/gorm"
)

type PostgresMessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &PostgresMessageRepository{db: db}
}

func (r *PostgresMessageRepository) Create(ctx context.Context, m *domain.Message) error {
	res := r.db.WithContext(ctx).Create(m)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return nearchat_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresMessageRepository) GetByID(ctx context.Context, id int64) (domain.Message, error) {
	var m domain.Message
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Message{}, nearchat_errors.ErrNotFound
		}
		return domain.Message{}, err
	}
	return m, nil
}

func (r *PostgresMessageRepository) GetViewByID(ctx context.Context, id int64) (domain.RoomMessageView, error) {
	var v domain.RoomMessageView
	err := r.db.WithContext(ctx).
		Table("messages").
		Select("messages.*, users.nickname, users.is_bot").
		Joins("JOIN users ON users.id = messages.user_id").
		Where("messages.id = ?", id).
		Take(&v).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.RoomMessageView{}, nearchat_errors.ErrNotFound
		}
		return domain.RoomMessageView{}, err
	}
	return v, nil
}

func (r *PostgresMessageRepository) CountByRoom(ctx context.Context, roomID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("room_id = ?", roomID).
		Count(&count).Error
	return count, err
}

func (r *PostgresMessageRepository) CountByConversation(ctx context.Context, conversationID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("conversation_id = ?", conversationID).
		Count(&count).Error
	return count, err
}

// DeleteOldestInRoom removes the single lowest-id message of a room. Part of
// the retention trim; a no-op when the room is empty.
func (r *PostgresMessageRepository) DeleteOldestInRoom(ctx context.Context, roomID int64) error {
	return r.db.WithContext(ctx).Exec(`
		DELETE FROM messages
		WHERE id = (
			SELECT id FROM messages
			WHERE room_id = ?
			ORDER BY id ASC
			LIMIT 1
		)`, roomID).Error
}

func (r *PostgresMessageRepository) DeleteOldestInConversation(ctx context.Context, conversationID int64) error {
	return r.db.WithContext(ctx).Exec(`
		DELETE FROM messages
		WHERE id = (
			SELECT id FROM messages
			WHERE conversation_id = ?
			ORDER BY id ASC
			LIMIT 1
		)`, conversationID).Error
}

func (r *PostgresMessageRepository) LastRoomMessages(ctx context.Context, roomID int64, n int) ([]domain.RoomMessageView, error) {
	var views []domain.RoomMessageView
	err := r.db.WithContext(ctx).
		Table("messages").
		Select("messages.*, users.nickname, users.is_bot").
		Joins("JOIN users ON users.id = messages.user_id").
		Where("messages.room_id = ?", roomID).
		Order("messages.id DESC").
		Limit(n).
		Find(&views).Error
	if err != nil {
		return nil, err
	}
	// query is newest-first for the LIMIT; callers want oldest-first
	for i, j := 0, len(views)-1; i < j; i, j = i+1, j-1 {
		views[i], views[j] = views[j], views[i]
	}
	return views, nil
}

func (r *PostgresMessageRepository) DeleteByRoom(ctx context.Context, roomID int64) error {
	return r.db.WithContext(ctx).Delete(&domain.Message{}, "room_id = ?", roomID).Error
}
