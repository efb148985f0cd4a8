package repository

import (
	"context"
	"errors"

	"nearchat/internal/domain"
	nearchat_errors "nearchat/pkg/errors"

	"gorm.io/gorm"
)

type PostgresConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &PostgresConversationRepository{db: db}
}

func (r *PostgresConversationRepository) Create(ctx context.Context, c *domain.Conversation) error {
	c.User1ID, c.User2ID = domain.NormalizePair(c.User1ID, c.User2ID)
	res := r.db.WithContext(ctx).Create(c)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return nearchat_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresConversationRepository) GetByID(ctx context.Context, id int64) (domain.Conversation, error) {
	var c domain.Conversation
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Conversation{}, nearchat_errors.ErrNotFound
		}
		return domain.Conversation{}, err
	}
	return c, nil
}

func (r *PostgresConversationRepository) GetByPair(ctx context.Context, userA, userB int64) (domain.Conversation, error) {
	u1, u2 := domain.NormalizePair(userA, userB)
	var c domain.Conversation
	err := r.db.WithContext(ctx).
		Where("user1_id = ? AND user2_id = ?", u1, u2).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Conversation{}, nearchat_errors.ErrNotFound
		}
		return domain.Conversation{}, err
	}
	return c, nil
}

func (r *PostgresConversationRepository) SetReadFlags(ctx context.Context, id int64, read1, read2 bool) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Conversation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"read1": read1, "read2": read2})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return nearchat_errors.ErrNotFound
	}
	return nil
}

// MarkRead sets the flag belonging to userID without touching the peer's.
func (r *PostgresConversationRepository) MarkRead(ctx context.Context, id, userID int64) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE conversations
		SET read1 = CASE WHEN user1_id = ? THEN true ELSE read1 END,
		    read2 = CASE WHEN user2_id = ? THEN true ELSE read2 END
		WHERE id = ?`, userID, userID, id).Error
}

func (r *PostgresConversationRepository) CountUnread(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Conversation{}).
		Where("(user1_id = ? AND read1 = false) OR (user2_id = ? AND read2 = false)", userID, userID).
		Count(&count).Error
	return count, err
}
