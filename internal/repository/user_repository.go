package repository

import (
	"context"
	"errors"

	"nearchat/internal/domain"
	nearchat_errors "nearchat/pkg/errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresUserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) Create(ctx context.Context, u *domain.User) error {
	res := r.db.WithContext(ctx).Create(u)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return nearchat_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id int64) (domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, nearchat_errors.ErrNotFound
		}
		return domain.User{}, err
	}
	return u, nil
}

func (r *PostgresUserRepository) GetByToken(ctx context.Context, token string) (domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).Where("token = ?", token).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, nearchat_errors.ErrNotFound
		}
		return domain.User{}, err
	}
	return u, nil
}

func (r *PostgresUserRepository) EnsureBot(ctx context.Context, u *domain.User) error {
	u.IsBot = true
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"nickname"}),
		}).
		Create(u).Error
}

func (r *PostgresUserRepository) GetPushSubscription(ctx context.Context, userID int64) (domain.PushSubscription, error) {
	var s domain.PushSubscription
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.PushSubscription{}, nearchat_errors.ErrNotFound
		}
		return domain.PushSubscription{}, err
	}
	return s, nil
}

func (r *PostgresUserRepository) SavePushSubscription(ctx context.Context, s *domain.PushSubscription) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"endpoint", "p256dh", "auth"}),
		}).
		Create(s).Error
}
