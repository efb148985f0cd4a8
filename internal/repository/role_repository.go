package repository

import (
	"context"
	"errors"

	"nearchat/internal/domain"
	nearchat_errors "nearchat/pkg/errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresRoleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &PostgresRoleRepository{db: db}
}

func (r *PostgresRoleRepository) Get(ctx context.Context, userID, roomID int64) (domain.Role, error) {
	var role domain.Role
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND room_id = ?", userID, roomID).
		First(&role).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Role{}, nearchat_errors.ErrNotFound
		}
		return domain.Role{}, err
	}
	return role, nil
}

func (r *PostgresRoleRepository) Upsert(ctx context.Context, role *domain.Role) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "room_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"last_access"}),
		}).
		Create(role).Error
}

func (r *PostgresRoleRepository) SetRoleType(ctx context.Context, userID, roomID int64, roleType domain.RoleType) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Role{}).
		Where("user_id = ? AND room_id = ?", userID, roomID).
		Update("role_type", roleType)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return nearchat_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresRoleRepository) DeleteByRoom(ctx context.Context, roomID int64) error {
	return r.db.WithContext(ctx).Delete(&domain.Role{}, "room_id = ?", roomID).Error
}
