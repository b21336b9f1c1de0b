package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/bovipred/bovipred-backend/internal/domain"
	"github.com/bovipred/bovipred-backend/internal/platform/logger"
)

type UserTokenRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.UserToken) error
	GetByHash(ctx context.Context, tx *gorm.DB, hash string) (*types.UserToken, error)
	DeleteByHash(ctx context.Context, tx *gorm.DB, hash string) error
	DeleteByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
	DeleteExpired(ctx context.Context, tx *gorm.DB, now time.Time) (int64, error)
}

type userTokenRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	return &userTokenRepo{db: db, log: baseLog.With("repo", "UserTokenRepo")}
}

func (r *userTokenRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *userTokenRepo) Create(ctx context.Context, tx *gorm.DB, row *types.UserToken) error {
	if row == nil {
		return nil
	}
	return r.conn(tx).WithContext(ctx).Create(row).Error
}

func (r *userTokenRepo) GetByHash(ctx context.Context, tx *gorm.DB, hash string) (*types.UserToken, error) {
	if hash == "" {
		return nil, nil
	}
	var out types.UserToken
	err := r.conn(tx).WithContext(ctx).Where("token_hash = ?", hash).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *userTokenRepo) DeleteByHash(ctx context.Context, tx *gorm.DB, hash string) error {
	if hash == "" {
		return nil
	}
	return r.conn(tx).WithContext(ctx).
		Where("token_hash = ?", hash).
		Delete(&types.UserToken{}).Error
}

// DeleteByUser revokes every session of a user, used on password change
// and account deactivation.
func (r *userTokenRepo) DeleteByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return nil
	}
	return r.conn(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&types.UserToken{}).Error
}

func (r *userTokenRepo) DeleteExpired(ctx context.Context, tx *gorm.DB, now time.Time) (int64, error) {
	res := r.conn(tx).WithContext(ctx).
		Where("expires_at < ?", now).
		Delete(&types.UserToken{})
	return res.RowsAffected, res.Error
}
