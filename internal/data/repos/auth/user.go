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

type UserRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.User) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.User, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.User, error)
	List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*types.User, int64, error)
	Update(ctx context.Context, tx *gorm.DB, row *types.User) error
	TouchLastAccess(ctx context.Context, tx *gorm.DB, id uuid.UUID, at time.Time) error
	SetActive(ctx context.Context, tx *gorm.DB, id uuid.UUID, active bool) error
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return &userRepo{db: db, log: baseLog.With("repo", "UserRepo")}
}

func (r *userRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *userRepo) Create(ctx context.Context, tx *gorm.DB, row *types.User) error {
	if row == nil {
		return nil
	}
	return r.conn(tx).WithContext(ctx).Create(row).Error
}

func (r *userRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.User, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out types.User
	err := r.conn(tx).WithContext(ctx).Where("id = ?", id).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*types.User, error) {
	if email == "" {
		return nil, nil
	}
	var out types.User
	err := r.conn(tx).WithContext(ctx).Where("email = ?", email).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *userRepo) List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*types.User, int64, error) {
	q := r.conn(tx).WithContext(ctx).Model(&types.User{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}

	var out []*types.User
	if err := q.Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *userRepo) Update(ctx context.Context, tx *gorm.DB, row *types.User) error {
	if row == nil {
		return nil
	}
	return r.conn(tx).WithContext(ctx).Save(row).Error
}

func (r *userRepo) TouchLastAccess(ctx context.Context, tx *gorm.DB, id uuid.UUID, at time.Time) error {
	if id == uuid.Nil {
		return nil
	}
	return r.conn(tx).WithContext(ctx).
		Model(&types.User{}).
		Where("id = ?", id).
		Update("ultimo_acceso", at).Error
}

func (r *userRepo) SetActive(ctx context.Context, tx *gorm.DB, id uuid.UUID, active bool) error {
	if id == uuid.Nil {
		return nil
	}
	return r.conn(tx).WithContext(ctx).
		Model(&types.User{}).
		Where("id = ?", id).
		Update("activo", active).Error
}
