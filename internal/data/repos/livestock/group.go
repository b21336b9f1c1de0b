package livestock

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/bovipred/bovipred-backend/internal/domain"
	"github.com/bovipred/bovipred-backend/internal/platform/logger"
)

type GroupRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.Group) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Group, error)
	GetByName(ctx context.Context, tx *gorm.DB, name string) (*types.Group, error)
	List(ctx context.Context, tx *gorm.DB, activeOnly bool) ([]*types.Group, error)
	Update(ctx context.Context, tx *gorm.DB, row *types.Group) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type groupRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGroupRepo(db *gorm.DB, baseLog *logger.Logger) GroupRepo {
	return &groupRepo{db: db, log: baseLog.With("repo", "GroupRepo")}
}

func (r *groupRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *groupRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Group) error {
	if row == nil {
		return nil
	}
	return r.conn(tx).WithContext(ctx).Create(row).Error
}

func (r *groupRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Group, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out types.Group
	err := r.conn(tx).WithContext(ctx).Where("id = ?", id).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *groupRepo) GetByName(ctx context.Context, tx *gorm.DB, name string) (*types.Group, error) {
	if name == "" {
		return nil, nil
	}
	var out types.Group
	err := r.conn(tx).WithContext(ctx).Where("nombre = ?", name).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *groupRepo) List(ctx context.Context, tx *gorm.DB, activeOnly bool) ([]*types.Group, error) {
	q := r.conn(tx).WithContext(ctx).Model(&types.Group{})
	if activeOnly {
		q = q.Where("activo = ?", true)
	}
	var out []*types.Group
	if err := q.Order("nombre ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *groupRepo) Update(ctx context.Context, tx *gorm.DB, row *types.Group) error {
	if row == nil {
		return nil
	}
	return r.conn(tx).WithContext(ctx).Save(row).Error
}

func (r *groupRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	if id == uuid.Nil {
		return nil
	}
	return r.conn(tx).WithContext(ctx).Where("id = ?", id).Delete(&types.Group{}).Error
}
