package reporting

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/bovipred/bovipred-backend/internal/domain"
	"github.com/bovipred/bovipred-backend/internal/platform/logger"
)

type ReportFilter struct {
	Type   string
	UserID *uuid.UUID
	Limit  int
	Offset int
}

type ReportRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.Report) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Report, error)
	List(ctx context.Context, tx *gorm.DB, f ReportFilter) ([]*types.Report, int64, error)
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type reportRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReportRepo(db *gorm.DB, baseLog *logger.Logger) ReportRepo {
	return &reportRepo{db: db, log: baseLog.With("repo", "ReportRepo")}
}

func (r *reportRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *reportRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Report) error {
	if row == nil {
		return nil
	}
	return r.conn(tx).WithContext(ctx).Create(row).Error
}

func (r *reportRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Report, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out types.Report
	err := r.conn(tx).WithContext(ctx).Where("id = ?", id).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *reportRepo) List(ctx context.Context, tx *gorm.DB, f ReportFilter) ([]*types.Report, int64, error) {
	q := r.conn(tx).WithContext(ctx).Model(&types.Report{})
	if f.Type != "" {
		q = q.Where("tipo_reporte = ?", f.Type)
	}
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	var out []*types.Report
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *reportRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	if id == uuid.Nil {
		return nil
	}
	return r.conn(tx).WithContext(ctx).Where("id = ?", id).Delete(&types.Report{}).Error
}
