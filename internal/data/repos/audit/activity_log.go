package audit

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/bovipred/bovipred-backend/internal/domain"
	"github.com/bovipred/bovipred-backend/internal/platform/logger"
)

type ActivityLogRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.ActivityLog) error
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.ActivityLog, error)
}

type activityLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewActivityLogRepo(db *gorm.DB, baseLog *logger.Logger) ActivityLogRepo {
	return &activityLogRepo{db: db, log: baseLog.With("repo", "ActivityLogRepo")}
}

func (r *activityLogRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *activityLogRepo) Create(ctx context.Context, tx *gorm.DB, row *types.ActivityLog) error {
	if row == nil {
		return nil
	}
	return r.conn(tx).WithContext(ctx).Create(row).Error
}

func (r *activityLogRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.ActivityLog, error) {
	var out []*types.ActivityLog
	if userID == uuid.Nil {
		return out, nil
	}
	q := r.conn(tx).WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
