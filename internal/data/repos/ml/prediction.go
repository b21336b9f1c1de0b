package ml

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/bovipred/bovipred-backend/internal/domain"
	"github.com/bovipred/bovipred-backend/internal/platform/logger"
)

// ValidationStats aggregates predictions whose observed outcome has
// been registered, split by confidence tier.
type ValidationStats struct {
	Total          int64
	Validated      int64
	Correct        int64
	ByTier         map[string]TierStats
	AvgProbability *float64
}

type TierStats struct {
	Total   int64
	Correct int64
}

type PredictionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.Prediction) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Prediction, error)
	GetByIATFRecordID(ctx context.Context, tx *gorm.DB, recordID uuid.UUID) (*types.Prediction, error)
	List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*types.Prediction, int64, error)
	ListValidatedSince(ctx context.Context, tx *gorm.DB, since time.Time) ([]*types.Prediction, error)
	Update(ctx context.Context, tx *gorm.DB, row *types.Prediction) error
	DeleteByIATFRecordID(ctx context.Context, tx *gorm.DB, recordID uuid.UUID) error
	Stats(ctx context.Context, tx *gorm.DB) (*ValidationStats, error)
}

type predictionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPredictionRepo(db *gorm.DB, baseLog *logger.Logger) PredictionRepo {
	return &predictionRepo{db: db, log: baseLog.With("repo", "PredictionRepo")}
}

func (r *predictionRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *predictionRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Prediction) error {
	if row == nil {
		return nil
	}
	return r.conn(tx).WithContext(ctx).Create(row).Error
}

func (r *predictionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Prediction, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out types.Prediction
	err := r.conn(tx).WithContext(ctx).Where("id = ?", id).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *predictionRepo) GetByIATFRecordID(ctx context.Context, tx *gorm.DB, recordID uuid.UUID) (*types.Prediction, error) {
	if recordID == uuid.Nil {
		return nil, nil
	}
	var out types.Prediction
	err := r.conn(tx).WithContext(ctx).Where("iatf_record_id = ?", recordID).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *predictionRepo) List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*types.Prediction, int64, error) {
	q := r.conn(tx).WithContext(ctx).Model(&types.Prediction{})

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

	var out []*types.Prediction
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *predictionRepo) ListValidatedSince(ctx context.Context, tx *gorm.DB, since time.Time) ([]*types.Prediction, error) {
	var out []*types.Prediction
	if err := r.conn(tx).WithContext(ctx).
		Where("fecha_validacion IS NOT NULL AND fecha_validacion >= ?", since).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *predictionRepo) Update(ctx context.Context, tx *gorm.DB, row *types.Prediction) error {
	if row == nil {
		return nil
	}
	return r.conn(tx).WithContext(ctx).Save(row).Error
}

func (r *predictionRepo) DeleteByIATFRecordID(ctx context.Context, tx *gorm.DB, recordID uuid.UUID) error {
	if recordID == uuid.Nil {
		return nil
	}
	return r.conn(tx).WithContext(ctx).
		Where("iatf_record_id = ?", recordID).
		Delete(&types.Prediction{}).Error
}

// Stats runs the tier breakdown in SQL rather than loading every row.
func (r *predictionRepo) Stats(ctx context.Context, tx *gorm.DB) (*ValidationStats, error) {
	conn := r.conn(tx).WithContext(ctx)
	out := &ValidationStats{ByTier: map[string]TierStats{}}

	if err := conn.Model(&types.Prediction{}).Count(&out.Total).Error; err != nil {
		return nil, err
	}
	if err := conn.Model(&types.Prediction{}).
		Where("fecha_validacion IS NOT NULL").
		Count(&out.Validated).Error; err != nil {
		return nil, err
	}
	if err := conn.Model(&types.Prediction{}).
		Where("fecha_validacion IS NOT NULL AND prediccion_correcta = ?", true).
		Count(&out.Correct).Error; err != nil {
		return nil, err
	}

	type tierRow struct {
		Tier    string
		Total   int64
		Correct int64
	}
	var rows []tierRow
	if err := conn.Model(&types.Prediction{}).
		Select("nivel_confianza AS tier, COUNT(*) AS total, COUNT(*) FILTER (WHERE prediccion_correcta) AS correct").
		Where("fecha_validacion IS NOT NULL").
		Group("nivel_confianza").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out.ByTier[row.Tier] = TierStats{Total: row.Total, Correct: row.Correct}
	}

	var avg struct{ Avg *float64 }
	if err := conn.Model(&types.Prediction{}).
		Select("AVG(probabilidad_prenez) AS avg").
		Scan(&avg).Error; err != nil {
		return nil, err
	}
	out.AvgProbability = avg.Avg

	return out, nil
}
