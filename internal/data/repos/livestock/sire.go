package livestock

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/bovipred/bovipred-backend/internal/domain"
	"github.com/bovipred/bovipred-backend/internal/platform/logger"
)

type SireFilter struct {
	Active *bool
	Search string
	Limit  int
	Offset int
}

type SireRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.Sire) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Sire, error)
	GetByName(ctx context.Context, tx *gorm.DB, name string) (*types.Sire, error)
	List(ctx context.Context, tx *gorm.DB, f SireFilter) ([]*types.Sire, int64, error)
	ListIDs(ctx context.Context, tx *gorm.DB) ([]uuid.UUID, error)
	TopByRate(ctx context.Context, tx *gorm.DB, limit int) ([]*types.Sire, error)
	Update(ctx context.Context, tx *gorm.DB, row *types.Sire) error
	// UpdateStatistics persists only the derived counters and rate,
	// bypassing model hooks so recomputation cannot re-enter itself.
	UpdateStatistics(ctx context.Context, tx *gorm.DB, id uuid.UUID, services, pregnancies, losses int, rate *float64) error
	SoftDelete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type sireRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSireRepo(db *gorm.DB, baseLog *logger.Logger) SireRepo {
	return &sireRepo{db: db, log: baseLog.With("repo", "SireRepo")}
}

func (r *sireRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *sireRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Sire) error {
	if row == nil {
		return nil
	}
	return r.conn(tx).WithContext(ctx).Create(row).Error
}

func (r *sireRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Sire, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out types.Sire
	err := r.conn(tx).WithContext(ctx).Where("id = ?", id).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *sireRepo) GetByName(ctx context.Context, tx *gorm.DB, name string) (*types.Sire, error) {
	if name == "" {
		return nil, nil
	}
	var out types.Sire
	err := r.conn(tx).WithContext(ctx).Where("nombre = ?", name).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *sireRepo) List(ctx context.Context, tx *gorm.DB, f SireFilter) ([]*types.Sire, int64, error) {
	q := r.conn(tx).WithContext(ctx).Model(&types.Sire{})
	if f.Active != nil {
		q = q.Where("activo = ?", *f.Active)
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		q = q.Where("nombre ILIKE ? OR raza ILIKE ? OR codigo_pajilla ILIKE ?", pattern, pattern, pattern)
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

	var out []*types.Sire
	if err := q.Order("nombre ASC").Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *sireRepo) ListIDs(ctx context.Context, tx *gorm.DB) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.conn(tx).WithContext(ctx).
		Model(&types.Sire{}).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *sireRepo) TopByRate(ctx context.Context, tx *gorm.DB, limit int) ([]*types.Sire, error) {
	if limit <= 0 {
		limit = 5
	}
	var out []*types.Sire
	if err := r.conn(tx).WithContext(ctx).
		Where("activo = ? AND tasa_historica_prenez IS NOT NULL", true).
		Order("tasa_historica_prenez DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *sireRepo) Update(ctx context.Context, tx *gorm.DB, row *types.Sire) error {
	if row == nil {
		return nil
	}
	return r.conn(tx).WithContext(ctx).Save(row).Error
}

func (r *sireRepo) UpdateStatistics(ctx context.Context, tx *gorm.DB, id uuid.UUID, services, pregnancies, losses int, rate *float64) error {
	if id == uuid.Nil {
		return nil
	}
	updates := map[string]interface{}{
		"total_servicios":            services,
		"total_preneces":             pregnancies,
		"total_muertes_embrionarias": losses,
	}
	if rate != nil {
		updates["tasa_historica_prenez"] = *rate
	}
	return r.conn(tx).WithContext(ctx).
		Model(&types.Sire{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *sireRepo) SoftDelete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	if id == uuid.Nil {
		return nil
	}
	return r.conn(tx).WithContext(ctx).Where("id = ?", id).Delete(&types.Sire{}).Error
}
