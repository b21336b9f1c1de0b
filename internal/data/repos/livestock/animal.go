package livestock

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/bovipred/bovipred-backend/internal/domain"
	"github.com/bovipred/bovipred-backend/internal/platform/logger"
)

// AnimalFilter narrows List queries. Nil/empty members are ignored.
type AnimalFilter struct {
	Active             *bool
	GroupID            *uuid.UUID
	ReproductiveStatus string
	Search             string
	Limit              int
	Offset             int
}

type AnimalRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.Animal) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Animal, error)
	GetByEarTag(ctx context.Context, tx *gorm.DB, earTag string) (*types.Animal, error)
	List(ctx context.Context, tx *gorm.DB, f AnimalFilter) ([]*types.Animal, int64, error)
	ListActiveByGroup(ctx context.Context, tx *gorm.DB, groupID uuid.UUID) ([]*types.Animal, error)
	CountActive(ctx context.Context, tx *gorm.DB) (int64, error)
	CountByGroup(ctx context.Context, tx *gorm.DB, groupID uuid.UUID) (int64, error)
	GroupDistribution(ctx context.Context, tx *gorm.DB) (map[string]int64, error)
	Update(ctx context.Context, tx *gorm.DB, row *types.Animal) error
	SoftDelete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type animalRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAnimalRepo(db *gorm.DB, baseLog *logger.Logger) AnimalRepo {
	return &animalRepo{db: db, log: baseLog.With("repo", "AnimalRepo")}
}

func (r *animalRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *animalRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Animal) error {
	if row == nil {
		return nil
	}
	return r.conn(tx).WithContext(ctx).Create(row).Error
}

func (r *animalRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Animal, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out types.Animal
	err := r.conn(tx).WithContext(ctx).
		Preload("Group").
		Where("id = ?", id).
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *animalRepo) GetByEarTag(ctx context.Context, tx *gorm.DB, earTag string) (*types.Animal, error) {
	if earTag == "" {
		return nil, nil
	}
	var out types.Animal
	err := r.conn(tx).WithContext(ctx).
		Where("arete = ?", earTag).
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *animalRepo) List(ctx context.Context, tx *gorm.DB, f AnimalFilter) ([]*types.Animal, int64, error) {
	q := r.conn(tx).WithContext(ctx).Model(&types.Animal{})
	if f.Active != nil {
		q = q.Where("activo = ?", *f.Active)
	}
	if f.GroupID != nil {
		q = q.Where("grupo_id = ?", *f.GroupID)
	}
	if f.ReproductiveStatus != "" {
		q = q.Where("estado_reproductivo = ?", f.ReproductiveStatus)
	}
	if f.Search != "" {
		q = q.Where("arete ILIKE ?", "%"+f.Search+"%")
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

	var out []*types.Animal
	if err := q.Preload("Group").Order("arete ASC").Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *animalRepo) ListActiveByGroup(ctx context.Context, tx *gorm.DB, groupID uuid.UUID) ([]*types.Animal, error) {
	var out []*types.Animal
	if groupID == uuid.Nil {
		return out, nil
	}
	if err := r.conn(tx).WithContext(ctx).
		Where("grupo_id = ? AND activo = ?", groupID, true).
		Order("arete ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *animalRepo) CountActive(ctx context.Context, tx *gorm.DB) (int64, error) {
	var n int64
	err := r.conn(tx).WithContext(ctx).
		Model(&types.Animal{}).
		Where("activo = ?", true).
		Count(&n).Error
	return n, err
}

func (r *animalRepo) CountByGroup(ctx context.Context, tx *gorm.DB, groupID uuid.UUID) (int64, error) {
	var n int64
	if groupID == uuid.Nil {
		return 0, nil
	}
	err := r.conn(tx).WithContext(ctx).
		Model(&types.Animal{}).
		Where("grupo_id = ?", groupID).
		Count(&n).Error
	return n, err
}

// GroupDistribution counts active animals per group name; ungrouped
// animals fall under the empty key.
func (r *animalRepo) GroupDistribution(ctx context.Context, tx *gorm.DB) (map[string]int64, error) {
	type row struct {
		Name  string
		Total int64
	}
	var rows []row
	err := r.conn(tx).WithContext(ctx).
		Model(&types.Animal{}).
		Select("COALESCE(grupos.nombre, '') AS name, COUNT(*) AS total").
		Joins("LEFT JOIN grupos ON grupos.id = animals.grupo_id").
		Where("animals.activo = ?", true).
		Group("grupos.nombre").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Name] = r.Total
	}
	return out, nil
}

func (r *animalRepo) Update(ctx context.Context, tx *gorm.DB, row *types.Animal) error {
	if row == nil {
		return nil
	}
	return r.conn(tx).WithContext(ctx).Save(row).Error
}

func (r *animalRepo) SoftDelete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	if id == uuid.Nil {
		return nil
	}
	return r.conn(tx).WithContext(ctx).Where("id = ?", id).Delete(&types.Animal{}).Error
}
