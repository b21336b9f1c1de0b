package livestock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/bovipred/bovipred-backend/internal/domain"
	"github.com/bovipred/bovipred-backend/internal/platform/logger"
)

type IATFFilter struct {
	AnimalID           *uuid.UUID
	SireID             *uuid.UUID
	Outcome            string
	PregnancyConfirmed *bool
	From               *time.Time
	To                 *time.Time
	GroupName          string
	Limit              int
	Offset             int
}

type IATFRecordRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.IATFRecord) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.IATFRecord, error)
	List(ctx context.Context, tx *gorm.DB, f IATFFilter) ([]*types.IATFRecord, int64, error)
	ListBySire(ctx context.Context, tx *gorm.DB, sireID uuid.UUID) ([]*types.IATFRecord, error)
	ListByAnimal(ctx context.Context, tx *gorm.DB, animalID uuid.UUID) ([]*types.IATFRecord, error)
	ListInRange(ctx context.Context, tx *gorm.DB, from, to time.Time, groupName string) ([]*types.IATFRecord, error)
	ListSince(ctx context.Context, tx *gorm.DB, since time.Time) ([]*types.IATFRecord, error)
	CountAll(ctx context.Context, tx *gorm.DB) (int64, error)
	CountPendingOlderThan(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)
	CountRecordedBySire(ctx context.Context, tx *gorm.DB, sireID uuid.UUID) (int64, error)
	Update(ctx context.Context, tx *gorm.DB, row *types.IATFRecord) error
	SoftDelete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type iatfRecordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewIATFRecordRepo(db *gorm.DB, baseLog *logger.Logger) IATFRecordRepo {
	return &iatfRecordRepo{db: db, log: baseLog.With("repo", "IATFRecordRepo")}
}

func (r *iatfRecordRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *iatfRecordRepo) Create(ctx context.Context, tx *gorm.DB, row *types.IATFRecord) error {
	if row == nil {
		return nil
	}
	return r.conn(tx).WithContext(ctx).Create(row).Error
}

func (r *iatfRecordRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.IATFRecord, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out types.IATFRecord
	err := r.conn(tx).WithContext(ctx).
		Preload("Animal").
		Preload("Sire").
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

func (r *iatfRecordRepo) List(ctx context.Context, tx *gorm.DB, f IATFFilter) ([]*types.IATFRecord, int64, error) {
	q := r.conn(tx).WithContext(ctx).Model(&types.IATFRecord{})
	if f.AnimalID != nil {
		q = q.Where("animal_id = ?", *f.AnimalID)
	}
	if f.SireID != nil {
		q = q.Where("semental_id = ?", *f.SireID)
	}
	if f.Outcome != "" {
		q = q.Where("resultado_iatf = ?", f.Outcome)
	}
	if f.PregnancyConfirmed != nil {
		q = q.Where("prenez_confirmada = ?", *f.PregnancyConfirmed)
	}
	if f.From != nil && f.To != nil {
		q = q.Where("fecha_iatf BETWEEN ? AND ?", *f.From, *f.To)
	}
	if f.GroupName != "" {
		q = q.Joins("JOIN animals ON animals.id = iatf_records.animal_id").
			Joins("JOIN grupos ON grupos.id = animals.grupo_id").
			Where("grupos.nombre = ?", f.GroupName)
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

	var out []*types.IATFRecord
	if err := q.Preload("Animal").Preload("Sire").
		Order("fecha_iatf DESC").
		Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *iatfRecordRepo) ListBySire(ctx context.Context, tx *gorm.DB, sireID uuid.UUID) ([]*types.IATFRecord, error) {
	var out []*types.IATFRecord
	if sireID == uuid.Nil {
		return out, nil
	}
	if err := r.conn(tx).WithContext(ctx).
		Where("semental_id = ?", sireID).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *iatfRecordRepo) ListByAnimal(ctx context.Context, tx *gorm.DB, animalID uuid.UUID) ([]*types.IATFRecord, error) {
	var out []*types.IATFRecord
	if animalID == uuid.Nil {
		return out, nil
	}
	if err := r.conn(tx).WithContext(ctx).
		Where("animal_id = ?", animalID).
		Order("fecha_iatf DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListInRange loads the full event set for a report window, with the
// animal and sire attached. Reports aggregate in memory, so no paging.
func (r *iatfRecordRepo) ListInRange(ctx context.Context, tx *gorm.DB, from, to time.Time, groupName string) ([]*types.IATFRecord, error) {
	q := r.conn(tx).WithContext(ctx).
		Model(&types.IATFRecord{}).
		Where("fecha_iatf BETWEEN ? AND ?", from, to)
	if groupName != "" {
		q = q.Joins("JOIN animals ON animals.id = iatf_records.animal_id").
			Joins("JOIN grupos ON grupos.id = animals.grupo_id").
			Where("grupos.nombre = ?", groupName)
	}
	var out []*types.IATFRecord
	if err := q.Preload("Animal").Preload("Animal.Group").Preload("Sire").
		Order("fecha_iatf ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *iatfRecordRepo) ListSince(ctx context.Context, tx *gorm.DB, since time.Time) ([]*types.IATFRecord, error) {
	var out []*types.IATFRecord
	if err := r.conn(tx).WithContext(ctx).
		Where("fecha_iatf >= ?", since).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *iatfRecordRepo) CountAll(ctx context.Context, tx *gorm.DB) (int64, error) {
	var n int64
	err := r.conn(tx).WithContext(ctx).Model(&types.IATFRecord{}).Count(&n).Error
	return n, err
}

func (r *iatfRecordRepo) CountPendingOlderThan(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
	var n int64
	err := r.conn(tx).WithContext(ctx).
		Model(&types.IATFRecord{}).
		Where("resultado_iatf = ? AND fecha_iatf <= ?", "pendiente", cutoff).
		Count(&n).Error
	return n, err
}

// CountRecordedBySire counts the sire's events with a registered
// outcome; the statistics service compares it against the stored
// counter to decide whether a recompute is due.
func (r *iatfRecordRepo) CountRecordedBySire(ctx context.Context, tx *gorm.DB, sireID uuid.UUID) (int64, error) {
	var n int64
	if sireID == uuid.Nil {
		return 0, nil
	}
	err := r.conn(tx).WithContext(ctx).
		Model(&types.IATFRecord{}).
		Where("semental_id = ? AND prenez_confirmada IS NOT NULL", sireID).
		Count(&n).Error
	return n, err
}

func (r *iatfRecordRepo) Update(ctx context.Context, tx *gorm.DB, row *types.IATFRecord) error {
	if row == nil {
		return nil
	}
	return r.conn(tx).WithContext(ctx).Save(row).Error
}

func (r *iatfRecordRepo) SoftDelete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	if id == uuid.Nil {
		return nil
	}
	return r.conn(tx).WithContext(ctx).Where("id = ?", id).Delete(&types.IATFRecord{}).Error
}
