package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	livestockrepo "github.com/bovipred/bovipred-backend/internal/data/repos/livestock"
	types "github.com/bovipred/bovipred-backend/internal/domain"
	"github.com/bovipred/bovipred-backend/internal/domain/audit"
	"github.com/bovipred/bovipred-backend/internal/domain/livestock"
	"github.com/bovipred/bovipred-backend/internal/pkg/apperr"
	"github.com/bovipred/bovipred-backend/internal/platform/logger"
)

type AnimalInput struct {
	EarTag              string     `json:"arete"`
	GroupID             *uuid.UUID `json:"grupo_id"`
	AgeMonths           *int       `json:"edad_meses"`
	WeightKg            *float64   `json:"peso_kg"`
	BodyCondition       *float64   `json:"condicion_corporal"`
	ParityCount         *int       `json:"numero_partos"`
	DaysPostpartum      *int       `json:"dias_posparto"`
	DaysOpen            *int       `json:"dias_abiertos"`
	AbortionHistory     *bool      `json:"historial_abortos"`
	AbortionCount       *int       `json:"numero_abortos"`
	ReproductiveDisease *bool      `json:"enfermedades_reproductivas"`
	DiseaseDescription  string     `json:"descripcion_enfermedades"`
	ReproductiveStatus  string     `json:"estado_reproductivo"`
	Active              *bool      `json:"activo"`
	Notes               string     `json:"observaciones"`
}

// AnimalStats is the per-animal breeding summary endpoint payload.
type AnimalStats struct {
	Animal         *types.Animal `json:"animal"`
	TotalEvents    int           `json:"total_registros"`
	ConfirmedCount int           `json:"total_preneces"`
	PendingCount   int           `json:"registros_pendientes"`
	PregnancyRate  float64       `json:"tasa_prenez"`
}

type AnimalService interface {
	Create(ctx context.Context, in AnimalInput) (*types.Animal, error)
	List(ctx context.Context, f livestockrepo.AnimalFilter) ([]*types.Animal, int64, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Animal, error)
	Update(ctx context.Context, id uuid.UUID, in AnimalInput) (*types.Animal, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context, id uuid.UUID) (*AnimalStats, error)
}

type animalService struct {
	db       *gorm.DB
	log      *logger.Logger
	animals  livestockrepo.AnimalRepo
	groups   livestockrepo.GroupRepo
	iatf     livestockrepo.IATFRecordRepo
	activity ActivityLogService
}

func NewAnimalService(
	db *gorm.DB,
	log *logger.Logger,
	animals livestockrepo.AnimalRepo,
	groups livestockrepo.GroupRepo,
	iatf livestockrepo.IATFRecordRepo,
	activity ActivityLogService,
) AnimalService {
	return &animalService{
		db:       db,
		log:      log.With("service", "AnimalService"),
		animals:  animals,
		groups:   groups,
		iatf:     iatf,
		activity: activity,
	}
}

func (s *animalService) Create(ctx context.Context, in AnimalInput) (*types.Animal, error) {
	if err := s.validateInput(ctx, in, true); err != nil {
		return nil, err
	}
	earTag := strings.TrimSpace(in.EarTag)

	existing, err := s.animals.GetByEarTag(ctx, nil, earTag)
	if err != nil {
		return nil, apperr.FromDB(err)
	}
	if existing != nil {
		return nil, apperr.Conflict("ya existe un animal con ese arete")
	}

	animal := &types.Animal{
		ID:                 uuid.New(),
		EarTag:             earTag,
		GroupID:            in.GroupID,
		AgeMonths:          in.AgeMonths,
		WeightKg:           in.WeightKg,
		BodyCondition:      in.BodyCondition,
		ParityCount:        in.ParityCount,
		DaysPostpartum:     in.DaysPostpartum,
		DaysOpen:           in.DaysOpen,
		DiseaseDescription: strings.TrimSpace(in.DiseaseDescription),
		ReproductiveStatus: livestock.StatusActive,
		Active:             true,
		Notes:              strings.TrimSpace(in.Notes),
	}
	if in.AbortionHistory != nil {
		animal.AbortionHistory = *in.AbortionHistory
	}
	if in.AbortionCount != nil {
		animal.AbortionCount = *in.AbortionCount
	}
	if in.ReproductiveDisease != nil {
		animal.ReproductiveDisease = *in.ReproductiveDisease
	}
	if in.ReproductiveStatus != "" {
		animal.ReproductiveStatus = in.ReproductiveStatus
	}
	if in.Active != nil {
		animal.Active = *in.Active
	}

	if err := s.animals.Create(ctx, nil, animal); err != nil {
		return nil, apperr.FromDB(err)
	}
	s.activity.Record(ctx, audit.ActionCreate, "Animal", &animal.ID, "Animal creado: "+animal.EarTag)
	return animal, nil
}

func (s *animalService) List(ctx context.Context, f livestockrepo.AnimalFilter) ([]*types.Animal, int64, error) {
	rows, total, err := s.animals.List(ctx, nil, f)
	if err != nil {
		return nil, 0, apperr.FromDB(err)
	}
	return rows, total, nil
}

func (s *animalService) Get(ctx context.Context, id uuid.UUID) (*types.Animal, error) {
	animal, err := s.animals.GetByID(ctx, nil, id)
	if err != nil {
		return nil, apperr.FromDB(err)
	}
	if animal == nil {
		return nil, apperr.NotFound("animal no encontrado")
	}
	return animal, nil
}

func (s *animalService) Update(ctx context.Context, id uuid.UUID, in AnimalInput) (*types.Animal, error) {
	animal, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validateInput(ctx, in, false); err != nil {
		return nil, err
	}
	before := *animal

	if earTag := strings.TrimSpace(in.EarTag); earTag != "" && earTag != animal.EarTag {
		other, err := s.animals.GetByEarTag(ctx, nil, earTag)
		if err != nil {
			return nil, apperr.FromDB(err)
		}
		if other != nil && other.ID != animal.ID {
			return nil, apperr.Conflict("ya existe un animal con ese arete")
		}
		animal.EarTag = earTag
	}
	if in.GroupID != nil {
		animal.GroupID = in.GroupID
	}
	if in.AgeMonths != nil {
		animal.AgeMonths = in.AgeMonths
	}
	if in.WeightKg != nil {
		animal.WeightKg = in.WeightKg
	}
	if in.BodyCondition != nil {
		animal.BodyCondition = in.BodyCondition
	}
	if in.ParityCount != nil {
		animal.ParityCount = in.ParityCount
	}
	if in.DaysPostpartum != nil {
		animal.DaysPostpartum = in.DaysPostpartum
	}
	if in.DaysOpen != nil {
		animal.DaysOpen = in.DaysOpen
	}
	if in.AbortionHistory != nil {
		animal.AbortionHistory = *in.AbortionHistory
	}
	if in.AbortionCount != nil {
		animal.AbortionCount = *in.AbortionCount
	}
	if in.ReproductiveDisease != nil {
		animal.ReproductiveDisease = *in.ReproductiveDisease
	}
	if in.DiseaseDescription != "" {
		animal.DiseaseDescription = strings.TrimSpace(in.DiseaseDescription)
	}
	if in.ReproductiveStatus != "" {
		animal.ReproductiveStatus = in.ReproductiveStatus
	}
	if in.Active != nil {
		animal.Active = *in.Active
	}
	if in.Notes != "" {
		animal.Notes = strings.TrimSpace(in.Notes)
	}

	if err := s.animals.Update(ctx, nil, animal); err != nil {
		return nil, apperr.FromDB(err)
	}
	s.activity.RecordChange(ctx, audit.ActionUpdate, "Animal", &animal.ID, "Animal actualizado: "+animal.EarTag, before, animal)
	return animal, nil
}

func (s *animalService) Delete(ctx context.Context, id uuid.UUID) error {
	animal, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.animals.SoftDelete(ctx, nil, id); err != nil {
		return apperr.FromDB(err)
	}
	s.activity.Record(ctx, audit.ActionDelete, "Animal", &animal.ID, "Animal eliminado: "+animal.EarTag)
	return nil
}

func (s *animalService) Stats(ctx context.Context, id uuid.UUID) (*AnimalStats, error) {
	animal, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	events, err := s.iatf.ListByAnimal(ctx, nil, id)
	if err != nil {
		return nil, apperr.FromDB(err)
	}

	stats := &AnimalStats{Animal: animal, TotalEvents: len(events)}
	for _, e := range events {
		if e.PregnancyConfirmed != nil && *e.PregnancyConfirmed {
			stats.ConfirmedCount++
		}
		if e.Outcome == livestock.OutcomePending {
			stats.PendingCount++
		}
	}
	stats.PregnancyRate = rate(stats.ConfirmedCount, stats.TotalEvents)
	return stats, nil
}

func (s *animalService) validateInput(ctx context.Context, in AnimalInput, creating bool) error {
	fields := map[string]string{}
	if creating && strings.TrimSpace(in.EarTag) == "" {
		fields["arete"] = "requerido"
	}
	if in.BodyCondition != nil && (*in.BodyCondition < 1 || *in.BodyCondition > 5) {
		fields["condicion_corporal"] = "debe estar entre 1 y 5"
	}
	if in.AgeMonths != nil && *in.AgeMonths < 0 {
		fields["edad_meses"] = "no puede ser negativa"
	}
	if in.WeightKg != nil && *in.WeightKg <= 0 {
		fields["peso_kg"] = "debe ser positivo"
	}
	if in.ParityCount != nil && *in.ParityCount < 0 {
		fields["numero_partos"] = "no puede ser negativo"
	}
	if in.DaysPostpartum != nil && *in.DaysPostpartum < 0 {
		fields["dias_posparto"] = "no puede ser negativo"
	}
	if in.ReproductiveStatus != "" && !livestock.ValidReproductiveStatus(in.ReproductiveStatus) {
		fields["estado_reproductivo"] = "estado invalido"
	}
	if in.GroupID != nil {
		group, err := s.groups.GetByID(ctx, nil, *in.GroupID)
		if err != nil {
			return apperr.FromDB(err)
		}
		if group == nil {
			fields["grupo_id"] = "grupo no encontrado"
		}
	}
	if len(fields) > 0 {
		return apperr.Validation(fields)
	}
	return nil
}
