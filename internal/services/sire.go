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

type SireInput struct {
	Name               string   `json:"nombre"`
	Breed              string   `json:"raza"`
	StrawCode          string   `json:"codigo_pajilla"`
	SemenQuality       *float64 `json:"calidad_seminal"`
	SpermConcentration *float64 `json:"concentracion_espermatica"`
	SpermMorphology    *float64 `json:"morfologia_espermatica"`
	Supplier           string   `json:"proveedor"`
	StrawPrice         *float64 `json:"precio_pajilla"`
	Active             *bool    `json:"activo"`
	Notes              string   `json:"observaciones"`
}

// SireStatistics is the derived outcome summary for one sire.
type SireStatistics struct {
	TotalServices        int      `json:"total_servicios"`
	TotalPregnancies     int      `json:"total_preneces"`
	TotalEmbryonicLosses int      `json:"total_muertes_embrionarias"`
	// Rate is nil when the sire has no recorded services; the stored
	// value is left untouched in that case.
	Rate *float64 `json:"tasa_historica_prenez"`
}

type SireService interface {
	Create(ctx context.Context, in SireInput) (*types.Sire, error)
	List(ctx context.Context, f livestockrepo.SireFilter) ([]*types.Sire, int64, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Sire, error)
	Update(ctx context.Context, id uuid.UUID, in SireInput) (*types.Sire, error)
	Delete(ctx context.Context, id uuid.UUID) error
	RecomputeStatistics(ctx context.Context, id uuid.UUID) (*SireStatistics, error)
	NeedsRecomputation(ctx context.Context, id uuid.UUID) (bool, error)
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
}

type sireService struct {
	db       *gorm.DB
	log      *logger.Logger
	sires    livestockrepo.SireRepo
	iatf     livestockrepo.IATFRecordRepo
	activity ActivityLogService
}

func NewSireService(
	db *gorm.DB,
	log *logger.Logger,
	sires livestockrepo.SireRepo,
	iatf livestockrepo.IATFRecordRepo,
	activity ActivityLogService,
) SireService {
	return &sireService{
		db:       db,
		log:      log.With("service", "SireService"),
		sires:    sires,
		iatf:     iatf,
		activity: activity,
	}
}

func (s *sireService) Create(ctx context.Context, in SireInput) (*types.Sire, error) {
	if err := validateSireInput(in, true); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)

	existing, err := s.sires.GetByName(ctx, nil, name)
	if err != nil {
		return nil, apperr.FromDB(err)
	}
	if existing != nil {
		return nil, apperr.Conflict("ya existe un semental con ese nombre")
	}

	sire := &types.Sire{
		ID:                 uuid.New(),
		Name:               name,
		Breed:              strings.TrimSpace(in.Breed),
		StrawCode:          strings.TrimSpace(in.StrawCode),
		SemenQuality:       in.SemenQuality,
		SpermConcentration: in.SpermConcentration,
		SpermMorphology:    in.SpermMorphology,
		Supplier:           strings.TrimSpace(in.Supplier),
		StrawPrice:         in.StrawPrice,
		Active:             true,
		Notes:              strings.TrimSpace(in.Notes),
	}
	if in.Active != nil {
		sire.Active = *in.Active
	}

	if err := s.sires.Create(ctx, nil, sire); err != nil {
		return nil, apperr.FromDB(err)
	}
	s.activity.Record(ctx, audit.ActionCreate, "Semental", &sire.ID, "Semental creado: "+sire.Name)
	return sire, nil
}

func (s *sireService) List(ctx context.Context, f livestockrepo.SireFilter) ([]*types.Sire, int64, error) {
	rows, total, err := s.sires.List(ctx, nil, f)
	if err != nil {
		return nil, 0, apperr.FromDB(err)
	}
	return rows, total, nil
}

func (s *sireService) Get(ctx context.Context, id uuid.UUID) (*types.Sire, error) {
	sire, err := s.sires.GetByID(ctx, nil, id)
	if err != nil {
		return nil, apperr.FromDB(err)
	}
	if sire == nil {
		return nil, apperr.NotFound("semental no encontrado")
	}
	return sire, nil
}

func (s *sireService) Update(ctx context.Context, id uuid.UUID, in SireInput) (*types.Sire, error) {
	sire, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validateSireInput(in, false); err != nil {
		return nil, err
	}
	before := *sire

	if name := strings.TrimSpace(in.Name); name != "" && name != sire.Name {
		other, err := s.sires.GetByName(ctx, nil, name)
		if err != nil {
			return nil, apperr.FromDB(err)
		}
		if other != nil && other.ID != sire.ID {
			return nil, apperr.Conflict("ya existe un semental con ese nombre")
		}
		sire.Name = name
	}
	if in.Breed != "" {
		sire.Breed = strings.TrimSpace(in.Breed)
	}
	if in.StrawCode != "" {
		sire.StrawCode = strings.TrimSpace(in.StrawCode)
	}
	if in.SemenQuality != nil {
		sire.SemenQuality = in.SemenQuality
	}
	if in.SpermConcentration != nil {
		sire.SpermConcentration = in.SpermConcentration
	}
	if in.SpermMorphology != nil {
		sire.SpermMorphology = in.SpermMorphology
	}
	if in.Supplier != "" {
		sire.Supplier = strings.TrimSpace(in.Supplier)
	}
	if in.StrawPrice != nil {
		sire.StrawPrice = in.StrawPrice
	}
	if in.Active != nil {
		sire.Active = *in.Active
	}
	if in.Notes != "" {
		sire.Notes = strings.TrimSpace(in.Notes)
	}

	if err := s.sires.Update(ctx, nil, sire); err != nil {
		return nil, apperr.FromDB(err)
	}
	s.activity.RecordChange(ctx, audit.ActionUpdate, "Semental", &sire.ID, "Semental actualizado: "+sire.Name, before, sire)
	return sire, nil
}

func (s *sireService) Delete(ctx context.Context, id uuid.UUID) error {
	sire, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.sires.SoftDelete(ctx, nil, id); err != nil {
		return apperr.FromDB(err)
	}
	s.activity.Record(ctx, audit.ActionDelete, "Semental", &sire.ID, "Semental eliminado: "+sire.Name)
	return nil
}

// RecomputeStatistics recounts the sire's recorded services from the
// live event set and persists the derived counters. Events without a
// registered outcome do not count as services; when the sire has no
// recorded services the stored rate is left untouched.
func (s *sireService) RecomputeStatistics(ctx context.Context, id uuid.UUID) (*SireStatistics, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	events, err := s.iatf.ListBySire(ctx, nil, id)
	if err != nil {
		return nil, apperr.FromDB(err)
	}

	stats := ComputeSireStatistics(events)
	if err := s.sires.UpdateStatistics(ctx, nil, id, stats.TotalServices, stats.TotalPregnancies, stats.TotalEmbryonicLosses, stats.Rate); err != nil {
		return nil, apperr.FromDB(err)
	}
	return stats, nil
}

// ComputeSireStatistics derives the counters from an event set without
// touching storage. Exposed for the statistics command and tests.
func ComputeSireStatistics(events []*types.IATFRecord) *SireStatistics {
	stats := &SireStatistics{}
	for _, e := range events {
		if !e.OutcomeRecorded() {
			continue
		}
		stats.TotalServices++
		if e.PregnancyConfirmed != nil && *e.PregnancyConfirmed {
			stats.TotalPregnancies++
		}
		if e.Outcome == livestock.OutcomeEmbryonicLoss {
			stats.TotalEmbryonicLosses++
		}
	}
	if stats.TotalServices > 0 {
		r := rate(stats.TotalPregnancies, stats.TotalServices)
		stats.Rate = &r
	}
	return stats
}

// NeedsRecomputation reports whether the stored service counter has
// drifted from the live event count.
func (s *sireService) NeedsRecomputation(ctx context.Context, id uuid.UUID) (bool, error) {
	sire, err := s.Get(ctx, id)
	if err != nil {
		return false, err
	}
	n, err := s.iatf.CountRecordedBySire(ctx, nil, id)
	if err != nil {
		return false, apperr.FromDB(err)
	}
	return int64(sire.TotalServices) != n, nil
}

func (s *sireService) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	ids, err := s.sires.ListIDs(ctx, nil)
	if err != nil {
		return nil, apperr.FromDB(err)
	}
	return ids, nil
}

func validateSireInput(in SireInput, creating bool) error {
	fields := map[string]string{}
	if creating && strings.TrimSpace(in.Name) == "" {
		fields["nombre"] = "requerido"
	}
	if in.SemenQuality != nil && (*in.SemenQuality < 0 || *in.SemenQuality > 100) {
		fields["calidad_seminal"] = "debe estar entre 0 y 100"
	}
	if in.SpermMorphology != nil && (*in.SpermMorphology < 0 || *in.SpermMorphology > 100) {
		fields["morfologia_espermatica"] = "debe estar entre 0 y 100"
	}
	if in.StrawPrice != nil && *in.StrawPrice < 0 {
		fields["precio_pajilla"] = "no puede ser negativo"
	}
	if len(fields) > 0 {
		return apperr.Validation(fields)
	}
	return nil
}
