package services

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	livestockrepo "github.com/bovipred/bovipred-backend/internal/data/repos/livestock"
	mlrepo "github.com/bovipred/bovipred-backend/internal/data/repos/ml"
	types "github.com/bovipred/bovipred-backend/internal/domain"
	"github.com/bovipred/bovipred-backend/internal/domain/audit"
	"github.com/bovipred/bovipred-backend/internal/domain/livestock"
	"github.com/bovipred/bovipred-backend/internal/pkg/apperr"
	"github.com/bovipred/bovipred-backend/internal/platform/logger"
)

var hourRe = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

type IATFInput struct {
	AnimalID uuid.UUID  `json:"animal_id"`
	SireID   *uuid.UUID `json:"semental_id"`
	IATFDate *time.Time `json:"fecha_iatf"`

	ProtocolDay0  *time.Time `json:"fecha_protocolo_dia_0"`
	ProtocolDay8  *time.Time `json:"fecha_protocolo_dia_8"`
	ProtocolDay9  *time.Time `json:"fecha_protocolo_dia_9"`
	ProtocolDay10 *time.Time `json:"fecha_protocolo_dia_10"`

	OvaryRight  *string  `json:"condicion_ovarica_od"`
	OvaryLeft   *string  `json:"condicion_ovarica_oi"`
	UterineTone *float64 `json:"tono_uterino"`

	PriorTreatment *string `json:"tratamiento_previo"`
	ToningDays     *int    `json:"dias_tonificacion"`

	MineralSaltG  *float64 `json:"sal_mineral_gr"`
	ModivitasanMl *float64 `json:"modivitasan_ml"`
	FosfotonMl    *float64 `json:"fosfoton_ml"`
	SeleniumMl    *float64 `json:"seve_ml"`
	Dewormed      *bool    `json:"desparasitacion_previa"`
	Vitamins      *bool    `json:"vitaminas_aplicadas"`

	DIBDevice   *bool    `json:"dispositivo_dib"`
	EstradiolMl *float64 `json:"estradiol_ml"`
	DIBRemoved  *bool    `json:"retirada_dib"`
	ECGMl       *float64 `json:"ecg_ml"`
	PGF2AlphaMl *float64 `json:"pf2_alpha_ml"`

	IATFHour *string `json:"hora_iatf"`

	Season            *string  `json:"epoca_anio"`
	Temperature       *float64 `json:"temperatura_ambiente"`
	Humidity          *float64 `json:"humedad_relativa"`
	ManagementStress  *int     `json:"estres_manejo"`
	PastureQuality    *int     `json:"calidad_pasturas"`
	WaterAvailability *string  `json:"disponibilidad_agua"`

	PriorGestation     *bool `json:"gestacion_previa"`
	PriorGestationDays *int  `json:"dias_gestacion_previa"`

	Outcome *string `json:"resultado_iatf"`
	Notes   string  `json:"observaciones"`
}

type ConfirmResultInput struct {
	Outcome                string     `json:"resultado_iatf"`
	ConfirmationDate       *time.Time `json:"fecha_confirmacion"`
	ConfirmedGestationDays *int       `json:"dias_gestacion_confirmada"`
}

type IATFService interface {
	Create(ctx context.Context, in IATFInput) (*types.IATFRecord, error)
	List(ctx context.Context, f livestockrepo.IATFFilter) ([]*types.IATFRecord, int64, error)
	Get(ctx context.Context, id uuid.UUID) (*types.IATFRecord, *types.Prediction, error)
	Update(ctx context.Context, id uuid.UUID, in IATFInput) (*types.IATFRecord, error)
	ConfirmResult(ctx context.Context, id uuid.UUID, in ConfirmResultInput) (*types.IATFRecord, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type iatfService struct {
	db          *gorm.DB
	log         *logger.Logger
	iatf        livestockrepo.IATFRecordRepo
	animals     livestockrepo.AnimalRepo
	sires       livestockrepo.SireRepo
	predictions mlrepo.PredictionRepo
	sireService SireService
	activity    ActivityLogService
}

func NewIATFService(
	db *gorm.DB,
	log *logger.Logger,
	iatf livestockrepo.IATFRecordRepo,
	animals livestockrepo.AnimalRepo,
	sires livestockrepo.SireRepo,
	predictions mlrepo.PredictionRepo,
	sireService SireService,
	activity ActivityLogService,
) IATFService {
	return &iatfService{
		db:          db,
		log:         log.With("service", "IATFService"),
		iatf:        iatf,
		animals:     animals,
		sires:       sires,
		predictions: predictions,
		sireService: sireService,
		activity:    activity,
	}
}

func (s *iatfService) Create(ctx context.Context, in IATFInput) (*types.IATFRecord, error) {
	fields := map[string]string{}
	if in.AnimalID == uuid.Nil {
		fields["animal_id"] = "requerido"
	}
	if in.IATFDate == nil {
		fields["fecha_iatf"] = "requerida"
	}
	s.validateFields(in, fields)

	if in.AnimalID != uuid.Nil {
		animal, err := s.animals.GetByID(ctx, nil, in.AnimalID)
		if err != nil {
			return nil, apperr.FromDB(err)
		}
		if animal == nil {
			fields["animal_id"] = "animal no encontrado"
		}
	}
	if in.SireID != nil {
		sire, err := s.sires.GetByID(ctx, nil, *in.SireID)
		if err != nil {
			return nil, apperr.FromDB(err)
		}
		if sire == nil {
			fields["semental_id"] = "semental no encontrado"
		}
	}
	if len(fields) > 0 {
		return nil, apperr.Validation(fields)
	}

	rec := &types.IATFRecord{
		ID:       uuid.New(),
		AnimalID: in.AnimalID,
		SireID:   in.SireID,
		IATFDate: *in.IATFDate,
		Outcome:  livestock.OutcomePending,
	}
	applyIATFInput(rec, in)
	syncOutcomeFlag(rec)

	if err := s.iatf.Create(ctx, nil, rec); err != nil {
		return nil, apperr.FromDB(err)
	}
	s.activity.Record(ctx, audit.ActionCreate, "IatfRecord", &rec.ID, fmt.Sprintf("Registro IATF creado para animal %s", rec.AnimalID))

	if rec.OutcomeRecorded() {
		s.recomputeSire(ctx, rec.SireID)
	}
	return rec, nil
}

func (s *iatfService) List(ctx context.Context, f livestockrepo.IATFFilter) ([]*types.IATFRecord, int64, error) {
	rows, total, err := s.iatf.List(ctx, nil, f)
	if err != nil {
		return nil, 0, apperr.FromDB(err)
	}
	return rows, total, nil
}

func (s *iatfService) Get(ctx context.Context, id uuid.UUID) (*types.IATFRecord, *types.Prediction, error) {
	rec, err := s.iatf.GetByID(ctx, nil, id)
	if err != nil {
		return nil, nil, apperr.FromDB(err)
	}
	if rec == nil {
		return nil, nil, apperr.NotFound("registro IATF no encontrado")
	}
	pred, err := s.predictions.GetByIATFRecordID(ctx, nil, id)
	if err != nil {
		return nil, nil, apperr.FromDB(err)
	}
	return rec, pred, nil
}

func (s *iatfService) Update(ctx context.Context, id uuid.UUID, in IATFInput) (*types.IATFRecord, error) {
	rec, _, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]string{}
	s.validateFields(in, fields)
	if in.SireID != nil {
		sire, err := s.sires.GetByID(ctx, nil, *in.SireID)
		if err != nil {
			return nil, apperr.FromDB(err)
		}
		if sire == nil {
			fields["semental_id"] = "semental no encontrado"
		}
	}
	if len(fields) > 0 {
		return nil, apperr.Validation(fields)
	}

	before := *rec
	outcomeBefore := rec.Outcome
	flagBefore := rec.PregnancyConfirmed

	if in.SireID != nil {
		rec.SireID = in.SireID
	}
	if in.IATFDate != nil {
		rec.IATFDate = *in.IATFDate
	}
	applyIATFInput(rec, in)
	syncOutcomeFlag(rec)

	if err := s.iatf.Update(ctx, nil, rec); err != nil {
		return nil, apperr.FromDB(err)
	}
	s.activity.RecordChange(ctx, audit.ActionUpdate, "IatfRecord", &rec.ID, "Registro IATF actualizado", before, rec)

	outcomeChanged := rec.Outcome != outcomeBefore || !equalBoolPtr(rec.PregnancyConfirmed, flagBefore)
	if outcomeChanged {
		s.recomputeSire(ctx, rec.SireID)
		if before.SireID != nil && (rec.SireID == nil || *before.SireID != *rec.SireID) {
			s.recomputeSire(ctx, before.SireID)
		}
	}
	return rec, nil
}

// ConfirmResult registers the real insemination outcome: sets the
// confirmation flag and date, defaults the gestation length, validates
// the linked prediction against the observed result, and recomputes the
// sire's statistics exactly once.
func (s *iatfService) ConfirmResult(ctx context.Context, id uuid.UUID, in ConfirmResultInput) (*types.IATFRecord, error) {
	rec, pred, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	switch in.Outcome {
	case livestock.OutcomeConfirmed, livestock.OutcomeNotPregnant, livestock.OutcomeEmbryonicLoss:
	default:
		return nil, apperr.ValidationField("resultado_iatf", "resultado invalido")
	}

	now := time.Now().UTC()
	confirmed := in.Outcome == livestock.OutcomeConfirmed

	rec.Outcome = in.Outcome
	rec.PregnancyConfirmed = &confirmed
	if in.ConfirmationDate != nil {
		rec.ConfirmationDate = in.ConfirmationDate
	} else {
		rec.ConfirmationDate = &now
	}
	if confirmed {
		days := livestock.DefaultConfirmedGestationDays
		if in.ConfirmedGestationDays != nil {
			days = *in.ConfirmedGestationDays
		}
		rec.ConfirmedGestationDays = &days
	}

	if err := s.iatf.Update(ctx, nil, rec); err != nil {
		return nil, apperr.FromDB(err)
	}

	if pred != nil && !pred.Validated() {
		observed := confirmed
		pred.ObservedOutcome = &observed
		correct := pred.BinaryPrediction == observed
		pred.Correct = &correct
		pred.ValidatedAt = &now
		if err := s.predictions.Update(ctx, nil, pred); err != nil {
			s.log.Warn("failed to validate linked prediction", "iatf_record_id", rec.ID, "error", err)
		}
	}

	s.activity.Record(ctx, audit.ActionConfirmResult, "IatfRecord", &rec.ID, "Resultado IATF confirmado: "+rec.Outcome)
	s.recomputeSire(ctx, rec.SireID)
	return rec, nil
}

func (s *iatfService) Delete(ctx context.Context, id uuid.UUID) error {
	rec, _, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.iatf.SoftDelete(ctx, nil, id); err != nil {
		return apperr.FromDB(err)
	}
	// The prediction is meaningless without its event.
	if err := s.predictions.DeleteByIATFRecordID(ctx, nil, id); err != nil {
		return apperr.FromDB(err)
	}
	s.activity.Record(ctx, audit.ActionDelete, "IatfRecord", &rec.ID, "Registro IATF eliminado")
	s.recomputeSire(ctx, rec.SireID)
	return nil
}

// recomputeSire refreshes the sire's derived statistics after an
// outcome change. Failures are logged, never propagated: the primary
// write has already committed.
func (s *iatfService) recomputeSire(ctx context.Context, sireID *uuid.UUID) {
	if sireID == nil || *sireID == uuid.Nil {
		return
	}
	if _, err := s.sireService.RecomputeStatistics(ctx, *sireID); err != nil {
		s.log.Warn("failed to recompute sire statistics", "semental_id", *sireID, "error", err)
	}
}

func (s *iatfService) validateFields(in IATFInput, fields map[string]string) {
	if in.OvaryRight != nil && !livestock.ValidOvaryCondition(*in.OvaryRight) {
		fields["condicion_ovarica_od"] = "condicion invalida"
	}
	if in.OvaryLeft != nil && !livestock.ValidOvaryCondition(*in.OvaryLeft) {
		fields["condicion_ovarica_oi"] = "condicion invalida"
	}
	if in.UterineTone != nil && (*in.UterineTone < 0 || *in.UterineTone > 100) {
		fields["tono_uterino"] = "debe estar entre 0 y 100"
	}
	if in.PriorTreatment != nil && !livestock.ValidTreatment(*in.PriorTreatment) {
		fields["tratamiento_previo"] = "tratamiento invalido"
	}
	if in.Season != nil && !livestock.ValidSeason(*in.Season) {
		fields["epoca_anio"] = "epoca invalida"
	}
	if in.WaterAvailability != nil && !livestock.ValidWaterAvailability(*in.WaterAvailability) {
		fields["disponibilidad_agua"] = "valor invalido"
	}
	if in.IATFHour != nil && !hourRe.MatchString(*in.IATFHour) {
		fields["hora_iatf"] = "formato HH:MM"
	}
	if in.Outcome != nil && !livestock.ValidOutcome(*in.Outcome) {
		fields["resultado_iatf"] = "resultado invalido"
	}
}

func applyIATFInput(rec *types.IATFRecord, in IATFInput) {
	if in.ProtocolDay0 != nil {
		rec.ProtocolDay0 = in.ProtocolDay0
	}
	if in.ProtocolDay8 != nil {
		rec.ProtocolDay8 = in.ProtocolDay8
	}
	if in.ProtocolDay9 != nil {
		rec.ProtocolDay9 = in.ProtocolDay9
	}
	if in.ProtocolDay10 != nil {
		rec.ProtocolDay10 = in.ProtocolDay10
	}
	if in.OvaryRight != nil {
		rec.OvaryRight = in.OvaryRight
	}
	if in.OvaryLeft != nil {
		rec.OvaryLeft = in.OvaryLeft
	}
	if in.UterineTone != nil {
		rec.UterineTone = in.UterineTone
	}
	if in.PriorTreatment != nil {
		rec.PriorTreatment = in.PriorTreatment
	}
	if in.ToningDays != nil {
		rec.ToningDays = in.ToningDays
	}
	if in.MineralSaltG != nil {
		rec.MineralSaltG = in.MineralSaltG
	}
	if in.ModivitasanMl != nil {
		rec.ModivitasanMl = in.ModivitasanMl
	}
	if in.FosfotonMl != nil {
		rec.FosfotonMl = in.FosfotonMl
	}
	if in.SeleniumMl != nil {
		rec.SeleniumMl = in.SeleniumMl
	}
	if in.Dewormed != nil {
		rec.Dewormed = *in.Dewormed
	}
	if in.Vitamins != nil {
		rec.Vitamins = *in.Vitamins
	}
	if in.DIBDevice != nil {
		rec.DIBDevice = *in.DIBDevice
	}
	if in.EstradiolMl != nil {
		rec.EstradiolMl = in.EstradiolMl
	}
	if in.DIBRemoved != nil {
		rec.DIBRemoved = *in.DIBRemoved
	}
	if in.ECGMl != nil {
		rec.ECGMl = in.ECGMl
	}
	if in.PGF2AlphaMl != nil {
		rec.PGF2AlphaMl = in.PGF2AlphaMl
	}
	if in.IATFHour != nil {
		rec.IATFHour = in.IATFHour
	}
	if in.Season != nil {
		rec.Season = in.Season
	}
	if in.Temperature != nil {
		rec.Temperature = in.Temperature
	}
	if in.Humidity != nil {
		rec.Humidity = in.Humidity
	}
	if in.ManagementStress != nil {
		rec.ManagementStress = in.ManagementStress
	}
	if in.PastureQuality != nil {
		rec.PastureQuality = in.PastureQuality
	}
	if in.WaterAvailability != nil {
		rec.WaterAvailability = in.WaterAvailability
	}
	if in.PriorGestation != nil {
		rec.PriorGestation = *in.PriorGestation
	}
	if in.PriorGestationDays != nil {
		rec.PriorGestationDays = in.PriorGestationDays
	}
	if in.Outcome != nil {
		rec.Outcome = *in.Outcome
	}
	if in.Notes != "" {
		rec.Notes = in.Notes
	}
}

// syncOutcomeFlag keeps resultado_iatf and prenez_confirmada coherent:
// a recorded outcome implies the flag, pending clears it.
func syncOutcomeFlag(rec *types.IATFRecord) {
	switch rec.Outcome {
	case livestock.OutcomeConfirmed:
		v := true
		rec.PregnancyConfirmed = &v
	case livestock.OutcomeNotPregnant, livestock.OutcomeEmbryonicLoss:
		v := false
		rec.PregnancyConfirmed = &v
	case livestock.OutcomePending:
		rec.PregnancyConfirmed = nil
		rec.ConfirmationDate = nil
		rec.ConfirmedGestationDays = nil
	}
}

func equalBoolPtr(a, b *bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
