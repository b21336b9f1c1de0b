package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/bovipred/bovipred-backend/internal/clients/redcache"
	livestockrepo "github.com/bovipred/bovipred-backend/internal/data/repos/livestock"
	mlrepo "github.com/bovipred/bovipred-backend/internal/data/repos/ml"
	reportingrepo "github.com/bovipred/bovipred-backend/internal/data/repos/reporting"
	types "github.com/bovipred/bovipred-backend/internal/domain"
	"github.com/bovipred/bovipred-backend/internal/domain/audit"
	"github.com/bovipred/bovipred-backend/internal/domain/livestock"
	"github.com/bovipred/bovipred-backend/internal/domain/reporting"
	"github.com/bovipred/bovipred-backend/internal/pkg/apperr"
	"github.com/bovipred/bovipred-backend/internal/platform/ctxutil"
	"github.com/bovipred/bovipred-backend/internal/platform/logger"
)

const (
	dashboardCacheKey = "bovipred:dashboard"
	dashboardCacheTTL = 5 * time.Minute

	pendingConfirmationDays = 45
	dashboardWindowDays     = 30
	dashboardTopSires       = 5
)

// WindowInput bounds a report to a date range.
type WindowInput struct {
	From time.Time `json:"fecha_inicio"`
	To   time.Time `json:"fecha_fin"`
}

type PregnancyRatesInput struct {
	WindowInput
	GroupName string `json:"grupo_lote"`
}

type ProtocolInput struct {
	WindowInput
	Treatment string `json:"tratamiento"`
}

type SireAnalysisInput struct {
	SireID *uuid.UUID `json:"semental_id"`
	From   *time.Time `json:"fecha_inicio"`
	To     *time.Time `json:"fecha_fin"`
}

// rateBreakdown is the shared confirmed/total cell of every report.
type rateBreakdown struct {
	Total         int     `json:"total"`
	Confirmed     int     `json:"confirmadas"`
	PregnancyRate float64 `json:"tasa_prenez"`
}

type pregnancySummary struct {
	TotalIATF          int     `json:"total_iatf"`
	ConfirmedPregnant  int     `json:"preneces_confirmadas"`
	EmbryonicLosses    int     `json:"muertes_embrionarias"`
	OpenAnimals        int     `json:"no_gestantes"`
	Pending            int     `json:"pendientes"`
	PregnancyRate      float64 `json:"tasa_prenez"`
	EmbryonicLossRate  float64 `json:"tasa_muerte_embrionaria"`
}

type pregnancyRecordRow struct {
	EarTag  string    `json:"arete"`
	Group   string    `json:"grupo"`
	Date    time.Time `json:"fecha_iatf"`
	Outcome string    `json:"resultado"`
	Sire    string    `json:"semental"`
}

type pregnancyRatesResults struct {
	Summary pregnancySummary         `json:"resumen"`
	ByGroup map[string]rateBreakdown `json:"por_grupo"`
	Records []pregnancyRecordRow     `json:"registros"`
}

type treatmentBreakdown struct {
	Treatment string `json:"tratamiento"`
	rateBreakdown
}

type protocolResults struct {
	ByTreatment map[string]treatmentBreakdown `json:"por_tratamiento"`
	DIBUsage    struct {
		WithDIB    rateBreakdown `json:"con_dib"`
		WithoutDIB rateBreakdown `json:"sin_dib"`
	} `json:"uso_dib"`
}

type sireAnalysisRow struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"nombre"`
	Breed             string    `json:"raza"`
	TotalServices     int       `json:"total_servicios"`
	ConfirmedPregnant int       `json:"preneces_confirmadas"`
	EmbryonicLosses   int       `json:"muertes_embrionarias"`
	PregnancyRate     float64   `json:"tasa_prenez"`
	EmbryonicLossRate float64   `json:"tasa_muerte_embrionaria"`
	SemenQuality      *float64  `json:"calidad_seminal"`
}

type sireAnalysisResults struct {
	Sires []sireAnalysisRow `json:"sementales"`
}

type tierBreakdown struct {
	Tier      string  `json:"nivel"`
	Total     int     `json:"total"`
	Validated int     `json:"validadas"`
	Correct   int     `json:"correctas"`
	HitRate   float64 `json:"tasa_acierto"`
}

type modelPerformanceResults struct {
	Summary struct {
		Total           int64   `json:"total_predicciones"`
		Validated       int64   `json:"predicciones_validadas"`
		Correct         int64   `json:"predicciones_correctas"`
		GlobalHitRate   float64 `json:"tasa_acierto_global"`
		MeanProbability float64 `json:"promedio_probabilidad"`
	} `json:"resumen"`
	ByTier      map[string]tierBreakdown `json:"por_nivel_confianza"`
	MeanMetrics struct {
		Accuracy  *float64 `json:"accuracy"`
		Precision *float64 `json:"precision"`
		Recall    *float64 `json:"recall"`
		F1Score   *float64 `json:"f1_score"`
		ROCAUC    *float64 `json:"roc_auc"`
	} `json:"metricas_promedio"`
}

type DashboardSummary struct {
	TotalAnimals        int64   `json:"total_animales"`
	TotalIATF           int64   `json:"total_iatf"`
	TotalPredictions    int64   `json:"total_predicciones"`
	Rate30Days          float64 `json:"tasa_prenez_30_dias"`
	HitRate30Days       float64 `json:"tasa_acierto_30_dias"`
	PendingConfirmation int64   `json:"pendientes_confirmacion"`
}

type DashboardSire struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"nombre"`
	HistoricalRate *float64  `json:"tasa_historica_prenez"`
	TotalServices  int       `json:"total_servicios"`
}

type Dashboard struct {
	Summary           DashboardSummary `json:"resumen"`
	TopSires          []DashboardSire  `json:"top_sementales"`
	GroupDistribution map[string]int64 `json:"distribucion_grupos"`
}

type ReportService interface {
	GeneratePregnancyRates(ctx context.Context, in PregnancyRatesInput) (*types.Report, error)
	GenerateProtocolEffectiveness(ctx context.Context, in ProtocolInput) (*types.Report, error)
	GenerateSireAnalysis(ctx context.Context, in SireAnalysisInput) (*types.Report, error)
	GenerateModelPerformance(ctx context.Context) (*types.Report, error)
	List(ctx context.Context, f reportingrepo.ReportFilter) ([]*types.Report, int64, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Report, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Dashboard(ctx context.Context) (*Dashboard, error)
}

type reportService struct {
	db          *gorm.DB
	log         *logger.Logger
	reports     reportingrepo.ReportRepo
	iatf        livestockrepo.IATFRecordRepo
	animals     livestockrepo.AnimalRepo
	sires       livestockrepo.SireRepo
	predictions mlrepo.PredictionRepo
	cache       *redcache.Cache
	activity    ActivityLogService
}

func NewReportService(
	db *gorm.DB,
	log *logger.Logger,
	reports reportingrepo.ReportRepo,
	iatf livestockrepo.IATFRecordRepo,
	animals livestockrepo.AnimalRepo,
	sires livestockrepo.SireRepo,
	predictions mlrepo.PredictionRepo,
	cache *redcache.Cache,
	activity ActivityLogService,
) ReportService {
	return &reportService{
		db:          db,
		log:         log.With("service", "ReportService"),
		reports:     reports,
		iatf:        iatf,
		animals:     animals,
		sires:       sires,
		predictions: predictions,
		cache:       cache,
		activity:    activity,
	}
}

func (in WindowInput) validate() error {
	fields := map[string]string{}
	if in.From.IsZero() {
		fields["fecha_inicio"] = "requerido"
	}
	if in.To.IsZero() {
		fields["fecha_fin"] = "requerido"
	} else if !in.From.IsZero() && in.To.Before(in.From) {
		fields["fecha_fin"] = "debe ser posterior o igual a fecha_inicio"
	}
	if len(fields) > 0 {
		return apperr.Validation(fields)
	}
	return nil
}

func (s *reportService) GeneratePregnancyRates(ctx context.Context, in PregnancyRatesInput) (*types.Report, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	records, err := s.iatf.ListInRange(ctx, nil, in.From, in.To, in.GroupName)
	if err != nil {
		return nil, apperr.FromDB(err)
	}

	var results pregnancyRatesResults
	results.ByGroup = map[string]rateBreakdown{}
	results.Records = make([]pregnancyRecordRow, 0, len(records))

	byGroup := map[string][]*types.IATFRecord{}
	animalSet := map[uuid.UUID]struct{}{}
	for _, rec := range records {
		switch {
		case rec.PregnancyConfirmed != nil && *rec.PregnancyConfirmed:
			results.Summary.ConfirmedPregnant++
		case rec.Outcome == livestock.OutcomeEmbryonicLoss:
			results.Summary.EmbryonicLosses++
		case rec.Outcome == livestock.OutcomeNotPregnant:
			results.Summary.OpenAnimals++
		case rec.Outcome == livestock.OutcomePending:
			results.Summary.Pending++
		}
		animalSet[rec.AnimalID] = struct{}{}

		group := groupNameOf(rec)
		byGroup[group] = append(byGroup[group], rec)
		results.Records = append(results.Records, pregnancyRecordRow{
			EarTag:  earTagOf(rec),
			Group:   group,
			Date:    rec.IATFDate,
			Outcome: rec.Outcome,
			Sire:    sireNameOf(rec),
		})
	}

	results.Summary.TotalIATF = len(records)
	results.Summary.PregnancyRate = rate(results.Summary.ConfirmedPregnant, len(records))
	results.Summary.EmbryonicLossRate = rate(results.Summary.EmbryonicLosses, len(records))

	for name, recs := range byGroup {
		results.ByGroup[name] = breakdownOf(recs)
	}

	filters := map[string]any{"fecha_inicio": in.From, "fecha_fin": in.To}
	if in.GroupName != "" {
		filters["grupo_lote"] = in.GroupName
	}
	report := &types.Report{
		Type:              reporting.TypePregnancyRates,
		DateFrom:          &in.From,
		DateTo:            &in.To,
		GroupName:         in.GroupName,
		Filters:           appliedFilters(filters),
		TotalAnimals:      len(animalSet),
		TotalIATF:         len(records),
		PregnancyRate:     &results.Summary.PregnancyRate,
		EmbryonicLossRate: &results.Summary.EmbryonicLossRate,
	}
	if err := s.persist(ctx, report, results, "Reporte de tasas de prenez generado"); err != nil {
		return nil, err
	}
	return report, nil
}

func (s *reportService) GenerateProtocolEffectiveness(ctx context.Context, in ProtocolInput) (*types.Report, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if in.Treatment != "" && in.Treatment != livestock.TreatmentT1 && in.Treatment != livestock.TreatmentT2 {
		return nil, apperr.ValidationField("tratamiento", "debe ser T1 o T2")
	}

	records, err := s.iatf.ListInRange(ctx, nil, in.From, in.To, "")
	if err != nil {
		return nil, apperr.FromDB(err)
	}
	if in.Treatment != "" {
		filtered := records[:0]
		for _, rec := range records {
			if rec.PriorTreatment != nil && *rec.PriorTreatment == in.Treatment {
				filtered = append(filtered, rec)
			}
		}
		records = filtered
	}

	var results protocolResults
	results.ByTreatment = map[string]treatmentBreakdown{}

	byTreatment := map[string][]*types.IATFRecord{}
	var withDIB, withoutDIB []*types.IATFRecord
	for _, rec := range records {
		treatment := "Sin tratamiento"
		if rec.PriorTreatment != nil && *rec.PriorTreatment != "" {
			treatment = *rec.PriorTreatment
		}
		byTreatment[treatment] = append(byTreatment[treatment], rec)
		if rec.DIBDevice {
			withDIB = append(withDIB, rec)
		} else {
			withoutDIB = append(withoutDIB, rec)
		}
	}
	for treatment, recs := range byTreatment {
		results.ByTreatment[treatment] = treatmentBreakdown{
			Treatment:     treatment,
			rateBreakdown: breakdownOf(recs),
		}
	}
	results.DIBUsage.WithDIB = breakdownOf(withDIB)
	results.DIBUsage.WithoutDIB = breakdownOf(withoutDIB)

	filters := map[string]any{"fecha_inicio": in.From, "fecha_fin": in.To}
	if in.Treatment != "" {
		filters["tratamiento"] = in.Treatment
	}
	report := &types.Report{
		Type:      reporting.TypeProtocolEffectiveness,
		DateFrom:  &in.From,
		DateTo:    &in.To,
		Filters:   appliedFilters(filters),
		TotalIATF: len(records),
	}
	if err := s.persist(ctx, report, results, "Reporte de efectividad de protocolo generado"); err != nil {
		return nil, err
	}
	return report, nil
}

func (s *reportService) GenerateSireAnalysis(ctx context.Context, in SireAnalysisInput) (*types.Report, error) {
	if in.From != nil && in.To != nil && in.To.Before(*in.From) {
		return nil, apperr.ValidationField("fecha_fin", "debe ser posterior o igual a fecha_inicio")
	}

	var sires []*types.Sire
	if in.SireID != nil {
		sire, err := s.sires.GetByID(ctx, nil, *in.SireID)
		if err != nil {
			return nil, apperr.FromDB(err)
		}
		if sire == nil {
			return nil, apperr.NotFound("semental no encontrado")
		}
		sires = []*types.Sire{sire}
	} else {
		var err error
		sires, _, err = s.sires.List(ctx, nil, livestockrepo.SireFilter{})
		if err != nil {
			return nil, apperr.FromDB(err)
		}
	}

	results := sireAnalysisResults{Sires: make([]sireAnalysisRow, 0, len(sires))}
	var totalIATF int
	for _, sire := range sires {
		records, err := s.iatf.ListBySire(ctx, nil, sire.ID)
		if err != nil {
			return nil, apperr.FromDB(err)
		}
		if in.From != nil && in.To != nil {
			filtered := records[:0]
			for _, rec := range records {
				if !rec.IATFDate.Before(*in.From) && !rec.IATFDate.After(*in.To) {
					filtered = append(filtered, rec)
				}
			}
			records = filtered
		}

		var confirmed, losses int
		for _, rec := range records {
			if rec.PregnancyConfirmed != nil && *rec.PregnancyConfirmed {
				confirmed++
			}
			if rec.Outcome == livestock.OutcomeEmbryonicLoss {
				losses++
			}
		}
		totalIATF += len(records)
		results.Sires = append(results.Sires, sireAnalysisRow{
			ID:                sire.ID,
			Name:              sire.Name,
			Breed:             sire.Breed,
			TotalServices:     len(records),
			ConfirmedPregnant: confirmed,
			EmbryonicLosses:   losses,
			PregnancyRate:     rate(confirmed, len(records)),
			EmbryonicLossRate: rate(losses, len(records)),
			SemenQuality:      sire.SemenQuality,
		})
	}

	filters := map[string]any{}
	if in.SireID != nil {
		filters["semental_id"] = *in.SireID
	}
	if in.From != nil {
		filters["fecha_inicio"] = *in.From
	}
	if in.To != nil {
		filters["fecha_fin"] = *in.To
	}
	report := &types.Report{
		Type:      reporting.TypeSireAnalysis,
		DateFrom:  in.From,
		DateTo:    in.To,
		Filters:   appliedFilters(filters),
		TotalIATF: totalIATF,
	}
	if err := s.persist(ctx, report, results, "Reporte de analisis de semental generado"); err != nil {
		return nil, err
	}
	return report, nil
}

func (s *reportService) GenerateModelPerformance(ctx context.Context) (*types.Report, error) {
	predictions, total, err := s.predictions.List(ctx, nil, 0, 0)
	if err != nil {
		return nil, apperr.FromDB(err)
	}

	var results modelPerformanceResults
	results.ByTier = map[string]tierBreakdown{}
	results.Summary.Total = total

	byTier := map[string][]*types.Prediction{}
	var probSum float64
	var accuracy, precision, recall, f1, rocauc []*float64
	for _, p := range predictions {
		if p.Validated() {
			results.Summary.Validated++
			if p.Correct != nil && *p.Correct {
				results.Summary.Correct++
			}
		}
		probSum += p.Probability
		byTier[p.Confidence] = append(byTier[p.Confidence], p)
		accuracy = append(accuracy, p.Accuracy)
		precision = append(precision, p.Precision)
		recall = append(recall, p.Recall)
		f1 = append(f1, p.F1Score)
		rocauc = append(rocauc, p.ROCAUC)
	}
	results.Summary.GlobalHitRate = rate(int(results.Summary.Correct), int(results.Summary.Validated))
	if len(predictions) > 0 {
		results.Summary.MeanProbability = round2(probSum / float64(len(predictions)) * 100)
	}

	for tier, preds := range byTier {
		cell := tierBreakdown{Tier: tier, Total: len(preds)}
		for _, p := range preds {
			if p.Validated() {
				cell.Validated++
				if p.Correct != nil && *p.Correct {
					cell.Correct++
				}
			}
		}
		cell.HitRate = rate(cell.Correct, cell.Validated)
		results.ByTier[tier] = cell
	}

	results.MeanMetrics.Accuracy = meanOf(accuracy)
	results.MeanMetrics.Precision = meanOf(precision)
	results.MeanMetrics.Recall = meanOf(recall)
	results.MeanMetrics.F1Score = meanOf(f1)
	results.MeanMetrics.ROCAUC = meanOf(rocauc)

	report := &types.Report{Type: reporting.TypeModelPerformance}
	if err := s.persist(ctx, report, results, "Reporte de rendimiento del modelo generado"); err != nil {
		return nil, err
	}
	return report, nil
}

// appliedFilters snapshots the generator's inputs so a stored report
// can always say what produced it. Empty maps persist as null.
func appliedFilters(m map[string]any) datatypes.JSON {
	if len(m) == 0 {
		return nil
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}

// persist serializes the results blob, stamps the requesting user and
// writes the report row plus its audit entry.
func (s *reportService) persist(ctx context.Context, report *types.Report, results any, auditMsg string) error {
	raw, err := json.Marshal(results)
	if err != nil {
		return err
	}
	report.ID = uuid.New()
	report.Results = datatypes.JSON(raw)
	if actor := ctxutil.UserID(ctx); actor != uuid.Nil {
		id := actor
		report.UserID = &id
	}
	if err := s.reports.Create(ctx, nil, report); err != nil {
		return apperr.FromDB(err)
	}
	s.activity.Record(ctx, audit.ActionGenerateReport, "Report", &report.ID, auditMsg)
	return nil
}

func (s *reportService) List(ctx context.Context, f reportingrepo.ReportFilter) ([]*types.Report, int64, error) {
	rows, total, err := s.reports.List(ctx, nil, f)
	if err != nil {
		return nil, 0, apperr.FromDB(err)
	}
	return rows, total, nil
}

func (s *reportService) Get(ctx context.Context, id uuid.UUID) (*types.Report, error) {
	report, err := s.reports.GetByID(ctx, nil, id)
	if err != nil {
		return nil, apperr.FromDB(err)
	}
	if report == nil {
		return nil, apperr.NotFound("reporte no encontrado")
	}
	return report, nil
}

func (s *reportService) Delete(ctx context.Context, id uuid.UUID) error {
	report, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.reports.Delete(ctx, nil, report.ID); err != nil {
		return apperr.FromDB(err)
	}
	s.activity.Record(ctx, audit.ActionDelete, "Report", &report.ID, "Reporte eliminado")
	return nil
}

func (s *reportService) Dashboard(ctx context.Context) (*Dashboard, error) {
	var cached Dashboard
	if hit, err := s.cache.Get(ctx, dashboardCacheKey, &cached); err != nil {
		s.log.Warn("dashboard cache read failed", "error", err)
	} else if hit {
		return &cached, nil
	}

	out := &Dashboard{}

	var err error
	if out.Summary.TotalAnimals, err = s.animals.CountActive(ctx, nil); err != nil {
		return nil, apperr.FromDB(err)
	}
	if out.Summary.TotalIATF, err = s.iatf.CountAll(ctx, nil); err != nil {
		return nil, apperr.FromDB(err)
	}
	predStats, err := s.predictions.Stats(ctx, nil)
	if err != nil {
		return nil, apperr.FromDB(err)
	}
	out.Summary.TotalPredictions = predStats.Total

	now := time.Now().UTC()
	recent, err := s.iatf.ListSince(ctx, nil, now.AddDate(0, 0, -dashboardWindowDays))
	if err != nil {
		return nil, apperr.FromDB(err)
	}
	var recentConfirmed int
	for _, rec := range recent {
		if rec.PregnancyConfirmed != nil && *rec.PregnancyConfirmed {
			recentConfirmed++
		}
	}
	out.Summary.Rate30Days = rate(recentConfirmed, len(recent))

	validated, err := s.predictions.ListValidatedSince(ctx, nil, now.AddDate(0, 0, -dashboardWindowDays))
	if err != nil {
		return nil, apperr.FromDB(err)
	}
	var recentCorrect int
	for _, p := range validated {
		if p.Correct != nil && *p.Correct {
			recentCorrect++
		}
	}
	out.Summary.HitRate30Days = rate(recentCorrect, len(validated))

	if out.Summary.PendingConfirmation, err = s.iatf.CountPendingOlderThan(ctx, nil, now.AddDate(0, 0, -pendingConfirmationDays)); err != nil {
		return nil, apperr.FromDB(err)
	}

	top, err := s.sires.TopByRate(ctx, nil, dashboardTopSires)
	if err != nil {
		return nil, apperr.FromDB(err)
	}
	out.TopSires = make([]DashboardSire, 0, len(top))
	for _, sire := range top {
		out.TopSires = append(out.TopSires, DashboardSire{
			ID:             sire.ID,
			Name:           sire.Name,
			HistoricalRate: sire.HistoricalRate,
			TotalServices:  sire.TotalServices,
		})
	}

	if out.GroupDistribution, err = s.animals.GroupDistribution(ctx, nil); err != nil {
		return nil, apperr.FromDB(err)
	}

	if err := s.cache.Set(ctx, dashboardCacheKey, out, dashboardCacheTTL); err != nil {
		s.log.Warn("dashboard cache write failed", "error", err)
	}
	return out, nil
}

func breakdownOf(records []*types.IATFRecord) rateBreakdown {
	var confirmed int
	for _, rec := range records {
		if rec.PregnancyConfirmed != nil && *rec.PregnancyConfirmed {
			confirmed++
		}
	}
	return rateBreakdown{
		Total:         len(records),
		Confirmed:     confirmed,
		PregnancyRate: rate(confirmed, len(records)),
	}
}

func groupNameOf(rec *types.IATFRecord) string {
	if rec.Animal != nil && rec.Animal.Group != nil {
		return rec.Animal.Group.Name
	}
	return "Sin grupo"
}

func earTagOf(rec *types.IATFRecord) string {
	if rec.Animal != nil {
		return rec.Animal.EarTag
	}
	return ""
}

func sireNameOf(rec *types.IATFRecord) string {
	if rec.Sire != nil {
		return rec.Sire.Name
	}
	return "N/A"
}
