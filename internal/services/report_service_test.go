package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	auditrepo "github.com/bovipred/bovipred-backend/internal/data/repos/audit"
	livestockrepo "github.com/bovipred/bovipred-backend/internal/data/repos/livestock"
	mlrepo "github.com/bovipred/bovipred-backend/internal/data/repos/ml"
	reportingrepo "github.com/bovipred/bovipred-backend/internal/data/repos/reporting"
	"github.com/bovipred/bovipred-backend/internal/data/repos/testutil"
	types "github.com/bovipred/bovipred-backend/internal/domain"
	"github.com/bovipred/bovipred-backend/internal/domain/livestock"
	"github.com/bovipred/bovipred-backend/internal/domain/reporting"
)

func newReportService(t *testing.T, tx *gorm.DB) ReportService {
	t.Helper()
	log := testutil.Logger(t)
	activity := NewActivityLogService(tx, log, auditrepo.NewActivityLogRepo(tx, log))
	return NewReportService(tx, log,
		reportingrepo.NewReportRepo(tx, log),
		livestockrepo.NewIATFRecordRepo(tx, log),
		livestockrepo.NewAnimalRepo(tx, log),
		livestockrepo.NewSireRepo(tx, log),
		mlrepo.NewPredictionRepo(tx, log),
		nil, // no cache in tests
		activity)
}

func TestReportServicePregnancyRates(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	svc := newReportService(t, tx)

	group := testutil.SeedGroup(t, ctx, tx, "Lote reporte")
	animal := testutil.SeedAnimal(t, ctx, tx, "AR-8001", testutil.PtrUUID(group.ID))
	sire := testutil.SeedSire(t, ctx, tx, "Campeon")

	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	outcomes := []string{
		livestock.OutcomeConfirmed, livestock.OutcomeConfirmed, livestock.OutcomeConfirmed,
		livestock.OutcomeConfirmed, livestock.OutcomeConfirmed, livestock.OutcomeConfirmed,
		livestock.OutcomeEmbryonicLoss,
		livestock.OutcomeNotPregnant,
		livestock.OutcomePending, livestock.OutcomePending,
	}
	for i, outcome := range outcomes {
		testutil.SeedIATFRecord(t, ctx, tx, animal.ID, testutil.PtrUUID(sire.ID), base.AddDate(0, 0, i), outcome)
	}

	report, err := svc.GeneratePregnancyRates(ctx, PregnancyRatesInput{
		WindowInput: WindowInput{From: base, To: base.AddDate(0, 1, 0)},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if report.Type != reporting.TypePregnancyRates {
		t.Fatalf("type = %q", report.Type)
	}
	if report.TotalIATF != 10 {
		t.Fatalf("TotalIATF = %d, want 10", report.TotalIATF)
	}
	if report.PregnancyRate == nil || *report.PregnancyRate != 60.0 {
		t.Fatalf("pregnancy rate = %v, want 60.00", report.PregnancyRate)
	}
	if report.EmbryonicLossRate == nil || *report.EmbryonicLossRate != 10.0 {
		t.Fatalf("embryonic loss rate = %v, want 10.00", report.EmbryonicLossRate)
	}

	var results pregnancyRatesResults
	if err := json.Unmarshal(report.Results, &results); err != nil {
		t.Fatalf("decode results: %v", err)
	}
	if results.Summary.ConfirmedPregnant != 6 || results.Summary.EmbryonicLosses != 1 {
		t.Fatalf("summary = %+v", results.Summary)
	}
	if results.Summary.OpenAnimals != 1 || results.Summary.Pending != 2 {
		t.Fatalf("summary open/pending = %d/%d, want 1/2", results.Summary.OpenAnimals, results.Summary.Pending)
	}
	cell, ok := results.ByGroup["Lote reporte"]
	if !ok {
		t.Fatalf("group breakdown missing: %v", results.ByGroup)
	}
	if cell.Total != 10 || cell.Confirmed != 6 || cell.PregnancyRate != 60.0 {
		t.Fatalf("group cell = %+v", cell)
	}
	if len(results.Records) != 10 {
		t.Fatalf("record listing has %d rows, want 10", len(results.Records))
	}

	// Empty window: defined zero rates, not an error.
	empty, err := svc.GeneratePregnancyRates(ctx, PregnancyRatesInput{
		WindowInput: WindowInput{From: base.AddDate(1, 0, 0), To: base.AddDate(1, 1, 0)},
	})
	if err != nil {
		t.Fatalf("empty window: %v", err)
	}
	if empty.PregnancyRate == nil || *empty.PregnancyRate != 0 {
		t.Fatalf("empty window rate = %v, want 0", empty.PregnancyRate)
	}
}

func TestReportServiceProtocolEffectiveness(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	svc := newReportService(t, tx)

	group := testutil.SeedGroup(t, ctx, tx, "Lote protocolo")
	animal := testutil.SeedAnimal(t, ctx, tx, "AR-8002", testutil.PtrUUID(group.ID))

	base := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	seed := func(day int, treatment string, dib bool, outcome string) {
		rec := testutil.SeedIATFRecord(t, ctx, tx, animal.ID, nil, base.AddDate(0, 0, day), outcome)
		if treatment != "" {
			rec.PriorTreatment = testutil.PtrString(treatment)
		}
		rec.DIBDevice = dib
		if err := tx.WithContext(ctx).Save(rec).Error; err != nil {
			t.Fatalf("update seed: %v", err)
		}
	}
	seed(0, livestock.TreatmentT1, true, livestock.OutcomeConfirmed)
	seed(1, livestock.TreatmentT1, true, livestock.OutcomeNotPregnant)
	seed(2, livestock.TreatmentT2, false, livestock.OutcomeConfirmed)
	seed(3, "", false, livestock.OutcomeNotPregnant)

	report, err := svc.GenerateProtocolEffectiveness(ctx, ProtocolInput{
		WindowInput: WindowInput{From: base, To: base.AddDate(0, 1, 0)},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	var results protocolResults
	if err := json.Unmarshal(report.Results, &results); err != nil {
		t.Fatalf("decode results: %v", err)
	}
	t1 := results.ByTreatment[livestock.TreatmentT1]
	if t1.Total != 2 || t1.Confirmed != 1 || t1.PregnancyRate != 50.0 {
		t.Fatalf("T1 cell = %+v", t1)
	}
	if _, ok := results.ByTreatment["Sin tratamiento"]; !ok {
		t.Fatalf("untreated bucket missing: %v", results.ByTreatment)
	}
	if results.DIBUsage.WithDIB.Total != 2 || results.DIBUsage.WithDIB.PregnancyRate != 50.0 {
		t.Fatalf("con_dib = %+v", results.DIBUsage.WithDIB)
	}
	if results.DIBUsage.WithoutDIB.Total != 2 {
		t.Fatalf("sin_dib = %+v", results.DIBUsage.WithoutDIB)
	}
}

func TestReportServiceSireAnalysis(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	svc := newReportService(t, tx)

	group := testutil.SeedGroup(t, ctx, tx, "Lote sementales")
	animal := testutil.SeedAnimal(t, ctx, tx, "AR-8003", testutil.PtrUUID(group.ID))
	alpha := testutil.SeedSire(t, ctx, tx, "Alfa")
	beta := testutil.SeedSire(t, ctx, tx, "Beta")

	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	testutil.SeedIATFRecord(t, ctx, tx, animal.ID, testutil.PtrUUID(alpha.ID), base, livestock.OutcomeConfirmed)
	testutil.SeedIATFRecord(t, ctx, tx, animal.ID, testutil.PtrUUID(alpha.ID), base.AddDate(0, 0, 1), livestock.OutcomeEmbryonicLoss)
	testutil.SeedIATFRecord(t, ctx, tx, animal.ID, testutil.PtrUUID(beta.ID), base.AddDate(0, 0, 2), livestock.OutcomeConfirmed)

	report, err := svc.GenerateSireAnalysis(ctx, SireAnalysisInput{})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	var results sireAnalysisResults
	if err := json.Unmarshal(report.Results, &results); err != nil {
		t.Fatalf("decode results: %v", err)
	}
	rows := map[string]sireAnalysisRow{}
	for _, row := range results.Sires {
		rows[row.Name] = row
	}
	a, ok := rows["Alfa"]
	if !ok {
		t.Fatalf("Alfa missing: %v", rows)
	}
	if a.TotalServices != 2 || a.ConfirmedPregnant != 1 || a.EmbryonicLosses != 1 {
		t.Fatalf("Alfa row = %+v", a)
	}
	if a.PregnancyRate != 50.0 || a.EmbryonicLossRate != 50.0 {
		t.Fatalf("Alfa rates = %v/%v", a.PregnancyRate, a.EmbryonicLossRate)
	}

	single, err := svc.GenerateSireAnalysis(ctx, SireAnalysisInput{SireID: testutil.PtrUUID(beta.ID)})
	if err != nil {
		t.Fatalf("single sire: %v", err)
	}
	if err := json.Unmarshal(single.Results, &results); err != nil {
		t.Fatalf("decode single: %v", err)
	}
	if len(results.Sires) != 1 || results.Sires[0].Name != "Beta" {
		t.Fatalf("single sire rows = %v", results.Sires)
	}
}

func TestReportServiceModelPerformanceAndLifecycle(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	svc := newReportService(t, tx)

	group := testutil.SeedGroup(t, ctx, tx, "Lote modelo")
	animal := testutil.SeedAnimal(t, ctx, tx, "AR-8004", testutil.PtrUUID(group.ID))
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	for i, prob := range []float64{0.85, 0.75, 0.30} {
		rec := testutil.SeedIATFRecord(t, ctx, tx, animal.ID, nil, base.AddDate(0, 0, i), livestock.OutcomePending)
		pred := testutil.SeedPrediction(t, ctx, tx, rec.ID, prob)
		if i < 2 {
			observed := i == 0 // first correct, second wrong
			now := time.Now().UTC()
			correct := pred.BinaryPrediction == observed
			pred.ObservedOutcome = &observed
			pred.Correct = &correct
			pred.ValidatedAt = &now
			if err := tx.WithContext(ctx).Save(pred).Error; err != nil {
				t.Fatalf("validate seed: %v", err)
			}
		}
	}

	report, err := svc.GenerateModelPerformance(ctx)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	var results modelPerformanceResults
	if err := json.Unmarshal(report.Results, &results); err != nil {
		t.Fatalf("decode results: %v", err)
	}
	if results.Summary.Total != 3 || results.Summary.Validated != 2 || results.Summary.Correct != 1 {
		t.Fatalf("summary = %+v", results.Summary)
	}
	if results.Summary.GlobalHitRate != 50.0 {
		t.Fatalf("global hit rate = %v, want 50.00", results.Summary.GlobalHitRate)
	}
	if _, ok := results.ByTier["alto"]; !ok {
		t.Fatalf("alto tier missing: %v", results.ByTier)
	}

	// Lifecycle: the snapshot is immutable, only listed and deleted.
	rows, total, err := svc.List(ctx, reportingrepo.ReportFilter{Type: reporting.TypeModelPerformance})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("list = %d rows / %d total, want 1/1", len(rows), total)
	}
	got, err := svc.Get(ctx, report.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != report.ID {
		t.Fatal("get returned wrong report")
	}
	if err := svc.Delete(ctx, report.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, report.ID); err == nil {
		t.Fatal("deleted report should not resolve")
	}
}

func TestReportServiceDashboard(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	svc := newReportService(t, tx)

	group := testutil.SeedGroup(t, ctx, tx, "Lote tablero")
	animal := testutil.SeedAnimal(t, ctx, tx, "AR-8005", testutil.PtrUUID(group.ID))
	sire := testutil.SeedSire(t, ctx, tx, "Lider")

	now := time.Now().UTC()
	hit := testutil.SeedIATFRecord(t, ctx, tx, animal.ID, testutil.PtrUUID(sire.ID), now.AddDate(0, 0, -5), livestock.OutcomeConfirmed)
	miss := testutil.SeedIATFRecord(t, ctx, tx, animal.ID, testutil.PtrUUID(sire.ID), now.AddDate(0, 0, -10), livestock.OutcomeNotPregnant)
	testutil.SeedIATFRecord(t, ctx, tx, animal.ID, testutil.PtrUUID(sire.ID), now.AddDate(0, 0, -60), livestock.OutcomePending)

	// One correct and one missed validation inside the window.
	validate := func(recordID uuid.UUID, probability float64, observed bool) {
		p := testutil.SeedPrediction(t, ctx, tx, recordID, probability)
		correct := p.BinaryPrediction == observed
		when := now.AddDate(0, 0, -1)
		p.ObservedOutcome = &observed
		p.Correct = &correct
		p.ValidatedAt = &when
		if err := tx.WithContext(ctx).Save(p).Error; err != nil {
			t.Fatalf("validate seed: %v", err)
		}
	}
	validate(hit.ID, 0.85, true)
	validate(miss.ID, 0.75, false)

	dash, err := svc.Dashboard(ctx)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if dash.Summary.TotalAnimals != 1 {
		t.Fatalf("TotalAnimals = %d, want 1", dash.Summary.TotalAnimals)
	}
	if dash.Summary.TotalIATF != 3 {
		t.Fatalf("TotalIATF = %d, want 3", dash.Summary.TotalIATF)
	}
	if dash.Summary.Rate30Days != 50.0 {
		t.Fatalf("Rate30Days = %v, want 50.00 (1 of 2 recent)", dash.Summary.Rate30Days)
	}
	if dash.Summary.HitRate30Days != 50.0 {
		t.Fatalf("HitRate30Days = %v, want 50.00 (1 of 2 validated)", dash.Summary.HitRate30Days)
	}
	if dash.Summary.PendingConfirmation != 1 {
		t.Fatalf("PendingConfirmation = %d, want 1 (60-day-old pending)", dash.Summary.PendingConfirmation)
	}
	if n := dash.GroupDistribution["Lote tablero"]; n != 1 {
		t.Fatalf("group distribution = %v", dash.GroupDistribution)
	}
}

func TestReportServiceFilterSnapshot(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	svc := newReportService(t, tx)

	group := testutil.SeedGroup(t, ctx, tx, "Lote filtros")
	animal := testutil.SeedAnimal(t, ctx, tx, "AR-8009", testutil.PtrUUID(group.ID))
	sire := testutil.SeedSire(t, ctx, tx, "Filtro")

	base := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	rec := testutil.SeedIATFRecord(t, ctx, tx, animal.ID, testutil.PtrUUID(sire.ID), base, livestock.OutcomeConfirmed)
	rec.PriorTreatment = testutil.PtrString(livestock.TreatmentT1)
	if err := tx.WithContext(ctx).Save(rec).Error; err != nil {
		t.Fatalf("update seed: %v", err)
	}

	decode := func(report *types.Report) map[string]any {
		t.Helper()
		if len(report.Filters) == 0 {
			t.Fatal("stored report carries no filter snapshot")
		}
		var got map[string]any
		if err := json.Unmarshal(report.Filters, &got); err != nil {
			t.Fatalf("decode filters: %v", err)
		}
		return got
	}

	window := WindowInput{From: base, To: base.AddDate(0, 1, 0)}

	report, err := svc.GeneratePregnancyRates(ctx, PregnancyRatesInput{WindowInput: window, GroupName: "Lote filtros"})
	if err != nil {
		t.Fatalf("pregnancy rates: %v", err)
	}
	filters := decode(report)
	if filters["grupo_lote"] != "Lote filtros" {
		t.Fatalf("grupo_lote = %v", filters["grupo_lote"])
	}
	if _, ok := filters["fecha_inicio"]; !ok {
		t.Fatalf("fecha_inicio missing: %v", filters)
	}

	report, err = svc.GenerateProtocolEffectiveness(ctx, ProtocolInput{WindowInput: window, Treatment: livestock.TreatmentT1})
	if err != nil {
		t.Fatalf("protocol: %v", err)
	}
	if filters = decode(report); filters["tratamiento"] != livestock.TreatmentT1 {
		t.Fatalf("tratamiento = %v", filters["tratamiento"])
	}

	report, err = svc.GenerateSireAnalysis(ctx, SireAnalysisInput{SireID: testutil.PtrUUID(sire.ID)})
	if err != nil {
		t.Fatalf("sire analysis: %v", err)
	}
	if filters = decode(report); filters["semental_id"] != sire.ID.String() {
		t.Fatalf("semental_id = %v", filters["semental_id"])
	}
}
