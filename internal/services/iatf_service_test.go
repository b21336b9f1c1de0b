package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	auditrepo "github.com/bovipred/bovipred-backend/internal/data/repos/audit"
	livestockrepo "github.com/bovipred/bovipred-backend/internal/data/repos/livestock"
	mlrepo "github.com/bovipred/bovipred-backend/internal/data/repos/ml"
	"github.com/bovipred/bovipred-backend/internal/data/repos/testutil"
	"github.com/bovipred/bovipred-backend/internal/domain/livestock"
	"github.com/bovipred/bovipred-backend/internal/pkg/apperr"
	"github.com/bovipred/bovipred-backend/internal/platform/logger"
)

type iatfHarness struct {
	svc   IATFService
	sires livestockrepo.SireRepo
	iatf  livestockrepo.IATFRecordRepo
	preds mlrepo.PredictionRepo
	tx    *gorm.DB
	log   *logger.Logger
}

func newIATFHarness(t *testing.T) *iatfHarness {
	t.Helper()
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)

	sires := livestockrepo.NewSireRepo(tx, log)
	animals := livestockrepo.NewAnimalRepo(tx, log)
	iatf := livestockrepo.NewIATFRecordRepo(tx, log)
	preds := mlrepo.NewPredictionRepo(tx, log)
	activity := NewActivityLogService(tx, log, auditrepo.NewActivityLogRepo(tx, log))
	sireSvc := NewSireService(tx, log, sires, iatf, activity)
	svc := NewIATFService(tx, log, iatf, animals, sires, preds, sireSvc, activity)

	return &iatfHarness{svc: svc, sires: sires, iatf: iatf, preds: preds, tx: tx, log: log}
}

func TestIATFServiceCreateValidation(t *testing.T) {
	h := newIATFHarness(t)
	ctx := context.Background()

	group := testutil.SeedGroup(t, ctx, h.tx, "Lote creacion")
	animal := testutil.SeedAnimal(t, ctx, h.tx, "AR-6001", testutil.PtrUUID(group.ID))

	date := time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC)
	_, err := h.svc.Create(ctx, IATFInput{
		AnimalID:    animal.ID,
		IATFDate:    &date,
		OvaryRight:  testutil.PtrString("Z"),
		IATFHour:    testutil.PtrString("25:70"),
		UterineTone: testutil.PtrFloat(150),
	})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
	var fe *apperr.FieldErrors
	if !errors.As(err, &fe) {
		t.Fatalf("error %T lacks field details", err)
	}
	for _, field := range []string{"condicion_ovarica_od", "hora_iatf", "tono_uterino"} {
		if _, ok := fe.Fields[field]; !ok {
			t.Fatalf("field %q not reported: %v", field, fe.Fields)
		}
	}

	rec, err := h.svc.Create(ctx, IATFInput{
		AnimalID:    animal.ID,
		IATFDate:    &date,
		OvaryRight:  testutil.PtrString(livestock.OvaryCorpusLuteum),
		IATFHour:    testutil.PtrString("08:15"),
		UterineTone: testutil.PtrFloat(60),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.Outcome != livestock.OutcomePending {
		t.Fatalf("new record outcome = %q, want pendiente", rec.Outcome)
	}
}

func TestIATFServiceConfirmResult(t *testing.T) {
	h := newIATFHarness(t)
	ctx := context.Background()

	group := testutil.SeedGroup(t, ctx, h.tx, "Lote confirmacion")
	animal := testutil.SeedAnimal(t, ctx, h.tx, "AR-6002", testutil.PtrUUID(group.ID))
	sire := testutil.SeedSire(t, ctx, h.tx, "Relampago")

	date := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)
	rec := testutil.SeedIATFRecord(t, ctx, h.tx, animal.ID, testutil.PtrUUID(sire.ID), date, livestock.OutcomePending)
	pred := testutil.SeedPrediction(t, ctx, h.tx, rec.ID, 0.82)

	_, err := h.svc.ConfirmResult(ctx, rec.ID, ConfirmResultInput{Outcome: livestock.OutcomePending})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("confirming with pendiente should fail validation, got %v", err)
	}

	updated, err := h.svc.ConfirmResult(ctx, rec.ID, ConfirmResultInput{Outcome: livestock.OutcomeConfirmed})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if updated.PregnancyConfirmed == nil || !*updated.PregnancyConfirmed {
		t.Fatal("prenez_confirmada should be true after confirmation")
	}
	if updated.ConfirmationDate == nil {
		t.Fatal("confirmation date should default to now")
	}
	if updated.ConfirmedGestationDays == nil || *updated.ConfirmedGestationDays != livestock.DefaultConfirmedGestationDays {
		t.Fatalf("gestation days = %v, want default %d", updated.ConfirmedGestationDays, livestock.DefaultConfirmedGestationDays)
	}

	// Exactly one recompute: the stored counters reflect this single
	// recorded service.
	freshSire, err := h.sires.GetByID(ctx, nil, sire.ID)
	if err != nil {
		t.Fatalf("reload sire: %v", err)
	}
	if freshSire.TotalServices != 1 || freshSire.TotalPregnancies != 1 {
		t.Fatalf("sire counters = %d/%d, want 1/1", freshSire.TotalServices, freshSire.TotalPregnancies)
	}
	if freshSire.HistoricalRate == nil || *freshSire.HistoricalRate != 100.0 {
		t.Fatalf("sire rate = %v, want 100.00", freshSire.HistoricalRate)
	}

	// Linked prediction is validated in the same confirmation.
	freshPred, err := h.preds.GetByID(ctx, nil, pred.ID)
	if err != nil {
		t.Fatalf("reload prediction: %v", err)
	}
	if freshPred.ObservedOutcome == nil || !*freshPred.ObservedOutcome {
		t.Fatal("prediction resultado_real should be true")
	}
	if freshPred.Correct == nil || !*freshPred.Correct {
		t.Fatal("binary verdict true + confirmed pregnancy should mark the prediction correct")
	}
	if freshPred.ValidatedAt == nil {
		t.Fatal("fecha_validacion should be stamped")
	}
}

func TestIATFServiceUpdateOutcomeSync(t *testing.T) {
	h := newIATFHarness(t)
	ctx := context.Background()

	group := testutil.SeedGroup(t, ctx, h.tx, "Lote sync")
	animal := testutil.SeedAnimal(t, ctx, h.tx, "AR-6003", testutil.PtrUUID(group.ID))
	sire := testutil.SeedSire(t, ctx, h.tx, "Tornado")

	date := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	rec := testutil.SeedIATFRecord(t, ctx, h.tx, animal.ID, testutil.PtrUUID(sire.ID), date, livestock.OutcomePending)

	updated, err := h.svc.Update(ctx, rec.ID, IATFInput{
		AnimalID: animal.ID,
		SireID:   testutil.PtrUUID(sire.ID),
		IATFDate: &date,
		Outcome:  testutil.PtrString(livestock.OutcomeEmbryonicLoss),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.PregnancyConfirmed == nil || *updated.PregnancyConfirmed {
		t.Fatal("embryonic loss should set prenez_confirmada = false")
	}

	freshSire, err := h.sires.GetByID(ctx, nil, sire.ID)
	if err != nil {
		t.Fatalf("reload sire: %v", err)
	}
	if freshSire.TotalEmbryonicLosses != 1 {
		t.Fatalf("loss counter = %d, want 1", freshSire.TotalEmbryonicLosses)
	}

	// Back to pending clears the derived fields.
	updated, err = h.svc.Update(ctx, rec.ID, IATFInput{
		AnimalID: animal.ID,
		SireID:   testutil.PtrUUID(sire.ID),
		IATFDate: &date,
		Outcome:  testutil.PtrString(livestock.OutcomePending),
	})
	if err != nil {
		t.Fatalf("revert update: %v", err)
	}
	if updated.PregnancyConfirmed != nil {
		t.Fatal("pendiente should clear prenez_confirmada")
	}
}

func TestIATFServiceDeleteRecomputes(t *testing.T) {
	h := newIATFHarness(t)
	ctx := context.Background()

	group := testutil.SeedGroup(t, ctx, h.tx, "Lote borrado")
	animal := testutil.SeedAnimal(t, ctx, h.tx, "AR-6004", testutil.PtrUUID(group.ID))
	sire := testutil.SeedSire(t, ctx, h.tx, "Cometa")

	date := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	rec := testutil.SeedIATFRecord(t, ctx, h.tx, animal.ID, testutil.PtrUUID(sire.ID), date, livestock.OutcomeConfirmed)
	keep := testutil.SeedIATFRecord(t, ctx, h.tx, animal.ID, testutil.PtrUUID(sire.ID), date.AddDate(0, 0, 1), livestock.OutcomeConfirmed)
	testutil.SeedPrediction(t, ctx, h.tx, rec.ID, 0.81)

	if _, err := h.svc.ConfirmResult(ctx, keep.ID, ConfirmResultInput{Outcome: livestock.OutcomeConfirmed}); err != nil {
		t.Fatalf("confirm keeper: %v", err)
	}

	if err := h.svc.Delete(ctx, rec.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	gone, err := h.iatf.GetByID(ctx, nil, rec.ID)
	if err != nil {
		t.Fatalf("lookup deleted: %v", err)
	}
	if gone != nil {
		t.Fatal("soft-deleted record should not be readable")
	}

	orphan, err := h.preds.GetByIATFRecordID(ctx, nil, rec.ID)
	if err != nil {
		t.Fatalf("lookup orphaned prediction: %v", err)
	}
	if orphan != nil {
		t.Fatal("prediction should be removed with its record")
	}

	freshSire, err := h.sires.GetByID(ctx, nil, sire.ID)
	if err != nil {
		t.Fatalf("reload sire: %v", err)
	}
	if freshSire.TotalServices != 1 {
		t.Fatalf("services after delete = %d, want 1", freshSire.TotalServices)
	}
}
