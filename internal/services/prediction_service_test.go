package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	auditrepo "github.com/bovipred/bovipred-backend/internal/data/repos/audit"
	livestockrepo "github.com/bovipred/bovipred-backend/internal/data/repos/livestock"
	mlrepo "github.com/bovipred/bovipred-backend/internal/data/repos/ml"
	"github.com/bovipred/bovipred-backend/internal/data/repos/testutil"
	types "github.com/bovipred/bovipred-backend/internal/domain"
	"github.com/bovipred/bovipred-backend/internal/domain/livestock"
	"github.com/bovipred/bovipred-backend/internal/pkg/apperr"
)

type predictionHarness struct {
	svc   PredictionService
	preds mlrepo.PredictionRepo
	iatf  livestockrepo.IATFRecordRepo
	tx    *gorm.DB
}

// newPredictionHarness wires the service without an upstream client so
// every score comes from the local heuristic.
func newPredictionHarness(t *testing.T) *predictionHarness {
	t.Helper()
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)

	preds := mlrepo.NewPredictionRepo(tx, log)
	iatf := livestockrepo.NewIATFRecordRepo(tx, log)
	activity := NewActivityLogService(tx, log, auditrepo.NewActivityLogRepo(tx, log))
	svc := NewPredictionService(tx, log, preds, iatf, nil, false, activity)

	return &predictionHarness{svc: svc, preds: preds, iatf: iatf, tx: tx}
}

func seedPredictableRecord(t *testing.T, ctx context.Context, tx *gorm.DB, earTag string) *types.IATFRecord {
	t.Helper()
	group := testutil.SeedGroup(t, ctx, tx, "Lote "+earTag)
	animal := testutil.SeedAnimal(t, ctx, tx, earTag, testutil.PtrUUID(group.ID))
	sire := testutil.SeedSire(t, ctx, tx, "Semental "+earTag)

	rec := testutil.SeedIATFRecord(t, ctx, tx, animal.ID, testutil.PtrUUID(sire.ID),
		time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), livestock.OutcomePending)
	rec.OvaryRight = testutil.PtrString(livestock.OvaryCorpusHemorrhagicum)
	rec.OvaryLeft = testutil.PtrString(livestock.OvaryCorpusLuteum)
	rec.UterineTone = testutil.PtrFloat(65)
	rec.PriorTreatment = testutil.PtrString(livestock.TreatmentT1)
	if err := tx.WithContext(ctx).Save(rec).Error; err != nil {
		t.Fatalf("complete record: %v", err)
	}
	return rec
}

func TestPredictionServicePredictHeuristic(t *testing.T) {
	h := newPredictionHarness(t)
	ctx := context.Background()

	rec := seedPredictableRecord(t, ctx, h.tx, "AR-7001")

	pred, err := h.svc.Predict(ctx, rec.ID)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if pred.ModelName != HeuristicModelName {
		t.Fatalf("model = %q, want %q without upstream", pred.ModelName, HeuristicModelName)
	}
	if pred.Probability < 0.10 || pred.Probability > 0.95 {
		t.Fatalf("probability %.4f outside clamp", pred.Probability)
	}
	if pred.Confidence == "" {
		t.Fatal("confidence tier missing")
	}
	if len(pred.TopFeatures) == 0 {
		t.Fatal("top_features blob missing")
	}

	stored, err := h.preds.GetByIATFRecordID(ctx, nil, rec.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored == nil || stored.ID != pred.ID {
		t.Fatal("prediction not persisted")
	}
}

func TestPredictionServicePredictConflict(t *testing.T) {
	h := newPredictionHarness(t)
	ctx := context.Background()

	rec := seedPredictableRecord(t, ctx, h.tx, "AR-7002")

	first, err := h.svc.Predict(ctx, rec.ID)
	if err != nil {
		t.Fatalf("first predict: %v", err)
	}

	existing, err := h.svc.Predict(ctx, rec.ID)
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("second predict err = %v, want conflict", err)
	}
	if existing == nil || existing.ID != first.ID {
		t.Fatal("conflict should hand back the existing prediction")
	}
}

func TestPredictionServicePredictMissingData(t *testing.T) {
	h := newPredictionHarness(t)
	ctx := context.Background()

	group := testutil.SeedGroup(t, ctx, h.tx, "Lote incompleto")
	animal := testutil.SeedAnimal(t, ctx, h.tx, "AR-7003", testutil.PtrUUID(group.ID))
	rec := testutil.SeedIATFRecord(t, ctx, h.tx, animal.ID, nil,
		time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC), livestock.OutcomePending)

	_, err := h.svc.Predict(ctx, rec.ID)
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("err = %v, want validation for incomplete record", err)
	}
	var fe *apperr.FieldErrors
	if !errors.As(err, &fe) {
		t.Fatalf("error %T lacks field details", err)
	}
	if _, ok := fe.Fields["tono_uterino"]; !ok {
		t.Fatalf("tono_uterino not listed: %v", fe.Fields)
	}

	stored, err := h.preds.GetByIATFRecordID(ctx, nil, rec.ID)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if stored != nil {
		t.Fatal("failed validation must not persist a prediction")
	}
}

func TestPredictionServicePredictUnknownRecord(t *testing.T) {
	h := newPredictionHarness(t)

	_, err := h.svc.Predict(context.Background(), uuid.New())
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestPredictionServiceValidateOutcome(t *testing.T) {
	h := newPredictionHarness(t)
	ctx := context.Background()

	rec := seedPredictableRecord(t, ctx, h.tx, "AR-7004")
	pred, err := h.svc.Predict(ctx, rec.ID)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}

	observed := !pred.BinaryPrediction
	validated, err := h.svc.ValidateOutcome(ctx, pred.ID, observed)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if validated.Correct == nil || *validated.Correct {
		t.Fatal("opposite observed outcome should mark the prediction incorrect")
	}
	if validated.ValidatedAt == nil {
		t.Fatal("fecha_validacion missing")
	}
}

func TestPredictionServiceStats(t *testing.T) {
	h := newPredictionHarness(t)
	ctx := context.Background()

	for i, earTag := range []string{"AR-7005", "AR-7006", "AR-7007"} {
		rec := seedPredictableRecord(t, ctx, h.tx, earTag)
		pred, err := h.svc.Predict(ctx, rec.ID)
		if err != nil {
			t.Fatalf("predict %s: %v", earTag, err)
		}
		if i < 2 {
			observed := pred.BinaryPrediction
			if i == 1 {
				observed = !observed
			}
			if _, err := h.svc.ValidateOutcome(ctx, pred.ID, observed); err != nil {
				t.Fatalf("validate %s: %v", earTag, err)
			}
		}
	}

	stats, err := h.svc.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 3 || stats.Validated != 2 || stats.Correct != 1 {
		t.Fatalf("stats = %+v, want 3 total / 2 validated / 1 correct", stats)
	}
	if stats.HitRate != 50.0 {
		t.Fatalf("hit rate = %v, want 50.00", stats.HitRate)
	}
	if stats.MeanConfidence <= 0 || stats.MeanConfidence > 100 {
		t.Fatalf("mean confidence %v out of range", stats.MeanConfidence)
	}
}
