package services

import (
	"context"
	"testing"
	"time"

	auditrepo "github.com/bovipred/bovipred-backend/internal/data/repos/audit"
	livestockrepo "github.com/bovipred/bovipred-backend/internal/data/repos/livestock"
	"github.com/bovipred/bovipred-backend/internal/data/repos/testutil"
	types "github.com/bovipred/bovipred-backend/internal/domain"
	"github.com/bovipred/bovipred-backend/internal/domain/livestock"
)

func TestComputeSireStatistics(t *testing.T) {
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	var events []*types.IATFRecord
	add := func(n int, outcome string) {
		for i := 0; i < n; i++ {
			rec := &types.IATFRecord{IATFDate: base, Outcome: outcome}
			switch outcome {
			case livestock.OutcomeConfirmed:
				rec.PregnancyConfirmed = testutil.PtrBool(true)
			case livestock.OutcomeNotPregnant, livestock.OutcomeEmbryonicLoss:
				rec.PregnancyConfirmed = testutil.PtrBool(false)
			}
			events = append(events, rec)
		}
	}
	add(6, livestock.OutcomeConfirmed)
	add(1, livestock.OutcomeEmbryonicLoss)
	add(1, livestock.OutcomeNotPregnant)
	add(2, livestock.OutcomePending)

	stats := ComputeSireStatistics(events)
	if stats.TotalServices != 8 {
		t.Fatalf("TotalServices = %d, want 8 (pending events do not count)", stats.TotalServices)
	}
	if stats.TotalPregnancies != 6 {
		t.Fatalf("TotalPregnancies = %d, want 6", stats.TotalPregnancies)
	}
	if stats.TotalEmbryonicLosses != 1 {
		t.Fatalf("TotalEmbryonicLosses = %d, want 1", stats.TotalEmbryonicLosses)
	}
	if stats.Rate == nil || *stats.Rate != 75.0 {
		t.Fatalf("Rate = %v, want 75.00", stats.Rate)
	}
}

func TestComputeSireStatisticsNoRecordedServices(t *testing.T) {
	events := []*types.IATFRecord{
		{Outcome: livestock.OutcomePending},
		{Outcome: livestock.OutcomePending},
	}
	stats := ComputeSireStatistics(events)
	if stats.TotalServices != 0 {
		t.Fatalf("TotalServices = %d, want 0", stats.TotalServices)
	}
	if stats.Rate != nil {
		t.Fatalf("Rate = %v, want nil so the stored rate survives", *stats.Rate)
	}
}

func TestSireServiceRecomputeStatistics(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	log := testutil.Logger(t)

	sires := livestockrepo.NewSireRepo(tx, log)
	iatf := livestockrepo.NewIATFRecordRepo(tx, log)
	activity := NewActivityLogService(tx, log, auditrepo.NewActivityLogRepo(tx, log))
	svc := NewSireService(tx, log, sires, iatf, activity)

	group := testutil.SeedGroup(t, ctx, tx, "Lote recomputo")
	animal := testutil.SeedAnimal(t, ctx, tx, "AR-5001", testutil.PtrUUID(group.ID))
	sire := testutil.SeedSire(t, ctx, tx, "Emperador")

	day := time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		outcome := livestock.OutcomeConfirmed
		if i == 2 {
			outcome = livestock.OutcomeNotPregnant
		}
		testutil.SeedIATFRecord(t, ctx, tx, animal.ID, testutil.PtrUUID(sire.ID), day.AddDate(0, 0, i), outcome)
	}

	stats, err := svc.RecomputeStatistics(ctx, sire.ID)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if stats.TotalServices != 3 || stats.TotalPregnancies != 2 {
		t.Fatalf("stats = %+v, want 3 services / 2 pregnancies", stats)
	}
	if stats.Rate == nil || *stats.Rate != 66.67 {
		t.Fatalf("Rate = %v, want 66.67", stats.Rate)
	}

	fresh, err := sires.GetByID(ctx, nil, sire.ID)
	if err != nil {
		t.Fatalf("reload sire: %v", err)
	}
	if fresh.TotalServices != 3 {
		t.Fatalf("stored TotalServices = %d, want 3", fresh.TotalServices)
	}
	if fresh.HistoricalRate == nil || *fresh.HistoricalRate != 66.67 {
		t.Fatalf("stored rate = %v, want 66.67", fresh.HistoricalRate)
	}

	needs, err := svc.NeedsRecomputation(ctx, sire.ID)
	if err != nil {
		t.Fatalf("needs recomputation: %v", err)
	}
	if needs {
		t.Fatal("counters were just recomputed, no drift expected")
	}

	// A new recorded outcome makes the stored counters stale again.
	testutil.SeedIATFRecord(t, ctx, tx, animal.ID, testutil.PtrUUID(sire.ID), time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC), livestock.OutcomeConfirmed)
	needs, err = svc.NeedsRecomputation(ctx, sire.ID)
	if err != nil {
		t.Fatalf("needs recomputation after new event: %v", err)
	}
	if !needs {
		t.Fatal("new recorded outcome should flag the sire for recompute")
	}
}
