package livestock

import (
	"context"
	"testing"

	"github.com/bovipred/bovipred-backend/internal/data/repos/testutil"
	domain "github.com/bovipred/bovipred-backend/internal/domain/livestock"
)

func TestSireRepoUpdateStatistics(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewSireRepo(db, testutil.Logger(t))

	sire := testutil.SeedSire(t, ctx, tx, "Torino")

	rate := 60.0
	if err := repo.UpdateStatistics(ctx, tx, sire.ID, 10, 6, 1, &rate); err != nil {
		t.Fatalf("UpdateStatistics: %v", err)
	}

	got, err := repo.GetByID(ctx, tx, sire.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.TotalServices != 10 || got.TotalPregnancies != 6 || got.TotalEmbryonicLosses != 1 {
		t.Fatalf("UpdateStatistics counters: got %d/%d/%d", got.TotalServices, got.TotalPregnancies, got.TotalEmbryonicLosses)
	}
	if got.HistoricalRate == nil || *got.HistoricalRate != 60.0 {
		t.Fatalf("UpdateStatistics rate: got %v", got.HistoricalRate)
	}

	// A recompute with zero recorded services resets the counters but
	// must leave the stored rate untouched.
	if err := repo.UpdateStatistics(ctx, tx, sire.ID, 0, 0, 0, nil); err != nil {
		t.Fatalf("UpdateStatistics zero: %v", err)
	}
	got, err = repo.GetByID(ctx, tx, sire.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID after zero: %v", err)
	}
	if got.TotalServices != 0 {
		t.Fatalf("expected counters reset, got %d services", got.TotalServices)
	}
	if got.HistoricalRate == nil || *got.HistoricalRate != 60.0 {
		t.Fatalf("expected rate preserved at 60.0, got %v", got.HistoricalRate)
	}
}

func TestSireRepoListAndTopByRate(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewSireRepo(db, testutil.Logger(t))

	s1 := testutil.SeedSire(t, ctx, tx, "Alfa")
	s2 := testutil.SeedSire(t, ctx, tx, "Beta")
	s3 := testutil.SeedSire(t, ctx, tx, "Gamma")

	r1, r2 := 80.0, 55.0
	if err := repo.UpdateStatistics(ctx, tx, s1.ID, 20, 16, 0, &r1); err != nil {
		t.Fatalf("UpdateStatistics s1: %v", err)
	}
	if err := repo.UpdateStatistics(ctx, tx, s2.ID, 20, 11, 2, &r2); err != nil {
		t.Fatalf("UpdateStatistics s2: %v", err)
	}

	top, err := repo.TopByRate(ctx, tx, 2)
	if err != nil {
		t.Fatalf("TopByRate: %v", err)
	}
	if len(top) != 2 || top[0].ID != s1.ID || top[1].ID != s2.ID {
		t.Fatalf("TopByRate: unexpected order %+v", top)
	}

	byName, err := repo.GetByName(ctx, tx, "Gamma")
	if err != nil || byName == nil || byName.ID != s3.ID {
		t.Fatalf("GetByName: err=%v got=%+v", err, byName)
	}

	ids, err := repo.ListIDs(ctx, tx)
	if err != nil {
		t.Fatalf("ListIDs: %v", err)
	}
	if len(ids) < 3 {
		t.Fatalf("ListIDs: expected >= 3, got %d", len(ids))
	}

	if err := repo.SoftDelete(ctx, tx, s3.ID); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	gone, err := repo.GetByID(ctx, tx, s3.ID)
	if err != nil {
		t.Fatalf("GetByID after delete: %v", err)
	}
	if gone != nil {
		t.Fatalf("SoftDelete: expected nil, got %+v", gone)
	}

	// A sire with no computed rate still appears via List and reports
	// the conservative prior through RateOrDefault.
	s4 := testutil.SeedSire(t, ctx, tx, "Delta")
	rows, total, err := repo.List(ctx, tx, SireFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total < 3 || len(rows) < 3 {
		t.Fatalf("List: total=%d len=%d", total, len(rows))
	}
	fresh, err := repo.GetByID(ctx, tx, s4.ID)
	if err != nil || fresh == nil {
		t.Fatalf("GetByID fresh: %v", err)
	}
	if fresh.RateOrDefault() != domain.DefaultSireRate {
		t.Fatalf("RateOrDefault: expected %v, got %v", domain.DefaultSireRate, fresh.RateOrDefault())
	}
}
