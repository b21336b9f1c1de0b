package livestock

import (
	"context"
	"testing"
	"time"

	"github.com/bovipred/bovipred-backend/internal/data/repos/testutil"
	domain "github.com/bovipred/bovipred-backend/internal/domain/livestock"
)

func TestIATFRecordRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewIATFRecordRepo(db, testutil.Logger(t))

	group := testutil.SeedGroup(t, ctx, tx, "Lote Sur")
	animal := testutil.SeedAnimal(t, ctx, tx, "IA-001", &group.ID)
	other := testutil.SeedAnimal(t, ctx, tx, "IA-002", nil)
	sire := testutil.SeedSire(t, ctx, tx, "Cometa")

	now := time.Now().UTC()
	confirmed := testutil.SeedIATFRecord(t, ctx, tx, animal.ID, &sire.ID, now.AddDate(0, -2, 0), domain.OutcomeConfirmed)
	open := testutil.SeedIATFRecord(t, ctx, tx, animal.ID, &sire.ID, now.AddDate(0, 0, -60), domain.OutcomePending)
	testutil.SeedIATFRecord(t, ctx, tx, other.ID, nil, now.AddDate(0, 0, -10), domain.OutcomeNotPregnant)

	got, err := repo.GetByID(ctx, tx, confirmed.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Animal == nil || got.Animal.EarTag != "IA-001" {
		t.Fatalf("GetByID: expected preloaded animal, got %+v", got.Animal)
	}
	if got.Sire == nil || got.Sire.Name != "Cometa" {
		t.Fatalf("GetByID: expected preloaded sire, got %+v", got.Sire)
	}

	rows, total, err := repo.List(ctx, tx, IATFFilter{AnimalID: &animal.ID})
	if err != nil {
		t.Fatalf("List by animal: %v", err)
	}
	if total != 2 || len(rows) != 2 {
		t.Fatalf("List by animal: total=%d len=%d", total, len(rows))
	}

	rows, total, err = repo.List(ctx, tx, IATFFilter{Outcome: domain.OutcomePending})
	if err != nil {
		t.Fatalf("List pending: %v", err)
	}
	if total != 1 || rows[0].ID != open.ID {
		t.Fatalf("List pending: total=%d", total)
	}

	confirmedOnly := true
	rows, total, err = repo.List(ctx, tx, IATFFilter{PregnancyConfirmed: &confirmedOnly})
	if err != nil {
		t.Fatalf("List confirmed: %v", err)
	}
	if total != 1 || rows[0].ID != confirmed.ID {
		t.Fatalf("List confirmed: total=%d", total)
	}

	bySire, err := repo.ListBySire(ctx, tx, sire.ID)
	if err != nil {
		t.Fatalf("ListBySire: %v", err)
	}
	if len(bySire) != 2 {
		t.Fatalf("ListBySire: expected 2, got %d", len(bySire))
	}

	inRange, err := repo.ListInRange(ctx, tx, now.AddDate(0, -3, 0), now, "Lote Sur")
	if err != nil {
		t.Fatalf("ListInRange: %v", err)
	}
	if len(inRange) != 2 {
		t.Fatalf("ListInRange group filter: expected 2, got %d", len(inRange))
	}

	recorded, err := repo.CountRecordedBySire(ctx, tx, sire.ID)
	if err != nil {
		t.Fatalf("CountRecordedBySire: %v", err)
	}
	if recorded != 1 {
		t.Fatalf("CountRecordedBySire: expected 1, got %d", recorded)
	}

	pending, err := repo.CountPendingOlderThan(ctx, tx, now.AddDate(0, 0, -45))
	if err != nil {
		t.Fatalf("CountPendingOlderThan: %v", err)
	}
	if pending != 1 {
		t.Fatalf("CountPendingOlderThan: expected 1, got %d", pending)
	}

	open.Outcome = domain.OutcomeConfirmed
	open.PregnancyConfirmed = testutil.PtrBool(true)
	if err := repo.Update(ctx, tx, open); err != nil {
		t.Fatalf("Update: %v", err)
	}
	recorded, err = repo.CountRecordedBySire(ctx, tx, sire.ID)
	if err != nil || recorded != 2 {
		t.Fatalf("CountRecordedBySire after confirm: err=%v n=%d", err, recorded)
	}

	if err := repo.SoftDelete(ctx, tx, confirmed.ID); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	gone, err := repo.GetByID(ctx, tx, confirmed.ID)
	if err != nil {
		t.Fatalf("GetByID after delete: %v", err)
	}
	if gone != nil {
		t.Fatalf("SoftDelete: expected nil, got %+v", gone)
	}
}
