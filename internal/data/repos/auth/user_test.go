package auth

import (
	"context"
	"testing"
	"time"

	"github.com/bovipred/bovipred-backend/internal/data/repos/testutil"
	types "github.com/bovipred/bovipred-backend/internal/domain"
	"github.com/google/uuid"
)

func TestUserRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewUserRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "vet@rancho.test")

	byEmail, err := repo.GetByEmail(ctx, tx, "vet@rancho.test")
	if err != nil || byEmail == nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if byEmail.ID != u.ID {
		t.Fatalf("GetByEmail: expected %v, got %v", u.ID, byEmail.ID)
	}

	missing, err := repo.GetByEmail(ctx, tx, "nobody@rancho.test")
	if err != nil {
		t.Fatalf("GetByEmail missing: %v", err)
	}
	if missing != nil {
		t.Fatalf("GetByEmail missing: expected nil, got %+v", missing)
	}

	at := time.Now().UTC().Truncate(time.Second)
	if err := repo.TouchLastAccess(ctx, tx, u.ID, at); err != nil {
		t.Fatalf("TouchLastAccess: %v", err)
	}
	got, err := repo.GetByID(ctx, tx, u.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.LastAccessAt == nil {
		t.Fatalf("TouchLastAccess: expected timestamp set")
	}

	if err := repo.SetActive(ctx, tx, u.ID, false); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	got, err = repo.GetByID(ctx, tx, u.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID after toggle: %v", err)
	}
	if got.Active {
		t.Fatalf("SetActive: expected inactive")
	}
}

func TestUserTokenRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewUserTokenRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "tokens@rancho.test")
	now := time.Now().UTC()

	live := &types.UserToken{
		ID:        uuid.New(),
		UserID:    u.ID,
		TokenHash: "hash-live",
		ExpiresAt: now.Add(time.Hour),
	}
	expired := &types.UserToken{
		ID:        uuid.New(),
		UserID:    u.ID,
		TokenHash: "hash-expired",
		ExpiresAt: now.Add(-time.Hour),
	}
	if err := repo.Create(ctx, tx, live); err != nil {
		t.Fatalf("Create live: %v", err)
	}
	if err := repo.Create(ctx, tx, expired); err != nil {
		t.Fatalf("Create expired: %v", err)
	}

	got, err := repo.GetByHash(ctx, tx, "hash-live")
	if err != nil || got == nil {
		t.Fatalf("GetByHash: %v", err)
	}
	if got.Expired() {
		t.Fatalf("GetByHash: live token reported expired")
	}

	n, err := repo.DeleteExpired(ctx, tx, now)
	if err != nil {
		t.Fatalf("DeleteExpired: %v", err)
	}
	if n != 1 {
		t.Fatalf("DeleteExpired: expected 1, got %d", n)
	}

	if err := repo.DeleteByUser(ctx, tx, u.ID); err != nil {
		t.Fatalf("DeleteByUser: %v", err)
	}
	gone, err := repo.GetByHash(ctx, tx, "hash-live")
	if err != nil {
		t.Fatalf("GetByHash after revoke: %v", err)
	}
	if gone != nil {
		t.Fatalf("DeleteByUser: expected nil, got %+v", gone)
	}
}
