package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/bovipred/bovipred-backend/internal/domain"
	"github.com/bovipred/bovipred-backend/internal/domain/livestock"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:       uuid.New(),
		Name:     "Ana",
		LastName: "Prueba",
		Email:    email,
		Password: "pw",
		Role:     "veterinario",
		Active:   true,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedGroup(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *types.Group {
	tb.Helper()
	g := &types.Group{
		ID:     uuid.New(),
		Name:   name,
		Active: true,
	}
	if err := tx.WithContext(ctx).Create(g).Error; err != nil {
		tb.Fatalf("seed group: %v", err)
	}
	return g
}

func SeedAnimal(tb testing.TB, ctx context.Context, tx *gorm.DB, earTag string, groupID *uuid.UUID) *types.Animal {
	tb.Helper()
	a := &types.Animal{
		ID:                 uuid.New(),
		EarTag:             earTag,
		GroupID:            groupID,
		AgeMonths:          PtrInt(48),
		BodyCondition:      PtrFloat(3.0),
		DaysPostpartum:     PtrInt(70),
		ReproductiveStatus: livestock.StatusActive,
		Active:             true,
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed animal: %v", err)
	}
	return a
}

func SeedSire(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *types.Sire {
	tb.Helper()
	s := &types.Sire{
		ID:           uuid.New(),
		Name:         name,
		Breed:        "Brahman",
		SemenQuality: PtrFloat(75),
		Active:       true,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed sire: %v", err)
	}
	return s
}

// SeedIATFRecord creates an event on the given date with the given
// outcome; pass livestock.OutcomePending for an open record.
func SeedIATFRecord(tb testing.TB, ctx context.Context, tx *gorm.DB, animalID uuid.UUID, sireID *uuid.UUID, date time.Time, outcome string) *types.IATFRecord {
	tb.Helper()
	rec := &types.IATFRecord{
		ID:       uuid.New(),
		AnimalID: animalID,
		SireID:   sireID,
		IATFDate: date,
		Outcome:  outcome,
	}
	switch outcome {
	case livestock.OutcomeConfirmed:
		rec.PregnancyConfirmed = PtrBool(true)
	case livestock.OutcomeNotPregnant, livestock.OutcomeEmbryonicLoss:
		rec.PregnancyConfirmed = PtrBool(false)
	}
	if err := tx.WithContext(ctx).Create(rec).Error; err != nil {
		tb.Fatalf("seed iatf record: %v", err)
	}
	return rec
}

func SeedPrediction(tb testing.TB, ctx context.Context, tx *gorm.DB, recordID uuid.UUID, probability float64) *types.Prediction {
	tb.Helper()
	p := &types.Prediction{
		ID:               uuid.New(),
		IATFRecordID:     recordID,
		Probability:      probability,
		BinaryPrediction: probability >= 0.5,
		Confidence:       tier(probability),
		ModelName:        "heuristic",
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed prediction: %v", err)
	}
	return p
}

func tier(p float64) string {
	switch {
	case p >= 0.70:
		return "alto"
	case p >= 0.40:
		return "medio"
	default:
		return "bajo"
	}
}

func PtrUUID(v uuid.UUID) *uuid.UUID { return &v }

func PtrTime(v time.Time) *time.Time { return &v }

func PtrInt(v int) *int { return &v }

func PtrString(v string) *string { return &v }

func PtrFloat(v float64) *float64 { return &v }

func PtrBool(v bool) *bool { return &v }
