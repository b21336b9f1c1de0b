package services

import (
	"errors"
	"testing"

	"github.com/bovipred/bovipred-backend/internal/data/repos/testutil"
	types "github.com/bovipred/bovipred-backend/internal/domain"
	"github.com/bovipred/bovipred-backend/internal/domain/livestock"
	"github.com/bovipred/bovipred-backend/internal/pkg/apperr"
)

func completeAnimal() *types.Animal {
	return &types.Animal{
		AgeMonths:      testutil.PtrInt(54),
		BodyCondition:  testutil.PtrFloat(3.4),
		ParityCount:    testutil.PtrInt(2),
		DaysPostpartum: testutil.PtrInt(75),
	}
}

func completeRecord() *types.IATFRecord {
	return &types.IATFRecord{
		OvaryRight:     testutil.PtrString(livestock.OvaryCorpusLuteum),
		OvaryLeft:      testutil.PtrString(livestock.OvaryDominantFollicle),
		UterineTone:    testutil.PtrFloat(62),
		PriorTreatment: testutil.PtrString(livestock.TreatmentResync),
	}
}

func TestBuildFeaturePayloadListsEveryMissingField(t *testing.T) {
	animal := completeAnimal()
	animal.ParityCount = nil
	rec := completeRecord()
	rec.UterineTone = nil
	rec.PriorTreatment = nil

	_, err := BuildFeaturePayload(rec, animal, nil)
	if err == nil {
		t.Fatal("expected a validation error")
	}
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("error = %v, want validation", err)
	}
	var fe *apperr.FieldErrors
	if !errors.As(err, &fe) {
		t.Fatalf("error %T does not carry field details", err)
	}
	for _, field := range []string{"numero_partos", "tono_uterino", "tratamiento_previo"} {
		if _, ok := fe.Fields[field]; !ok {
			t.Fatalf("missing field %q not reported: %v", field, fe.Fields)
		}
	}
	if len(fe.Fields) != 3 {
		t.Fatalf("reported %d fields, want 3: %v", len(fe.Fields), fe.Fields)
	}
}

func TestBuildFeaturePayloadNormalization(t *testing.T) {
	animal := completeAnimal()
	rec := completeRecord()
	rec.IATFHour = testutil.PtrString("07:30")
	rec.Season = testutil.PtrString("lluvias")
	rec.MineralSaltG = testutil.PtrFloat(95)
	animal.AbortionHistory = true

	payload, err := BuildFeaturePayload(rec, animal, nil)
	if err != nil {
		t.Fatalf("build payload: %v", err)
	}
	if payload.AgeYears != 4 {
		t.Fatalf("AgeYears = %d, want 4 (54 months)", payload.AgeYears)
	}
	if payload.BodyCondition != 3 {
		t.Fatalf("BodyCondition = %d, want rounded 3", payload.BodyCondition)
	}
	if payload.PriorTreatment != "NONE" {
		t.Fatalf("PriorTreatment = %q, resync should map to NONE", payload.PriorTreatment)
	}
	if payload.HourDesirability != 2 {
		t.Fatalf("HourDesirability = %d, want 2 for 07:30", payload.HourDesirability)
	}
	if payload.Season != "LLUVIAS" {
		t.Fatalf("Season = %q, want upper-cased LLUVIAS", payload.Season)
	}
	if payload.MineralSaltG != 95 {
		t.Fatalf("MineralSaltG = %v, want recorded 95", payload.MineralSaltG)
	}
	if payload.AbortionHistory != 1 {
		t.Fatalf("AbortionHistory = %d, want 1", payload.AbortionHistory)
	}
	if payload.SireRate != livestock.DefaultSireRate {
		t.Fatalf("SireRate = %v, want default %v without sire", payload.SireRate, livestock.DefaultSireRate)
	}
}

func TestBuildFeaturePayloadDefaults(t *testing.T) {
	payload, err := BuildFeaturePayload(completeRecord(), completeAnimal(), nil)
	if err != nil {
		t.Fatalf("build payload: %v", err)
	}
	if payload.HourDesirability != 0 {
		t.Fatalf("HourDesirability = %d, want neutral 0 without hour", payload.HourDesirability)
	}
	if payload.Season != DefaultSeason {
		t.Fatalf("Season = %q, want default %q", payload.Season, DefaultSeason)
	}
	if payload.MineralSaltG != DefaultMineralSaltG {
		t.Fatalf("MineralSaltG = %v, want default %v", payload.MineralSaltG, DefaultMineralSaltG)
	}

	sire := &types.Sire{
		SemenQuality:   testutil.PtrFloat(80),
		HistoricalRate: testutil.PtrFloat(64.29),
	}
	payload, err = BuildFeaturePayload(completeRecord(), completeAnimal(), sire)
	if err != nil {
		t.Fatalf("build payload with sire: %v", err)
	}
	if payload.SireRate != 64.29 {
		t.Fatalf("SireRate = %v, want stored 64.29", payload.SireRate)
	}
	if payload.SemenQuality == nil || *payload.SemenQuality != 80 {
		t.Fatalf("SemenQuality = %v, want 80", payload.SemenQuality)
	}
}

func TestHourDesirabilityBuckets(t *testing.T) {
	cases := []struct {
		hour *string
		want int
	}{
		{testutil.PtrString("06:00"), 2},
		{testutil.PtrString("09:59"), 2},
		{testutil.PtrString("10:00"), 1},
		{testutil.PtrString("13:59"), 1},
		{testutil.PtrString("14:00"), 0},
		{testutil.PtrString("17:59"), 0},
		{testutil.PtrString("18:00"), -1},
		{testutil.PtrString("03:00"), -1},
		{nil, 0},
	}
	for _, tc := range cases {
		got := hourDesirability(tc.hour)
		if got != tc.want {
			label := "<nil>"
			if tc.hour != nil {
				label = *tc.hour
			}
			t.Fatalf("hourDesirability(%s) = %d, want %d", label, got, tc.want)
		}
	}
}
