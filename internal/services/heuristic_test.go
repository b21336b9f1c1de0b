package services

import (
	"strings"
	"testing"

	"github.com/bovipred/bovipred-backend/internal/data/repos/testutil"
	types "github.com/bovipred/bovipred-backend/internal/domain"
	"github.com/bovipred/bovipred-backend/internal/domain/livestock"
	"github.com/bovipred/bovipred-backend/internal/domain/ml"
)

func TestHeuristicScoreFavorableCow(t *testing.T) {
	animal := &types.Animal{
		BodyCondition:  testutil.PtrFloat(3.2),
		DaysPostpartum: testutil.PtrInt(70),
	}
	rec := &types.IATFRecord{
		OvaryRight:  testutil.PtrString(livestock.OvaryCorpusHemorrhagicum),
		OvaryLeft:   testutil.PtrString(livestock.OvaryCorpusHemorrhagicum),
		UterineTone: testutil.PtrFloat(65),
	}
	sire := &types.Sire{SemenQuality: testutil.PtrFloat(75)}

	res := HeuristicScore(rec, animal, sire)
	if res.Probability < 0.70 {
		t.Fatalf("favorable cow scored %.4f, want >= 0.70", res.Probability)
	}
	if res.Probability > 0.95 {
		t.Fatalf("probability %.4f escaped the clamp", res.Probability)
	}
	if res.Confidence != ml.ConfidenceHigh {
		t.Fatalf("confidence = %q, want %q", res.Confidence, ml.ConfidenceHigh)
	}
	if !res.BinaryVerdict {
		t.Fatal("favorable cow should predict pregnant")
	}
	if len(res.TopFeatures) == 0 {
		t.Fatal("expected a feature importance list")
	}
}

func TestHeuristicScoreUnfavorableCow(t *testing.T) {
	animal := &types.Animal{
		BodyCondition:       testutil.PtrFloat(2.0),
		DaysPostpartum:      testutil.PtrInt(30),
		AbortionHistory:     true,
		ReproductiveDisease: true,
	}
	rec := &types.IATFRecord{}

	res := HeuristicScore(rec, animal, nil)
	if res.Probability != 0.10 {
		t.Fatalf("unfavorable cow scored %.4f, want clamp floor 0.10", res.Probability)
	}
	if res.Confidence != ml.ConfidenceLow {
		t.Fatalf("confidence = %q, want %q", res.Confidence, ml.ConfidenceLow)
	}
	if res.BinaryVerdict {
		t.Fatal("unfavorable cow should predict open")
	}
	if !strings.Contains(res.Recommendations, "condicion corporal") {
		t.Fatalf("recommendations should flag body condition, got %q", res.Recommendations)
	}
}

func TestHeuristicScoreNeutralCow(t *testing.T) {
	animal := &types.Animal{
		BodyCondition:  testutil.PtrFloat(2.7),
		DaysPostpartum: testutil.PtrInt(120),
	}
	res := HeuristicScore(&types.IATFRecord{}, animal, nil)
	if res.Probability != 0.50 {
		t.Fatalf("neutral cow scored %.4f, want base 0.50", res.Probability)
	}
	if res.Confidence != ml.ConfidenceMedium {
		t.Fatalf("confidence = %q, want %q", res.Confidence, ml.ConfidenceMedium)
	}
}
