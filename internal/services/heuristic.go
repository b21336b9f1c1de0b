package services

import (
	"fmt"
	"math"
	"strings"

	types "github.com/bovipred/bovipred-backend/internal/domain"
	"github.com/bovipred/bovipred-backend/internal/domain/livestock"
	"github.com/bovipred/bovipred-backend/internal/domain/ml"
)

// HeuristicModelName identifies predictions produced by the local
// fallback scorer rather than the external service.
const (
	HeuristicModelName    = "SimulacionTemporalV1"
	HeuristicModelVersion = "1.0.0"
)

// HeuristicResult is the local scorer's answer, shaped like the
// external service's response so the two paths persist identically.
type HeuristicResult struct {
	Probability     float64
	BinaryVerdict   bool
	Confidence      string
	Recommendations string
	TopFeatures     []ml.TopFeature
}

// HeuristicScore produces a pregnancy probability from point deltas on
// the most predictive variables, clamped to [0.10, 0.95].
func HeuristicScore(rec *types.IATFRecord, animal *types.Animal, sire *types.Sire) *HeuristicResult {
	score := 50.0

	if animal.BodyCondition != nil {
		switch bcs := *animal.BodyCondition; {
		case bcs >= 3.0 && bcs <= 3.5:
			score += 15
		case bcs < 2.5:
			score -= 20
		}
	}
	if animal.DaysPostpartum != nil {
		switch dp := *animal.DaysPostpartum; {
		case dp >= 60 && dp <= 90:
			score += 10
		case dp < 45:
			score -= 15
		}
	}
	if favorableOvary(rec.OvaryRight) {
		score += 10
	}
	if favorableOvary(rec.OvaryLeft) {
		score += 10
	}
	if rec.UterineTone != nil && *rec.UterineTone >= 60 {
		score += 8
	}
	if animal.AbortionHistory {
		score -= 12
	}
	if animal.ReproductiveDisease {
		score -= 15
	}
	if sire != nil && sire.SemenQuality != nil && *sire.SemenQuality >= 70 {
		score += 8
	}

	probability := math.Max(0.10, math.Min(0.95, score/100))
	probability = math.Round(probability*10000) / 10000

	return &HeuristicResult{
		Probability:     probability,
		BinaryVerdict:   probability >= ml.BinaryThreshold,
		Confidence:      ml.ConfidenceTier(probability),
		Recommendations: heuristicRecommendations(animal, probability),
		TopFeatures: []ml.TopFeature{
			{Feature: "condicion_corporal", Importance: 0.25},
			{Feature: "dias_posparto", Importance: 0.20},
			{Feature: "condicion_ovarica", Importance: 0.18},
			{Feature: "tono_uterino", Importance: 0.15},
			{Feature: "calidad_seminal", Importance: 0.12},
		},
	}
}

func favorableOvary(code *string) bool {
	if code == nil {
		return false
	}
	switch *code {
	case livestock.OvaryCorpusHemorrhagicum, livestock.OvaryCorpusLuteum, livestock.OvaryDominantFollicle:
		return true
	}
	return false
}

func heuristicRecommendations(animal *types.Animal, probability float64) string {
	var lines []string

	if probability < 0.4 {
		lines = append(lines, "Probabilidad baja de prenez. Considere evaluar las condiciones del animal.")
	}
	if animal.BodyCondition != nil && *animal.BodyCondition < 2.5 {
		lines = append(lines, fmt.Sprintf("Mejorar condicion corporal (actualmente %.1f). Meta: 3.0-3.5.", *animal.BodyCondition))
	}
	if animal.DaysPostpartum != nil && *animal.DaysPostpartum < 60 {
		lines = append(lines, fmt.Sprintf("Animal con %d dias posparto. Considere esperar hasta 60+ dias.", *animal.DaysPostpartum))
	}
	if animal.ReproductiveDisease {
		lines = append(lines, "Animal con historial de enfermedades reproductivas. Requiere seguimiento veterinario.")
	}
	if animal.AbortionHistory {
		lines = append(lines, "Animal con historial de abortos. Monitoreo especial recomendado.")
	}
	if len(lines) == 0 {
		lines = append(lines, "Condiciones favorables para IATF. Continuar con protocolo estandar.")
	}
	return strings.Join(lines, "\n")
}
