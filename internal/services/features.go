package services

import (
	"math"
	"strconv"
	"strings"

	"github.com/bovipred/bovipred-backend/internal/clients/mlapi"
	types "github.com/bovipred/bovipred-backend/internal/domain"
	"github.com/bovipred/bovipred-backend/internal/domain/livestock"
	"github.com/bovipred/bovipred-backend/internal/pkg/apperr"
)

// Named defaults substituted for missing inputs. They shift prediction
// outcomes, so they live here rather than inline.
const (
	DefaultMineralSaltG = 110.0
	DefaultSeason       = "SUMMER"
)

// BuildFeaturePayload runs the minimum-data check and normalizes the
// event into the scoring service's vocabulary. Every missing field is
// listed in one ValidationError, not just the first.
func BuildFeaturePayload(rec *types.IATFRecord, animal *types.Animal, sire *types.Sire) (mlapi.FeaturePayload, error) {
	var payload mlapi.FeaturePayload

	missing := map[string]string{}
	if animal.AgeMonths == nil {
		missing["edad_meses"] = "requerido para predecir"
	}
	if animal.BodyCondition == nil {
		missing["condicion_corporal"] = "requerido para predecir"
	}
	if animal.DaysPostpartum == nil {
		missing["dias_posparto"] = "requerido para predecir"
	}
	if animal.ParityCount == nil {
		missing["numero_partos"] = "requerido para predecir"
	}
	if rec.OvaryRight == nil {
		missing["condicion_ovarica_od"] = "requerido para predecir"
	}
	if rec.OvaryLeft == nil {
		missing["condicion_ovarica_oi"] = "requerido para predecir"
	}
	if rec.UterineTone == nil {
		missing["tono_uterino"] = "requerido para predecir"
	}
	if rec.PriorTreatment == nil {
		missing["tratamiento_previo"] = "requerido para predecir"
	}
	if len(missing) > 0 {
		return payload, apperr.Validation(missing)
	}

	payload = mlapi.FeaturePayload{
		AgeYears:         *animal.AgeMonths / 12,
		BodyCondition:    int(math.Round(*animal.BodyCondition)),
		ParityCount:      *animal.ParityCount,
		DaysPostpartum:   *animal.DaysPostpartum,
		WeightKg:         animal.WeightKg,
		DaysOpen:         animal.DaysOpen,
		OvaryRight:       *rec.OvaryRight,
		OvaryLeft:        *rec.OvaryLeft,
		UterineTone:      *rec.UterineTone,
		PriorTreatment:   normalizeTreatment(rec.PriorTreatment),
		HourDesirability: hourDesirability(rec.IATFHour),
		Season:           normalizeSeason(rec.Season),
		MineralSaltG:     DefaultMineralSaltG,
		SireRate:         livestock.DefaultSireRate,
	}
	if rec.MineralSaltG != nil {
		payload.MineralSaltG = *rec.MineralSaltG
	}
	if animal.AbortionHistory {
		payload.AbortionHistory = 1
	}
	if animal.ReproductiveDisease {
		payload.ReproductiveDisease = 1
	}
	if sire != nil {
		payload.SemenQuality = sire.SemenQuality
		payload.SireRate = sire.RateOrDefault()
	}

	return payload, nil
}

// normalizeTreatment maps internal treatment codes to the service's
// vocabulary: resync/discard and absent all collapse to "NONE".
func normalizeTreatment(code *string) string {
	if code == nil {
		return "NONE"
	}
	switch *code {
	case livestock.TreatmentT1, livestock.TreatmentT2:
		return *code
	}
	return "NONE"
}

func normalizeSeason(season *string) string {
	if season == nil || strings.TrimSpace(*season) == "" {
		return DefaultSeason
	}
	return strings.ToUpper(strings.TrimSpace(*season))
}

// hourDesirability buckets the insemination wall-clock time: morning
// work scores best, late-day work worst. No recorded time is neutral.
func hourDesirability(hhmm *string) int {
	if hhmm == nil || strings.TrimSpace(*hhmm) == "" {
		return 0
	}
	parts := strings.SplitN(strings.TrimSpace(*hhmm), ":", 2)
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0
	}
	switch {
	case hour >= 6 && hour < 10:
		return 2
	case hour >= 10 && hour < 14:
		return 1
	case hour >= 14 && hour < 18:
		return 0
	default:
		return -1
	}
}
