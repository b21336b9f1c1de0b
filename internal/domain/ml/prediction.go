package ml

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Confidence tiers for a pregnancy prediction.
const (
	ConfidenceLow    = "bajo"
	ConfidenceMedium = "medio"
	ConfidenceHigh   = "alto"
)

// BinaryThreshold splits a probability into the binary verdict.
const BinaryThreshold = 0.5

// ConfidenceTier buckets a probability into the tier vocabulary shared
// with the external scoring service.
func ConfidenceTier(probability float64) string {
	switch {
	case probability >= 0.70:
		return ConfidenceHigh
	case probability >= 0.40:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// TopFeature is one entry of a prediction's feature-importance list,
// serialized into the top_features JSON column.
type TopFeature struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

type Prediction struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	IATFRecordID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex;column:iatf_record_id" json:"iatf_record_id"`
	UserID       *uuid.UUID `gorm:"type:uuid;column:user_id" json:"user_id,omitempty"`

	Probability      float64  `gorm:"not null;column:probabilidad_prenez" json:"probabilidad_prenez"`
	BinaryPrediction bool     `gorm:"not null;index;column:prediccion_binaria" json:"prediccion_binaria"`
	Confidence       string   `gorm:"index;column:nivel_confianza" json:"nivel_confianza,omitempty"`
	ConfidenceLower  *float64 `gorm:"column:confianza_baja" json:"confianza_baja,omitempty"`
	ConfidenceUpper  *float64 `gorm:"column:confianza_alta" json:"confianza_alta,omitempty"`

	ModelName    string `gorm:"not null;column:modelo_usado" json:"modelo_usado"`
	ModelVersion string `gorm:"column:version_modelo" json:"version_modelo,omitempty"`

	Accuracy  *float64 `gorm:"column:accuracy" json:"accuracy,omitempty"`
	Precision *float64 `gorm:"column:precision" json:"precision,omitempty"`
	Recall    *float64 `gorm:"column:recall" json:"recall,omitempty"`
	F1Score   *float64 `gorm:"column:f1_score" json:"f1_score,omitempty"`
	ROCAUC    *float64 `gorm:"column:roc_auc" json:"roc_auc,omitempty"`

	TopFeatures     datatypes.JSON `gorm:"column:top_features" json:"top_features,omitempty"`
	Recommendations string         `gorm:"type:text;column:recomendaciones" json:"recomendaciones,omitempty"`

	ObservedOutcome *bool      `gorm:"column:resultado_real" json:"resultado_real,omitempty"`
	Correct         *bool      `gorm:"column:prediccion_correcta" json:"prediccion_correcta,omitempty"`
	ValidatedAt     *time.Time `gorm:"column:fecha_validacion" json:"fecha_validacion,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Prediction) TableName() string { return "predictions" }

// Validated reports whether the real outcome has been registered.
func (p *Prediction) Validated() bool {
	return p.ObservedOutcome != nil
}
