package mlapi

// FeaturePayload is the normalized feature vector sent to the scoring
// service. Keys follow the service's vocabulary: ages in whole years,
// treatment codes remapped, the insemination hour collapsed into a
// desirability bucket.
type FeaturePayload struct {
	AgeYears       int      `json:"edad_anios"`
	BodyCondition  int      `json:"condicion_corporal"`
	ParityCount    int      `json:"numero_partos"`
	DaysPostpartum int      `json:"dias_posparto"`
	WeightKg       *float64 `json:"peso_kg,omitempty"`
	DaysOpen       *int     `json:"dias_abiertos,omitempty"`

	OvaryRight  string  `json:"condicion_ovarica_od"`
	OvaryLeft   string  `json:"condicion_ovarica_oi"`
	UterineTone float64 `json:"tono_uterino"`

	PriorTreatment   string `json:"tratamiento_previo"`
	HourDesirability int    `json:"hora_deseabilidad"`
	Season           string `json:"epoca_anio"`

	MineralSaltG float64 `json:"sal_mineral_gr"`

	AbortionHistory     int `json:"historial_abortos"`
	ReproductiveDisease int `json:"enfermedades_reproductivas"`

	SemenQuality *float64 `json:"calidad_seminal,omitempty"`
	SireRate     float64  `json:"tasa_historica_prenez_semental"`
}

type predictRequest struct {
	Data FeaturePayload `json:"data"`
}

// FeatureImportance mirrors the service's importance entries.
type FeatureImportance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// ModelMetrics carries the per-model quality metrics the service
// reports alongside each prediction.
type ModelMetrics struct {
	Accuracy  *float64 `json:"accuracy,omitempty"`
	Precision *float64 `json:"precision,omitempty"`
	Recall    *float64 `json:"recall,omitempty"`
	F1Score   *float64 `json:"f1_score,omitempty"`
	ROCAUC    *float64 `json:"roc_auc,omitempty"`
}

// PredictResponse is the service's consensus answer. The probability
// arrives on a 0-100 scale.
type PredictResponse struct {
	Probability   float64           `json:"probabilidad_consenso"`
	BinaryVerdict bool              `json:"prediccion_binaria"`
	Confidence    string            `json:"nivel_confianza"`
	ModelName     string            `json:"modelo_usado"`
	ModelVersion  string            `json:"version_modelo"`
	Metrics       ModelMetrics      `json:"metricas"`
	TopFeatures   []FeatureImportance `json:"top_features"`
	RiskFactors   []string          `json:"factores_riesgo"`
}

type healthResponse struct {
	Status string `json:"status"`
}
