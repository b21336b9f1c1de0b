package livestock

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Outcome of a timed artificial insemination.
const (
	OutcomeConfirmed     = "confirmada"
	OutcomeNotPregnant   = "no_prenada"
	OutcomeEmbryonicLoss = "muerte_embrionaria"
	OutcomePending       = "pendiente"
)

// Ovarian condition codes, one per ovary.
const (
	OvaryCorpusHemorrhagicum = "C"
	OvaryCorpusLuteum        = "CL"
	OvaryDominantFollicle    = "FD"
	OvaryFollicle            = "F"
	OvaryInactive            = "I"
	OvaryAbnormal            = "A"
)

// Prior treatment protocol codes.
const (
	TreatmentT1      = "T1"
	TreatmentT2      = "T2"
	TreatmentResync  = "RS"
	TreatmentDiscard = "DESCARTE"
)

// Season of the year at insemination time.
const (
	SeasonSummer = "verano"
	SeasonWinter = "invierno"
	SeasonRains  = "lluvias"
)

// Water availability codes.
const (
	WaterAdequate = "adecuada"
	WaterLimited  = "limitada"
)

// DefaultConfirmedGestationDays is applied when a confirmation omits
// the gestation length; 45 days is the standard palpation check point.
const DefaultConfirmedGestationDays = 45

func ValidOutcome(s string) bool {
	switch s {
	case OutcomeConfirmed, OutcomeNotPregnant, OutcomeEmbryonicLoss, OutcomePending:
		return true
	}
	return false
}

func ValidOvaryCondition(s string) bool {
	switch s {
	case OvaryCorpusHemorrhagicum, OvaryCorpusLuteum, OvaryDominantFollicle,
		OvaryFollicle, OvaryInactive, OvaryAbnormal:
		return true
	}
	return false
}

func ValidTreatment(s string) bool {
	switch s {
	case TreatmentT1, TreatmentT2, TreatmentResync, TreatmentDiscard:
		return true
	}
	return false
}

func ValidSeason(s string) bool {
	switch s {
	case SeasonSummer, SeasonWinter, SeasonRains:
		return true
	}
	return false
}

func ValidWaterAvailability(s string) bool {
	switch s {
	case WaterAdequate, WaterLimited:
		return true
	}
	return false
}

type IATFRecord struct {
	ID       uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	AnimalID uuid.UUID  `gorm:"type:uuid;not null;index;column:animal_id" json:"animal_id"`
	SireID   *uuid.UUID `gorm:"type:uuid;index;column:semental_id" json:"semental_id,omitempty"`

	IATFDate time.Time `gorm:"not null;index;column:fecha_iatf" json:"fecha_iatf"`

	ProtocolDay0  *time.Time `gorm:"column:fecha_protocolo_dia_0" json:"fecha_protocolo_dia_0,omitempty"`
	ProtocolDay8  *time.Time `gorm:"column:fecha_protocolo_dia_8" json:"fecha_protocolo_dia_8,omitempty"`
	ProtocolDay9  *time.Time `gorm:"column:fecha_protocolo_dia_9" json:"fecha_protocolo_dia_9,omitempty"`
	ProtocolDay10 *time.Time `gorm:"column:fecha_protocolo_dia_10" json:"fecha_protocolo_dia_10,omitempty"`

	OvaryRight  *string  `gorm:"column:condicion_ovarica_od" json:"condicion_ovarica_od,omitempty"`
	OvaryLeft   *string  `gorm:"column:condicion_ovarica_oi" json:"condicion_ovarica_oi,omitempty"`
	UterineTone *float64 `gorm:"column:tono_uterino" json:"tono_uterino,omitempty"`

	PriorTreatment *string `gorm:"column:tratamiento_previo" json:"tratamiento_previo,omitempty"`
	ToningDays     *int    `gorm:"column:dias_tonificacion" json:"dias_tonificacion,omitempty"`

	MineralSaltG  *float64 `gorm:"column:sal_mineral_gr" json:"sal_mineral_gr,omitempty"`
	ModivitasanMl *float64 `gorm:"column:modivitasan_ml" json:"modivitasan_ml,omitempty"`
	FosfotonMl    *float64 `gorm:"column:fosfoton_ml" json:"fosfoton_ml,omitempty"`
	SeleniumMl    *float64 `gorm:"column:seve_ml" json:"seve_ml,omitempty"`
	Dewormed      bool     `gorm:"not null;default:false;column:desparasitacion_previa" json:"desparasitacion_previa"`
	Vitamins      bool     `gorm:"not null;default:false;column:vitaminas_aplicadas" json:"vitaminas_aplicadas"`

	DIBDevice   bool     `gorm:"not null;default:false;column:dispositivo_dib" json:"dispositivo_dib"`
	EstradiolMl *float64 `gorm:"column:estradiol_ml" json:"estradiol_ml,omitempty"`
	DIBRemoved  bool     `gorm:"not null;default:false;column:retirada_dib" json:"retirada_dib"`
	ECGMl       *float64 `gorm:"column:ecg_ml" json:"ecg_ml,omitempty"`
	PGF2AlphaMl *float64 `gorm:"column:pf2_alpha_ml" json:"pf2_alpha_ml,omitempty"`

	// IATFHour holds the wall-clock insemination time as "HH:MM".
	IATFHour *string `gorm:"column:hora_iatf" json:"hora_iatf,omitempty"`

	Season            *string  `gorm:"column:epoca_anio" json:"epoca_anio,omitempty"`
	Temperature       *float64 `gorm:"column:temperatura_ambiente" json:"temperatura_ambiente,omitempty"`
	Humidity          *float64 `gorm:"column:humedad_relativa" json:"humedad_relativa,omitempty"`
	ManagementStress  *int     `gorm:"column:estres_manejo" json:"estres_manejo,omitempty"`
	PastureQuality    *int     `gorm:"column:calidad_pasturas" json:"calidad_pasturas,omitempty"`
	WaterAvailability *string  `gorm:"column:disponibilidad_agua" json:"disponibilidad_agua,omitempty"`

	PriorGestation     bool `gorm:"not null;default:false;column:gestacion_previa" json:"gestacion_previa"`
	PriorGestationDays *int `gorm:"column:dias_gestacion_previa" json:"dias_gestacion_previa,omitempty"`

	Outcome                string     `gorm:"not null;default:'pendiente';index;column:resultado_iatf" json:"resultado_iatf"`
	PregnancyConfirmed     *bool      `gorm:"index;column:prenez_confirmada" json:"prenez_confirmada,omitempty"`
	ConfirmationDate       *time.Time `gorm:"column:fecha_confirmacion" json:"fecha_confirmacion,omitempty"`
	ConfirmedGestationDays *int       `gorm:"column:dias_gestacion_confirmada" json:"dias_gestacion_confirmada,omitempty"`

	Notes string `gorm:"type:text;column:observaciones" json:"observaciones,omitempty"`

	Animal *Animal `gorm:"foreignKey:AnimalID" json:"animal,omitempty"`
	Sire   *Sire   `gorm:"foreignKey:SireID" json:"semental,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (IATFRecord) TableName() string { return "iatf_records" }

// OutcomeRecorded reports whether a result has been registered for the
// insemination (the record counts as a completed service).
func (r *IATFRecord) OutcomeRecorded() bool {
	return r.PregnancyConfirmed != nil
}
