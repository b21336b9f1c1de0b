package livestock

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reproductive status of a breeding female.
const (
	StatusActive   = "activa"
	StatusPregnant = "prenada"
	StatusDry      = "seca"
	StatusCulled   = "descarte"
)

func ValidReproductiveStatus(s string) bool {
	switch s {
	case StatusActive, StatusPregnant, StatusDry, StatusCulled:
		return true
	}
	return false
}

type Animal struct {
	ID      uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	EarTag  string     `gorm:"uniqueIndex;not null;column:arete" json:"arete"`
	GroupID *uuid.UUID `gorm:"type:uuid;index;column:grupo_id" json:"grupo_id,omitempty"`

	AgeMonths      *int     `gorm:"column:edad_meses" json:"edad_meses,omitempty"`
	WeightKg       *float64 `gorm:"column:peso_kg" json:"peso_kg,omitempty"`
	BodyCondition  *float64 `gorm:"column:condicion_corporal" json:"condicion_corporal,omitempty"`
	ParityCount    *int     `gorm:"column:numero_partos" json:"numero_partos,omitempty"`
	DaysPostpartum *int     `gorm:"column:dias_posparto" json:"dias_posparto,omitempty"`
	DaysOpen       *int     `gorm:"column:dias_abiertos" json:"dias_abiertos,omitempty"`

	AbortionHistory     bool   `gorm:"not null;default:false;column:historial_abortos" json:"historial_abortos"`
	AbortionCount       int    `gorm:"not null;default:0;column:numero_abortos" json:"numero_abortos"`
	ReproductiveDisease bool   `gorm:"not null;default:false;column:enfermedades_reproductivas" json:"enfermedades_reproductivas"`
	DiseaseDescription  string `gorm:"type:text;column:descripcion_enfermedades" json:"descripcion_enfermedades,omitempty"`

	ReproductiveStatus string     `gorm:"not null;default:'activa';index;column:estado_reproductivo" json:"estado_reproductivo"`
	LastTreatmentAt    *time.Time `gorm:"column:fecha_ultimo_tratamiento" json:"fecha_ultimo_tratamiento,omitempty"`
	Active             bool       `gorm:"not null;default:true;index;column:activo" json:"activo"`
	Notes              string     `gorm:"type:text;column:observaciones" json:"observaciones,omitempty"`

	Group *Group `gorm:"foreignKey:GroupID" json:"grupo,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Animal) TableName() string { return "animals" }

// AgeYears reports the animal's age in whole years, the unit the
// prediction service expects.
func (a *Animal) AgeYears() *int {
	if a.AgeMonths == nil {
		return nil
	}
	y := *a.AgeMonths / 12
	return &y
}
