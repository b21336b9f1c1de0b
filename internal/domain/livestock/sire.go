package livestock

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultSireRate is the conservative prior assigned to a sire with no
// recorded services yet. It feeds the prediction payload, so it lives
// here as a named constant rather than inline.
const DefaultSireRate = 50.00

type Sire struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null;column:nombre" json:"nombre"`
	Breed     string    `gorm:"column:raza" json:"raza,omitempty"`
	StrawCode string    `gorm:"column:codigo_pajilla" json:"codigo_pajilla,omitempty"`

	SemenQuality       *float64 `gorm:"column:calidad_seminal" json:"calidad_seminal,omitempty"`
	SpermConcentration *float64 `gorm:"column:concentracion_espermatica" json:"concentracion_espermatica,omitempty"`
	SpermMorphology    *float64 `gorm:"column:morfologia_espermatica" json:"morfologia_espermatica,omitempty"`

	HistoricalRate       *float64 `gorm:"index;column:tasa_historica_prenez" json:"tasa_historica_prenez,omitempty"`
	TotalServices        int      `gorm:"not null;default:0;column:total_servicios" json:"total_servicios"`
	TotalPregnancies     int      `gorm:"not null;default:0;column:total_preneces" json:"total_preneces"`
	TotalEmbryonicLosses int      `gorm:"not null;default:0;column:total_muertes_embrionarias" json:"total_muertes_embrionarias"`

	Supplier      string     `gorm:"column:proveedor" json:"proveedor,omitempty"`
	AcquiredAt    *time.Time `gorm:"column:fecha_adquisicion" json:"fecha_adquisicion,omitempty"`
	StrawPrice    *float64   `gorm:"column:precio_pajilla" json:"precio_pajilla,omitempty"`
	Active        bool       `gorm:"not null;default:true;index;column:activo" json:"activo"`
	Notes         string     `gorm:"type:text;column:observaciones" json:"observaciones,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Sire) TableName() string { return "sementales" }

// RateOrDefault returns the sire's historical pregnancy rate, falling
// back to the conservative prior when none has been computed yet.
func (s *Sire) RateOrDefault() float64 {
	if s == nil || s.HistoricalRate == nil {
		return DefaultSireRate
	}
	return *s.HistoricalRate
}
