package reporting

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Report type tags. Each tag corresponds to one fixed aggregation run.
const (
	TypePregnancyRates        = "tasas_prenez"
	TypeProtocolEffectiveness = "efectividad_protocolo"
	TypeSireAnalysis          = "analisis_semental"
	TypeModelPerformance      = "rendimiento_modelo"
)

func ValidType(s string) bool {
	switch s {
	case TypePregnancyRates, TypeProtocolEffectiveness, TypeSireAnalysis, TypeModelPerformance:
		return true
	}
	return false
}

// Report is a persisted snapshot of one aggregation run. Rows are
// written once and never mutated, only listed and deleted.
type Report struct {
	ID     uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID *uuid.UUID `gorm:"type:uuid;column:user_id" json:"user_id,omitempty"`

	Type      string     `gorm:"not null;index;column:tipo_reporte" json:"tipo_reporte"`
	DateFrom  *time.Time `gorm:"column:fecha_inicio" json:"fecha_inicio,omitempty"`
	DateTo    *time.Time `gorm:"column:fecha_fin" json:"fecha_fin,omitempty"`
	GroupName string     `gorm:"column:grupo_lote" json:"grupo_lote,omitempty"`

	Filters datatypes.JSON `gorm:"column:filtros_aplicados" json:"filtros_aplicados,omitempty"`
	Results datatypes.JSON `gorm:"column:data_resultados" json:"data_resultados"`

	TotalAnimals      int      `gorm:"not null;default:0;column:total_animales" json:"total_animales"`
	TotalIATF         int      `gorm:"not null;default:0;column:total_iatf" json:"total_iatf"`
	PregnancyRate     *float64 `gorm:"column:tasa_prenez" json:"tasa_prenez,omitempty"`
	EmbryonicLossRate *float64 `gorm:"column:tasa_muerte_embrionaria" json:"tasa_muerte_embrionaria,omitempty"`

	Notes string `gorm:"type:text;column:observaciones" json:"observaciones,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Report) TableName() string { return "reports" }
