package audit

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Action tags recorded in the activity log.
const (
	ActionCreate         = "crear"
	ActionUpdate         = "actualizar"
	ActionDelete         = "eliminar"
	ActionPredict        = "predecir"
	ActionConfirmResult  = "confirmar_resultado"
	ActionGenerateReport = "generar_reporte"
	ActionRegister       = "registro"
	ActionLogin          = "login"
	ActionLogout         = "logout"
	ActionUpdateProfile  = "actualizar_perfil"
	ActionChangePassword = "cambiar_password"
	ActionToggleUser     = "toggle_usuario"
)

// ActivityLog is an append-only audit entry. Rows are never updated or
// read back by the application; the table exists for operators.
type ActivityLog struct {
	ID     uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID *uuid.UUID `gorm:"type:uuid;index;column:user_id" json:"user_id,omitempty"`

	Action      string     `gorm:"not null;index;column:accion" json:"accion"`
	EntityType  string     `gorm:"not null;column:modelo_afectado" json:"modelo_afectado"`
	EntityID    *uuid.UUID `gorm:"type:uuid;column:modelo_id" json:"modelo_id,omitempty"`
	Description string     `gorm:"type:text;column:descripcion" json:"descripcion,omitempty"`

	Before datatypes.JSON `gorm:"column:datos_anteriores" json:"datos_anteriores,omitempty"`
	After  datatypes.JSON `gorm:"column:datos_nuevos" json:"datos_nuevos,omitempty"`

	IP        string `gorm:"column:ip_address" json:"ip_address,omitempty"`
	UserAgent string `gorm:"column:user_agent" json:"user_agent,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (ActivityLog) TableName() string { return "activity_log" }
