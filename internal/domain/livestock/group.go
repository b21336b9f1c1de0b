package livestock

import (
	"time"

	"github.com/google/uuid"
)

type Group struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;not null;column:nombre" json:"nombre"`
	Description string    `gorm:"type:text;column:descripcion" json:"descripcion,omitempty"`
	Active      bool      `gorm:"not null;default:true;column:activo" json:"activo"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Group) TableName() string { return "grupos" }
