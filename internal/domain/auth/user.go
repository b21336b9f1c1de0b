package auth

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User roles, in descending privilege order.
const (
	RoleAdmin        = "admin"
	RoleVeterinarian = "veterinario"
	RoleAssistant    = "asistente"
)

func ValidRole(s string) bool {
	switch s {
	case RoleAdmin, RoleVeterinarian, RoleAssistant:
		return true
	}
	return false
}

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name     string    `gorm:"not null;column:name" json:"name"`
	LastName string    `gorm:"not null;column:apellido" json:"apellido"`
	Email    string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password string    `gorm:"not null;column:password" json:"-"`
	Role     string    `gorm:"not null;default:'asistente';index;column:rol" json:"rol"`
	Phone    string    `gorm:"column:telefono" json:"telefono,omitempty"`
	Active   bool      `gorm:"not null;default:true;column:activo" json:"activo"`

	LastAccessAt *time.Time `gorm:"column:ultimo_acceso" json:"ultimo_acceso,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string { return "users" }

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// CanEdit reports whether the user may mutate breeding records.
func (u *User) CanEdit() bool {
	return u.Role == RoleAdmin || u.Role == RoleVeterinarian
}
