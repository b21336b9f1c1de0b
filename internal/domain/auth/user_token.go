package auth

import (
	"time"

	"github.com/google/uuid"
)

// UserToken tracks an issued access token so logout and password
// changes can revoke sessions server-side.
type UserToken struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`
	TokenHash string    `gorm:"not null;uniqueIndex;column:token_hash" json:"-"`
	ExpiresAt time.Time `gorm:"not null;index;column:expires_at" json:"expires_at"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (UserToken) TableName() string { return "user_tokens" }

func (t *UserToken) Expired() bool {
	return time.Now().After(t.ExpiresAt)
}
