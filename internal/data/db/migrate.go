package db

import (
	types "github.com/bovipred/bovipred-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(

		// Identity + auth
		&types.User{},
		&types.UserToken{},

		// Herd
		&types.Group{},
		&types.Animal{},
		&types.Sire{},

		// Breeding protocol
		&types.IATFRecord{},

		// ML + reporting
		&types.Prediction{},
		&types.Report{},

		// Audit trail
		&types.ActivityLog{},
	)
}
