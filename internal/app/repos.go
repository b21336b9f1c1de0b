package app

import (
	"gorm.io/gorm"

	auditrepo "github.com/bovipred/bovipred-backend/internal/data/repos/audit"
	authrepo "github.com/bovipred/bovipred-backend/internal/data/repos/auth"
	livestockrepo "github.com/bovipred/bovipred-backend/internal/data/repos/livestock"
	mlrepo "github.com/bovipred/bovipred-backend/internal/data/repos/ml"
	reportingrepo "github.com/bovipred/bovipred-backend/internal/data/repos/reporting"
	"github.com/bovipred/bovipred-backend/internal/platform/logger"
)

type Repos struct {
	User      authrepo.UserRepo
	UserToken authrepo.UserTokenRepo

	Group      livestockrepo.GroupRepo
	Animal     livestockrepo.AnimalRepo
	Sire       livestockrepo.SireRepo
	IATFRecord livestockrepo.IATFRecordRepo

	Prediction mlrepo.PredictionRepo
	Report     reportingrepo.ReportRepo

	ActivityLog auditrepo.ActivityLogRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:      authrepo.NewUserRepo(db, log),
		UserToken: authrepo.NewUserTokenRepo(db, log),

		Group:      livestockrepo.NewGroupRepo(db, log),
		Animal:     livestockrepo.NewAnimalRepo(db, log),
		Sire:       livestockrepo.NewSireRepo(db, log),
		IATFRecord: livestockrepo.NewIATFRecordRepo(db, log),

		Prediction: mlrepo.NewPredictionRepo(db, log),
		Report:     reportingrepo.NewReportRepo(db, log),

		ActivityLog: auditrepo.NewActivityLogRepo(db, log),
	}
}
