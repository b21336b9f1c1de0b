package app

import (
	"fmt"
	"os"

	"gorm.io/gorm"

	"github.com/bovipred/bovipred-backend/internal/clients/mlapi"
	"github.com/bovipred/bovipred-backend/internal/clients/redcache"
	"github.com/bovipred/bovipred-backend/internal/platform/logger"
	"github.com/bovipred/bovipred-backend/internal/services"
)

type Services struct {
	ActivityLog services.ActivityLogService
	Auth        services.AuthService

	Group  services.GroupService
	Animal services.AnimalService
	Sire   services.SireService
	IATF   services.IATFService

	Prediction services.PredictionService
	Report     services.ReportService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos) (Services, error) {
	log.Info("Wiring services...")

	var mlClient *mlapi.Client
	if os.Getenv("ML_API_URL") != "" {
		client, err := mlapi.NewFromEnv()
		if err != nil {
			return Services{}, fmt.Errorf("init ml client: %w", err)
		}
		mlClient = client
	} else {
		log.Info("ML_API_URL not set, predictions use the local heuristic")
	}

	cache, err := redcache.NewFromEnv(log)
	if err != nil {
		return Services{}, fmt.Errorf("init redis cache: %w", err)
	}
	if cache == nil {
		log.Info("REDIS_ADDR not set, dashboard caching disabled")
	}

	activityLog := services.NewActivityLogService(db, log, repos.ActivityLog)
	auth := services.NewAuthService(db, log, repos.User, repos.UserToken, activityLog, cfg.JWTSecret, cfg.TokenTTL)

	group := services.NewGroupService(db, log, repos.Group, repos.Animal, repos.IATFRecord, activityLog)
	animal := services.NewAnimalService(db, log, repos.Animal, repos.Group, repos.IATFRecord, activityLog)
	sire := services.NewSireService(db, log, repos.Sire, repos.IATFRecord, activityLog)
	iatf := services.NewIATFService(db, log, repos.IATFRecord, repos.Animal, repos.Sire, repos.Prediction, sire, activityLog)

	prediction := services.NewPredictionService(db, log, repos.Prediction, repos.IATFRecord, mlClient, cfg.MLStrict, activityLog)
	report := services.NewReportService(db, log, repos.Report, repos.IATFRecord, repos.Animal, repos.Sire, repos.Prediction, cache, activityLog)

	return Services{
		ActivityLog: activityLog,
		Auth:        auth,
		Group:       group,
		Animal:      animal,
		Sire:        sire,
		IATF:        iatf,
		Prediction:  prediction,
		Report:      report,
	}, nil
}
