package app

import (
	"github.com/bovipred/bovipred-backend/internal/http"
	httpH "github.com/bovipred/bovipred-backend/internal/http/handlers"
	httpMW "github.com/bovipred/bovipred-backend/internal/http/middleware"
	"github.com/bovipred/bovipred-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Auth       *httpH.AuthHandler
	Group      *httpH.GroupHandler
	Animal     *httpH.AnimalHandler
	Sire       *httpH.SireHandler
	IATF       *httpH.IATFHandler
	Prediction *httpH.PredictionHandler
	Report     *httpH.ReportHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Auth:       httpH.NewAuthHandler(services.Auth),
		Group:      httpH.NewGroupHandler(services.Group),
		Animal:     httpH.NewAnimalHandler(services.Animal),
		Sire:       httpH.NewSireHandler(services.Sire),
		IATF:       httpH.NewIATFHandler(services.IATF),
		Prediction: httpH.NewPredictionHandler(services.Prediction),
		Report:     httpH.NewReportHandler(services.Report),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireServer(log *logger.Logger, handlers Handlers, middleware Middleware) *http.Server {
	return http.NewServer(http.RouterConfig{
		Log:            log,
		AuthHandler:    handlers.Auth,
		AuthMiddleware: middleware.Auth,

		GroupHandler:      handlers.Group,
		AnimalHandler:     handlers.Animal,
		SireHandler:       handlers.Sire,
		IATFHandler:       handlers.IATF,
		PredictionHandler: handlers.Prediction,
		ReportHandler:     handlers.Report,
	})
}
