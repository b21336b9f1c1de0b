package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/bovipred/bovipred-backend/internal/http/handlers"
	httpMW "github.com/bovipred/bovipred-backend/internal/http/middleware"
	"github.com/bovipred/bovipred-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	AuthHandler    *httpH.AuthHandler
	AuthMiddleware *httpMW.AuthMiddleware

	GroupHandler      *httpH.GroupHandler
	AnimalHandler     *httpH.AnimalHandler
	SireHandler       *httpH.SireHandler
	IATFHandler       *httpH.IATFHandler
	PredictionHandler *httpH.PredictionHandler
	ReportHandler     *httpH.ReportHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Log != nil {
		r.Use(httpMW.RequestLogger(cfg.Log))
	}
	r.Use(httpMW.CORS())

	// Health
	r.GET("/healthcheck", httpH.HealthCheck)

	api := r.Group("/api/v1")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/auth/register", cfg.AuthHandler.Register)
			api.POST("/auth/login", cfg.AuthHandler.Login)
		}
	}

	protected := api.Group("/")
	{
		// Middleware
		if cfg.AuthMiddleware == nil {
			return r
		}
		protected.Use(cfg.AuthMiddleware.RequireAuth())
		admin := cfg.AuthMiddleware.RequireAdmin()
		editor := cfg.AuthMiddleware.RequireEditor()

		// Auth (protected)
		if cfg.AuthHandler != nil {
			protected.POST("/auth/logout", cfg.AuthHandler.Logout)
			protected.GET("/auth/profile", cfg.AuthHandler.Profile)
			protected.PUT("/auth/profile", cfg.AuthHandler.UpdateProfile)
			protected.POST("/auth/change-password", cfg.AuthHandler.ChangePassword)
			protected.GET("/auth/users", admin, cfg.AuthHandler.ListUsers)
			protected.PUT("/auth/users/:id/toggle", admin, cfg.AuthHandler.ToggleUser)
		}

		// Groups
		if cfg.GroupHandler != nil {
			protected.GET("/grupos", cfg.GroupHandler.List)
			protected.POST("/grupos", editor, cfg.GroupHandler.Create)
			protected.GET("/grupos/:id", cfg.GroupHandler.Get)
			protected.PUT("/grupos/:id", editor, cfg.GroupHandler.Update)
			protected.DELETE("/grupos/:id", editor, cfg.GroupHandler.Delete)
			protected.GET("/grupos/:id/estadisticas", cfg.GroupHandler.Stats)
		}

		// Animals
		if cfg.AnimalHandler != nil {
			protected.GET("/animals", cfg.AnimalHandler.List)
			protected.POST("/animals", editor, cfg.AnimalHandler.Create)
			protected.GET("/animals/:id", cfg.AnimalHandler.Get)
			protected.PUT("/animals/:id", editor, cfg.AnimalHandler.Update)
			protected.DELETE("/animals/:id", editor, cfg.AnimalHandler.Delete)
			protected.GET("/animals/:id/estadisticas", cfg.AnimalHandler.Stats)
		}

		// Sires
		if cfg.SireHandler != nil {
			protected.GET("/sementales", cfg.SireHandler.List)
			protected.POST("/sementales", editor, cfg.SireHandler.Create)
			protected.GET("/sementales/:id", cfg.SireHandler.Get)
			protected.PUT("/sementales/:id", editor, cfg.SireHandler.Update)
			protected.DELETE("/sementales/:id", editor, cfg.SireHandler.Delete)
			protected.POST("/sementales/:id/actualizar-estadisticas", editor, cfg.SireHandler.RecomputeStatistics)
		}

		// IATF records
		if cfg.IATFHandler != nil {
			protected.GET("/iatf-records", cfg.IATFHandler.List)
			protected.POST("/iatf-records", editor, cfg.IATFHandler.Create)
			protected.GET("/iatf-records/:id", cfg.IATFHandler.Get)
			protected.PUT("/iatf-records/:id", editor, cfg.IATFHandler.Update)
			protected.DELETE("/iatf-records/:id", editor, cfg.IATFHandler.Delete)
			protected.POST("/iatf-records/:id/confirmar-resultado", editor, cfg.IATFHandler.ConfirmResult)
		}

		// Predictions. The fixed paths registered before the :id routes.
		if cfg.PredictionHandler != nil {
			protected.GET("/predictions", cfg.PredictionHandler.List)
			protected.POST("/predictions", editor, cfg.PredictionHandler.Create)
			protected.GET("/predictions/estadisticas/general", cfg.PredictionHandler.Stats)
			protected.GET("/predictions/:id", cfg.PredictionHandler.Get)
			protected.POST("/predictions/:id/validar", editor, cfg.PredictionHandler.Validate)
		}

		// Reports
		if cfg.ReportHandler != nil {
			protected.GET("/reports", cfg.ReportHandler.List)
			protected.GET("/reports/dashboard", cfg.ReportHandler.Dashboard)
			protected.POST("/reports/tasas-prenez", cfg.ReportHandler.PregnancyRates)
			protected.POST("/reports/efectividad-protocolo", cfg.ReportHandler.ProtocolEffectiveness)
			protected.POST("/reports/analisis-semental", cfg.ReportHandler.SireAnalysis)
			protected.POST("/reports/rendimiento-ml", cfg.ReportHandler.ModelPerformance)
			protected.GET("/reports/:id", cfg.ReportHandler.Get)
			protected.DELETE("/reports/:id", cfg.ReportHandler.Delete)
		}
	}

	return r
}
