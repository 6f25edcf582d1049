package routes

import (
	"github.com/IvanBrasilico/apirecintos/api/handlers"
	"github.com/IvanBrasilico/apirecintos/api/middleware"
	"github.com/IvanBrasilico/apirecintos/config"
	"github.com/IvanBrasilico/apirecintos/internal/models"
	"github.com/IvanBrasilico/apirecintos/internal/repository"
	"github.com/IvanBrasilico/apirecintos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SetupRoutes sets up all the routes for the server. Reads require a
// viewer key, writes a writer key; with authentication disabled every
// request is attributed to the configured default facility.
func SetupRoutes(r *gin.Engine, cfg *config.Config, svc service.Service, repo repository.Repository, log *logrus.Logger) {
	// Health check
	r.GET("/health", handlers.HealthCheck)

	viewer := middleware.StaticFacility(cfg.Server.DefaultFacility)
	writer := viewer
	if cfg.Server.AuthEnabled {
		viewer = middleware.FacilityAuth(repo, log, models.ViewerLevel)
		writer = middleware.FacilityAuth(repo, log, models.WriterLevel)
	}

	// API routes
	api := r.Group("/api/v1")

	eventHandler := handlers.NewEventHandler(svc, log)
	events := api.Group("/events")
	{
		events.POST("/:eventType", writer, eventHandler.Submit)
		events.GET("/:eventType", viewer, eventHandler.List)
		events.GET("/:eventType/:externalEventId", viewer, eventHandler.Get)
		events.GET("/:eventType/:externalEventId/attachments/:filename", viewer, eventHandler.GetAttachment)
	}

	registrationHandler := handlers.NewRegistrationHandler(svc, log)
	registrations := api.Group("/registrations")
	{
		registrations.POST("/:eventType/:externalEventId/deactivate", writer, registrationHandler.Deactivate)
	}
}
