// api/handlers/registration_handler.go
package handlers

import (
	"net/http"

	"github.com/IvanBrasilico/apirecintos/api/middleware"
	"github.com/IvanBrasilico/apirecintos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RegistrationHandler handles registration lifecycle requests
type RegistrationHandler struct {
	service service.Service
	log     *logrus.Logger
}

// NewRegistrationHandler creates a new RegistrationHandler instance
func NewRegistrationHandler(svc service.Service, log *logrus.Logger) *RegistrationHandler {
	return &RegistrationHandler{
		service: svc,
		log:     log,
	}
}

// Deactivate ends a registration's active period
func (h *RegistrationHandler) Deactivate(c *gin.Context) {
	err := h.service.DeactivateRegistration(
		c.Request.Context(),
		c.Param("eventType"),
		middleware.FacilityFromContext(c),
		c.Param("externalEventId"),
	)
	if err != nil {
		h.log.WithError(err).Warn("Failed to deactivate registration")
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, problem{
		Status: http.StatusOK,
		Title:  titleFor(http.StatusOK),
		Detail: "registro desativado",
	})
}
