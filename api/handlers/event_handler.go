// api/handlers/event_handler.go
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/IvanBrasilico/apirecintos/api/middleware"
	"github.com/IvanBrasilico/apirecintos/internal/apperrors"
	"github.com/IvanBrasilico/apirecintos/internal/repository"
	"github.com/IvanBrasilico/apirecintos/internal/schema"
	"github.com/IvanBrasilico/apirecintos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const defaultListLimit = 100

// EventHandler handles event submission and retrieval requests
type EventHandler struct {
	service service.Service
	log     *logrus.Logger
}

// NewEventHandler creates a new EventHandler instance
func NewEventHandler(svc service.Service, log *logrus.Logger) *EventHandler {
	return &EventHandler{
		service: svc,
		log:     log,
	}
}

// receiptResponse acknowledges a persisted event with its fingerprint.
type receiptResponse struct {
	Status      int    `json:"status"`
	Title       string `json:"title"`
	EventID     string `json:"eventId"`
	Fingerprint uint64 `json:"fingerprint"`
}

// Submit handles event submission
func (h *EventHandler) Submit(c *gin.Context) {
	var doc schema.Document
	if err := c.ShouldBindJSON(&doc); err != nil {
		h.log.WithError(err).Warn("Invalid event payload")
		respondError(c, apperrors.Wrap(apperrors.Validation, err, "malformed JSON body"))
		return
	}

	sub := repository.Submission{
		FacilityCode: middleware.FacilityFromContext(c),
		OriginIP:     c.ClientIP(),
	}
	receipt, err := h.service.SubmitEvent(c.Request.Context(), c.Param("eventType"), doc, sub)
	if err != nil {
		h.log.WithError(err).Warn("Failed to persist event")
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, receiptResponse{
		Status:      http.StatusCreated,
		Title:       titleFor(http.StatusCreated),
		EventID:     receipt.EventID,
		Fingerprint: receipt.Fingerprint,
	})
}

// Get handles retrieval of one event by its external id
func (h *EventHandler) Get(c *gin.Context) {
	doc, err := h.service.GetEvent(
		c.Request.Context(),
		c.Param("eventType"),
		middleware.FacilityFromContext(c),
		c.Param("externalEventId"),
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// List handles retrieval of events occurred since a cutoff
func (h *EventHandler) List(c *gin.Context) {
	sinceStr := c.Query("since")
	if sinceStr == "" {
		respondError(c, apperrors.New(apperrors.Validation,
			"query parameter 'since' is required"))
		return
	}
	since, err := time.Parse(time.RFC3339, sinceStr)
	if err != nil {
		respondError(c, apperrors.Wrap(apperrors.Validation, err,
			"'since' must be an RFC3339 timestamp"))
		return
	}

	limit := defaultListLimit
	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			respondError(c, apperrors.New(apperrors.Validation,
				"'limit' must be a positive integer"))
			return
		}
	}

	docs, err := h.service.ListEvents(
		c.Request.Context(),
		c.Param("eventType"),
		middleware.FacilityFromContext(c),
		since,
		limit,
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

// GetAttachment serves the raw bytes of one stored attachment
func (h *EventHandler) GetAttachment(c *gin.Context) {
	file, err := h.service.GetAttachment(
		c.Request.Context(),
		c.Param("eventType"),
		middleware.FacilityFromContext(c),
		c.Param("externalEventId"),
		c.Param("filename"),
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
