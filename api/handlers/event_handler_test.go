package handlers_test

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/IvanBrasilico/apirecintos/api/routes"
	"github.com/IvanBrasilico/apirecintos/config"
	"github.com/IvanBrasilico/apirecintos/internal/cache"
	"github.com/IvanBrasilico/apirecintos/internal/models"
	"github.com/IvanBrasilico/apirecintos/internal/repository"
	"github.com/IvanBrasilico/apirecintos/internal/service"
	"github.com/IvanBrasilico/apirecintos/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.ContainerPosition{},
		&models.TruckWeighing{},
		&models.TruckWeighingTrailer{},
		&models.TruckWeighingContainer{},
		&models.NonIntrusiveInspection{},
		&models.InspectionContainer{},
		&models.InspectionTrailer{},
		&models.InspectionManifest{},
		&models.InspectionAttachment{},
		&models.InspectionAlert{},
		&models.InspectionCargoIdentifier{},
		&models.VehicleAccess{},
		&models.VehicleAccessContainer{},
		&models.VehicleAccessTrailer{},
		&models.VehicleAccessInvoice{},
		&models.CargoUnitization{},
		&models.UnitizationLot{},
		&models.LotPosition{},
		&models.LotDamage{},
		&models.PersonAccreditation{},
		&models.PersonPhoto{},
		&models.FacilityArtifact{},
		&models.ArtifactCoordinate{},
		&models.APIKey{},
	))

	repo := repository.NewRepositoryWithDB(db, storage.NewFileStore(t.TempDir()))
	docCache, err := cache.NewRedisCache(config.RedisConfig{Enabled: false})
	require.NoError(t, err)

	log := logrus.New()
	svc := service.NewService(repo, docCache, log)

	cfg := &config.Config{}
	cfg.Server.Mode = gin.TestMode
	cfg.Server.AuthEnabled = false
	cfg.Server.DefaultFacility = "00001"

	router := gin.New()
	routes.SetupRoutes(router, cfg, svc, repo, log)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func positionPayload(externalID string) map[string]interface{} {
	return map[string]interface{}{
		"externalEventId": externalID,
		"occurredAt":      "2025-03-07T10:00:00Z",
		"registeredAt":    "2025-03-07T10:01:00Z",
		"operatorCode":    "11111111111111",
		"registrarCode":   "22222222222222",
		"containerNumber": "MSKU1234567",
		"yardPosition":    "A-12-3",
	}
}

func TestSubmitAndFetchEvent(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/events/containerposition", positionPayload("E1"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeBody(t, w)
	assert.Equal(t, "E1", created["eventId"])
	assert.Equal(t, "Evento incluido", created["title"])
	assert.NotZero(t, created["fingerprint"])

	w = doJSON(t, router, http.MethodGet, "/api/v1/events/containerposition/E1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	doc := decodeBody(t, w)
	assert.Equal(t, "MSKU1234567", doc["containerNumber"])
	assert.Equal(t, "00001", doc["facilityCode"])
	assert.NotContains(t, doc, "id")
	assert.Equal(t, created["fingerprint"], doc["fingerprint"])
}

func TestSubmitDuplicateReturnsConflict(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/events/containerposition", positionPayload("E2"))
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/events/containerposition", positionPayload("E2"))
	require.Equal(t, http.StatusConflict, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Erro de integridade", body["title"])
	assert.Equal(t, "DuplicateEventError", body["type"])
}

func TestSubmitUnknownTypeReturnsBadRequest(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/events/warehousefire", positionPayload("E3"))
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "ValidationError", body["type"])
}

func TestSubmitMissingFieldReturnsBadRequest(t *testing.T) {
	router := newTestRouter(t)

	payload := positionPayload("E4")
	delete(payload, "yardPosition")
	w := doJSON(t, router, http.MethodPost, "/api/v1/events/containerposition", payload)
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Contains(t, body["detail"], "yardPosition")
}

func TestFetchMissingEventReturnsNotFound(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/events/containerposition/NOPE", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Evento ou recurso nao encontrado", body["title"])
}

func TestListEventsSince(t *testing.T) {
	router := newTestRouter(t)

	for i := 0; i < 2; i++ {
		payload := positionPayload(fmt.Sprintf("E5-%d", i))
		payload["occurredAt"] = fmt.Sprintf("2025-03-07T1%d:00:00Z", i)
		w := doJSON(t, router, http.MethodPost, "/api/v1/events/containerposition", payload)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(t, router, http.MethodGet,
		"/api/v1/events/containerposition?since=2025-03-07T11:00:00Z", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var docs []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &docs))
	require.Len(t, docs, 1)
	assert.Equal(t, "E5-1", docs[0]["externalEventId"])

	// Missing cutoff is a caller error
	w = doJSON(t, router, http.MethodGet, "/api/v1/events/containerposition", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegistrationLifecycleOverHTTP(t *testing.T) {
	router := newTestRouter(t)

	photoBytes := []byte("portrait")
	payload := map[string]interface{}{
		"externalEventId": "R1",
		"occurredAt":      "2025-03-07T10:00:00Z",
		"registeredAt":    "2025-03-07T10:01:00Z",
		"operatorCode":    "11111111111111",
		"registrarCode":   "22222222222222",
		"personId":        "12345678901",
		"name":            "Maria da Silva",
		"validFrom":       "2025-01-01T00:00:00Z",
		"validUntil":      "2026-01-01T00:00:00Z",
		"photos": []map[string]interface{}{
			{
				"filename": "maria.png",
				"content":  base64.StdEncoding.EncodeToString(photoBytes),
			},
		},
	}

	w := doJSON(t, router, http.MethodPost, "/api/v1/events/personaccreditation", payload)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Raw attachment download
	w = doJSON(t, router, http.MethodGet,
		"/api/v1/events/personaccreditation/R1/attachments/maria.png", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, photoBytes, w.Body.Bytes())

	// Deactivate once
	w = doJSON(t, router, http.MethodPost,
		"/api/v1/registrations/personaccreditation/R1/deactivate", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodGet, "/api/v1/events/personaccreditation/R1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	doc := decodeBody(t, w)
	assert.Equal(t, false, doc["active"])

	// Second deactivation is rejected
	w = doJSON(t, router, http.MethodPost,
		"/api/v1/registrations/personaccreditation/R1/deactivate", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeactivatePlainEventRejected(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/events/containerposition", positionPayload("E6"))
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodPost,
		"/api/v1/registrations/containerposition/E6/deactivate", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
