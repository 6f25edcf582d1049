package service

import (
	"context"
	"testing"
	"time"

	"github.com/IvanBrasilico/apirecintos/internal/apperrors"
	"github.com/IvanBrasilico/apirecintos/internal/cache"
	"github.com/IvanBrasilico/apirecintos/internal/models"
	"github.com/IvanBrasilico/apirecintos/internal/repository"
	"github.com/IvanBrasilico/apirecintos/internal/schema"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock repository for testing
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) InsertEvent(ctx context.Context, et *schema.EventType, doc schema.Document, sub repository.Submission) (models.Event, error) {
	args := m.Called(ctx, et, doc, sub)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.Event), args.Error(1)
}

func (m *MockRepository) LoadEvent(ctx context.Context, et *schema.EventType, facility, externalID string) (schema.Document, error) {
	args := m.Called(ctx, et, facility, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(schema.Document), args.Error(1)
}

func (m *MockRepository) ListEventsSince(ctx context.Context, et *schema.EventType, facility string, since time.Time, limit int) ([]schema.Document, error) {
	args := m.Called(ctx, et, facility, since, limit)
	return args.Get(0).([]schema.Document), args.Error(1)
}

func (m *MockRepository) DeactivateRegistration(ctx context.Context, et *schema.EventType, facility, externalID string) error {
	args := m.Called(ctx, et, facility, externalID)
	return args.Error(0)
}

func (m *MockRepository) LoadAttachment(ctx context.Context, et *schema.EventType, facility, externalID, filename string) (*repository.FileContent, error) {
	args := m.Called(ctx, et, facility, externalID, filename)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.FileContent), args.Error(1)
}

func (m *MockRepository) CreateAPIKey(ctx context.Context, apiKey *models.APIKey) error {
	args := m.Called(ctx, apiKey)
	return args.Error(0)
}

func (m *MockRepository) GetAPIKeyByKey(ctx context.Context, key string) (*models.APIKey, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.APIKey), args.Error(1)
}

func (m *MockRepository) UpdateAPIKey(ctx context.Context, apiKey *models.APIKey) error {
	args := m.Called(ctx, apiKey)
	return args.Error(0)
}

func (m *MockRepository) ListAPIKeys(ctx context.Context) ([]*models.APIKey, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.APIKey), args.Error(1)
}

func (m *MockRepository) RevokeAPIKey(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Mock document cache for testing
type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetDocument(ctx context.Context, eventType, facility, externalID string) (map[string]interface{}, error) {
	args := m.Called(ctx, eventType, facility, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]interface{}), args.Error(1)
}

func (m *MockCache) SetDocument(ctx context.Context, eventType, facility, externalID string, doc map[string]interface{}) error {
	args := m.Called(ctx, eventType, facility, externalID, doc)
	return args.Error(0)
}

func (m *MockCache) DeleteDocument(ctx context.Context, eventType, facility, externalID string) error {
	args := m.Called(ctx, eventType, facility, externalID)
	return args.Error(0)
}

func (m *MockCache) Close() error {
	args := m.Called()
	return args.Error(0)
}

func newTestService() (Service, *MockRepository, *MockCache) {
	repo := new(MockRepository)
	docCache := new(MockCache)
	log := logrus.New()
	return NewService(repo, docCache, log), repo, docCache
}

var testSub = repository.Submission{FacilityCode: "00001", OriginIP: "127.0.0.1"}

func TestSubmitEventUnknownType(t *testing.T) {
	svc, repo, _ := newTestService()

	_, err := svc.SubmitEvent(context.Background(), "warehousefire", schema.Document{}, testSub)
	require.Error(t, err)
	assert.Equal(t, apperrors.Validation, apperrors.KindOf(err))
	repo.AssertNotCalled(t, "InsertEvent")
}

func TestSubmitEventInvalidatesCache(t *testing.T) {
	svc, repo, docCache := newTestService()

	ev := &models.ContainerPosition{
		Envelope: models.Envelope{
			ExternalEventID: "E1",
			FacilityCode:    "00001",
			Fingerprint:     12345,
		},
	}
	repo.On("InsertEvent", mock.Anything, mock.Anything, mock.Anything, testSub).Return(ev, nil)
	docCache.On("DeleteDocument", mock.Anything, "containerposition", "00001", "E1").Return(nil)

	receipt, err := svc.SubmitEvent(context.Background(), "containerposition",
		schema.Document{"externalEventId": "E1"}, testSub)
	require.NoError(t, err)
	assert.Equal(t, "E1", receipt.EventID)
	assert.Equal(t, uint64(12345), receipt.Fingerprint)
	docCache.AssertExpectations(t)
}

func TestSubmitEventRepositoryError(t *testing.T) {
	svc, repo, docCache := newTestService()

	repo.On("InsertEvent", mock.Anything, mock.Anything, mock.Anything, testSub).
		Return(nil, apperrors.New(apperrors.Duplicate, "already reported"))

	_, err := svc.SubmitEvent(context.Background(), "containerposition",
		schema.Document{}, testSub)
	require.Error(t, err)
	assert.Equal(t, apperrors.Duplicate, apperrors.KindOf(err))
	docCache.AssertNotCalled(t, "DeleteDocument")
}

func TestGetEventCacheHit(t *testing.T) {
	svc, repo, docCache := newTestService()

	cached := map[string]interface{}{"externalEventId": "E1"}
	docCache.On("GetDocument", mock.Anything, "containerposition", "00001", "E1").Return(cached, nil)

	doc, err := svc.GetEvent(context.Background(), "containerposition", "00001", "E1")
	require.NoError(t, err)
	assert.Equal(t, "E1", doc["externalEventId"])
	repo.AssertNotCalled(t, "LoadEvent")
}

func TestGetEventCacheMissReadsThrough(t *testing.T) {
	svc, repo, docCache := newTestService()

	loaded := schema.Document{"externalEventId": "E1"}
	docCache.On("GetDocument", mock.Anything, "containerposition", "00001", "E1").
		Return(nil, cache.ErrMiss)
	repo.On("LoadEvent", mock.Anything, mock.Anything, "00001", "E1").Return(loaded, nil)
	docCache.On("SetDocument", mock.Anything, "containerposition", "00001", "E1",
		map[string]interface{}(loaded)).Return(nil)

	doc, err := svc.GetEvent(context.Background(), "containerposition", "00001", "E1")
	require.NoError(t, err)
	assert.Equal(t, "E1", doc["externalEventId"])
	docCache.AssertExpectations(t)
}

func TestDeactivateNonRegistrationType(t *testing.T) {
	svc, repo, _ := newTestService()

	err := svc.DeactivateRegistration(context.Background(), "containerposition", "00001", "E1")
	require.Error(t, err)
	assert.Equal(t, apperrors.Validation, apperrors.KindOf(err))
	repo.AssertNotCalled(t, "DeactivateRegistration")
}

func TestDeactivateRegistrationInvalidatesCache(t *testing.T) {
	svc, repo, docCache := newTestService()

	repo.On("DeactivateRegistration", mock.Anything, mock.Anything, "00001", "E1").Return(nil)
	docCache.On("DeleteDocument", mock.Anything, "personaccreditation", "00001", "E1").Return(nil)

	err := svc.DeactivateRegistration(context.Background(), "personaccreditation", "00001", "E1")
	require.NoError(t, err)
	docCache.AssertExpectations(t)
}
