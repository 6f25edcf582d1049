// Package service implements the application operations exposed over
// HTTP: submit, fetch, list, deactivate and attachment retrieval. It
// resolves event types against the registry, delegates persistence to
// the repository and keeps the document cache coherent.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/IvanBrasilico/apirecintos/internal/apperrors"
	"github.com/IvanBrasilico/apirecintos/internal/cache"
	"github.com/IvanBrasilico/apirecintos/internal/repository"
	"github.com/IvanBrasilico/apirecintos/internal/schema"

	"github.com/sirupsen/logrus"
)

// Receipt is the acknowledgement returned after a successful submission.
type Receipt struct {
	EventID     string `json:"eventId"`
	Fingerprint uint64 `json:"fingerprint"`
}

// Service provides the event reporting operations
type Service interface {
	SubmitEvent(ctx context.Context, typeName string, doc schema.Document, sub repository.Submission) (*Receipt, error)
	GetEvent(ctx context.Context, typeName, facility, externalID string) (schema.Document, error)
	ListEvents(ctx context.Context, typeName, facility string, since time.Time, limit int) ([]schema.Document, error)
	DeactivateRegistration(ctx context.Context, typeName, facility, externalID string) error
	GetAttachment(ctx context.Context, typeName, facility, externalID, filename string) (*repository.FileContent, error)
}

type service struct {
	repo  repository.Repository
	cache cache.DocumentCache
	log   *logrus.Logger
}

// NewService creates the application service.
func NewService(repo repository.Repository, docCache cache.DocumentCache, log *logrus.Logger) Service {
	return &service{repo: repo, cache: docCache, log: log}
}

// SubmitEvent validates and persists one event document and returns
// its receipt. A stale cached document for the same key is dropped so
// corrections become visible immediately.
func (s *service) SubmitEvent(ctx context.Context, typeName string, doc schema.Document, sub repository.Submission) (*Receipt, error) {
	et, err := schema.Lookup(typeName)
	if err != nil {
		return nil, err
	}
	ev, err := s.repo.InsertEvent(ctx, et, doc, sub)
	if err != nil {
		return nil, err
	}
	env := ev.EventEnvelope()
	if err := s.cache.DeleteDocument(ctx, et.Name, env.FacilityCode, env.ExternalEventID); err != nil {
		s.log.WithError(err).Warn("failed to invalidate cached document")
	}
	s.log.WithFields(logrus.Fields{
		"eventType":       et.Name,
		"facilityCode":    env.FacilityCode,
		"externalEventId": env.ExternalEventID,
	}).Info("event persisted")
	return &Receipt{EventID: env.ExternalEventID, Fingerprint: env.Fingerprint}, nil
}

// GetEvent returns the reconstructed document of one event, reading
// through the cache.
func (s *service) GetEvent(ctx context.Context, typeName, facility, externalID string) (schema.Document, error) {
	et, err := schema.Lookup(typeName)
	if err != nil {
		return nil, err
	}
	if doc, err := s.cache.GetDocument(ctx, et.Name, facility, externalID); err == nil {
		return doc, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		s.log.WithError(err).Warn("document cache read failed")
	}
	doc, err := s.repo.LoadEvent(ctx, et, facility, externalID)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetDocument(ctx, et.Name, facility, externalID, doc); err != nil {
		s.log.WithError(err).Warn("document cache write failed")
	}
	return doc, nil
}

// ListEvents returns the facility's events of one type occurred at or
// after the cutoff.
func (s *service) ListEvents(ctx context.Context, typeName, facility string, since time.Time, limit int) ([]schema.Document, error) {
	et, err := schema.Lookup(typeName)
	if err != nil {
		return nil, err
	}
	return s.repo.ListEventsSince(ctx, et, facility, since, limit)
}

// DeactivateRegistration ends a registration's active period and drops
// its cached document.
func (s *service) DeactivateRegistration(ctx context.Context, typeName, facility, externalID string) error {
	et, err := schema.Lookup(typeName)
	if err != nil {
		return err
	}
	if !et.Registration {
		return apperrors.New(apperrors.Validation,
			"event type %s is not a registration", typeName)
	}
	if err := s.repo.DeactivateRegistration(ctx, et, facility, externalID); err != nil {
		return err
	}
	if err := s.cache.DeleteDocument(ctx, et.Name, facility, externalID); err != nil {
		s.log.WithError(err).Warn("failed to invalidate cached document")
	}
	s.log.WithFields(logrus.Fields{
		"eventType":       et.Name,
		"facilityCode":    facility,
		"externalEventId": externalID,
	}).Info("registration deactivated")
	return nil
}

// GetAttachment returns the raw bytes and content type of one stored
// attachment.
func (s *service) GetAttachment(ctx context.Context, typeName, facility, externalID, filename string) (*repository.FileContent, error) {
	et, err := schema.Lookup(typeName)
	if err != nil {
		return nil, err
	}
	return s.repo.LoadAttachment(ctx, et, facility, externalID, filename)
}
