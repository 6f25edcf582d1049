package models

import (
	"fmt"
	"time"
)

// Record is the base for every persisted row. The generated key and
// the bookkeeping timestamps never appear in documents returned to
// callers.
type Record struct {
	ID        uint      `json:"-" gorm:"primarykey"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// RecordID returns the generated primary key.
func (r *Record) RecordID() uint { return r.ID }

// Envelope carries the fields common to every reported event. It is
// embedded by each event type; the pair (FacilityCode,
// ExternalEventID) is the idempotency key, enforced by a composite
// unique index on each event table.
type Envelope struct {
	ExternalEventID string     `json:"externalEventId" gorm:"column:external_event_id;uniqueIndex:,composite:facility_event"`
	FacilityCode    string     `json:"facilityCode" gorm:"column:facility_code;uniqueIndex:,composite:facility_event"`
	OccurredAt      time.Time  `json:"occurredAt" gorm:"index"`
	TransmittedAt   *time.Time `json:"transmittedAt,omitempty"`
	RegisteredAt    time.Time  `json:"registeredAt" gorm:"index"`
	OperatorCode    string     `json:"operatorCode"`
	RegistrarCode   string     `json:"registrarCode"`
	OriginIP        string     `json:"originIp" gorm:"column:origin_ip"`
	IsCorrection    bool       `json:"isCorrection"`
	PriorEventID    *string    `json:"priorEventId,omitempty" gorm:"column:prior_event_id"`
	Fingerprint     uint64     `json:"fingerprint"`
}

// Envelope makes any struct embedding it satisfy the Event interface.
func (e *Envelope) EventEnvelope() *Envelope { return e }

// Lifecycle is embedded by registration ("cadastro") entities, the
// only event variant with a mutable state: active at creation, with a
// single terminal transition to inactive.
type Lifecycle struct {
	Active  bool       `json:"active"`
	EndedAt *time.Time `json:"endedAt,omitempty"`
}

// Lifecycle makes any struct embedding it satisfy Registration.
func (l *Lifecycle) LifecycleState() *Lifecycle { return l }

// Deactivate performs the terminal transition. A registration may be
// deactivated at most once.
func (l *Lifecycle) Deactivate(now time.Time) error {
	if !l.Active {
		return fmt.Errorf("registration already deactivated at %s",
			l.EndedAt.Format("02/01/2006 15:04"))
	}
	l.Active = false
	l.EndedAt = &now
	return nil
}

// AttachmentMeta is embedded by child records that own an out-of-band
// binary payload. Only the filename and content type are persisted;
// the bytes live on the blob store under a path derived from the
// parent event's facility and occurrence date.
type AttachmentMeta struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
}

// Meta makes any struct embedding it satisfy AttachmentRecord.
func (m *AttachmentMeta) Meta() *AttachmentMeta { return m }

// Event is implemented by every parent event entity.
type Event interface {
	RecordID() uint
	EventEnvelope() *Envelope
}

// Registration is an Event with an active/inactive lifecycle.
type Registration interface {
	Event
	LifecycleState() *Lifecycle
}

// ChildRecord is a row owned by exactly one parent (an event, or an
// intermediate child for the two-level ownership chains).
type ChildRecord interface {
	RecordID() uint
	SetParentID(id uint)
}

// AttachmentRecord is a ChildRecord carrying binary content.
type AttachmentRecord interface {
	ChildRecord
	Meta() *AttachmentMeta
}

// AuthorizationLevel represents the level of access for an API key.
type AuthorizationLevel int

const (
	// ViewerLevel grants read-only access.
	ViewerLevel AuthorizationLevel = 1
	// WriterLevel grants read-write access.
	WriterLevel AuthorizationLevel = 2
)

// APIKey binds a bearer token to a reporting facility. The verified
// facility code is the trust boundary: everything the core persists
// or returns is scoped by it.
type APIKey struct {
	Record
	Key                string             `json:"key" gorm:"uniqueIndex"`
	Name               string             `json:"name"`
	FacilityCode       string             `json:"facilityCode" gorm:"column:facility_code;index"`
	AuthorizationLevel AuthorizationLevel `json:"authorizationLevel"`
	Active             bool               `json:"active"`
	ExpiresAt          *time.Time         `json:"expiresAt"`
	LastUsedAt         *time.Time         `json:"lastUsedAt"`
}
