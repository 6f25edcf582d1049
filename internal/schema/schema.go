// Package schema is the single source of truth for the shape of every
// event type: its scalar fields, its child collections and the
// uniqueness key. Both the transactional assembler (insert) and the
// document reconstructor (read) are driven by these descriptors, so
// the two directions cannot drift apart. Field sets are declared
// explicitly instead of introspected at runtime.
package schema

import "github.com/IvanBrasilico/apirecintos/internal/models"

// Document is a submitted or reconstructed event payload.
type Document = map[string]interface{}

// Field describes one scalar field of an entity. Name is both the
// JSON key and the canonical name used for fingerprinting.
type Field struct {
	Name     string
	Required bool
}

// Child describes one child collection of an event type.
type Child struct {
	// Key is the JSON key the collection travels under.
	Key string
	// FKColumn is the column on the child table referencing the parent.
	FKColumn string
	// ScalarField, when set, means payload items are bare scalars
	// stored under this field (e.g. the cargo identifier list).
	ScalarField string
	// Attachment marks children owning out-of-band binary content.
	Attachment bool
	Fields     []Field
	// Children holds grandchild collections; ownership chains are at
	// most two levels deep.
	Children []Child
	Make     func() models.ChildRecord
}

// EventType describes one registrable event type.
type EventType struct {
	// Name is the type identifier used in routes and validated
	// against the registry allow-list.
	Name string
	// Registration marks types with an active/inactive lifecycle.
	Registration bool
	Fields       []Field
	Children     []Child
	Make         func() models.Event
}

// EnvelopeFields lists the caller-supplied envelope fields common to
// every event type. facilityCode, originIp and fingerprint are
// server-assigned and therefore not bindable from payloads.
var EnvelopeFields = []Field{
	{Name: "externalEventId", Required: true},
	{Name: "occurredAt", Required: true},
	{Name: "transmittedAt"},
	{Name: "registeredAt", Required: true},
	{Name: "operatorCode", Required: true},
	{Name: "registrarCode", Required: true},
	{Name: "isCorrection"},
	{Name: "priorEventId"},
}

// envelopeDumpKeys are the envelope keys present in reconstructed
// documents, including the server-assigned ones.
var envelopeDumpKeys = []string{
	"externalEventId", "facilityCode", "occurredAt", "transmittedAt",
	"registeredAt", "operatorCode", "registrarCode", "originIp",
	"isCorrection", "priorEventId", "fingerprint",
}
