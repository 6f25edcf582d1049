package schema

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/IvanBrasilico/apirecintos/internal/apperrors"
	"github.com/IvanBrasilico/apirecintos/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEnvelope() Document {
	return Document{
		"externalEventId": "E100",
		"occurredAt":      "2025-03-07T10:00:00Z",
		"registeredAt":    "2025-03-07T10:01:00Z",
		"operatorCode":    "11111111111111",
		"registrarCode":   "22222222222222",
	}
}

func TestLookupKnownTypes(t *testing.T) {
	for _, name := range []string{
		"containerposition", "truckweighing", "inspection",
		"vehicleaccess", "cargounitization", "lotposition",
		"lotdamage", "personaccreditation", "facilityartifact",
	} {
		et, err := Lookup(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, et.Name)
	}
}

func TestLookupUnknownType(t *testing.T) {
	_, err := Lookup("warehousefire")
	require.Error(t, err)
	assert.Equal(t, apperrors.Validation, apperrors.KindOf(err))
}

func TestRegistrationFlags(t *testing.T) {
	for name, want := range map[string]bool{
		"containerposition":   false,
		"personaccreditation": true,
		"facilityartifact":    true,
	} {
		et, err := Lookup(name)
		require.NoError(t, err)
		assert.Equal(t, want, et.Registration, name)
	}
}

func TestBindEventMissingEnvelopeField(t *testing.T) {
	et, err := Lookup("containerposition")
	require.NoError(t, err)

	doc := validEnvelope()
	delete(doc, "operatorCode")
	doc["containerNumber"] = "MSKU1234567"
	doc["yardPosition"] = "A-12-3"

	_, err = BindEvent(et, doc)
	require.Error(t, err)
	assert.Equal(t, apperrors.Validation, apperrors.KindOf(err))
	assert.Contains(t, err.Error(), "operatorCode")
}

func TestBindEventMissingTypeField(t *testing.T) {
	et, err := Lookup("containerposition")
	require.NoError(t, err)

	doc := validEnvelope()
	doc["containerNumber"] = "MSKU1234567"

	_, err = BindEvent(et, doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "yardPosition")
}

func TestBindEventPopulatesEntity(t *testing.T) {
	et, err := Lookup("containerposition")
	require.NoError(t, err)

	doc := validEnvelope()
	doc["containerNumber"] = "MSKU1234567"
	doc["yardPosition"] = "A-12-3"
	doc["tier"] = 2
	doc["underInspection"] = true

	ev, err := BindEvent(et, doc)
	require.NoError(t, err)

	pos, ok := ev.(*models.ContainerPosition)
	require.True(t, ok)
	assert.Equal(t, "MSKU1234567", pos.ContainerNumber)
	assert.Equal(t, "A-12-3", pos.YardPosition)
	assert.Equal(t, 2, pos.Tier)
	assert.True(t, pos.UnderInspection)
	assert.Equal(t, "E100", pos.ExternalEventID)
	assert.Equal(t, time.Date(2025, 3, 7, 10, 0, 0, 0, time.UTC), pos.OccurredAt.UTC())
}

func TestBindEventIgnoresServerAssignedFields(t *testing.T) {
	et, err := Lookup("containerposition")
	require.NoError(t, err)

	doc := validEnvelope()
	doc["containerNumber"] = "MSKU1234567"
	doc["yardPosition"] = "A-12-3"
	// Callers cannot choose their own attribution or fingerprint
	doc["facilityCode"] = "99999"
	doc["originIp"] = "10.0.0.1"
	doc["fingerprint"] = 42

	ev, err := BindEvent(et, doc)
	require.NoError(t, err)

	env := ev.EventEnvelope()
	assert.Empty(t, env.FacilityCode)
	assert.Empty(t, env.OriginIP)
	assert.Zero(t, env.Fingerprint)
}

func TestBindChildObject(t *testing.T) {
	et, err := Lookup("truckweighing")
	require.NoError(t, err)
	trailers := &et.Children[0]

	rec, itemDoc, err := BindChild(trailers, map[string]interface{}{
		"plate": "XYZ9876",
		"tare":  7500,
	})
	require.NoError(t, err)
	trailer := rec.(*models.TruckWeighingTrailer)
	assert.Equal(t, "XYZ9876", trailer.Plate)
	assert.Equal(t, 7500, trailer.Tare)
	assert.Equal(t, "XYZ9876", itemDoc["plate"])
}

func TestBindChildMissingRequired(t *testing.T) {
	et, err := Lookup("truckweighing")
	require.NoError(t, err)
	trailers := &et.Children[0]

	_, _, err = BindChild(trailers, map[string]interface{}{"tare": 7500})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "plate")
}

func TestBindChildBareScalar(t *testing.T) {
	et, err := Lookup("inspection")
	require.NoError(t, err)
	var scalar *Child
	for i := range et.Children {
		if et.Children[i].Key == "cargoIdentifiers" {
			scalar = &et.Children[i]
		}
	}
	require.NotNil(t, scalar)

	rec, _, err := BindChild(scalar, "LOTE-001")
	require.NoError(t, err)
	assert.Equal(t, "LOTE-001", rec.(*models.InspectionCargoIdentifier).Identifier)
}

func TestBindChildRejectsScalarForObjectCollection(t *testing.T) {
	et, err := Lookup("truckweighing")
	require.NoError(t, err)

	_, _, err = BindChild(&et.Children[0], "ABC1234")
	require.Error(t, err)
	assert.Equal(t, apperrors.Validation, apperrors.KindOf(err))
}

func TestDumpRestrictsToDeclaredFields(t *testing.T) {
	et, err := Lookup("containerposition")
	require.NoError(t, err)

	pos := &models.ContainerPosition{
		Record: models.Record{ID: 42},
		Envelope: models.Envelope{
			ExternalEventID: "E100",
			FacilityCode:    "00001",
			OccurredAt:      time.Date(2025, 3, 7, 10, 0, 0, 0, time.UTC),
			RegisteredAt:    time.Date(2025, 3, 7, 10, 1, 0, 0, time.UTC),
			OperatorCode:    "11111111111111",
			RegistrarCode:   "22222222222222",
			OriginIP:        "127.0.0.1",
			Fingerprint:     18446744073709551615,
		},
		ContainerNumber: "MSKU1234567",
		YardPosition:    "A-12-3",
	}

	doc, err := Dump(et, pos)
	require.NoError(t, err)

	assert.Equal(t, "E100", doc["externalEventId"])
	assert.Equal(t, "00001", doc["facilityCode"])
	assert.Equal(t, "MSKU1234567", doc["containerNumber"])
	// Database key never leaks
	assert.NotContains(t, doc, "id")
	assert.NotContains(t, doc, "ID")
	// Full uint64 range survives the dump
	assert.Equal(t, json.Number("18446744073709551615"), doc["fingerprint"])
}

func TestDumpChildOmitsLinkage(t *testing.T) {
	et, err := Lookup("truckweighing")
	require.NoError(t, err)
	trailers := &et.Children[0]

	item, err := DumpChild(trailers, &models.TruckWeighingTrailer{
		Record:     models.Record{ID: 7},
		Plate:      "XYZ9876",
		Tare:       7500,
		WeighingID: 3,
	})
	require.NoError(t, err)

	doc := item.(Document)
	assert.Equal(t, "XYZ9876", doc["plate"])
	assert.NotContains(t, doc, "weighingId")
	assert.NotContains(t, doc, "id")
}

func TestDumpChildScalarCollapses(t *testing.T) {
	et, err := Lookup("inspection")
	require.NoError(t, err)
	var scalar *Child
	for i := range et.Children {
		if et.Children[i].Key == "cargoIdentifiers" {
			scalar = &et.Children[i]
		}
	}
	require.NotNil(t, scalar)

	item, err := DumpChild(scalar, &models.InspectionCargoIdentifier{Identifier: "LOTE-001"})
	require.NoError(t, err)
	assert.Equal(t, "LOTE-001", item)
}
