package schema

import (
	"sort"

	"github.com/IvanBrasilico/apirecintos/internal/apperrors"
	"github.com/IvanBrasilico/apirecintos/internal/models"
)

var registry = map[string]*EventType{}

func register(et *EventType) {
	registry[et.Name] = et
}

// Lookup resolves an event type name against the allow-list. Unknown
// names are a validation error, never a runtime lookup failure.
func Lookup(name string) (*EventType, error) {
	et, ok := registry[name]
	if !ok {
		return nil, apperrors.New(apperrors.Validation,
			"unknown event type %q", name)
	}
	return et, nil
}

// All returns every registered event type, sorted by name.
func All() []*EventType {
	out := make([]*EventType, 0, len(registry))
	for _, et := range registry {
		out = append(out, et)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func init() {
	register(&EventType{
		Name: "containerposition",
		Fields: []Field{
			{Name: "containerNumber", Required: true},
			{Name: "plate"},
			{Name: "yardPosition", Required: true},
			{Name: "tier"},
			{Name: "underInspection"},
			{Name: "requestedBy"},
		},
		Make: func() models.Event { return &models.ContainerPosition{} },
	})

	register(&EventType{
		Name: "truckweighing",
		Fields: []Field{
			{Name: "transportDocument"},
			{Name: "transportDocumentType"},
			{Name: "plate", Required: true},
			{Name: "tare"},
			{Name: "declaredWeight"},
			{Name: "scaleWeight", Required: true},
			{Name: "automaticCapture"},
		},
		Children: []Child{
			{
				Key:      "trailers",
				FKColumn: "weighing_id",
				Fields:   []Field{{Name: "plate", Required: true}, {Name: "tare"}},
				Make:     func() models.ChildRecord { return &models.TruckWeighingTrailer{} },
			},
			{
				Key:      "containers",
				FKColumn: "weighing_id",
				Fields:   []Field{{Name: "containerNumber", Required: true}, {Name: "tare"}},
				Make:     func() models.ChildRecord { return &models.TruckWeighingContainer{} },
			},
		},
		Make: func() models.Event { return &models.TruckWeighing{} },
	})

	register(&EventType{
		Name: "inspection",
		Fields: []Field{
			{Name: "transportDocument"},
			{Name: "transportDocumentType"},
			{Name: "containerNumber"},
			{Name: "plate"},
			{Name: "trailerPlate"},
			{Name: "automaticCapture"},
		},
		Children: []Child{
			{
				Key:      "containers",
				FKColumn: "inspection_id",
				Fields:   []Field{{Name: "containerNumber", Required: true}},
				Make:     func() models.ChildRecord { return &models.InspectionContainer{} },
			},
			{
				Key:      "trailers",
				FKColumn: "inspection_id",
				Fields:   []Field{{Name: "plate", Required: true}},
				Make:     func() models.ChildRecord { return &models.InspectionTrailer{} },
			},
			{
				Key:      "manifests",
				FKColumn: "inspection_id",
				Fields:   []Field{{Name: "number", Required: true}, {Name: "documentType"}},
				Make:     func() models.ChildRecord { return &models.InspectionManifest{} },
			},
			{
				Key:        "attachments",
				FKColumn:   "inspection_id",
				Attachment: true,
				Fields: []Field{
					{Name: "filename", Required: true},
					{Name: "contentType"},
					{Name: "content"},
					{Name: "capturedAt"},
					{Name: "modifiedAt"},
				},
				Children: []Child{
					{
						Key:      "alerts",
						FKColumn: "attachment_id",
						Fields:   []Field{{Name: "seq"}, {Name: "lat"}, {Name: "lng"}},
						Make:     func() models.ChildRecord { return &models.InspectionAlert{} },
					},
				},
				Make: func() models.ChildRecord { return &models.InspectionAttachment{} },
			},
			{
				Key:         "cargoIdentifiers",
				FKColumn:    "inspection_id",
				ScalarField: "identifier",
				Fields:      []Field{{Name: "identifier", Required: true}},
				Make:        func() models.ChildRecord { return &models.InspectionCargoIdentifier{} },
			},
		},
		Make: func() models.Event { return &models.NonIntrusiveInspection{} },
	})

	register(&EventType{
		Name: "vehicleaccess",
		Fields: []Field{
			{Name: "gateId"},
			{Name: "schedulingId"},
			{Name: "operationType"},
			{Name: "transportDocument"},
			{Name: "transportDocumentType"},
			{Name: "plate", Required: true},
			{Name: "ocr"},
			{Name: "driverId"},
			{Name: "driverName"},
			{Name: "carrierId"},
			{Name: "carrierName"},
			{Name: "modal"},
			{Name: "releasedAt"},
			{Name: "scheduledAt"},
		},
		Children: []Child{
			{
				Key:      "containers",
				FKColumn: "access_id",
				Fields: []Field{
					{Name: "containerNumber", Required: true},
					{Name: "empty"},
					{Name: "seals"},
					{Name: "damages"},
					{Name: "destinationPort"},
					{Name: "shipName"},
					{Name: "bookingNumber"},
					{Name: "clientId"},
					{Name: "clientName"},
				},
				Make: func() models.ChildRecord { return &models.VehicleAccessContainer{} },
			},
			{
				Key:      "trailers",
				FKColumn: "access_id",
				Fields: []Field{
					{Name: "plate", Required: true},
					{Name: "empty"},
					{Name: "seals"},
					{Name: "damages"},
				},
				Make: func() models.ChildRecord { return &models.VehicleAccessTrailer{} },
			},
			{
				Key:      "invoices",
				FKColumn: "access_id",
				Fields:   []Field{{Name: "key", Required: true}},
				Make:     func() models.ChildRecord { return &models.VehicleAccessInvoice{} },
			},
		},
		Make: func() models.Event { return &models.VehicleAccess{} },
	})

	register(&EventType{
		Name: "cargounitization",
		Fields: []Field{
			{Name: "transportDocument", Required: true},
			{Name: "transportDocumentType"},
			{Name: "number"},
			{Name: "plate"},
			{Name: "trailerPlate"},
		},
		Children: []Child{
			{
				Key:      "lots",
				FKColumn: "unitization_id",
				Fields:   []Field{{Name: "lotNumber", Required: true}, {Name: "packageCount"}},
				Make:     func() models.ChildRecord { return &models.UnitizationLot{} },
			},
		},
		Make: func() models.Event { return &models.CargoUnitization{} },
	})

	register(&EventType{
		Name: "lotposition",
		Fields: []Field{
			{Name: "lotNumber", Required: true},
			{Name: "position", Required: true},
			{Name: "packageCount"},
		},
		Make: func() models.Event { return &models.LotPosition{} },
	})

	register(&EventType{
		Name: "lotdamage",
		Fields: []Field{
			{Name: "lotNumber", Required: true},
			{Name: "damageDescription", Required: true},
			{Name: "packageCount"},
		},
		Make: func() models.Event { return &models.LotDamage{} },
	})

	register(&EventType{
		Name:         "personaccreditation",
		Registration: true,
		Fields: []Field{
			{Name: "personId", Required: true},
			{Name: "idDocument"},
			{Name: "driverLicense"},
			{Name: "name", Required: true},
			{Name: "phone"},
			{Name: "representedId"},
			{Name: "representedName"},
			{Name: "role"},
			{Name: "validFrom", Required: true},
			{Name: "validUntil", Required: true},
			{Name: "permissions"},
			{Name: "reason"},
		},
		Children: []Child{
			{
				Key:        "photos",
				FKColumn:   "accreditation_id",
				Attachment: true,
				Fields: []Field{
					{Name: "filename", Required: true},
					{Name: "contentType"},
					{Name: "content"},
				},
				Make: func() models.ChildRecord { return &models.PersonPhoto{} },
			},
		},
		Make: func() models.Event { return &models.PersonAccreditation{} },
	})

	register(&EventType{
		Name:         "facilityartifact",
		Registration: true,
		Fields: []Field{
			{Name: "artifactType", Required: true},
			{Name: "code", Required: true},
		},
		Children: []Child{
			{
				Key:      "coordinates",
				FKColumn: "artifact_id",
				Fields:   []Field{{Name: "seq"}, {Name: "lat"}, {Name: "lng"}},
				Make:     func() models.ChildRecord { return &models.ArtifactCoordinate{} },
			},
		},
		Make: func() models.Event { return &models.FacilityArtifact{} },
	})
}
