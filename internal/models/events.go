package models

import "time"

// ContainerPosition reports where a container was placed in the yard.
type ContainerPosition struct {
	Record
	Envelope
	ContainerNumber string `json:"containerNumber"`
	Plate           string `json:"plate"`
	YardPosition    string `json:"yardPosition"`
	Tier            int    `json:"tier"`
	UnderInspection bool   `json:"underInspection"`
	RequestedBy     string `json:"requestedBy"`
}

// TruckWeighing reports a loaded-vehicle scale passage.
type TruckWeighing struct {
	Record
	Envelope
	TransportDocument     string `json:"transportDocument"`
	TransportDocumentType string `json:"transportDocumentType"`
	Plate                 string `json:"plate"`
	Tare                  int    `json:"tare"`
	DeclaredWeight        int    `json:"declaredWeight"`
	ScaleWeight           int    `json:"scaleWeight"`
	AutomaticCapture      bool   `json:"automaticCapture"`

	Trailers   []TruckWeighingTrailer   `json:"-" gorm:"foreignKey:WeighingID"`
	Containers []TruckWeighingContainer `json:"-" gorm:"foreignKey:WeighingID"`
}

type TruckWeighingTrailer struct {
	Record
	Plate      string `json:"plate"`
	Tare       int    `json:"tare"`
	WeighingID uint   `json:"-" gorm:"column:weighing_id;index"`
}

func (t *TruckWeighingTrailer) SetParentID(id uint) { t.WeighingID = id }

type TruckWeighingContainer struct {
	Record
	ContainerNumber string `json:"containerNumber"`
	Tare            int    `json:"tare"`
	WeighingID      uint   `json:"-" gorm:"column:weighing_id;index"`
}

func (c *TruckWeighingContainer) SetParentID(id uint) { c.WeighingID = id }

// NonIntrusiveInspection reports a scanner passage, with the richest
// set of child collections: containers, trailers, manifests, scanned
// images (attachments, each owning alert coordinates) and the bare
// list of cargo identifiers covered by the scan.
type NonIntrusiveInspection struct {
	Record
	Envelope
	TransportDocument     string `json:"transportDocument"`
	TransportDocumentType string `json:"transportDocumentType"`
	ContainerNumber       string `json:"containerNumber"`
	Plate                 string `json:"plate"`
	TrailerPlate          string `json:"trailerPlate"`
	AutomaticCapture      bool   `json:"automaticCapture"`

	Containers       []InspectionContainer       `json:"-" gorm:"foreignKey:InspectionID"`
	Trailers         []InspectionTrailer         `json:"-" gorm:"foreignKey:InspectionID"`
	Manifests        []InspectionManifest        `json:"-" gorm:"foreignKey:InspectionID"`
	Attachments      []InspectionAttachment      `json:"-" gorm:"foreignKey:InspectionID"`
	CargoIdentifiers []InspectionCargoIdentifier `json:"-" gorm:"foreignKey:InspectionID"`
}

type InspectionContainer struct {
	Record
	ContainerNumber string `json:"containerNumber"`
	InspectionID    uint   `json:"-" gorm:"column:inspection_id;index"`
}

func (c *InspectionContainer) SetParentID(id uint) { c.InspectionID = id }

type InspectionTrailer struct {
	Record
	Plate        string `json:"plate"`
	InspectionID uint   `json:"-" gorm:"column:inspection_id;index"`
}

func (t *InspectionTrailer) SetParentID(id uint) { t.InspectionID = id }

type InspectionManifest struct {
	Record
	Number       string `json:"number"`
	DocumentType string `json:"documentType"`
	InspectionID uint   `json:"-" gorm:"column:inspection_id;index"`
}

func (m *InspectionManifest) SetParentID(id uint) { m.InspectionID = id }

// InspectionAttachment is a scanned image. Content is transported as
// base64 in documents but never persisted in the row.
type InspectionAttachment struct {
	Record
	AttachmentMeta
	CapturedAt   *time.Time `json:"capturedAt,omitempty"`
	ModifiedAt   *time.Time `json:"modifiedAt,omitempty"`
	Content      string     `json:"content,omitempty" gorm:"-"`
	InspectionID uint       `json:"-" gorm:"column:inspection_id;index"`

	Alerts []InspectionAlert `json:"-" gorm:"foreignKey:AttachmentID"`
}

func (a *InspectionAttachment) SetParentID(id uint) { a.InspectionID = id }

// InspectionAlert is a coordinate flagged by the scanner on one image.
type InspectionAlert struct {
	Record
	Seq          int     `json:"seq"`
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	AttachmentID uint    `json:"-" gorm:"column:attachment_id;index"`
}

func (a *InspectionAlert) SetParentID(id uint) { a.AttachmentID = id }

// InspectionCargoIdentifier stores one entry of the bare-string cargo
// list submitted under "cargoIdentifiers".
type InspectionCargoIdentifier struct {
	Record
	Identifier   string `json:"identifier"`
	InspectionID uint   `json:"-" gorm:"column:inspection_id;index"`
}

func (i *InspectionCargoIdentifier) SetParentID(id uint) { i.InspectionID = id }

// VehicleAccess reports a vehicle passing a facility gate.
type VehicleAccess struct {
	Record
	Envelope
	GateID                string     `json:"gateId"`
	SchedulingID          string     `json:"schedulingId"`
	OperationType         string     `json:"operationType"`
	TransportDocument     string     `json:"transportDocument"`
	TransportDocumentType string     `json:"transportDocumentType"`
	Plate                 string     `json:"plate"`
	OCR                   bool       `json:"ocr"`
	DriverID              string     `json:"driverId"`
	DriverName            string     `json:"driverName"`
	CarrierID             string     `json:"carrierId"`
	CarrierName           string     `json:"carrierName"`
	Modal                 string     `json:"modal"`
	ReleasedAt            *time.Time `json:"releasedAt,omitempty"`
	ScheduledAt           *time.Time `json:"scheduledAt,omitempty"`

	Containers []VehicleAccessContainer `json:"-" gorm:"foreignKey:AccessID"`
	Trailers   []VehicleAccessTrailer   `json:"-" gorm:"foreignKey:AccessID"`
	Invoices   []VehicleAccessInvoice   `json:"-" gorm:"foreignKey:AccessID"`
}

type VehicleAccessContainer struct {
	Record
	ContainerNumber string `json:"containerNumber"`
	Empty           bool   `json:"empty"`
	Seals           string `json:"seals"`
	Damages         string `json:"damages"`
	DestinationPort string `json:"destinationPort"`
	ShipName        string `json:"shipName"`
	BookingNumber   string `json:"bookingNumber"`
	ClientID        string `json:"clientId"`
	ClientName      string `json:"clientName"`
	AccessID        uint   `json:"-" gorm:"column:access_id;index"`
}

func (c *VehicleAccessContainer) SetParentID(id uint) { c.AccessID = id }

type VehicleAccessTrailer struct {
	Record
	Plate    string `json:"plate"`
	Empty    bool   `json:"empty"`
	Seals    string `json:"seals"`
	Damages  string `json:"damages"`
	AccessID uint   `json:"-" gorm:"column:access_id;index"`
}

func (t *VehicleAccessTrailer) SetParentID(id uint) { t.AccessID = id }

// VehicleAccessInvoice holds one electronic invoice access key.
type VehicleAccessInvoice struct {
	Record
	Key      string `json:"key"`
	AccessID uint   `json:"-" gorm:"column:access_id;index"`
}

func (i *VehicleAccessInvoice) SetParentID(id uint) { i.AccessID = id }

// CargoUnitization reports loose lots being consolidated into one
// transport unit.
type CargoUnitization struct {
	Record
	Envelope
	TransportDocument     string `json:"transportDocument"`
	TransportDocumentType string `json:"transportDocumentType"`
	Number                string `json:"number"`
	Plate                 string `json:"plate"`
	TrailerPlate          string `json:"trailerPlate"`

	Lots []UnitizationLot `json:"-" gorm:"foreignKey:UnitizationID"`
}

type UnitizationLot struct {
	Record
	LotNumber     string `json:"lotNumber"`
	PackageCount  int    `json:"packageCount"`
	UnitizationID uint   `json:"-" gorm:"column:unitization_id;index"`
}

func (l *UnitizationLot) SetParentID(id uint) { l.UnitizationID = id }

// LotPosition reports where a loose cargo lot was placed.
type LotPosition struct {
	Record
	Envelope
	LotNumber    int    `json:"lotNumber"`
	Position     string `json:"position"`
	PackageCount int    `json:"packageCount"`
}

// LotDamage reports damage found on a stored lot.
type LotDamage struct {
	Record
	Envelope
	LotNumber         int    `json:"lotNumber"`
	DamageDescription string `json:"damageDescription"`
	PackageCount      int    `json:"packageCount"`
}
