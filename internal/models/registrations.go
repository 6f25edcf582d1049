package models

import "time"

// PersonAccreditation is a registration granting a person access to
// the facility during a validity window.
type PersonAccreditation struct {
	Record
	Envelope
	Lifecycle
	PersonID        string     `json:"personId" gorm:"column:person_id;index"`
	IDDocument      string     `json:"idDocument"`
	DriverLicense   string     `json:"driverLicense"`
	Name            string     `json:"name" gorm:"index"`
	Phone           string     `json:"phone"`
	RepresentedID   string     `json:"representedId"`
	RepresentedName string     `json:"representedName"`
	Role            string     `json:"role"`
	ValidFrom       *time.Time `json:"validFrom,omitempty"`
	ValidUntil      *time.Time `json:"validUntil,omitempty"`
	Permissions     string     `json:"permissions"`
	Reason          string     `json:"reason"`

	Photos []PersonPhoto `json:"-" gorm:"foreignKey:AccreditationID"`
}

// PersonPhoto is an attachment child of PersonAccreditation.
type PersonPhoto struct {
	Record
	AttachmentMeta
	Content         string `json:"content,omitempty" gorm:"-"`
	AccreditationID uint   `json:"-" gorm:"column:accreditation_id;index"`
}

func (p *PersonPhoto) SetParentID(id uint) { p.AccreditationID = id }

// FacilityArtifact is a registration describing a physical artifact of
// the facility (gate, scale, camera, scanner) and its geolocation.
type FacilityArtifact struct {
	Record
	Envelope
	Lifecycle
	ArtifactType string `json:"artifactType" gorm:"index"`
	Code         string `json:"code" gorm:"index"`

	Coordinates []ArtifactCoordinate `json:"-" gorm:"foreignKey:ArtifactID"`
}

// ArtifactCoordinate is one vertex of the artifact's perimeter.
type ArtifactCoordinate struct {
	Record
	Seq        int     `json:"seq"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	ArtifactID uint    `json:"-" gorm:"column:artifact_id;index"`
}

func (c *ArtifactCoordinate) SetParentID(id uint) { c.ArtifactID = id }
