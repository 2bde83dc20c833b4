package models

import "time"

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

type StationOwner struct {
	ID                 string             `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID             string             `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	CompanyName        string             `gorm:"size:255;not null" json:"company_name"`
	RegistrationNumber *string            `gorm:"size:100" json:"business_registration_number,omitempty"`
	VerificationStatus VerificationStatus `gorm:"size:20;not null;default:pending" json:"verification_status"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
	VerifiedAt         *time.Time         `json:"verified_at,omitempty"`
}

type StationStatus string

const (
	StationOperational StationStatus = "operational"
	StationMaintenance StationStatus = "maintenance"
	StationClosed      StationStatus = "closed"
)

type ChargingStation struct {
	ID                  string        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OwnerID             string        `gorm:"type:uuid;index;not null" json:"owner_id"`
	Name                string        `gorm:"size:255;not null" json:"name"`
	Address             string        `gorm:"size:255;not null" json:"address"`
	City                string        `gorm:"size:100;not null" json:"city"`
	State               string        `gorm:"size:100" json:"state"`
	ZipCode             string        `gorm:"size:20" json:"zip_code"`
	Country             string        `gorm:"size:100;not null;default:Ethiopia" json:"country"`
	Latitude            *float64      `json:"latitude,omitempty"`
	Longitude           *float64      `json:"longitude,omitempty"`
	Description         *string       `json:"description,omitempty"`
	IsActive            bool          `gorm:"not null;default:true" json:"is_active"`
	IsPublic            bool          `gorm:"not null;default:true" json:"is_public"`
	Status              StationStatus `gorm:"size:20;not null;default:operational" json:"status"`
	TotalConnectors     int           `gorm:"not null;default:0" json:"total_connectors"`
	AvailableConnectors int           `gorm:"not null;default:0" json:"available_connectors"`
	Rating              float64       `gorm:"not null;default:0" json:"rating"`
	RatingCount         int           `gorm:"not null;default:0" json:"rating_count"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`

	Owner      *StationOwner       `gorm:"foreignKey:OwnerID" json:"-"`
	Connectors []ChargingConnector `gorm:"foreignKey:StationID;constraint:OnDelete:CASCADE" json:"-"`
}

func (s StationStatus) Valid() bool {
	switch s {
	case StationOperational, StationMaintenance, StationClosed:
		return true
	}
	return false
}

type ConnectorType string

const (
	ConnectorType1   ConnectorType = "type1"
	ConnectorType2   ConnectorType = "type2"
	ConnectorCCS1    ConnectorType = "ccs1"
	ConnectorCCS2    ConnectorType = "ccs2"
	ConnectorCHAdeMO ConnectorType = "chademo"
	ConnectorTesla   ConnectorType = "tesla"
	ConnectorOther   ConnectorType = "other"
	ConnectorNone    ConnectorType = "none"
)

var connectorTypeNames = map[ConnectorType]string{
	ConnectorType1:   "Type 1 (J1772)",
	ConnectorType2:   "Type 2 (Mennekes)",
	ConnectorCCS1:    "CCS Combo 1",
	ConnectorCCS2:    "CCS Combo 2",
	ConnectorCHAdeMO: "CHAdeMO",
	ConnectorTesla:   "Tesla",
	ConnectorOther:   "Other",
	ConnectorNone:    "None",
}

func (c ConnectorType) Valid() bool {
	_, ok := connectorTypeNames[c]
	return ok
}

func (c ConnectorType) Display() string { return connectorTypeNames[c] }

type ConnectorStatus string

const (
	ConnectorAvailable   ConnectorStatus = "available"
	ConnectorOccupied    ConnectorStatus = "occupied"
	ConnectorMaintenance ConnectorStatus = "maintenance"
	ConnectorOutOfOrder  ConnectorStatus = "out_of_order"
)

func (s ConnectorStatus) Valid() bool {
	switch s {
	case ConnectorAvailable, ConnectorOccupied, ConnectorMaintenance, ConnectorOutOfOrder:
		return true
	}
	return false
}

// ChargingConnector is a single charging port. QRCodeToken, QRCodeImage and
// QRPaymentURL are written once at creation.
type ChargingConnector struct {
	ID                string          `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	StationID         string          `gorm:"type:uuid;index;not null" json:"station_id"`
	ConnectorType     ConnectorType   `gorm:"size:20;not null" json:"connector_type"`
	PowerKW           float64         `gorm:"not null" json:"power_kw"`
	PricePerKWh       float64         `gorm:"not null" json:"price_per_kwh"`
	Quantity          int             `gorm:"not null;default:1" json:"quantity"`
	AvailableQuantity int             `gorm:"not null;default:1" json:"available_quantity"`
	IsAvailable       bool            `gorm:"not null;default:true" json:"is_available"`
	Status            ConnectorStatus `gorm:"size:20;not null;default:available" json:"status"`
	Description       *string         `json:"description,omitempty"`
	QRCodeToken       string          `gorm:"size:32;uniqueIndex;not null" json:"qr_code_token"`
	QRCodeImage       string          `gorm:"type:text;not null" json:"qr_code_image"`
	QRPaymentURL      string          `gorm:"not null" json:"qr_payment_url"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}
