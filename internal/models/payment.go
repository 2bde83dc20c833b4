package models

import "time"

type QRPaymentType string

const (
	// QRPayEnergy charges for a requested number of kWh.
	QRPayEnergy QRPaymentType = "energy"
	// QRPayAmount charges a fixed amount.
	QRPayAmount QRPaymentType = "amount"
	// QRPayFull reserves a full charge, priced as FullChargeKWh.
	QRPayFull QRPaymentType = "full"
)

const FullChargeKWh = 50.0

type QRSessionStatus string

const (
	QRSessionPending          QRSessionStatus = "pending"
	QRSessionPaymentInitiated QRSessionStatus = "payment_initiated"
	QRSessionPaid             QRSessionStatus = "paid"
	QRSessionExpired          QRSessionStatus = "expired"
	QRSessionCancelled        QRSessionStatus = "cancelled"
)

type QRPaymentSession struct {
	ID           string          `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID       string          `gorm:"type:uuid;index;not null" json:"user_id"`
	ConnectorID  string          `gorm:"type:uuid;index;not null" json:"connector_id"`
	PaymentType  QRPaymentType   `gorm:"size:10;not null" json:"payment_type"`
	Amount       *float64        `json:"amount,omitempty"`
	KWhRequested *float64        `gorm:"column:kwh_requested" json:"kwh_requested,omitempty"`
	PhoneNumber  string          `gorm:"size:20;not null" json:"phone_number"`
	Status       QRSessionStatus `gorm:"size:20;not null;default:pending" json:"status"`
	ExpiresAt    time.Time       `gorm:"not null" json:"expires_at"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// PaymentAmount is the charge for this session given the connector's
// per-kWh price. Zero means the session cannot be paid.
func (s QRPaymentSession) PaymentAmount(pricePerKWh float64) float64 {
	switch s.PaymentType {
	case QRPayAmount:
		if s.Amount != nil {
			return *s.Amount
		}
	case QRPayEnergy:
		if s.KWhRequested != nil {
			return *s.KWhRequested * pricePerKWh
		}
	case QRPayFull:
		return FullChargeKWh * pricePerKWh
	}
	return 0
}
