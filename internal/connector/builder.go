package connector

import (
	"fmt"

	"evmeri/internal/models"
	"evmeri/internal/qr"
)

// Builder turns validated input into a complete connector record, QR
// identity included. It never touches storage.
type Builder struct {
	baseURL  string
	newToken func(stationID, connectorType string, powerKW float64) (string, error)
	render   func(content string) (string, error)
}

func NewBuilder(baseURL string) *Builder {
	return &Builder{baseURL: baseURL, newToken: qr.GenerateToken, render: qr.DataURI}
}

func (b *Builder) Build(stationID string, v Validated) (models.ChargingConnector, error) {
	power := v.PowerKW.InexactFloat64()
	price := v.PricePerKWh.InexactFloat64()

	token, err := b.newToken(stationID, string(v.ConnectorType), power)
	if err != nil {
		return models.ChargingConnector{}, fmt.Errorf("build connector: %w", err)
	}
	url := qr.PaymentURL(b.baseURL, token)
	image, err := b.render(url)
	if err != nil {
		return models.ChargingConnector{}, fmt.Errorf("build connector: %w", err)
	}

	return models.ChargingConnector{
		StationID:         stationID,
		ConnectorType:     v.ConnectorType,
		PowerKW:           power,
		PricePerKWh:       price,
		Quantity:          v.Quantity,
		AvailableQuantity: v.Quantity,
		IsAvailable:       true,
		Status:            models.ConnectorAvailable,
		Description:       v.Description,
		QRCodeToken:       token,
		QRCodeImage:       image,
		QRPaymentURL:      url,
	}, nil
}
