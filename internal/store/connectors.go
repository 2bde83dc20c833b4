package store

import (
	"context"

	"gorm.io/gorm"

	"evmeri/internal/apperr"
	"evmeri/internal/models"
)

type Connectors struct {
	db *gorm.DB
}

func NewConnectors(db *gorm.DB) *Connectors { return &Connectors{db: db} }

// mutableColumns never includes the QR columns. Updates with an explicit
// Select writes every listed column, zero values included, so a patch that
// sets quantity to 0 or is_available to false is persisted.
var mutableColumns = []string{
	"connector_type", "power_kw", "price_per_kwh", "quantity",
	"available_quantity", "is_available", "status", "description", "updated_at",
}

func (c *Connectors) Create(ctx context.Context, conn *models.ChargingConnector) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(conn).Error; err != nil {
			return translate(err, "connector")
		}
		return refreshCounts(tx, conn.StationID)
	})
}

func (c *Connectors) Get(ctx context.Context, stationID, id string) (*models.ChargingConnector, error) {
	if !validUUID(stationID) || !validUUID(id) {
		return nil, apperr.NotFound("connector not found")
	}
	var conn models.ChargingConnector
	err := c.db.WithContext(ctx).First(&conn, "station_id = ? AND id = ?", stationID, id).Error
	if err != nil {
		return nil, translate(err, "connector")
	}
	return &conn, nil
}

func (c *Connectors) List(ctx context.Context, stationID string) ([]models.ChargingConnector, error) {
	var rows []models.ChargingConnector
	err := c.db.WithContext(ctx).Where("station_id = ?", stationID).Order("created_at").Find(&rows).Error
	return rows, translate(err, "connectors")
}

func (c *Connectors) Update(ctx context.Context, conn *models.ChargingConnector) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := updateMutable(tx, conn).Error; err != nil {
			return translate(err, "connector")
		}
		return refreshCounts(tx, conn.StationID)
	})
}

func updateMutable(tx *gorm.DB, conn *models.ChargingConnector) *gorm.DB {
	return tx.Model(conn).Select(mutableColumns).Updates(conn)
}

func (c *Connectors) Delete(ctx context.Context, stationID, id string) error {
	if !validUUID(stationID) || !validUUID(id) {
		return apperr.NotFound("connector not found")
	}
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("station_id = ? AND id = ?", stationID, id).Delete(&models.ChargingConnector{})
		if res.Error != nil {
			return translate(res.Error, "connector")
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("connector not found")
		}
		return refreshCounts(tx, stationID)
	})
}

func (c *Connectors) ByToken(ctx context.Context, token string) (*models.ChargingConnector, error) {
	var conn models.ChargingConnector
	if err := c.db.WithContext(ctx).First(&conn, "qr_code_token = ?", token).Error; err != nil {
		return nil, translate(err, "connector")
	}
	return &conn, nil
}
