package store

import (
	"context"
	"database/sql"
	"strings"

	"gorm.io/gorm"

	"evmeri/internal/apperr"
	"evmeri/internal/models"
	"evmeri/internal/station"
)

type Stations struct {
	db *gorm.DB
}

func NewStations(db *gorm.DB) *Stations { return &Stations{db: db} }

func (s *Stations) OwnerByUser(ctx context.Context, userID string) (*models.StationOwner, error) {
	var o models.StationOwner
	if err := s.db.WithContext(ctx).First(&o, "user_id = ?", userID).Error; err != nil {
		return nil, translate(err, "station owner profile")
	}
	return &o, nil
}

// CreateOwner registers the user as a station owner and grants the role.
func (s *Stations) CreateOwner(ctx context.Context, o *models.StationOwner) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(o).Error; err != nil {
			return translate(err, "station owner profile")
		}
		var role models.Role
		if err := tx.First(&role, "name = ?", models.RoleStationOwner).Error; err != nil {
			return translate(err, "station owner role")
		}
		return tx.Model(&models.User{ID: o.UserID}).Association("Roles").Append(&role)
	})
}

// Create inserts st. gorm skips zero values of columns with a default, so a
// private station has is_public written explicitly.
func (s *Stations) Create(ctx context.Context, st *models.ChargingStation) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(st).Error; err != nil {
			return translate(err, "station")
		}
		if !st.IsPublic {
			return translate(tx.Model(st).Update("is_public", false).Error, "station")
		}
		return nil
	})
}

var stationColumns = []string{
	"name", "address", "city", "state", "zip_code", "country", "latitude", "longitude",
	"description", "is_active", "is_public", "status", "updated_at",
}

// Update writes the owner-editable columns, zero values included.
func (s *Stations) Update(ctx context.Context, st *models.ChargingStation) error {
	return translate(s.db.WithContext(ctx).Model(st).Select(stationColumns).Updates(st).Error, "station")
}

// Delete removes the station; connectors, reviews and favorites go with it
// through ON DELETE CASCADE.
func (s *Stations) Delete(ctx context.Context, id string) error {
	if !validUUID(id) {
		return apperr.NotFound("station not found")
	}
	res := s.db.WithContext(ctx).Delete(&models.ChargingStation{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error, "station")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("station not found")
	}
	return nil
}

func (s *Stations) public(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Preload("Owner").Preload("Connectors").
		Where("is_active = ? AND is_public = ?", true, true)
}

func (s *Stations) ListPublic(ctx context.Context, f station.MapFilter) ([]models.ChargingStation, error) {
	q := s.public(ctx).Where("latitude IS NOT NULL AND longitude IS NOT NULL")
	if b := f.Bounds; b != nil {
		q = q.Where("latitude BETWEEN ? AND ? AND longitude BETWEEN ? AND ?", b.South, b.North, b.West, b.East)
	}
	if f.ConnectorType != "" {
		q = q.Where("id IN (?)", s.db.Model(&models.ChargingConnector{}).Select("station_id").Where("connector_type = ?", f.ConnectorType))
	}
	if f.MinPowerKW != nil {
		q = q.Where("id IN (?)", s.db.Model(&models.ChargingConnector{}).Select("station_id").Where("power_kw >= ?", *f.MinPowerKW))
	}
	if f.AvailableOnly {
		q = q.Where("available_connectors > 0")
	}
	var rows []models.ChargingStation
	return rows, translate(q.Order("name").Find(&rows).Error, "stations")
}

func (s *Stations) InBox(ctx context.Context, b station.Box) ([]models.ChargingStation, error) {
	var rows []models.ChargingStation
	err := s.public(ctx).
		Where("latitude BETWEEN ? AND ? AND longitude BETWEEN ? AND ?", b.South, b.North, b.West, b.East).
		Find(&rows).Error
	return rows, translate(err, "stations")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// Search is a case-insensitive substring match over the address columns.
func (s *Stations) Search(ctx context.Context, term string) ([]models.ChargingStation, error) {
	like := "%" + likeEscaper.Replace(term) + "%"
	var rows []models.ChargingStation
	err := s.public(ctx).
		Where("name ILIKE @q OR address ILIKE @q OR city ILIKE @q OR state ILIKE @q OR zip_code ILIKE @q", sql.Named("q", like)).
		Order("name").Find(&rows).Error
	return rows, translate(err, "stations")
}

// PublicGet loads a station with Owner and Connectors, whatever its
// visibility; callers check IsActive and IsPublic.
func (s *Stations) PublicGet(ctx context.Context, id string) (*models.ChargingStation, error) {
	if !validUUID(id) {
		return nil, apperr.NotFound("station not found")
	}
	var st models.ChargingStation
	err := s.db.WithContext(ctx).Preload("Owner").Preload("Connectors").First(&st, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, "station")
	}
	return &st, nil
}

func (s *Stations) ListByOwner(ctx context.Context, ownerID string) ([]models.ChargingStation, error) {
	var rows []models.ChargingStation
	err := s.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("created_at desc").Find(&rows).Error
	return rows, translate(err, "stations")
}

func (s *Stations) Get(ctx context.Context, id string) (*models.ChargingStation, error) {
	if !validUUID(id) {
		return nil, apperr.NotFound("station not found")
	}
	var st models.ChargingStation
	if err := s.db.WithContext(ctx).First(&st, "id = ?", id).Error; err != nil {
		return nil, translate(err, "station")
	}
	return &st, nil
}

// OwnedStation returns the station if userID owns it.
func (s *Stations) OwnedStation(ctx context.Context, stationID, userID string) (*models.ChargingStation, error) {
	st, err := s.Get(ctx, stationID)
	if err != nil {
		return nil, err
	}
	owner, err := s.OwnerByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Forbidden("station owner profile required")
	}
	if st.OwnerID != owner.ID {
		return nil, apperr.Forbidden("station belongs to another owner")
	}
	return st, nil
}

// refreshCounts recomputes a station's connector totals inside tx.
func refreshCounts(tx *gorm.DB, stationID string) error {
	var agg struct {
		Total     int
		Available int
	}
	err := tx.Model(&models.ChargingConnector{}).
		Select("COALESCE(SUM(quantity), 0) AS total, COALESCE(SUM(CASE WHEN is_available THEN available_quantity ELSE 0 END), 0) AS available").
		Where("station_id = ?", stationID).
		Scan(&agg).Error
	if err != nil {
		return err
	}
	return tx.Model(&models.ChargingStation{}).Where("id = ?", stationID).Updates(map[string]any{
		"total_connectors":     agg.Total,
		"available_connectors": agg.Available,
	}).Error
}
