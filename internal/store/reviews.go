package store

import (
	"context"
	"errors"
	"math"

	"gorm.io/gorm"

	"evmeri/internal/apperr"
	"evmeri/internal/models"
)

type Reviews struct {
	db *gorm.DB
}

func NewReviews(db *gorm.DB) *Reviews { return &Reviews{db: db} }

// Create stores r, marks it verified when the reviewer has paid for a
// charge at the station, and refreshes the station's rating.
func (s *Reviews) Create(ctx context.Context, r *models.StationReview) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var paid int64
		err := tx.Model(&models.QRPaymentSession{}).
			Joins("JOIN charging_connectors ON charging_connectors.id = qr_payment_sessions.connector_id").
			Where("qr_payment_sessions.user_id = ? AND charging_connectors.station_id = ? AND qr_payment_sessions.status = ?",
				r.UserID, r.StationID, models.QRSessionPaid).
			Count(&paid).Error
		if err != nil {
			return translate(err, "payment sessions")
		}
		r.IsVerifiedReview = paid > 0
		if err := tx.Create(r).Error; err != nil {
			return translate(err, "review")
		}
		return refreshRating(tx, r.StationID)
	})
}

// refreshRating stores the mean rating, rounded to two places, and the
// review count on the station.
func refreshRating(tx *gorm.DB, stationID string) error {
	var agg struct {
		Avg   float64
		Count int
	}
	err := tx.Model(&models.StationReview{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
		Where("station_id = ?", stationID).
		Scan(&agg).Error
	if err != nil {
		return translate(err, "reviews")
	}
	return tx.Model(&models.ChargingStation{}).Where("id = ?", stationID).Updates(map[string]any{
		"rating":       math.Round(agg.Avg*100) / 100,
		"rating_count": agg.Count,
	}).Error
}

func (s *Reviews) ListForStation(ctx context.Context, stationID string) ([]models.StationReview, error) {
	if !validUUID(stationID) {
		return []models.StationReview{}, nil
	}
	var rows []models.StationReview
	err := s.db.WithContext(ctx).Preload("User").Preload("Reply").
		Where("station_id = ?", stationID).Order("created_at desc").Find(&rows).Error
	return rows, translate(err, "reviews")
}

func (s *Reviews) Get(ctx context.Context, id string) (*models.StationReview, error) {
	if !validUUID(id) {
		return nil, apperr.NotFound("review not found")
	}
	var r models.StationReview
	if err := s.db.WithContext(ctx).Preload("Station").Preload("Reply").First(&r, "id = ?", id).Error; err != nil {
		return nil, translate(err, "review")
	}
	return &r, nil
}

func (s *Reviews) CreateReply(ctx context.Context, reply *models.ReviewReply) error {
	return translate(s.db.WithContext(ctx).Create(reply).Error, "review reply")
}

type Favorites struct {
	db *gorm.DB
}

func NewFavorites(db *gorm.DB) *Favorites { return &Favorites{db: db} }

func (f *Favorites) Toggle(ctx context.Context, userID, stationID string) (bool, error) {
	added := false
	err := f.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var fav models.FavoriteStation
		err := tx.Where("user_id = ? AND station_id = ?", userID, stationID).Take(&fav).Error
		switch {
		case err == nil:
			return translate(tx.Delete(&fav).Error, "favorite")
		case errors.Is(err, gorm.ErrRecordNotFound):
			added = true
			return translate(tx.Create(&models.FavoriteStation{UserID: userID, StationID: stationID}).Error, "favorite")
		default:
			return translate(err, "favorite")
		}
	})
	return added, err
}

func (f *Favorites) ListForUser(ctx context.Context, userID string) ([]models.FavoriteStation, error) {
	var rows []models.FavoriteStation
	err := f.db.WithContext(ctx).
		Preload("Station").Preload("Station.Owner").Preload("Station.Connectors").
		Where("user_id = ?", userID).Order("created_at desc").Find(&rows).Error
	return rows, translate(err, "favorites")
}
