package models

import "time"

// StationReview is one user's rating of a station. A user reviews a station
// at most once.
type StationReview struct {
	ID                  string    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	StationID           string    `gorm:"type:uuid;not null;uniqueIndex:idx_review_station_user,priority:1" json:"station_id"`
	UserID              string    `gorm:"type:uuid;not null;uniqueIndex:idx_review_station_user,priority:2" json:"user_id"`
	Rating              int       `gorm:"not null" json:"rating"`
	ReviewText          string    `gorm:"type:text" json:"review_text"`
	ChargingSpeedRating *int      `json:"charging_speed_rating,omitempty"`
	LocationRating      *int      `json:"location_rating,omitempty"`
	AmenitiesRating     *int      `json:"amenities_rating,omitempty"`
	IsVerifiedReview    bool      `gorm:"not null;default:false" json:"is_verified_review"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`

	User    *User            `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Station *ChargingStation `gorm:"foreignKey:StationID;constraint:OnDelete:CASCADE" json:"-"`
	Reply   *ReviewReply     `gorm:"foreignKey:ReviewID;constraint:OnDelete:CASCADE" json:"reply,omitempty"`
}

// ReviewReply is the station owner's single answer to a review.
type ReviewReply struct {
	ID             string    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ReviewID       string    `gorm:"type:uuid;uniqueIndex;not null" json:"review_id"`
	StationOwnerID string    `gorm:"type:uuid;not null" json:"station_owner_id"`
	ReplyText      string    `gorm:"type:text;not null" json:"reply_text"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type FavoriteStation struct {
	ID        string    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_favorite_user_station,priority:1" json:"user_id"`
	StationID string    `gorm:"type:uuid;not null;uniqueIndex:idx_favorite_user_station,priority:2" json:"station_id"`
	CreatedAt time.Time `json:"created_at"`

	Station *ChargingStation `gorm:"foreignKey:StationID;constraint:OnDelete:CASCADE" json:"-"`
}
