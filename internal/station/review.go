package station

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"evmeri/internal/apperr"
	"evmeri/internal/models"
)

type ReviewInput struct {
	Rating              *int   `json:"rating"`
	ReviewText          string `json:"review_text"`
	ChargingSpeedRating *int   `json:"charging_speed_rating,omitempty"`
	LocationRating      *int   `json:"location_rating,omitempty"`
	AmenitiesRating     *int   `json:"amenities_rating,omitempty"`
}

func stars(fe *apperr.FieldErrors, field string, v *int) {
	if v != nil && (*v < 1 || *v > 5) {
		fe.Add(field, apperr.OutOfRange)
	}
}

// Validate requires rating; the aspect ratings are optional. Every rating
// is 1 to 5 stars.
func (in ReviewInput) Validate() error {
	var fe apperr.FieldErrors
	if in.Rating == nil {
		fe.Add("rating", apperr.Required)
	} else {
		stars(&fe, "rating", in.Rating)
	}
	stars(&fe, "charging_speed_rating", in.ChargingSpeedRating)
	stars(&fe, "location_rating", in.LocationRating)
	stars(&fe, "amenities_rating", in.AmenitiesRating)
	if fe != nil {
		return fe
	}
	return nil
}

// ReviewView adds the reviewer's display name and a masked email.
type ReviewView struct {
	models.StationReview
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
}

// MaskEmail keeps the first two characters of the local part.
func MaskEmail(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok {
		return email
	}
	r := []rune(local)
	if len(r) > 2 {
		local = string(r[:2]) + strings.Repeat("*", len(r)-2)
	}
	return local + "@" + domain
}

// DisplayName is "first last", falling back to the email's local part.
func DisplayName(u *models.User) string {
	if u == nil {
		return ""
	}
	if n := strings.TrimSpace(u.FirstName + " " + u.LastName); n != "" {
		return n
	}
	local, _, _ := strings.Cut(u.Email, "@")
	return local
}

func viewOf(r models.StationReview) ReviewView {
	v := ReviewView{StationReview: r, UserName: DisplayName(r.User)}
	if r.User != nil {
		v.UserEmail = MaskEmail(r.User.Email)
	}
	return v
}

type ReviewRepository interface {
	// Create stores r and refreshes the station's rating and rating_count.
	Create(ctx context.Context, r *models.StationReview) error
	ListForStation(ctx context.Context, stationID string) ([]models.StationReview, error)
	// Get preloads Station and Reply.
	Get(ctx context.Context, id string) (*models.StationReview, error)
	CreateReply(ctx context.Context, reply *models.ReviewReply) error
}

type OwnerLookup interface {
	OwnerByUser(ctx context.Context, userID string) (*models.StationOwner, error)
}

type ReviewService struct {
	reviews  ReviewRepository
	stations Repository
	owners   OwnerLookup
	lg       *zap.SugaredLogger
}

func NewReviewService(reviews ReviewRepository, stations Repository, owners OwnerLookup, lg *zap.SugaredLogger) *ReviewService {
	return &ReviewService{reviews: reviews, stations: stations, owners: owners, lg: lg}
}

func (s *ReviewService) publicStation(ctx context.Context, id string) (*models.ChargingStation, error) {
	st, err := s.stations.PublicGet(ctx, id)
	if err != nil {
		return nil, err
	}
	if !st.IsActive || !st.IsPublic {
		return nil, apperr.NotFound("station not found")
	}
	return st, nil
}

// Create records userID's review of a public station. A second review of
// the same station is a conflict.
func (s *ReviewService) Create(ctx context.Context, userID, stationID string, in ReviewInput) (*models.StationReview, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	st, err := s.publicStation(ctx, stationID)
	if err != nil {
		return nil, err
	}
	r := models.StationReview{
		StationID:           st.ID,
		UserID:              userID,
		Rating:              *in.Rating,
		ReviewText:          strings.TrimSpace(in.ReviewText),
		ChargingSpeedRating: in.ChargingSpeedRating,
		LocationRating:      in.LocationRating,
		AmenitiesRating:     in.AmenitiesRating,
	}
	if err := s.reviews.Create(ctx, &r); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return nil, apperr.Conflict("You have already reviewed this station.")
		}
		return nil, fmt.Errorf("create review: %w", err)
	}
	s.lg.Infow("station reviewed", "station_id", st.ID, "review_id", r.ID, "rating", r.Rating)
	return &r, nil
}

func (s *ReviewService) List(ctx context.Context, stationID string) ([]ReviewView, error) {
	if _, err := s.publicStation(ctx, stationID); err != nil {
		return nil, err
	}
	rows, err := s.reviews.ListForStation(ctx, stationID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	out := make([]ReviewView, 0, len(rows))
	for _, r := range rows {
		out = append(out, viewOf(r))
	}
	return out, nil
}

// Reply answers a review on one of the caller's stations. Each review takes
// one reply.
func (s *ReviewService) Reply(ctx context.Context, userID, reviewID, text string) (*models.ReviewReply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.FieldErrors{{Field: "reply_text", Reason: apperr.Required}}
	}
	owner, err := s.owners.OwnerByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Forbidden("Only station owners can reply to reviews.")
		}
		return nil, err
	}
	r, err := s.reviews.Get(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if r.Station == nil || r.Station.OwnerID != owner.ID {
		return nil, apperr.Forbidden("You can only reply to reviews of your own stations.")
	}
	if r.Reply != nil {
		return nil, apperr.Conflict("This review already has a reply.")
	}
	reply := models.ReviewReply{ReviewID: r.ID, StationOwnerID: owner.ID, ReplyText: text}
	if err := s.reviews.CreateReply(ctx, &reply); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return nil, apperr.Conflict("This review already has a reply.")
		}
		return nil, fmt.Errorf("create reply: %w", err)
	}
	return &reply, nil
}

type FavoriteRepository interface {
	// Toggle adds the favorite, or removes it when present. It reports
	// whether the station is now a favorite.
	Toggle(ctx context.Context, userID, stationID string) (bool, error)
	// ListForUser preloads Station with its Owner and Connectors.
	ListForUser(ctx context.Context, userID string) ([]models.FavoriteStation, error)
}

type Favorite struct {
	ID        string     `json:"id"`
	Station   MapStation `json:"station"`
	CreatedAt time.Time  `json:"created_at"`
}

type Favorites struct {
	repo     FavoriteRepository
	stations Repository
}

func NewFavorites(repo FavoriteRepository, stations Repository) *Favorites {
	return &Favorites{repo: repo, stations: stations}
}

// Toggle flips the favorite flag on a public station.
func (f *Favorites) Toggle(ctx context.Context, userID, stationID string) (bool, error) {
	st, err := f.stations.PublicGet(ctx, stationID)
	if err != nil {
		return false, err
	}
	if !st.IsActive || !st.IsPublic {
		return false, apperr.NotFound("station not found")
	}
	return f.repo.Toggle(ctx, userID, st.ID)
}

func (f *Favorites) List(ctx context.Context, userID string) ([]Favorite, error) {
	rows, err := f.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	out := make([]Favorite, 0, len(rows))
	for _, r := range rows {
		if r.Station == nil {
			continue
		}
		out = append(out, Favorite{ID: r.ID, Station: ToMap(*r.Station), CreatedAt: r.CreatedAt})
	}
	return out, nil
}
