package station

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"evmeri/internal/apperr"
	"evmeri/internal/models"
)

func ip(v int) *int { return &v }

func TestReviewInputValidate(t *testing.T) {
	cases := []struct {
		name  string
		in    ReviewInput
		field string
	}{
		{"ok", ReviewInput{Rating: ip(5), LocationRating: ip(1)}, ""},
		{"missing rating", ReviewInput{}, "rating"},
		{"zero rating", ReviewInput{Rating: ip(0)}, "rating"},
		{"six stars", ReviewInput{Rating: ip(6)}, "rating"},
		{"speed", ReviewInput{Rating: ip(4), ChargingSpeedRating: ip(9)}, "charging_speed_rating"},
		{"amenities", ReviewInput{Rating: ip(4), AmenitiesRating: ip(-1)}, "amenities_rating"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.in.Validate()
			if tc.field == "" {
				if err != nil {
					t.Fatalf("unexpected %v", err)
				}
				return
			}
			if fe, ok := apperr.AsFieldErrors(err); !ok || !fe.Has(tc.field) {
				t.Errorf("expected %s error, got %v", tc.field, err)
			}
		})
	}
}

func TestMaskEmailAndDisplayName(t *testing.T) {
	for in, want := range map[string]string{
		"abebe@example.com": "ab***@example.com",
		"ab@example.com":    "ab@example.com",
		"no-at-sign":        "no-at-sign",
	} {
		if got := MaskEmail(in); got != want {
			t.Errorf("MaskEmail(%q) = %q", in, got)
		}
	}
	if got := DisplayName(&models.User{FirstName: "Abebe", LastName: "Kebede", Email: "x@y"}); got != "Abebe Kebede" {
		t.Errorf("full name = %q", got)
	}
	if got := DisplayName(&models.User{Email: "tg123@telegram.com"}); got != "tg123" {
		t.Errorf("fallback = %q", got)
	}
}

type memReviews struct {
	rows    map[string]*models.StationReview
	replies []models.ReviewReply
}

func newMemReviews() *memReviews { return &memReviews{rows: map[string]*models.StationReview{}} }

func (m *memReviews) Create(_ context.Context, r *models.StationReview) error {
	for _, x := range m.rows {
		if x.StationID == r.StationID && x.UserID == r.UserID {
			return fmt.Errorf("review: %w", apperr.ErrConflict)
		}
	}
	r.ID = fmt.Sprintf("r%d", len(m.rows)+1)
	cp := *r
	m.rows[r.ID] = &cp
	return nil
}

func (m *memReviews) ListForStation(_ context.Context, stationID string) ([]models.StationReview, error) {
	out := []models.StationReview{}
	for _, r := range m.rows {
		if r.StationID == stationID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memReviews) Get(_ context.Context, id string) (*models.StationReview, error) {
	r, ok := m.rows[id]
	if !ok {
		return nil, apperr.NotFound("review not found")
	}
	cp := *r
	return &cp, nil
}

func (m *memReviews) CreateReply(_ context.Context, reply *models.ReviewReply) error {
	reply.ID = "rep1"
	m.replies = append(m.replies, *reply)
	m.rows[reply.ReviewID].Reply = reply
	return nil
}

type owners map[string]string // user id -> owner id

func (o owners) OwnerByUser(_ context.Context, userID string) (*models.StationOwner, error) {
	id, ok := o[userID]
	if !ok {
		return nil, apperr.NotFound("station owner profile not found")
	}
	return &models.StationOwner{ID: id, UserID: userID}, nil
}

func reviewFixture() (*ReviewService, *memReviews) {
	stations := &fakeRepo{rows: []models.ChargingStation{
		{ID: "s1", OwnerID: "o1", IsActive: true, IsPublic: true},
		{ID: "hidden", OwnerID: "o1", IsActive: true, IsPublic: false},
	}}
	reviews := newMemReviews()
	return NewReviewService(reviews, stations, owners{"owner-user": "o1", "rival-user": "o2"}, nop), reviews
}

func TestCreateReview(t *testing.T) {
	svc, reviews := reviewFixture()
	ctx := context.Background()

	r, err := svc.Create(ctx, "u1", "s1", ReviewInput{Rating: ip(4), ReviewText: "  quick charge "})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if r.ReviewText != "quick charge" || r.StationID != "s1" || r.UserID != "u1" {
		t.Errorf("review = %+v", r)
	}

	_, err = svc.Create(ctx, "u1", "s1", ReviewInput{Rating: ip(2)})
	var ae *apperr.AppError
	if !errors.As(err, &ae) || ae.Code != 409 {
		t.Errorf("second review: %v", err)
	}
	if _, err := svc.Create(ctx, "u2", "hidden", ReviewInput{Rating: ip(5)}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("private station: %v", err)
	}
	if _, err := svc.Create(ctx, "u2", "s1", ReviewInput{Rating: ip(7)}); err == nil {
		t.Error("out of range rating accepted")
	}
	if len(reviews.rows) != 1 {
		t.Errorf("rows = %d", len(reviews.rows))
	}
}

func TestListReviewsMasksEmail(t *testing.T) {
	svc, reviews := reviewFixture()
	reviews.rows["r9"] = &models.StationReview{ID: "r9", StationID: "s1", Rating: 5, User: &models.User{Email: "abebe@example.com"}}
	got, err := svc.List(context.Background(), "s1")
	if err != nil || len(got) != 1 {
		t.Fatalf("List: %v %v", got, err)
	}
	if got[0].UserEmail != "ab***@example.com" || got[0].UserName != "abebe" {
		t.Errorf("view = %+v", got[0])
	}
}

func TestReplyPermissions(t *testing.T) {
	svc, reviews := reviewFixture()
	ctx := context.Background()
	reviews.rows["r1"] = &models.StationReview{ID: "r1", StationID: "s1", Station: &models.ChargingStation{ID: "s1", OwnerID: "o1"}}

	cases := []struct {
		name, user, text string
		msg              string
	}{
		{"not an owner", "u1", "thanks", "Only station owners can reply to reviews."},
		{"other owner", "rival-user", "thanks", "You can only reply to reviews of your own stations."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Reply(ctx, tc.user, "r1", tc.text)
			var ae *apperr.AppError
			if !errors.As(err, &ae) || ae.Code != 403 || ae.Message != tc.msg {
				t.Errorf("got %v", err)
			}
		})
	}

	if _, err := svc.Reply(ctx, "owner-user", "r1", "  "); err == nil {
		t.Error("empty reply accepted")
	}
	reply, err := svc.Reply(ctx, "owner-user", "r1", "Thanks for visiting")
	if err != nil {
		t.Fatalf("Reply: %v", err)
	}
	if reply.StationOwnerID != "o1" || reply.ReviewID != "r1" {
		t.Errorf("reply = %+v", reply)
	}
	_, err = svc.Reply(ctx, "owner-user", "r1", "again")
	var ae *apperr.AppError
	if !errors.As(err, &ae) || ae.Code != 409 {
		t.Errorf("second reply: %v", err)
	}
	if len(reviews.replies) != 1 {
		t.Errorf("replies = %d", len(reviews.replies))
	}
}

type memFavorites struct {
	set map[string]bool
}

func (m *memFavorites) Toggle(_ context.Context, userID, stationID string) (bool, error) {
	k := userID + "/" + stationID
	m.set[k] = !m.set[k]
	return m.set[k], nil
}

func (m *memFavorites) ListForUser(context.Context, string) ([]models.FavoriteStation, error) {
	return []models.FavoriteStation{{ID: "f1", Station: &models.ChargingStation{ID: "s1", Name: "Bole"}}, {ID: "orphan"}}, nil
}

func TestFavorites(t *testing.T) {
	stations := &fakeRepo{rows: []models.ChargingStation{
		{ID: "s1", IsActive: true, IsPublic: true},
		{ID: "hidden", IsActive: true},
	}}
	favs := NewFavorites(&memFavorites{set: map[string]bool{}}, stations)
	ctx := context.Background()

	if added, err := favs.Toggle(ctx, "u1", "s1"); err != nil || !added {
		t.Errorf("first toggle: %v %v", added, err)
	}
	if added, err := favs.Toggle(ctx, "u1", "s1"); err != nil || added {
		t.Errorf("second toggle: %v %v", added, err)
	}
	if _, err := favs.Toggle(ctx, "u1", "hidden"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("hidden station: %v", err)
	}
	list, err := favs.List(ctx, "u1")
	if err != nil || len(list) != 1 || list[0].Station.Name != "Bole" {
		t.Errorf("List: %+v %v", list, err)
	}
}
