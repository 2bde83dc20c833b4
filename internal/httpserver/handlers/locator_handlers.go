package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"evmeri/internal/auth"
	"evmeri/internal/station"
)

func PublicStations(loc *station.Locator, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := loc.Map(r.Context(), station.ParseMapFilter(r.URL.Query()))
		if err != nil {
			writeError(w, lg, err)
			return
		}
		respondJSON(w, rows)
	}
}

func PublicStation(loc *station.Locator, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := loc.Detail(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, lg, err)
			return
		}
		respondJSON(w, d)
	}
}

// NearbyStations answers an empty list when lat/lng are missing or
// malformed.
func NearbyStations(loc *station.Locator, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lat, lng, radius, ok := station.ParseNearby(r.URL.Query())
		if !ok {
			respondJSON(w, []station.MapStation{})
			return
		}
		rows, err := loc.Nearby(r.Context(), lat, lng, radius)
		if err != nil {
			writeError(w, lg, err)
			return
		}
		respondJSON(w, rows)
	}
}

func SearchStations(loc *station.Locator, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := loc.Search(r.Context(), r.URL.Query().Get("q"))
		if err != nil {
			writeError(w, lg, err)
			return
		}
		respondJSON(w, rows)
	}
}

func ListReviews(reviews *station.ReviewService, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := reviews.List(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, lg, err)
			return
		}
		respondJSON(w, rows)
	}
}

func CreateReview(reviews *station.ReviewService, audits Auditor, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in station.ReviewInput
		if !decodeJSON(w, r, &in) {
			return
		}
		uid := auth.Subject(r.Context())
		rev, err := reviews.Create(r.Context(), uid, chi.URLParam(r, "id"), in)
		if err != nil {
			writeError(w, lg, err)
			return
		}
		audit(r.Context(), audits, lg, uid, "review.create", map[string]any{"review_id": rev.ID, "station_id": rev.StationID})
		respondStatus(w, http.StatusCreated, rev)
	}
}

func ReplyToReview(reviews *station.ReviewService, audits Auditor, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ReplyText string `json:"reply_text"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		uid := auth.Subject(r.Context())
		reply, err := reviews.Reply(r.Context(), uid, chi.URLParam(r, "review_id"), req.ReplyText)
		if err != nil {
			writeError(w, lg, err)
			return
		}
		audit(r.Context(), audits, lg, uid, "review.reply", map[string]any{"review_id": reply.ReviewID})
		respondStatus(w, http.StatusCreated, reply)
	}
}

func ListFavorites(favs *station.Favorites, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := favs.List(r.Context(), auth.Subject(r.Context()))
		if err != nil {
			writeError(w, lg, err)
			return
		}
		respondJSON(w, rows)
	}
}

func ToggleFavorite(favs *station.Favorites, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		added, err := favs.Toggle(r.Context(), auth.Subject(r.Context()), chi.URLParam(r, "station_id"))
		if err != nil {
			writeError(w, lg, err)
			return
		}
		if added {
			respondMessage(w, http.StatusCreated, "Station added to favorites.")
			return
		}
		respondMessage(w, http.StatusOK, "Station removed from favorites.")
	}
}
