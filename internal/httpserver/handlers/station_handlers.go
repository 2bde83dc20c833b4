package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"evmeri/internal/apperr"
	"evmeri/internal/auth"
	"evmeri/internal/models"
	"evmeri/internal/station"
)

type StationStore interface {
	OwnerByUser(ctx context.Context, userID string) (*models.StationOwner, error)
	CreateOwner(ctx context.Context, o *models.StationOwner) error
	Create(ctx context.Context, st *models.ChargingStation) error
	ListByOwner(ctx context.Context, ownerID string) ([]models.ChargingStation, error)
	OwnedStation(ctx context.Context, stationID, userID string) (*models.ChargingStation, error)
	Update(ctx context.Context, st *models.ChargingStation) error
	Delete(ctx context.Context, id string) error
}

// MapInvalidator drops cached public listings after an owner edit.
type MapInvalidator interface {
	Invalidate(ctx context.Context)
}

func BecomeOwner(stations StationStore, audits Auditor, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			CompanyName        string  `json:"company_name"`
			RegistrationNumber *string `json:"business_registration_number,omitempty"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		req.CompanyName = strings.TrimSpace(req.CompanyName)
		if req.CompanyName == "" {
			writeError(w, lg, apperr.FieldErrors{{Field: "company_name", Reason: apperr.Required}})
			return
		}
		uid := auth.Subject(r.Context())
		o := models.StationOwner{
			UserID: uid, CompanyName: req.CompanyName, RegistrationNumber: req.RegistrationNumber,
			VerificationStatus: models.VerificationPending,
		}
		if err := stations.CreateOwner(r.Context(), &o); err != nil {
			if errors.Is(err, apperr.ErrConflict) {
				respondMessage(w, http.StatusConflict, "station owner profile already exists")
				return
			}
			writeError(w, lg, err)
			return
		}
		audit(r.Context(), audits, lg, uid, "station_owner.create", map[string]any{"owner_id": o.ID})
		respondStatus(w, http.StatusCreated, o)
	}
}

// ownerOf loads the caller's owner profile or writes a 403.
func ownerOf(w http.ResponseWriter, r *http.Request, stations StationStore, lg *zap.SugaredLogger) (*models.StationOwner, bool) {
	o, err := stations.OwnerByUser(r.Context(), auth.Subject(r.Context()))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			respondMessage(w, http.StatusForbidden, "station owner profile required")
			return nil, false
		}
		writeError(w, lg, err)
		return nil, false
	}
	return o, true
}

func CreateStation(stations StationStore, maps MapInvalidator, audits Auditor, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		o, ok := ownerOf(w, r, stations, lg)
		if !ok {
			return
		}
		var req station.Input
		if !decodeJSON(w, r, &req) {
			return
		}
		st, err := req.Build(o.ID)
		if err != nil {
			writeError(w, lg, err)
			return
		}
		if err := stations.Create(r.Context(), &st); err != nil {
			writeError(w, lg, err)
			return
		}
		maps.Invalidate(r.Context())
		audit(r.Context(), audits, lg, o.UserID, "station.create", map[string]any{"station_id": st.ID})
		respondStatus(w, http.StatusCreated, st)
	}
}

func ListStations(stations StationStore, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		o, ok := ownerOf(w, r, stations, lg)
		if !ok {
			return
		}
		rows, err := stations.ListByOwner(r.Context(), o.ID)
		if err != nil {
			writeError(w, lg, err)
			return
		}
		respondJSON(w, rows)
	}
}

func GetStation(stations StationStore, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := stations.OwnedStation(r.Context(), chi.URLParam(r, "station_id"), auth.Subject(r.Context()))
		if err != nil {
			writeError(w, lg, err)
			return
		}
		respondJSON(w, st)
	}
}

func UpdateStation(stations StationStore, maps MapInvalidator, audits Auditor, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := auth.Subject(r.Context())
		st, err := stations.OwnedStation(r.Context(), chi.URLParam(r, "station_id"), uid)
		if err != nil {
			writeError(w, lg, err)
			return
		}
		var p station.Patch
		if !decodeJSON(w, r, &p) {
			return
		}
		if err := p.Apply(st); err != nil {
			writeError(w, lg, err)
			return
		}
		if err := stations.Update(r.Context(), st); err != nil {
			writeError(w, lg, err)
			return
		}
		maps.Invalidate(r.Context())
		audit(r.Context(), audits, lg, uid, "station.update", map[string]any{"station_id": st.ID})
		respondJSON(w, st)
	}
}

func DeleteStation(stations StationStore, maps MapInvalidator, audits Auditor, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := auth.Subject(r.Context())
		st, err := stations.OwnedStation(r.Context(), chi.URLParam(r, "station_id"), uid)
		if err != nil {
			writeError(w, lg, err)
			return
		}
		if err := stations.Delete(r.Context(), st.ID); err != nil {
			writeError(w, lg, err)
			return
		}
		maps.Invalidate(r.Context())
		audit(r.Context(), audits, lg, uid, "station.delete", map[string]any{"station_id": st.ID})
		w.WriteHeader(http.StatusNoContent)
	}
}
