package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"evmeri/internal/auth"
	"evmeri/internal/connector"
)

func CreateConnector(svc *connector.Service, audits Auditor, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in connector.Input
		if !decodeJSON(w, r, &in) {
			return
		}
		uid := auth.Subject(r.Context())
		c, err := svc.Create(r.Context(), uid, chi.URLParam(r, "station_id"), in)
		if err != nil {
			writeError(w, lg, err)
			return
		}
		audit(r.Context(), audits, lg, uid, "connector.create", map[string]any{"connector_id": c.ID, "station_id": c.StationID})
		respondStatus(w, http.StatusCreated, c)
	}
}

func ListConnectors(svc *connector.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.List(r.Context(), auth.Subject(r.Context()), chi.URLParam(r, "station_id"))
		if err != nil {
			writeError(w, lg, err)
			return
		}
		respondJSON(w, rows)
	}
}

func GetConnector(svc *connector.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := svc.Get(r.Context(), auth.Subject(r.Context()), chi.URLParam(r, "station_id"), chi.URLParam(r, "connector_id"))
		if err != nil {
			writeError(w, lg, err)
			return
		}
		respondJSON(w, c)
	}
}

func UpdateConnector(svc *connector.Service, audits Auditor, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p connector.Patch
		if !decodeJSON(w, r, &p) {
			return
		}
		uid := auth.Subject(r.Context())
		c, err := svc.Update(r.Context(), uid, chi.URLParam(r, "station_id"), chi.URLParam(r, "connector_id"), p)
		if err != nil {
			writeError(w, lg, err)
			return
		}
		audit(r.Context(), audits, lg, uid, "connector.update", map[string]any{"connector_id": c.ID})
		respondJSON(w, c)
	}
}

func DeleteConnector(svc *connector.Service, audits Auditor, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := auth.Subject(r.Context())
		id := chi.URLParam(r, "connector_id")
		if err := svc.Delete(r.Context(), uid, chi.URLParam(r, "station_id"), id); err != nil {
			writeError(w, lg, err)
			return
		}
		audit(r.Context(), audits, lg, uid, "connector.delete", map[string]any{"connector_id": id})
		w.WriteHeader(http.StatusNoContent)
	}
}
