package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"evmeri/internal/apperr"
	"evmeri/internal/connector"
)

func respondJSON(w http.ResponseWriter, v interface{}) {
	respondStatus(w, http.StatusOK, v)
}

func respondStatus(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func respondMessage(w http.ResponseWriter, code int, msg string) {
	respondStatus(w, code, map[string]any{"success": code < 400, "message": msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// writeError maps service errors onto status codes. Anything unrecognised
// is logged and reported as a generic 500.
func writeError(w http.ResponseWriter, lg *zap.SugaredLogger, err error) {
	if fe, ok := apperr.AsFieldErrors(err); ok {
		respondStatus(w, http.StatusBadRequest, map[string]any{"success": false, "errors": fe.Messages()})
		return
	}
	if errors.Is(err, connector.ErrNoStation) {
		respondMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	var ae *apperr.AppError
	if errors.As(err, &ae) && ae.Code < http.StatusInternalServerError {
		respondMessage(w, ae.Code, ae.Message)
		return
	}
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		respondMessage(w, http.StatusNotFound, "not found")
	case errors.Is(err, apperr.ErrForbidden):
		respondMessage(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, apperr.ErrConflict):
		respondMessage(w, http.StatusConflict, "already exists")
	default:
		lg.Errorw("request failed", "error", err)
		respondMessage(w, http.StatusInternalServerError, "internal server error")
	}
}

// Auditor records user actions in the audit log.
type Auditor interface {
	Record(ctx context.Context, userID, action string, meta map[string]any) error
}

// audit never fails the request; a lost audit row is only logged.
func audit(ctx context.Context, a Auditor, lg *zap.SugaredLogger, userID, action string, meta map[string]any) {
	if err := a.Record(ctx, userID, action, meta); err != nil {
		lg.Warnw("audit write failed", "action", action, "error", err)
	}
}
