package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"evmeri/internal/auth"
	"evmeri/internal/models"
)

type AuditReader interface {
	Recent(ctx context.Context, userID string, limit int) ([]models.AuditLog, error)
}

// MyLogs returns recent audit logs. Regular users see their own logs.
// Administrators can pass ?all=1 to see recent logs for everyone.
func MyLogs(logs AuditReader, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := auth.Subject(r.Context())
		if r.URL.Query().Get("all") == "1" && auth.FromContext(r.Context()).HasRole(models.RoleAdministrator) {
			uid = ""
		}
		rows, err := logs.Recent(r.Context(), uid, 200)
		if err != nil {
			writeError(w, lg, err)
			return
		}
		respondJSON(w, rows)
	}
}
