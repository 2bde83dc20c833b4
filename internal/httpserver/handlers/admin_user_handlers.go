package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"evmeri/internal/apperr"
	"evmeri/internal/auth"
	"evmeri/internal/models"
	"evmeri/internal/store"
)

func ListUsers(users Accounts, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := users.List(r.Context())
		if err != nil {
			writeError(w, lg, err)
			return
		}
		respondJSON(w, list)
	}
}

func CreateUser(users Accounts, audits Auditor, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string   `json:"email"`
			Password string   `json:"password"`
			Roles    []string `json:"roles"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.Email) == "" || req.Password == "" {
			http.Error(w, "email/password required", http.StatusBadRequest)
			return
		}
		if len(req.Roles) == 0 {
			req.Roles = []string{models.RoleUser}
		}
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			writeError(w, lg, err)
			return
		}
		u := models.User{Email: req.Email, PasswordHash: hash, IsActive: true}
		if err := users.Create(r.Context(), &u, req.Roles); err != nil {
			writeError(w, lg, err)
			return
		}
		audit(r.Context(), audits, lg, auth.Subject(r.Context()), "admin.user.create", map[string]any{"user_id": u.ID})
		respondStatus(w, http.StatusCreated, map[string]any{"id": u.ID})
	}
}

func UpdateUser(users Accounts, audits Auditor, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var req struct {
			Email    *string  `json:"email"`
			IsActive *bool    `json:"is_active"`
			Password *string  `json:"password,omitempty"`
			Roles    []string `json:"roles,omitempty"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		p := store.UserPatch{Email: req.Email, IsActive: req.IsActive, Roles: req.Roles}
		if req.Password != nil && *req.Password != "" {
			if len(*req.Password) < minPasswordLen {
				writeError(w, lg, apperr.FieldErrors{{Field: "password", Reason: apperr.InvalidFormat}})
				return
			}
			hash, err := auth.HashPassword(*req.Password)
			if err != nil {
				writeError(w, lg, err)
				return
			}
			p.PasswordHash = &hash
		}
		if _, err := users.Update(r.Context(), id, p); err != nil {
			writeError(w, lg, err)
			return
		}
		audit(r.Context(), audits, lg, auth.Subject(r.Context()), "admin.user.update", map[string]any{"user_id": id})
		respondJSON(w, map[string]any{"updated": true})
	}
}

func DeleteUser(users Accounts, audits Auditor, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == auth.Subject(r.Context()) {
			respondMessage(w, http.StatusBadRequest, "cannot delete your own account")
			return
		}
		if err := users.Delete(r.Context(), id); err != nil {
			writeError(w, lg, err)
			return
		}
		audit(r.Context(), audits, lg, auth.Subject(r.Context()), "admin.user.delete", map[string]any{"user_id": id})
		respondJSON(w, map[string]any{"deleted": true})
	}
}
