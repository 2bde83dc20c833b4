package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"evmeri/internal/apperr"
	"evmeri/internal/auth"
	"evmeri/internal/models"
	"evmeri/internal/store"
)

// Accounts is the user store the auth and admin handlers work against.
type Accounts interface {
	Create(ctx context.Context, u *models.User, roles []string) error
	ByEmail(ctx context.Context, email string) (*models.User, error)
	ByID(ctx context.Context, id string) (*models.User, error)
	UpsertTelegram(ctx context.Context, tu auth.TelegramUser) (*models.User, bool, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, id string, p store.UserPatch) (*models.User, error)
	Delete(ctx context.Context, id string) error
}

type SessionStore interface {
	Open(ctx context.Context, s *models.Session) error
	Revoke(ctx context.Context, jti string) error
}

type registerReq struct {
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	PhoneNumber *string `json:"phone_number,omitempty"`
}

const minPasswordLen = 8

func Register(users Accounts, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerReq
		if !decodeJSON(w, r, &req) {
			return
		}
		var fe apperr.FieldErrors
		req.Email = strings.TrimSpace(strings.ToLower(req.Email))
		if req.Email == "" {
			fe.Add("email", apperr.Required)
		} else if _, err := mail.ParseAddress(req.Email); err != nil {
			fe.Add("email", apperr.InvalidFormat)
		}
		if req.Password == "" {
			fe.Add("password", apperr.Required)
		} else if len(req.Password) < minPasswordLen {
			fe.Add("password", apperr.InvalidFormat)
		}
		if fe != nil {
			writeError(w, lg, fe)
			return
		}
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			writeError(w, lg, err)
			return
		}
		u := models.User{
			Email: req.Email, PasswordHash: hash, IsActive: true,
			FirstName: req.FirstName, LastName: req.LastName, PhoneNumber: req.PhoneNumber,
		}
		if err := users.Create(r.Context(), &u, []string{models.RoleUser}); err != nil {
			if errors.Is(err, apperr.ErrConflict) {
				respondMessage(w, http.StatusConflict, "email already registered")
				return
			}
			writeError(w, lg, err)
			return
		}
		respondStatus(w, http.StatusCreated, map[string]any{"id": u.ID, "email": u.Email, "roles": u.RoleNames()})
	}
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// issue signs a token for u and records its session.
func issue(ctx context.Context, u *models.User, signer *auth.Signer, sessions SessionStore) (auth.Issued, error) {
	iss, err := signer.Sign(u.ID, u.RoleNames())
	if err != nil {
		return auth.Issued{}, err
	}
	if err := sessions.Open(ctx, &models.Session{JTI: iss.JWTID, UserID: u.ID, ExpiresAt: iss.ExpiresAt}); err != nil {
		return auth.Issued{}, err
	}
	return iss, nil
}

func Login(users Accounts, sessions SessionStore, signer *auth.Signer, audits Auditor, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginReq
		if !decodeJSON(w, r, &req) {
			return
		}
		u, err := users.ByEmail(r.Context(), req.Email)
		if err != nil || !u.IsActive {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		if err := auth.CheckPassword(u.PasswordHash, req.Password); err != nil {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		iss, err := issue(r.Context(), u, signer, sessions)
		if err != nil {
			writeError(w, lg, err)
			return
		}
		audit(r.Context(), audits, lg, u.ID, "auth.login", nil)
		respondJSON(w, map[string]any{"token": iss.Token, "expires_at": iss.ExpiresAt})
	}
}

type telegramReq struct {
	InitData  string `json:"init_data"`
	InitDataC string `json:"initData"`
}

// TelegramLogin accepts mini-app init data from the
// "Authorization: Telegram-Mini-App <data>" header or the JSON body.
func TelegramLogin(users Accounts, sessions SessionStore, signer *auth.Signer, verifier *auth.InitDataVerifier, audits Auditor, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := ""
		if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Telegram-Mini-App ") {
			raw = strings.TrimPrefix(h, "Telegram-Mini-App ")
		}
		if raw == "" && r.ContentLength != 0 {
			var req telegramReq
			if !decodeJSON(w, r, &req) {
				return
			}
			raw = req.InitData
			if raw == "" {
				raw = req.InitDataC
			}
		}
		if raw == "" {
			respondMessage(w, http.StatusBadRequest, "No Telegram initData found.")
			return
		}
		tu, err := verifier.Verify(raw)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidInitData) {
				respondMessage(w, http.StatusUnauthorized, "Invalid Telegram initData signature.")
				return
			}
			respondMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		u, created, err := users.UpsertTelegram(r.Context(), tu)
		if err != nil {
			writeError(w, lg, err)
			return
		}
		iss, err := issue(r.Context(), u, signer, sessions)
		if err != nil {
			writeError(w, lg, err)
			return
		}
		audit(r.Context(), audits, lg, u.ID, "auth.telegram", map[string]any{"telegram_id": tu.ID, "created": created})
		respondJSON(w, map[string]any{
			"message":   "Authentication successful",
			"user_data": tu,
			"token":     iss.Token,
		})
	}
}

func Me(users Accounts, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := users.ByID(r.Context(), auth.Subject(r.Context()))
		if err != nil {
			writeError(w, lg, err)
			return
		}
		respondJSON(w, map[string]any{
			"id": u.ID, "email": u.Email, "name": u.DisplayName(), "roles": u.RoleNames(), "is_active": u.IsActive,
		})
	}
}

func Logout(sessions SessionStore, audits Auditor, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := auth.FromContext(r.Context())
		if err := sessions.Revoke(r.Context(), c.JWTID); err != nil {
			writeError(w, lg, err)
			return
		}
		audit(r.Context(), audits, lg, c.Subject, "auth.logout", nil)
		respondJSON(w, map[string]any{"logged_out": true})
	}
}
