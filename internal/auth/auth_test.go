package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"

	"evmeri/internal/models"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	s := NewSigner("secret", time.Hour)
	iss, err := s.Sign("u1", []string{models.RoleStationOwner})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	c, err := s.Verify(iss.Token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if c.Subject != "u1" || c.JWTID != iss.JWTID || !c.HasRole(models.RoleStationOwner) {
		t.Errorf("claims = %+v", c)
	}
}

func TestVerifyRejectsWrongKeyAndExpired(t *testing.T) {
	s := NewSigner("secret", time.Minute)
	iss, _ := s.Sign("u1", nil)
	if _, err := NewSigner("other", time.Minute).Verify(iss.Token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("wrong key: %v", err)
	}
	s.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	if _, err := s.Verify(iss.Token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired: %v", err)
	}
}

func TestPasswordHash(t *testing.T) {
	h, err := HashPassword("hunter22")
	if err != nil {
		t.Fatal(err)
	}
	if CheckPassword(h, "hunter22") != nil || CheckPassword(h, "nope") == nil {
		t.Error("bcrypt check mismatch")
	}
}

type fakeSessions map[string]bool

func (f fakeSessions) SessionActive(_ context.Context, jti string) (bool, error) {
	return f[jti], nil
}

func TestJWTAuthMiddleware(t *testing.T) {
	s := NewSigner("secret", time.Hour)
	live, _ := s.Sign("u1", []string{models.RoleAdministrator})
	revoked, _ := s.Sign("u2", nil)
	sessions := fakeSessions{live.JWTID: true}

	h := JWTAuth(s, sessions)(RequireRole(models.RoleAdministrator)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if Subject(r.Context()) != "u1" {
			t.Errorf("subject = %q", Subject(r.Context()))
		}
		w.WriteHeader(http.StatusNoContent)
	})))

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"garbage", "Bearer abc", http.StatusUnauthorized},
		{"revoked session", "Bearer " + revoked.Token, http.StatusUnauthorized},
		{"ok", "Bearer " + live.Token, http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestRequireRoleForbids(t *testing.T) {
	h := RequireRole(models.RoleAdministrator)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("handler reached")
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithClaims(req.Context(), Claims{Subject: "u", Roles: []string{models.RoleUser}}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d", rec.Code)
	}
}

// signedInitData builds init data the way Telegram signs it: the data-check
// string is the sorted key=value lines, keyed by HMAC("WebAppData", token).
func signedInitData(botToken string, authDate time.Time, user string) string {
	vals := url.Values{}
	vals.Set("query_id", "AAH")
	vals.Set("auth_date", strconv.FormatInt(authDate.Unix(), 10))
	vals.Set("user", user)

	keys := make([]string, 0, len(vals))
	for k := range vals {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, k+"="+vals.Get(k))
	}
	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))
	m := hmac.New(sha256.New, secret.Sum(nil))
	m.Write([]byte(strings.Join(lines, "\n")))
	vals.Set("hash", hex.EncodeToString(m.Sum(nil)))
	return vals.Encode()
}

func TestInitDataVerify(t *testing.T) {
	const botToken = "123:ABC"
	v := NewInitDataVerifier(botToken, time.Hour)
	now := time.Now()
	raw := signedInitData(botToken, now, `{"id":42,"first_name":"Abebe","username":"abebe"}`)

	u, err := v.Verify(raw)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if u.ID != 42 || u.FirstName != "Abebe" {
		t.Errorf("user = %+v", u)
	}

	if _, err := NewInitDataVerifier("other", time.Hour).Verify(raw); !errors.Is(err, ErrInvalidInitData) {
		t.Errorf("wrong bot token accepted: %v", err)
	}

	if _, err := v.Verify(raw + "&extra=1"); !errors.Is(err, ErrInvalidInitData) {
		t.Errorf("tampered init data accepted: %v", err)
	}

	stale := signedInitData(botToken, now.Add(-2*time.Hour), `{"id":42}`)
	if _, err := v.Verify(stale); !errors.Is(err, ErrInitDataExpired) {
		t.Errorf("stale init data: %v", err)
	}
	if _, err := NewInitDataVerifier(botToken, 0).Verify(stale); err != nil {
		t.Errorf("zero max age should skip the age check: %v", err)
	}

	noUser := signedInitData(botToken, now, `{}`)
	if _, err := v.Verify(noUser); !errors.Is(err, ErrNoTelegramUser) {
		t.Errorf("init data without user: %v", err)
	}
}
