package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"evmeri/internal/auth"
)

func TestRouterPublicAndProtected(t *testing.T) {
	h := NewRouter(Deps{Signer: auth.NewSigner("secret", time.Hour)}, zap.NewNop().Sugar())

	cases := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/api/auth/me", http.StatusUnauthorized},
		{http.MethodPost, "/api/stations/owner/stations/S1/connectors/", http.StatusUnauthorized},
		{http.MethodGet, "/api/admin/users", http.StatusUnauthorized},
		{http.MethodPatch, "/api/stations/owner/stations/S1", http.StatusUnauthorized},
		{http.MethodDelete, "/api/stations/owner/stations/S1", http.StatusUnauthorized},
		{http.MethodPost, "/api/stations/owner/reviews/R1/reply", http.StatusUnauthorized},
		{http.MethodPost, "/api/stations/stations/S1/reviews/", http.StatusUnauthorized},
		{http.MethodGet, "/api/stations/favorites/", http.StatusUnauthorized},
		{http.MethodPost, "/api/stations/favorites/S1/toggle/", http.StatusUnauthorized},
		{http.MethodPost, "/api/auth/telegram", http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}
