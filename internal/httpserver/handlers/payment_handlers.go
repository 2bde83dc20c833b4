package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"evmeri/internal/auth"
	"evmeri/internal/models"
	"evmeri/internal/payment"
)

type connectorView struct {
	*models.ChargingConnector
	ConnectorTypeDisplay string `json:"connector_type_display"`
}

// QRLookup shows the connector behind a scanned code before payment.
func QRLookup(svc *payment.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := svc.Lookup(r.Context(), chi.URLParam(r, "qr_token"))
		if err != nil {
			writeError(w, lg, err)
			return
		}
		respondJSON(w, map[string]any{
			"success":   true,
			"connector": connectorView{c, c.ConnectorType.Display()},
		})
	}
}

func QRInitiate(svc *payment.Service, audits Auditor, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req payment.InitiateRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		uid := auth.Subject(r.Context())
		res, err := svc.Initiate(r.Context(), uid, chi.URLParam(r, "qr_token"), req)
		if err != nil {
			writeError(w, lg, err)
			return
		}
		audit(r.Context(), audits, lg, uid, "payment.qr_session.create", map[string]any{
			"session_id": res.Session.ID, "connector_id": res.Connector.ID, "amount": res.Amount,
		})
		respondStatus(w, http.StatusCreated, map[string]any{
			"success":        true,
			"message":        "Payment session created",
			"qr_session":     res.Session,
			"payment_amount": res.Amount,
		})
	}
}
