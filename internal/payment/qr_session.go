// Package payment opens payment sessions for scanned connector QR codes.
// Gateway calls (Chapa, TeleBirr) happen elsewhere.
package payment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"evmeri/internal/apperr"
	"evmeri/internal/connector"
	"evmeri/internal/models"
)

const SessionTTL = 15 * time.Minute

type ConnectorResolver interface {
	ResolveToken(ctx context.Context, token string) (*models.ChargingConnector, error)
}

type SessionRepository interface {
	Create(ctx context.Context, s *models.QRPaymentSession) error
}

type InitiateRequest struct {
	PaymentType  string            `json:"payment_type"`
	Amount       *connector.Number `json:"amount,omitempty"`
	KWhRequested *connector.Number `json:"kwh_requested,omitempty"`
	PhoneNumber  string            `json:"phone_number"`
}

type Initiation struct {
	Session   *models.QRPaymentSession  `json:"session"`
	Connector *models.ChargingConnector `json:"connector"`
	Amount    float64                   `json:"payment_amount"`
}

type Service struct {
	connectors ConnectorResolver
	sessions   SessionRepository
	lg         *zap.SugaredLogger
	now        func() time.Time
}

func NewService(connectors ConnectorResolver, sessions SessionRepository, lg *zap.SugaredLogger) *Service {
	return &Service{connectors: connectors, sessions: sessions, lg: lg, now: time.Now}
}

// Lookup returns the connector behind a scanned token.
func (s *Service) Lookup(ctx context.Context, token string) (*models.ChargingConnector, error) {
	return s.connectors.ResolveToken(ctx, token)
}

func (r InitiateRequest) validate() (models.QRPaymentSession, apperr.FieldErrors) {
	var fe apperr.FieldErrors
	sess := models.QRPaymentSession{
		PaymentType: models.QRPaymentType(r.PaymentType),
		PhoneNumber: strings.TrimSpace(r.PhoneNumber),
		Status:      models.QRSessionPending,
	}
	switch sess.PaymentType {
	case models.QRPayAmount:
		sess.Amount = positive(&fe, "amount", r.Amount)
	case models.QRPayEnergy:
		sess.KWhRequested = positive(&fe, "kwh_requested", r.KWhRequested)
	case models.QRPayFull:
	case "":
		fe.Add("payment_type", apperr.Required)
	default:
		fe.Add("payment_type", apperr.InvalidChoice)
	}
	if sess.PhoneNumber == "" {
		fe.Add("phone_number", apperr.Required)
	} else if len(sess.PhoneNumber) > 20 {
		fe.Add("phone_number", apperr.TooLong)
	}
	return sess, fe
}

func positive(fe *apperr.FieldErrors, field string, n *connector.Number) *float64 {
	if n == nil {
		fe.Add(field, apperr.Required)
		return nil
	}
	d, ok := n.Decimal(fe, field)
	if !ok {
		return nil
	}
	if d.Sign() <= 0 {
		fe.Add(field, apperr.MustBePositive)
		return nil
	}
	v := d.InexactFloat64()
	return &v
}

// Initiate opens a pending session on the scanned connector. The session
// expires after SessionTTL.
func (s *Service) Initiate(ctx context.Context, userID, token string, req InitiateRequest) (*Initiation, error) {
	conn, err := s.connectors.ResolveToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if !conn.IsAvailable || conn.AvailableQuantity <= 0 {
		return nil, apperr.BadRequest("this connector is currently not available")
	}
	sess, fe := req.validate()
	if fe != nil {
		return nil, fe
	}
	amount := sess.PaymentAmount(conn.PricePerKWh)
	if amount <= 0 {
		return nil, apperr.BadRequest("invalid payment amount calculated")
	}
	sess.UserID = userID
	sess.ConnectorID = conn.ID
	sess.ExpiresAt = s.now().Add(SessionTTL)
	if err := s.sessions.Create(ctx, &sess); err != nil {
		return nil, fmt.Errorf("create qr session: %w", err)
	}
	s.lg.Infow("qr payment session opened", "session_id", sess.ID, "connector_id", conn.ID, "amount", amount)
	return &Initiation{Session: &sess, Connector: conn, Amount: amount}, nil
}
