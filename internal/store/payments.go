package store

import (
	"context"

	"gorm.io/gorm"

	"evmeri/internal/models"
)

type QRSessions struct {
	db *gorm.DB
}

func NewQRSessions(db *gorm.DB) *QRSessions { return &QRSessions{db: db} }

func (q *QRSessions) Create(ctx context.Context, s *models.QRPaymentSession) error {
	return translate(q.db.WithContext(ctx).Create(s).Error, "qr payment session")
}
