// File: database/repository/payment/interface.go
package paymentRepo

import (
	"context"

	"innkeeper/models"
)

// PaymentRepository stores settlement facts. Payments are append-only.
type PaymentRepository interface {
	Insert(ctx context.Context, rec *models.PaymentRecord) (int64, error)
	// LatestByReservation returns the most recently recorded payment.
	LatestByReservation(ctx context.Context, reservationID int64) (*models.PaymentRecord, error)
}
