package paymentRepo

import (
	"context"
	"fmt"
	"sync"

	"innkeeper/database"
	"innkeeper/models"
)

// MemoryPaymentRepo keeps payments in insertion order.
type MemoryPaymentRepo struct {
	mu   sync.RWMutex
	rows []models.PaymentRecord
}

func NewMemoryPaymentRepo() *MemoryPaymentRepo {
	return &MemoryPaymentRepo{}
}

func (r *MemoryPaymentRepo) Insert(_ context.Context, rec *models.PaymentRecord) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *rec
	stored.ID = int64(len(r.rows) + 1)
	r.rows = append(r.rows, stored)
	rec.ID = stored.ID
	return stored.ID, nil
}

func (r *MemoryPaymentRepo) LatestByReservation(_ context.Context, reservationID int64) (*models.PaymentRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := len(r.rows) - 1; i >= 0; i-- {
		if r.rows[i].ReservationID == reservationID {
			out := r.rows[i]
			return &out, nil
		}
	}
	return nil, fmt.Errorf("payment for reservation %d: %w", reservationID, database.ErrNotFound)
}
