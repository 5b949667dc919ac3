package paymentRepo

import (
	"context"
	"errors"
	"fmt"

	"innkeeper/database"
	"innkeeper/models"

	"gorm.io/gorm"
)

// PaymentRow is the payments table row.
type PaymentRow struct {
	ID            int64   `gorm:"primaryKey;autoIncrement"`
	ReservationID int64   `gorm:"not null;index"`
	Amount        float64 `gorm:"not null"`
	Method        string  `gorm:"size:32;not null"`
	PaidOn        string  `gorm:"type:varchar(32);not null"`
}

func (PaymentRow) TableName() string { return "payments" }

// GormPaymentRepo implements PaymentRepository on MySQL.
type GormPaymentRepo struct {
	db *gorm.DB
}

func NewGormPaymentRepo(db *gorm.DB) PaymentRepository {
	return &GormPaymentRepo{db: db}
}

func (r *GormPaymentRepo) Insert(ctx context.Context, rec *models.PaymentRecord) (int64, error) {
	row := PaymentRow{
		ReservationID: rec.ReservationID,
		Amount:        rec.Amount,
		Method:        rec.Method,
		PaidOn:        rec.PaidOn,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return 0, fmt.Errorf("insert payment failed: %w", err)
	}
	rec.ID = row.ID
	return row.ID, nil
}

func (r *GormPaymentRepo) LatestByReservation(ctx context.Context, reservationID int64) (*models.PaymentRecord, error) {
	var row PaymentRow
	err := r.db.WithContext(ctx).Where("reservation_id = ?", reservationID).Order("id DESC").Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("payment for reservation %d: %w", reservationID, database.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching payment: %w", err)
	}
	return &models.PaymentRecord{
		ID:            row.ID,
		ReservationID: row.ReservationID,
		Amount:        row.Amount,
		Method:        row.Method,
		PaidOn:        row.PaidOn,
	}, nil
}
