package settlement

import (
	"context"
	"fmt"
	"strings"
	"time"

	paymentRepo "innkeeper/database/repository/payment"
	reservationRepo "innkeeper/database/repository/reservation"
	"innkeeper/models"
	"innkeeper/services/booking"
	"innkeeper/services/interval"
	"innkeeper/utils"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Recorder stores payment facts against reservations. Amounts are not
// reconciled against the reservation price.
type Recorder interface {
	Record(ctx context.Context, reservationID int64, amount float64, method string) (*models.Payment, error)
	Lookup(ctx context.Context, reservationID int64) (*models.Payment, error)
}

// DefaultRecorder implements Recorder.
type DefaultRecorder struct {
	Ledger   reservationRepo.ReservationRepository
	Payments paymentRepo.PaymentRepository
	Now      func() time.Time
	validate *validator.Validate
}

func NewRecorder(ledger reservationRepo.ReservationRepository, payments paymentRepo.PaymentRepository, now func() time.Time) *DefaultRecorder {
	if now == nil {
		now = time.Now
	}
	return &DefaultRecorder{
		Ledger:   ledger,
		Payments: payments,
		Now:      now,
		validate: validator.New(),
	}
}

// NormalizeMethod maps a method tag onto one of models.PaymentMethods,
// ignoring case. Unknown tags become Credit Card; ok reports whether the
// tag was recognised.
func NormalizeMethod(method string) (normalized string, ok bool) {
	for _, m := range models.PaymentMethods {
		if strings.EqualFold(strings.TrimSpace(method), m) {
			return m, true
		}
	}
	return models.MethodCreditCard, false
}

func (r *DefaultRecorder) Record(ctx context.Context, reservationID int64, amount float64, method string) (*models.Payment, error) {
	logger := utils.GetLogger()

	req := models.PaymentRequest{ReservationID: reservationID, Amount: amount, Method: method}
	if err := r.validate.Struct(req); err != nil {
		return nil, booking.NewError(booking.KindInvalidRequest, "invalid payment", err)
	}
	if _, err := r.Ledger.GetByID(ctx, reservationID); err != nil {
		return nil, booking.Classify(fmt.Sprintf("reservation %d", reservationID), err)
	}

	normalized, ok := NormalizeMethod(method)
	if !ok {
		logger.Info("Unknown payment method, defaulting", zap.String("method", method), zap.String("usedMethod", normalized))
	}

	paidOn := interval.Day(r.Now())
	rec := &models.PaymentRecord{
		ReservationID: reservationID,
		Amount:        utils.RoundCents(amount),
		Method:        normalized,
		PaidOn:        utils.FormatDate(paidOn),
	}
	if _, err := r.Payments.Insert(ctx, rec); err != nil {
		return nil, booking.Classify("payment not recorded", err)
	}

	logger.Info("Payment recorded",
		zap.Int64("paymentId", rec.ID),
		zap.Int64("reservationId", reservationID),
		zap.Float64("amount", rec.Amount),
		zap.String("method", normalized))
	return &models.Payment{
		ID:            rec.ID,
		ReservationID: reservationID,
		Amount:        rec.Amount,
		Method:        normalized,
		PaidOn:        paidOn,
	}, nil
}

// Lookup returns the latest payment for a reservation. A stored date that
// does not parse is reported as today.
func (r *DefaultRecorder) Lookup(ctx context.Context, reservationID int64) (*models.Payment, error) {
	rec, err := r.Payments.LatestByReservation(ctx, reservationID)
	if err != nil {
		return nil, booking.Classify(fmt.Sprintf("payment for reservation %d", reservationID), err)
	}

	paidOn, perr := utils.ParseDate(rec.PaidOn)
	if perr != nil {
		utils.GetLogger().Warn("Stored payment date unreadable, using today",
			zap.Int64("paymentId", rec.ID), zap.Error(perr))
		paidOn = interval.Day(r.Now())
	}
	return &models.Payment{
		ID:            rec.ID,
		ReservationID: rec.ReservationID,
		Amount:        rec.Amount,
		Method:        rec.Method,
		PaidOn:        paidOn,
	}, nil
}
