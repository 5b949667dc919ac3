package booking

import (
	"context"
	"fmt"
	"time"

	reservationRepo "innkeeper/database/repository/reservation"
	"innkeeper/models"
	"innkeeper/services/catalog"
	"innkeeper/services/interval"
	"innkeeper/services/roomlock"
	"innkeeper/utils"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Engine decides availability, prices stays and commits or cancels
// reservations while keeping Active reservations on a room disjoint.
type Engine interface {
	IsAvailable(ctx context.Context, roomID int64, checkIn, checkOut time.Time) (bool, error)
	Quote(ctx context.Context, roomID int64, checkIn, checkOut time.Time) (float64, error)
	Book(ctx context.Context, req models.BookingRequest) (*models.BookingResult, error)
	Cancel(ctx context.Context, reservationID int64) (*models.CancellationResult, error)
	GetReservation(ctx context.Context, reservationID int64) (*models.Reservation, error)
}

// DefaultBookingEngine implements Engine.
type DefaultBookingEngine struct {
	Catalog  catalog.Service
	Ledger   reservationRepo.ReservationRepository
	Locker   roomlock.Locker
	Repairer FlagRepairer
	validate *validator.Validate
}

func NewBookingEngine(cat catalog.Service, ledger reservationRepo.ReservationRepository, locker roomlock.Locker, repairer FlagRepairer) *DefaultBookingEngine {
	if repairer == nil {
		repairer = NoopRepairer
	}
	return &DefaultBookingEngine{
		Catalog:  cat,
		Ledger:   ledger,
		Locker:   locker,
		Repairer: repairer,
		validate: validator.New(),
	}
}

func (e *DefaultBookingEngine) IsAvailable(ctx context.Context, roomID int64, checkIn, checkOut time.Time) (bool, error) {
	conflict, err := e.Ledger.HasConflict(ctx, roomID, interval.Day(checkIn), interval.Day(checkOut))
	if err != nil {
		return false, Classify("availability check failed", err)
	}
	return !conflict, nil
}

// Quote prices a stay as nights times the room's current nightly rate.
func (e *DefaultBookingEngine) Quote(ctx context.Context, roomID int64, checkIn, checkOut time.Time) (float64, error) {
	checkIn, checkOut = interval.Day(checkIn), interval.Day(checkOut)
	if err := interval.Validate(checkIn, checkOut); err != nil {
		return 0, NewError(KindInvalidInterval, "stay must cover at least one night", err)
	}
	rate, err := e.Catalog.NightlyRate(ctx, roomID)
	if err != nil {
		return 0, Classify(fmt.Sprintf("room %d", roomID), err)
	}
	return utils.RoundCents(float64(interval.Nights(checkIn, checkOut)) * rate), nil
}

// Book validates, checks availability, prices and commits a reservation,
// then recomputes the room's flag, which turns false when the stay covers
// today. A failed flag write after the commit is reported as a warning; the
// reservation stands.
func (e *DefaultBookingEngine) Book(ctx context.Context, req models.BookingRequest) (*models.BookingResult, error) {
	logger := utils.GetLogger()

	if err := e.validate.Struct(req); err != nil {
		return nil, NewError(KindInvalidRequest, "invalid booking request", err)
	}
	checkIn, checkOut := interval.Day(req.CheckIn), interval.Day(req.CheckOut)
	if err := interval.Validate(checkIn, checkOut); err != nil {
		return nil, NewError(KindInvalidInterval, "stay must cover at least one night", err)
	}

	unlock, err := e.Locker.Lock(ctx, req.RoomID)
	if err != nil {
		return nil, NewError(KindStorageFailure, "room is busy, retry later", err)
	}
	defer unlock()

	available, err := e.IsAvailable(ctx, req.RoomID, checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, NewError(KindConflict, fmt.Sprintf("room %d is not available from %s to %s",
			req.RoomID, utils.FormatDate(checkIn), utils.FormatDate(checkOut)), nil)
	}

	price, err := e.Quote(ctx, req.RoomID, checkIn, checkOut)
	if err != nil {
		return nil, err
	}

	res := &models.Reservation{
		RoomID:       req.RoomID,
		GuestName:    req.GuestName,
		GuestContact: req.GuestContact,
		CheckIn:      checkIn,
		CheckOut:     checkOut,
		TotalPrice:   price,
		Status:       models.StatusActive,
	}
	if _, err := e.Ledger.Insert(ctx, res); err != nil {
		return nil, Classify("reservation not recorded", err)
	}

	result := &models.BookingResult{Reservation: *res}
	if _, err := e.Catalog.RecomputeFlag(ctx, req.RoomID); err != nil {
		logger.Warn("Reservation committed but availability flag not updated",
			zap.Int64("reservationId", res.ID), zap.Int64("roomId", req.RoomID), zap.Error(err))
		result.Warnings = append(result.Warnings, fmt.Sprintf("room %d availability flag not updated: %v", req.RoomID, err))
		e.scheduleRepair(ctx, req.RoomID)
	}

	logger.Info("Reservation booked",
		zap.Int64("reservationId", res.ID),
		zap.Int64("roomId", res.RoomID),
		zap.String("checkIn", utils.FormatDate(checkIn)),
		zap.String("checkOut", utils.FormatDate(checkOut)),
		zap.Float64("totalPrice", price))
	return result, nil
}

// Cancel marks a reservation Cancelled and recomputes its room's
// availability hint from the ledger.
func (e *DefaultBookingEngine) Cancel(ctx context.Context, reservationID int64) (*models.CancellationResult, error) {
	logger := utils.GetLogger()

	res, err := e.Ledger.GetByID(ctx, reservationID)
	if err != nil {
		return nil, Classify(fmt.Sprintf("reservation %d", reservationID), err)
	}

	unlock, err := e.Locker.Lock(ctx, res.RoomID)
	if err != nil {
		return nil, NewError(KindStorageFailure, "room is busy, retry later", err)
	}
	defer unlock()

	if err := e.Ledger.MarkCancelled(ctx, reservationID); err != nil {
		return nil, Classify(fmt.Sprintf("reservation %d not cancelled", reservationID), err)
	}

	result := &models.CancellationResult{ReservationID: reservationID, RoomID: res.RoomID}
	available, err := e.Catalog.RecomputeFlag(ctx, res.RoomID)
	if err != nil {
		logger.Warn("Reservation cancelled but availability flag not refreshed",
			zap.Int64("reservationId", reservationID), zap.Int64("roomId", res.RoomID), zap.Error(err))
		result.Warnings = append(result.Warnings, fmt.Sprintf("room %d availability flag not refreshed: %v", res.RoomID, err))
		e.scheduleRepair(ctx, res.RoomID)
	} else {
		result.RoomAvailable = &available
	}

	logger.Info("Reservation cancelled", zap.Int64("reservationId", reservationID), zap.Int64("roomId", res.RoomID))
	return result, nil
}

func (e *DefaultBookingEngine) GetReservation(ctx context.Context, reservationID int64) (*models.Reservation, error) {
	res, err := e.Ledger.GetByID(ctx, reservationID)
	if err != nil {
		return nil, Classify(fmt.Sprintf("reservation %d", reservationID), err)
	}
	return res, nil
}

func (e *DefaultBookingEngine) scheduleRepair(ctx context.Context, roomID int64) {
	if err := e.Repairer.ScheduleFlagRepair(ctx, roomID); err != nil {
		utils.GetLogger().Error("Failed to schedule availability flag repair", zap.Int64("roomId", roomID), zap.Error(err))
	}
}
