package resolvers

import (
	"context"
	"fmt"
	"time"

	"innkeeper/models"
	"innkeeper/services/booking"
	"innkeeper/services/catalog"
	"innkeeper/services/settlement"
	"innkeeper/utils"

	"go.uber.org/zap"
)

// CheckoutInput reserves a room by its label and optionally settles the
// full price in the same call.
type CheckoutInput struct {
	RoomLabel    string
	GuestName    string
	GuestContact string
	CheckIn      time.Time
	CheckOut     time.Time
	// PaymentMethod is empty when the guest pays later.
	PaymentMethod string
}

// CheckoutResult carries everything a receipt needs. Room is the catalog
// entry as found before booking.
type CheckoutResult struct {
	Room        models.Room        `json:"room"`
	Reservation models.Reservation `json:"reservation"`
	Payment     *models.Payment    `json:"payment,omitempty"`
	Warnings    []string           `json:"warnings,omitempty"`
}

// Resolver composes the catalog, engine and recorder into guest-facing flows.
type Resolver struct {
	Catalog  catalog.Service
	Engine   booking.Engine
	Recorder settlement.Recorder
}

// Checkout finds an available room by label, books it and, when a payment
// method is given, records a payment of the total price. A failed payment
// does not undo the reservation; it is returned as a warning.
func (r *Resolver) Checkout(ctx context.Context, input CheckoutInput) (*CheckoutResult, error) {
	logger := utils.GetLogger()

	room, err := r.Catalog.FindByLabel(ctx, input.RoomLabel)
	if err != nil {
		return nil, booking.Classify(fmt.Sprintf("room %q is not available", input.RoomLabel), err)
	}

	booked, err := r.Engine.Book(ctx, models.BookingRequest{
		RoomID:       room.ID,
		GuestName:    input.GuestName,
		GuestContact: input.GuestContact,
		CheckIn:      input.CheckIn,
		CheckOut:     input.CheckOut,
	})
	if err != nil {
		return nil, err
	}

	resp := &CheckoutResult{
		Room:        *room,
		Reservation: booked.Reservation,
		Warnings:    booked.Warnings,
	}

	if input.PaymentMethod == "" {
		return resp, nil
	}
	payment, err := r.Recorder.Record(ctx, booked.Reservation.ID, booked.Reservation.TotalPrice, input.PaymentMethod)
	if err != nil {
		logger.Warn("Checkout payment failed; reservation kept",
			zap.Int64("reservationId", booked.Reservation.ID), zap.Error(err))
		resp.Warnings = append(resp.Warnings, fmt.Sprintf("payment not recorded: %v", err))
		return resp, nil
	}
	resp.Payment = payment
	return resp, nil
}

// Receipt assembles a reservation, its room and its latest payment.
func (r *Resolver) Receipt(ctx context.Context, reservationID int64) (*models.Receipt, error) {
	res, err := r.Engine.GetReservation(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	receipt := &models.Receipt{Reservation: *res}

	if room, err := r.Catalog.GetRoom(ctx, res.RoomID); err == nil {
		receipt.Room = room
	} else {
		utils.GetLogger().Warn("Receipt room lookup failed", zap.Int64("roomId", res.RoomID), zap.Error(err))
	}

	payment, err := r.Recorder.Lookup(ctx, reservationID)
	switch {
	case err == nil:
		receipt.Payment = payment
	case booking.KindOf(err) == booking.KindNotFound:
	default:
		return nil, err
	}
	return receipt, nil
}
