package handlers

import (
	"net/http"
	"time"

	"innkeeper/models"
	"innkeeper/resolvers"
	"innkeeper/services/booking"
	"innkeeper/services/settlement"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ReservationHandler serves booking, cancellation and settlement.
type ReservationHandler struct {
	Engine   booking.Engine
	Recorder settlement.Recorder
	Resolver *resolvers.Resolver
	Now      func() time.Time
}

func NewReservationHandler(engine booking.Engine, recorder settlement.Recorder, resolver *resolvers.Resolver, now func() time.Time) *ReservationHandler {
	if now == nil {
		now = time.Now
	}
	return &ReservationHandler{Engine: engine, Recorder: recorder, Resolver: resolver, Now: now}
}

type bookInput struct {
	RoomID       int64  `json:"roomId" binding:"required,gt=0"`
	GuestName    string `json:"guestName" binding:"required"`
	GuestContact string `json:"guestContact" binding:"required"`
	CheckIn      string `json:"checkIn" binding:"required"`
	CheckOut     string `json:"checkOut" binding:"required"`
}

type paymentInput struct {
	Amount float64 `json:"amount" binding:"gte=0"`
	Method string  `json:"method"`
}

type checkoutInput struct {
	RoomLabel     string `json:"roomLabel" binding:"required"`
	GuestName     string `json:"guestName" binding:"required"`
	GuestContact  string `json:"guestContact" binding:"required"`
	CheckIn       string `json:"checkIn" binding:"required"`
	CheckOut      string `json:"checkOut" binding:"required"`
	PaymentMethod string `json:"paymentMethod"`
}

// BookHandler commits a reservation for a room id.
func (h *ReservationHandler) BookHandler(c *gin.Context) {
	var input bookInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	checkIn, checkOut, ok := parseStay(c, input.CheckIn, input.CheckOut, h.Now())
	if !ok {
		return
	}

	result, err := h.Engine.Book(c.Request.Context(), models.BookingRequest{
		RoomID:       input.RoomID,
		GuestName:    input.GuestName,
		GuestContact: input.GuestContact,
		CheckIn:      checkIn,
		CheckOut:     checkOut,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	if len(result.Warnings) > 0 {
		getLogger(c).Warn("Booking completed with warnings",
			zap.Int64("reservationId", result.Reservation.ID), zap.Strings("warnings", result.Warnings))
	}
	c.JSON(http.StatusCreated, result)
}

// GetReservationHandler returns a reservation by id.
func (h *ReservationHandler) GetReservationHandler(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	res, err := h.Engine.GetReservation(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// CancelHandler cancels a reservation and reopens its room.
func (h *ReservationHandler) CancelHandler(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	result, err := h.Engine.Cancel(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// RecordPaymentHandler stores a payment fact against a reservation.
func (h *ReservationHandler) RecordPaymentHandler(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var input paymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	payment, err := h.Recorder.Record(c.Request.Context(), id, input.Amount, input.Method)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, payment)
}

// GetPaymentHandler returns the latest payment for a reservation.
func (h *ReservationHandler) GetPaymentHandler(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	payment, err := h.Recorder.Lookup(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

// ReceiptHandler returns the reservation, its room and its latest payment.
func (h *ReservationHandler) ReceiptHandler(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	receipt, err := h.Resolver.Receipt(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, receipt)
}

// CheckoutHandler reserves a room by label and optionally pays in full.
func (h *ReservationHandler) CheckoutHandler(c *gin.Context) {
	var input checkoutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	checkIn, checkOut, ok := parseStay(c, input.CheckIn, input.CheckOut, h.Now())
	if !ok {
		return
	}

	result, err := h.Resolver.Checkout(c.Request.Context(), resolvers.CheckoutInput{
		RoomLabel:     input.RoomLabel,
		GuestName:     input.GuestName,
		GuestContact:  input.GuestContact,
		CheckIn:       checkIn,
		CheckOut:      checkOut,
		PaymentMethod: input.PaymentMethod,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}
