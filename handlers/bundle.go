// File: innkeeper/handlers/bundle.go
package handlers

import "github.com/gin-gonic/gin"

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Room endpoints
	ListAvailableRooms gin.HandlerFunc
	SearchRooms        gin.HandlerFunc
	FindRoomByLabel    gin.HandlerFunc
	QuoteRoom          gin.HandlerFunc

	// Reservation endpoints
	Book           gin.HandlerFunc
	GetReservation gin.HandlerFunc
	Cancel         gin.HandlerFunc
	RecordPayment  gin.HandlerFunc
	GetPayment     gin.HandlerFunc
	Receipt        gin.HandlerFunc
	Checkout       gin.HandlerFunc

	Health gin.HandlerFunc
}

// NewHandlerBundle wires room and reservation handlers into a bundle.
func NewHandlerBundle(rooms *RoomHandler, reservations *ReservationHandler) *HandlerBundle {
	return &HandlerBundle{
		ListAvailableRooms: rooms.ListAvailableHandler,
		SearchRooms:        rooms.SearchHandler,
		FindRoomByLabel:    rooms.FindByLabelHandler,
		QuoteRoom:          rooms.QuoteHandler,

		Book:           reservations.BookHandler,
		GetReservation: reservations.GetReservationHandler,
		Cancel:         reservations.CancelHandler,
		RecordPayment:  reservations.RecordPaymentHandler,
		GetPayment:     reservations.GetPaymentHandler,
		Receipt:        reservations.ReceiptHandler,
		Checkout:       reservations.CheckoutHandler,

		Health: HealthHandler,
	}
}
