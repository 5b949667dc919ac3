package models

import (
	"encoding/json"
	"time"
)

// Payment methods offered at settlement.
const (
	MethodCreditCard = "Credit Card"
	MethodDebitCard  = "Debit Card"
	MethodCash       = "Cash"
)

// PaymentMethods lists the accepted method tags.
var PaymentMethods = []string{MethodCreditCard, MethodDebitCard, MethodCash}

// Payment is a settlement fact recorded against a reservation.
type Payment struct {
	ID            int64     `json:"id"`
	ReservationID int64     `json:"reservationId"`
	Amount        float64   `json:"amount"`
	Method        string    `json:"method"`
	PaidOn        time.Time `json:"-"`
}

func (p Payment) MarshalJSON() ([]byte, error) {
	type alias Payment
	return json.Marshal(struct {
		alias
		PaidOn string `json:"paidOn"`
	}{
		alias:  alias(p),
		PaidOn: p.PaidOn.Format("2006-01-02"),
	})
}

// PaymentRecord is a payment as persisted, with the date kept in its
// stored string form so readers decide how to handle bad values.
type PaymentRecord struct {
	ID            int64
	ReservationID int64
	Amount        float64
	Method        string
	PaidOn        string
}

// PaymentRequest is the input of a settlement call.
type PaymentRequest struct {
	ReservationID int64   `validate:"required,gt=0"`
	Amount        float64 `validate:"gte=0"`
	Method        string
}

// Receipt combines a reservation with its latest payment, if any.
type Receipt struct {
	Reservation Reservation `json:"reservation"`
	Room        *Room       `json:"room,omitempty"`
	Payment     *Payment    `json:"payment,omitempty"`
}
