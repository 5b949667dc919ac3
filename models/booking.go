package models

import (
	"encoding/json"
	"fmt"
	"time"

	"innkeeper/services/interval"
)

// ReservationStatus is the lifecycle state of a reservation.
type ReservationStatus int

const (
	StatusActive ReservationStatus = iota + 1
	StatusCancelled
)

var statusNames = map[ReservationStatus]string{
	StatusActive:    "Active",
	StatusCancelled: "Cancelled",
}

func (s ReservationStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("ReservationStatus(%d)", int(s))
}

// ParseReservationStatus maps a stored status name back to its value.
// "Confirmed" is accepted as a legacy alias of Active.
func ParseReservationStatus(s string) (ReservationStatus, error) {
	switch s {
	case "Active", "Confirmed":
		return StatusActive, nil
	case "Cancelled":
		return StatusCancelled, nil
	}
	return 0, fmt.Errorf("unknown reservation status %q", s)
}

// CanTransitionTo reports whether moving from s to next is legal.
// The only legal transition is Active -> Cancelled.
func (s ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
	return s == StatusActive && next == StatusCancelled
}

func (s ReservationStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *ReservationStatus) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return err
	}
	parsed, err := ParseReservationStatus(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Reservation is a ledger entry holding a room for [CheckIn, CheckOut).
type Reservation struct {
	ID           int64             `json:"id"`
	RoomID       int64             `json:"roomId"`
	GuestName    string            `json:"guestName"`
	GuestContact string            `json:"guestContact"`
	CheckIn      time.Time         `json:"-"`
	CheckOut     time.Time         `json:"-"`
	TotalPrice   float64           `json:"totalPrice"`
	Status       ReservationStatus `json:"status"`
}

// Nights returns the length of the stay in whole days.
func (r Reservation) Nights() int {
	return interval.Nights(r.CheckIn, r.CheckOut)
}

func (r Reservation) MarshalJSON() ([]byte, error) {
	type alias Reservation
	return json.Marshal(struct {
		alias
		CheckIn  string `json:"checkIn"`
		CheckOut string `json:"checkOut"`
		Nights   int    `json:"nights"`
	}{
		alias:    alias(r),
		CheckIn:  r.CheckIn.Format("2006-01-02"),
		CheckOut: r.CheckOut.Format("2006-01-02"),
		Nights:   r.Nights(),
	})
}

// BookingRequest is the input of a booking attempt.
type BookingRequest struct {
	RoomID       int64     `validate:"required,gt=0"`
	GuestName    string    `validate:"required"`
	GuestContact string    `validate:"required"`
	CheckIn      time.Time `validate:"required"`
	CheckOut     time.Time `validate:"required"`
}

// BookingResult is returned by a successful booking. Warnings carry
// non-fatal problems, such as a failed availability flag update.
type BookingResult struct {
	Reservation Reservation `json:"reservation"`
	Warnings    []string    `json:"warnings,omitempty"`
}

// CancellationResult is returned by a successful cancellation.
// RoomAvailable is nil when the flag could not be recomputed.
type CancellationResult struct {
	ReservationID int64    `json:"reservationId"`
	RoomID        int64    `json:"roomId"`
	RoomAvailable *bool    `json:"roomAvailable,omitempty"`
	Warnings      []string `json:"warnings,omitempty"`
}
