package reservationRepo

import (
	"fmt"

	"innkeeper/models"
	"innkeeper/utils"
)

// activeStatusNames are the stored status values that hold a room.
var activeStatusNames = []string{models.StatusActive.String(), "Confirmed"}

// ReservationRecord is the stored shape shared by the Mongo collection and
// the SQL table. Dates are kept as YYYY-MM-DD strings, which order the same
// way as the dates they encode.
type ReservationRecord struct {
	ID           int64   `bson:"id" gorm:"primaryKey;autoIncrement"`
	RoomID       int64   `bson:"room_id" gorm:"not null;index:idx_reservations_room_status"`
	GuestName    string  `bson:"guest_name" gorm:"size:128;not null"`
	GuestContact string  `bson:"guest_contact" gorm:"size:128;not null"`
	CheckIn      string  `bson:"check_in" gorm:"type:char(10);not null"`
	CheckOut     string  `bson:"check_out" gorm:"type:char(10);not null"`
	TotalPrice   float64 `bson:"total_price" gorm:"not null"`
	Status       string  `bson:"status" gorm:"size:16;not null;index:idx_reservations_room_status"`
}

func (ReservationRecord) TableName() string { return "reservations" }

func newRecord(res *models.Reservation) ReservationRecord {
	return ReservationRecord{
		ID:           res.ID,
		RoomID:       res.RoomID,
		GuestName:    res.GuestName,
		GuestContact: res.GuestContact,
		CheckIn:      utils.FormatDate(res.CheckIn),
		CheckOut:     utils.FormatDate(res.CheckOut),
		TotalPrice:   res.TotalPrice,
		Status:       models.StatusActive.String(),
	}
}

func (rec ReservationRecord) toModel() (*models.Reservation, error) {
	checkIn, err := utils.ParseDate(rec.CheckIn)
	if err != nil {
		return nil, fmt.Errorf("reservation %d: %w", rec.ID, err)
	}
	checkOut, err := utils.ParseDate(rec.CheckOut)
	if err != nil {
		return nil, fmt.Errorf("reservation %d: %w", rec.ID, err)
	}
	status, err := models.ParseReservationStatus(rec.Status)
	if err != nil {
		return nil, fmt.Errorf("reservation %d: %w", rec.ID, err)
	}
	return &models.Reservation{
		ID:           rec.ID,
		RoomID:       rec.RoomID,
		GuestName:    rec.GuestName,
		GuestContact: rec.GuestContact,
		CheckIn:      checkIn,
		CheckOut:     checkOut,
		TotalPrice:   rec.TotalPrice,
		Status:       status,
	}, nil
}

func toModels(recs []ReservationRecord) ([]models.Reservation, error) {
	out := make([]models.Reservation, 0, len(recs))
	for _, rec := range recs {
		res, err := rec.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, nil
}
