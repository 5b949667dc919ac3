// File: database/repository/reservation/interface.go
package reservationRepo

import (
	"context"
	"time"

	"innkeeper/models"
)

// ReservationRepository is the booking ledger. It is the single source of
// truth for whether a room is held on a given night.
type ReservationRepository interface {
	// HasConflict reports whether an Active reservation on roomID overlaps
	// [checkIn, checkOut).
	HasConflict(ctx context.Context, roomID int64, checkIn, checkOut time.Time) (bool, error)
	// Insert stores res as Active and returns its new id. The conflict check
	// is repeated atomically with the write; an overlap yields database.ErrConflict.
	Insert(ctx context.Context, res *models.Reservation) (int64, error)
	MarkCancelled(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*models.Reservation, error)
	ListActiveByRoom(ctx context.Context, roomID int64) ([]models.Reservation, error)
}
