package reservationRepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"innkeeper/database"
	"innkeeper/models"
	"innkeeper/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lockedRoom is the slice of the rooms table the ledger locks on insert.
type lockedRoom struct {
	ID int64
}

func (lockedRoom) TableName() string { return "rooms" }

// GormReservationRepo implements ReservationRepository on MySQL. Inserts
// run in a SERIALIZABLE transaction that locks the room row first.
type GormReservationRepo struct {
	db *gorm.DB
}

func NewGormReservationRepo(db *gorm.DB) ReservationRepository {
	return &GormReservationRepo{db: db}
}

func conflictScope(roomID int64, checkIn, checkOut time.Time) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		return q.Where("room_id = ? AND status IN ? AND check_in < ? AND check_out > ?",
			roomID, activeStatusNames, utils.FormatDate(checkOut), utils.FormatDate(checkIn))
	}
}

func (r *GormReservationRepo) HasConflict(ctx context.Context, roomID int64, checkIn, checkOut time.Time) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&ReservationRecord{}).
		Scopes(conflictScope(roomID, checkIn, checkOut)).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("conflict check for room %d failed: %w", roomID, err)
	}
	return n > 0, nil
}

func (r *GormReservationRepo) Insert(ctx context.Context, res *models.Reservation) (int64, error) {
	rec := newRecord(res)
	rec.ID = 0

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var room lockedRoom
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			Where("id = ?", res.RoomID).
			Take(&room).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("room %d: %w", res.RoomID, database.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("room lock failed: %w", err)
		}

		var n int64
		if err := tx.Model(&ReservationRecord{}).Scopes(conflictScope(res.RoomID, res.CheckIn, res.CheckOut)).Count(&n).Error; err != nil {
			return fmt.Errorf("conflict re-check failed: %w", err)
		}
		if n > 0 {
			return fmt.Errorf("room %d %s..%s: %w", res.RoomID, rec.CheckIn, rec.CheckOut, database.ErrConflict)
		}

		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("insert reservation failed: %w", err)
		}
		return nil
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return 0, err
	}

	res.ID = rec.ID
	res.Status = models.StatusActive
	return rec.ID, nil
}

func (r *GormReservationRepo) MarkCancelled(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec ReservationRecord
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).Take(&rec).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("reservation %d: %w", id, database.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("lookup reservation %d failed: %w", id, err)
		}

		status, err := models.ParseReservationStatus(rec.Status)
		if err != nil {
			return fmt.Errorf("reservation %d: %w", id, err)
		}
		if !status.CanTransitionTo(models.StatusCancelled) {
			return fmt.Errorf("reservation %d: %w", id, database.ErrAlreadyCancelled)
		}

		if err := tx.Model(&ReservationRecord{}).Where("id = ?", id).Update("status", models.StatusCancelled.String()).Error; err != nil {
			return fmt.Errorf("cancel reservation %d failed: %w", id, err)
		}
		return nil
	})
}

func (r *GormReservationRepo) GetByID(ctx context.Context, id int64) (*models.Reservation, error) {
	var rec ReservationRecord
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("reservation %d: %w", id, database.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching reservation %d: %w", id, err)
	}
	return rec.toModel()
}

func (r *GormReservationRepo) ListActiveByRoom(ctx context.Context, roomID int64) ([]models.Reservation, error) {
	var recs []ReservationRecord
	err := r.db.WithContext(ctx).
		Where("room_id = ? AND status IN ?", roomID, activeStatusNames).
		Order("check_in").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("error listing reservations for room %d: %w", roomID, err)
	}
	return toModels(recs)
}
