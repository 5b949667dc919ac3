package reservationRepo

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"innkeeper/database"
	"innkeeper/models"
	"innkeeper/services/interval"
)

// MemoryReservationRepo keeps the ledger in process memory. The write lock
// is held across the overlap check and the insert.
type MemoryReservationRepo struct {
	mu     sync.RWMutex
	byID   map[int64]*models.Reservation
	nextID int64
}

func NewMemoryReservationRepo() *MemoryReservationRepo {
	return &MemoryReservationRepo{byID: make(map[int64]*models.Reservation)}
}

func (r *MemoryReservationRepo) conflictLocked(roomID int64, checkIn, checkOut time.Time) bool {
	for _, res := range r.byID {
		if res.RoomID != roomID || res.Status != models.StatusActive {
			continue
		}
		if interval.Overlaps(res.CheckIn, res.CheckOut, checkIn, checkOut) {
			return true
		}
	}
	return false
}

func (r *MemoryReservationRepo) HasConflict(_ context.Context, roomID int64, checkIn, checkOut time.Time) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.conflictLocked(roomID, checkIn, checkOut), nil
}

func (r *MemoryReservationRepo) Insert(_ context.Context, res *models.Reservation) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conflictLocked(res.RoomID, res.CheckIn, res.CheckOut) {
		return 0, fmt.Errorf("room %d: %w", res.RoomID, database.ErrConflict)
	}
	r.nextID++
	stored := *res
	stored.ID = r.nextID
	stored.Status = models.StatusActive
	r.byID[stored.ID] = &stored

	res.ID = stored.ID
	res.Status = models.StatusActive
	return stored.ID, nil
}

func (r *MemoryReservationRepo) MarkCancelled(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("reservation %d: %w", id, database.ErrNotFound)
	}
	if !res.Status.CanTransitionTo(models.StatusCancelled) {
		return fmt.Errorf("reservation %d: %w", id, database.ErrAlreadyCancelled)
	}
	res.Status = models.StatusCancelled
	return nil
}

func (r *MemoryReservationRepo) GetByID(_ context.Context, id int64) (*models.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("reservation %d: %w", id, database.ErrNotFound)
	}
	out := *res
	return &out, nil
}

func (r *MemoryReservationRepo) ListActiveByRoom(_ context.Context, roomID int64) ([]models.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []models.Reservation{}
	for _, res := range r.byID {
		if res.RoomID == roomID && res.Status == models.StatusActive {
			out = append(out, *res)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckIn.Before(out[j].CheckIn) })
	return out, nil
}
