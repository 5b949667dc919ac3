package roomRepo

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"innkeeper/database"
	"innkeeper/models"
)

// MemoryRoomRepo keeps rooms in process memory.
type MemoryRoomRepo struct {
	mu     sync.RWMutex
	byID   map[int64]*models.Room
	nextID int64
}

func NewMemoryRoomRepo() *MemoryRoomRepo {
	return &MemoryRoomRepo{byID: make(map[int64]*models.Room)}
}

func (r *MemoryRoomRepo) Create(_ context.Context, room *models.Room) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.byID {
		if existing.Label == room.Label {
			return 0, fmt.Errorf("room %q: %w", room.Label, database.ErrDuplicate)
		}
	}
	r.nextID++
	stored := *room
	stored.ID = r.nextID
	r.byID[stored.ID] = &stored
	room.ID = stored.ID
	return stored.ID, nil
}

func (r *MemoryRoomRepo) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.byID)), nil
}

func (r *MemoryRoomRepo) GetByID(_ context.Context, id int64) (*models.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.byID[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	out := *room
	return &out, nil
}

func (r *MemoryRoomRepo) GetAvailableByLabel(_ context.Context, label string) (*models.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, room := range r.byID {
		if room.Label == label && room.Available {
			out := *room
			return &out, nil
		}
	}
	return nil, database.ErrNotFound
}

func (r *MemoryRoomRepo) ListAvailable(_ context.Context, category string) ([]models.Room, error) {
	return r.list(func(room *models.Room) bool {
		return room.Available && (category == "" || room.Category == category)
	}), nil
}

func (r *MemoryRoomRepo) ListAll(_ context.Context) ([]models.Room, error) {
	return r.list(func(*models.Room) bool { return true }), nil
}

func (r *MemoryRoomRepo) list(keep func(*models.Room) bool) []models.Room {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rooms := []models.Room{}
	for _, room := range r.byID {
		if keep(room) {
			rooms = append(rooms, *room)
		}
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })
	return rooms
}

func (r *MemoryRoomRepo) SetAvailable(_ context.Context, id int64, available bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("room %d: %w", id, database.ErrNotFound)
	}
	room.Available = available
	return nil
}
