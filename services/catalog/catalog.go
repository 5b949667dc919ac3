package catalog

import (
	"context"
	"fmt"
	"strconv"
	"time"

	reservationRepo "innkeeper/database/repository/reservation"
	roomRepo "innkeeper/database/repository/room"
	"innkeeper/models"
	"innkeeper/services/interval"
	"innkeeper/services/roomlock"
	"innkeeper/utils"

	"github.com/karlseguin/ccache/v3"
	"go.uber.org/zap"
)

// Service is the resource catalog: which rooms exist, what they cost and
// whether they are hinted as available today.
type Service interface {
	ListAvailable(ctx context.Context) ([]models.Room, error)
	Search(ctx context.Context, category string, checkIn, checkOut time.Time) ([]models.Room, error)
	FindByLabel(ctx context.Context, label string) (*models.Room, error)
	SetAvailabilityFlag(ctx context.Context, roomID int64, available bool) error
	GetRoom(ctx context.Context, roomID int64) (*models.Room, error)
	NightlyRate(ctx context.Context, roomID int64) (float64, error)
	Seed(ctx context.Context) (int, error)
	RefreshFlag(ctx context.Context, roomID int64) (bool, error)
	RecomputeFlag(ctx context.Context, roomID int64) (bool, error)
	RefreshAllFlags(ctx context.Context) (int, error)
}

const rateTTL = 30 * time.Minute

// DefaultCatalogService implements Service over a room repository and the
// booking ledger. Locker must be the same one the booking engine uses.
type DefaultCatalogService struct {
	Rooms  roomRepo.RoomRepository
	Ledger reservationRepo.ReservationRepository
	Locker roomlock.Locker
	Now    func() time.Time
	rates  *ccache.Cache[float64]
}

func NewCatalogService(rooms roomRepo.RoomRepository, ledger reservationRepo.ReservationRepository, locker roomlock.Locker, now func() time.Time) *DefaultCatalogService {
	if now == nil {
		now = time.Now
	}
	return &DefaultCatalogService{
		Rooms:  rooms,
		Ledger: ledger,
		Locker: locker,
		Now:    now,
		rates:  ccache.New(ccache.Configure[float64]().MaxSize(1000)),
	}
}

func (s *DefaultCatalogService) ListAvailable(ctx context.Context) ([]models.Room, error) {
	return s.Rooms.ListAvailable(ctx, "")
}

// Search returns rooms of category with no Active reservation overlapping
// [checkIn, checkOut). An empty category matches all categories. The flag
// only describes today, so it is not consulted here.
func (s *DefaultCatalogService) Search(ctx context.Context, category string, checkIn, checkOut time.Time) ([]models.Room, error) {
	if err := interval.Validate(checkIn, checkOut); err != nil {
		return nil, err
	}
	candidates, err := s.Rooms.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	rooms := make([]models.Room, 0, len(candidates))
	for _, room := range candidates {
		if category != "" && room.Category != category {
			continue
		}
		conflict, err := s.Ledger.HasConflict(ctx, room.ID, checkIn, checkOut)
		if err != nil {
			return nil, err
		}
		if !conflict {
			rooms = append(rooms, room)
		}
	}
	return rooms, nil
}

func (s *DefaultCatalogService) FindByLabel(ctx context.Context, label string) (*models.Room, error) {
	room, err := s.Rooms.GetAvailableByLabel(ctx, label)
	if err != nil {
		return nil, fmt.Errorf("room %q: %w", label, err)
	}
	return room, nil
}

func (s *DefaultCatalogService) SetAvailabilityFlag(ctx context.Context, roomID int64, available bool) error {
	return s.Rooms.SetAvailable(ctx, roomID, available)
}

func (s *DefaultCatalogService) GetRoom(ctx context.Context, roomID int64) (*models.Room, error) {
	room, err := s.Rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("room %d: %w", roomID, err)
	}
	return room, nil
}

// NightlyRate returns the room's rate, served from a local cache.
func (s *DefaultCatalogService) NightlyRate(ctx context.Context, roomID int64) (float64, error) {
	key := strconv.FormatInt(roomID, 10)
	if item := s.rates.Get(key); item != nil && !item.Expired() {
		return item.Value(), nil
	}
	room, err := s.GetRoom(ctx, roomID)
	if err != nil {
		return 0, err
	}
	s.rates.Set(key, room.NightlyRate, rateTTL)
	return room.NightlyRate, nil
}

// RefreshFlag takes the room lock and recomputes its availability hint.
func (s *DefaultCatalogService) RefreshFlag(ctx context.Context, roomID int64) (bool, error) {
	unlock, err := s.Locker.Lock(ctx, roomID)
	if err != nil {
		return false, err
	}
	defer unlock()
	return s.RecomputeFlag(ctx, roomID)
}

// RecomputeFlag sets a room's hint from the ledger: the room is available
// iff no Active reservation covers today. The caller must hold the room lock.
func (s *DefaultCatalogService) RecomputeFlag(ctx context.Context, roomID int64) (bool, error) {
	today := interval.Day(s.Now())
	occupied, err := s.Ledger.HasConflict(ctx, roomID, today, today.AddDate(0, 0, 1))
	if err != nil {
		return false, err
	}
	available := !occupied
	if err := s.Rooms.SetAvailable(ctx, roomID, available); err != nil {
		return false, err
	}
	return available, nil
}

// RefreshAllFlags runs RefreshFlag over every room and returns how many
// rooms were refreshed. A failing room is logged and skipped.
func (s *DefaultCatalogService) RefreshAllFlags(ctx context.Context) (int, error) {
	logger := utils.GetLogger()

	rooms, err := s.Rooms.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	refreshed := 0
	for _, room := range rooms {
		if _, err := s.RefreshFlag(ctx, room.ID); err != nil {
			logger.Warn("Failed to refresh availability flag", zap.Int64("roomId", room.ID), zap.Error(err))
			continue
		}
		refreshed++
	}
	return refreshed, nil
}
