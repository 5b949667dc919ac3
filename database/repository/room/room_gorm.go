package roomRepo

import (
	"context"
	"errors"
	"fmt"

	"innkeeper/database"
	"innkeeper/models"

	"gorm.io/gorm"
)

// RoomRecord is the rooms table row.
type RoomRecord struct {
	ID          int64   `gorm:"primaryKey;autoIncrement"`
	Label       string  `gorm:"size:32;not null;uniqueIndex"`
	Category    string  `gorm:"size:64;not null;index:idx_rooms_category_available"`
	NightlyRate float64 `gorm:"not null"`
	Available   bool    `gorm:"not null;index:idx_rooms_category_available"`
}

func (RoomRecord) TableName() string { return "rooms" }

func (rec RoomRecord) toModel() models.Room {
	return models.Room{
		ID:          rec.ID,
		Label:       rec.Label,
		Category:    rec.Category,
		NightlyRate: rec.NightlyRate,
		Available:   rec.Available,
	}
}

// GormRoomRepo implements RoomRepository on a SQL database through GORM.
type GormRoomRepo struct {
	db *gorm.DB
}

func NewGormRoomRepo(db *gorm.DB) RoomRepository {
	return &GormRoomRepo{db: db}
}

func (r *GormRoomRepo) Create(ctx context.Context, room *models.Room) (int64, error) {
	rec := RoomRecord{
		Label:       room.Label,
		Category:    room.Category,
		NightlyRate: room.NightlyRate,
		Available:   room.Available,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return 0, fmt.Errorf("room %q: %w", room.Label, database.ErrDuplicate)
		}
		return 0, fmt.Errorf("error creating room: %w", err)
	}
	room.ID = rec.ID
	return rec.ID, nil
}

func (r *GormRoomRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&RoomRecord{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("error counting rooms: %w", err)
	}
	return n, nil
}

func (r *GormRoomRepo) GetByID(ctx context.Context, id int64) (*models.Room, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *GormRoomRepo) GetAvailableByLabel(ctx context.Context, label string) (*models.Room, error) {
	return r.first(r.db.WithContext(ctx).Where("label = ? AND available = ?", label, true))
}

func (r *GormRoomRepo) first(q *gorm.DB) (*models.Room, error) {
	var rec RoomRecord
	if err := q.First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("error fetching room: %w", err)
	}
	room := rec.toModel()
	return &room, nil
}

func (r *GormRoomRepo) ListAvailable(ctx context.Context, category string) ([]models.Room, error) {
	q := r.db.WithContext(ctx).Where("available = ?", true)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	return r.find(q)
}

func (r *GormRoomRepo) ListAll(ctx context.Context) ([]models.Room, error) {
	return r.find(r.db.WithContext(ctx))
}

func (r *GormRoomRepo) find(q *gorm.DB) ([]models.Room, error) {
	var recs []RoomRecord
	if err := q.Order("id").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("error listing rooms: %w", err)
	}
	rooms := make([]models.Room, 0, len(recs))
	for _, rec := range recs {
		rooms = append(rooms, rec.toModel())
	}
	return rooms, nil
}

func (r *GormRoomRepo) SetAvailable(ctx context.Context, id int64, available bool) error {
	var rec RoomRecord
	err := r.db.WithContext(ctx).Select("id").Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("room %d: %w", id, database.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("error fetching room %d: %w", id, err)
	}
	// Update by column so an unchanged value is not mistaken for a missing row.
	if err := r.db.WithContext(ctx).Model(&RoomRecord{}).Where("id = ?", id).Update("available", available).Error; err != nil {
		return fmt.Errorf("error updating room %d availability: %w", id, err)
	}
	return nil
}
