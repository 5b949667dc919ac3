// File: database/repository/room/interface.go
package roomRepo

import (
	"context"

	"innkeeper/models"
)

// RoomRepository is the catalog's persistence collaborator.
type RoomRepository interface {
	Create(ctx context.Context, room *models.Room) (int64, error)
	Count(ctx context.Context) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Room, error)
	// GetAvailableByLabel only matches rooms whose availability flag is set.
	GetAvailableByLabel(ctx context.Context, label string) (*models.Room, error)
	// ListAvailable returns flag-available rooms ordered by id. An empty
	// category matches every category.
	ListAvailable(ctx context.Context, category string) ([]models.Room, error)
	ListAll(ctx context.Context) ([]models.Room, error)
	SetAvailable(ctx context.Context, id int64, available bool) error
}
