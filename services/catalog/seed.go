package catalog

import (
	"context"
	"fmt"
	"strconv"

	"innkeeper/models"
	"innkeeper/utils"

	"go.uber.org/zap"
)

// SeedRoomCount is how many rooms Seed creates in an empty catalog.
const SeedRoomCount = 10

type roomTier struct {
	category string
	rate     float64
}

// Room i (1-based) gets tiers[i%3].
var seedTiers = []roomTier{
	{category: "Standard", rate: 100.00},
	{category: "Deluxe", rate: 150.00},
	{category: "Suite", rate: 250.00},
}

// Seed fills an empty catalog with rooms labelled "1".."10". It returns the
// number of rooms created, which is zero when rooms already exist.
func (s *DefaultCatalogService) Seed(ctx context.Context) (int, error) {
	logger := utils.GetLogger()

	count, err := s.Rooms.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		logger.Debug("Catalog already populated, skipping seed", zap.Int64("rooms", count))
		return 0, nil
	}

	for i := 1; i <= SeedRoomCount; i++ {
		tier := seedTiers[i%len(seedTiers)]
		room := &models.Room{
			Label:       strconv.Itoa(i),
			Category:    tier.category,
			NightlyRate: tier.rate,
			Available:   true,
		}
		if _, err := s.Rooms.Create(ctx, room); err != nil {
			return i - 1, fmt.Errorf("seed room %d: %w", i, err)
		}
	}
	logger.Info("Seeded room catalog", zap.Int("rooms", SeedRoomCount))
	return SeedRoomCount, nil
}
