package roomRepo

import (
	"context"
	"testing"

	"innkeeper/database"
	"innkeeper/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newSQLiteRooms(t *testing.T) RoomRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&RoomRecord{}))
	return NewGormRoomRepo(db)
}

func TestGormRooms(t *testing.T) {
	repo := newSQLiteRooms(t)
	ctx := context.Background()

	for _, r := range []models.Room{
		{Label: "1", Category: "Deluxe", NightlyRate: 150, Available: true},
		{Label: "2", Category: "Suite", NightlyRate: 250, Available: true},
		{Label: "3", Category: "Deluxe", NightlyRate: 150, Available: false},
	} {
		room := r
		_, err := repo.Create(ctx, &room)
		require.NoError(t, err)
	}

	_, err := repo.Create(ctx, &models.Room{Label: "2", Category: "Standard", NightlyRate: 100})
	assert.ErrorIs(t, err, database.ErrDuplicate)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	deluxe, err := repo.ListAvailable(ctx, "Deluxe")
	require.NoError(t, err)
	require.Len(t, deluxe, 1)
	assert.Equal(t, "1", deluxe[0].Label)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{1, 2, 3}, []int64{all[0].ID, all[1].ID, all[2].ID})

	_, err = repo.GetAvailableByLabel(ctx, "3")
	assert.ErrorIs(t, err, database.ErrNotFound)

	require.NoError(t, repo.SetAvailable(ctx, 3, true))
	// Writing the value already stored is not a missing row.
	require.NoError(t, repo.SetAvailable(ctx, 3, true))
	room, err := repo.GetAvailableByLabel(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, int64(3), room.ID)

	assert.ErrorIs(t, repo.SetAvailable(ctx, 99, false), database.ErrNotFound)
	_, err = repo.GetByID(ctx, 99)
	assert.ErrorIs(t, err, database.ErrNotFound)
}
