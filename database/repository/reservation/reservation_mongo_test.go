package reservationRepo

import (
	"context"
	"testing"

	"innkeeper/database"
	"innkeeper/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const reservationsNS = "innkeeper.reservations"

func countResponse(n int32) bson.D {
	if n == 0 {
		return mtest.CreateCursorResponse(0, reservationsNS, mtest.FirstBatch)
	}
	return mtest.CreateCursorResponse(0, reservationsNS, mtest.FirstBatch, bson.D{{Key: "n", Value: n}})
}

func updateResponse(matched int32) bson.D {
	return mtest.CreateSuccessResponse(bson.E{Key: "n", Value: matched}, bson.E{Key: "nModified", Value: matched})
}

func newMockLedger(mt *mtest.T) ReservationRepository {
	mt.AddMockResponses(mtest.CreateSuccessResponse()) // createIndexes
	repo, err := NewMongoReservationRepo(mt.DB)
	require.NoError(mt, err)
	return repo
}

func TestConflictFilterComparesDateStrings(t *testing.T) {
	filter := conflictFilter(4, day("2025-01-10"), day("2025-01-12"))

	assert.Equal(t, bson.M{
		"room_id":   int64(4),
		"status":    bson.M{"$in": []string{"Active", "Confirmed"}},
		"check_in":  bson.M{"$lt": "2025-01-12"},
		"check_out": bson.M{"$gt": "2025-01-10"},
	}, filter)
}

func TestMongoLedger(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("has conflict", func(mt *mtest.T) {
		repo := newMockLedger(mt)

		mt.AddMockResponses(countResponse(1))
		conflict, err := repo.HasConflict(ctx, 1, day("2025-01-11"), day("2025-01-13"))
		require.NoError(mt, err)
		assert.True(mt, conflict)

		mt.AddMockResponses(countResponse(0))
		conflict, err = repo.HasConflict(ctx, 1, day("2025-01-12"), day("2025-01-14"))
		require.NoError(mt, err)
		assert.False(mt, conflict)
	})

	mt.Run("insert commits", func(mt *mtest.T) {
		repo := newMockLedger(mt)

		mt.AddMockResponses(
			updateResponse(1), // ledger_version bump
			countResponse(0),  // conflict re-check
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{{Key: "_id", Value: "reservations"}, {Key: "seq", Value: int64(7)}}}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: int32(1)}), // insert
			mtest.CreateSuccessResponse(), // commitTransaction
		)
		res := stay(1, "2025-01-12", "2025-01-14")
		id, err := repo.Insert(ctx, res)
		require.NoError(mt, err)
		assert.Equal(mt, int64(7), id)
		assert.Equal(mt, int64(7), res.ID)
		assert.Equal(mt, models.StatusActive, res.Status)
	})

	mt.Run("insert rejects overlap", func(mt *mtest.T) {
		repo := newMockLedger(mt)

		mt.AddMockResponses(updateResponse(1), countResponse(1))
		_, err := repo.Insert(ctx, stay(1, "2025-01-11", "2025-01-13"))
		assert.ErrorIs(mt, err, database.ErrConflict)
	})

	mt.Run("insert for unknown room", func(mt *mtest.T) {
		repo := newMockLedger(mt)

		mt.AddMockResponses(updateResponse(0))
		_, err := repo.Insert(ctx, stay(9, "2025-01-10", "2025-01-12"))
		assert.ErrorIs(mt, err, database.ErrNotFound)
	})

	mt.Run("cancel", func(mt *mtest.T) {
		repo := newMockLedger(mt)

		mt.AddMockResponses(updateResponse(1))
		require.NoError(mt, repo.MarkCancelled(ctx, 3))

		// Second call: no Active match, but the reservation exists.
		mt.AddMockResponses(updateResponse(0), countResponse(1))
		assert.ErrorIs(mt, repo.MarkCancelled(ctx, 3), database.ErrAlreadyCancelled)

		mt.AddMockResponses(updateResponse(0), countResponse(0))
		assert.ErrorIs(mt, repo.MarkCancelled(ctx, 404), database.ErrNotFound)
	})

	mt.Run("get by id", func(mt *mtest.T) {
		repo := newMockLedger(mt)

		mt.AddMockResponses(mtest.CreateCursorResponse(0, reservationsNS, mtest.FirstBatch, bson.D{
			{Key: "id", Value: int64(3)},
			{Key: "room_id", Value: int64(1)},
			{Key: "guest_name", Value: "Alice"},
			{Key: "guest_contact", Value: "alice@example.com"},
			{Key: "check_in", Value: "2025-01-10"},
			{Key: "check_out", Value: "2025-01-12"},
			{Key: "total_price", Value: 200.0},
			{Key: "status", Value: "Cancelled"},
		}))
		res, err := repo.GetByID(ctx, 3)
		require.NoError(mt, err)
		assert.Equal(mt, models.StatusCancelled, res.Status)
		assert.Equal(mt, day("2025-01-10"), res.CheckIn)
		assert.Equal(mt, 2, res.Nights())

		mt.AddMockResponses(mtest.CreateCursorResponse(0, reservationsNS, mtest.FirstBatch))
		_, err = repo.GetByID(ctx, 404)
		assert.ErrorIs(mt, err, database.ErrNotFound)
	})
}
