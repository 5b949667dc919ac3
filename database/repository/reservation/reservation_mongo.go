package reservationRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"innkeeper/database"
	"innkeeper/models"
	"innkeeper/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const maxTxnAttempts = 3

// MongoReservationRepo implements ReservationRepository using MongoDB.
// Inserts run in a multi-document transaction that first bumps the room's
// ledger_version, so two concurrent inserts for one room write-conflict
// instead of both passing the overlap check.
type MongoReservationRepo struct {
	db       *mongo.Database
	coll     *mongo.Collection
	roomColl *mongo.Collection
}

func NewMongoReservationRepo(db *mongo.Database) (ReservationRepository, error) {
	repo := &MongoReservationRepo{
		db:       db,
		coll:     db.Collection("reservations"),
		roomColl: db.Collection("rooms"),
	}
	if err := repo.ensureIndexes(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *MongoReservationRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "room_id", Value: 1}, {Key: "status", Value: 1}, {Key: "check_in", Value: 1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create reservation indexes: %w", err)
	}
	return nil
}

func conflictFilter(roomID int64, checkIn, checkOut time.Time) bson.M {
	return bson.M{
		"room_id":   roomID,
		"status":    bson.M{"$in": activeStatusNames},
		"check_in":  bson.M{"$lt": utils.FormatDate(checkOut)},
		"check_out": bson.M{"$gt": utils.FormatDate(checkIn)},
	}
}

func (r *MongoReservationRepo) HasConflict(ctx context.Context, roomID int64, checkIn, checkOut time.Time) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, conflictFilter(roomID, checkIn, checkOut), options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("conflict check for room %d failed: %w", roomID, err)
	}
	return n > 0, nil
}

func (r *MongoReservationRepo) Insert(ctx context.Context, res *models.Reservation) (int64, error) {
	var id int64
	var err error
	for attempt := 1; attempt <= maxTxnAttempts; attempt++ {
		id, err = r.insertOnce(ctx, res)
		if !isTransient(err) {
			break
		}
		utils.GetLogger().Sugar().Debugf("reservation insert for room %d hit a transient error (attempt %d): %v", res.RoomID, attempt, err)
	}
	if err != nil {
		return 0, err
	}
	res.ID = id
	res.Status = models.StatusActive
	return id, nil
}

func (r *MongoReservationRepo) insertOnce(ctx context.Context, res *models.Reservation) (int64, error) {
	sess, err := r.db.Client().StartSession()
	if err != nil {
		return 0, fmt.Errorf("failed to start session: %w", err)
	}
	defer sess.EndSession(ctx)

	var id int64
	txnFn := func(sc mongo.SessionContext) error {
		bump, err := r.roomColl.UpdateOne(sc, bson.M{"id": res.RoomID}, bson.M{"$inc": bson.M{"ledger_version": int64(1)}})
		if err != nil {
			return fmt.Errorf("room version bump failed: %w", err)
		}
		if bump.MatchedCount == 0 {
			return fmt.Errorf("room %d: %w", res.RoomID, database.ErrNotFound)
		}

		n, err := r.coll.CountDocuments(sc, conflictFilter(res.RoomID, res.CheckIn, res.CheckOut), options.Count().SetLimit(1))
		if err != nil {
			return fmt.Errorf("conflict re-check failed: %w", err)
		}
		if n > 0 {
			return fmt.Errorf("room %d %s..%s: %w", res.RoomID, utils.FormatDate(res.CheckIn), utils.FormatDate(res.CheckOut), database.ErrConflict)
		}

		id, err = database.NextSequence(sc, r.db, "reservations")
		if err != nil {
			return fmt.Errorf("failed to allocate reservation id: %w", err)
		}
		rec := newRecord(res)
		rec.ID = id
		if _, err := r.coll.InsertOne(sc, rec); err != nil {
			return fmt.Errorf("insert reservation failed: %w", err)
		}
		return nil
	}

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		return 0, fmt.Errorf("booking transaction failed: %w", err)
	}
	return id, nil
}

func isTransient(err error) bool {
	var se mongo.ServerError
	return errors.As(err, &se) && se.HasErrorLabel("TransientTransactionError")
}

func (r *MongoReservationRepo) MarkCancelled(ctx context.Context, id int64) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"id": id, "status": bson.M{"$in": activeStatusNames}},
		bson.M{"$set": bson.M{"status": models.StatusCancelled.String()}},
	)
	if err != nil {
		return fmt.Errorf("cancel reservation %d failed: %w", id, err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	n, err := r.coll.CountDocuments(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("lookup reservation %d failed: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("reservation %d: %w", id, database.ErrNotFound)
	}
	return fmt.Errorf("reservation %d: %w", id, database.ErrAlreadyCancelled)
}

func (r *MongoReservationRepo) GetByID(ctx context.Context, id int64) (*models.Reservation, error) {
	var rec ReservationRecord
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("reservation %d: %w", id, database.ErrNotFound)
		}
		return nil, fmt.Errorf("error fetching reservation %d: %w", id, err)
	}
	return rec.toModel()
}

func (r *MongoReservationRepo) ListActiveByRoom(ctx context.Context, roomID int64) ([]models.Reservation, error) {
	filter := bson.M{"room_id": roomID, "status": bson.M{"$in": activeStatusNames}}
	opts := options.Find().SetSort(bson.D{{Key: "check_in", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing reservations for room %d: %w", roomID, err)
	}
	defer cursor.Close(ctx)

	var recs []ReservationRecord
	if err := cursor.All(ctx, &recs); err != nil {
		return nil, fmt.Errorf("error decoding reservations: %w", err)
	}
	return toModels(recs)
}
