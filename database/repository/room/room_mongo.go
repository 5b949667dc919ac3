package roomRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"innkeeper/database"
	"innkeeper/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRoomRepo implements RoomRepository using MongoDB.
type MongoRoomRepo struct {
	db   *mongo.Database
	coll *mongo.Collection
}

// NewMongoRoomRepo constructs a MongoDB-backed room repository and ensures its indexes.
func NewMongoRoomRepo(db *mongo.Database) (RoomRepository, error) {
	repo := &MongoRoomRepo{db: db, coll: db.Collection("rooms")}
	if err := repo.ensureIndexes(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *MongoRoomRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "label", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "available", Value: 1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create room indexes: %w", err)
	}
	return nil
}

func (r *MongoRoomRepo) Create(ctx context.Context, room *models.Room) (int64, error) {
	id, err := database.NextSequence(ctx, r.db, "rooms")
	if err != nil {
		return 0, fmt.Errorf("failed to allocate room id: %w", err)
	}
	room.ID = id
	if _, err := r.coll.InsertOne(ctx, room); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return 0, fmt.Errorf("room %q: %w", room.Label, database.ErrDuplicate)
		}
		return 0, fmt.Errorf("error creating room: %w", err)
	}
	return id, nil
}

func (r *MongoRoomRepo) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("error counting rooms: %w", err)
	}
	return n, nil
}

func (r *MongoRoomRepo) GetByID(ctx context.Context, id int64) (*models.Room, error) {
	return r.findOne(ctx, bson.M{"id": id})
}

func (r *MongoRoomRepo) GetAvailableByLabel(ctx context.Context, label string) (*models.Room, error) {
	return r.findOne(ctx, bson.M{"label": label, "available": true})
}

func (r *MongoRoomRepo) findOne(ctx context.Context, filter bson.M) (*models.Room, error) {
	var room models.Room
	if err := r.coll.FindOne(ctx, filter).Decode(&room); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("error fetching room: %w", err)
	}
	return &room, nil
}

func (r *MongoRoomRepo) ListAvailable(ctx context.Context, category string) ([]models.Room, error) {
	filter := bson.M{"available": true}
	if category != "" {
		filter["category"] = category
	}
	return r.find(ctx, filter)
}

func (r *MongoRoomRepo) ListAll(ctx context.Context) ([]models.Room, error) {
	return r.find(ctx, bson.M{})
}

func (r *MongoRoomRepo) find(ctx context.Context, filter bson.M) ([]models.Room, error) {
	opts := options.Find().SetSort(bson.D{{Key: "id", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing rooms: %w", err)
	}
	defer cursor.Close(ctx)

	rooms := []models.Room{}
	if err := cursor.All(ctx, &rooms); err != nil {
		return nil, fmt.Errorf("error decoding rooms: %w", err)
	}
	return rooms, nil
}

func (r *MongoRoomRepo) SetAvailable(ctx context.Context, id int64, available bool) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": bson.M{"available": available}})
	if err != nil {
		return fmt.Errorf("error updating room %d availability: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("room %d: %w", id, database.ErrNotFound)
	}
	return nil
}
