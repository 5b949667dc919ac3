package paymentRepo

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

type paymentDoc struct {
	ID            int64   `bson:"id"`
	ReservationID int64   `bson:"reservation_id"`
	Amount        float64 `bson:"amount"`
	Method        string  `bson:"method"`
	PaidOn        string  `bson:"paid_on"`
}

// MongoPaymentRepo implements PaymentRepository using MongoDB.
type MongoPaymentRepo struct {
	db   *mongo.Database
	coll *mongo.Collection
}

func NewMongoPaymentRepo(db *mongo.Database) (PaymentRepository, error) {
	repo := &MongoPaymentRepo{db: db, coll: db.Collection("payments")}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "reservation_id", Value: 1}, {Key: "id", Value: -1}}},
	}
	if _, err := repo.coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return nil, fmt.Errorf("failed to create payment indexes: %w", err)
	}
	return repo, nil
}

func (r *MongoPaymentRepo) Insert(ctx context.Context, rec *models.PaymentRecord) (int64, error) {
	id, err := database.NextSequence(ctx, r.db, "payments")
	if err != nil {
		return 0, fmt.Errorf("failed to allocate payment id: %w", err)
	}
	doc := paymentDoc{
		ID:            id,
		ReservationID: rec.ReservationID,
		Amount:        rec.Amount,
		Method:        rec.Method,
		PaidOn:        rec.PaidOn,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return 0, fmt.Errorf("insert payment failed: %w", err)
	}
	rec.ID = id
	return id, nil
}

func (r *MongoPaymentRepo) LatestByReservation(ctx context.Context, reservationID int64) (*models.PaymentRecord, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "id", Value: -1}})
	var doc paymentDoc
	if err := r.coll.FindOne(ctx, bson.M{"reservation_id": reservationID}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("payment for reservation %d: %w", reservationID, database.ErrNotFound)
		}
		return nil, fmt.Errorf("error fetching payment: %w", err)
	}
	return &models.PaymentRecord{
		ID:            doc.ID,
		ReservationID: doc.ReservationID,
		Amount:        doc.Amount,
		Method:        doc.Method,
		PaidOn:        doc.PaidOn,
	}, nil
}
