package database

import (
	"context"
	"log"
	"time"

	"innkeeper/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoClient is the global MongoDB client instance.
var MongoClient *mongo.Client

// InitDB initializes the MongoDB connection.
func InitDB() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(config.AppConfig.DatabaseURL)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		log.Fatalf("failed to connect to MongoDB: %v", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		log.Fatalf("failed to ping MongoDB: %v", err)
	}
	MongoClient = client
	log.Println("Connected to MongoDB successfully!")
}

// MongoDatabase returns the application database on the global client.
func MongoDatabase() *mongo.Database {
	return MongoClient.Database(config.AppConfig.DatabaseName)
}

// NextSequence atomically increments and returns the named counter.
// Passing a session context makes the increment part of that transaction.
func NextSequence(ctx context.Context, db *mongo.Database, name string) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)
	err := db.Collection("counters").
		FindOneAndUpdate(ctx, bson.M{"_id": name}, bson.M{"$inc": bson.M{"seq": int64(1)}}, opts).
		Decode(&counter)
	if err != nil {
		return 0, err
	}
	return counter.Seq, nil
}

// PingMongo checks the global MongoDB client.
func PingMongo(ctx context.Context) error {
	return MongoClient.Ping(ctx, readpref.Primary())
}
