package config

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names shared by the Mongo repositories
const (
	UsersCollection    = "users"
	ProductsCollection = "products"
	OrdersCollection   = "orders"
)

// ConnectMongo opens a client and returns the configured database
func ConnectMongo(ctx context.Context, cfg StoreConfig) (*mongo.Client, *mongo.Database, error) {
	var client *mongo.Client
	var err error

	maxRetries := 5
	retryInterval := 5 * time.Second

	for i := 0; i < maxRetries; i++ {
		client, err = mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err == nil {
			err = client.Ping(ctx, nil)
			if err == nil {
				log.Println("Mongo connected successfully")
				return client, client.Database(cfg.MongoDatabase), nil
			}
			_ = client.Disconnect(ctx)
		}
		log.Printf("Failed to connect to Mongo (attempt %d/%d): %v. Retrying in %v...", i+1, maxRetries, err, retryInterval)
		time.Sleep(retryInterval)
	}
	return nil, nil, fmt.Errorf("unable to connect to mongo after %d attempts: %w", maxRetries, err)
}

// EnsureMongoIndexes creates the unique indexes the repositories rely on
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		ProductsCollection: {
			{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "category", Value: 1}}},
		},
		OrdersCollection: {
			{Keys: bson.D{{Key: "orderId", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "userId", Value: 1}}},
		},
	}

	for collection, models := range indexes {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("unable to create indexes on %s: %w", collection, err)
		}
	}

	log.Println("Mongo indexes ensured")
	return nil
}
