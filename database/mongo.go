package database

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/alexisbanda/invercorp-backend/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const Performance = 100

var (
	// Singleton client, initialized once by StartMongoDB and exposed through
	// GetClient/GetCollection.
	mongoClient         *mongo.Client
	clientInstanceError error
	mongoOnce           sync.Once
	dbName              string
	ctx                 context.Context
)

func GetClient() *mongo.Client {
	return mongoClient
}

func GetCollection(name string) *mongo.Collection {
	return mongoClient.Database(dbName).Collection(name)
}

func StartMongoDB() error {
	uri := config.GetEnv("MONGODB_URI")
	if uri == "" {
		return errors.New("you must set your 'MONGODB_URI' environmental variable")
	}

	database := config.GetEnv("DATABASE")
	if database == "" {
		return errors.New("you must set your 'DATABASE' environmental variable")
	}
	dbName = database

	// Perform connection creation operation only once.
	mongoOnce.Do(func() {
		clientOptions := options.Client().ApplyURI(uri)
		var cancel context.CancelFunc
		ctx, cancel = NewDBContext(10 * time.Second)
		defer cancel()
		client, err := mongo.Connect(ctx, clientOptions)
		if err != nil {
			clientInstanceError = err
			return
		}
		if err = client.Ping(ctx, nil); err != nil {
			clientInstanceError = err
			return
		}
		mongoClient = client
	})

	return clientInstanceError
}

func CloseMongoDB() {
	if mongoClient == nil {
		return
	}
	if err := mongoClient.Disconnect(ctx); err != nil {
		panic(err)
	}
}

// NewDBContext returns a new Context according to app performance
func NewDBContext(d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), d*Performance/100)
}
