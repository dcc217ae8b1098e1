package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

func mongoOptions(uri string, maxPool int) *options.ClientOptions {
	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(5 * time.Second)

	if maxPool > 0 {
		opts.SetMaxPoolSize(uint64(maxPool))
	}

	return opts
}

// NewMongo connects once at startup; the client is shared by every request.
func NewMongo(uri string, maxPool int) (*mongo.Client, error) {
	client, err := mongo.Connect(mongoOptions(uri, maxPool))

	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)

	defer cancel()

	err = client.Ping(ctx, readpref.Primary())

	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return client, nil
}
