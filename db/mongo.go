package db

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"podbase-blog/config"
	"podbase-blog/logger"
)

var (
	clientOnce sync.Once
	client     *mongo.Client
	db         *mongo.Database
)

// Init initializes the global Mongo client and database using config values.
func Init(ctx context.Context, cfg config.MongoConfig) error {
	var initErr error
	clientOnce.Do(func() {
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		cl, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
		if err != nil {
			initErr = err
			return
		}
		// Ping to verify connection
		if err := cl.Ping(ctx, readpref.Primary()); err != nil {
			initErr = err
			return
		}
		client = cl
		db = client.Database(cfg.Database)

		if err := ensureIndexes(ctx, db); err != nil {
			initErr = err
			return
		}
		logger.Log.Infof("MongoDB connected and indexes ensured database=%s", cfg.Database)
	})
	return initErr
}

func Client() *mongo.Client     { return client }
func Database() *mongo.Database { return db }

// Disconnect closes the global client if Init succeeded.
func Disconnect(ctx context.Context) error {
	if client == nil {
		return nil
	}
	return client.Disconnect(ctx)
}

// Ping checks the primary is reachable; used by the health endpoint.
func Ping(ctx context.Context) error {
	if db == nil {
		return mongo.ErrClientDisconnected
	}
	return db.RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
}

func ensureIndexes(ctx context.Context, d *mongo.Database) error {
	posts := d.Collection("posts")

	// cursor paging key: (published_at, _id)
	if _, err := posts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "published_at", Value: -1}, {Key: "_id", Value: -1}},
		Options: options.Index().SetName("idx_published_at_id_desc"),
	}); err != nil {
		return err
	}
	if _, err := posts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "categories", Value: 1}},
		Options: options.Index().SetName("idx_categories"),
	}); err != nil {
		return err
	}
	if _, err := posts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "featured", Value: 1}, {Key: "published_at", Value: -1}},
		Options: options.Index().SetName("idx_featured_published_at"),
	}); err != nil {
		return err
	}
	if _, err := posts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "link", Value: 1}},
		Options: options.Index().SetName("uniq_link").SetUnique(true),
	}); err != nil {
		return err
	}
	return nil
}
