package mongo

import (
	"context"
	"fmt"
	"time"

	"pet-adoption-marketplace/internal/config"
	"pet-adoption-marketplace/internal/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	usersCollection       = "users"
	resetTokensCollection = "password_reset_tokens"
	petsCollection        = "pets"

	connectTimeout = 10 * time.Second
)

// caseInsensitive is the collation backing the username index. Queries that
// must hit that index pass the same collation.
var caseInsensitive = &options.Collation{Locale: "en", Strength: 2}

type DB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

func NewDB(ctx context.Context, cfg *config.Config) (*DB, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(cfg.Database.MongoURI).
		SetMaxPoolSize(25).
		SetMinPoolSize(5).
		SetMaxConnIdleTime(5*time.Minute))
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	logger.Info("Database connection established",
		zap.String("driver", config.DriverMongo),
		zap.String("database", cfg.Database.MongoDatabase),
		zap.Uint64("max_pool_size", 25),
	)

	return &DB{
		Client:   client,
		Database: client.Database(cfg.Database.MongoDatabase),
	}, nil
}

// EnsureIndexes creates the unique and search indexes the repositories rely
// on. Creating an index that already exists is a no-op.
func (d *DB) EnsureIndexes(ctx context.Context) error {
	specs := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{
				Keys:    bson.D{{Key: "username", Value: 1}},
				Options: options.Index().SetUnique(true).SetCollation(caseInsensitive),
			},
		},
		resetTokensCollection: {
			{Keys: bson.D{{Key: "token", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "used", Value: 1}}},
			{Keys: bson.D{{Key: "expiresAt", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0)},
		},
		petsCollection: {
			{
				Keys: bson.D{
					{Key: "name", Value: "text"},
					{Key: "breed", Value: "text"},
					{Key: "description", Value: "text"},
					{Key: "city", Value: "text"},
				},
				Options: options.Index().SetName("pets_text"),
			},
			// $text may only sit inside $or when every branch is indexed.
			{Keys: bson.D{{Key: "name", Value: 1}}},
			{Keys: bson.D{{Key: "breed", Value: 1}}},
			{Keys: bson.D{{Key: "description", Value: 1}}},
			{Keys: bson.D{{Key: "city", Value: 1}}},
			{Keys: bson.D{{Key: "otherSpecies", Value: 1}}},
			{Keys: bson.D{{Key: "listedBy", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "species", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
	}

	for name, models := range specs {
		if _, err := d.Database.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}
	return nil
}

func (d *DB) Close(ctx context.Context) error {
	return d.Client.Disconnect(ctx)
}

func (d *DB) Health(ctx context.Context) error {
	return d.Client.Ping(ctx, nil)
}

func (d *DB) collection(name string) *mongo.Collection {
	return d.Database.Collection(name)
}
