package db

import (
	"context"
	"fmt"
	"time"

	"connectsphere/internal/config"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// MongoDatabase представляет соединение с MongoDB
type MongoDatabase struct {
	Client *mongo.Client
	DB     *mongo.Database
}

// NewMongoDatabase подключается к MongoDB и проверяет соединение
func NewMongoDatabase(ctx context.Context, cfg *config.MongoConfig, log *zap.Logger) (*MongoDatabase, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	log.Info("Connected to MongoDB", zap.String("db", cfg.DBName))

	return &MongoDatabase{Client: client, DB: client.Database(cfg.DBName)}, nil
}

// Close закрывает соединение
func (m *MongoDatabase) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}
