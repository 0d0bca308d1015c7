// Package store выбирает бэкенд хранилища по конфигурации
package store

import (
	"context"
	"fmt"

	"connectsphere/internal/config"
	"connectsphere/internal/db"
	"connectsphere/internal/db/memstore"
	"connectsphere/internal/db/mongostore"
	"connectsphere/internal/db/queries"

	"go.uber.org/zap"
)

// Open подключается к хранилищу, указанному в cfg.StoreDriver
func Open(ctx context.Context, cfg *config.Config, log *zap.Logger) (*queries.Store, error) {
	switch cfg.StoreDriver {
	case config.StoreMongo:
		mongoDB, err := db.NewMongoDatabase(ctx, &cfg.Mongo, log)
		if err != nil {
			return nil, err
		}
		if err := mongostore.EnsureIndexes(ctx, mongoDB.DB); err != nil {
			_ = mongoDB.Close(context.Background())
			return nil, err
		}
		return mongostore.New(mongoDB.DB), nil

	case config.StorePostgres:
		database, err := db.NewDatabase(ctx, &cfg.Database, log)
		if err != nil {
			return nil, err
		}
		if err := db.ApplyMigrations(database, log); err != nil {
			database.Close()
			return nil, err
		}
		return &queries.Store{
			Users:    queries.NewUserQueries(database),
			Posts:    queries.NewPostQueries(database),
			Comments: queries.NewCommentQueries(database),
			Close: func(context.Context) error {
				return database.Close()
			},
		}, nil

	case config.StoreMemory:
		log.Warn("Using in-memory store, data will be lost on restart")
		return memstore.New(), nil
	}

	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
