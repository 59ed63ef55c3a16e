package main

import (
	"context"
	"fmt"
	"log/slog"

	"account-service/internal/config"
	"account-service/internal/db"
	"account-service/internal/domain/repositories"
	"account-service/internal/infrastructure/db/mongodb"
	"account-service/internal/infrastructure/db/postgres"
)

// openUserRepository connects the configured credential store and returns a
// func that releases it.
func openUserRepository(ctx context.Context, cfg config.StoreConfig) (repositories.UserRepository, func(), error) {
	switch cfg.Driver {
	case "mongo":
		client, err := db.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoConnectTimeout)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				slog.Error("failed to disconnect mongodb", "error", err)
			}
		}

		repo := mongodb.NewUserRepository(client, cfg.MongoDatabase)
		if err := repo.EnsureIndexes(ctx); err != nil {
			closeFn()
			return nil, nil, fmt.Errorf("ensure indexes: %w", err)
		}
		return repo, closeFn, nil

	case "postgres", "sqlite":
		conn, err := db.OpenSQL(cfg.Driver, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := conn.DB()
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if err := sqlDB.Close(); err != nil {
				slog.Error("failed to close sql store", "error", err)
			}
		}

		repo := postgres.NewUserRepository(conn)
		if err := repo.Migrate(); err != nil {
			closeFn()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		return repo, closeFn, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
