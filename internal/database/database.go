// Package database handles the MongoDB connection and collection indexes.
package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"panoram/internal/config"
	"panoram/internal/middleware"

	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names.
const (
	UsersCollection        = "users"
	MoviesCollection       = "movies"
	InteractionsCollection = "interactions"
)

const slowCommandThreshold = 200 * time.Millisecond

// newCommandMonitor routes driver command events to slog: failures at
// error level and slow commands at warn level.
func newCommandMonitor(logger *slog.Logger, slow time.Duration) *event.CommandMonitor {
	return &event.CommandMonitor{
		Succeeded: func(ctx context.Context, e *event.CommandSucceededEvent) {
			if slow > 0 && e.Duration > slow {
				logger.WarnContext(ctx, "MongoDB slow command",
					slog.String("command", e.CommandName),
					slog.String("database", e.DatabaseName),
					slog.Duration("elapsed", e.Duration),
				)
			}
		},
		Failed: func(ctx context.Context, e *event.CommandFailedEvent) {
			logger.ErrorContext(ctx, "MongoDB command error",
				slog.String("command", e.CommandName),
				slog.String("database", e.DatabaseName),
				slog.Duration("elapsed", e.Duration),
				slog.String("error", e.Failure),
			)
		},
	}
}

// Connect opens a pooled client, verifies it with a ping and makes sure the
// indexes the stores rely on exist.
func Connect(ctx context.Context, cfg *config.Config) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.MongoTimeout())
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.MongoURI).
		SetAppName("panoram-api").
		SetMaxPoolSize(25).
		SetMinPoolSize(5).
		SetMaxConnIdleTime(5 * time.Minute).
		SetMonitor(newCommandMonitor(middleware.Logger, slowCommandThreshold))

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := client.Database(cfg.MongoDB)
	middleware.Logger.Info("Database connected successfully", slog.String("database", cfg.MongoDB))

	if err := EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	return client, db, nil
}

// Ping reports whether the database answers within ctx.
func Ping(ctx context.Context, db *mongo.Database) error {
	if db == nil {
		return fmt.Errorf("database not initialized")
	}
	return db.Client().Ping(ctx, readpref.Primary())
}
