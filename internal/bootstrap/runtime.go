// Package bootstrap wires the process-wide runtime shared by the API
// server and the batch commands.
package bootstrap

import (
	"context"
	"fmt"

	"panoram/internal/cache"
	"panoram/internal/config"
	"panoram/internal/database"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// Runtime holds the connections a process needs.
type Runtime struct {
	Mongo *mongo.Client
	DB    *mongo.Database
	Redis *redis.Client
}

// InitRuntime connects to MongoDB and Redis. Redis is optional: when it is
// unreachable the returned Runtime has a nil Redis client.
func InitRuntime(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	client, db, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	return &Runtime{
		Mongo: client,
		DB:    db,
		Redis: cache.GetClient(),
	}, nil
}

// Close releases every connection held by the runtime.
func (r *Runtime) Close(ctx context.Context) error {
	if r == nil {
		return nil
	}
	var firstErr error
	if r.Redis != nil {
		if err := r.Redis.Close(); err != nil {
			firstErr = fmt.Errorf("close redis: %w", err)
		}
	}
	if r.Mongo != nil {
		if err := r.Mongo.Disconnect(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("disconnect mongo: %w", err)
		}
	}
	return firstErr
}
