package recommend

import (
	"context"
	"time"

	"panoram/internal/cache"
	"panoram/internal/featureflags"
	"panoram/internal/models"
	"panoram/internal/observability"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PeerCacheTTL caps how long friends and demographic lists are cached.
// They depend on other users' ratings, which never invalidate the
// caller's keys.
const PeerCacheTTL = 30 * time.Second

// CachedEngine serves strategy results through Redis for users the
// recommendation_cache flag selects. Everyone else, and every call made
// while Redis is unavailable, gets a fresh computation.
type CachedEngine struct {
	*Engine
	rdb   *redis.Client
	flags *featureflags.Manager
	ttl   time.Duration
}

// NewCachedEngine wraps engine with a flag-gated cache.
func NewCachedEngine(engine *Engine, rdb *redis.Client, flags *featureflags.Manager, ttl time.Duration) *CachedEngine {
	return &CachedEngine{Engine: engine, rdb: rdb, flags: flags, ttl: ttl}
}

func (c *CachedEngine) Popular(ctx context.Context) ([]models.Movie, error) {
	if !c.enabled("") {
		return c.Engine.Popular(ctx)
	}
	var out []models.Movie
	hit, err := cache.Aside(ctx, c.rdb, cache.PopularMoviesKey, &out, cache.PopularMoviesTTL, func() error {
		var err error
		out, err = c.Engine.Popular(ctx)
		return err
	})
	recordCache(StrategyPopular, hit, err)
	return out, err
}

func (c *CachedEngine) Friends(ctx context.Context, userID primitive.ObjectID) ([]models.FriendRecommendation, error) {
	return cachedFor(ctx, c, StrategyFriends, userID, c.Engine.Friends)
}

func (c *CachedEngine) Genre(ctx context.Context, userID primitive.ObjectID) ([]models.Movie, error) {
	return cachedFor(ctx, c, StrategyGenre, userID, c.Engine.Genre)
}

func (c *CachedEngine) Demographic(ctx context.Context, userID primitive.ObjectID) ([]models.Movie, error) {
	return cachedFor(ctx, c, StrategyDemographic, userID, c.Engine.Demographic)
}

func (c *CachedEngine) Director(ctx context.Context, userID primitive.ObjectID) ([]models.Movie, error) {
	return cachedFor(ctx, c, StrategyDirector, userID, c.Engine.Director)
}

func (c *CachedEngine) Actor(ctx context.Context, userID primitive.ObjectID) ([]models.Movie, error) {
	return cachedFor(ctx, c, StrategyActor, userID, c.Engine.Actor)
}

func (c *CachedEngine) enabled(userID string) bool {
	return c.rdb != nil && c.flags.Enabled(featureflags.RecommendationCache, userID)
}

func (c *CachedEngine) ttlFor(strategy Strategy) time.Duration {
	if strategy == StrategyFriends || strategy == StrategyDemographic {
		return min(c.ttl, PeerCacheTTL)
	}
	return c.ttl
}

func cachedFor[T any](ctx context.Context, c *CachedEngine, strategy Strategy, userID primitive.ObjectID, compute func(context.Context, primitive.ObjectID) ([]T, error)) ([]T, error) {
	if !c.enabled(userID.Hex()) {
		return compute(ctx, userID)
	}
	var out []T
	key := cache.RecommendationKey(string(strategy), userID.Hex())
	hit, err := cache.Aside(ctx, c.rdb, key, &out, c.ttlFor(strategy), func() error {
		var err error
		out, err = compute(ctx, userID)
		return err
	})
	recordCache(strategy, hit, err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func recordCache(strategy Strategy, hit bool, err error) {
	result := "miss"
	switch {
	case err != nil:
		result = "error"
	case hit:
		result = "hit"
	}
	observability.RecommendationCacheEvents.WithLabelValues(string(strategy), result).Inc()
}
