package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	RecommendationKeyPrefix = "recommend:%s:%s"
	RevokedTokenKeyPrefix   = "revoked:%s"
	PopularMoviesKey        = "movies:popular"
)

const (
	PopularMoviesTTL = time.Minute
)

// Strategies whose cached results belong to a single user.
var userStrategies = []string{"friends", "genre", "demographic", "director", "actor"}

func RecommendationKey(strategy, userID string) string {
	return fmt.Sprintf(RecommendationKeyPrefix, strategy, userID)
}

func RevokedTokenKey(jti string) string {
	return fmt.Sprintf(RevokedTokenKeyPrefix, jti)
}

func Invalidate(ctx context.Context, rdb *redis.Client, keys ...string) {
	if rdb != nil && len(keys) > 0 {
		rdb.Del(ctx, keys...)
	}
}

// InvalidateRecommendations drops every cached strategy result for a user.
func InvalidateRecommendations(ctx context.Context, rdb *redis.Client, userID string) {
	keys := make([]string, 0, len(userStrategies))
	for _, s := range userStrategies {
		keys = append(keys, RecommendationKey(s, userID))
	}
	Invalidate(ctx, rdb, keys...)
}
