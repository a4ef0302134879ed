// Package recommend implements the movie recommendation strategies. Each
// strategy is a short, read-only pipeline of store queries; any store error
// aborts the strategy without a partial result.
package recommend

import (
	"context"
	"time"

	"panoram/internal/models"
	"panoram/internal/observability"
	"panoram/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/attribute"
)

// Result caps and rating thresholds.
const (
	PopularLimit    = 20
	ResultLimit     = 40
	EndorseRating   = 8
	GenreMinAverage = 7.0
	TopGenreCount   = 3
	AffinityRating  = 9
)

// Strategy names a recommendation heuristic.
type Strategy string

const (
	StrategyPopular     Strategy = "popular"
	StrategyFriends     Strategy = "friends"
	StrategyGenre       Strategy = "genre"
	StrategyDemographic Strategy = "demographic"
	StrategyDirector    Strategy = "director"
	StrategyActor       Strategy = "actor"
)

// UserStore is the slice of the credential store the engine reads.
type UserStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindPeerIDs(ctx context.Context, gender string, bornFrom, bornTo time.Time, exclude primitive.ObjectID) ([]primitive.ObjectID, error)
}

// MovieStore is the slice of the catalog the engine reads.
type MovieStore interface {
	GetByIDs(ctx context.Context, ids []int64) ([]models.Movie, error)
	TopRated(ctx context.Context, limit int) ([]models.Movie, error)
	Find(ctx context.Context, q repository.MovieQuery) ([]models.Movie, error)
	TopGenres(ctx context.Context, movieIDs []int64, n int) ([]string, error)
}

// InteractionStore is the slice of the interaction store the engine reads.
type InteractionStore interface {
	WatchedMovieIDs(ctx context.Context, userID primitive.ObjectID) ([]int64, error)
	RatedMovieIDs(ctx context.Context, userID primitive.ObjectID, minRating int) ([]int64, error)
	CountEndorsements(ctx context.Context, userIDs []primitive.ObjectID, minRating int, exclude []int64, limit int) ([]models.MovieCount, error)
}

// Recommender is implemented by Engine and CachedEngine.
type Recommender interface {
	Popular(ctx context.Context) ([]models.Movie, error)
	Friends(ctx context.Context, userID primitive.ObjectID) ([]models.FriendRecommendation, error)
	Genre(ctx context.Context, userID primitive.ObjectID) ([]models.Movie, error)
	Demographic(ctx context.Context, userID primitive.ObjectID) ([]models.Movie, error)
	Director(ctx context.Context, userID primitive.ObjectID) ([]models.Movie, error)
	Actor(ctx context.Context, userID primitive.ObjectID) ([]models.Movie, error)
}

// Engine computes recommendations from current store state.
type Engine struct {
	users        UserStore
	movies       MovieStore
	interactions InteractionStore
	now          func() time.Time
}

// NewEngine wires the engine to its stores.
func NewEngine(users UserStore, movies MovieStore, interactions InteractionStore) *Engine {
	return &Engine{
		users:        users,
		movies:       movies,
		interactions: interactions,
		now:          time.Now,
	}
}

// observe wraps one strategy call in a span and latency metric.
func observe[T any](ctx context.Context, strategy Strategy, userID primitive.ObjectID, fn func(ctx context.Context) ([]T, error)) ([]T, error) {
	span, ctx := observability.NewSpan(ctx, "recommend."+string(strategy))
	defer span.End()
	if !userID.IsZero() {
		span.AddAttributes(attribute.String("user.id", userID.Hex()))
	}
	done := observability.TrackRecommendation(string(strategy))

	out, err := fn(ctx)
	done(err)
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	span.AddAttributes(attribute.Int("recommend.results", len(out)))
	return out, nil
}

// hydrate resolves counted movie ids to movies, keeping the count order.
// Ids with no catalog entry are dropped.
func (e *Engine) hydrate(ctx context.Context, counts []models.MovieCount) ([]models.Movie, []int, error) {
	if len(counts) == 0 {
		return []models.Movie{}, []int{}, nil
	}
	ids := make([]int64, 0, len(counts))
	for _, c := range counts {
		ids = append(ids, c.MovieID)
	}
	found, err := e.movies.GetByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	byID := make(map[int64]models.Movie, len(found))
	for _, m := range found {
		byID[m.ID] = m
	}

	movies := make([]models.Movie, 0, len(counts))
	tallies := make([]int, 0, len(counts))
	for _, c := range counts {
		if m, ok := byID[c.MovieID]; ok {
			movies = append(movies, m)
			tallies = append(tallies, c.Count)
		}
	}
	return movies, tallies, nil
}
