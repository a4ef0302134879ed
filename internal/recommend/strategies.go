package recommend

import (
	"context"
	"sort"

	"panoram/internal/models"
	"panoram/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Popular returns the best rated movies. It is not personalized.
func (e *Engine) Popular(ctx context.Context) ([]models.Movie, error) {
	return observe(ctx, StrategyPopular, primitive.NilObjectID, func(ctx context.Context) ([]models.Movie, error) {
		return e.movies.TopRated(ctx, PopularLimit)
	})
}

// Friends ranks movies the caller has not watched by how many distinct
// friends rated them at least 8. A caller whose account is gone gets an
// empty list.
func (e *Engine) Friends(ctx context.Context, userID primitive.ObjectID) ([]models.FriendRecommendation, error) {
	return observe(ctx, StrategyFriends, userID, func(ctx context.Context) ([]models.FriendRecommendation, error) {
		user, err := e.users.GetByID(ctx, userID)
		if models.IsCode(err, models.CodeNotFound) {
			return []models.FriendRecommendation{}, nil
		}
		if err != nil {
			return nil, err
		}
		if len(user.Friends) == 0 {
			return []models.FriendRecommendation{}, nil
		}

		watched, err := e.interactions.WatchedMovieIDs(ctx, userID)
		if err != nil {
			return nil, err
		}
		counts, err := e.interactions.CountEndorsements(ctx, user.Friends, EndorseRating, watched, ResultLimit)
		if err != nil {
			return nil, err
		}
		movies, tallies, err := e.hydrate(ctx, counts)
		if err != nil {
			return nil, err
		}

		out := make([]models.FriendRecommendation, len(movies))
		for i := range movies {
			out[i] = models.FriendRecommendation{Movie: movies[i], FriendCount: tallies[i]}
		}
		return out, nil
	})
}

// Genre recommends well rated unwatched movies in the caller's three most
// frequent genres among movies they rated at least 8.
func (e *Engine) Genre(ctx context.Context, userID primitive.ObjectID) ([]models.Movie, error) {
	return observe(ctx, StrategyGenre, userID, func(ctx context.Context) ([]models.Movie, error) {
		liked, err := e.interactions.RatedMovieIDs(ctx, userID, EndorseRating)
		if err != nil {
			return nil, err
		}
		if len(liked) == 0 {
			return []models.Movie{}, nil
		}

		genres, err := e.movies.TopGenres(ctx, liked, TopGenreCount)
		if err != nil {
			return nil, err
		}
		if len(genres) == 0 {
			return []models.Movie{}, nil
		}

		watched, err := e.interactions.WatchedMovieIDs(ctx, userID)
		if err != nil {
			return nil, err
		}
		return e.movies.Find(ctx, repository.MovieQuery{
			Genres:     genres,
			MinRating:  GenreMinAverage,
			ExcludeIDs: watched,
			Limit:      ResultLimit,
		})
	})
}

// Demographic ranks movies rated at least 8 by users of the caller's gender
// and age bracket, skipping movies the caller already watched.
func (e *Engine) Demographic(ctx context.Context, userID primitive.ObjectID) ([]models.Movie, error) {
	return observe(ctx, StrategyDemographic, userID, func(ctx context.Context) ([]models.Movie, error) {
		user, err := e.users.GetByID(ctx, userID)
		if models.IsCode(err, models.CodeNotFound) {
			return []models.Movie{}, nil
		}
		if err != nil {
			return nil, err
		}
		if user.Gender == "" || user.Birthdate == nil {
			return []models.Movie{}, nil
		}

		now := e.now()
		bracket := BracketFor(AgeAt(*user.Birthdate, now))
		from, to := bracket.BirthRange(now)

		peers, err := e.users.FindPeerIDs(ctx, user.Gender, from, to, userID)
		if err != nil {
			return nil, err
		}
		if len(peers) == 0 {
			return []models.Movie{}, nil
		}

		watched, err := e.interactions.WatchedMovieIDs(ctx, userID)
		if err != nil {
			return nil, err
		}
		counts, err := e.interactions.CountEndorsements(ctx, peers, EndorseRating, watched, ResultLimit)
		if err != nil {
			return nil, err
		}
		movies, _, err := e.hydrate(ctx, counts)
		return movies, err
	})
}

// Director recommends other movies by directors of movies the caller rated
// at least 9.
func (e *Engine) Director(ctx context.Context, userID primitive.ObjectID) ([]models.Movie, error) {
	return observe(ctx, StrategyDirector, userID, func(ctx context.Context) ([]models.Movie, error) {
		return e.affinity(ctx, userID, func(m models.Movie) []string {
			if !m.HasKnownDirector() {
				return nil
			}
			return []string{m.Director}
		}, func(keys []string) repository.MovieQuery {
			return repository.MovieQuery{Directors: keys}
		})
	})
}

// Actor recommends other movies sharing a cast member with movies the
// caller rated at least 9.
func (e *Engine) Actor(ctx context.Context, userID primitive.ObjectID) ([]models.Movie, error) {
	return observe(ctx, StrategyActor, userID, func(ctx context.Context) ([]models.Movie, error) {
		return e.affinity(ctx, userID, func(m models.Movie) []string {
			return m.Actors
		}, func(keys []string) repository.MovieQuery {
			return repository.MovieQuery{Actors: keys}
		})
	})
}

// affinity collects the distinct keys of the caller's top rated movies and
// returns other movies matching any of them.
func (e *Engine) affinity(ctx context.Context, userID primitive.ObjectID, keysOf func(models.Movie) []string, query func([]string) repository.MovieQuery) ([]models.Movie, error) {
	sourceIDs, err := e.interactions.RatedMovieIDs(ctx, userID, AffinityRating)
	if err != nil {
		return nil, err
	}
	if len(sourceIDs) == 0 {
		return []models.Movie{}, nil
	}

	sources, err := e.movies.GetByIDs(ctx, sourceIDs)
	if err != nil {
		return nil, err
	}
	keys := distinct(sources, keysOf)
	if len(keys) == 0 {
		return []models.Movie{}, nil
	}

	q := query(keys)
	q.ExcludeIDs = sourceIDs
	q.Limit = ResultLimit
	return e.movies.Find(ctx, q)
}

func distinct(movies []models.Movie, keysOf func(models.Movie) []string) []string {
	seen := make(map[string]struct{})
	for _, m := range movies {
		for _, k := range keysOf(m) {
			if k != "" {
				seen[k] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
