package recommend

import (
	"context"
	"errors"
	"sort"
	"time"

	"panoram/internal/models"
	"panoram/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var errStore = errors.New("store unavailable")

// memStore is an in-memory stand-in for the three stores with the same
// ordering rules as the MongoDB implementations.
type memStore struct {
	users        map[primitive.ObjectID]*models.User
	movies       map[int64]models.Movie
	interactions []models.Interaction

	failOn string
	calls  map[string]int
}

func newMemStore() *memStore {
	return &memStore{
		users:  map[primitive.ObjectID]*models.User{},
		movies: map[int64]models.Movie{},
		calls:  map[string]int{},
	}
}

func (s *memStore) hit(op string) error {
	s.calls[op]++
	if s.failOn == op {
		return errStore
	}
	return nil
}

func (s *memStore) addUser(username, gender string, birth *time.Time) *models.User {
	u := &models.User{ID: primitive.NewObjectID(), Username: username, Gender: gender, Birthdate: birth}
	s.users[u.ID] = u
	return u
}

func (s *memStore) befriend(a, b *models.User) {
	a.Friends = append(a.Friends, b.ID)
	b.Friends = append(b.Friends, a.ID)
}

func (s *memStore) addMovie(m models.Movie) {
	s.movies[m.ID] = m
}

func (s *memStore) rate(u *models.User, movieID int64, rating int) {
	s.upsert(u, movieID, func(in *models.Interaction) { in.Rating = &rating })
}

func (s *memStore) watch(u *models.User, movieID int64) {
	watched := true
	s.upsert(u, movieID, func(in *models.Interaction) { in.HasWatched = &watched })
}

func (s *memStore) upsert(u *models.User, movieID int64, apply func(*models.Interaction)) {
	for i := range s.interactions {
		if s.interactions[i].UserID == u.ID && s.interactions[i].MovieID == movieID {
			apply(&s.interactions[i])
			return
		}
	}
	in := models.Interaction{UserID: u.ID, MovieID: movieID}
	apply(&in)
	s.interactions = append(s.interactions, in)
}

func (s *memStore) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	if err := s.hit("GetByID"); err != nil {
		return nil, err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, models.NewNotFoundError("User", id.Hex())
	}
	cp := *u
	return &cp, nil
}

func (s *memStore) FindPeerIDs(_ context.Context, gender string, from, to time.Time, exclude primitive.ObjectID) ([]primitive.ObjectID, error) {
	if err := s.hit("FindPeerIDs"); err != nil {
		return nil, err
	}
	out := []primitive.ObjectID{}
	for id, u := range s.users {
		if id == exclude || u.Gender != gender || u.Birthdate == nil {
			continue
		}
		if u.Birthdate.Before(from) || u.Birthdate.After(to) {
			continue
		}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hex() < out[j].Hex() })
	return out, nil
}

func (s *memStore) GetByIDs(_ context.Context, ids []int64) ([]models.Movie, error) {
	if err := s.hit("GetByIDs"); err != nil {
		return nil, err
	}
	out := []models.Movie{}
	for _, id := range ids {
		if m, ok := s.movies[id]; ok {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *memStore) sorted(keep func(models.Movie) bool, limit int) []models.Movie {
	out := []models.Movie{}
	for _, m := range s.movies {
		if keep(m) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AverageRating != out[j].AverageRating {
			return out[i].AverageRating > out[j].AverageRating
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (s *memStore) TopRated(_ context.Context, limit int) ([]models.Movie, error) {
	if err := s.hit("TopRated"); err != nil {
		return nil, err
	}
	return s.sorted(func(models.Movie) bool { return true }, limit), nil
}

func anyIn(have, want []string) bool {
	for _, h := range have {
		for _, w := range want {
			if h == w {
				return true
			}
		}
	}
	return false
}

func (s *memStore) Find(_ context.Context, q repository.MovieQuery) ([]models.Movie, error) {
	if err := s.hit("Find"); err != nil {
		return nil, err
	}
	excluded := map[int64]bool{}
	for _, id := range q.ExcludeIDs {
		excluded[id] = true
	}
	return s.sorted(func(m models.Movie) bool {
		switch {
		case excluded[m.ID]:
			return false
		case len(q.Genres) > 0 && !anyIn(m.Genres, q.Genres):
			return false
		case len(q.Directors) > 0 && !anyIn([]string{m.Director}, q.Directors):
			return false
		case len(q.Actors) > 0 && !anyIn(m.Actors, q.Actors):
			return false
		case q.MinRating > 0 && m.AverageRating < q.MinRating:
			return false
		}
		return true
	}, q.Limit), nil
}

func (s *memStore) TopGenres(_ context.Context, ids []int64, n int) ([]string, error) {
	if err := s.hit("TopGenres"); err != nil {
		return nil, err
	}
	tally := map[string]int{}
	for _, id := range ids {
		seen := map[string]bool{}
		for _, g := range s.movies[id].Genres {
			if !seen[g] {
				seen[g] = true
				tally[g]++
			}
		}
	}
	out := make([]string, 0, len(tally))
	for g := range tally {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool {
		if tally[out[i]] != tally[out[j]] {
			return tally[out[i]] > tally[out[j]]
		}
		return out[i] < out[j]
	})
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (s *memStore) WatchedMovieIDs(_ context.Context, userID primitive.ObjectID) ([]int64, error) {
	if err := s.hit("WatchedMovieIDs"); err != nil {
		return nil, err
	}
	out := []int64{}
	for _, in := range s.interactions {
		if in.UserID == userID && in.HasWatched != nil && *in.HasWatched {
			out = append(out, in.MovieID)
		}
	}
	return out, nil
}

func (s *memStore) RatedMovieIDs(_ context.Context, userID primitive.ObjectID, minRating int) ([]int64, error) {
	if err := s.hit("RatedMovieIDs"); err != nil {
		return nil, err
	}
	out := []int64{}
	for _, in := range s.interactions {
		if in.UserID == userID && in.Rating != nil && *in.Rating >= minRating {
			out = append(out, in.MovieID)
		}
	}
	return out, nil
}

func (s *memStore) CountEndorsements(_ context.Context, userIDs []primitive.ObjectID, minRating int, exclude []int64, limit int) ([]models.MovieCount, error) {
	if err := s.hit("CountEndorsements"); err != nil {
		return nil, err
	}
	who := map[primitive.ObjectID]bool{}
	for _, id := range userIDs {
		who[id] = true
	}
	skip := map[int64]bool{}
	for _, id := range exclude {
		skip[id] = true
	}
	endorsers := map[int64]map[primitive.ObjectID]bool{}
	for _, in := range s.interactions {
		if !who[in.UserID] || skip[in.MovieID] || in.Rating == nil || *in.Rating < minRating {
			continue
		}
		if endorsers[in.MovieID] == nil {
			endorsers[in.MovieID] = map[primitive.ObjectID]bool{}
		}
		endorsers[in.MovieID][in.UserID] = true
	}
	out := []models.MovieCount{}
	for id, users := range endorsers {
		out = append(out, models.MovieCount{MovieID: id, Count: len(users)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].MovieID < out[j].MovieID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func newTestEngine(s *memStore, now time.Time) *Engine {
	e := NewEngine(s, s, s)
	e.now = func() time.Time { return now }
	return e
}

func ids(movies []models.Movie) []int64 {
	out := make([]int64, 0, len(movies))
	for _, m := range movies {
		out = append(out, m.ID)
	}
	return out
}

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}
