package service

import (
	"context"
	"time"

	"panoram/internal/models"
	"panoram/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type userRepoStub struct {
	getByIDFn                 func(context.Context, primitive.ObjectID) (*models.User, error)
	getByEmailFn              func(context.Context, string) (*models.User, error)
	existsByUsernameOrEmailFn func(context.Context, string, string) (bool, error)
	createFn                  func(context.Context, *models.User) error
	searchFn                  func(context.Context, string, int) ([]models.UserSummary, error)
	getProfileFn              func(context.Context, primitive.ObjectID) (*models.Profile, error)
	addFriendFn               func(context.Context, primitive.ObjectID, primitive.ObjectID) error
	removeFriendFn            func(context.Context, primitive.ObjectID, primitive.ObjectID) error
	findPeerIDsFn             func(context.Context, string, time.Time, time.Time, primitive.ObjectID) ([]primitive.ObjectID, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	return s.existsByUsernameOrEmailFn(ctx, username, email)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Search(ctx context.Context, q string, limit int) ([]models.UserSummary, error) {
	return s.searchFn(ctx, q, limit)
}
func (s *userRepoStub) GetProfile(ctx context.Context, id primitive.ObjectID) (*models.Profile, error) {
	return s.getProfileFn(ctx, id)
}
func (s *userRepoStub) AddFriend(ctx context.Context, userID, friendID primitive.ObjectID) error {
	return s.addFriendFn(ctx, userID, friendID)
}
func (s *userRepoStub) RemoveFriend(ctx context.Context, userID, friendID primitive.ObjectID) error {
	return s.removeFriendFn(ctx, userID, friendID)
}
func (s *userRepoStub) FindPeerIDs(ctx context.Context, gender string, from, to time.Time, exclude primitive.ObjectID) ([]primitive.ObjectID, error) {
	return s.findPeerIDsFn(ctx, gender, from, to, exclude)
}

// friendGraph backs userRepoStub's friend operations with real state.
type friendGraph map[primitive.ObjectID]*models.User

func (g friendGraph) stub() *userRepoStub {
	return &userRepoStub{
		getByIDFn: func(_ context.Context, id primitive.ObjectID) (*models.User, error) {
			u, ok := g[id]
			if !ok {
				return nil, models.NewNotFoundError("User", id.Hex())
			}
			cp := *u
			cp.Friends = append([]primitive.ObjectID(nil), u.Friends...)
			return &cp, nil
		},
		addFriendFn: func(_ context.Context, userID, friendID primitive.ObjectID) error {
			u, ok := g[userID]
			if !ok {
				return models.NewNotFoundError("User", userID.Hex())
			}
			if !u.HasFriend(friendID) {
				u.Friends = append(u.Friends, friendID)
			}
			return nil
		},
		removeFriendFn: func(_ context.Context, userID, friendID primitive.ObjectID) error {
			u, ok := g[userID]
			if !ok {
				return models.NewNotFoundError("User", userID.Hex())
			}
			kept := u.Friends[:0]
			for _, f := range u.Friends {
				if f != friendID {
					kept = append(kept, f)
				}
			}
			u.Friends = kept
			return nil
		},
	}
}

func (g friendGraph) add(username string) *models.User {
	u := &models.User{ID: primitive.NewObjectID(), Username: username}
	g[u.ID] = u
	return u
}

type movieRepoStub struct {
	getByIDFn        func(context.Context, int64) (*models.Movie, error)
	getByIDsFn       func(context.Context, []int64) ([]models.Movie, error)
	topRatedFn       func(context.Context, int) ([]models.Movie, error)
	searchFn         func(context.Context, string, int) ([]models.Movie, error)
	findFn           func(context.Context, repository.MovieQuery) ([]models.Movie, error)
	topGenresFn      func(context.Context, []int64, int) ([]string, error)
	listUnenrichedFn func(context.Context) ([]models.Movie, error)
	setCreditsFn     func(context.Context, int64, string, []string) error
	upsertManyFn     func(context.Context, []models.Movie) (int, error)
}

func (s *movieRepoStub) GetByID(ctx context.Context, id int64) (*models.Movie, error) {
	return s.getByIDFn(ctx, id)
}
func (s *movieRepoStub) GetByIDs(ctx context.Context, ids []int64) ([]models.Movie, error) {
	return s.getByIDsFn(ctx, ids)
}
func (s *movieRepoStub) TopRated(ctx context.Context, limit int) ([]models.Movie, error) {
	return s.topRatedFn(ctx, limit)
}
func (s *movieRepoStub) Search(ctx context.Context, q string, limit int) ([]models.Movie, error) {
	return s.searchFn(ctx, q, limit)
}
func (s *movieRepoStub) Find(ctx context.Context, q repository.MovieQuery) ([]models.Movie, error) {
	return s.findFn(ctx, q)
}
func (s *movieRepoStub) TopGenres(ctx context.Context, ids []int64, n int) ([]string, error) {
	return s.topGenresFn(ctx, ids, n)
}
func (s *movieRepoStub) ListUnenriched(ctx context.Context) ([]models.Movie, error) {
	return s.listUnenrichedFn(ctx)
}
func (s *movieRepoStub) SetCredits(ctx context.Context, id int64, director string, actors []string) error {
	return s.setCreditsFn(ctx, id, director, actors)
}
func (s *movieRepoStub) UpsertMany(ctx context.Context, movies []models.Movie) (int, error) {
	return s.upsertManyFn(ctx, movies)
}

type interactionRepoStub struct {
	upsertFn            func(context.Context, primitive.ObjectID, int64, models.InteractionPatch) (bool, error)
	getFn               func(context.Context, primitive.ObjectID, int64) (*models.Interaction, error)
	listByUserFn        func(context.Context, primitive.ObjectID) ([]models.Interaction, error)
	moviesByFlagFn      func(context.Context, primitive.ObjectID, models.InteractionFlag) ([]models.Movie, error)
	watchedMovieIDsFn   func(context.Context, primitive.ObjectID) ([]int64, error)
	ratedMovieIDsFn     func(context.Context, primitive.ObjectID, int) ([]int64, error)
	countEndorsementsFn func(context.Context, []primitive.ObjectID, int, []int64, int) ([]models.MovieCount, error)
}

func (s *interactionRepoStub) Upsert(ctx context.Context, userID primitive.ObjectID, movieID int64, patch models.InteractionPatch) (bool, error) {
	return s.upsertFn(ctx, userID, movieID, patch)
}
func (s *interactionRepoStub) Get(ctx context.Context, userID primitive.ObjectID, movieID int64) (*models.Interaction, error) {
	return s.getFn(ctx, userID, movieID)
}
func (s *interactionRepoStub) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Interaction, error) {
	return s.listByUserFn(ctx, userID)
}
func (s *interactionRepoStub) MoviesByFlag(ctx context.Context, userID primitive.ObjectID, flag models.InteractionFlag) ([]models.Movie, error) {
	return s.moviesByFlagFn(ctx, userID, flag)
}
func (s *interactionRepoStub) WatchedMovieIDs(ctx context.Context, userID primitive.ObjectID) ([]int64, error) {
	return s.watchedMovieIDsFn(ctx, userID)
}
func (s *interactionRepoStub) RatedMovieIDs(ctx context.Context, userID primitive.ObjectID, minRating int) ([]int64, error) {
	return s.ratedMovieIDsFn(ctx, userID, minRating)
}
func (s *interactionRepoStub) CountEndorsements(ctx context.Context, userIDs []primitive.ObjectID, minRating int, exclude []int64, limit int) ([]models.MovieCount, error) {
	return s.countEndorsementsFn(ctx, userIDs, minRating, exclude, limit)
}

// interactionStore merges patches the way the MongoDB upsert does.
type interactionStore map[int64]*models.Interaction

func (m interactionStore) stub() *interactionRepoStub {
	return &interactionRepoStub{
		upsertFn: func(_ context.Context, userID primitive.ObjectID, movieID int64, p models.InteractionPatch) (bool, error) {
			in, ok := m[movieID]
			if !ok {
				in = &models.Interaction{UserID: userID, MovieID: movieID}
				m[movieID] = in
			}
			if p.Rating != nil {
				in.Rating = p.Rating
			}
			if p.HasWatched != nil {
				in.HasWatched = p.HasWatched
			}
			if p.IsFavorite != nil {
				in.IsFavorite = p.IsFavorite
			}
			return !ok, nil
		},
		getFn: func(_ context.Context, _ primitive.ObjectID, movieID int64) (*models.Interaction, error) {
			in, ok := m[movieID]
			if !ok {
				return nil, nil
			}
			cp := *in
			return &cp, nil
		},
		listByUserFn: func(_ context.Context, _ primitive.ObjectID) ([]models.Interaction, error) {
			out := make([]models.Interaction, 0, len(m))
			for _, in := range m {
				out = append(out, *in)
			}
			return out, nil
		},
	}
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }
