package server

import (
	"context"
	"time"

	"panoram/internal/models"
	"panoram/internal/repository"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockUserRepository is a mock of the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	args := m.Called(ctx, username, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Search(ctx context.Context, query string, limit int) ([]models.UserSummary, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.UserSummary), args.Error(1)
}

func (m *MockUserRepository) GetProfile(ctx context.Context, id primitive.ObjectID) (*models.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockUserRepository) AddFriend(ctx context.Context, userID, friendID primitive.ObjectID) error {
	args := m.Called(ctx, userID, friendID)
	return args.Error(0)
}

func (m *MockUserRepository) RemoveFriend(ctx context.Context, userID, friendID primitive.ObjectID) error {
	args := m.Called(ctx, userID, friendID)
	return args.Error(0)
}

func (m *MockUserRepository) FindPeerIDs(ctx context.Context, gender string, bornFrom, bornTo time.Time, exclude primitive.ObjectID) ([]primitive.ObjectID, error) {
	args := m.Called(ctx, gender, bornFrom, bornTo, exclude)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]primitive.ObjectID), args.Error(1)
}

// MockMovieRepository is a mock of the MovieRepository interface
type MockMovieRepository struct {
	mock.Mock
}

func (m *MockMovieRepository) movies(args mock.Arguments) ([]models.Movie, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Movie), args.Error(1)
}

func (m *MockMovieRepository) GetByID(ctx context.Context, id int64) (*models.Movie, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Movie), args.Error(1)
}

func (m *MockMovieRepository) GetByIDs(ctx context.Context, ids []int64) ([]models.Movie, error) {
	return m.movies(m.Called(ctx, ids))
}

func (m *MockMovieRepository) TopRated(ctx context.Context, limit int) ([]models.Movie, error) {
	return m.movies(m.Called(ctx, limit))
}

func (m *MockMovieRepository) Search(ctx context.Context, query string, limit int) ([]models.Movie, error) {
	return m.movies(m.Called(ctx, query, limit))
}

func (m *MockMovieRepository) Find(ctx context.Context, q repository.MovieQuery) ([]models.Movie, error) {
	return m.movies(m.Called(ctx, q))
}

func (m *MockMovieRepository) TopGenres(ctx context.Context, movieIDs []int64, n int) ([]string, error) {
	args := m.Called(ctx, movieIDs, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockMovieRepository) ListUnenriched(ctx context.Context) ([]models.Movie, error) {
	return m.movies(m.Called(ctx))
}

func (m *MockMovieRepository) SetCredits(ctx context.Context, id int64, director string, actors []string) error {
	args := m.Called(ctx, id, director, actors)
	return args.Error(0)
}

func (m *MockMovieRepository) UpsertMany(ctx context.Context, movies []models.Movie) (int, error) {
	args := m.Called(ctx, movies)
	return args.Int(0), args.Error(1)
}

// MockInteractionRepository is a mock of the InteractionRepository interface
type MockInteractionRepository struct {
	mock.Mock
}

func (m *MockInteractionRepository) Upsert(ctx context.Context, userID primitive.ObjectID, movieID int64, patch models.InteractionPatch) (bool, error) {
	args := m.Called(ctx, userID, movieID, patch)
	return args.Bool(0), args.Error(1)
}

func (m *MockInteractionRepository) Get(ctx context.Context, userID primitive.ObjectID, movieID int64) (*models.Interaction, error) {
	args := m.Called(ctx, userID, movieID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Interaction), args.Error(1)
}

func (m *MockInteractionRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Interaction, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Interaction), args.Error(1)
}

func (m *MockInteractionRepository) MoviesByFlag(ctx context.Context, userID primitive.ObjectID, flag models.InteractionFlag) ([]models.Movie, error) {
	args := m.Called(ctx, userID, flag)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Movie), args.Error(1)
}

func (m *MockInteractionRepository) WatchedMovieIDs(ctx context.Context, userID primitive.ObjectID) ([]int64, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockInteractionRepository) RatedMovieIDs(ctx context.Context, userID primitive.ObjectID, minRating int) ([]int64, error) {
	args := m.Called(ctx, userID, minRating)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockInteractionRepository) CountEndorsements(ctx context.Context, userIDs []primitive.ObjectID, minRating int, exclude []int64, limit int) ([]models.MovieCount, error) {
	args := m.Called(ctx, userIDs, minRating, exclude, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MovieCount), args.Error(1)
}
