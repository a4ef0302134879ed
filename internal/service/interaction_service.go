package service

import (
	"context"

	"panoram/internal/cache"
	"panoram/internal/models"
	"panoram/internal/repository"
	"panoram/internal/validation"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InteractionInput is the body of an interaction upsert. Nil fields are
// left untouched.
type InteractionInput struct {
	MovieID    int64 `json:"movieId"`
	Rating     *int  `json:"rating"`
	HasWatched *bool `json:"hasWatched"`
	IsFavorite *bool `json:"isFavorite"`
}

// InteractionService records ratings, watched and favorite flags.
type InteractionService struct {
	interactionRepo repository.InteractionRepository
	movieRepo       repository.MovieRepository
	rdb             *redis.Client
}

// NewInteractionService returns a new InteractionService.
func NewInteractionService(interactionRepo repository.InteractionRepository, movieRepo repository.MovieRepository, rdb *redis.Client) *InteractionService {
	return &InteractionService{
		interactionRepo: interactionRepo,
		movieRepo:       movieRepo,
		rdb:             rdb,
	}
}

// Upsert merges the input into the caller's interaction with the movie and
// reports whether it was created.
func (s *InteractionService) Upsert(ctx context.Context, userID primitive.ObjectID, in InteractionInput) (*models.Interaction, bool, error) {
	if in.MovieID <= 0 {
		return nil, false, models.NewValidationError("movieId is required")
	}
	patch := models.InteractionPatch{
		Rating:     in.Rating,
		HasWatched: in.HasWatched,
		IsFavorite: in.IsFavorite,
	}
	if patch.Empty() {
		return nil, false, models.NewValidationError("One of rating, hasWatched or isFavorite is required")
	}
	if in.Rating != nil {
		if err := validation.ValidateRating(*in.Rating); err != nil {
			return nil, false, models.NewValidationError(err.Error())
		}
	}
	if _, err := s.movieRepo.GetByID(ctx, in.MovieID); err != nil {
		return nil, false, err
	}

	created, err := s.interactionRepo.Upsert(ctx, userID, in.MovieID, patch)
	if err != nil {
		return nil, false, err
	}
	cache.InvalidateRecommendations(ctx, s.rdb, userID.Hex())

	interaction, err := s.interactionRepo.Get(ctx, userID, in.MovieID)
	if err != nil {
		return nil, false, err
	}
	return interaction, created, nil
}

// Get returns the caller's interaction with a movie, or nil.
func (s *InteractionService) Get(ctx context.Context, userID primitive.ObjectID, movieID int64) (*models.Interaction, error) {
	return s.interactionRepo.Get(ctx, userID, movieID)
}

// All maps movie id to the caller's interaction summary.
func (s *InteractionService) All(ctx context.Context, userID primitive.ObjectID) (map[int64]models.InteractionSummary, error) {
	list, err := s.interactionRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]models.InteractionSummary, len(list))
	for i := range list {
		out[list[i].MovieID] = list[i].Summary()
	}
	return out, nil
}

// Favorites lists movies the caller marked as favorite, newest first.
func (s *InteractionService) Favorites(ctx context.Context, userID primitive.ObjectID) ([]models.Movie, error) {
	return s.interactionRepo.MoviesByFlag(ctx, userID, models.FlagFavorite)
}

// Watched lists movies the caller marked as watched, newest first.
func (s *InteractionService) Watched(ctx context.Context, userID primitive.ObjectID) ([]models.Movie, error) {
	return s.interactionRepo.MoviesByFlag(ctx, userID, models.FlagWatched)
}
