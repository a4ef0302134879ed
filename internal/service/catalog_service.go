package service

import (
	"context"
	"strings"

	"panoram/internal/models"
	"panoram/internal/recommend"
	"panoram/internal/repository"
)

// MovieSearchLimit caps movie search results.
const MovieSearchLimit = 50

// CatalogService serves public movie lookups.
type CatalogService struct {
	movieRepo   repository.MovieRepository
	recommender recommend.Recommender
}

// NewCatalogService returns a new CatalogService.
func NewCatalogService(movieRepo repository.MovieRepository, recommender recommend.Recommender) *CatalogService {
	return &CatalogService{movieRepo: movieRepo, recommender: recommender}
}

// Popular returns the top rated movies.
func (s *CatalogService) Popular(ctx context.Context) ([]models.Movie, error) {
	return s.recommender.Popular(ctx)
}

// Search matches titles containing query. A blank query matches nothing.
func (s *CatalogService) Search(ctx context.Context, query string) ([]models.Movie, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.Movie{}, nil
	}
	return s.movieRepo.Search(ctx, query, MovieSearchLimit)
}

// Get returns one movie or a NOT_FOUND error.
func (s *CatalogService) Get(ctx context.Context, id int64) (*models.Movie, error) {
	if id <= 0 {
		return nil, models.NewValidationError("Invalid movie ID")
	}
	return s.movieRepo.GetByID(ctx, id)
}
