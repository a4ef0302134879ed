package server

import (
	"panoram/internal/models"
	"panoram/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UpsertInteraction handles POST /api/interact
// @Summary Rate or flag a movie
// @Description Creates the caller's interaction or merges the fields present in the body
// @Tags interactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.InteractionInput true "Interaction fields"
// @Success 200 {object} models.Interaction
// @Success 201 {object} models.Interaction
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /interact [post]
func (s *Server) UpsertInteraction(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return nil
	}
	var req service.InteractionInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	interaction, created, err := s.interactionSvc().Upsert(c.UserContext(), userID, req)
	if err != nil {
		return respondServiceError(c, err)
	}
	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(interaction)
}

// GetInteraction handles GET /api/interact/:movieId
// @Summary Get interaction
// @Description The caller's interaction with a movie, or null
// @Tags interactions
// @Produce json
// @Security BearerAuth
// @Param movieId path int true "Movie ID"
// @Success 200 {object} models.Interaction
// @Router /interact/{movieId} [get]
func (s *Server) GetInteraction(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return nil
	}
	movieID, err := parseMovieID(c, "movieId")
	if err != nil {
		return nil
	}

	interaction, err := s.interactionSvc().Get(c.UserContext(), userID, movieID)
	if err != nil {
		return respondServiceError(c, err)
	}
	if interaction == nil {
		return c.JSON(nil)
	}
	return c.JSON(interaction)
}

// GetAllInteractions handles GET /api/interact/lists/all
// @Summary All interactions
// @Description Map of movie id to the caller's interaction
// @Tags interactions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]models.InteractionSummary
// @Router /interact/lists/all [get]
func (s *Server) GetAllInteractions(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return nil
	}
	all, err := s.interactionSvc().All(c.UserContext(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(all)
}

// GetFavoriteMovies handles GET /api/interact/lists/favorites
// @Summary Favorite movies
// @Tags interactions
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Movie
// @Router /interact/lists/favorites [get]
func (s *Server) GetFavoriteMovies(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return nil
	}
	movies, err := s.interactionSvc().Favorites(c.UserContext(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(movies)
}

// GetWatchedMovies handles GET /api/interact/lists/watched
// @Summary Watched movies
// @Tags interactions
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Movie
// @Router /interact/lists/watched [get]
func (s *Server) GetWatchedMovies(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return nil
	}
	movies, err := s.interactionSvc().Watched(c.UserContext(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(movies)
}
