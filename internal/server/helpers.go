package server

import (
	"errors"
	"strings"

	"panoram/internal/models"
	"panoram/internal/recommend"
	"panoram/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// mapServiceError picks the HTTP status for an error returned by a service.
// Duplicate registrations surface as 400, like any other rejected input.
func mapServiceError(err error) int {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		return fiber.StatusInternalServerError
	}
	switch appErr.Code {
	case models.CodeValidation, models.CodeConflict:
		return fiber.StatusBadRequest
	case models.CodeUnauthorized:
		return fiber.StatusUnauthorized
	case models.CodeForbidden:
		return fiber.StatusForbidden
	case models.CodeNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// respondServiceError writes err with the status mapServiceError picks.
func respondServiceError(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, mapServiceError(err), err)
}

// currentUserID returns the caller set by AuthRequired.
// On failure it writes a 401 JSON response and returns errResponseWritten.
func currentUserID(c *fiber.Ctx) (primitive.ObjectID, error) {
	raw, _ := c.Locals("userID").(string)
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		_ = models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Authorization required"))
		return primitive.NilObjectID, errResponseWritten
	}
	return id, nil
}

// parseObjectID validates a user id taken from a request body field.
// On failure it writes a 400 JSON response and returns errResponseWritten.
func parseObjectID(c *fiber.Ctx, raw, field string) (primitive.ObjectID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(field+" is required"))
		return primitive.NilObjectID, errResponseWritten
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+field))
		return primitive.NilObjectID, errResponseWritten
	}
	return id, nil
}

// parseMovieID extracts a route parameter as a positive movie id.
// On failure it writes a 400 JSON response and returns errResponseWritten.
func parseMovieID(c *fiber.Ctx, param string) (int64, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid movie ID"))
		return 0, errResponseWritten
	}
	return int64(id), nil
}

// initServices builds the services and the recommender once, before the
// server handles any request.
func (s *Server) initServices() {
	engine := recommend.NewEngine(s.userRepo, s.movieRepo, s.interactionRepo)
	s.recommender = recommend.NewCachedEngine(engine, s.redis, s.featureFlags, s.config.RecommendCacheTTL())
	s.authService = service.NewAuthService(s.userRepo, s.config.JWTSecret, s.redis)
	s.userService = service.NewUserService(s.userRepo, s.redis)
	s.interactService = service.NewInteractionService(s.interactionRepo, s.movieRepo, s.redis)
	s.catalogService = service.NewCatalogService(s.movieRepo, s.recommender)
}

func (s *Server) authSvc() *service.AuthService { return s.authService }

func (s *Server) userSvc() *service.UserService { return s.userService }

func (s *Server) interactionSvc() *service.InteractionService { return s.interactService }

func (s *Server) catalogSvc() *service.CatalogService { return s.catalogService }

func (s *Server) engine() recommend.Recommender { return s.recommender }
