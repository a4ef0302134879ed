package server

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// recommendWith runs one strategy for the caller and writes its list.
func recommendWith[T any](s *Server, c *fiber.Ctx, strategy func(context.Context, primitive.ObjectID) ([]T, error)) error {
	userID, err := currentUserID(c)
	if err != nil {
		return nil
	}
	list, err := strategy(c.UserContext(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(list)
}

// RecommendFriends handles GET /api/recommend/friends
// @Summary Friends recommendations
// @Description Movies rated 8+ by friends, ranked by how many friends endorse them
// @Tags recommendations
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.FriendRecommendation
// @Router /recommend/friends [get]
func (s *Server) RecommendFriends(c *fiber.Ctx) error {
	return recommendWith(s, c, s.engine().Friends)
}

// RecommendGenre handles GET /api/recommend/genre
// @Summary Genre recommendations
// @Tags recommendations
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Movie
// @Router /recommend/genre [get]
func (s *Server) RecommendGenre(c *fiber.Ctx) error {
	return recommendWith(s, c, s.engine().Genre)
}

// RecommendDemographic handles GET /api/recommend/demographic
// @Summary Demographic recommendations
// @Tags recommendations
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Movie
// @Router /recommend/demographic [get]
func (s *Server) RecommendDemographic(c *fiber.Ctx) error {
	return recommendWith(s, c, s.engine().Demographic)
}

// RecommendDirector handles GET /api/recommend/director
// @Summary Director recommendations
// @Tags recommendations
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Movie
// @Router /recommend/director [get]
func (s *Server) RecommendDirector(c *fiber.Ctx) error {
	return recommendWith(s, c, s.engine().Director)
}

// RecommendActor handles GET /api/recommend/actor
// @Summary Actor recommendations
// @Tags recommendations
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Movie
// @Router /recommend/actor [get]
func (s *Server) RecommendActor(c *fiber.Ctx) error {
	return recommendWith(s, c, s.engine().Actor)
}
