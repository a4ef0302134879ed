package server

import (
	"panoram/internal/featureflags"

	"github.com/gofiber/fiber/v2"
)

// GetFeatureFlags returns configured feature flags and evaluated state for current user.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(string)

	if s.featureFlags == nil {
		return c.JSON(fiber.Map{
			"raw":       map[string]string{},
			"evaluated": map[string]bool{},
		})
	}

	evaluated := s.featureFlags.Snapshot(userID)
	evaluated[featureflags.RecommendationCache] = s.featureFlags.Enabled(featureflags.RecommendationCache, userID)

	return c.JSON(fiber.Map{
		"raw":       s.featureFlags.Raw(),
		"evaluated": evaluated,
	})
}
