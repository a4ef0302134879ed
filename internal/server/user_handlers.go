package server

import (
	"panoram/internal/models"

	"github.com/gofiber/fiber/v2"
)

type friendRequest struct {
	FriendID string `json:"friendId"`
}

// SearchUsers handles GET /api/users/search?q=...
// @Summary Search users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param q query string true "Username fragment"
// @Success 200 {array} models.UserSummary
// @Failure 400 {object} models.ErrorResponse
// @Router /users/search [get]
func (s *Server) SearchUsers(c *fiber.Ctx) error {
	users, err := s.userSvc().Search(c.UserContext(), c.Query("q"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(users)
}

// GetMyProfile handles GET /api/users/myprofile
// @Summary Current user profile
// @Description Returns the caller with friend usernames and emails resolved
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Profile
// @Router /users/myprofile [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return nil
	}

	profile, err := s.userSvc().Profile(c.UserContext(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(profile)
}

// AddFriend handles POST /api/users/addfriend
// @Summary Add friend
// @Description Links the caller and friendId in both directions
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{friendId=string} true "Friend to add"
// @Success 200 {object} object{message=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/addfriend [post]
func (s *Server) AddFriend(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return nil
	}
	var req friendRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	friendID, err := parseObjectID(c, req.FriendID, "friendId")
	if err != nil {
		return nil
	}

	if err := s.userSvc().AddFriend(c.UserContext(), userID, friendID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Friend added"})
}

// RemoveFriend handles POST /api/users/removefriend
// @Summary Remove friend
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{friendId=string} true "Friend to remove"
// @Success 200 {object} object{message=string}
// @Failure 400 {object} models.ErrorResponse
// @Router /users/removefriend [post]
func (s *Server) RemoveFriend(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return nil
	}
	var req friendRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	friendID, err := parseObjectID(c, req.FriendID, "friendId")
	if err != nil {
		return nil
	}

	if err := s.userSvc().RemoveFriend(c.UserContext(), userID, friendID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Friend removed"})
}
