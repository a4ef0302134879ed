package server

import (
	"panoram/internal/models"
	"panoram/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Register handles POST /api/users/register
// @Summary Register
// @Description Create an account and return a 30-day token
// @Tags users
// @Accept json
// @Produce json
// @Param request body service.RegisterInput true "Registration request"
// @Success 201 {object} models.AuthResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /users/register [post]
func (s *Server) Register(c *fiber.Ctx) error {
	var req service.RegisterInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	resp, err := s.authSvc().Register(c.UserContext(), req)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Login handles POST /api/users/login
// @Summary Login
// @Description Authenticate and return a 1-day token
// @Tags users
// @Accept json
// @Produce json
// @Param request body object{email=string,password=string} true "Login credentials"
// @Success 200 {object} models.AuthResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /users/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	resp, err := s.authSvc().Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(resp)
}

// Logout handles POST /api/users/logout
// @Summary Logout
// @Description Revoke the bearer token used for this request
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{message=string}
// @Router /users/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	claims, _ := c.Locals("claims").(*service.TokenClaims)
	if err := s.authSvc().Revoke(c.UserContext(), claims); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Logged out"})
}
