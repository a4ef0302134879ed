package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"panoram/internal/config"
	"panoram/internal/models"
	"panoram/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

type testServer struct {
	*Server
	users        *MockUserRepository
	movies       *MockMovieRepository
	interactions *MockInteractionRepository
}

// newTestServer wires mock repositories; opts run before the services are
// built so they can swap in Redis or flags.
func newTestServer(opts ...func(*Server)) *testServer {
	users := new(MockUserRepository)
	movies := new(MockMovieRepository)
	interactions := new(MockInteractionRepository)
	s := &Server{
		config:          &config.Config{JWTSecret: testSecret},
		userRepo:        users,
		movieRepo:       movies,
		interactionRepo: interactions,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.initServices()
	return &testServer{
		Server:       s,
		users:        users,
		movies:       movies,
		interactions: interactions,
	}
}

// asUser installs a middleware that authenticates every request as id.
func asUser(app *fiber.App, id primitive.ObjectID) {
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", id.Hex())
		return c.Next()
	})
}

func signToken(t *testing.T, userID primitive.ObjectID, mutate func(jwt.MapClaims)) string {
	t.Helper()
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      userID.Hex(),
		"username": "tester",
		"iss":      service.TokenIssuer,
		"aud":      service.TokenAudience,
		"exp":      now.Add(time.Hour).Unix(),
		"iat":      now.Unix(),
		"jti":      "test-jti-valid-length",
	}
	if mutate != nil {
		mutate(claims)
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return tok
}

func decodeError(t *testing.T, resp *http.Response) models.ErrorResponse {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out models.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func TestMapServiceError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", models.NewValidationError("bad"), fiber.StatusBadRequest},
		{"conflict", models.NewConflictError("dup"), fiber.StatusBadRequest},
		{"unauthorized", models.NewUnauthorizedError("no"), fiber.StatusUnauthorized},
		{"forbidden", models.NewForbiddenError("no"), fiber.StatusForbidden},
		{"not found", models.NewNotFoundError("Movie", 1), fiber.StatusNotFound},
		{"internal", models.NewInternalError(errors.New("boom")), fiber.StatusInternalServerError},
		{"plain error", errors.New("boom"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mapServiceError(tt.err))
		})
	}
}

func TestParseMovieID(t *testing.T) {
	app := fiber.New()
	app.Get("/movies/:id", func(c *fiber.Ctx) error {
		id, err := parseMovieID(c, "id")
		if err != nil {
			return nil
		}
		return c.JSON(fiber.Map{"id": id})
	})

	for path, want := range map[string]int{
		"/movies/603": http.StatusOK,
		"/movies/abc": http.StatusBadRequest,
		"/movies/0":   http.StatusBadRequest,
		"/movies/-4":  http.StatusBadRequest,
	} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, want, resp.StatusCode, path)
	}
}

func TestInternalErrorsHideDetail(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return respondServiceError(c, errors.New("mongo: connection refused at 10.0.0.3"))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Internal server error", decodeError(t, resp).Message)
}
