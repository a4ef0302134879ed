package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"panoram/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// unreachableDB returns a handle whose client never dials until a command
// runs, which these tests never do.
func unreachableDB(t *testing.T) *mongo.Database {
	t.Helper()
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI("mongodb://127.0.0.1:1"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })
	return client.Database("panoram_unused")
}

func TestNewServerWithDeps_RequiresDatabase(t *testing.T) {
	_, err := NewServerWithDeps(&config.Config{JWTSecret: testSecret}, nil, nil)
	require.Error(t, err)
}

// Run with -race: services must be ready before handlers run concurrently.
func TestNewServerWithDeps_ServicesSafeForConcurrentUse(t *testing.T) {
	s, err := NewServerWithDeps(&config.Config{JWTSecret: testSecret}, unreachableDB(t), nil)
	require.NoError(t, err)

	require.NotNil(t, s.authSvc())
	require.NotNil(t, s.userSvc())
	require.NotNil(t, s.interactionSvc())
	require.NotNil(t, s.catalogSvc())
	require.NotNil(t, s.engine())

	app := fiber.New()
	app.Get("/protected", s.AuthRequired(), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})

	auth, engine := s.authSvc(), s.engine()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Same(t, auth, s.authSvc())
			assert.Equal(t, engine, s.engine())

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", "Bearer not-a-token")
			resp, err := app.Test(req)
			if assert.NoError(t, err) {
				assert.Equal(t, http.StatusForbidden, resp.StatusCode)
				_ = resp.Body.Close()
			}
		}()
	}
	wg.Wait()
}

func TestErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/teapot", func(*fiber.Ctx) error { return fiber.NewError(fiber.StatusTeapot, "short and stout") })
	app.Get("/boom", func(*fiber.Ctx) error { return errors.New("mongo: server selection timeout") })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/teapot", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTeapot, resp.StatusCode)
	assert.Equal(t, "short and stout", decodeError(t, resp).Message)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Internal server error", decodeError(t, resp).Message)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
