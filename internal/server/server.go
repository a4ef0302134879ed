// Package server contains the HTTP handlers for the PANORAM API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	_ "panoram/docs" // swagger docs
	"panoram/internal/bootstrap"
	"panoram/internal/config"
	"panoram/internal/database"
	"panoram/internal/featureflags"
	"panoram/internal/middleware"
	"panoram/internal/models"
	"panoram/internal/recommend"
	"panoram/internal/repository"
	"panoram/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config          *config.Config
	mongo           *mongo.Client
	db              *mongo.Database
	redis           *redis.Client
	promMiddleware  *fiberprometheus.FiberPrometheus
	userRepo        repository.UserRepository
	movieRepo       repository.MovieRepository
	interactionRepo repository.InteractionRepository
	featureFlags    *featureflags.Manager
	recommender     recommend.Recommender
	authService     *service.AuthService
	userService     *service.UserService
	catalogService  *service.CatalogService
	interactService *service.InteractionService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.MongoTimeout())
	defer cancel()

	rt, err := bootstrap.InitRuntime(ctx, cfg)
	if err != nil {
		return nil, err
	}

	s, err := NewServerWithDeps(cfg, rt.DB, rt.Redis)
	if err != nil {
		return nil, err
	}
	s.mongo = rt.Mongo
	return s, nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes MongoDB and Redis.
func NewServerWithDeps(cfg *config.Config, db *mongo.Database, redisClient *redis.Client) (*Server, error) {
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}

	s := &Server{
		config:          cfg,
		db:              db,
		redis:           redisClient,
		promMiddleware:  middleware.InitMetrics("panoram-api"),
		userRepo:        repository.NewUserRepository(db),
		movieRepo:       repository.NewMovieRepository(db),
		interactionRepo: repository.NewInteractionRepository(db),
		featureFlags:    featureflags.NewManager(cfg.FeatureFlags),
	}
	s.initServices()
	return s, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}
	app.Use(middleware.TracingMiddleware())

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:3000,http://127.0.0.1:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		MaxAge:       86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Message: "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "PANORAM API Metrics",
	}))

	api.Get("/swagger/*", swagger.HandlerDefault)

	// Public user routes
	users := api.Group("/users")
	users.Post("/register", middleware.RateLimit(
		s.redis, 5, 10*time.Minute, "register"), s.Register)
	users.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)

	// Public catalog routes
	movies := api.Group("/movies")
	movies.Get("/popular", s.GetPopularMovies)
	movies.Get("/search", middleware.RateLimit(
		s.redis, 30, time.Minute, "movie_search"), s.SearchMovies)
	movies.Get("/:id", s.GetMovie)

	// Protected routes
	protected := api.Group("", s.AuthRequired())

	me := protected.Group("/users")
	me.Get("/search", s.SearchUsers)
	me.Get("/myprofile", s.GetMyProfile)
	me.Post("/addfriend", s.AddFriend)
	me.Post("/removefriend", s.RemoveFriend)
	me.Post("/logout", s.Logout)

	interact := protected.Group("/interact")
	interact.Post("/", s.UpsertInteraction)
	// Specific /lists routes before generic /:movieId
	interact.Get("/lists/all", s.GetAllInteractions)
	interact.Get("/lists/favorites", s.GetFavoriteMovies)
	interact.Get("/lists/watched", s.GetWatchedMovies)
	interact.Get("/:movieId", s.GetInteraction)

	rec := protected.Group("/recommend")
	rec.Get("/friends", s.RecommendFriends)
	rec.Get("/genre", s.RecommendGenre)
	rec.Get("/demographic", s.RecommendDemographic)
	rec.Get("/director", s.RecommendDirector)
	rec.Get("/actor", s.RecommendActor)

	protected.Get("/feature-flags", s.GetFeatureFlags)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional, so
// only the database decides readiness.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if s.db == nil {
		dbStatus = "unavailable"
	} else if err := database.Ping(ctx, s.db); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis == nil {
		redisStatus = "unavailable"
	} else if err := s.redis.Ping(ctx).Err(); err != nil {
		redisStatus = "unhealthy"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	} else if redisStatus != "healthy" {
		overallStatus = "degraded"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AuthRequired returns the authentication middleware. A missing bearer
// token is a 401; a token that fails verification is a 403.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := ""
		if authHeader := c.Get("Authorization"); authHeader != "" {
			parts := strings.Fields(authHeader)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				tokenString = parts[1]
			}
		}
		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		claims, err := s.authSvc().ParseToken(c.UserContext(), tokenString)
		if err != nil {
			return models.RespondWithError(c, mapServiceError(err), err)
		}

		userID := claims.UserID.Hex()
		c.Locals("userID", userID)
		c.Locals("claims", claims)
		// Sync to UserContext for logging and downstream services
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, userID)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// ErrorHandler renders errors that escape a handler. Fiber errors keep
// their status; anything else is a 500 with the detail logged.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(models.ErrorResponse{Message: fe.Message})
	}
	return models.RespondWithError(c, fiber.StatusInternalServerError,
		models.NewInternalError(err))
}

// Shutdown releases the database and Redis connections. The caller stops
// the Fiber app first.
func (s *Server) Shutdown(ctx context.Context) error {
	rt := &bootstrap.Runtime{Mongo: s.mongo, Redis: s.redis}
	if err := rt.Close(ctx); err != nil {
		log.Printf("error closing connections: %v", err)
	}

	log.Println("Server shutdown complete")
	return nil
}
