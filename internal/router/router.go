package router

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"time"

	"github.com/anonto42/bloglist/backend/internal/auth"
	"github.com/anonto42/bloglist/backend/internal/handlers"
	"github.com/anonto42/bloglist/backend/internal/repositories"
	"github.com/anonto42/bloglist/backend/pkg/config"
	"github.com/anonto42/bloglist/backend/pkg/googleauth"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"go.mongodb.org/mongo-driver/mongo"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo, clientOrigin string) {
	e.Use(eMiddleware.Logger())
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORSWithConfig(eMiddleware.CORSConfig{
		AllowOrigins:     []string{clientOrigin},
		AllowCredentials: true,
	}))
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, cfg *config.Config, db *mongo.Database) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := config.EnsureIndexes(ctx, db); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}
	log.Println("MongoDB indexes ensured for the users collection.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// Uploaded blog images and avatars are served back as static files
	e.Static("/uploads", cfg.UploadDir)
	e.Static("/avatars", filepath.Join(cfg.UploadDir, "avatars"))

	// --- Initialize Repositories ---
	userRepo := repositories.NewMongoUserRepository(db)
	blogRepo := repositories.NewMongoBlogRepository(db)
	commentRepo := repositories.NewMongoCommentRepository(db)
	notificationRepo := repositories.NewMongoNotificationRepository(db)

	api := e.Group("/api")
	requireAuth := auth.Middleware(userRepo, cfg.JWTSecret)

	// User routes
	userHandler := handlers.NewUserHandler(userRepo, blogRepo, cfg.UploadDir)
	userHandler.RegisterUserRoutes(api, requireAuth)
	log.Println("User routes configured.")

	// Login routes
	loginHandler := handlers.NewLoginHandler(userRepo, cfg.JWTSecret, cfg.Production())
	loginHandler.RegisterLoginRoutes(api, requireAuth)
	log.Println("Login routes configured.")

	// OAuth routes
	provider := googleauth.NewProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleCallbackURL)
	oauthHandler := handlers.NewOAuthHandler(userRepo, provider, cfg.JWTSecret, cfg.ClientOrigin, cfg.Production())
	oauthHandler.RegisterOAuthRoutes(api)
	log.Println("OAuth routes configured.")

	// Blog routes
	blogHandler := handlers.NewBlogHandler(blogRepo, userRepo, commentRepo, notificationRepo, cfg.UploadDir)
	blogHandler.RegisterBlogRoutes(api, requireAuth)
	log.Println("Blog routes configured.")

	// Follow routes
	followHandler := handlers.NewFollowHandler(userRepo, commentRepo, notificationRepo)
	followHandler.RegisterFollowRoutes(api, requireAuth)
	log.Println("Follow routes configured.")

	// Notification routes
	notificationHandler := handlers.NewNotificationHandler(notificationRepo, userRepo, blogRepo)
	notificationHandler.RegisterNotificationRoutes(api, requireAuth)
	log.Println("Notification routes configured.")

	log.Println("All routes configured.")
}

// HTTPErrorHandler renders every error as an {"error": message} body and
// maps storage error categories that escaped handler-level mapping.
func HTTPErrorHandler(err error, c echo.Context) {
	status := http.StatusInternalServerError
	message := "internal server error"

	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &httpErr):
		status = httpErr.Code
		message = fmt.Sprintf("%v", httpErr.Message)
	case errors.Is(err, repositories.ErrInvalidID):
		status = http.StatusBadRequest
		message = "invalid id"
	case errors.Is(err, repositories.ErrDuplicateUsername):
		status = http.StatusBadRequest
		message = "expected `username` to be unique"
	case errors.Is(err, repositories.ErrNotFound):
		status = http.StatusNotFound
		message = "not found"
	default:
		c.Logger().Error(err)
	}

	if c.Response().Committed {
		return
	}
	if c.Request().Method == http.MethodHead {
		if err := c.NoContent(status); err != nil {
			c.Logger().Error(err)
		}
		return
	}
	if err := c.JSON(status, echo.Map{"error": message}); err != nil {
		c.Logger().Error(err)
	}
}
