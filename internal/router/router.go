package router

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/anonto42/tweetline/backend/internal/cache"
	"github.com/anonto42/tweetline/backend/internal/handlers"
	"github.com/anonto42/tweetline/backend/internal/middleware"
	"github.com/anonto42/tweetline/backend/internal/repositories"
	"github.com/anonto42/tweetline/backend/internal/services"
	"github.com/anonto42/tweetline/backend/validators"
)

// Dependencies are the shared resources the routes are built from.
type Dependencies struct {
	DB        *gorm.DB
	Counts    cache.CountCache
	Tokens    middleware.TokenVerifier
	Issuer    services.TokenIssuer
	Firebase  services.FirebaseVerifier // nil when Firebase is not configured
	Validator *validators.Validator
	Logger    *zap.Logger
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps Dependencies) {
	logger := deps.Logger

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(deps.DB)
	tweetRepo := repositories.NewPostgresTweetRepository(deps.DB)
	followRepo := repositories.NewPostgresFollowRepository(deps.DB)
	likeRepo := repositories.NewPostgresLikeRepository(deps.DB)
	notificationRepo := repositories.NewPostgresNotificationRepository(deps.DB)
	tx := repositories.NewGormTransactor(deps.DB)

	// --- Services ---
	authService := services.NewAuthService(userRepo, deps.Issuer, deps.Firebase, logger.Named("auth"))
	notificationService := services.NewNotificationService(notificationRepo, userRepo, logger.Named("notifications"))
	userService := services.NewUserService(userRepo, followRepo, tweetRepo, tx, deps.Counts, notificationService, logger.Named("users"))
	tweetService := services.NewTweetService(tweetRepo, likeRepo, userRepo, followRepo, tx, notificationService, logger.Named("tweets"))

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/auth", middleware.Guard(logger))
	handlers.NewAuthHandler(authService, deps.Validator, userRepo).RegisterAuthRoutes(authGroup)
	logger.Debug("auth routes configured")

	// --- Protected routes (require JWT authentication) ---
	protected := []echo.MiddlewareFunc{middleware.JWTAuthMiddleware(deps.Tokens), middleware.Guard(logger)}
	usersGroup := e.Group("/users", protected...)
	tweetsGroup := e.Group("/tweets", protected...)
	notificationsGroup := e.Group("/notifications", protected...)

	handlers.NewFollowHandler(userService, deps.Validator).RegisterFollowRoutes(usersGroup)
	handlers.NewUserHandler(userService, deps.Validator).RegisterUserRoutes(usersGroup)
	logger.Debug("user routes configured")

	handlers.NewLikeHandler(tweetService, deps.Validator).RegisterLikeRoutes(tweetsGroup)
	handlers.NewTweetHandler(tweetService, deps.Validator).RegisterTweetRoutes(tweetsGroup)
	handlers.NewFeedHandler(tweetService).RegisterFeedRoutes(tweetsGroup)
	logger.Debug("tweet routes configured")

	handlers.NewNotificationHandler(notificationService, deps.Validator).RegisterNotificationRoutes(notificationsGroup)
	logger.Debug("notification routes configured")

	logger.Info("all routes configured", zap.Int("routes", len(e.Routes())))
}
