package router

import (
	"github.com/campushub/backend/internal/handlers"
	"github.com/campushub/backend/internal/middleware"
	"github.com/campushub/backend/internal/models"
	"github.com/campushub/backend/internal/notify"
	"github.com/campushub/backend/internal/repositories"
	"github.com/campushub/backend/pkg/config"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Repositories groups one repository per aggregate
type Repositories struct {
	Users         repositories.UserRepository
	Posts         repositories.PostRepository
	Comments      repositories.CommentRepository
	Likes         repositories.LikeRepository
	Events        repositories.EventRepository
	Notifications repositories.NotificationRepository
}

// NewRepositories builds the store-backed repositories
func NewRepositories(pgdb *gorm.DB, mongoDB *mongo.Database) *Repositories {
	return &Repositories{
		Users:         repositories.NewPostgresUserRepository(pgdb),
		Posts:         repositories.NewMongoPostRepository(mongoDB),
		Comments:      repositories.NewPostgresCommentRepository(pgdb),
		Likes:         repositories.NewPostgresLikeRepository(pgdb),
		Events:        repositories.NewPostgresEventRepository(pgdb),
		Notifications: repositories.NewPostgresNotificationRepository(pgdb),
	}
}

// Migrate auto-migrates the PostgreSQL models
func Migrate(pgdb *gorm.DB) error {
	return pgdb.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.Comment{},
		&models.CommentVote{},
		&models.Like{},
		&models.Event{},
		&models.EventParticipant{},
		&models.Notification{},
	)
}

// Dependencies is everything the route table needs
type Dependencies struct {
	Config       *config.Config
	Repos        *Repositories
	Notifier     notify.Dispatcher
	FirebaseAuth handlers.TokenVerifier // nil disables federated login
	Probes       map[string]handlers.Probe
}

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo, logger *zap.Logger) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.RequestIDWithConfig(eMiddleware.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))
	e.Use(middleware.RequestLogger(logger))
	e.Use(eMiddleware.CORS())
	logger.Info("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps Dependencies) {
	logger := zap.L()
	repos := deps.Repos
	limiter := middleware.NewRateLimiter(deps.Config.RateLimitPerMin)

	// Health check - always accessible
	handlers.NewHealthHandler(deps.Probes).RegisterHealthRoutes(e)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth", middleware.RateLimit(limiter))
	authHandler := handlers.NewAuthHandler(repos.Users, deps.FirebaseAuth, deps.Config.JWTSecret)
	authHandler.RegisterAuthRoutes(authGroup)
	logger.Info("Auth routes configured.")

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(deps.Config.JWTSecret))
	api.Use(middleware.RateLimit(limiter))
	logger.Info("JWT authentication middleware applied to /api/v1 group.")

	handlers.NewUserHandler(repos.Users, repos.Posts, repos.Events, repos.Comments, repos.Likes).RegisterProfileRoutes(api)
	logger.Info("User profile routes configured.")

	handlers.NewPostHandler(repos.Posts, repos.Users, repos.Comments, repos.Likes, deps.Notifier).RegisterPostRoutes(api)
	logger.Info("Post routes configured.")

	handlers.NewLikeHandler(repos.Likes, repos.Posts, deps.Notifier).RegisterLikeRoutes(api)
	logger.Info("Like routes configured.")

	handlers.NewCommentHandler(repos.Comments, repos.Posts, repos.Users, deps.Notifier).RegisterCommentRoutes(api)
	logger.Info("Comment routes configured.")

	handlers.NewEventHandler(repos.Events, repos.Users, deps.Notifier).RegisterEventRoutes(api)
	logger.Info("Event routes configured.")

	handlers.NewNotificationHandler(repos.Notifications, repos.Users).RegisterNotificationRoutes(api)
	logger.Info("Notification routes configured.")

	logger.Info("All routes configured.")
}
