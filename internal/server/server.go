package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/cookbook/backend/config"
	"github.com/pageza/cookbook/backend/internal/api"
	"github.com/pageza/cookbook/backend/internal/database"
	"github.com/pageza/cookbook/backend/internal/middleware"
	"github.com/pageza/cookbook/backend/internal/service"
)

// Deps are the collaborators the server is built from. Redis, Images and
// Mailer are optional.
type Deps struct {
	DB     *gorm.DB
	Redis  *redis.Client
	Images service.ImageStore
	Mailer service.Mailer
	Logger *zap.Logger
}

// Server represents the HTTP server
type Server struct {
	cfg    *config.Config
	router *gin.Engine
	http   *http.Server
	db     *gorm.DB
	logger *zap.Logger
}

// New wires services and routes.
func New(ctx context.Context, cfg *config.Config, deps Deps) (*Server, error) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	router.NoRoute(middleware.NotFound())

	images := deps.Images
	if images == nil {
		store, err := newImageStore(ctx, cfg, router)
		if err != nil {
			return nil, err
		}
		images = store
	}

	mailer := deps.Mailer
	if mailer == nil {
		mailer = service.NewEmailService(service.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.EmailFrom,
			FromName: cfg.EmailFromName,
		}, logger)
	}

	var tokens service.TokenStore
	if deps.Redis != nil {
		tokens = service.NewRedisTokenStore(deps.Redis)
	} else {
		logger.Warn("Redis not configured, revoked tokens are kept in memory")
		tokens = service.NewMemoryTokenStore()
	}

	recipes := service.NewRecipeService(deps.DB, service.NewImageService(images, logger), logger, service.RecipeServiceOptions{
		DefaultPageSize: cfg.DefaultPageSize,
		MaxPageSize:     cfg.MaxPageSize,
	})
	auth := service.NewAuthService(deps.DB, tokens, logger, service.AuthOptions{
		Secret:     cfg.JWTSecret,
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
	})

	s := &Server{cfg: cfg, router: router, db: deps.DB, logger: logger}
	router.GET("/health", s.health)

	api.SetupAPI(router, api.Services{
		Recipes:        recipes,
		Comments:       service.NewCommentService(deps.DB, recipes, logger),
		Auth:           auth,
		Users:          service.NewUserService(deps.DB, logger),
		PasswordResets: service.NewPasswordResetService(deps.DB, mailer, cfg.FrontendURL, logger),
	}, api.Options{
		PublicURL:           cfg.PublicURL,
		DefaultImageURL:     cfg.DefaultImageURL,
		DefaultPageSize:     cfg.DefaultPageSize,
		MaxPageSize:         cfg.MaxPageSize,
		RecipeCreateLimiter: middleware.NewRecipeCreationRateLimiter(deps.Redis, cfg.RecipeCreateLimit, cfg.RecipeCreateWindow, logger),
		LoginLimiter:        middleware.NewIPRateLimiter(cfg.LoginRatePerMinute),
	}, logger)

	s.http = &http.Server{
		Addr:              net.JoinHostPort(cfg.ServerHost, cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// newImageStore picks S3 or the local media directory. Local media is served
// by the router itself.
func newImageStore(ctx context.Context, cfg *config.Config, router *gin.Engine) (service.ImageStore, error) {
	if cfg.ImageStorage == "s3" {
		s3cfg, err := config.NewS3Config(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3: %w", err)
		}
		return service.NewS3ImageStore(s3cfg.Client, s3cfg.BucketName), nil
	}

	mediaPath := "/media"
	if u, err := url.Parse(cfg.MediaURL); err == nil && u.Path != "" {
		mediaPath = strings.TrimRight(u.Path, "/")
	}
	router.Static(mediaPath, cfg.MediaRoot)
	return service.NewLocalImageStore(cfg.MediaRoot, cfg.MediaURL), nil
}

func (s *Server) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := database.HealthCheck(ctx, s.db); err != nil {
		s.logger.Error("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("server listening", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
