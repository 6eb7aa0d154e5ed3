package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"shop-inventory/internal/auth"
	"shop-inventory/internal/config"
	"shop-inventory/internal/database"
	custommiddleware "shop-inventory/internal/middleware"
	"shop-inventory/internal/repository"
	"shop-inventory/internal/service"
	"shop-inventory/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const rateLimitKeyPrefix = "ratelimit"

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     database.Service
	redis  *redis.Client
}

func NewServer(cfg *config.Config, logger *zap.Logger, db database.Service) (*Server, error) {
	authenticator, err := auth.NewAuthenticator(auth.Config{
		Secret: cfg.JWT.Secret,
		Expiry: cfg.JWT.AccessExpiry,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create authenticator: %w", err)
	}

	s := &Server{
		config: cfg,
		logger: logger,
		db:     db,
	}

	router := chi.NewRouter()

	router.Use(custommiddleware.DefaultMiddlewareStack()...)
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, cfg.Server.IsDevelopment()))

	router.Get("/health", s.handleHealth)

	// Repositories
	catalogRepo := repository.NewCatalogRepository(db.DB())
	productRepo := repository.NewProductRepository(db.DB())

	// Services
	catalogService := service.NewCatalogService(catalogRepo, productRepo, logger)
	productService := service.NewProductService(productRepo, catalogRepo, logger)

	// Handlers
	catalogHandler := transport.NewCatalogHandler(catalogService, logger)
	productHandler := transport.NewProductHandler(productService, logger)

	// The limiter runs on both sides of authentication: before it every
	// request counts against the remote IP, after it against the subject.
	authenticate := custommiddleware.AuthMiddleware(authenticator, logger)
	limit := s.rateLimiter()
	protected := func(next http.Handler) http.Handler {
		return limit(authenticate(limit(next)))
	}

	router.Route("/api/v1", func(r chi.Router) {
		catalogHandler.RegisterRoutes(r, protected)
		productHandler.RegisterRoutes(r, protected)
	})

	s.Server = &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		IdleTimeout:       time.Minute,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	return s, nil
}

// rateLimiter builds the limiter for the configured backend
func (s *Server) rateLimiter() func(http.Handler) http.Handler {
	limiterConfig := custommiddleware.RateLimitConfig{
		RequestsPerWindow: s.config.RateLimit.Requests,
		Window:            s.config.RateLimit.Window,
		KeyPrefix:         rateLimitKeyPrefix,
	}

	switch s.config.RateLimit.Backend {
	case config.RateLimitBackendRedis:
		s.redis = redis.NewClient(&redis.Options{
			Addr:     s.config.Redis.Addr(),
			Password: s.config.Redis.Password,
			DB:       s.config.Redis.DB,
		})
		s.logger.Info("Rate limiting backed by redis", zap.String("addr", s.config.Redis.Addr()))
		return custommiddleware.RateLimitMiddleware(s.redis, limiterConfig, s.logger)
	case config.RateLimitBackendOff:
		s.logger.Warn("Rate limiting disabled")
		return func(next http.Handler) http.Handler { return next }
	default:
		return custommiddleware.NewLocalRateLimiter(limiterConfig, s.logger).Middleware
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := s.db.Health(r.Context())

	status := http.StatusOK
	if health["status"] != "up" {
		status = http.StatusServiceUnavailable
		s.logger.Warn("Health check failed", zap.String("error", health["error"]))
	}

	custommiddleware.RespondWithJSON(w, status, health)
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.Server.Shutdown(ctx)
}

// Close releases the database pool and the redis client
func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	_ = s.logger.Sync()
	return nil
}
