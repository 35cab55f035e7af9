// Package main is the entrypoint for the Quillfeed API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/quillfeed/quillfeed/internal/auth"
	"github.com/quillfeed/quillfeed/internal/cache"
	"github.com/quillfeed/quillfeed/internal/config"
	"github.com/quillfeed/quillfeed/internal/handler"
	"github.com/quillfeed/quillfeed/internal/metrics"
	"github.com/quillfeed/quillfeed/internal/middleware"
	"github.com/quillfeed/quillfeed/internal/repository"
	"github.com/quillfeed/quillfeed/internal/server"
	"github.com/quillfeed/quillfeed/internal/service"
)

func main() {
	ctx := context.Background()

	// A missing TOKEN_SECRET fails here, before anything listens.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	codec, err := auth.NewCodec([]byte(cfg.TokenSecret), cfg.TokenTTL)
	if err != nil {
		logger.Error("failed to build token codec", "error", err)
		os.Exit(1)
	}

	// Services
	recorder := metrics.NewInMemory()
	accountService := service.NewAccountService(repo, codec, recorder)
	postService := service.NewPostService(repo, recorder)

	// Handlers
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	authHandler := handler.NewAuthHandler(accountService, logger)
	userHandler := handler.NewUserHandler(accountService, logger)
	postHandler := handler.NewPostHandler(postService, logger)
	metricsHandler := handler.NewMetricsHandler(recorder)

	r := setupRouter(routerDeps{
		health:  healthHandler,
		auth:    authHandler,
		users:   userHandler,
		posts:   postHandler,
		metrics: metricsHandler,
		repo:    repo,
		cache:   cacheClient,
		codec:   codec,
		cfg:     cfg,
		logger:  logger,
	})

	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type routerDeps struct {
	health  *handler.HealthHandler
	auth    *handler.AuthHandler
	users   *handler.UserHandler
	posts   *handler.PostHandler
	metrics *handler.MetricsHandler
	repo    *repository.Repository
	cache   *cache.Cache
	codec   *auth.Codec
	cfg     *config.Config
	logger  *slog.Logger
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(deps routerDeps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.logger))
	r.Use(middleware.Recoverer(deps.logger))
	r.Use(middleware.Security(middleware.SecurityConfig{
		IsDevelopment: deps.cfg.IsDevelopment(),
	}))
	r.Use(chimiddleware.RequestSize(deps.cfg.MaxRequestBodySize))

	if origins := deps.cfg.GetCORSAllowedOrigins(); len(origins) > 0 {
		corsCfg := middleware.DefaultCORSConfig()
		corsCfg.AllowedOrigins = origins
		r.Use(middleware.CORS(corsCfg))
	}

	// Health endpoints (no auth required)
	r.Get("/healthz", deps.health.Healthz)
	r.Get("/readyz", deps.health.Readyz)

	authCfg := middleware.AuthConfig{
		Logger:     deps.logger,
		Codec:      deps.codec,
		Repository: deps.repo,
	}

	loginLimitCfg := middleware.LoginRateLimitConfig{
		Logger:      deps.logger,
		Cache:       deps.cache,
		Enabled:     deps.cfg.LoginRateLimitEnabled,
		MaxAttempts: deps.cfg.LoginRateLimitAttempts,
		Window:      deps.cfg.LoginRateLimitWindow,
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Credential endpoints, throttled per source IP
		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.LoginRateLimit(loginLimitCfg))
			r.Post("/register", deps.auth.Register)
			r.Post("/login", deps.auth.Login)
		})

		// Public reads
		r.Get("/posts", deps.posts.List)
		r.Get("/posts/{id}", deps.posts.Get)
		r.Get("/posts/{id}/comments", deps.posts.ListComments)

		// Authenticated routes. Post paths stay flat: the public GETs
		// above share them, differing only by method.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(authCfg))

			r.With(middleware.RequireAdmin()).Get("/users", deps.users.List)
			r.Get("/users/me", deps.users.Me)
			r.Put("/users/me/name", deps.users.UpdateName)
			r.Put("/users/me/password", deps.users.ChangePassword)
			r.Get("/users/me/posts", deps.posts.ListMine)

			r.Post("/posts", deps.posts.Create)
			r.Put("/posts/{id}", deps.posts.Update)
			r.Delete("/posts/{id}", deps.posts.Delete)

			r.Post("/posts/{id}/comments", deps.posts.CreateComment)
			r.Delete("/posts/{id}/comments/{commentID}", deps.posts.DeleteComment)

			r.Put("/posts/{id}/like", deps.posts.Like)
			r.Delete("/posts/{id}/like", deps.posts.Unlike)
		})
	})

	// Operational metrics, admin only
	r.With(middleware.Authenticate(authCfg), middleware.RequireAdmin()).
		Get("/metrics", deps.metrics.Metrics)

	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
