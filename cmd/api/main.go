// Package main is the entrypoint for the Commonsroom API server.
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

	"github.com/commonsroom/commonsroom/internal/cache"
	"github.com/commonsroom/commonsroom/internal/config"
	"github.com/commonsroom/commonsroom/internal/handler"
	"github.com/commonsroom/commonsroom/internal/identity"
	"github.com/commonsroom/commonsroom/internal/metrics"
	"github.com/commonsroom/commonsroom/internal/middleware"
	"github.com/commonsroom/commonsroom/internal/repository"
	"github.com/commonsroom/commonsroom/internal/server"
	"github.com/commonsroom/commonsroom/internal/service"
)

func main() {
	// Initialize context
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	// Initialize database
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

	// Initialize cache
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

	// Initialize identity provider client
	verifier := identity.NewClient(cfg.IdentityURL, cfg.IdentityKey, cfg.IdentityTimeout)

	// Initialize services
	metricsRecorder := metrics.NewInMemory()
	pollService := service.NewPollService(repo, metricsRecorder)
	projectService := service.NewProjectService(repo)
	feedbackService := service.NewFeedbackService(repo, metricsRecorder)

	// Initialize handlers
	h := handler.New()
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	metricsHandler := handler.NewMetricsHandler(metricsRecorder)
	pollHandler := handler.NewPollHandler(pollService, logger)
	projectHandler := handler.NewProjectHandler(projectService, logger)
	feedbackHandler := handler.NewFeedbackHandler(feedbackService, logger)
	adminHandler := handler.NewAdminHandler(repo, feedbackService, logger)

	// Setup router
	r := setupRouter(routerDeps{
		base:        h,
		health:      healthHandler,
		metricsPage: metricsHandler,
		polls:       pollHandler,
		projects:    projectHandler,
		feedback:    feedbackHandler,
		admin:       adminHandler,
		repo:        repo,
		cache:       cacheClient,
		verifier:    verifier,
		metrics:     metricsRecorder,
		cfg:         cfg,
		logger:      logger,
	})

	// Create and run server
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
		"identity_url", redactURL(cfg.IdentityURL),
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

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

// routerDeps bundles everything the router needs.
type routerDeps struct {
	base        *handler.Handler
	health      *handler.HealthHandler
	metricsPage *handler.MetricsHandler
	polls       *handler.PollHandler
	projects    *handler.ProjectHandler
	feedback    *handler.FeedbackHandler
	admin       *handler.AdminHandler
	repo        *repository.Repository
	cache       *cache.Cache
	verifier    identity.Verifier
	metrics     metrics.Recorder
	cfg         *config.Config
	logger      *slog.Logger
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(deps routerDeps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.logger))
	r.Use(middleware.Recoverer(deps.logger))
	securityCfg := middleware.DefaultSecurityConfig()
	securityCfg.IsDevelopment = deps.cfg.IsDevelopment()
	r.Use(middleware.Security(securityCfg))
	r.Use(middleware.MaxBodySize(deps.cfg.MaxRequestBodySize))

	corsCfg := middleware.DefaultCORSConfig()
	if origins := deps.cfg.GetCORSAllowedOrigins(); len(origins) > 0 {
		corsCfg.AllowedOrigins = origins
	}
	r.Use(middleware.CORS(corsCfg))

	// Health and metrics endpoints (no auth required)
	r.Get("/healthz", deps.health.Healthz)
	r.Get("/readyz", deps.health.Readyz)
	r.Get("/metrics", deps.metricsPage.Metrics)

	// Root info endpoint
	r.Get("/", deps.base.Hello)

	// Auth middleware configuration
	authCfg := middleware.AuthConfig{
		Logger:   deps.logger,
		Verifier: deps.verifier,
		Cache:    deps.cache,
		Metrics:  deps.metrics,
	}
	adminCfg := middleware.AdminConfig{
		Logger:   deps.logger,
		Profiles: deps.repo,
	}

	// Rate limit middleware configuration
	rateLimitCfg := middleware.RateLimitConfig{
		Logger:          deps.logger,
		Cache:           deps.cache,
		WritesEnabled:   deps.cfg.RateLimitWritesEnabled,
		WritesPerMinute: deps.cfg.RateLimitWritesPerMin,
		WritesBurst:     deps.cfg.RateLimitWritesBurst,
		PublicEnabled:   deps.cfg.RateLimitPublicEnabled,
		PublicRPS:       deps.cfg.RateLimitPublicRPS,
		PublicBurst:     deps.cfg.RateLimitPublicBurst,
	}

	requireAuth := middleware.RequireAuth(authCfg)
	requireAdmin := middleware.RequireAdmin(adminCfg)
	rateLimitWrites := middleware.RateLimitWrites(rateLimitCfg)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Polls: listing is public, everything else requires auth
		r.Route("/polls", func(r chi.Router) {
			r.With(middleware.RateLimitIP(rateLimitCfg)).Get("/", deps.polls.List)
			r.With(middleware.RateLimitIP(rateLimitCfg)).Get("/{id}", deps.polls.Get)
			r.With(requireAuth, requireAdmin).Post("/", deps.polls.Create)
			r.With(requireAuth, requireAdmin).Post("/{id}/retire", deps.polls.Retire)
			r.With(requireAuth, rateLimitWrites).Post("/{id}/vote", deps.polls.Vote)
		})

		// Projects: reads for members, mutations for admins
		r.Route("/projects", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", deps.projects.List)
			r.Get("/{id}", deps.projects.Get)
			r.With(requireAdmin).Post("/", deps.projects.Create)
			r.With(requireAdmin).Put("/{id}", deps.projects.Update)
			r.With(requireAdmin).Delete("/{id}", deps.projects.Delete)
		})

		// Feedback: members submit and read their own
		r.Route("/feedback", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/me", deps.feedback.ListMine)
			r.With(rateLimitWrites).Post("/", deps.feedback.Submit)
		})

		// Admin dashboard and moderation
		r.Route("/admin", func(r chi.Router) {
			r.Use(requireAuth, requireAdmin)
			r.Get("/stats", deps.admin.Stats)
			r.Get("/users", deps.admin.ListUsers)
			r.Get("/feedback", deps.admin.ListFeedback)
			r.Delete("/feedback/{id}", deps.admin.DeleteFeedback)
			r.Put("/feedback/{id}/reply", deps.admin.ReplyFeedback)
		})
	})

	// 404 and 405 handlers
	r.NotFound(deps.base.NotFound)
	r.MethodNotAllowed(deps.base.MethodNotAllowed)

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
