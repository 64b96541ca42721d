// Package main is the entrypoint for the SceneVault API server.
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

	"github.com/scenevault/scenevault/internal/auth"
	"github.com/scenevault/scenevault/internal/cache"
	"github.com/scenevault/scenevault/internal/config"
	"github.com/scenevault/scenevault/internal/handler"
	"github.com/scenevault/scenevault/internal/metrics"
	"github.com/scenevault/scenevault/internal/middleware"
	"github.com/scenevault/scenevault/internal/repository"
	"github.com/scenevault/scenevault/internal/server"
	"github.com/scenevault/scenevault/internal/service"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	dsn := cfg.DSN()
	repo, err := repository.New(ctx, dsn)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, dsn, cfg.DBPassword)),
			slog.String("database_url", redactURL(dsn)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database", slog.String("database", cfg.DatabaseName()))

	if cfg.DBAutoInit {
		if err := repo.EnsureSchema(ctx); err != nil {
			logger.Error("failed to initialize schema", slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("database schema ensured")
	}

	// Redis is optional; without it the credential endpoints are not rate limited.
	var cacheClient *cache.Cache
	if cfg.RedisURL != "" {
		cacheClient, err = cache.New(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error(
				"failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			os.Exit(1)
		}
		logger.Info("connected to Redis")
	} else {
		logger.Warn("REDIS_URL not set; rate limiting disabled")
	}

	tokens, err := auth.NewTokenIssuer(cfg.SecretKey, cfg.TokenTTL())
	if err != nil {
		logger.Error("failed to create token issuer", slog.String("error", err.Error()))
		os.Exit(1)
	}

	recorder := metrics.NewInMemory()
	accounts := service.NewAccountService(repo, tokens, recorder)
	scenes := service.NewSceneService(repo, recorder)

	deps := routerDeps{
		accounts: accounts,
		scenes:   scenes,
		recorder: recorder,
		db:       repo,
	}
	if cacheClient != nil {
		deps.limiter = cacheClient
		deps.cache = cacheClient
	}

	r := setupRouter(deps, cfg, logger)

	srv := server.New(r, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	srv.OnShutdown("postgres", func(ctx context.Context) error {
		repo.Close()
		return nil
	})
	if cacheClient != nil {
		srv.OnShutdown("redis", func(ctx context.Context) error {
			return cacheClient.Close()
		})
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"version", version,
		"token_ttl", cfg.TokenTTL(),
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h).With(slog.String("service", handler.ServiceName))
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// routerDeps are the components the router wires together.
// limiter and cache stay nil when Redis is not configured.
type routerDeps struct {
	accounts interface {
		handler.AccountService
		middleware.Authenticator
	}
	scenes   handler.SceneService
	recorder *metrics.InMemoryRecorder
	db       handler.HealthChecker
	cache    handler.HealthChecker
	limiter  middleware.IPRateLimiter
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(deps routerDeps, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	h := handler.New(version)
	healthHandler := handler.NewHealthHandler(deps.db, deps.cache, logger)
	metricsHandler := handler.NewMetricsHandler(deps.recorder)
	accountHandler := handler.NewAccountHandler(deps.accounts, logger)
	sceneHandler := handler.NewSceneHandler(deps.scenes, logger)

	r := chi.NewRouter()

	// Global middleware
	if cfg.TrustProxyHeaders {
		// Rewrites RemoteAddr from proxy headers; the rate limiter keys on it.
		r.Use(chimiddleware.RealIP)
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment()}))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()
	r.Use(middleware.CORS(corsCfg))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	// Operational endpoints (no auth required)
	r.Get("/", h.Hello)
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)
	r.Get("/metrics", metricsHandler.Metrics)

	rateLimitCfg := middleware.RateLimitConfig{
		Logger:  logger,
		Limiter: deps.limiter,
		Metrics: deps.recorder,
		Enabled: cfg.RateLimitAuthEnabled,
		RPS:     float64(cfg.RateLimitAuthRPS),
		Burst:   cfg.RateLimitAuthBurst,
	}

	// Credential endpoints with per-IP rate limiting
	r.With(middleware.RateLimitIP(rateLimitCfg, "register")).Post("/register", accountHandler.Register)
	r.With(middleware.RateLimitIP(rateLimitCfg, "login")).Post("/login", accountHandler.Login)

	// Scene endpoints (require a bearer token)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(middleware.AuthConfig{
			Logger:        logger,
			Authenticator: deps.accounts,
		}))

		r.Post("/addData", sceneHandler.Save)
		r.Get("/getData", sceneHandler.Load)
	})

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

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
		if redacted == "" || redacted == secret {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
