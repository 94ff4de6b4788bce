package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/cvbuilder/auth"
	"github.com/dmitrymomot/cvbuilder/core/cache"
	"github.com/dmitrymomot/cvbuilder/core/config"
	"github.com/dmitrymomot/cvbuilder/core/dialog"
	"github.com/dmitrymomot/cvbuilder/core/kv"
	"github.com/dmitrymomot/cvbuilder/core/logger"
	"github.com/dmitrymomot/cvbuilder/core/response"
	"github.com/dmitrymomot/cvbuilder/cvgen"
	"github.com/dmitrymomot/cvbuilder/integration/database/pg"
	"github.com/dmitrymomot/cvbuilder/integration/database/redis"
	"github.com/dmitrymomot/cvbuilder/integration/storage/s3"
	"github.com/dmitrymomot/cvbuilder/middleware"
	"github.com/dmitrymomot/cvbuilder/pkg/ratelimiter"
	"github.com/dmitrymomot/cvbuilder/resume"
	"github.com/dmitrymomot/cvbuilder/upload"
)

func main() {
	var cfg Config
	config.MustLoad(&cfg)

	var log *slog.Logger
	if cfg.Env == "production" {
		log = logger.New(logger.WithProduction(cfg.AppName))
	} else {
		log = logger.New(logger.WithDevelopment(cfg.AppName))
	}

	if err := run(cfg, log); err != nil {
		log.Error("server exited", logger.Error(err))
		os.Exit(1)
	}
}

func run(cfg Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The kv store degrades instead of blocking startup: without Redis
	// the limiter fails open, the cache always misses, and generation
	// continues without conversational context.
	var store kv.Store
	if client, err := redis.Connect(ctx, cfg.Redis); err != nil {
		log.Warn("redis unavailable, running degraded", logger.Error(err))
		store = kv.NewUnavailable()
	} else {
		defer func() { _ = client.Close() }()
		redisStore, err := kv.NewRedis(client, kv.WithScanBatchSize(int64(cfg.Redis.ScanBatchSize)))
		if err != nil {
			return err
		}
		store = redisStore
	}

	pool, err := pg.Connect(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := pg.Migrate(ctx, pool, cfg.DB, log); err != nil {
		return err
	}

	storage, err := s3.New(ctx, cfg.S3)
	if err != nil {
		return err
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret)
	if err != nil {
		return err
	}

	limiter, err := ratelimiter.NewWindow(store, cfg.RateLimit)
	if err != nil {
		return err
	}

	responseCache := cache.New(store, cache.WithLogger(log))
	dialogStore := dialog.New(store,
		dialog.WithMaxMessages(cfg.DialogMaxLength),
		dialog.WithTTL(cfg.DialogTTL),
		dialog.WithLogger(log),
	)

	generator, err := cvgen.NewGenerator(cfg.OpenAIAPIKey,
		cvgen.WithDialogStore(dialogStore),
		cvgen.WithLogger(log),
	)
	if err != nil {
		return err
	}

	authSvc := auth.NewService(auth.NewPostgresRepository(pool), tokens, auth.WithLogger(log))
	authHandler := auth.NewHandler(authSvc, log)
	resumeHandler := resume.NewHandler(resume.NewPostgresRepository(pool), responseCache, log)
	cvgenHandler := cvgen.NewHandler(generator, log)
	uploadHandler := upload.NewHandler(storage, log)

	r := chi.NewRouter()
	r.Use(middleware.Recover(log))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(log))
	r.Use(middleware.CORS())
	r.Use(middleware.RateLimit(middleware.RateLimitConfig{
		Limiter:    limiter,
		Logger:     log,
		SetHeaders: true,
	}))
	r.Use(auth.Middleware(auth.MiddlewareConfig{Tokens: tokens}))

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		response.JSON(w, http.StatusOK, map[string]string{"message": "Welcome to the AI CV Builder API!"})
	})
	r.Get("/health", healthHandler(pg.Healthcheck(pool)))
	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", authHandler.Routes)
		r.Route("/cv-gen", cvgenHandler.Routes)
		r.Route("/resume-op", func(r chi.Router) {
			r.Use(responseCache.Middleware(cache.MiddlewareConfig{
				TTL:   cfg.CacheTTL,
				Scope: resume.CacheScope,
			}))
			resumeHandler.Routes(r)
		})
		r.Method(http.MethodPost, "/upload", uploadHandler)
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", slog.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func healthHandler(checks ...func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, check := range checks {
			if err := check(r.Context()); err != nil {
				response.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
				return
			}
		}
		response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
