package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leadflow_backend/internal/events"
	apphttp "leadflow_backend/internal/http"
	"leadflow_backend/internal/http/router"
	identityrepo "leadflow_backend/internal/identity/repository"
	identityservice "leadflow_backend/internal/identity/service"
	"leadflow_backend/internal/leads"
	"leadflow_backend/internal/stages"
	"leadflow_backend/migrations"
	"leadflow_backend/platform/config"
	"leadflow_backend/platform/db"
	"leadflow_backend/platform/logger"
	"leadflow_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, migrations.FS)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		var poolErr error
		pool, poolErr = db.NewPool(ctx, cfg)
		return poolErr
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	var redisClient *redis.Client
	if cfg.IsRedisEnabled() {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.GetRedisAddr(),
			Password: cfg.GetRedisPassword(),
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			// The transition guard is best-effort; run without it rather
			// than refusing to start.
			log.Warn("redis unreachable, transition guard disabled", "error", err)
			redisClient = nil
		}
		defer func() {
			if redisClient != nil {
				_ = redisClient.Close()
			}
		}()
	}

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()

	// ========================================================================
	// Domain Modules
	// ========================================================================

	stagesModule, err := stages.NewModule(ctx, pool)
	if err != nil {
		log.Error("failed to load stage catalog", "error", err)
		panic("failed to load stage catalog: " + err.Error())
	}
	log.Info("stage catalog loaded", "stages", stagesModule.Resolver().Catalog().Len())

	actors := identityservice.New(identityrepo.New(pool))
	leadsModule := leads.NewModule(pool, stagesModule.Resolver(), actors, redisClient, eventBus, val, cfg, log)

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   pool,
		EventBus: eventBus,
		Modules:  []apphttp.Module{stagesModule, leadsModule},
	}

	engine := router.New(app)

	// ========================================================================
	// HTTP Server
	// ========================================================================

	server := &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

// withRetry runs fn up to attempts times with a fixed delay between tries.
func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, delay time.Duration, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if lastErr = fn(); lastErr == nil {
			return nil
		}
		log.Warn("retrying", "operation", name, "attempt", attempt, "error", lastErr)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return lastErr
}
