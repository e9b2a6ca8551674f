// Command courseapi runs the course management API server. It serves the
// API on one port and health/metrics endpoints on another, and shuts down
// gracefully on SIGINT/SIGTERM.
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"

	"github.com/coursehq/courseapi/pkg/api"
	"github.com/coursehq/courseapi/pkg/auth"
	"github.com/coursehq/courseapi/pkg/cache"
	"github.com/coursehq/courseapi/pkg/collections"
	"github.com/coursehq/courseapi/pkg/config"
	"github.com/coursehq/courseapi/pkg/courses"
	"github.com/coursehq/courseapi/pkg/observability"
	"github.com/coursehq/courseapi/pkg/schema"
	"github.com/coursehq/courseapi/pkg/store"
	"github.com/coursehq/courseapi/pkg/users"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "courseapi: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := observability.NewLogger(observability.ParseLogLevel(cfg.LogLevel), os.Stdout)
	metrics := observability.NewMetrics()

	st, err := store.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := st.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.WithField("driver", cfg.Database.Driver).Info("store ready")

	queryCache, err := buildCache(cfg, logger)
	if err != nil {
		return err
	}
	defer queryCache.Close()

	reg := schema.Assemble()
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)

	courseSvc := courses.NewService(st, queryCache, reg, logger, metrics, cfg.Cache.TTL)
	collectionSvc := collections.NewService(st, reg, logger, metrics)
	userSvc := users.NewService(st, queryCache, reg, tokens, hasher, logger, metrics, cfg.Cache.TTL)

	server := api.NewServer(courseSvc, collectionSvc, userSvc, tokens, logger, metrics)

	apiSrv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      server.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	health := observability.NewHealthChecker(map[string]observability.Probe{
		"database": st.HealthCheck,
	})
	opsRouter := mux.NewRouter()
	opsRouter.HandleFunc("/healthz", health.Liveness).Methods("GET")
	opsRouter.HandleFunc("/readyz", health.Readiness).Methods("GET")
	opsRouter.Handle("/metrics", metrics.Handler()).Methods("GET")

	opsSrv := &http.Server{
		Addr:    net.JoinHostPort(cfg.Server.Host, cfg.Server.HealthPort),
		Handler: opsRouter,
	}

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.WithField("addr", apiSrv.Addr).Info("api server listening")
		if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	group.Go(func() error {
		logger.WithField("addr", opsSrv.Addr).Info("health and metrics server listening")
		if err := opsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := apiSrv.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("api server shutdown failed")
		}
		return opsSrv.Shutdown(shutdownCtx)
	})

	return group.Wait()
}

// buildCache selects the redis backend when an address is configured, the
// in-process cache otherwise
func buildCache(cfg *config.Config, logger *observability.Logger) (cache.Cache, error) {
	if cfg.Redis.Addr != "" {
		c, err := cache.NewRedisCache(cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect cache: %w", err)
		}
		logger.WithField("addr", cfg.Redis.Addr).Info("using redis cache")
		return c, nil
	}

	c, err := cache.NewMemoryCache(cfg.Cache.MemorySize, cfg.Cache.SweepInterval)
	if err != nil {
		return nil, fmt.Errorf("failed to build memory cache: %w", err)
	}
	logger.Info("using in-memory cache")
	return c, nil
}
