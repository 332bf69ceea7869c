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

	"github.com/mcclellann/fredMortgage/pkg/cache"
	"github.com/mcclellann/fredMortgage/pkg/config"
	"github.com/mcclellann/fredMortgage/pkg/observability"
	"github.com/mcclellann/fredMortgage/pkg/planner"
	"github.com/mcclellann/fredMortgage/pkg/store"
)

const version = "0.1.0"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		slog.Error("fredmortgage stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := observability.InitLogger(observability.LogConfig{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	tracer, shutdownTracing, err := observability.InitTracing(ctx, observability.TraceConfig{
		ServiceName: cfg.OTELServiceName,
		Version:     version,
		Endpoint:    cfg.OTELEndpoint,
		Insecure:    true,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Error("tracer shutdown error", "error", err)
		}
	}()

	sqliteStore, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		return err
	}
	defer sqliteStore.Close()

	scheduleCache := newCache(ctx, cfg, logger)
	defer scheduleCache.Close()

	server := NewServer(sqliteStore, logger,
		planner.WithCache(scheduleCache, cfg.CacheTTL),
		planner.WithLimits(planner.Limits{MaxLoanAmount: cfg.MaxLoanAmount, MaxTermMonths: cfg.MaxTermMonths}),
		planner.WithTracer(tracer),
	)

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           server.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", httpServer.Addr, "db", cfg.DBPath)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	logger.Info("server stopped")
	return nil
}

// newCache connects to Redis when REDIS_ADDR is set. Without it, or when Redis
// is unreachable, schedules are cached in process.
func newCache(ctx context.Context, cfg config.Config, logger *slog.Logger) cache.Cache {
	if cfg.RedisAddr == "" {
		logger.Info("REDIS_ADDR not set, caching schedules in memory")
		return cache.NewMemoryCache()
	}
	rc, err := cache.NewRedisCache(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, caching schedules in memory", "error", err)
		return cache.NewMemoryCache()
	}
	logger.Info("caching schedules in redis", "addr", cfg.RedisAddr)
	return rc
}
