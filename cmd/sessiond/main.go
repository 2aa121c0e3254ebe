// Command sessiond serves the session endpoints backed by Postgres and,
// for the ephemeral refresh store, Redis.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/internal/envconfig"
	"github.com/MrEthical07/goSession/internal/httpapi"
	"github.com/MrEthical07/goSession/internal/logging"
	sessionprom "github.com/MrEthical07/goSession/metrics/export/prometheus"
	"github.com/MrEthical07/goSession/users"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "sessiond: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	settings, err := envconfig.Load()
	if err != nil {
		return err
	}

	lg, err := logging.New(settings.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := users.Open(ctx, settings.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := users.Migrate(ctx, db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	repo := users.NewPostgresRepository(db)

	builder := goSession.New().
		WithConfig(settings.Session).
		WithUserRepository(repo).
		WithLogger(lg.Named("session"))

	if settings.Session.Store.Backend == goSession.StoreEphemeral {
		rdb := redis.NewClient(&redis.Options{
			Addr:     settings.RedisAddr,
			Password: settings.RedisPassword,
			DB:       settings.RedisDB,
		})
		defer rdb.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		builder = builder.WithRedis(rdb)
	}

	engine, err := builder.Build()
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}
	defer engine.Close()

	mux := http.NewServeMux()
	mux.Handle("/auth/", httpapi.New(engine, lg.Named("http")).Routes())
	mux.Handle("GET /metrics", sessionprom.NewCollector(engine).Handler())

	srv := &http.Server{
		Addr:              settings.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	accessTTL, refreshTTL := settings.SessionTTLs()
	lg.Info("starting sessiond",
		zap.String("addr", settings.HTTPAddr),
		zap.String("refresh_store", string(settings.Session.Store.Backend)),
		zap.Duration("access_ttl", accessTTL),
		zap.Duration("refresh_ttl", refreshTTL),
		zap.Bool("production", settings.Session.ProductionMode),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	lg.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Warn("http server shutdown failed", zap.Error(err))
	}
	return nil
}
