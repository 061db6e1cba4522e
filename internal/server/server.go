// Package server owns process lifecycle: configuration, connections,
// the HTTP listener and graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/errycx/pokedex-api/app/controllers"
	"github.com/errycx/pokedex-api/app/repositories"
	"github.com/errycx/pokedex-api/app/services"
	"github.com/errycx/pokedex-api/config"
	"github.com/errycx/pokedex-api/database/seeders"
	"github.com/errycx/pokedex-api/internal/kernel"
	"github.com/errycx/pokedex-api/pkg/cache"
	"github.com/errycx/pokedex-api/pkg/database"
	"github.com/errycx/pokedex-api/pkg/logger"
	"github.com/errycx/pokedex-api/pkg/router"
)

const shutdownTimeout = 10 * time.Second

// Start brings up the full service and blocks until SIGINT/SIGTERM.
func Start() error {
	if err := config.Load(); err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx)
	if err != nil {
		return fmt.Errorf("connect mongo: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Close(closeCtx); err != nil {
			logger.Error("mongo close failed", "error", err)
		}
	}()

	// Redis is optional: a failed connection downgrades the cache to a
	// no-op and the service keeps running.
	if err := cache.Connect(); err != nil {
		logger.Warn("redis unavailable, caching disabled", "error", err)
	}
	defer cache.Close() //nolint:errcheck

	var sink *logger.MongoHandler
	if col := config.LogMongoCollection(); col != "" {
		sink = logger.NewMongoHandler(db.DB, col)
		logger.SetHandler(logger.NewMultiHandler(logger.L.Handler(), sink))
		defer sink.Close()
	}

	handler, _ := buildApp(db)

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "port", config.AppPort(), "environment", config.AppEnv())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

// Seed wipes and repopulates the catalog from the lookup source.
func Seed() error {
	if err := config.Load(); err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx)
	if err != nil {
		return fmt.Errorf("connect mongo: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		db.Close(closeCtx) //nolint:errcheck
	}()

	if err := cache.Connect(); err != nil {
		logger.Warn("redis unavailable, caching disabled", "error", err)
	}
	defer cache.Close() //nolint:errcheck

	seeder := seeders.NewPokemonSeeder(repositories.NewPokemonRepository(db), services.NewPokeAPI())
	return seeder.Run(ctx)
}

// Routes loads config and returns the registered route table without
// binding a listener or a database. The `routes` CLI command uses it.
func Routes() ([]router.RouteInfo, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	_, r := buildApp(nil)
	return r.Routes(), nil
}

// buildApp wires repositories, services and controllers into the handler.
// A nil db is allowed only for route listing; no request must reach the
// store in that mode.
func buildApp(db *database.Mongo) (http.Handler, *router.Router) {
	var store controllers.PokemonStore
	if db != nil {
		store = repositories.NewPokemonRepository(db)
	}

	pokemon := controllers.NewPokemonController(store, services.NewPokeAPI())
	health := controllers.NewHealthController()

	return kernel.BuildHandler(pokemon, health)
}
