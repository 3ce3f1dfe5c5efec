package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Skotchmaster/catalog/internal/app"
	"github.com/Skotchmaster/catalog/internal/httpserver"
	"github.com/Skotchmaster/catalog/internal/service"
	"github.com/Skotchmaster/catalog/pkg/config"
	"github.com/Skotchmaster/catalog/pkg/logging"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	generated, err := cfg.ResolveSecret()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if generated {
		logger.Warn("jwt_secret_generated", "reason", "JWT_SECRET not set in development; sessions will not survive a restart")
	}

	ctx := logging.IntoContext(context.Background(), logger)

	repo, err := app.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	logger.Info("store_ready", "driver", cfg.StoreDriver)

	events, err := app.OpenEvents(cfg, logger)
	if err != nil {
		log.Fatalf("events: %v", err)
	}

	seeder := service.NewSeeder(repo)
	if cfg.SeedFile != "" {
		sf, err := service.LoadSeedFile(cfg.SeedFile)
		if err != nil {
			log.Fatalf("seed file: %v", err)
		}
		if err := sf.Apply(seeder); err != nil {
			log.Fatalf("seed file %s: %v", cfg.SeedFile, err)
		}
		logger.Info("seed_file_loaded", "path", cfg.SeedFile)
	}
	if cfg.SeedOnStart {
		res, err := seeder.Seed(ctx)
		if err != nil {
			log.Fatalf("seed: %v", err)
		}
		logger.Info("seed_done", "users_created", res.UsersCreated, "products_created", res.ProductsCreated)
	}

	auth := service.NewAuthService(repo, cfg.JWTSecret, events)
	catalog := service.NewCatalogService(repo, events)

	e := httpserver.New(logger, httpserver.NewDeps(repo, auth, catalog, seeder, cfg.APIBasePath))

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", srv.Addr, "base_path", cfg.APIBasePath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown_error", "error", err)
	}
	if err := events.Close(); err != nil {
		logger.Error("events_close_error", "error", err)
	}
	if err := repo.Close(); err != nil {
		logger.Error("store_close_error", "error", err)
	}

	logger.Info("stopped")
}
