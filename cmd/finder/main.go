package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/matst80/casa-finder/pkg/catalog"
	"github.com/matst80/casa-finder/pkg/common"
	"github.com/matst80/casa-finder/pkg/config"
	"github.com/matst80/casa-finder/pkg/favorites"
	"github.com/matst80/casa-finder/pkg/logging"
	"github.com/matst80/casa-finder/pkg/search"
	"github.com/matst80/casa-finder/pkg/server"
	"github.com/matst80/casa-finder/pkg/storage"
	"github.com/matst80/casa-finder/pkg/tracking"
)

type app struct {
	cfg       *config.AppConfig
	logger    *slog.Logger
	storage   *storage.DiskStorage
	catalog   *catalog.Catalog
	favorites favorites.Backend
	tracker   tracking.Tracking
	hooks     []common.ShutdownHook
}

func (a *app) loadCatalog(ctx context.Context) error {
	if a.cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, a.cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connect to postgres: %w", err)
		}
		defer pool.Close()
		a.catalog, err = catalog.LoadPostgres(ctx, pool, a.logger)
		return err
	}
	c, err := catalog.LoadFile(a.storage, a.cfg.CatalogFile, a.logger)
	if err != nil {
		return err
	}
	a.catalog = c
	return nil
}

func (a *app) connectFavorites(ctx context.Context) {
	if a.cfg.Redis.Enabled() {
		backend := favorites.NewRedisBackend(a.cfg.Redis.Addr, a.cfg.Redis.Password, a.cfg.Redis.DB)
		if err := backend.Ping(ctx); err != nil {
			a.logger.Error("redis unavailable, storing favorites on disk", "addr", a.cfg.Redis.Addr, "error", err)
			backend.Close()
		} else {
			a.logger.Info("storing favorites in redis", "addr", a.cfg.Redis.Addr, "db", a.cfg.Redis.DB)
			a.favorites = backend
			a.hooks = append(a.hooks, func(context.Context) error { return backend.Close() })
			return
		}
	}
	a.favorites = favorites.NewDiskBackend(a.storage)
}

func (a *app) connectTracking() {
	if a.cfg.RabbitURL == "" {
		return
	}
	trk, err := tracking.NewRabbitTracking(a.cfg.RabbitURL, a.cfg.AppName, a.logger)
	if err != nil {
		a.logger.Error("failed to connect to rabbitmq for tracking", "error", err)
		return
	}
	a.tracker = trk
	a.hooks = append(a.hooks, func(context.Context) error { return trk.Close() })
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.Log).With("app", cfg.AppName)
	slog.SetDefault(logger)

	a := &app{
		cfg:     cfg,
		logger:  logger,
		storage: storage.NewDiskStorage(cfg.DataDir),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := a.loadCatalog(ctx); err != nil {
		cancel()
		logger.Error("failed to load catalog", "error", err)
		os.Exit(1)
	}
	a.connectFavorites(ctx)
	cancel()
	a.connectTracking()

	registry := search.NewRegistry(a.catalog, a.favorites, logger)
	a.hooks = append(a.hooks, registry.StartEviction(cfg.Session.SweepInterval, cfg.Session.IdleTimeout))
	ws := server.NewWebServer(registry, a.tracker, logger, cfg.AllowedOrigins)

	timeouts := common.LoadTimeoutConfig(common.TimeoutConfig{
		ReadHeader: 5 * time.Second,
		Read:       15 * time.Second,
		Write:      30 * time.Second,
		Idle:       60 * time.Second,
		Shutdown:   15 * time.Second,
		Hook:       5 * time.Second,
	})

	debugServer := common.NewServerWithTimeouts(&http.Server{
		Addr:    cfg.DebugAddress,
		Handler: ws.DebugHandler(cfg.EnableProfiling),
	}, timeouts)
	go func() {
		logger.Info("starting debug server", "address", debugServer.Addr)
		if err := debugServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("debug server failed", "error", err)
		}
	}()

	apiServer := common.NewServerWithTimeouts(&http.Server{
		Addr:    cfg.ListenAddress,
		Handler: ws.Router(),
	}, timeouts)

	hooks := append([]common.ShutdownHook{debugServer.Shutdown}, a.hooks...)
	common.RunServerWithShutdown(logger, apiServer, "api", timeouts.Shutdown, timeouts.Hook, hooks...)
}
