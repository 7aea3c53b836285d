package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "myblog/docs"
	"myblog/internal/config"
	"myblog/internal/handlers"
	"myblog/internal/logger"
	"myblog/internal/repository"
	"myblog/internal/repository/boltstore"
	"myblog/internal/repository/db"
	"myblog/internal/server"
	"myblog/internal/service"
	"myblog/internal/storage"
)

const shutdownTimeout = 10 * time.Second

// @title        Blog
// @version      1.0
// @description  Server-rendered blog with posts, image uploads and cookie sessions.
// @BasePath     /
func main() {
	// bootstrap logger until config is loaded
	log := logger.Get(logger.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalw("error loading config", "err", err)
	}
	log = logger.New(cfg.Log)
	defer func() { _ = log.Sync() }()

	repos, closeStore, err := openStore(cfg.Store)
	if err != nil {
		log.Fatalw("failed to open store", "driver", cfg.Store.Driver, "err", err)
	}
	defer func() {
		if cerr := closeStore(); cerr != nil {
			log.Errorw("failed to close store", "err", cerr)
		}
	}()

	uploads, err := storage.NewFileSink(cfg.Uploads.Dir, cfg.Uploads.MaxBytes)
	if err != nil {
		log.Fatalw("failed to prepare upload dir", "dir", cfg.Uploads.Dir, "err", err)
	}

	// wire dependencies
	services := service.NewService(repos, uploads, service.Options{
		SecretKey:  []byte(cfg.Auth.SecretKey),
		SessionTTL: cfg.Auth.SessionTTL,
	}, log)
	apiHandler := handlers.NewHandler(services, handlers.Config{
		RequireSession: cfg.Auth.RequireSession,
		CookieSecure:   cfg.Auth.CookieSecure,
		SessionTTL:     cfg.Auth.SessionTTL,
	}, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go services.Janitor.Run(ctx, cfg.Auth.JanitorInterval)

	srv := &server.Server{}
	runHTTPServer(srv, cfg.HTTP, apiHandler, log)
	log.Infow("server started", "port", cfg.HTTP.Port, "driver", cfg.Store.Driver)

	waitForShutdown(cancel, srv, log)
}

// openStore opens the configured backend and returns its repositories and closer.
func openStore(cfg config.StoreConfig) (*repository.Repository, func() error, error) {
	switch cfg.Driver {
	case config.DriverBolt:
		bdb, err := boltstore.Open(cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		return boltstore.NewRepository(bdb), bdb.Close, nil
	case config.DriverSQLite:
		sdb, err := db.InitDB(cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewRepository(sdb), sdb.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: got %q", config.ErrUnknownDriver, cfg.Driver)
	}
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, cfg config.HTTPConfig, handler *handlers.Handler, log *logger.Logger) {
	opts := server.Options{
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
	go func() {
		if err := srv.Run(cfg.Port, handler.InitRoutes(), opts); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
