package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/1gassner/energy-management-mvp-sub002/internal/config"
	"github.com/1gassner/energy-management-mvp-sub002/internal/handlers"
	"github.com/1gassner/energy-management-mvp-sub002/internal/logger"
	"github.com/1gassner/energy-management-mvp-sub002/internal/notify"
	"github.com/1gassner/energy-management-mvp-sub002/internal/repository"
	"github.com/1gassner/energy-management-mvp-sub002/internal/repository/db"
	"github.com/1gassner/energy-management-mvp-sub002/internal/server"
	"github.com/1gassner/energy-management-mvp-sub002/internal/service"
)

const shutdownGrace = 10 * time.Second

func main() {
	cfg, err := config.Load("configs")
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}
	log := logger.Get(cfg.LogLevel)

	// open store
	conn, err := db.Open(db.Options{
		Driver:       cfg.DB.Driver,
		Path:         cfg.DB.Path,
		DSN:          cfg.DB.DSN,
		MaxOpenConns: cfg.DB.MaxOpenConns,
		MaxIdleConns: cfg.DB.MaxIdleConns,
	})
	if err != nil {
		log.Fatalw("failed to init store", "driver", cfg.DB.Driver, "err", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close store", "err", cerr)
		}
	}()

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// notification fan-out: websocket hub, plus redis when configured
	hub := notify.NewHub(log)
	go hub.Run(ctx)

	sink := buildSink(hub, cfg, log)

	// wire dependencies
	repos := repository.NewRepository(conn, cfg.DB.Driver)
	services := service.NewService(repos, sink, cfg.Engine, log)
	apiHandler := handlers.NewHandler(services, hub, log)

	// scheduled engine passes
	go runScheduler(ctx, cfg.Engine.GenerateInterval, log, "generate", func(c context.Context) error {
		_, err := services.Generator.GenerateForAllBuildings(c)
		return err
	})
	go runScheduler(ctx, cfg.Engine.ResolveInterval, log, "auto_resolve", func(c context.Context) error {
		_, err := services.AutoResolver.AutoResolveAll(c)
		return err
	})

	// start HTTP server
	srv := &server.Server{}
	go func() {
		if err := srv.Run(cfg.Port, apiHandler.InitRoutes()); err != nil {
			log.Infow("http server stopped", "err", err)
		}
	}()

	waitForShutdown(cancel, srv, log)
}

// buildSink composes the configured notification sinks.
func buildSink(hub *notify.Hub, cfg *config.Config, log *logger.Logger) notify.Sink {
	if !cfg.Redis.Enabled {
		return hub
	}
	client := notify.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	log.Infow("redis sink enabled", "addr", cfg.Redis.Addr)
	return notify.MultiSink{hub, notify.NewRedisSink(client, cfg.Redis.ChannelPrefix)}
}

// runScheduler drives one engine pass on a fixed cadence until ctx is
// cancelled. interval <= 0 disables the loop (external trigger only).
func runScheduler(ctx context.Context, interval time.Duration, log *logger.Logger, name string, pass func(context.Context) error) {
	if interval <= 0 {
		log.Infow("scheduler disabled", "pass", name)
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := pass(ctx); err != nil {
				log.Errorw("scheduled pass failed", "pass", name, "err", err)
			}
		}
	}
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
