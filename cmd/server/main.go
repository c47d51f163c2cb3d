package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/splice/internal/api"
	"github.com/dgallion1/splice/internal/config"
	"github.com/dgallion1/splice/internal/pathstore"
	"github.com/dgallion1/splice/internal/pipeline"
	"github.com/dgallion1/splice/internal/source"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := config.LoadDotenv(".env"); err != nil {
		log.Error("load .env", "error", err)
		os.Exit(1)
	}
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Remote sources are optional.
	var remote source.Loader
	var ps *pathstore.Client
	if cfg.PathstoreURL != "" {
		ps = pathstore.NewClient(cfg.PathstoreURL, cfg.PathstoreAPIKey)
		remote = pathstore.NewLoader(ps, cfg.PathstorePrefix, pathstore.WithLogger(log))
	}

	// Initialize pipeline.
	stats := pipeline.NewBuildStats(time.Hour)
	worker, err := pipeline.NewWorker(cfg, remote, stats, log)
	if err != nil {
		log.Error("invalid include dirs", "error", err)
		os.Exit(1)
	}
	orch := pipeline.NewOrchestrator(cfg, worker, stats, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		if ps != nil {
			ps.Close()
		}
	}()

	log.Info("starting splice", "port", cfg.Port, "include_dirs", cfg.IncludeDirs, "remote", cfg.PathstoreURL != "")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
