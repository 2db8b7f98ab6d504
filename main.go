package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/soria/relaypool/internal/adapter/store"
	"github.com/soria/relaypool/internal/config"
	"github.com/soria/relaypool/internal/core/domain"
	"github.com/soria/relaypool/internal/engine"
	"github.com/soria/relaypool/internal/logger"
	"github.com/soria/relaypool/internal/version"
)

const shutdownGracePeriod = 10 * time.Second

func main() {
	vlog := log.New(log.Writer(), "", 0)
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.PrintVersionInfo(true, vlog)
		os.Exit(0)
	}
	version.PrintVersionInfo(false, vlog)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logInstance, cleanup, err := logger.New(&logger.Config{
		Level:      cfg.Logging.Level,
		LogDir:     cfg.Logging.Directory,
		FileOutput: cfg.Logging.FileOutput,
		MaxSize:    cfg.Logging.MaxSize,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAge:     cfg.Logging.MaxAge,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()
	slog.SetDefault(logInstance)

	logInstance.Info("Initialising", "version", version.Version, "pid", os.Getpid())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logInstance.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	if err := run(ctx, cfg, logInstance); err != nil {
		logger.FatalWithLogger(logInstance, "Fatal error", "error", err)
	}
}

func run(ctx context.Context, cfg *config.Config, logInstance *slog.Logger) error {
	clock := domain.SystemClock{}
	memory := store.NewMemory(clock)

	restored, err := store.RestoreSnapshot(ctx, cfg.Store.SnapshotPath, memory)
	if err != nil {
		logInstance.Warn("Could not restore pool snapshot, starting empty", "error", err)
	} else if restored > 0 {
		logInstance.Info("Restored pool snapshot", "endpoints", restored, "path", cfg.Store.SnapshotPath)
	}

	pool := engine.New(cfg, engine.Options{Store: memory, Clock: clock}, logInstance)
	if err := pool.Start(ctx, cfg.Endpoints); err != nil {
		return err
	}

	// Config file edits re-seed the pool without a restart
	config.Watch(func(next *config.Config) {
		if err := pool.Seed(ctx, next.Endpoints); err != nil {
			logInstance.Warn("Failed to re-seed endpoints after config change", "error", err)
			return
		}
		logInstance.Info("Endpoints re-seeded after config change", "count", len(next.Endpoints))
	})

	snapshotTicker := time.NewTicker(cfg.Store.SnapshotInterval)
	defer snapshotTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return shutdown(cfg, pool, memory, logInstance)
		case <-snapshotTicker.C:
			if err := store.SaveSnapshot(ctx, cfg.Store.SnapshotPath, memory); err != nil {
				logInstance.Warn("Failed to save pool snapshot", "error", err)
			}
			if summary, err := pool.Summary(ctx); err == nil {
				logInstance.Info("Pool summary",
					"total", summary.Total,
					"active", summary.Active,
					"inactive", summary.Inactive,
					"untested", summary.Untested)
			}
		}
	}
}

func shutdown(cfg *config.Config, pool *engine.Engine, memory *store.Memory, logInstance *slog.Logger) error {
	stopCtx, stopCancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
	defer stopCancel()

	if err := pool.Stop(stopCtx); err != nil {
		logInstance.Warn("Monitor did not stop cleanly", "error", err)
	}
	if err := store.SaveSnapshot(stopCtx, cfg.Store.SnapshotPath, memory); err != nil {
		logInstance.Warn("Failed to save final pool snapshot", "error", err)
	}
	logInstance.Info("Shutdown complete")
	return nil
}
