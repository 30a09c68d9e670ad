package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/hordewave/internal/config"
	"github.com/udisondev/hordewave/internal/db"
	"github.com/udisondev/hordewave/internal/difficulty"
	"github.com/udisondev/hordewave/internal/feed"
	"github.com/udisondev/hordewave/internal/spawn"
	"github.com/udisondev/hordewave/internal/wave"
)

const ConfigPath = "config/hordewave.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load config FIRST to determine log level
	cfgPath := ConfigPath
	if p := os.Getenv("HORDEWAVE_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadServer(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config %s: %w", cfgPath, err)
	}

	slog.Info("hordewave starting",
		"log_level", cfg.LogLevel,
		"catalog_source", cfg.Catalog.Source,
		"wave_duration", cfg.Wave.DurationSeconds)

	var database *db.DB
	if cfg.NeedsDatabase() {
		database, err = db.New(ctx, cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()
		slog.Info("database connected")

		if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		slog.Info("database migrations applied")
	}

	var store catalogStore
	if database != nil {
		store = database.Catalog()
	}
	cat, err := loadCatalog(ctx, cfg.Catalog, store)
	if err != nil {
		return err
	}
	slog.Info("monster catalog loaded",
		"monsters", cat.Len(),
		"types", cat.Types(),
		"fingerprint", cat.Fingerprint())

	g, gctx := errgroup.WithContext(ctx)

	// Spawn journal
	var recorder spawn.Recorder
	if cfg.Spawn.Journal {
		journal := spawn.NewJournalWriter(database.Journal(),
			cfg.Spawn.JournalFlushInterval,
			cfg.Spawn.JournalQueueSize,
			cfg.Spawn.JournalBatchSize)
		recorder = journal

		g.Go(func() error {
			if err := journal.Start(gctx); err != nil && gctx.Err() == nil {
				return fmt.Errorf("spawn journal writer: %w", err)
			}
			return nil
		})
	}

	policy, err := spawn.ParsePositionPolicy(cfg.Spawn.PositionPolicy)
	if err != nil {
		return fmt.Errorf("spawn config: %w", err)
	}
	positions := spawn.NewPoints(policy, cfg.Spawn.Points)
	if positions.Len() == 0 {
		slog.Warn("no spawn points configured, monsters will spawn at origin")
	}

	spawnMgr := spawn.NewManager(recorder)

	rearm, err := wave.ParseRearmPolicy(cfg.Wave.Rearm)
	if err != nil {
		return fmt.Errorf("wave config: %w", err)
	}

	events := wave.NewEvents()
	sched := wave.NewScheduler(wave.Deps{
		Catalog:   cat,
		Curve:     difficulty.NewCurve(cfg.Difficulty),
		Executor:  spawnMgr,
		Positions: positions,
		Events:    events,
	}, wave.Options{
		WaveDurationSeconds: cfg.Wave.DurationSeconds,
		MaxSpawnsPerTick:    cfg.Wave.MaxSpawnsPerTick,
		Rearm:               rearm,
		SpawnOnStart:        cfg.Wave.SpawnOnStart,
	})

	driver := wave.NewDriver(sched, wave.DriverOptions{
		TickInterval: cfg.Wave.TickInterval,
		MaxDelta:     cfg.Wave.MaxDelta,
		SwapOnWave:   cfg.Wave.SwapOnWave,
		AutoStart:    cfg.Wave.AutoStart,
	})

	g.Go(func() error {
		slog.Info("starting wave driver", "tick", cfg.Wave.TickInterval)
		if err := driver.Start(gctx); err != nil && gctx.Err() == nil {
			return fmt.Errorf("wave driver: %w", err)
		}
		return nil
	})

	if cfg.Feed.Enabled {
		hub := feed.NewHub()
		detach := hub.Attach(events)
		defer detach()

		feedSrv := feed.NewServer(hub, driver, feed.Options{
			Addr:          cfg.Feed.Addr(),
			Path:          cfg.Feed.Path,
			SendQueueSize: cfg.Feed.SendQueueSize,
			WriteTimeout:  cfg.Feed.WriteTimeout,
		})

		g.Go(func() error {
			slog.Info("starting feed server", "address", cfg.Feed.Addr())
			if err := feedSrv.Run(gctx); err != nil {
				return fmt.Errorf("feed server: %w", err)
			}
			return nil
		})
	}

	// Wait for all components to finish
	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("hordewave stopped",
		"spawned", spawnMgr.TotalSpawned(),
		"degraded", spawnMgr.DegradedSpawned(),
		"alive", spawnMgr.Count())

	return nil
}

// parseLogLevel converts string log level to slog.Level.
// Defaults to Info if invalid or empty.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
