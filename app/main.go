package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/deal-comb/app/api"
	"github.com/lysyi3m/deal-comb/app/cfg"
	"github.com/lysyi3m/deal-comb/app/config"
	"github.com/lysyi3m/deal-comb/app/database"
	"github.com/lysyi3m/deal-comb/app/dedup"
	"github.com/lysyi3m/deal-comb/app/emit"
	"github.com/lysyi3m/deal-comb/app/fetch"
	"github.com/lysyi3m/deal-comb/app/sources"
	"github.com/lysyi3m/deal-comb/app/tasks"
)

// Exit codes: 0 completed, 1 configuration failure, 2 unrecoverable
// runtime failure (dedup store unavailable).
const (
	exitOK      = 0
	exitConfig  = 1
	exitRuntime = 2
)

const metricsFile = "metrics.json"

func main() {
	os.Exit(run())
}

func run() int {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return exitConfig
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return exitOK
	}

	setupLogger(appCfg.Debug)

	slog.Info("Starting Deal Comb", "version", appCfg.Version)

	// Load and resolve the sources configuration
	loader := config.NewLoader(appCfg.ConfigPath)
	sourcesCfg, err := loader.Load()
	if err != nil {
		slog.Error("Configuration error", "error", err)
		return exitConfig
	}

	registry, err := sources.Resolve(sourcesCfg)
	if err != nil {
		slog.Error("Configuration error", "error", err)
		return exitConfig
	}
	slog.Info("Sources resolved", "count", registry.Count())

	// Dedup entry store
	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open dedup store", "error", err)
		return exitRuntime
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to migrate dedup store", "error", err)
		return exitRuntime
	}
	slog.Info("Dedup store ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	entryRepo := database.NewEntryRepository(db)
	sourceRepo := database.NewSourceRepository(db)

	// Register configured sources, keeping scheduling state for known ones
	for _, src := range registry.All() {
		if err := sourceRepo.UpsertSource(src.Name); err != nil {
			slog.Error("Failed to register source", "source", src.Name, "error", err)
			return exitRuntime
		}
	}

	// Core pipeline components
	client := fetch.NewClient(time.Duration(appCfg.FetchTimeout)*time.Second, appCfg.UserAgent)
	fetchers := []fetch.Fetcher{
		fetch.NewRSSFetcher(client),
		fetch.NewHTMLFetcher(client),
		fetch.NewRedditFetcher(client),
	}

	engine := dedup.NewEngine(entryRepo, registry.GlobalMinHot)
	emitter := buildEmitter(appCfg, registry)

	scheduler := tasks.NewScheduler(registry, fetchers, engine, emitter, sourceRepo)

	if appCfg.Once {
		return runOnce(scheduler, emitter, sourcesCfg)
	}

	return runDaemon(appCfg, scheduler, entryRepo, sourceRepo, registry)
}

// runOnce executes a single scheduling pass, writes the run report, posts
// the digest, and exits. Per-source runtime errors are isolated and do
// not affect the exit code.
func runOnce(scheduler tasks.TaskSchedulerInterface, emitter emit.Emitter, sourcesCfg *config.Config) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := scheduler.RunPass(ctx)
	if err != nil {
		slog.Error("Scheduling pass interrupted", "error", err)
	}

	if err := report.WriteFile(metricsFile); err != nil {
		slog.Error("Failed to write metrics file", "path", metricsFile, "error", err)
	}

	defaultColor, _ := sourcesCfg.ColorFor("")
	if err := emitter.EmitRunSummary(ctx, report.Snapshot(), defaultColor); err != nil {
		slog.Error("Failed to emit run summary", "error", err)
	}

	slog.Info("Run completed", "scraped", report.Snapshot().TotalScraped,
		"fresh", report.FreshCount(), "errors", report.ErrorCount())

	return exitOK
}

// runDaemon starts the background scheduler and the HTTP surface, then
// waits for a shutdown signal.
func runDaemon(appCfg *cfg.Cfg, scheduler tasks.TaskSchedulerInterface,
	entryRepo database.EntryRepository, sourceRepo database.SourceRepository,
	registry *sources.Registry) int {

	slog.Info("Starting background scheduler", "workers", appCfg.WorkerCount, "interval", appCfg.SchedulerInterval)
	scheduler.Start()
	defer scheduler.Stop()

	apiHandler := api.NewHandler(entryRepo, sourceRepo, registry, scheduler)
	server := api.NewServer(apiHandler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	slog.Info("Deal Comb started successfully")

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Scheduler is stopped via defer
	return exitOK
}

// buildEmitter picks the delivery path: dry-run and webhook-less setups
// both run the full pipeline with suppressed notifications.
func buildEmitter(appCfg *cfg.Cfg, registry *sources.Registry) emit.Emitter {
	if appCfg.DryRun {
		slog.Info("Dry run mode, notifications suppressed")
		return emit.NewNoopEmitter()
	}
	if len(appCfg.Webhooks) == 0 {
		slog.Warn("DISCORD_WEBHOOKS not set, notifications suppressed")
		return emit.NewNoopEmitter()
	}
	return emit.NewDiscordEmitter(appCfg.Webhooks, registry.GlobalMinHot)
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
