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

	"github.com/coachscout/coachscout/api"
	"github.com/coachscout/coachscout/cache"
	"github.com/coachscout/coachscout/config"
	"github.com/coachscout/coachscout/extract"
	"github.com/coachscout/coachscout/orchestrator"
	"github.com/coachscout/coachscout/runner"
	"github.com/coachscout/coachscout/store"
	"github.com/coachscout/coachscout/strategy"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("coachscout starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"db", cfg.Store.Path,
	)

	// ── 3. Open the store ───────────────────────────────────────────
	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		slog.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	// ── 4. Build the extraction pipeline ────────────────────────────
	extractor := extract.NewExtractor()
	pages := cache.New(cfg.Cache.MaxEntries, cfg.Cache.MaxAge)

	// ── 5. Build strategies ──────────────────────────────────────────
	// The browser launches lazily on first use, so startup stays cheap
	// when every target is served by remote extraction.
	remote := strategy.NewRemoteStrategy(cfg.Remote, extractor, pages)
	delay := strategy.NewDelayPolicy(cfg.Scraper.HumanDelayBase, cfg.Scraper.HumanDelayJitter)
	browser := strategy.NewBrowserStrategy(cfg.Browser, cfg.Scraper, extractor, delay)
	defer browser.Close()

	// ── 6. Wire orchestrator and runner ──────────────────────────────
	orch := orchestrator.New(cfg.Orchestrator, remote, browser, st)
	run := runner.New(cfg, st, orch)

	// ── 7. Setup router ──────────────────────────────────────────────
	startTime := time.Now()
	router := api.NewRouter(run, st, browser, cfg, startTime)

	// ── 8. Start HTTP server ─────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 9. Graceful shutdown ─────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// Give in-flight requests 5 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	// browser.Close() and st.Close() run via defer.
	slog.Info("coachscout stopped")
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
