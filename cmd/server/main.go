package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/bookreader/internal/api"
	"github.com/dgallion1/bookreader/internal/catalog"
	"github.com/dgallion1/bookreader/internal/config"
	"github.com/dgallion1/bookreader/internal/content"
	"github.com/dgallion1/bookreader/internal/library"
	"github.com/dgallion1/bookreader/internal/synopsis"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize clients.
	cat := catalog.NewClient(cfg.GutendexURL, cfg.FetchTimeout)
	fetcher := content.NewFetcher(cfg.FetchTimeout, cfg.MaxDocumentBytes)

	lib := library.NewStore(cfg.CacheTTL)
	lib.Start(ctx)

	deps := api.Deps{
		Catalog: cat,
		Fetcher: fetcher,
		Library: lib,
	}
	var claude *synopsis.Client
	if cfg.SynopsisEnabled() {
		claude = synopsis.NewClient(cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.AnthropicBaseURL)
		deps.Synopsis = claude
		deps.Stats = claude.Stats
		deps.Model = claude.Model()
	} else {
		log.Warn("ANTHROPIC_API_KEY not set, synopsis generation disabled")
	}

	srv := api.NewServer(deps, log, cfg)

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

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		lib.Stop()
		cat.Close()
		fetcher.Close()
		if claude != nil {
			claude.Close()
		}
	}()

	log.Info("starting bookreader", "port", cfg.Port, "gutendex", cfg.GutendexURL, "synopsis", cfg.SynopsisEnabled())
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
