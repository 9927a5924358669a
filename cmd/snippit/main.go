package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"snippit/internal/archive"
	"snippit/internal/bot"
	"snippit/internal/config"
	"snippit/internal/httpserver"
	"snippit/internal/library"
	"snippit/internal/seed"
	"snippit/internal/storage"
)

func main() {
	// --- Configuration Loading ---
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// --- Logger Setup ---
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	level, _ := cfg.Level() // validated by LoadConfig
	log.SetLevel(level)

	log.WithFields(logrus.Fields{
		"badgerdb_path":   cfg.BadgerDBPath,
		"archive_fetcher": cfg.ArchiveFetcher,
		"http_enabled":    cfg.HTTPListenAddr != "",
		"bot_enabled":     cfg.TelegramBotToken != "",
	}).Info("Configuration loaded successfully")

	if err := run(cfg, log); err != nil {
		log.WithError(err).Error("Snippit stopped with an error")
		os.Exit(1)
	}
}

func run(cfg config.Config, log *logrus.Logger) error {
	log.Info("Initializing components...")

	// Database
	repo, err := storage.NewBadgerRepository(cfg.BadgerDBPath, log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		log.Info("Closing database...")
		if err := repo.Close(); err != nil {
			log.WithError(err).Error("Error closing database")
		}
	}()

	defaults, err := seed.Defaults()
	if err != nil {
		return err
	}

	// Archival and metadata
	browser := archive.NewBrowserFetcher(cfg.ArchiveTimeout, log)
	var fetcher archive.Fetcher = archive.NewProxyFetcher(cfg.ArchiveProxyURL, cfg.ArchiveTimeout, cfg.ArchiveMaxBytes, log)
	if cfg.ArchiveFetcher == config.FetcherBrowser {
		fetcher = browser
	}

	registry := library.NewRegistry(repo, log, library.Options{
		Fetcher:      fetcher,
		Defaults:     defaults,
		SeedDefaults: cfg.SeedDefaults,
		Notify:       func(msg string) { log.WithField("notice", msg).Debug("User notification") },
	})
	defer registry.Close()

	// --- Application Startup ---
	log.Info("Starting Snippit...")
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)

	if cfg.TelegramBotToken != "" {
		botHandler, err := bot.NewHandler(cfg.TelegramBotToken, bot.NewCommands(registry, browser, log), log)
		if err != nil {
			return fmt.Errorf("failed to initialize Telegram bot handler: %w", err)
		}
		go botHandler.Start(ctx)
	}

	var server *httpserver.Server
	if cfg.HTTPListenAddr != "" {
		server = httpserver.New(cfg.HTTPListenAddr, registry, log)
		go func() {
			if err := server.Start(); err != nil {
				errCh <- fmt.Errorf("http server: %w", err)
			}
		}()
	}

	log.Info("Snippit is running. Press Ctrl+C to exit.")

	// --- Wait for Shutdown Signal ---
	select {
	case <-ctx.Done():
	case err = <-errCh:
	}

	// --- Graceful Shutdown ---
	log.Info("Shutting down Snippit...")
	stop()
	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if stopErr := server.Stop(shutdownCtx); stopErr != nil {
			log.WithError(stopErr).Error("Error stopping HTTP server")
		}
	}
	if err == nil {
		log.Info("Snippit shut down gracefully.")
	}
	return err
}
