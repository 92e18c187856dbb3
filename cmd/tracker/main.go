package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/pspuri91/expense-tracker/internal/amqp"
	"github.com/pspuri91/expense-tracker/internal/cache"
	"github.com/pspuri91/expense-tracker/internal/config"
	"github.com/pspuri91/expense-tracker/internal/core"
	apphttp "github.com/pspuri91/expense-tracker/internal/http"
	"github.com/pspuri91/expense-tracker/internal/log"
	"github.com/pspuri91/expense-tracker/internal/services"
	ports "github.com/pspuri91/expense-tracker/internal/sheets"
	gsheet "github.com/pspuri91/expense-tracker/internal/sheets/google"
	mem "github.com/pspuri91/expense-tracker/internal/sheets/memory"
	"github.com/pspuri91/expense-tracker/internal/storage"
)

// defaultBudgets seeds the memory backend with the same categories the
// SQLite migrations seed.
var defaultBudgets = []core.Budget{
	{Category: "Grocery", Budget: 0},
	{Category: "Clothing", Budget: 0},
	{Category: "Transport", Budget: 0},
	{Category: "Utilities", Budget: 0},
	{Category: "Miscellaneous", Budget: 0},
	{Category: "Total", Budget: 0},
}

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	var (
		store   ports.Store
		closers []func() error
	)

	switch cfg.DataBackend {
	case "sheets":
		cli, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", log.FieldError, err, log.FieldBackend, cfg.DataBackend)
			os.Exit(1)
		}
		store = cli
		logger.Info("Initialized Google Sheets backend", log.FieldBackend, cfg.DataBackend)

	case "sqlite":
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath, logger)
		if err != nil {
			logger.Error("Failed to initialize SQLite repository", log.FieldError, err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}

		// The AMQP link feeds the sheet-sync worker. Records stay usable
		// without it; they just wait for the worker's periodic scan.
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("AMQP unavailable, records will sync on the worker's periodic scan", log.FieldError, err)
			amqpClient = nil
		}

		recordService := services.NewRecordService(repo, amqpClient, logger)
		closers = append(closers, recordService.Close)
		store = recordService
		logger.Info("Initialized SQLite backend", log.FieldBackend, cfg.DataBackend, "path", cfg.SQLiteDBPath)

	default:
		store = mem.New(defaultBudgets)
		logger.Info("Initialized memory backend", log.FieldBackend, cfg.DataBackend)
	}

	manager := cache.NewManager(logger)
	lookups := services.NewLookupService(store, logger, manager, cfg.CacheTTL)

	srv := apphttp.NewServer(":"+cfg.Port, store, lookups, manager, cfg.CacheTTL, logger)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	manager.StartCleanup(10 * time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		cancel()
	}()

	logger.Info("Starting tracker server", "port", cfg.Port, log.FieldBackend, cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()

	manager.Stop()
	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			logger.Error("Close error", log.FieldError, err)
		}
	}
	logger.Info("Server stopped gracefully")
}
