package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sharevest-expense-ledger/internal/api"
	"github.com/sharevest-expense-ledger/internal/api/service"
	"github.com/sharevest-expense-ledger/internal/config"
	datamongo "github.com/sharevest-expense-ledger/internal/data/mongo"
	datapostgres "github.com/sharevest-expense-ledger/internal/data/postgres"
	"github.com/sharevest-expense-ledger/internal/domain/allocation"
	"github.com/sharevest-expense-ledger/internal/ledger"
	"github.com/sharevest-expense-ledger/internal/logger"
	"github.com/sharevest-expense-ledger/internal/platform/messaging/producers"
	"github.com/sharevest-expense-ledger/internal/platform/persistence"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("ledger_api")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	// Initialize the selected snapshot storage backend
	var (
		snapshotRepo allocation.SnapshotRepository
		closeStorage func(ctx context.Context)
	)
	switch cfg.Storage.Backend {
	case config.StorageBackendPostgres:
		postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
		if err != nil {
			log.Error("Failed to initialize PostgreSQL", "error", err)
			os.Exit(1)
		}
		snapshotRepo = datapostgres.NewSnapshotRepository(log, postgresDB)
		closeStorage = func(ctx context.Context) { postgresDB.Close() }
	case config.StorageBackendMongo:
		mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
		if err != nil {
			log.Error("Failed to initialize MongoDB", "error", err)
			os.Exit(1)
		}
		snapshotRepo = datamongo.NewSnapshotRepository(log, mongoDB.Database())
		closeStorage = func(ctx context.Context) {
			if err := mongoDB.Close(ctx); err != nil {
				log.Error("Error closing MongoDB connection", "error", err)
			}
		}
	default:
		log.Error("Unknown storage backend", "backend", cfg.Storage.Backend)
		os.Exit(1)
	}

	// Initialize the optional ledger event producer
	var eventProducer producers.MessagePublisher
	if cfg.Kafka.Enabled {
		producer, err := producers.NewLedgerEventProducer(appCtx, log, &cfg.Kafka)
		if err != nil {
			log.Error("Failed to initialize ledger event producer", "error", err)
			os.Exit(1)
		}
		eventProducer = producer
	}

	// Initialize the write pipeline and per-owner store registry
	snapshotWriter, err := ledger.NewSnapshotWriter(log, snapshotRepo, eventProducer, &cfg.Writer)
	if err != nil {
		log.Error("Failed to initialize snapshot writer", "error", err)
		os.Exit(1)
	}
	registry := ledger.NewRegistry(log, snapshotRepo, snapshotWriter)

	// Initialize services
	ledgerService := service.NewLedgerService(registry)

	// Initialize REST server
	server := api.NewServer(log, cfg, ledgerService)
	log.Info("REST server initialized")

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Stop accepting requests first
	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	// Drain pending snapshot writes before storage goes away
	snapshotWriter.Close()

	if eventProducer != nil {
		if err = eventProducer.Close(); err != nil {
			log.Error("Error closing ledger event producer", "error", err)
		}
	}

	closeStorage(shutdownCtx)

	// Final status
	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if err != nil {
		log.Error("Server shutdown completed with errors")
	} else {
		log.Info("Server shutdown completed successfully")
	}
}
