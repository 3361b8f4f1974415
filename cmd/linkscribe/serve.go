package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/linkscribe/api-service/internal/adapter/http/router"
	"github.com/linkscribe/api-service/internal/adapter/repository/postgres"
	"github.com/linkscribe/api-service/internal/infrastructure/config"
	"github.com/linkscribe/api-service/internal/infrastructure/database"
	"github.com/linkscribe/api-service/internal/infrastructure/logger"
	"github.com/linkscribe/api-service/internal/infrastructure/metrics"
	"github.com/linkscribe/api-service/internal/usecase"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), flags.configPath)
		},
	}
}

func serve(ctx context.Context, configPath string) error {
	// Load configuration
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	// Set Gin mode
	gin.SetMode(cfg.Server.Mode)

	// Load the classifier before accepting traffic
	m, err := loadModel(&cfg.Model, log)
	if err != nil {
		log.Error("Failed to load model", zap.Error(err))
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	opts := []usecase.LinkUsecaseOption{
		usecase.WithObserver(appMetrics),
		usecase.WithLogger(log.Named("usecase")),
	}

	// Initialize link history (optional)
	var db *gorm.DB
	if cfg.Database.Enabled {
		db, err = database.NewPostgresDB(ctx, &cfg.Database, log)
		if err != nil {
			log.Error("Failed to connect to database", zap.Error(err))
			return err
		}
		defer func() { _ = database.Close(db) }()
		log.Info("Connected to database")

		if err := database.AutoMigrate(db); err != nil {
			log.Error("Failed to run migrations", zap.Error(err))
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info("Database migrations completed")

		opts = append(opts, usecase.WithHistory(postgres.NewLinkRepository(db)))
	} else {
		log.Info("Link history disabled")
	}

	linkUC := usecase.NewLinkUsecase(
		newExtractor(&cfg.Fetch),
		newClassifier(m),
		newPreviewer(&cfg.Preview),
		opts...,
	)

	// Setup router
	r := router.Setup(router.Deps{
		LinkUsecase:    linkUC,
		DB:             db,
		Metrics:        appMetrics,
		Gatherer:       reg,
		Logger:         log,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting server", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		log.Error("Server failed", zap.Error(err))
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
	return nil
}
