package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/SAP-F-2025/exercise-engine/internal/config"
	"github.com/SAP-F-2025/exercise-engine/internal/handlers"
	"github.com/SAP-F-2025/exercise-engine/internal/services"
	"github.com/SAP-F-2025/exercise-engine/internal/utils"
	"github.com/SAP-F-2025/exercise-engine/internal/validator"
	"github.com/SAP-F-2025/exercise-engine/pkg"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the exercise session HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if port, _ := cmd.Flags().GetString("port"); port != "" {
			cfg.Port = port
		}

		logger := utils.NewLogger(cfg.Environment, os.Stdout)
		slogger := utils.ToSlogLogger(logger)
		if cfg.IsProduction() {
			gin.SetMode(gin.ReleaseMode)
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		storage, err := pkg.NewStorage(ctx, cfg, slogger)
		if err != nil {
			return fmt.Errorf("init storage: %w", err)
		}
		defer storage.Close()

		publisher, err := cfg.Events.CreateEventPublisher(slogger)
		if err != nil {
			return fmt.Errorf("init event publisher: %w", err)
		}
		defer publisher.Close()

		reporter := services.NewProgressReporter(storage, publisher, slogger, services.ProgressReporterConfig{
			PersistTimeout: cfg.PersistTimeout,
			EnableDebug:    !cfg.IsProduction(),
		})
		exportService := services.NewResultExportService(storage, slogger)
		manager := handlers.NewHandlerManager(reporter, exportService, validator.New(), logger)

		srv := &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           manager.NewRouter(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("HTTP server listening", "addr", srv.Addr, "storage", cfg.StorageDriver)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-sigCh:
			logger.Info("Received signal, shutting down", "signal", sig.String())
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		case err := <-errCh:
			return err
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("port", "", "HTTP port (overrides PORT)")
}
