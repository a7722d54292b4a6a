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
	"github.com/vcscsvcscs/dental-console/internal/config"
	"github.com/vcscsvcscs/dental-console/internal/logging"
	"github.com/vcscsvcscs/dental-console/internal/middleware"
	"github.com/vcscsvcscs/dental-console/internal/sandbox"
	"go.uber.org/zap"
)

func main() {
	var configFile, port string

	cmd := &cobra.Command{
		Use:           "sandbox-server",
		Short:         "In-memory clinic backend for local development",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(configFile, port)
		},
	}
	cmd.Flags().StringVar(&configFile, "config", "", "config file (yaml, json or toml)")
	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides PORT)")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "sandbox-server:", err)
		os.Exit(1)
	}
}

func run(configFile, port string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if port != "" {
		cfg.Server.Port = port
	}

	// the server logs requests at info, whatever the console default is
	logCfg := cfg.Logging
	if logCfg.Level == "warn" {
		logCfg.Level = "info"
	}
	logger, err := logging.New(logCfg, cfg.Server.Environment)
	if err != nil {
		return err
	}
	defer logger.Sync()

	logger.Info("Configuration loaded successfully",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
	)

	issuer, err := middleware.NewTokenIssuer([]byte(cfg.Server.TokenKey), "dental-sandbox", cfg.Server.TokenTTL)
	if err != nil {
		return fmt.Errorf("failed to create token issuer: %w", err)
	}

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	store := sandbox.NewSeededStore(time.Now, time.Local)
	router := sandbox.NewServer(store, issuer, logger).Router(cfg.Server.CORSOrigins)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting server",
			zap.String("port", cfg.Server.Port),
			zap.String("admin_login", sandbox.DemoAdminEmail),
			zap.String("doctor_login", sandbox.DemoDoctorEmail),
			zap.String("patient_login", sandbox.DemoPatientEmail),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err, ok := <-serverErr:
		if ok {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-quit:
	}

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
		return err
	}

	logger.Info("Server exited")
	return nil
}
