package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/marmos91/dittocmis/internal/logger"
	"github.com/marmos91/dittocmis/internal/telemetry"
	"github.com/marmos91/dittocmis/pkg/config"
	"github.com/marmos91/dittocmis/pkg/registry"
	"github.com/marmos91/dittocmis/pkg/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the server",
	Long: `Load the configuration, open the stores, register the repository and
serve the browser binding until interrupted.

The metrics server and the content garbage collector are started alongside
when enabled.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if err := logger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer logger.Sync()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return serve(ctx, cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger.Info("DittoCMIS %s starting", config.Version)

	tracing := cfg.Tracing()
	tracing.ServiceVersion = config.Version
	shutdownTracing, err := telemetry.Setup(ctx, tracing)
	if err != nil {
		return fmt.Errorf("failed to set up tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("Tracing shutdown error: %v", err)
		}
	}()

	var reg *registry.Registry
	m := config.InitializeMetrics(cfg, func(ctx context.Context) error {
		if reg == nil {
			return errors.New("registry not initialized")
		}
		return reg.Healthcheck(ctx)
	})

	reg, err = config.InitializeRegistry(ctx, cfg, m.Repository)
	if err != nil {
		return err
	}
	defer func() {
		if err := reg.Close(); err != nil {
			logger.Error("Error closing stores: %v", err)
		}
	}()

	adapters, err := config.CreateAdapters(cfg, m.HTTP)
	if err != nil {
		return err
	}

	srv := server.New(reg)
	srv.StopTimeout = cfg.Server.ShutdownTimeout
	for _, a := range adapters {
		if err := srv.AddAdapter(a); err != nil {
			return err
		}
	}

	if cfg.GC.Enabled {
		collector, err := config.CreateCollector(cfg, reg)
		if err != nil {
			return err
		}
		collector.Start()
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			_ = collector.Stop(stopCtx)
		}()
	}

	if m.Server != nil {
		go func() {
			if err := m.Server.Start(ctx); err != nil {
				logger.Error("Metrics server error: %v", err)
			}
		}()
	}

	logger.Info("Server is running. Press Ctrl+C to stop.")
	err = srv.Serve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info("Shutdown complete")
	return nil
}
