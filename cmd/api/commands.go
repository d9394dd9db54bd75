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

	"todoapi/internal/app"
	"todoapi/internal/config"
	"todoapi/internal/logging"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "api",
		Short:         "Todo API server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (yaml, toml or .env); environment overrides it")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withConfig(configPath, func(cfg config.Config, logger *log.Logger) error {
				return serve(cmd.Context(), cfg, logger)
			})
		},
	}
	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withConfig(configPath, func(cfg config.Config, logger *log.Logger) error {
				return app.Migrate(cmd.Context(), cfg, logger)
			})
		},
	}
	importCmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import todos from the first sheet of an xlsx file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConfig(configPath, func(cfg config.Config, logger *log.Logger) error {
				return importFile(cmd, cfg, logger, args[0])
			})
		},
	}

	root.AddCommand(serve, migrate, importCmd)
	// bare invocation serves, as before subcommands existed
	root.RunE = serve.RunE
	return root
}

func withConfig(path string, fn func(config.Config, *log.Logger) error) error {
	cfg, err := config.Load(path)
	if err != nil {
		log.Error("config", "err", err)
		return fmt.Errorf("config: %w", err)
	}
	logger := logging.New(cfg.App, cfg.Log)
	if err := fn(cfg, logger); err != nil {
		logger.Error("command failed", "err", err)
		return err
	}
	return nil
}

func serve(ctx context.Context, cfg config.Config, logger *log.Logger) error {
	logger.Info("config loaded, connecting to store", "driver", cfg.Store.Driver)
	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("app init: %w", err)
	}
	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.HTTP.Port,
		Handler:      application.Router(),
		ReadTimeout:  cfg.HTTP.ReadTimeout.Duration(),
		WriteTimeout: cfg.HTTP.WriteTimeout.Duration(),
		IdleTimeout:  cfg.HTTP.IdleTimeout.Duration(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
	case err := <-errCh:
		_ = application.Close(context.Background())
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return application.Close(shutdownCtx)
}

func importFile(cmd *cobra.Command, cfg config.Config, logger *log.Logger, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	application, err := app.New(cmd.Context(), cfg, logger)
	if err != nil {
		return fmt.Errorf("app init: %w", err)
	}
	defer application.Close(context.Background())

	n, err := application.Service().Import(cmd.Context(), f)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d todos\n", n)
	return nil
}
