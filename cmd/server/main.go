// Package main is the entry point for the video-sharing server.
//
// MAIN PACKAGE IN GO:
// The main package should be kept minimal. Its job is to:
// 1. Read configuration (environment, optional .env)
// 2. Create dependencies (logger, store, provider client)
// 3. Start the application
//
// All actual logic lives in imported packages (internal/server, internal/handler, etc.).
//
// COMMANDS (github.com/spf13/cobra):
//
//	videoshare serve     run the HTTP server (default when no command is given)
//	videoshare migrate   apply database migrations and exit
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sakif/video-share/internal/config"
	"github.com/sakif/video-share/internal/logging"
	"github.com/sakif/video-share/internal/server"
	"github.com/sakif/video-share/internal/youtube"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// cobra has already printed the error.
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "videoshare",
		Short:        "Share YouTube videos and get notified when others do",
		SilenceUsage: true,
		RunE:         runServe,
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API and realtime stream",
			RunE:  runServe,
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply database migrations and exit",
			RunE:  runMigrate,
		},
	)
	return root
}

// setup loads config and builds the logger. The closer flushes the log file.
func setup() (*config.Config, *slog.Logger, io.Closer, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	logger, closer, err := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})
	if err != nil {
		return nil, nil, nil, err
	}
	slog.SetDefault(logger)
	return cfg, logger, closer, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, closer, err := setup()
	if err != nil {
		return err
	}
	defer closer.Close()

	// Ctrl+C / SIGTERM cancel ctx; Start then shuts down gracefully.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := server.OpenStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("opening %s store: %w", cfg.DBDriver, err)
	}
	if err := server.Migrate(ctx, store); err != nil {
		store.Close()
		return fmt.Errorf("migrating: %w", err)
	}

	provider := youtube.NewClient(youtube.Config{
		BaseURL:     cfg.YouTubeBaseURL,
		APIKey:      cfg.YouTubeAPIKey,
		AccessToken: cfg.YouTubeAccessToken,
		Timeout:     cfg.YouTubeTimeout,
	}, logger)

	srv, err := server.New(cfg, logger, store, provider)
	if err != nil {
		store.Close()
		return fmt.Errorf("creating server: %w", err)
	}

	// Start blocks until ctx is cancelled, and closes the store on return.
	return srv.Start(ctx)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, logger, closer, err := setup()
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx := cmd.Context()

	store, err := server.OpenStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("opening %s store: %w", cfg.DBDriver, err)
	}
	defer store.Close()

	if err := server.Migrate(ctx, store); err != nil {
		return fmt.Errorf("migrating: %w", err)
	}
	logger.Info("migrations applied", slog.String("db_driver", cfg.DBDriver))
	return nil
}
