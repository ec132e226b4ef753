package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/anorlov/chatwire/internal/app"
	"github.com/anorlov/chatwire/internal/config"
	"github.com/anorlov/chatwire/internal/log"
)

var (
	cfgFile   string
	addr      string
	logLevel  string
	uploadDir string
)

var rootCmd = &cobra.Command{
	Use:   "chatwire-server",
	Short: "Real-time chat relay server",
	Long:  "chatwire-server relays broadcast, private, and file messages between connected clients over WebSocket.",
	RunE:  run,
}

func init() {
	rootCmd.Flags().StringVar(&cfgFile, "config", "", "path to config file")
	rootCmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.Flags().StringVar(&uploadDir, "upload-dir", "", "directory for uploaded files")
}

func run(cmd *cobra.Command, _ []string) error {
	logger := log.New(logLevel)

	cfg, path, err := config.Load(logger, cfgFile)
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Addr = addr
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if uploadDir != "" {
		cfg.UploadDir = uploadDir
	}
	logger = log.New(cfg.LogLevel)
	logger.Info().Str("config", path).Str("addr", cfg.Addr).Msg("starting chatwire server")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(&cfg, logger)
	if err != nil {
		return err
	}
	if err := application.Run(ctx); err != nil {
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
