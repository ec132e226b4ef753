package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/anorlov/chatwire/internal/blob"
	"github.com/anorlov/chatwire/internal/config"
	"github.com/anorlov/chatwire/internal/core"
	transporthttp "github.com/anorlov/chatwire/internal/transport/http"
)

// App wires together the chat hub, blob store, and HTTP transport.
type App struct {
	server          *stdhttp.Server
	hub             *core.Hub
	shutdownTimeout time.Duration
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	blobs, err := blob.NewFS(cfg.UploadDir)
	if err != nil {
		return nil, fmt.Errorf("init blob store: %w", err)
	}
	logger.Info().Str("upload_dir", cfg.UploadDir).Msg("blob store initialized")

	hub := core.NewHub(blobs, logger, cfg.LogCapacity, cfg.HistoryWindow)
	server := transporthttp.NewServer(hub, blobs, *cfg, logger)

	return &App{
		server:          server,
		hub:             hub,
		shutdownTimeout: cfg.ShutdownTimeout,
		log:             logger,
	}, nil
}

// Run starts the hub and HTTP server and blocks until context cancellation
// or a fatal server error.
func (a *App) Run(ctx context.Context) error {
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go a.hub.Run(hubCtx)

	serverErr := make(chan error, 1)
	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-serverErr
	}
}
