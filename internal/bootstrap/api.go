package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/yanqian/ragchat/internal/infra/config"
)

// API encapsulates the HTTP server lifecycle.
type API struct {
	cfg    *config.Config
	logger *slog.Logger
	server *http.Server
}

// NewAPI constructs the runnable API app.
func NewAPI(cfg *config.Config, logger *slog.Logger, server *http.Server) *API {
	return &API{cfg: cfg, logger: logger.With("component", "bootstrap.api"), server: server}
}

// Run starts the HTTP server and blocks until ctx is cancelled.
func (a *API) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("http server starting", "address", a.cfg.HTTP.Address)
		if err := a.server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.logger.Info("shutdown signal received")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
