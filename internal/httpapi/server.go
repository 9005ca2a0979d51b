package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/KugaChihiro/vr-queue/internal/config"
	"github.com/KugaChihiro/vr-queue/internal/logger"
)

// Serve runs handler on cfg.Port until ctx ends, then shuts down gracefully
// within cfg.ShutdownTimeout.
func Serve(ctx context.Context, cfg config.ServerConfig, handler http.Handler, log logger.Logger) error {
	srv := &http.Server{
		Addr:         net.JoinHostPort("", cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "HTTP server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
	defer cancel()

	log.Info(ctx, "HTTP server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
