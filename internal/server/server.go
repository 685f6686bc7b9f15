package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"noorai/internal/app"
	"noorai/internal/auth"
	"noorai/pkg/config"
)

// Run builds the full service, starts the HTTP server and blocks until
// SIGINT/SIGTERM or a listener failure, then shuts down gracefully.
func Run(ctx context.Context, cfg *config.Config) error {
	service, cleanup, err := app.BuildService(ctx, cfg)
	if err != nil {
		return fmt.Errorf("build service: %w", err)
	}
	defer cleanup()

	verifier := auth.NewVerifier(cfg.JWTSecret)
	handler := NewHandler(service, service.Billing())
	router := NewRouter(handler, verifier)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Server.Port, "model", cfg.OpenRouter.Model)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-shutdown:
		slog.Info("starting graceful shutdown", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			if closeErr := srv.Close(); closeErr != nil {
				return fmt.Errorf("could not stop server: shutdown error: %v, close error: %v", err, closeErr)
			}
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}

		slog.Info("server stopped cleanly")
	}

	return nil
}
