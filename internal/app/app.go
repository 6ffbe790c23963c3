// Package app contains the shared, reusable logic for starting and stopping the service.
package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const shutdownTimeout = 15 * time.Second

// Service is anything with a blocking Start and a graceful Shutdown.
type Service interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// Run starts the service, waits for an OS signal, a parent context
// cancellation or a server failure, then shuts the service down.
func Run(ctx context.Context, logger *slog.Logger, svc Service) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		logger.Info("Starting API Service...")
		err := svc.Start(ctx)
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("API Service failed", "err", err)
			errChan <- err
		}
		close(errChan)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	var runErr error
	select {
	case sig := <-shutdown:
		logger.Info("Received shutdown signal.", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled, initiating shutdown.")
	case err, ok := <-errChan:
		if ok {
			runErr = err
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	logger.Info("Shutting down API Service...")
	if err := svc.Shutdown(shutdownCtx); err != nil {
		logger.Error("API Service shutdown failed.", "err", err)
		if runErr == nil {
			runErr = err
		}
	}

	// Drain so the Start goroutine has returned.
	for range errChan {
	}
	logger.Info("Shutdown complete.")
	return runErr
}
