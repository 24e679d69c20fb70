package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/allisson/piiguard/internal/app"
	"github.com/allisson/piiguard/internal/config"
	"github.com/allisson/piiguard/internal/http"
)

const shutdownTimeout = 30 * time.Second

// RunServer starts the API server, the metrics server (when enabled) and the outbox
// processor, and blocks until SIGINT/SIGTERM or until one of them fails. The encryption
// key is resolved before anything listens, so a missing or invalid key stops startup.
func RunServer(ctx context.Context, version string) error {
	cfg := config.Load()

	container := app.NewContainer(cfg)

	logger := container.Logger()
	logger.Info("starting server",
		slog.String("version", version),
		slog.String("env", cfg.AppEnv),
	)

	defer closeContainer(container, logger)

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if _, err := container.KeyProvider().Key(ctx); err != nil {
		return fmt.Errorf("failed to load encryption key: %w", err)
	}

	server, err := container.HTTPServer(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize HTTP server: %w", err)
	}

	outboxUseCase, err := container.OutboxUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize outbox processor: %w", err)
	}

	var metricsServer *http.MetricsServer
	if cfg.MetricsEnabled {
		metricsServer, err = container.MetricsServer()
		if err != nil {
			return fmt.Errorf("failed to initialize metrics server: %w", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := server.Start(gctx); err != nil {
			return fmt.Errorf("api server error: %w", err)
		}
		return nil
	})

	if metricsServer != nil {
		g.Go(func() error {
			if err := metricsServer.Start(gctx); err != nil {
				return fmt.Errorf("metrics server error: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		if err := outboxUseCase.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("outbox processor error: %w", err)
		}
		return nil
	})

	// Stops the listeners once a signal arrives or any goroutine above fails.
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		var shutdownErrors []error
		if err := server.Shutdown(shutdownCtx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("api server shutdown: %w", err))
		}
		if metricsServer != nil {
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
			}
		}
		return errors.Join(shutdownErrors...)
	})

	return g.Wait()
}
