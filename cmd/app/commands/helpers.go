// Package commands implements the CLI actions. Each Run function takes its
// dependencies explicitly so tests can drive it without a container.
package commands

import (
	"context"
	"errors"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"

	"github.com/allisson/piiguard/internal/app"
)

// closeContainer releases the container and logs any failure.
func closeContainer(container *app.Container, logger *slog.Logger) {
	if err := container.Shutdown(context.Background()); err != nil {
		logger.Error("failed to shutdown container", slog.Any("error", err))
	}
}

func closeMigrate(m *migrate.Migrate, logger *slog.Logger) {
	if err := errors.Join(m.Close()); err != nil {
		logger.Error("failed to close migrate", slog.Any("error", err))
	}
}
