package app

import (
	"fmt"

	"github.com/allisson/piiguard/internal/database"
	userHTTP "github.com/allisson/piiguard/internal/user/http"
	userRepository "github.com/allisson/piiguard/internal/user/repository"
	userUsecase "github.com/allisson/piiguard/internal/user/usecase"
)

// UserRepository returns the user repository for DB_DRIVER. It serves both the
// account operations and the legacy data migration.
func (c *Container) UserRepository() (*userRepository.UserRepository, error) {
	return c.userRepo.get(func() (*userRepository.UserRepository, error) {
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for user repository: %w", err)
		}

		protector, err := c.Protector()
		if err != nil {
			return nil, fmt.Errorf("failed to get protector for user repository: %w", err)
		}

		switch c.config.DBDriver {
		case database.DriverMySQL:
			return userRepository.NewMySQLUserRepository(db, protector), nil
		case database.DriverPostgres:
			return userRepository.NewPostgreSQLUserRepository(db, protector), nil
		default:
			return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
}

// UserUseCase returns the account use case, decorated with metrics when enabled.
func (c *Container) UserUseCase() (userUsecase.UseCase, error) {
	return c.userUseCase.get(func() (userUsecase.UseCase, error) {
		txManager, err := c.TxManager()
		if err != nil {
			return nil, fmt.Errorf("failed to get tx manager for user use case: %w", err)
		}

		userRepo, err := c.UserRepository()
		if err != nil {
			return nil, fmt.Errorf("failed to get user repository for user use case: %w", err)
		}

		outboxRepo, err := c.OutboxRepository()
		if err != nil {
			return nil, fmt.Errorf("failed to get outbox repository for user use case: %w", err)
		}

		protector, err := c.Protector()
		if err != nil {
			return nil, fmt.Errorf("failed to get protector for user use case: %w", err)
		}

		useCase, err := userUsecase.NewUserUseCase(txManager, userRepo, outboxRepo, protector)
		if err != nil {
			return nil, fmt.Errorf("failed to create user use case: %w", err)
		}
		if !c.config.MetricsEnabled {
			return useCase, nil
		}

		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for user use case: %w", err)
		}
		return userUsecase.NewUserUseCaseWithMetrics(useCase, businessMetrics), nil
	})
}

// LegacyUseCase returns the use case behind encrypt-legacy-data.
func (c *Container) LegacyUseCase() (userUsecase.LegacyUseCase, error) {
	return c.legacyUseCase.get(func() (userUsecase.LegacyUseCase, error) {
		userRepo, err := c.UserRepository()
		if err != nil {
			return nil, fmt.Errorf("failed to get user repository for legacy use case: %w", err)
		}

		protector, err := c.Protector()
		if err != nil {
			return nil, fmt.Errorf("failed to get protector for legacy use case: %w", err)
		}

		return userUsecase.NewLegacyEncryptionUseCase(userRepo, protector, c.Logger()), nil
	})
}

// UserHandler returns the gin handler for the /v1/users routes.
func (c *Container) UserHandler() (*userHTTP.UserHandler, error) {
	return c.userHandler.get(func() (*userHTTP.UserHandler, error) {
		useCase, err := c.UserUseCase()
		if err != nil {
			return nil, fmt.Errorf("failed to get user use case for user handler: %w", err)
		}
		return userHTTP.NewUserHandler(useCase, c.Logger()), nil
	})
}
