package app

import (
	"fmt"

	"github.com/allisson/piiguard/internal/database"
	outboxRepository "github.com/allisson/piiguard/internal/outbox/repository"
	outboxUsecase "github.com/allisson/piiguard/internal/outbox/usecase"
)

// OutboxRepository returns the outbox event store for DB_DRIVER.
func (c *Container) OutboxRepository() (outboxUsecase.OutboxEventRepository, error) {
	return c.outboxRepo.get(func() (outboxUsecase.OutboxEventRepository, error) {
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for outbox repository: %w", err)
		}

		switch c.config.DBDriver {
		case database.DriverMySQL:
			return outboxRepository.NewMySQLOutboxEventRepository(db), nil
		case database.DriverPostgres:
			return outboxRepository.NewPostgreSQLOutboxEventRepository(db), nil
		default:
			return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
}

// OutboxUseCase returns the account event dispatcher run alongside the server.
func (c *Container) OutboxUseCase() (outboxUsecase.UseCase, error) {
	return c.outboxUseCase.get(func() (outboxUsecase.UseCase, error) {
		txManager, err := c.TxManager()
		if err != nil {
			return nil, fmt.Errorf("failed to get tx manager for outbox use case: %w", err)
		}

		outboxRepo, err := c.OutboxRepository()
		if err != nil {
			return nil, fmt.Errorf("failed to get outbox repository for outbox use case: %w", err)
		}

		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for outbox use case: %w", err)
		}

		logger := c.Logger()
		return outboxUsecase.NewOutboxUseCase(
			outboxUsecase.Config{
				Interval:   c.config.OutboxInterval,
				BatchSize:  c.config.OutboxBatchSize,
				MaxRetries: c.config.OutboxMaxRetries,
			},
			txManager,
			outboxRepo,
			outboxUsecase.NewDefaultEventProcessor(logger),
			businessMetrics,
			logger,
		), nil
	})
}
