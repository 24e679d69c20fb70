// Package usecase delivers account events written to the outbox by the user use case.
package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/allisson/piiguard/internal/database"
	apperrors "github.com/allisson/piiguard/internal/errors"
	"github.com/allisson/piiguard/internal/metrics"
	"github.com/allisson/piiguard/internal/outbox/domain"
)

const metricsDomain = "outbox"

// Config holds outbox use case configuration
type Config struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
}

// OutboxEventRepository defines outbox event repository operations
type OutboxEventRepository interface {
	Create(ctx context.Context, event *domain.OutboxEvent) error
	GetPendingEvents(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	Update(ctx context.Context, event *domain.OutboxEvent) error
}

// EventProcessor defines the interface for processing different event types
type EventProcessor interface {
	Process(ctx context.Context, event *domain.OutboxEvent) error
}

// UseCase defines the interface for outbox use cases
type UseCase interface {
	Start(ctx context.Context) error
	ProcessEvents(ctx context.Context) error
}

// OutboxUseCase polls pending events and hands them to an EventProcessor.
type OutboxUseCase struct {
	config         Config
	txManager      database.TxManager
	outboxRepo     OutboxEventRepository
	eventProcessor EventProcessor
	metrics        metrics.BusinessMetrics
	logger         *slog.Logger
}

// NewOutboxUseCase creates a new OutboxUseCase. A nil BusinessMetrics disables metrics
// and a nil logger discards logs.
func NewOutboxUseCase(
	config Config,
	txManager database.TxManager,
	outboxRepo OutboxEventRepository,
	eventProcessor EventProcessor,
	businessMetrics metrics.BusinessMetrics,
	logger *slog.Logger,
) *OutboxUseCase {
	if businessMetrics == nil {
		businessMetrics = metrics.NewNoOpBusinessMetrics()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &OutboxUseCase{
		config:         config,
		txManager:      txManager,
		outboxRepo:     outboxRepo,
		eventProcessor: eventProcessor,
		metrics:        businessMetrics,
		logger:         logger,
	}
}

// Start runs ProcessEvents every Interval until ctx is cancelled. A failed batch is
// logged and retried on the next tick.
func (uc *OutboxUseCase) Start(ctx context.Context) error {
	uc.logger.Info("starting outbox event processor",
		slog.Duration("interval", uc.config.Interval),
		slog.Int("batch_size", uc.config.BatchSize),
		slog.Int("max_retries", uc.config.MaxRetries),
	)

	ticker := time.NewTicker(uc.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			uc.logger.Info("stopping outbox event processor")
			return ctx.Err()
		case <-ticker.C:
			if err := uc.ProcessEvents(ctx); err != nil {
				uc.logger.Error("failed to process outbox batch", slog.Any("error", err))
			}
		}
	}
}

// ProcessEvents claims up to BatchSize pending events and delivers them in one
// transaction. Only a repository failure aborts the batch.
func (uc *OutboxUseCase) ProcessEvents(ctx context.Context) error {
	return uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		events, err := uc.outboxRepo.GetPendingEvents(ctx, uc.config.BatchSize)
		if err != nil {
			return err
		}

		for _, event := range events {
			uc.deliver(ctx, event)
			if err := uc.outboxRepo.Update(ctx, event); err != nil {
				return err
			}
		}
		return nil
	})
}

// deliver hands event to the processor and moves it to its next state.
func (uc *OutboxUseCase) deliver(ctx context.Context, event *domain.OutboxEvent) {
	start := time.Now()
	err := uc.eventProcessor.Process(ctx, event)

	status := metrics.StatusOf(err)
	uc.metrics.RecordOperation(ctx, metricsDomain, event.EventType, status)
	uc.metrics.RecordDuration(ctx, metricsDomain, event.EventType, time.Since(start), status)

	if err != nil {
		event.MarkAttemptFailed(err, uc.config.MaxRetries)
		uc.logger.ErrorContext(ctx, "failed to deliver outbox event",
			slog.String("event_id", event.ID.String()),
			slog.String("event_type", event.EventType),
			slog.Int("retries", event.Retries),
			slog.String("status", string(event.Status)),
			slog.Any("error", err),
		)
		return
	}

	event.MarkProcessed(time.Now().UTC())
}

// DefaultEventProcessor logs account events. It is the delivery end of the outbox
// until a broker is configured.
type DefaultEventProcessor struct {
	logger *slog.Logger
}

// NewDefaultEventProcessor creates a new DefaultEventProcessor.
func NewDefaultEventProcessor(logger *slog.Logger) *DefaultEventProcessor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &DefaultEventProcessor{logger: logger}
}

// Process logs account events. A payload that does not decode strictly as
// domain.AccountPayload fails the attempt. Unknown event types are acknowledged.
func (p *DefaultEventProcessor) Process(ctx context.Context, event *domain.OutboxEvent) error {
	switch event.EventType {
	case domain.EventTypeUserRegistered, domain.EventTypeUserDeactivated:
		payload, err := event.DecodeAccountPayload()
		if err != nil {
			return apperrors.Wrap(err, "failed to decode account event")
		}
		p.logger.InfoContext(ctx, "account event",
			slog.String("event_type", event.EventType),
			slog.String("user_id", payload.UserID.String()),
			slog.String("role", payload.Role),
			slog.Bool("is_active", payload.IsActive),
		)
	default:
		p.logger.WarnContext(ctx, "acknowledging unknown outbox event type",
			slog.String("event_type", event.EventType),
		)
	}
	return nil
}
