// Package repository persists outbox events for PostgreSQL and MySQL.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/allisson/piiguard/internal/database"
	apperrors "github.com/allisson/piiguard/internal/errors"
	"github.com/allisson/piiguard/internal/outbox/domain"
)

type dialect struct {
	// bind renders the n-th (1-based) placeholder.
	bind func(n int) string
	id   func(uuid.UUID) (any, error)
	now  string
}

// OutboxEventRepository stores outbox events in the caller's transaction when one
// is present in the context.
type OutboxEventRepository struct {
	db      *sql.DB
	dialect dialect
}

// NewPostgreSQLOutboxEventRepository stores ids in native UUID columns.
func NewPostgreSQLOutboxEventRepository(db *sql.DB) *OutboxEventRepository {
	return &OutboxEventRepository{db: db, dialect: dialect{
		bind: func(n int) string { return fmt.Sprintf("$%d", n) },
		id:   func(id uuid.UUID) (any, error) { return id, nil },
		now:  "NOW()",
	}}
}

// NewMySQLOutboxEventRepository stores ids as BINARY(16).
func NewMySQLOutboxEventRepository(db *sql.DB) *OutboxEventRepository {
	return &OutboxEventRepository{db: db, dialect: dialect{
		bind: func(int) string { return "?" },
		id:   func(id uuid.UUID) (any, error) { return id.MarshalBinary() },
		now:  "NOW(6)",
	}}
}

// Create inserts event as given.
func (r *OutboxEventRepository) Create(ctx context.Context, event *domain.OutboxEvent) error {
	id, err := r.dialect.id(event.ID)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal outbox event id")
	}

	b, now := r.dialect.bind, r.dialect.now
	query := fmt.Sprintf(`INSERT INTO outbox_events
		(id, event_type, payload, status, retries, last_error, processed_at, created_at, updated_at)
		VALUES (%s, %s, %s, %s, %s, %s, %s, %s, %s)`,
		b(1), b(2), b(3), b(4), b(5), b(6), b(7), now, now)

	_, err = database.GetTx(ctx, r.db).ExecContext(ctx, query,
		id, event.EventType, event.Payload, string(event.Status), event.Retries, event.LastError, event.ProcessedAt)
	return apperrors.Wrap(err, "failed to create outbox event")
}

// GetPendingEvents locks and returns up to limit pending events, oldest first. Rows
// locked by another processor are skipped, so it must run inside a transaction.
func (r *OutboxEventRepository) GetPendingEvents(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	query := fmt.Sprintf(`SELECT id, event_type, payload, status, retries, last_error, processed_at, created_at, updated_at
		FROM outbox_events WHERE status = %s
		ORDER BY created_at ASC, id ASC LIMIT %s FOR UPDATE SKIP LOCKED`,
		r.dialect.bind(1), r.dialect.bind(2))

	rows, err := database.GetTx(ctx, r.db).QueryContext(ctx, query, string(domain.OutboxEventStatusPending), limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to get pending outbox events")
	}
	defer rows.Close() //nolint:errcheck

	var events []*domain.OutboxEvent
	for rows.Next() {
		// uuid.UUID scans both the PostgreSQL text form and MySQL BINARY(16).
		var event domain.OutboxEvent
		if err := rows.Scan(&event.ID, &event.EventType, &event.Payload, &event.Status, &event.Retries,
			&event.LastError, &event.ProcessedAt, &event.CreatedAt, &event.UpdatedAt); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan outbox event")
		}
		events = append(events, &event)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate outbox events")
	}
	return events, nil
}

// Update rewrites the delivery state of event. Updating an unknown id is a no-op.
func (r *OutboxEventRepository) Update(ctx context.Context, event *domain.OutboxEvent) error {
	id, err := r.dialect.id(event.ID)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal outbox event id")
	}

	b := r.dialect.bind
	query := fmt.Sprintf(`UPDATE outbox_events
		SET status = %s, retries = %s, last_error = %s, processed_at = %s, updated_at = %s
		WHERE id = %s`,
		b(1), b(2), b(3), b(4), r.dialect.now, b(5))

	_, err = database.GetTx(ctx, r.db).ExecContext(ctx, query,
		string(event.Status), event.Retries, event.LastError, event.ProcessedAt, id)
	return apperrors.Wrap(err, "failed to update outbox event")
}
