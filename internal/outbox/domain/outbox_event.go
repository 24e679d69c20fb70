// Package domain defines the core outbox domain entities and types.
package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// OutboxEventStatus represents the status of an outbox event
type OutboxEventStatus string

const (
	OutboxEventStatusPending   OutboxEventStatus = "pending"
	OutboxEventStatusProcessed OutboxEventStatus = "processed"
	OutboxEventStatusFailed    OutboxEventStatus = "failed"
)

// Account event types.
const (
	EventTypeUserRegistered  = "user.registered"
	EventTypeUserDeactivated = "user.deactivated"
)

// OutboxEvent represents an event in the transactional outbox pattern
type OutboxEvent struct {
	ID          uuid.UUID
	EventType   string
	Payload     string
	Status      OutboxEventStatus
	Retries     int
	LastError   *string
	ProcessedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AccountPayload is the body of account events. It never carries a sensitive
// attribute, its digest or its token.
type AccountPayload struct {
	UserID   uuid.UUID `json:"user_id"`
	Role     string    `json:"role"`
	IsActive bool      `json:"is_active"`
}

// NewAccountEvent builds a pending event of eventType with payload as its body.
func NewAccountEvent(eventType string, payload AccountPayload) (*OutboxEvent, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &OutboxEvent{
		ID:        uuid.Must(uuid.NewV7()),
		EventType: eventType,
		Payload:   string(body),
		Status:    OutboxEventStatusPending,
	}, nil
}

// DecodeAccountPayload decodes the body of an account event. Unknown fields are
// rejected, so a payload carrying anything beyond AccountPayload is never delivered.
func (e *OutboxEvent) DecodeAccountPayload() (AccountPayload, error) {
	var payload AccountPayload
	dec := json.NewDecoder(strings.NewReader(e.Payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&payload); err != nil {
		return AccountPayload{}, err
	}
	return payload, nil
}

// MarkProcessed records a successful delivery at now.
func (e *OutboxEvent) MarkProcessed(now time.Time) {
	e.Status = OutboxEventStatusProcessed
	e.ProcessedAt = &now
}

// MarkAttemptFailed counts a failed delivery. The event stays pending until
// maxRetries attempts have failed.
func (e *OutboxEvent) MarkAttemptFailed(err error, maxRetries int) {
	e.Retries++
	msg := err.Error()
	e.LastError = &msg
	if e.Retries >= maxRetries {
		e.Status = OutboxEventStatusFailed
	}
}
