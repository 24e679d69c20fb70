package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Status label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
	// StatusLegacy marks a sensitive attribute that was read back as unencrypted data.
	StatusLegacy = "legacy"
)

// StatusOf returns StatusError when err is non-nil and StatusSuccess otherwise.
func StatusOf(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusSuccess
}

// BusinessMetrics records operations of the users, pii and outbox domains. Labels are
// the domain, an operation name ("user_register", "passport_number_seal",
// "user.registered") and a status. Attribute values never become labels.
type BusinessMetrics interface {
	RecordOperation(ctx context.Context, domain, operation, status string)
	RecordDuration(ctx context.Context, domain, operation string, duration time.Duration, status string)
}

type businessMetrics struct {
	instruments
}

// NewBusinessMetrics registers <namespace>_operations_total and
// <namespace>_operation_duration_seconds on meterProvider.
func NewBusinessMetrics(meterProvider metric.MeterProvider, namespace string) (BusinessMetrics, error) {
	inst, err := newInstruments(meterProvider.Meter(namespace), instrumentNames{
		count:        namespace + "_operations_total",
		countHelp:    "Business operations by domain, operation and status",
		countUnit:    "{operation}",
		duration:     namespace + "_operation_duration_seconds",
		durationHelp: "Business operation latency in seconds",
	})
	if err != nil {
		return nil, err
	}
	return &businessMetrics{instruments: inst}, nil
}

func (b *businessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	b.count.Add(ctx, 1, operationAttributes(domain, operation, status))
}

func (b *businessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	b.duration.Record(ctx, duration.Seconds(), operationAttributes(domain, operation, status))
}

func operationAttributes(domain, operation, status string) metric.MeasurementOption {
	return metric.WithAttributes(
		attribute.String("domain", domain),
		attribute.String("operation", operation),
		attribute.String("status", status),
	)
}

// NewNoOpBusinessMetrics returns a BusinessMetrics that drops every measurement. It is
// used when metrics are disabled.
func NewNoOpBusinessMetrics() BusinessMetrics {
	return noopBusinessMetrics{}
}

type noopBusinessMetrics struct{}

func (noopBusinessMetrics) RecordOperation(context.Context, string, string, string) {}

func (noopBusinessMetrics) RecordDuration(context.Context, string, string, time.Duration, string) {}
