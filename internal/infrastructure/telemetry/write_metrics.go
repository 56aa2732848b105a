package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Outcome labels for remote writes
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// WriteMetrics counts remote writes by collection, operation and outcome.
// A nil *WriteMetrics records nothing.
type WriteMetrics struct {
	writes    metric.Int64Counter
	rollbacks metric.Int64Counter
}

// NewWriteMetrics creates the counters on the given meter, or on the global
// meter provider when m is nil.
func NewWriteMetrics(m metric.Meter) (*WriteMetrics, error) {
	if m == nil {
		m = otel.GetMeterProvider().Meter(TracerName)
	}
	writes, err := m.Int64Counter("store.remote_writes",
		metric.WithDescription("Remote writes dispatched by the domain stores"),
		metric.WithUnit("{write}"),
	)
	if err != nil {
		return nil, err
	}
	rollbacks, err := m.Int64Counter("store.rollbacks",
		metric.WithDescription("Optimistic changes reverted after a failed remote write"),
		metric.WithUnit("{rollback}"),
	)
	if err != nil {
		return nil, err
	}
	return &WriteMetrics{writes: writes, rollbacks: rollbacks}, nil
}

// RecordWrite counts one remote write
func (w *WriteMetrics) RecordWrite(ctx context.Context, collection, op string, err error) {
	if w == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	w.writes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("collection", collection),
		attribute.String("operation", op),
		attribute.String("outcome", outcome),
	))
}

// RecordRollback counts one reverted optimistic change
func (w *WriteMetrics) RecordRollback(ctx context.Context, collection, op string) {
	if w == nil {
		return
	}
	w.rollbacks.Add(ctx, 1, metric.WithAttributes(
		attribute.String("collection", collection),
		attribute.String("operation", op),
	))
}
