// Package ingest moves telemetry readings from producers to a sink: the
// in-process telemetry service, the HTTP API of a running server, or an
// MQTT broker mirror.
package ingest

import (
	"context"

	"home_energy/internal/models"
)

// Submitter accepts one reading on behalf of sess.
type Submitter interface {
	Submit(ctx context.Context, sess models.Session, r models.TelemetryReading) error
}

// SubmitFunc adapts a function to Submitter.
type SubmitFunc func(ctx context.Context, sess models.Session, r models.TelemetryReading) error

func (f SubmitFunc) Submit(ctx context.Context, sess models.Session, r models.TelemetryReading) error {
	return f(ctx, sess, r)
}

// Publisher mirrors stored readings to an external bus.
type Publisher interface {
	Publish(ctx context.Context, r models.TelemetryReading) error
}
