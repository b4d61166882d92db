package ports

import (
	"context"

	"github.com/taskstream/taskstream/internal/domain/events"
)

// EventPublisher hands committed-write envelopes to the broker. Publish is
// fire-and-forget: it must not block on broker latency and must not be
// called before the triggering transaction commits. Errors are advisory;
// callers log and continue, the command has already committed.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, env events.Envelope) error
}
