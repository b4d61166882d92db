package queue

import (
	"context"

	"github.com/taskstream/taskstream/internal/application/ports"
	"github.com/taskstream/taskstream/internal/domain/events"
)

// NoopPublisher discards events when Redis is not configured.
type NoopPublisher struct{}

func NewNoopPublisher() *NoopPublisher {
	return &NoopPublisher{}
}

func (NoopPublisher) Publish(ctx context.Context, routingKey string, env events.Envelope) error {
	return nil
}

var _ ports.EventPublisher = (*NoopPublisher)(nil)
