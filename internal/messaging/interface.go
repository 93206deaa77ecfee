package messaging

import (
	"context"

	"go.uber.org/zap"
)

// PublisherInterface defines the contract for event publishing
type PublisherInterface interface {
	Publish(ctx context.Context, routingKey string, eventData interface{}) error
	Close() error
}

var (
	_ PublisherInterface = (*Publisher)(nil)
	_ PublisherInterface = NoopPublisher{}
)

// NoopPublisher drops events; used when RABBITMQ_URL is not set.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, interface{}) error { return nil }
func (NoopPublisher) Close() error                                       { return nil }

// PublishBestEffort publishes and logs failures. Events never fail the
// request that produced them.
func PublishBestEffort(ctx context.Context, p PublisherInterface, logger *zap.Logger, routingKey string, event interface{}) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, routingKey, event); err != nil {
		logger.Warn("failed to publish event", zap.String("routing_key", routingKey), zap.Error(err))
	}
}
