package messaging

import "context"

// Publisher delivers an encoded envelope. messageID must stay stable across retries.
type Publisher interface {
	PublishEvent(ctx context.Context, routingKey, messageID string, body []byte) error
}

type NoopPublisher struct{}

func (NoopPublisher) PublishEvent(ctx context.Context, routingKey, messageID string, body []byte) error {
	return nil
}
