// Package pubsub publishes dispatch events to Google Cloud Pub/Sub.
package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub/v2"

	"github.com/tinywideclouds/go-booking-push-service/pkg/dispatch"
)

// topicPublisher is the subset of *pubsub.Publisher we use.
type topicPublisher interface {
	Publish(ctx context.Context, msg *pubsub.Message) *pubsub.PublishResult
}

// Producer implements dispatch.EventPublisher.
type Producer struct {
	topic topicPublisher
}

func NewProducer(topic topicPublisher) *Producer {
	return &Producer{topic: topic}
}

// Publish encodes the event as JSON and blocks until the server acknowledges it.
func (p *Producer) Publish(ctx context.Context, event dispatch.DispatchEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal dispatch event: %w", err)
	}

	result := p.topic.Publish(ctx, &pubsub.Message{
		Data: payload,
		Attributes: map[string]string{
			"type":      event.Type,
			"bookingId": event.BookingID,
		},
	})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("failed to publish dispatch event %s: %w", event.ID, err)
	}
	return nil
}
