package mockapi

import (
	"context"

	"github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/logger"
)

// EventOrderPlaced is the event type of a successful checkout.
const EventOrderPlaced = "order.placed"

// OrderPublisher announces placed orders to downstream consumers.
type OrderPublisher interface {
	PublishOrderPlaced(ctx context.Context, order *Order) error
}

// NopPublisher discards every event.
type NopPublisher struct{}

// PublishOrderPlaced implements OrderPublisher.
func (NopPublisher) PublishOrderPlaced(context.Context, *Order) error { return nil }

// KafkaOrderPublisher publishes placed orders as kafka events.
type KafkaOrderPublisher struct {
	producer *kafka.Producer
	topic    string
}

// NewKafkaOrderPublisher creates a publisher writing to topic.
func NewKafkaOrderPublisher(producer *kafka.Producer, topic string) *KafkaOrderPublisher {
	return &KafkaOrderPublisher{producer: producer, topic: topic}
}

// PublishOrderPlaced wraps order in an event envelope keyed by the order id.
func (p *KafkaOrderPublisher) PublishOrderPlaced(ctx context.Context, order *Order) error {
	event, err := kafka.NewEvent(ServiceName, EventOrderPlaced, kafka.Aggregate{Type: "order", ID: order.ID}, order)
	if err != nil {
		return err
	}
	event.WithCorrelationID(logger.CorrelationIDFromContext(ctx)).
		WithMetadata("username", order.Username)
	return p.producer.Publish(ctx, p.topic, event)
}
