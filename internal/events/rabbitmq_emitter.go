package events

import (
	"encoding/json"
	"fmt"
	"log"

	"kasuwa/pkg/rabbitmq"

	amqp "github.com/streadway/amqp"
)

// Publisher pushes changes somewhere subscribers can see them. The in-memory
// Bus and the RabbitMQ client both satisfy it.
type Publisher interface {
	Publish(change Change)
}

// RabbitPublisher forwards changes onto the RabbitMQ change queue.
type RabbitPublisher struct {
	client *rabbitmq.Client
}

// NewRabbitPublisher wraps a RabbitMQ client as a change Publisher.
func NewRabbitPublisher(client *rabbitmq.Client) *RabbitPublisher {
	return &RabbitPublisher{client: client}
}

// Publish sends the change to the change queue. Delivery failures are logged,
// not surfaced: a missed refresh hint never fails the triggering operation.
func (p *RabbitPublisher) Publish(change Change) {
	if err := p.client.PublishJSON(rabbitmq.ChangeQueue, change); err != nil {
		log.Printf("Warning: failed to publish change event for %s/%s: %v",
			change.EntityType, change.UserID, err)
	}
}

// RabbitEmitter consumes the RabbitMQ change queue and fans deliveries out to
// an in-process Bus, giving subscribers the same interface either way.
type RabbitEmitter struct {
	bus *Bus
}

// NewRabbitEmitter starts consuming the change queue. Subscribers attach
// through Subscribe as with a plain Bus.
func NewRabbitEmitter(client *rabbitmq.Client) (*RabbitEmitter, error) {
	e := &RabbitEmitter{bus: NewBus()}
	err := client.Consume(rabbitmq.ChangeQueue, func(msg amqp.Delivery) error {
		var change Change
		if err := json.Unmarshal(msg.Body, &change); err != nil {
			return fmt.Errorf("malformed change event: %w", err)
		}
		e.bus.Publish(change)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to consume change queue: %w", err)
	}
	return e, nil
}

// Subscribe registers onChange for matching changes.
func (e *RabbitEmitter) Subscribe(entityType, userID string, onChange func(Change)) func() {
	return e.bus.Subscribe(entityType, userID, onChange)
}
