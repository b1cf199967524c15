package services

import (
	"log"

	"kasuwa/pkg/rabbitmq"
)

// Notifier delivers back-office notifications (new orders, invoice
// decisions, custom request submissions). Failures are logged and swallowed:
// a lost notification never fails the shopper's operation.
type Notifier interface {
	NotifyAdmin(event string, payload map[string]interface{})
}

// RabbitNotifier publishes admin notifications to the RabbitMQ
// notification queue.
type RabbitNotifier struct {
	client *rabbitmq.Client
}

// NewRabbitNotifier creates a RabbitNotifier.
func NewRabbitNotifier(client *rabbitmq.Client) *RabbitNotifier {
	return &RabbitNotifier{client: client}
}

// NotifyAdmin publishes the event to the notification queue.
func (n *RabbitNotifier) NotifyAdmin(event string, payload map[string]interface{}) {
	message := map[string]interface{}{"event": event}
	for k, v := range payload {
		message[k] = v
	}
	if err := n.client.PublishJSON(rabbitmq.NotificationQueue, message); err != nil {
		log.Printf("Warning: failed to publish %s notification: %v", event, err)
	}
}

// LogNotifier writes notifications to the process log. Used when no broker
// is configured.
type LogNotifier struct{}

// NotifyAdmin logs the event.
func (LogNotifier) NotifyAdmin(event string, payload map[string]interface{}) {
	log.Printf("Admin notification %s: %v", event, payload)
}
