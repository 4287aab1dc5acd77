// internal/notifier/queue.go
package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"renovation-matching/internal/models"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher is implemented by broker.Publisher.
type Publisher interface {
	Publish(ctx context.Context, body []byte, headers amqp.Table) error
}

// QueueNotifier hands notify requests to a message queue for delivery by a
// downstream consumer.
type QueueNotifier struct {
	pub Publisher
}

func NewQueueNotifier(pub Publisher) *QueueNotifier {
	return &QueueNotifier{pub: pub}
}

func (n *QueueNotifier) Channel() string { return ChannelAMQP }

func (n *QueueNotifier) Notify(ctx context.Context, req models.NotifyRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode notify request: %w", err)
	}
	headers := amqp.Table{
		"type":      req.Type,
		"projectId": req.ProjectID,
		"companyId": req.CompanyID,
	}
	if err := n.pub.Publish(ctx, body, headers); err != nil {
		return fmt.Errorf("publish notification for %s: %w", req.CompanyID, err)
	}
	return nil
}
