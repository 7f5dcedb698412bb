package queue

import (
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// QueueJob is the wire format for one queued delivery.
type QueueJob struct {
	OutboundEmailID int `json:"outbound_email_id"`
}

// AMQPQueue publishes jobs to a durable RabbitMQ queue. Consumption happens
// in cmd/worker, not through Subscribe; the server side only publishes.
type AMQPQueue struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	Log  *zap.SugaredLogger
}

func NewAMQPQueue(url string, log *zap.SugaredLogger) (*AMQPQueue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(TopicInviteSends, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}
	return &AMQPQueue{conn: conn, ch: ch, Log: log}, nil
}

func (q *AMQPQueue) Publish(topic string, payload any) error {
	id, ok := payload.(int)
	if !ok {
		return fmt.Errorf("unsupported payload type %T", payload)
	}
	body, err := json.Marshal(QueueJob{OutboundEmailID: id})
	if err != nil {
		return err
	}
	return q.ch.Publish("", topic, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}

// Subscribe is not supported on the publisher side; the worker binary owns
// consumption with its own ack and retry handling.
func (q *AMQPQueue) Subscribe(topic string, handler func(payload any) error) error {
	return fmt.Errorf("amqp queue does not support in-process subscribers; run cmd/worker")
}

func (q *AMQPQueue) Close() {
	if q.ch != nil {
		q.ch.Close()
	}
	if q.conn != nil {
		q.conn.Close()
	}
}

var _ Queue = (*AMQPQueue)(nil)
