package queue

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mkanyali/assetcomply-backend/internal/mailer"
	"github.com/mkanyali/assetcomply-backend/internal/model"
	"github.com/mkanyali/assetcomply-backend/internal/repository"
)

// TopicInviteSends carries outbound email ids awaiting delivery.
const TopicInviteSends = "invite_sends"

// Queue interface
type Queue interface {
	Publish(topic string, payload any) error
	Subscribe(topic string, handler func(payload any) error) error
}

// InMemoryQueue is an in-process queue with retry, used for tests and
// single-binary deployments; cmd/worker swaps it for AMQP.
type InMemoryQueue struct {
	mu       sync.Mutex
	handlers map[string][]func(payload any) error
	Log      *zap.SugaredLogger
}

func NewInMemoryQueue(log *zap.SugaredLogger) *InMemoryQueue {
	return &InMemoryQueue{
		handlers: make(map[string][]func(payload any) error),
		Log:      log,
	}
}

// jobPayload wraps a message payload with retry info
type jobPayload struct {
	Payload    any
	RetryCount int
	MaxRetries int
}

// Publish sends a message to all subscribers
func (q *InMemoryQueue) Publish(topic string, payload any) error {
	q.mu.Lock()
	handlers := q.handlers[topic]
	q.mu.Unlock()

	if len(handlers) == 0 {
		return fmt.Errorf("no subscribers for topic %s", topic)
	}

	job := jobPayload{Payload: payload, MaxRetries: 3}
	for _, handler := range handlers {
		go q.processJob(topic, handler, job)
	}
	return nil
}

// processJob handles retries with backoff
func (q *InMemoryQueue) processJob(topic string, handler func(payload any) error, job jobPayload) {
	for job.RetryCount <= job.MaxRetries {
		err := handler(job.Payload)
		if err == nil {
			return // ACK
		}

		job.RetryCount++
		q.Log.Warnw("job failed", "topic", topic, "attempt", job.RetryCount, "max", job.MaxRetries, "err", err)

		if job.RetryCount > job.MaxRetries {
			q.Log.Errorw("job permanently failed", "topic", topic, "payload", job.Payload)
			return // no requeue
		}

		time.Sleep(time.Duration(job.RetryCount*500) * time.Millisecond)
	}
}

// Subscribe adds a handler for a topic
func (q *InMemoryQueue) Subscribe(topic string, handler func(payload any) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.handlers[topic] = append(q.handlers[topic], handler)
	return nil
}

// StartInviteSendSubscriber wires invite-email delivery onto the queue: it
// loads the queued row, hands it to the gateway, and records the outcome.
// A send failure returns an error so the queue retries.
func StartInviteSendSubscriber(q Queue, outboundRepo repository.OutboundEmailRepositoryInterface, gateway mailer.Gateway, log *zap.SugaredLogger) {
	err := q.Subscribe(TopicInviteSends, func(payload any) error {
		msgID, ok := payload.(int)
		if !ok {
			log.Warnw("invalid payload type, expected int", "payload", payload)
			return nil // no retry
		}

		msg, err := outboundRepo.GetByID(msgID)
		if err != nil {
			return err
		}
		if msg == nil {
			log.Warnw("outbound email not found", "id", msgID)
			return nil // no retry
		}
		if msg.Status == model.EmailStatusSent {
			return nil // already delivered by an earlier attempt
		}

		result := gateway.SendRendered([]string{msg.Recipient}, msg.Subject, msg.Body)
		if !result.Success {
			_ = outboundRepo.UpdateStatus(msgID, model.EmailStatusFailed, result.Err.Error())
			return result.Err // triggers retry
		}

		if err := outboundRepo.UpdateStatus(msgID, model.EmailStatusSent, ""); err != nil {
			return err
		}
		log.Infow("invite delivered", "id", msgID, "recipient", msg.Recipient)
		return nil
	})
	if err != nil {
		log.Errorw("failed to start invite subscriber", "err", err)
	}
}
