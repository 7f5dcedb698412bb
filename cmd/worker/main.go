// cmd/worker/main.go
//
// AMQP delivery worker: consumes queued invite emails and hands them to the
// SMTP gateway. Failed deliveries are requeued up to three times before the
// row is marked failed for good.
package main

import (
	"encoding/json"
	"log"

	"github.com/joho/godotenv"
	"github.com/streadway/amqp"

	"github.com/mkanyali/assetcomply-backend/internal/config"
	"github.com/mkanyali/assetcomply-backend/internal/db"
	"github.com/mkanyali/assetcomply-backend/internal/logger"
	"github.com/mkanyali/assetcomply-backend/internal/mailer"
	"github.com/mkanyali/assetcomply-backend/internal/model"
	"github.com/mkanyali/assetcomply-backend/internal/queue"
	"github.com/mkanyali/assetcomply-backend/internal/repository"
)

const maxDeliveryRetries = 3

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on OS environment variables")
	}
	cfg := config.Load()

	zlog, err := logger.Init(cfg)
	if err != nil {
		log.Fatal("failed to init logger:", err)
	}
	defer zlog.Sync()
	slog := zlog.Sugar()

	conn, err := db.Open(cfg)
	if err != nil {
		slog.Fatalw("failed to open database", "err", err)
	}
	defer conn.Close()

	outboundRepo := &repository.OutboundEmailRepository{DB: conn}
	gateway := mailer.NewSMTPMailer(cfg, slog.With("component", "mailer"))

	amqpConn, err := amqp.Dial(cfg.AMQPURL)
	if err != nil {
		slog.Fatalw("failed to connect to broker", "err", err)
	}
	defer amqpConn.Close()

	ch, err := amqpConn.Channel()
	if err != nil {
		slog.Fatalw("failed to open channel", "err", err)
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(queue.TopicInviteSends, true, false, false, false, nil)
	if err != nil {
		slog.Fatalw("failed to declare queue", "err", err)
	}

	msgs, err := ch.Consume(q.Name, "", false, false, false, false, nil)
	if err != nil {
		slog.Fatalw("failed to register consumer", "err", err)
	}

	slog.Info("worker running, waiting for messages")
	for d := range msgs {
		var job queue.QueueJob
		if err := json.Unmarshal(d.Body, &job); err != nil {
			slog.Warnw("invalid job payload", "err", err)
			d.Ack(false)
			continue
		}

		if err := deliver(job.OutboundEmailID, outboundRepo, gateway); err != nil {
			slog.Warnw("delivery failed", "id", job.OutboundEmailID, "err", err)
			var retryCount int32
			if v, ok := d.Headers["x-retry-count"].(int32); ok {
				retryCount = v
			}
			if retryCount < maxDeliveryRetries {
				d.Nack(false, true)
				continue
			}
		}
		d.Ack(false)
	}
}

// deliver sends one queued email and records the outcome on its row. Rows
// already marked sent are skipped so a redelivered message cannot
// double-send.
func deliver(id int, outboundRepo repository.OutboundEmailRepositoryInterface, gateway mailer.Gateway) error {
	msg, err := outboundRepo.GetByID(id)
	if err != nil {
		return err
	}
	if msg == nil || msg.Status == model.EmailStatusSent {
		return nil
	}

	result := gateway.SendRendered([]string{msg.Recipient}, msg.Subject, msg.Body)
	if !result.Success {
		_ = outboundRepo.UpdateStatus(id, model.EmailStatusFailed, result.Err.Error())
		return result.Err
	}
	return outboundRepo.UpdateStatus(id, model.EmailStatusSent, "")
}
