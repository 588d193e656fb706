package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Notifier turns a lead event into a message for a human.
type Notifier interface {
	NotifyLeadEvent(ctx context.Context, event LeadEvent) error
}

// Consumer is the slice of *amqp.Channel the worker needs.
type Consumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

type Worker struct {
	Channel  Consumer
	Notifier Notifier
	Logger   *zap.Logger
}

func NewWorker(ch Consumer, notifier Notifier, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{Channel: ch, Notifier: notifier, Logger: logger}
}

// Start consumes queueName until ctx is done or the channel closes.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.Consume(
		queueName,
		"lead-notifier",
		false, // auto-ack (manual é mais seguro)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	w.Logger.Info("notification worker waiting", zap.String("queue", queueName))

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			w.handle(ctx, d)
		}
	}
}

func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	var event LeadEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		w.Logger.Error("invalid lead event body", zap.Error(err))
		// Mensagem malformada vai pra DLQ sem requeue
		_ = d.Nack(false, false)
		return
	}

	log := w.Logger.With(zap.String("event_id", event.EventID), zap.String("type", event.Type), zap.String("lead_id", event.LeadID))

	if !ShouldNotify(event) {
		log.Debug("lead event needs no notification")
		_ = d.Ack(false)
		return
	}

	if err := w.Notifier.NotifyLeadEvent(ctx, event); err != nil {
		// Uma retentativa; na segunda falha vai pra DLQ
		requeue := !d.Redelivered
		log.Warn("lead notification failed", zap.Bool("requeue", requeue), zap.Error(err))
		_ = d.Nack(false, requeue)
		return
	}

	log.Info("lead notification sent")
	_ = d.Ack(false)
}

// ShouldNotify picks the events worth an email: new leads, reassignments
// and closures.
func ShouldNotify(event LeadEvent) bool {
	switch event.Type {
	case EventLeadCreated, EventLeadReassigned:
		return true
	case EventLeadStatusChanged:
		return event.Status == "Won" || event.Status == "Lost"
	default:
		return false
	}
}
