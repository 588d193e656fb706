package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	EventLeadCreated       = "lead.created"
	EventLeadStatusChanged = "lead.status_changed"
	EventLeadReassigned    = "lead.reassigned"
	EventLeadUpdated       = "lead.updated"
)

// LeadEvent is published after every committed lead write. Type doubles as
// the routing key.
type LeadEvent struct {
	EventID    string    `json:"event_id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	ActorID    string    `json:"actor_id,omitempty"`

	LeadID     string `json:"lead_id"`
	ClientName string `json:"client_name"`
	Status     string `json:"status"`
	AssignedTo string `json:"assigned_to"`

	PreviousStatus   string `json:"previous_status,omitempty"`
	PreviousAssignee string `json:"previous_assignee,omitempty"`

	DocNo      string `json:"doc_no,omitempty"`
	Amount     string `json:"amount,omitempty"`
	LostReason string `json:"lost_reason,omitempty"`
	AutoLost   bool   `json:"auto_lost,omitempty"`
}

// Publisher is the slice of *amqp.Channel the producer needs.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type RabbitMQProducer struct {
	Ch Publisher
}

func NewProducer(ch Publisher) *RabbitMQProducer {
	return &RabbitMQProducer{Ch: ch}
}

func (p *RabbitMQProducer) PublishLeadEvent(ctx context.Context, event LeadEvent) error {
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode lead event: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		event.Type,
		false, // Mandatory
		false, // Immediate
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    event.EventID,
			Timestamp:    event.OccurredAt,
			Type:         event.Type,
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}

	return nil
}
