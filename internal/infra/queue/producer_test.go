package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedPublish struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakePublisher struct {
	published []recordedPublish
	err       error
}

func (f *fakePublisher) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, recordedPublish{exchange: exchange, key: key, msg: msg})
	return nil
}

func TestPublishLeadEventRoutesByType(t *testing.T) {
	pub := &fakePublisher{}
	producer := NewProducer(pub)
	occurred := time.Date(2024, 5, 10, 14, 30, 0, 0, time.UTC)

	err := producer.PublishLeadEvent(context.Background(), LeadEvent{
		Type:           EventLeadStatusChanged,
		OccurredAt:     occurred,
		LeadID:         "l1",
		Status:         "Won",
		PreviousStatus: "Negotiation",
		Amount:         "2500",
	})
	require.NoError(t, err)
	require.Len(t, pub.published, 1)

	got := pub.published[0]
	assert.Equal(t, ExchangeName, got.exchange)
	assert.Equal(t, "lead.status_changed", got.key)
	assert.Equal(t, amqp.Persistent, got.msg.DeliveryMode)
	assert.Equal(t, "application/json", got.msg.ContentType)
	assert.NotEmpty(t, got.msg.MessageId)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(got.msg.Body, &body))
	assert.Equal(t, got.msg.MessageId, body["event_id"])
	assert.Equal(t, "Won", body["status"])
	assert.Equal(t, "Negotiation", body["previous_status"])
	assert.Equal(t, "2500", body["amount"])
	assert.NotContains(t, body, "lost_reason")
}

func TestPublishLeadEventKeepsGivenID(t *testing.T) {
	pub := &fakePublisher{}

	require.NoError(t, NewProducer(pub).PublishLeadEvent(context.Background(), LeadEvent{EventID: "evt-1", Type: EventLeadCreated}))
	assert.Equal(t, "evt-1", pub.published[0].msg.MessageId)
	assert.False(t, pub.published[0].msg.Timestamp.IsZero())
}

func TestPublishLeadEventWrapsChannelError(t *testing.T) {
	closed := errors.New("channel/connection is not open")
	pub := &fakePublisher{err: closed}

	err := NewProducer(pub).PublishLeadEvent(context.Background(), LeadEvent{Type: EventLeadUpdated})
	assert.ErrorIs(t, err, closed)
}
