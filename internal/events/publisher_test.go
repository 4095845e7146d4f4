package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"calzado-imperial/internal/domain"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingChannel struct {
	key      string
	msg      amqp.Publishing
	deadline bool
	err      error
}

func (c *recordingChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	c.key = key
	c.msg = msg
	_, c.deadline = ctx.Deadline()
	return c.err
}

func (c *recordingChannel) Close() error { return nil }

func sampleSubmission() domain.OrderSubmission {
	return domain.OrderSubmission{
		Order: domain.Order{ID: "order-1", Email: "ana@example.pe", Total: decimal.NewFromInt(1240)},
		Items: []domain.OrderItem{
			{ID: "i1", OrderID: "order-1", ProductID: "1", ProductName: "Air Max 90", Price: decimal.NewFromInt(480), Quantity: 2},
			{ID: "i2", OrderID: "order-1", ProductID: "8", ProductName: "Stan Smith", Price: decimal.NewFromInt(280), Quantity: 1},
		},
	}
}

func TestPublisher_PublishOrderCreated(t *testing.T) {
	ch := &recordingChannel{}
	now := time.Date(2026, 10, 14, 15, 30, 0, 0, time.FixedZone("PET", -5*3600))
	p := &Publisher{ch: ch, now: func() time.Time { return now }}

	require.NoError(t, p.PublishOrderCreated(context.Background(), sampleSubmission()))

	assert.Equal(t, OrderCreatedQueue, ch.key)
	assert.Equal(t, "application/json", ch.msg.ContentType)
	assert.Equal(t, amqp.Persistent, ch.msg.DeliveryMode)
	assert.True(t, ch.deadline, "publish must be bounded by a timeout")

	var ev OrderCreated
	require.NoError(t, json.Unmarshal(ch.msg.Body, &ev))
	assert.Equal(t, "OrderCreated", ev.EventType)
	assert.Equal(t, "order-1", ev.OrderID)
	assert.True(t, ev.Total.Equal(decimal.NewFromInt(1240)))
	require.Len(t, ev.Items, 2)
	assert.Equal(t, "Stan Smith", ev.Items[1].Name)
	assert.True(t, now.Equal(ev.Timestamp))
}

func TestPublisher_PublishFailureIsWrapped(t *testing.T) {
	ch := &recordingChannel{err: errors.New("channel closed")}
	p := &Publisher{ch: ch, now: time.Now}

	err := p.PublishOrderCreated(context.Background(), sampleSubmission())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish order.created")
}

func TestNewOrderCreated_PartialSubmissionHasNoLines(t *testing.T) {
	submission := sampleSubmission()
	submission.Items = []domain.OrderItem{}
	submission.Partial = true

	ev := NewOrderCreated(submission, time.Now())
	assert.True(t, ev.Partial)
	assert.NotNil(t, ev.Items)
	assert.Empty(t, ev.Items)
}
