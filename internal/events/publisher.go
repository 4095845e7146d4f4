package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"calzado-imperial/internal/domain"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
)

const (
	OrderCreatedQueue = "order.created"

	publishTimeout = 3 * time.Second
)

// OrderCreated is the message body published after a checkout
type OrderCreated struct {
	EventType string          `json:"eventType"`
	OrderID   string          `json:"orderId"`
	Email     string          `json:"email"`
	Total     decimal.Decimal `json:"total"`
	Items     []OrderLine     `json:"items"`
	Partial   bool            `json:"partial"`
	Timestamp time.Time       `json:"timestamp"`
}

type OrderLine struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// NewOrderCreated builds the event for a submission
func NewOrderCreated(submission domain.OrderSubmission, now time.Time) OrderCreated {
	ev := OrderCreated{
		EventType: "OrderCreated",
		OrderID:   submission.Order.ID,
		Email:     submission.Order.Email,
		Total:     submission.Order.Total,
		Items:     make([]OrderLine, 0, len(submission.Items)),
		Partial:   submission.Partial,
		Timestamp: now.UTC(),
	}
	for _, it := range submission.Items {
		ev.Items = append(ev.Items, OrderLine{
			ProductID: it.ProductID,
			Name:      it.ProductName,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}
	return ev
}

// channel is the part of *amqp.Channel the publisher needs
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type Publisher struct {
	ch  channel
	now func() time.Time
}

// NewPublisher opens a channel on conn and declares the order queue
func NewPublisher(conn *amqp.Connection) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	// Declare the queue so publish never fails due to missing infra
	if _, err := ch.QueueDeclare(OrderCreatedQueue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare %s: %w", OrderCreatedQueue, err)
	}

	return &Publisher{ch: ch, now: time.Now}, nil
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}

// PublishOrderCreated sends the submission to the order.created queue
func (p *Publisher) PublishOrderCreated(ctx context.Context, submission domain.OrderSubmission) error {
	body, err := json.Marshal(NewOrderCreated(submission, p.now()))
	if err != nil {
		return fmt.Errorf("marshal OrderCreated: %w", err)
	}

	return p.publishJSON(ctx, OrderCreatedQueue, body)
}

func (p *Publisher) publishJSON(ctx context.Context, routingKey string, body []byte) error {
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err := p.ch.PublishWithContext(
		pubCtx,
		"",         // default exchange
		routingKey, // queue name as routing key
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}
	return nil
}
