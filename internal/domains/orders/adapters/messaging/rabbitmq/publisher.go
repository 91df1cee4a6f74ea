package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/domain"
	"github.com/ahmad8929/bloom-tales-frontend-sub000/internal/domains/orders/ports"
)

var _ ports.EventPublisher = (*Publisher)(nil)

// DefaultExchange is the topic exchange order events are published to.
const DefaultExchange = "orders.events"

// Channel is the subset of *amqp091.Channel the publisher needs.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp091.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
	Close() error
}

// Publisher announces order status changes on a topic exchange.
// Routing keys are orders.status.<to>, so consumers can bind per target status.
type Publisher struct {
	channel  Channel
	exchange string
	logger   *slog.Logger
	closer   func() error
}

// Option configures the publisher.
type Option func(*Publisher)

// WithLogger sets the logger used for publish failures.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithExchange overrides the exchange name.
func WithExchange(exchange string) Option {
	return func(p *Publisher) {
		if exchange != "" {
			p.exchange = exchange
		}
	}
}

// NewPublisher declares the exchange on channel and returns a publisher bound to it.
func NewPublisher(channel Channel, opts ...Option) (*Publisher, error) {
	if channel == nil {
		return nil, fmt.Errorf("rabbitmq channel is nil")
	}
	p := &Publisher{
		channel:  channel,
		exchange: DefaultExchange,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	if err := channel.ExchangeDeclare(p.exchange, amqp091.ExchangeTopic, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange %s: %w", p.exchange, err)
	}
	return p, nil
}

// Dial connects to the broker at url and returns a publisher owning the connection.
func Dial(url string, opts ...Option) (*Publisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open RabbitMQ channel: %w", err)
	}
	p, err := NewPublisher(ch, opts...)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	p.closer = conn.Close
	return p, nil
}

type actorMessage struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

type statusChangedMessage struct {
	Event       string        `json:"event"`
	OrderID     string        `json:"orderId"`
	OrderNumber string        `json:"orderNumber"`
	CustomerID  string        `json:"customerId"`
	From        string        `json:"from,omitempty"`
	To          string        `json:"to"`
	Kind        string        `json:"kind,omitempty"`
	Actor       *actorMessage `json:"actor,omitempty"`
	Note        string        `json:"note,omitempty"`
	Version     int64         `json:"version"`
	Timestamp   time.Time     `json:"timestamp"`
}

// RoutingKey returns the routing key used for event.
func RoutingKey(event domain.StatusChanged) string {
	return "orders.status." + string(event.To)
}

// PublishStatusChanged publishes event as a persistent JSON message.
func (p *Publisher) PublishStatusChanged(ctx context.Context, event domain.StatusChanged) error {
	msg := statusChangedMessage{
		Event:       event.EventName(),
		OrderID:     event.OrderID,
		OrderNumber: event.OrderNumber,
		CustomerID:  event.CustomerID,
		From:        string(event.From),
		To:          string(event.To),
		Kind:        string(event.Kind),
		Note:        event.Note,
		Version:     event.Version,
		Timestamp:   event.OccurredAt().UTC(),
	}
	if event.Actor.ID != "" {
		msg.Actor = &actorMessage{ID: event.Actor.ID, Role: string(event.Actor.Role)}
	}
	body, err := json.Marshal(msg)
	if err != nil {
		p.logger.LogAttrs(ctx, slog.LevelError, "failed to marshal order event",
			slog.String("order_id", event.OrderID), slog.String("error", err.Error()))
		return fmt.Errorf("marshal order event: %w", err)
	}
	key := RoutingKey(event)
	err = p.channel.PublishWithContext(ctx, p.exchange, key, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    fmt.Sprintf("%s:%d", event.OrderID, event.Version),
		Type:         event.EventName(),
		Timestamp:    msg.Timestamp,
		Body:         body,
	})
	if err != nil {
		p.logger.LogAttrs(ctx, slog.LevelWarn, "failed to publish order event",
			slog.String("order_id", event.OrderID),
			slog.String("routing_key", key),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("publish order event: %w", err)
	}
	p.logger.LogAttrs(ctx, slog.LevelDebug, "order event published",
		slog.String("order_id", event.OrderID),
		slog.String("routing_key", key),
	)
	return nil
}

// Close releases the channel and, when the publisher dialled it, the connection.
func (p *Publisher) Close() error {
	err := p.channel.Close()
	if p.closer != nil {
		if cerr := p.closer(); err == nil {
			err = cerr
		}
	}
	return err
}

