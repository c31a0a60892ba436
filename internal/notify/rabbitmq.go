package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dejobratic/cafepos/internal/orders/domain"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	DefaultExchange     = "orders"
	RoutingKeySubmitted = "order.submitted"
)

// ErrNack is returned when the broker refuses a published message.
var ErrNack = errors.New("publish nack from broker")

// StatusRoutingKey names the routing key announcing that an order reached status.
func StatusRoutingKey(status domain.OrderStatus) string {
	return "order.status." + string(status)
}

// Event is the JSON body of every published message.
type Event struct {
	Type       string        `json:"type"`
	OccurredAt time.Time     `json:"occurred_at"`
	Order      domain.Record `json:"order"`
}

func newEvent(eventType string, order *domain.Order, at time.Time) Event {
	return Event{Type: eventType, OccurredAt: at, Order: order.ToRecord()}
}

// RabbitMQPublisher publishes order events to a durable topic exchange and waits
// for publisher confirms. Publishes are serialized so confirms match messages.
type RabbitMQPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	acks     <-chan amqp.Confirmation
	exchange string

	mu sync.Mutex
}

// DialRabbitMQ connects to url, declares the exchange and enables confirms.
func DialRabbitMQ(url, exchange string) (*RabbitMQPublisher, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("enable publisher confirms: %w", err)
	}
	acks := ch.NotifyPublish(make(chan amqp.Confirmation, 1))

	return &RabbitMQPublisher{conn: conn, ch: ch, acks: acks, exchange: exchange}, nil
}

func (p *RabbitMQPublisher) PublishOrderSubmitted(ctx context.Context, order *domain.Order) error {
	return p.publish(ctx, RoutingKeySubmitted, newEvent(RoutingKeySubmitted, order, time.Now().UTC()))
}

func (p *RabbitMQPublisher) PublishOrderStatusChanged(ctx context.Context, order *domain.Order) error {
	key := StatusRoutingKey(order.Status())
	return p.publish(ctx, key, newEvent(key, order, time.Now().UTC()))
}

func (p *RabbitMQPublisher) publish(ctx context.Context, key string, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.PublishWithContext(ctx, p.exchange, key, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Timestamp:    event.OccurredAt,
		Type:         event.Type,
		MessageId:    event.Order.ID,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", key, err)
	}

	select {
	case conf, ok := <-p.acks:
		if !ok {
			return fmt.Errorf("publish %s: confirm channel closed", key)
		}
		if !conf.Ack {
			return fmt.Errorf("publish %s: %w", key, ErrNack)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Ping reports whether the broker connection is still open.
func (p *RabbitMQPublisher) Ping() error {
	if p.conn == nil || p.conn.IsClosed() {
		return errors.New("rabbitmq connection is closed")
	}
	return nil
}

func (p *RabbitMQPublisher) Close() error {
	return errors.Join(p.ch.Close(), p.conn.Close())
}
