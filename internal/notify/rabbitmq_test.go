//go:build integration

package notify_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/dejobratic/cafepos/internal/notify"
	"github.com/dejobratic/cafepos/internal/orders/domain"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupRabbitMQ(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "rabbitmq:3.13-alpine",
			ExposedPorts: []string{"5672/tcp"},
			WaitingFor:   wait.ForLog("Server startup complete").WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start rabbitmq container: %v", err)
	}

	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5672/tcp")
	if err != nil {
		t.Fatalf("failed to get mapped port: %v", err)
	}

	return fmt.Sprintf("amqp://guest:guest@%s:%s/", host, port.Port())
}

func TestRabbitMQPublisher(t *testing.T) {
	url := setupRabbitMQ(t)
	ctx := context.Background()

	publisher, err := notify.DialRabbitMQ(url, "orders-test")
	if err != nil {
		t.Fatalf("failed to dial rabbitmq: %v", err)
	}
	t.Cleanup(func() { _ = publisher.Close() })

	conn, err := amqp.Dial(url)
	if err != nil {
		t.Fatalf("failed to dial consumer: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	ch, err := conn.Channel()
	if err != nil {
		t.Fatalf("failed to open channel: %v", err)
	}
	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		t.Fatalf("failed to declare queue: %v", err)
	}
	if err := ch.QueueBind(q.Name, "order.#", "orders-test", false, nil); err != nil {
		t.Fatalf("failed to bind queue: %v", err)
	}
	deliveries, err := ch.Consume(q.Name, "", true, true, false, false, nil)
	if err != nil {
		t.Fatalf("failed to consume: %v", err)
	}

	order := domain.NewOrder(12, domain.DefaultDiscountPerCup, time.Now().UTC())
	order.ID = "2d1b7b4e-6f55-4d8c-9a8f-3d0b51c1a001"

	if err := publisher.PublishOrderSubmitted(ctx, order); err != nil {
		t.Fatalf("failed to publish submitted: %v", err)
	}
	order.MarkServed(time.Now().UTC())
	if err := publisher.PublishOrderStatusChanged(ctx, order); err != nil {
		t.Fatalf("failed to publish status: %v", err)
	}

	wantKeys := []string{"order.submitted", "order.status.served"}
	for _, want := range wantKeys {
		select {
		case d := <-deliveries:
			if d.RoutingKey != want {
				t.Errorf("expected routing key %s, got %s", want, d.RoutingKey)
			}
			if d.DeliveryMode != amqp.Persistent {
				t.Errorf("expected persistent delivery, got %d", d.DeliveryMode)
			}
			var event notify.Event
			if err := json.Unmarshal(d.Body, &event); err != nil {
				t.Fatalf("failed to decode event: %v", err)
			}
			if event.Order.OrderNumber != 12 {
				t.Errorf("expected order 12, got %d", event.Order.OrderNumber)
			}
		case <-time.After(10 * time.Second):
			t.Fatalf("timed out waiting for %s", want)
		}
	}

	if err := publisher.Ping(); err != nil {
		t.Errorf("expected open connection, got %v", err)
	}
}
