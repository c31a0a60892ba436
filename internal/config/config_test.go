package config

import (
	"errors"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/cafepos")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.HTTP.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.HTTP.Port)
	}
	if cfg.Orders.DiscountPerCup != 100 {
		t.Errorf("expected discount 100, got %d", cfg.Orders.DiscountPerCup)
	}
	if cfg.Orders.Store != StorePostgres || cfg.Orders.IdempotencyStore != StorePostgres {
		t.Errorf("expected postgres stores, got %s and %s", cfg.Orders.Store, cfg.Orders.IdempotencyStore)
	}
	if cfg.Redis.IdempotencyTTL != 24*time.Hour {
		t.Errorf("expected 24h idempotency ttl, got %v", cfg.Redis.IdempotencyTTL)
	}
	if cfg.Broker.Exchange != "orders" {
		t.Errorf("expected exchange orders, got %s", cfg.Broker.Exchange)
	}
	if !cfg.NeedsDatabase() {
		t.Error("expected default stores to need the database")
	}
	if cfg.Database.URL != "postgres://u:p@db:5432/cafepos" {
		t.Errorf("expected DATABASE_URL to win, got %s", cfg.Database.URL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ORDERS_STORE", "memory")
	t.Setenv("IDEMPOTENCY_STORE", "redis")
	t.Setenv("ORDERS_DISCOUNT_PER_CUP", "50")
	t.Setenv("IDEMPOTENCY_TTL", "90m")
	t.Setenv("RABBITMQ_URL", "amqp://guest:guest@mq:5672/")
	t.Setenv("CATALOG_PATH", "/etc/cafepos/menu.yaml")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.NeedsDatabase() {
		t.Error("expected memory and redis stores not to need the database")
	}
	if cfg.Orders.DiscountPerCup != 50 {
		t.Errorf("expected discount 50, got %d", cfg.Orders.DiscountPerCup)
	}
	if cfg.Redis.IdempotencyTTL != 90*time.Minute {
		t.Errorf("expected 90m ttl, got %v", cfg.Redis.IdempotencyTTL)
	}
	if cfg.Broker.URL == "" || cfg.Orders.CatalogPath == "" {
		t.Errorf("expected broker url and catalog path, got %+v %+v", cfg.Broker, cfg.Orders)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		want  error
	}{
		{"unknown order store", "ORDERS_STORE", "redis", ErrInvalidStore},
		{"unknown idempotency store", "IDEMPOTENCY_STORE", "etcd", ErrInvalidStore},
		{"non-numeric discount", "ORDERS_DISCOUNT_PER_CUP", "ten", nil},
		{"negative discount", "ORDERS_DISCOUNT_PER_CUP", "-1", nil},
		{"bad ttl", "IDEMPOTENCY_TTL", "forever", nil},
		{"bad port", "API_HTTP_PORT", "http", nil},
		{"bad sample rate", "OTEL_SAMPLE_RATE", "half", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
