package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dejobratic/cafepos/internal/orders/ports"
	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "cafepos:idempotency:"

// Store keeps submission responses in Redis as JSON values with a TTL.
type Store struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewStore(client *goredis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// Dial connects to addr and checks the connection with PING.
func Dial(ctx context.Context, addr string) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return client, nil
}

func (s *Store) Get(ctx context.Context, key string) (*ports.StoredResponse, error) {
	raw, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get idempotency key: %w", err)
	}

	var resp ports.StoredResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode idempotency value: %w", err)
	}
	return &resp, nil
}

// Save stores response only when key is not set yet (SET NX).
func (s *Store) Save(ctx context.Context, key string, response ports.StoredResponse) error {
	if response.CreatedAt.IsZero() {
		response.CreatedAt = time.Now().UTC()
	}
	raw, err := json.Marshal(response)
	if err != nil {
		return fmt.Errorf("encode idempotency value: %w", err)
	}

	if err := s.client.SetNX(ctx, keyPrefix+key, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("set idempotency key: %w", err)
	}
	return nil
}
