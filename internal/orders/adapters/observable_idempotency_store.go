package adapters

import (
	"context"

	"github.com/dejobratic/cafepos/internal/database"
	"github.com/dejobratic/cafepos/internal/orders/ports"
	"go.opentelemetry.io/otel/attribute"
)

// ObservableIdempotencyStore traces and times idempotency key lookups and writes.
type ObservableIdempotencyStore struct {
	store   ports.IdempotencyStore
	backend string
	metrics *database.Metrics
}

func NewObservableIdempotencyStore(store ports.IdempotencyStore, backend string, metrics *database.Metrics) *ObservableIdempotencyStore {
	return &ObservableIdempotencyStore{store: store, backend: backend, metrics: metrics}
}

func (s *ObservableIdempotencyStore) Get(ctx context.Context, key string) (*ports.StoredResponse, error) {
	ctx, done := observeStore(ctx, s.metrics, s.backend, "IdempotencyStore.Get", "get_idempotency_key")
	resp, err := s.store.Get(ctx, key)
	done(err, attribute.Bool("idempotency.hit", resp != nil))
	return resp, err
}

func (s *ObservableIdempotencyStore) Save(ctx context.Context, key string, resp ports.StoredResponse) error {
	ctx, done := observeStore(ctx, s.metrics, s.backend, "IdempotencyStore.Save", "save_idempotency_key",
		attribute.String("order.id", resp.OrderID),
	)
	err := s.store.Save(ctx, key, resp)
	done(err)
	return err
}
