package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dejobratic/cafepos/internal/orders/ports"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists submission responses in the idempotency_keys table.
type Store struct {
	pool *pgxpool.Pool
	ttl  time.Duration
}

// NewStore returns a store whose entries expire after ttl. A zero ttl keeps them forever.
func NewStore(pool *pgxpool.Pool, ttl time.Duration) *Store {
	return &Store{pool: pool, ttl: ttl}
}

func (s *Store) Get(ctx context.Context, key string) (*ports.StoredResponse, error) {
	query := `
		SELECT status_code, body, order_id, fingerprint, created_at
		FROM idempotency_keys
		WHERE key = $1
		  AND ($2::bigint = 0 OR created_at > NOW() - make_interval(secs => $2::bigint))
	`

	var resp ports.StoredResponse
	err := s.pool.QueryRow(ctx, query, key, int64(s.ttl/time.Second)).Scan(
		&resp.StatusCode,
		&resp.Body,
		&resp.OrderID,
		&resp.Fingerprint,
		&resp.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select idempotency key: %w", err)
	}

	return &resp, nil
}

func (s *Store) Save(ctx context.Context, key string, response ports.StoredResponse) error {
	query := `
		INSERT INTO idempotency_keys (key, status_code, body, order_id, fingerprint)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (key) DO NOTHING
	`

	_, err := s.pool.Exec(ctx, query, key, response.StatusCode, response.Body, response.OrderID, response.Fingerprint)
	if err != nil {
		return fmt.Errorf("insert idempotency key: %w", err)
	}

	return nil
}

// Purge deletes entries older than the store's ttl and reports how many were removed.
func (s *Store) Purge(ctx context.Context) (int64, error) {
	if s.ttl <= 0 {
		return 0, nil
	}
	result, err := s.pool.Exec(ctx,
		`DELETE FROM idempotency_keys WHERE created_at <= NOW() - make_interval(secs => $1::bigint)`,
		int64(s.ttl/time.Second),
	)
	if err != nil {
		return 0, fmt.Errorf("purge idempotency keys: %w", err)
	}
	return result.RowsAffected(), nil
}
