package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const pingTimeout = 2 * time.Second

// CheckHealth pings the pool and reports an exhausted pool as unhealthy.
func CheckHealth(ctx context.Context, pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	stat := pool.Stat()
	if stat.MaxConns() > 0 && stat.AcquiredConns() >= stat.MaxConns() && stat.IdleConns() == 0 {
		return fmt.Errorf("%w: %d of %d connections in use", ErrPoolExhausted, stat.AcquiredConns(), stat.MaxConns())
	}

	return nil
}
