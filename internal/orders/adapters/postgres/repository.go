package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dejobratic/cafepos/internal/orders/domain"
	"github.com/dejobratic/cafepos/internal/orders/ports"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	uniqueViolation       = "23505"
	orderNumberConstraint = "orders_order_number_key"
)

const selectColumns = `
	id::text, order_number, created_at, ready_at, served_at, ready_set_by_serve,
	items, comments, received_amount, discount_anchor_order_number,
	discount_anchor_cup_count, discount_per_cup, estimate_seconds
`

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Save upserts the order. Items and comments are stored as JSONB documents.
func (r *Repository) Save(ctx context.Context, order *domain.Order) error {
	assigned := order.ID == ""
	if assigned {
		order.ID = uuid.NewString()
	}

	rec := order.ToRecord()
	items, err := json.Marshal(rec.Items)
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}
	comments, err := json.Marshal(rec.Comments)
	if err != nil {
		return fmt.Errorf("encode comments: %w", err)
	}

	query := `
		INSERT INTO orders (
			id, order_number, status, created_at, ready_at, served_at, ready_set_by_serve,
			items, comments, received_amount, discount_anchor_order_number,
			discount_anchor_cup_count, discount_per_cup, estimate_seconds, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO UPDATE SET
			order_number = EXCLUDED.order_number,
			status = EXCLUDED.status,
			created_at = EXCLUDED.created_at,
			ready_at = EXCLUDED.ready_at,
			served_at = EXCLUDED.served_at,
			ready_set_by_serve = EXCLUDED.ready_set_by_serve,
			items = EXCLUDED.items,
			comments = EXCLUDED.comments,
			received_amount = EXCLUDED.received_amount,
			discount_anchor_order_number = EXCLUDED.discount_anchor_order_number,
			discount_anchor_cup_count = EXCLUDED.discount_anchor_cup_count,
			discount_per_cup = EXCLUDED.discount_per_cup,
			estimate_seconds = EXCLUDED.estimate_seconds,
			updated_at = EXCLUDED.updated_at
	`

	_, err = r.pool.Exec(ctx, query,
		rec.ID,
		rec.OrderNumber,
		rec.Status,
		rec.CreatedAt,
		rec.ReadyAt,
		rec.ServedAt,
		order.ReadySetByServe(),
		items,
		comments,
		rec.ReceivedAmount,
		rec.DiscountAnchorOrderNumber,
		rec.DiscountAnchorCupCount,
		rec.DiscountPerCup,
		rec.EstimateSeconds,
		time.Now().UTC(),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == orderNumberConstraint {
			if assigned {
				order.ID = ""
			}
			return fmt.Errorf("order #%d: %w", rec.OrderNumber, ports.ErrDuplicateOrderNumber)
		}
		return fmt.Errorf("upsert order: %w", err)
	}

	return nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ports.ErrNotFound
	}

	query := `SELECT ` + selectColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("select order: %w", err)
	}

	return order, nil
}

// List returns orders ordered by order number. A zero page size returns every match.
func (r *Repository) List(ctx context.Context, filter ports.ListFilter) ([]*domain.Order, error) {
	var statusFilter *string
	if filter.Status != nil {
		s := string(*filter.Status)
		statusFilter = &s
	}

	var limit *int
	offset := 0
	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		limit = &filter.PageSize
		offset = (page - 1) * filter.PageSize
	}

	query := `SELECT ` + selectColumns + `
		FROM orders
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY order_number ASC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, statusFilter, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	return orders, nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ports.ErrNotFound
	}

	result, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ports.ErrNotFound
	}

	return nil
}

func (r *Repository) NextOrderNumber(ctx context.Context) (int, error) {
	var next int
	if err := r.pool.QueryRow(ctx, `SELECT COALESCE(MAX(order_number), 0) + 1 FROM orders`).Scan(&next); err != nil {
		return 0, fmt.Errorf("select next order number: %w", err)
	}
	return next, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		rec             domain.Record
		readySetByServe bool
		items           []byte
		comments        []byte
	)

	if err := row.Scan(
		&rec.ID,
		&rec.OrderNumber,
		&rec.CreatedAt,
		&rec.ReadyAt,
		&rec.ServedAt,
		&readySetByServe,
		&items,
		&comments,
		&rec.ReceivedAmount,
		&rec.DiscountAnchorOrderNumber,
		&rec.DiscountAnchorCupCount,
		&rec.DiscountPerCup,
		&rec.EstimateSeconds,
	); err != nil {
		return nil, err
	}
	rec.ReadySetByServe = &readySetByServe

	if err := json.Unmarshal(items, &rec.Items); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	if err := json.Unmarshal(comments, &rec.Comments); err != nil {
		return nil, fmt.Errorf("decode comments: %w", err)
	}

	return domain.FromRecord(rec)
}
