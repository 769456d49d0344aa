package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"shopfront/api/internal/models"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderStatusChange = errors.New("order status transition not allowed")
)

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create inserts the order and its items in one transaction.
func (r *OrderRepository) Create(ctx context.Context, order models.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	const orderQuery = `
		INSERT INTO orders (
			id, store_id, customer_id, status, total_cents, currency, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, NOW(), NOW()
		)
	`
	if _, err := tx.Exec(ctx, orderQuery,
		order.ID,
		order.StoreID,
		order.CustomerID,
		order.Status,
		order.TotalCents,
		order.Currency,
	); err != nil {
		return err
	}

	const itemQuery = `
		INSERT INTO order_items (id, order_id, product_id, quantity, unit_price_cents)
		VALUES ($1, $2, $3, $4, $5)
	`
	for _, item := range order.Items {
		if _, err := tx.Exec(ctx, itemQuery,
			item.ID,
			item.OrderID,
			item.ProductID,
			item.Quantity,
			item.UnitPriceCents,
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (models.Order, error) {
	const query = `
		SELECT id, store_id, customer_id, status, total_cents, currency, created_at, updated_at
		FROM orders WHERE id = $1
	`
	row := r.pool.QueryRow(ctx, query, id)
	var order models.Order
	if err := row.Scan(
		&order.ID,
		&order.StoreID,
		&order.CustomerID,
		&order.Status,
		&order.TotalCents,
		&order.Currency,
		&order.CreatedAt,
		&order.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Order{}, ErrOrderNotFound
		}
		return models.Order{}, err
	}

	items, err := r.listItems(ctx, id)
	if err != nil {
		return models.Order{}, err
	}
	order.Items = items
	return order, nil
}

func (r *OrderRepository) ListByStore(ctx context.Context, storeID string, limit, offset int) ([]models.Order, error) {
	const query = `
		SELECT id, store_id, customer_id, status, total_cents, currency, created_at, updated_at
		FROM orders
		WHERE store_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.list(ctx, query, storeID, limit, offset)
}

func (r *OrderRepository) ListAll(ctx context.Context, limit, offset int) ([]models.Order, error) {
	const query = `
		SELECT id, store_id, customer_id, status, total_cents, currency, created_at, updated_at
		FROM orders
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	return r.list(ctx, query, limit, offset)
}

// UpdateStatus moves the order to next only when the row still holds a
// status that allows the transition, guarding against racing updates.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, current, next models.OrderStatus) error {
	if !current.CanTransitionTo(next) {
		return ErrOrderStatusChange
	}

	const query = `
		UPDATE orders SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`
	cmd, err := r.pool.Exec(ctx, query, id, current, next)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrOrderStatusChange
	}
	return nil
}

func (r *OrderRepository) list(ctx context.Context, query string, args ...any) ([]models.Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var order models.Order
		if err := rows.Scan(
			&order.ID,
			&order.StoreID,
			&order.CustomerID,
			&order.Status,
			&order.TotalCents,
			&order.Currency,
			&order.CreatedAt,
			&order.UpdatedAt,
		); err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func (r *OrderRepository) listItems(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	const query = `
		SELECT id, order_id, product_id, quantity, unit_price_cents
		FROM order_items
		WHERE order_id = $1
	`
	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.Quantity,
			&item.UnitPriceCents,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
