package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/google/uuid"
)

// CreateOrder persists the order header and its lines and clears the user's
// cart rows in a single transaction. A failure anywhere rolls back all three,
// so a header can never exist without its lines.
func (s *Store) CreateOrder(ctx context.Context, order *domain.Order) (err error) {
	addressJSON, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return fmt.Errorf("failed to marshal shipping address: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	headerQuery := `
		INSERT INTO orders (id, user_id, status, payment_status, total, shipping_address)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	err = tx.QueryRowContext(ctx, headerQuery,
		order.ID,
		order.UserID,
		order.Status,
		order.PaymentStatus,
		order.Total,
		addressJSON,
	).Scan(&order.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert order header: %w", err)
	}

	lineQuery := `
		INSERT INTO order_items (id, order_id, position, product_id, product_name, quantity, price)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	for i := range order.Lines {
		line := &order.Lines[i]
		if line.ID == uuid.Nil {
			line.ID = uuid.New()
		}
		_, err = tx.ExecContext(ctx, lineQuery,
			line.ID,
			order.ID,
			i,
			line.ProductID,
			line.ProductName,
			line.Quantity,
			line.Price,
		)
		if err != nil {
			return fmt.Errorf("failed to insert order line: %w", err)
		}
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, order.UserID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order: %w", err)
	}
	return nil
}

// ListOrders returns the user's orders newest first, each with its lines.
func (s *Store) ListOrders(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	query := `
		SELECT id, user_id, status, payment_status, total, shipping_address, created_at
		FROM orders WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	for _, order := range orders {
		if err := s.loadOrderLines(ctx, order); err != nil {
			return nil, err
		}
	}

	return orders, nil
}

// GetOrder returns one of the user's orders with its lines. Another user's
// order id yields ErrOrderNotFound.
func (s *Store) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*domain.Order, error) {
	query := `
		SELECT id, user_id, status, payment_status, total, shipping_address, created_at
		FROM orders WHERE id = $1 AND user_id = $2`

	row := s.db.QueryRowContext(ctx, query, orderID, userID)
	order, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := s.loadOrderLines(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	order := &domain.Order{}
	var addressJSON []byte
	err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.Status,
		&order.PaymentStatus,
		&order.Total,
		&addressJSON,
		&order.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}

	if err := json.Unmarshal(addressJSON, &order.ShippingAddress); err != nil {
		return nil, fmt.Errorf("failed to unmarshal shipping address: %w", err)
	}
	return order, nil
}

// loadOrderLines restores the lines in the order they held in the cart at
// placement time.
func (s *Store) loadOrderLines(ctx context.Context, order *domain.Order) error {
	query := `
		SELECT id, product_id, product_name, quantity, price
		FROM order_items WHERE order_id = $1 ORDER BY position`

	rows, err := s.db.QueryContext(ctx, query, order.ID)
	if err != nil {
		return fmt.Errorf("failed to query order lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l domain.OrderLine
		if err := rows.Scan(&l.ID, &l.ProductID, &l.ProductName, &l.Quantity, &l.Price); err != nil {
			return fmt.Errorf("failed to scan order line: %w", err)
		}
		order.Lines = append(order.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("row iteration error: %w", err)
	}
	return nil
}
