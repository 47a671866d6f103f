package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ListCartLines returns the user's cart rows joined with each product's
// current name, price and image, in insertion order.
func (s *Store) ListCartLines(ctx context.Context, userID uuid.UUID) ([]domain.CartLine, error) {
	query := `
		SELECT ci.id, ci.product_id, p.name, p.price, ci.quantity, p.image_url
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.user_id = $1
		ORDER BY ci.created_at`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart lines: %w", err)
	}
	defer rows.Close()

	var lines []domain.CartLine
	for rows.Next() {
		var l domain.CartLine
		if err := rows.Scan(&l.ID, &l.ProductID, &l.Name, &l.Price, &l.Quantity, &l.ImageURL); err != nil {
			return nil, fmt.Errorf("failed to scan cart line: %w", err)
		}
		lines = append(lines, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return lines, nil
}

// AddCartLine inserts a line for (user, product) or accumulates quantity into
// the existing one.
func (s *Store) AddCartLine(ctx context.Context, userID, productID uuid.UUID, quantity int) error {
	query := `
		INSERT INTO cart_items (id, user_id, product_id, quantity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`

	_, err := s.db.ExecContext(ctx, query, uuid.New(), userID, productID, quantity)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to add cart line: %w", err)
	}
	return nil
}

// SetCartLineQuantity overwrites the persisted quantity. Matching zero rows
// is not an error.
func (s *Store) SetCartLineQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) error {
	query := `UPDATE cart_items SET quantity = $3 WHERE user_id = $1 AND product_id = $2`

	if _, err := s.db.ExecContext(ctx, query, userID, productID, quantity); err != nil {
		return fmt.Errorf("failed to update cart line quantity: %w", err)
	}
	return nil
}

// RemoveCartLine deletes the line for (user, product). Deleting a line that
// does not exist is a successful no-op.
func (s *Store) RemoveCartLine(ctx context.Context, userID, productID uuid.UUID) error {
	query := `DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`

	if _, err := s.db.ExecContext(ctx, query, userID, productID); err != nil {
		return fmt.Errorf("failed to remove cart line: %w", err)
	}
	return nil
}

// ClearCartLines deletes all lines for the user and reports how many rows
// were removed.
func (s *Store) ClearCartLines(ctx context.Context, userID uuid.UUID) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear cart: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count cleared rows: %w", err)
	}
	return deleted, nil
}
