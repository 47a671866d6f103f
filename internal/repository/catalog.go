package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fjod/go_storefront/internal/domain"
)

// ProductFilter narrows ListProducts. Zero value lists all active products.
type ProductFilter struct {
	CategorySlug string
	FeaturedOnly bool
	NameQuery    string
}

func (s *Store) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, slug FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return categories, nil
}

// ListProducts returns active products, newest first, optionally narrowed by
// category slug, featured flag and a case-insensitive name substring.
func (s *Store) ListProducts(ctx context.Context, filter ProductFilter) ([]*domain.Product, error) {
	query := `
		SELECT p.id, p.category_id, c.name, p.name, p.slug, p.description,
		       p.price, p.image_url, p.is_active, p.is_featured, p.created_at
		FROM products p
		JOIN categories c ON c.id = p.category_id
		WHERE p.is_active = TRUE`

	var args []interface{}
	if filter.CategorySlug != "" {
		args = append(args, filter.CategorySlug)
		query += fmt.Sprintf(" AND c.slug = $%d", len(args))
	}
	if filter.FeaturedOnly {
		query += " AND p.is_featured = TRUE"
	}
	if filter.NameQuery != "" {
		args = append(args, "%"+filter.NameQuery+"%")
		query += fmt.Sprintf(" AND p.name ILIKE $%d", len(args))
	}
	query += " ORDER BY p.created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		p := &domain.Product{}
		err := rows.Scan(
			&p.ID,
			&p.CategoryID,
			&p.CategoryName,
			&p.Name,
			&p.Slug,
			&p.Description,
			&p.Price,
			&p.ImageURL,
			&p.IsActive,
			&p.IsFeatured,
			&p.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return products, nil
}

func (s *Store) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	query := `
		SELECT p.id, p.category_id, c.name, p.name, p.slug, p.description,
		       p.price, p.image_url, p.is_active, p.is_featured, p.created_at
		FROM products p
		JOIN categories c ON c.id = p.category_id
		WHERE p.slug = $1 AND p.is_active = TRUE`

	p := &domain.Product{}
	err := s.db.QueryRowContext(ctx, query, slug).Scan(
		&p.ID,
		&p.CategoryID,
		&p.CategoryName,
		&p.Name,
		&p.Slug,
		&p.Description,
		&p.Price,
		&p.ImageURL,
		&p.IsActive,
		&p.IsFeatured,
		&p.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query product by slug: %w", err)
	}

	return p, nil
}
