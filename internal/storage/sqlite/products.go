package sqlite

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"praktyka/internal/models"
	"praktyka/internal/storage"
)

// CreateProduct inserts a new product owned by p.UserID.
func (s *SQLiteStore) CreateProduct(ctx context.Context, p *models.Product) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	p.CreatedAt = nowUnix()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO products (id, name, user_id, created_at) VALUES (?, ?, ?, ?)`,
		p.ID, p.Name, p.UserID, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// ListProducts returns all products owned by userID, oldest first.
func (s *SQLiteStore) ListProducts(ctx context.Context, userID string) ([]models.Product, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, user_id, created_at FROM products WHERE user_id = ? ORDER BY created_at, id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		p := models.Product{}
		if err := rows.Scan(&p.ID, &p.Name, &p.UserID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}

	return products, nil
}

// DeleteProduct removes a product owned by userID.
func (s *SQLiteStore) DeleteProduct(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}

	return nil
}
