package inventory

import (
	"context"
	"database/sql"
	"errors"

	"github.com/joao-fontenele/storefront-core/internal/domain"
)

var ErrInsufficientStock = errors.New("insufficient stock")

type InventoryRepository struct {
	db *sql.DB
}

func NewInventoryRepository(db *sql.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

func (r *InventoryRepository) ListAll(ctx context.Context) ([]domain.StockLevel, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT product_id, available, reserved
		FROM products
		ORDER BY product_id
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var levels []domain.StockLevel
	for rows.Next() {
		var stock domain.StockLevel
		if err := rows.Scan(&stock.ProductID, &stock.Available, &stock.Reserved); err != nil {
			return nil, err
		}
		levels = append(levels, stock)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return levels, nil
}

func (r *InventoryRepository) GetStock(ctx context.Context, productID string) (*domain.StockLevel, error) {
	stock := &domain.StockLevel{}

	err := r.db.QueryRowContext(ctx, `
		SELECT product_id, available, reserved
		FROM products
		WHERE product_id = $1
	`, productID).Scan(&stock.ProductID, &stock.Available, &stock.Reserved)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return stock, nil
}

// Reserve moves quantity from available to reserved in one conditional
// update; the WHERE clause is the only stock check there is.
func (r *InventoryRepository) Reserve(ctx context.Context, productID string, quantity int) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET available = available - $2, reserved = reserved + $2
		WHERE product_id = $1 AND available >= $2
	`, productID, quantity)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrInsufficientStock
	}

	return nil
}

func (r *InventoryRepository) Release(ctx context.Context, productID string, quantity int) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET available = available + $2, reserved = reserved - $2
		WHERE product_id = $1 AND reserved >= $2
	`, productID, quantity)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return errors.New("insufficient reserved stock to release")
	}

	return nil
}

// Upsert sets the available count for a product, creating the row on first
// restock. Reserved stock is never touched here.
func (r *InventoryRepository) Upsert(ctx context.Context, productID string, available int) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (product_id, available, reserved)
		VALUES ($1, $2, 0)
		ON CONFLICT (product_id) DO UPDATE SET available = EXCLUDED.available
	`, productID, available)
	return err
}
