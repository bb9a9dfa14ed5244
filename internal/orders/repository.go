package orders

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/joao-fontenele/storefront-core/internal/domain"
)

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create persists the order and its line items in one transaction. The
// assembler generates order ids; one is only minted here when a caller
// submits without it.
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (
			id, customer_name, customer_email, customer_phone,
			ship_address, ship_city, ship_postal_code, ship_country,
			subtotal, tax, shipping, discount, total, promo_code,
			payment_method, payment_status, status, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $18)
	`, order.ID, order.Customer.Name, order.Customer.Email, order.Customer.Phone,
		order.ShippingAddress.Address, order.ShippingAddress.City, order.ShippingAddress.PostalCode, order.ShippingAddress.Country,
		order.Breakdown.Subtotal, order.Breakdown.Tax, order.Breakdown.Shipping, order.Breakdown.Discount, order.Breakdown.Total, order.PromoCode,
		order.PaymentMethod, order.PaymentStatus, order.Status, order.CreatedAt)
	if err != nil {
		return err
	}

	for _, item := range order.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, name, unit_price, quantity, image_ref)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, uuid.New().String(), order.ID, item.ProductID, item.Name, item.UnitPrice, item.Quantity, item.ImageRef)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

const orderColumns = `
	id, customer_name, customer_email, customer_phone,
	ship_address, ship_city, ship_postal_code, ship_country,
	subtotal, tax, shipping, discount, total, promo_code,
	payment_method, payment_status, status, created_at
`

func scanOrder(row interface{ Scan(...any) error }, order *domain.Order) error {
	return row.Scan(
		&order.ID, &order.Customer.Name, &order.Customer.Email, &order.Customer.Phone,
		&order.ShippingAddress.Address, &order.ShippingAddress.City, &order.ShippingAddress.PostalCode, &order.ShippingAddress.Country,
		&order.Breakdown.Subtotal, &order.Breakdown.Tax, &order.Breakdown.Shipping, &order.Breakdown.Discount, &order.Breakdown.Total, &order.PromoCode,
		&order.PaymentMethod, &order.PaymentStatus, &order.Status, &order.CreatedAt,
	)
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	order := &domain.Order{}

	err := scanOrder(r.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE id = $1
	`, id), order)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT product_id, name, unit_price, quantity, image_ref
		FROM order_items
		WHERE order_id = $1
	`, id)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var item domain.LineItem
		if err := rows.Scan(&item.ProductID, &item.Name, &item.UnitPrice, &item.Quantity, &item.ImageRef); err != nil {
			return nil, err
		}
		order.Items = append(order.Items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return order, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = $1, updated_at = NOW()
		WHERE id = $2
	`, status, id)
	if err != nil {
		return nil, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}

	if rowsAffected == 0 {
		return nil, nil
	}

	return r.GetByID(ctx, id)
}

// List returns orders newest first, optionally filtered to one customer
// email. Items are fetched in a single batched query.
func (r *OrderRepository) List(ctx context.Context, customerEmail string) ([]domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		ORDER BY created_at DESC
	`
	args := []any{}
	if customerEmail != "" {
		query = `
			SELECT ` + orderColumns + `
			FROM orders
			WHERE customer_email = $1
			ORDER BY created_at DESC
		`
		args = append(args, customerEmail)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	orderMap := make(map[string]*domain.Order)
	var orderIDs []string

	for rows.Next() {
		var order domain.Order
		if err := scanOrder(rows, &order); err != nil {
			return nil, err
		}
		order.Items = []domain.LineItem{}
		orderMap[order.ID] = &order
		orderIDs = append(orderIDs, order.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(orderIDs) == 0 {
		return []domain.Order{}, nil
	}

	itemRows, err := r.db.QueryContext(ctx, `
		SELECT order_id, product_id, name, unit_price, quantity, image_ref
		FROM order_items
		WHERE order_id = ANY($1)
	`, pq.Array(orderIDs))
	if err != nil {
		return nil, err
	}
	defer func() { _ = itemRows.Close() }()

	for itemRows.Next() {
		var orderID string
		var item domain.LineItem
		if err := itemRows.Scan(&orderID, &item.ProductID, &item.Name, &item.UnitPrice, &item.Quantity, &item.ImageRef); err != nil {
			return nil, err
		}
		order := orderMap[orderID]
		order.Items = append(order.Items, item)
	}

	if err := itemRows.Err(); err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		orders = append(orders, *orderMap[id])
	}

	return orders, nil
}
