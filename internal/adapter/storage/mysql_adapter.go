package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/rl1809/coffee-order/internal/core/domain"
)

const mysqlOrderSelect = `
	SELECT o.id, o.email, o.address, o.postcode, o.order_status, o.ordered_at,
	       i.product_id, i.category, i.price, i.quantity
	FROM orders o
	LEFT JOIN order_items i ON i.order_id = o.id`

type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

func (m *MySQLAdapter) Save(ctx context.Context, order domain.Order) (domain.Order, error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Order{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, email, address, postcode, order_status, ordered_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		order.ID, order.Email, order.Address, order.Postcode, string(order.Status), order.OrderedAt,
	)
	if err != nil {
		return domain.Order{}, fmt.Errorf("insert order: %w", err)
	}

	for i, item := range order.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, line_no, product_id, category, price, quantity)
			VALUES (?, ?, ?, ?, ?, ?)`,
			order.ID, i, item.ProductID, item.Category, item.Price, item.Quantity,
		)
		if err != nil {
			return domain.Order{}, fmt.Errorf("insert order item %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.Order{}, fmt.Errorf("commit: %w", err)
	}
	return order, nil
}

func (m *MySQLAdapter) FindAllByEmailWithItems(ctx context.Context, email string) ([]domain.Order, error) {
	rows, err := m.db.QueryContext(ctx, mysqlOrderSelect+`
		WHERE o.email = ?
		ORDER BY o.ordered_at, o.id, i.line_no`, email)
	if err != nil {
		return nil, fmt.Errorf("query orders by email: %w", err)
	}
	defer rows.Close()

	return scanOrders(rows)
}

func (m *MySQLAdapter) FindAllWithItems(ctx context.Context) ([]domain.Order, error) {
	rows, err := m.db.QueryContext(ctx, mysqlOrderSelect+`
		ORDER BY o.ordered_at, o.id, i.line_no`)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	return scanOrders(rows)
}

func (m *MySQLAdapter) CreateProduct(ctx context.Context, p domain.Product) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO products (id, product_name, category, price, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Category, p.Price, p.Description, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) FindProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Product, error) {
	if len(ids) == 0 {
		return []domain.Product{}, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")

	rows, err := m.db.QueryContext(ctx, `
		SELECT id, product_name, category, price, description, created_at, updated_at
		FROM products WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

func (m *MySQLAdapter) FindAllProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, product_name, category, price, description, created_at, updated_at
		FROM products ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}
