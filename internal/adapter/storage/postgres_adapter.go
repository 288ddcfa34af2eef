package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rl1809/coffee-order/internal/core/domain"
)

const postgresOrderSelect = `
	SELECT o.id, o.email, o.address, o.postcode, o.order_status, o.ordered_at,
	       i.product_id, i.category, i.price, i.quantity
	FROM orders o
	LEFT JOIN order_items i ON i.order_id = o.id`

type PostgresAdapter struct {
	pool *pgxpool.Pool
}

func NewPostgresAdapter(pool *pgxpool.Pool) *PostgresAdapter {
	return &PostgresAdapter{pool: pool}
}

func (p *PostgresAdapter) Save(ctx context.Context, order domain.Order) (domain.Order, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return domain.Order{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO orders (id, email, address, postcode, order_status, ordered_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		order.ID.String(), order.Email, order.Address, order.Postcode, string(order.Status), order.OrderedAt,
	)
	if err != nil {
		return domain.Order{}, fmt.Errorf("insert order: %w", err)
	}

	if len(order.Items) > 0 {
		batch := &pgx.Batch{}
		for i, item := range order.Items {
			batch.Queue(`
				INSERT INTO order_items (order_id, line_no, product_id, category, price, quantity)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				order.ID.String(), i, item.ProductID.String(), item.Category, item.Price, item.Quantity,
			)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return domain.Order{}, fmt.Errorf("insert order items: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Order{}, fmt.Errorf("commit: %w", err)
	}
	return order, nil
}

func (p *PostgresAdapter) FindAllByEmailWithItems(ctx context.Context, email string) ([]domain.Order, error) {
	rows, err := p.pool.Query(ctx, postgresOrderSelect+`
		WHERE o.email = $1
		ORDER BY o.ordered_at, o.id, i.line_no`, email)
	if err != nil {
		return nil, fmt.Errorf("query orders by email: %w", err)
	}
	defer rows.Close()

	return scanOrders(rows)
}

func (p *PostgresAdapter) FindAllWithItems(ctx context.Context) ([]domain.Order, error) {
	rows, err := p.pool.Query(ctx, postgresOrderSelect+`
		ORDER BY o.ordered_at, o.id, i.line_no`)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	return scanOrders(rows)
}

func (p *PostgresAdapter) CreateProduct(ctx context.Context, product domain.Product) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO products (id, product_name, category, price, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		product.ID.String(), product.Name, product.Category, product.Price, product.Description,
		product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (p *PostgresAdapter) FindProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Product, error) {
	if len(ids) == 0 {
		return []domain.Product{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = id.String()
	}

	rows, err := p.pool.Query(ctx, `
		SELECT id, product_name, category, price, description, created_at, updated_at
		FROM products WHERE id = ANY($1::uuid[])`, keys)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

func (p *PostgresAdapter) FindAllProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, product_name, category, price, description, created_at, updated_at
		FROM products ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}
