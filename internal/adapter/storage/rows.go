package storage

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/rl1809/coffee-order/internal/core/domain"
)

// rows is satisfied by both *sql.Rows and pgx.Rows.
type rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

// scanOrders folds the rows of an orders LEFT JOIN order_items query, sorted
// by order then line number, into orders with their items attached.
func scanOrders(r rows) ([]domain.Order, error) {
	orders := []domain.Order{}
	index := make(map[uuid.UUID]int)

	for r.Next() {
		var (
			id        uuid.UUID
			email     string
			address   string
			postcode  string
			status    string
			orderedAt time.Time
			productID uuid.NullUUID
			category  sql.NullString
			price     sql.NullInt64
			quantity  sql.NullInt64
		)
		if err := r.Scan(&id, &email, &address, &postcode, &status, &orderedAt,
			&productID, &category, &price, &quantity); err != nil {
			return nil, err
		}

		i, ok := index[id]
		if !ok {
			orders = append(orders, domain.Order{
				ID:        id,
				Email:     email,
				Address:   address,
				Postcode:  postcode,
				Status:    domain.OrderStatus(status),
				OrderedAt: orderedAt,
				Items:     []domain.OrderItem{},
			})
			i = len(orders) - 1
			index[id] = i
		}

		if productID.Valid {
			orders[i].Items = append(orders[i].Items, domain.OrderItem{
				ProductID: productID.UUID,
				Category:  category.String,
				Price:     price.Int64,
				Quantity:  int(quantity.Int64),
			})
		}
	}

	return orders, r.Err()
}

func scanProducts(r rows) ([]domain.Product, error) {
	products := []domain.Product{}
	for r.Next() {
		var p domain.Product
		if err := r.Scan(&p.ID, &p.Name, &p.Category, &p.Price, &p.Description, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, r.Err()
}
