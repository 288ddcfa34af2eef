package port

import (
	"context"

	"github.com/google/uuid"

	"github.com/rl1809/coffee-order/internal/core/domain"
)

type OrderRepository interface {
	// Save persists the order and all of its items in one transaction
	Save(ctx context.Context, order domain.Order) (domain.Order, error)

	// FindAllByEmailWithItems returns the orders placed with email, items loaded
	FindAllByEmailWithItems(ctx context.Context, email string) ([]domain.Order, error)

	// FindAllWithItems returns every order, items loaded
	FindAllWithItems(ctx context.Context) ([]domain.Order, error)
}

type ProductRepository interface {
	CreateProduct(ctx context.Context, product domain.Product) error

	// FindProductsByIDs returns the products that exist; unknown ids are skipped
	FindProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Product, error)

	FindAllProducts(ctx context.Context) ([]domain.Product, error)
}
