package port

import (
	"context"

	"github.com/google/uuid"

	"github.com/rl1809/coffee-order/internal/core/domain"
)

type ProductCache interface {
	// GetProducts returns the cached products among ids; misses are omitted
	GetProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.Product, error)

	// SetProducts caches products with the adapter's TTL
	SetProducts(ctx context.Context, products []domain.Product) error
}

type IdempotencyStore interface {
	// SetIdempotency sets a key for idempotency check, returns false if already exists
	SetIdempotency(ctx context.Context, key string) (bool, error)

	// DeleteIdempotency releases a key so the same request can be retried
	DeleteIdempotency(ctx context.Context, key string) error
}
