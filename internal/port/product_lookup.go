package port

import (
	"context"

	"github.com/google/uuid"

	"github.com/rl1809/coffee-order/internal/core/domain"
)

// ProductLookup resolves product ids. Ids that do not exist are left out of
// the result; that is not an error.
type ProductLookup interface {
	GetProductByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.Product, error)
}
