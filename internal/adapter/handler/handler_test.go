package handler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/coffee-order/internal/adapter/storage"
	"github.com/rl1809/coffee-order/internal/core/domain"
	"github.com/rl1809/coffee-order/internal/core/service"
	"github.com/rl1809/coffee-order/internal/metrics"
)

type memoryIdempotency struct {
	mu   sync.Mutex
	keys map[string]bool
}

func (m *memoryIdempotency) SetIdempotency(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.keys[key] {
		return false, nil
	}
	m.keys[key] = true
	return true, nil
}

func (m *memoryIdempotency) DeleteIdempotency(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.keys, key)
	return nil
}

type testDeps struct {
	store    *storage.MemoryAdapter
	orders   *service.OrderService
	products *service.ProductService
	idem     *memoryIdempotency
	metrics  *metrics.ServerMetrics
	product  domain.Product
}

func newTestDeps(t *testing.T) *testDeps {
	t.Helper()

	store := storage.NewMemoryAdapter()
	product := domain.Product{
		ID:        uuid.New(),
		Name:      "Columbia Nariño",
		Category:  "Coffee",
		Price:     5000,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, store.CreateProduct(context.Background(), product))

	products := service.NewProductService(store, nil)
	return &testDeps{
		store:    store,
		orders:   service.NewOrderService(products, store),
		products: products,
		idem:     &memoryIdempotency{keys: make(map[string]bool)},
		metrics:  metrics.NewServerMetrics("order"),
		product:  product,
	}
}
