package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/rl1809/coffee-order/internal/core/domain"
)

var ErrDuplicateID = errors.New("duplicate id")

// MemoryAdapter keeps orders and products in process memory. Orders are
// returned in the order they were saved.
type MemoryAdapter struct {
	mu       sync.RWMutex
	orders   []domain.Order
	orderIDs map[uuid.UUID]struct{}
	products []domain.Product
	byID     map[uuid.UUID]int
}

func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{
		orderIDs: make(map[uuid.UUID]struct{}),
		byID:     make(map[uuid.UUID]int),
	}
}

func (m *MemoryAdapter) Save(ctx context.Context, order domain.Order) (domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.orderIDs[order.ID]; ok {
		return domain.Order{}, ErrDuplicateID
	}

	stored := cloneOrder(order)
	m.orders = append(m.orders, stored)
	m.orderIDs[order.ID] = struct{}{}

	return cloneOrder(stored), nil
}

func (m *MemoryAdapter) FindAllByEmailWithItems(ctx context.Context, email string) ([]domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []domain.Order{}
	for _, o := range m.orders {
		if o.Email == email {
			out = append(out, cloneOrder(o))
		}
	}
	return out, nil
}

func (m *MemoryAdapter) FindAllWithItems(ctx context.Context) ([]domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Order, len(m.orders))
	for i, o := range m.orders {
		out[i] = cloneOrder(o)
	}
	return out, nil
}

func (m *MemoryAdapter) CreateProduct(ctx context.Context, p domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[p.ID]; ok {
		return ErrDuplicateID
	}
	m.byID[p.ID] = len(m.products)
	m.products = append(m.products, p)
	return nil
}

func (m *MemoryAdapter) FindProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []domain.Product{}
	for _, id := range ids {
		if i, ok := m.byID[id]; ok {
			out = append(out, m.products[i])
		}
	}
	return out, nil
}

func (m *MemoryAdapter) FindAllProducts(ctx context.Context) ([]domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]domain.Product{}, m.products...), nil
}

func cloneOrder(o domain.Order) domain.Order {
	items := make([]domain.OrderItem, len(o.Items))
	copy(items, o.Items)
	o.Items = items
	return o
}
