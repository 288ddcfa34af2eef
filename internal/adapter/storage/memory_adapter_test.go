package storage

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/coffee-order/internal/core/domain"
)

func newTestOrder(email string, items ...domain.OrderItem) domain.Order {
	return domain.Order{
		ID:        uuid.New(),
		Email:     email,
		Address:   "Test Address",
		Postcode:  "12345",
		Status:    domain.OrderStatusPending,
		OrderedAt: time.Now().UTC().Truncate(time.Microsecond),
		Items:     items,
	}
}

func TestMemoryAdapter_SaveAndFind(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryAdapter()

	first := newTestOrder("a@example.com", domain.OrderItem{ProductID: uuid.New(), Category: "Coffee", Price: 100, Quantity: 1})
	second := newTestOrder("b@example.com")
	third := newTestOrder("a@example.com")

	for _, o := range []domain.Order{first, second, third} {
		_, err := m.Save(ctx, o)
		require.NoError(t, err)
	}

	byEmail, err := m.FindAllByEmailWithItems(ctx, "a@example.com")
	require.NoError(t, err)
	require.Len(t, byEmail, 2)
	assert.Equal(t, first.ID, byEmail[0].ID)
	assert.Equal(t, third.ID, byEmail[1].ID)
	assert.Equal(t, first.Items, byEmail[0].Items)

	all, err := m.FindAllWithItems(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestMemoryAdapter_FindByEmailNoMatch(t *testing.T) {
	orders, err := NewMemoryAdapter().FindAllByEmailWithItems(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.NotNil(t, orders)
	assert.Empty(t, orders)
}

func TestMemoryAdapter_SaveRejectsDuplicateID(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryAdapter()
	o := newTestOrder("a@example.com")

	_, err := m.Save(ctx, o)
	require.NoError(t, err)
	_, err = m.Save(ctx, o)
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestMemoryAdapter_StoredItemsAreNotAliased(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryAdapter()
	o := newTestOrder("a@example.com", domain.OrderItem{ProductID: uuid.New(), Category: "Coffee", Price: 100, Quantity: 1})

	_, err := m.Save(ctx, o)
	require.NoError(t, err)
	o.Items[0].Price = 999

	all, err := m.FindAllWithItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(100), all[0].Items[0].Price)
}

func TestMemoryAdapter_Products(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryAdapter()
	p := domain.Product{ID: uuid.New(), Name: "Brazil Serra Do Caparaó", Category: "Coffee", Price: 4500}

	require.NoError(t, m.CreateProduct(ctx, p))
	assert.ErrorIs(t, m.CreateProduct(ctx, p), ErrDuplicateID)

	found, err := m.FindProductsByIDs(ctx, []uuid.UUID{p.ID, uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, []domain.Product{p}, found)

	all, err := m.FindAllProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
