package storage

import (
	"database/sql"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/coffee-order/internal/core/domain"
)

type fakeRows struct {
	data [][]any
	pos  int
}

func (f *fakeRows) Next() bool {
	f.pos++
	return f.pos <= len(f.data)
}

func (f *fakeRows) Scan(dest ...any) error {
	for i, v := range f.data[f.pos-1] {
		reflect.ValueOf(dest[i]).Elem().Set(reflect.ValueOf(v))
	}
	return nil
}

func (f *fakeRows) Err() error { return nil }

func joinRow(orderID uuid.UUID, email string, at time.Time, productID *uuid.UUID, qty int64) []any {
	row := []any{orderID, email, "Test Address", "12345", "PENDING", at}
	if productID == nil {
		return append(row, uuid.NullUUID{}, sql.NullString{}, sql.NullInt64{}, sql.NullInt64{})
	}
	return append(row,
		uuid.NullUUID{UUID: *productID, Valid: true},
		sql.NullString{String: "Coffee", Valid: true},
		sql.NullInt64{Int64: 20000, Valid: true},
		sql.NullInt64{Int64: qty, Valid: true},
	)
}

func TestScanOrders_GroupsItemsByOrder(t *testing.T) {
	at := time.Now().UTC()
	orderA, orderB := uuid.New(), uuid.New()
	p1, p2 := uuid.New(), uuid.New()

	orders, err := scanOrders(&fakeRows{data: [][]any{
		joinRow(orderA, "a@example.com", at, &p1, 1),
		joinRow(orderA, "a@example.com", at, &p2, 2),
		joinRow(orderB, "b@example.com", at, nil, 0),
	}})
	require.NoError(t, err)

	require.Len(t, orders, 2)
	assert.Equal(t, orderA, orders[0].ID)
	assert.Equal(t, domain.OrderStatusPending, orders[0].Status)
	require.Len(t, orders[0].Items, 2)
	assert.Equal(t, p1, orders[0].Items[0].ProductID)
	assert.Equal(t, p2, orders[0].Items[1].ProductID)
	assert.Equal(t, 2, orders[0].Items[1].Quantity)

	assert.Equal(t, orderB, orders[1].ID)
	assert.NotNil(t, orders[1].Items)
	assert.Empty(t, orders[1].Items)
}

func TestScanOrders_NoRows(t *testing.T) {
	orders, err := scanOrders(&fakeRows{})
	require.NoError(t, err)
	assert.NotNil(t, orders)
	assert.Empty(t, orders)
}

func TestStatements_SplitsSchema(t *testing.T) {
	stmts := statements(mysqlSchema)
	require.Len(t, stmts, 3)
	assert.Contains(t, stmts[0], "CREATE TABLE IF NOT EXISTS products")
	assert.Contains(t, stmts[2], "CREATE TABLE IF NOT EXISTS order_items")

	assert.Len(t, statements(postgresSchema), 4)
}
