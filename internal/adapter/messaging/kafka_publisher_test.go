package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/coffee-order/internal/core/domain"
)

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	err    error
	block  chan struct{}
	closed bool
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func newEvent() domain.OrderEvent {
	return domain.OrderEvent{
		EventID: uuid.New(),
		Type:    domain.EventOrderRegistered,
		Order: domain.Order{
			ID:     uuid.New(),
			Email:  "test@example.com",
			Status: domain.OrderStatusPending,
			Items:  []domain.OrderItem{{ProductID: uuid.New(), Category: "Coffee", Price: 20000, Quantity: 2}},
		},
		CreatedAt: time.Now().UTC(),
	}
}

func TestPublish_WritesEventKeyedByOrder(t *testing.T) {
	w := &fakeWriter{}
	p := newKafkaPublisher(w, 2, 10)

	event := newEvent()
	require.NoError(t, p.Publish(context.Background(), event))
	require.NoError(t, p.Close())

	require.Len(t, w.msgs, 1)
	assert.Equal(t, event.Order.ID.String(), string(w.msgs[0].Key))
	assert.True(t, w.closed)

	var got Event
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, domain.EventOrderRegistered, got.Type)
	assert.Equal(t, event.Order.ID.String(), got.OrderID)
	assert.Equal(t, "test@example.com", got.Payload.Email)
	require.Len(t, got.Payload.Items, 1)
	assert.Equal(t, int64(20000), got.Payload.Items[0].Price)
}

func TestPublish_QueueFull(t *testing.T) {
	w := &fakeWriter{block: make(chan struct{})}
	p := newKafkaPublisher(w, 1, 1)

	// first event is picked up by the blocked worker, second fills the queue
	require.NoError(t, p.Publish(context.Background(), newEvent()))
	require.Eventually(t, func() bool { return len(p.queue) == 0 }, time.Second, time.Millisecond)
	require.NoError(t, p.Publish(context.Background(), newEvent()))

	err := p.Publish(context.Background(), newEvent())
	assert.ErrorIs(t, err, ErrQueueFull)

	close(w.block)
	require.NoError(t, p.Close())
	assert.Len(t, w.msgs, 2)
}

func TestPublish_AfterClose(t *testing.T) {
	p := newKafkaPublisher(&fakeWriter{}, 1, 1)
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())

	assert.ErrorIs(t, p.Publish(context.Background(), newEvent()), ErrClosed)
}

func TestPublish_WriteErrorIsNotFatal(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	p := newKafkaPublisher(w, 1, 4)

	for i := 0; i < 3; i++ {
		require.NoError(t, p.Publish(context.Background(), newEvent()))
	}
	require.NoError(t, p.Close())
	assert.Empty(t, w.msgs)
}
