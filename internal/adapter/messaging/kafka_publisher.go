package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/rl1809/coffee-order/internal/core/domain"
	"github.com/rl1809/coffee-order/internal/core/dto"
	"github.com/rl1809/coffee-order/internal/logging"
)

var (
	ErrQueueFull = errors.New("event queue full")
	ErrClosed    = errors.New("publisher closed")
)

const writeTimeout = 5 * time.Second

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Event struct {
	EventID   string            `json:"event_id"`
	Type      string            `json:"type"`
	OrderID   string            `json:"order_id"`
	CreatedAt time.Time         `json:"created_at"`
	Payload   dto.OrderResponse `json:"payload"`
}

// KafkaPublisher hands events to a fixed pool of workers that write them to
// Kafka. Publish never blocks on the broker.
type KafkaPublisher struct {
	writer messageWriter
	queue  chan domain.OrderEvent
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewKafkaPublisher(brokers []string, topic string, workers, queueSize int) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
	return newKafkaPublisher(writer, workers, queueSize)
}

func newKafkaPublisher(writer messageWriter, workers, queueSize int) *KafkaPublisher {
	if workers < 1 {
		workers = 1
	}
	p := &KafkaPublisher{
		writer: writer,
		queue:  make(chan domain.OrderEvent, queueSize),
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			p.workerLoop(id)
		}(i)
	}
	return p
}

func (p *KafkaPublisher) Publish(ctx context.Context, event domain.OrderEvent) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrClosed
	}

	select {
	case p.queue <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting events, drains the queue and closes the writer.
func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()
	return p.writer.Close()
}

func (p *KafkaPublisher) workerLoop(id int) {
	for event := range p.queue {
		start := time.Now()
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)

		fields := logging.Fields{
			Service: "publisher",
			OrderID: event.Order.ID.String(),
			EventID: event.EventID.String(),
			Step:    event.Type,
		}

		msg, err := encode(event)
		if err == nil {
			err = p.writer.WriteMessages(ctx, msg)
		}

		fields.DurationMS = time.Since(start).Milliseconds()
		if err != nil {
			fields.Status = "error"
			fields.Message = err.Error()
		} else {
			fields.Status = "sent"
		}
		logging.Log(fields)

		cancel()
	}
}

func encode(event domain.OrderEvent) (kafka.Message, error) {
	data, err := json.Marshal(Event{
		EventID:   event.EventID.String(),
		Type:      event.Type,
		OrderID:   event.Order.ID.String(),
		CreatedAt: event.CreatedAt,
		Payload:   dto.FromOrder(event.Order),
	})
	if err != nil {
		return kafka.Message{}, err
	}

	return kafka.Message{
		Key:   []byte(event.Order.ID.String()),
		Value: data,
		Time:  event.CreatedAt,
	}, nil
}
