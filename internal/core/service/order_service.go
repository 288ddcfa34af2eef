package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rl1809/coffee-order/internal/core/domain"
	"github.com/rl1809/coffee-order/internal/core/dto"
	"github.com/rl1809/coffee-order/internal/port"
)

type OrderService struct {
	products       port.ProductLookup
	orders         port.OrderRepository
	events         port.EventPublisher
	onPublishError func(domain.OrderEvent, error)
	now            func() time.Time
}

type Option func(*OrderService)

// WithEventPublisher announces every registered order on p.
func WithEventPublisher(p port.EventPublisher) Option {
	return func(s *OrderService) {
		s.events = p
	}
}

// WithPublishErrorHandler is called when an order was saved but its event
// could not be published. The registration itself still succeeds.
func WithPublishErrorHandler(fn func(domain.OrderEvent, error)) Option {
	return func(s *OrderService) {
		s.onPublishError = fn
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *OrderService) {
		s.now = now
	}
}

func NewOrderService(products port.ProductLookup, orders port.OrderRepository, opts ...Option) *OrderService {
	s := &OrderService{
		products: products,
		orders:   orders,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterOrder stores a new order after checking that every product it
// references exists. If any product is unknown the store is not touched and
// a *domain.NotFoundError listing the missing ids is returned. Malformed
// requests fail with dto.ErrInvalidRequest before any lookup.
func (s *OrderService) RegisterOrder(ctx context.Context, req dto.OrderRequest) (dto.OrderResponse, error) {
	if err := req.Validate(); err != nil {
		return dto.OrderResponse{}, err
	}

	items := req.LineItems()
	ids := domain.ProductIDs(items)

	found, err := s.products.GetProductByIDs(ctx, ids)
	if err != nil {
		return dto.OrderResponse{}, fmt.Errorf("product lookup failed: %w", err)
	}

	var missing []uuid.UUID
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return dto.OrderResponse{}, &domain.NotFoundError{Entity: "product", IDs: missing}
	}

	status := req.Status
	if status == "" {
		status = domain.OrderStatusPending
	}

	order := domain.Order{
		ID:        uuid.New(),
		Email:     req.Email,
		Address:   req.Address,
		Postcode:  req.Postcode,
		Status:    status,
		OrderedAt: s.now().UTC(),
		Items:     items,
	}

	saved, err := s.orders.Save(ctx, order)
	if err != nil {
		return dto.OrderResponse{}, fmt.Errorf("save order: %w", err)
	}

	s.publish(ctx, saved)

	return dto.FromOrder(saved), nil
}

func (s *OrderService) GetOrderByEmail(ctx context.Context, email string) ([]dto.OrderResponse, error) {
	orders, err := s.orders.FindAllByEmailWithItems(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("find orders by email: %w", err)
	}
	return dto.FromOrders(orders), nil
}

func (s *OrderService) GetAllOrders(ctx context.Context) ([]dto.OrderResponse, error) {
	orders, err := s.orders.FindAllWithItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}
	return dto.FromOrders(orders), nil
}

func (s *OrderService) publish(ctx context.Context, order domain.Order) {
	if s.events == nil {
		return
	}

	event := domain.OrderEvent{
		EventID:   uuid.New(),
		Type:      domain.EventOrderRegistered,
		Order:     order,
		CreatedAt: s.now().UTC(),
	}
	if err := s.events.Publish(ctx, event); err != nil && s.onPublishError != nil {
		s.onPublishError(event, err)
	}
}
