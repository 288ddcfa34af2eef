package handler

import (
	"context"
	"errors"
	"fmt"

	"github.com/rl1809/coffee-order/internal/core/dto"
	"github.com/rl1809/coffee-order/internal/core/service"
	"github.com/rl1809/coffee-order/internal/logging"
	"github.com/rl1809/coffee-order/internal/metrics"
	"github.com/rl1809/coffee-order/internal/port"
)

var ErrDuplicateRequest = errors.New("duplicate request")

// registrar is the registration path shared by the HTTP and gRPC handlers:
// request validation, the optional idempotency key, and metrics.
type registrar struct {
	orders      *service.OrderService
	idempotency port.IdempotencyStore
	metrics     *metrics.ServerMetrics
}

func (r registrar) register(ctx context.Context, idempotencyKey string, req dto.OrderRequest) (dto.OrderResponse, error) {
	resp, err := r.doRegister(ctx, idempotencyKey, req)
	if errors.Is(err, ErrDuplicateRequest) {
		r.metrics.ObserveDuplicate()
	} else {
		r.metrics.ObserveRegistration(err)
	}
	return resp, err
}

func (r registrar) doRegister(ctx context.Context, idempotencyKey string, req dto.OrderRequest) (dto.OrderResponse, error) {
	if err := req.Validate(); err != nil {
		return dto.OrderResponse{}, err
	}

	if idempotencyKey == "" || r.idempotency == nil {
		return r.orders.RegisterOrder(ctx, req)
	}

	key := "order:" + idempotencyKey
	ok, err := r.idempotency.SetIdempotency(ctx, key)
	if err != nil {
		return dto.OrderResponse{}, fmt.Errorf("idempotency check failed: %w", err)
	}
	if !ok {
		return dto.OrderResponse{}, ErrDuplicateRequest
	}

	resp, err := r.orders.RegisterOrder(ctx, req)
	if err != nil {
		// No order was stored, so the key must not block a retry.
		if relErr := r.idempotency.DeleteIdempotency(context.WithoutCancel(ctx), key); relErr != nil {
			logging.Log(logging.Fields{Service: "order", Step: "idempotency_release", Status: "error", Message: relErr.Error()})
		}
		return dto.OrderResponse{}, err
	}
	return resp, nil
}
