package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/rl1809/coffee-order/internal/core/domain"
	"github.com/rl1809/coffee-order/internal/core/dto"
	"github.com/rl1809/coffee-order/internal/core/service"
	"github.com/rl1809/coffee-order/internal/logging"
	"github.com/rl1809/coffee-order/internal/metrics"
	"github.com/rl1809/coffee-order/internal/port"
)

type HTTPHandler struct {
	orders    *service.OrderService
	products  *service.ProductService
	registrar registrar
}

type orderItemBody struct {
	ProductID string `json:"productId" format:"uuid" doc:"Product identifier"`
	Category  string `json:"category" doc:"Product category at the time of ordering"`
	Price     int64  `json:"price" minimum:"0" doc:"Unit price in minor units"`
	Quantity  int    `json:"quantity" minimum:"1"`
}

type RegisterOrderInput struct {
	IdempotencyKey string `header:"Idempotency-Key" required:"false" doc:"Repeated keys are rejected with 409"`
	Body           struct {
		Email    string          `json:"email" format:"email"`
		Address  string          `json:"address" minLength:"1"`
		Postcode string          `json:"postcode" minLength:"1"`
		Status   string          `json:"orderStatus,omitempty" doc:"Defaults to PENDING"`
		Items    []orderItemBody `json:"orderItems" minItems:"1"`
	}
}

type ListOrdersInput struct {
	Email string `query:"email" doc:"Only orders placed with this email"`
}

type OrderOutput struct {
	Body dto.OrderResponse
}

type OrderListOutput struct {
	Body []dto.OrderResponse
}

type RegisterProductInput struct {
	Body dto.ProductRequest
}

type ProductOutput struct {
	Body dto.ProductResponse
}

type ProductListOutput struct {
	Body []dto.ProductResponse
}

type HealthOutput struct {
	Body struct {
		Status string `json:"status"`
	}
}

func NewHTTPHandler(orders *service.OrderService, products *service.ProductService, idempotency port.IdempotencyStore, m *metrics.ServerMetrics) *HTTPHandler {
	return &HTTPHandler{
		orders:   orders,
		products: products,
		registrar: registrar{
			orders:      orders,
			idempotency: idempotency,
			metrics:     m,
		},
	}
}

// NewRouter mounts the API on a chi router. Metrics are optional.
func NewRouter(h *HTTPHandler, m *metrics.ServerMetrics) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer, requestLogger)
	if m != nil {
		router.Use(m.Middleware)
		router.Method(http.MethodGet, "/metrics", m.Handler())
	}

	api := humachi.New(router, huma.DefaultConfig("Coffee Order API", "1.0.0"))
	h.Register(api)

	return router
}

func (h *HTTPHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
	}, h.HealthCheck)

	huma.Register(api, huma.Operation{
		OperationID:   "order-register",
		Method:        http.MethodPost,
		Path:          "/api/v1/orders",
		Summary:       "Register an order",
		Tags:          []string{"Orders"},
		DefaultStatus: http.StatusCreated,
	}, h.RegisterOrder)

	huma.Register(api, huma.Operation{
		OperationID: "order-list",
		Method:      http.MethodGet,
		Path:        "/api/v1/orders",
		Summary:     "List orders, optionally by email",
		Description: "Returns the orders placed with `email`. When `email` is absent or empty, every order is returned.",
		Tags:        []string{"Orders"},
	}, h.ListOrders)

	huma.Register(api, huma.Operation{
		OperationID:   "product-register",
		Method:        http.MethodPost,
		Path:          "/api/v1/products",
		Summary:       "Register a product",
		Tags:          []string{"Products"},
		DefaultStatus: http.StatusCreated,
	}, h.RegisterProduct)

	huma.Register(api, huma.Operation{
		OperationID: "product-list",
		Method:      http.MethodGet,
		Path:        "/api/v1/products",
		Summary:     "List products",
		Tags:        []string{"Products"},
	}, h.ListProducts)
}

func (h *HTTPHandler) HealthCheck(ctx context.Context, _ *struct{}) (*HealthOutput, error) {
	out := &HealthOutput{}
	out.Body.Status = "ok"
	return out, nil
}

func (h *HTTPHandler) RegisterOrder(ctx context.Context, in *RegisterOrderInput) (*OrderOutput, error) {
	req := dto.OrderRequest{
		Email:    in.Body.Email,
		Address:  in.Body.Address,
		Postcode: in.Body.Postcode,
		Status:   domain.OrderStatus(in.Body.Status),
		Items:    make([]dto.OrderItemRequest, len(in.Body.Items)),
	}
	for i, item := range in.Body.Items {
		id, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, huma.Error400BadRequest(fmt.Sprintf("orderItems[%d].productId: invalid uuid", i))
		}
		req.Items[i] = dto.OrderItemRequest{
			ProductID: id,
			Category:  item.Category,
			Price:     item.Price,
			Quantity:  item.Quantity,
		}
	}

	resp, err := h.registrar.register(ctx, in.IdempotencyKey, req)
	if err != nil {
		return nil, httpError(err)
	}
	return &OrderOutput{Body: resp}, nil
}

func (h *HTTPHandler) ListOrders(ctx context.Context, in *ListOrdersInput) (*OrderListOutput, error) {
	var (
		orders []dto.OrderResponse
		err    error
	)
	if in.Email != "" {
		orders, err = h.orders.GetOrderByEmail(ctx, in.Email)
	} else {
		orders, err = h.orders.GetAllOrders(ctx)
	}
	if err != nil {
		return nil, httpError(err)
	}
	return &OrderListOutput{Body: orders}, nil
}

func (h *HTTPHandler) RegisterProduct(ctx context.Context, in *RegisterProductInput) (*ProductOutput, error) {
	if err := in.Body.Validate(); err != nil {
		return nil, httpError(err)
	}
	resp, err := h.products.RegisterProduct(ctx, in.Body)
	if err != nil {
		return nil, httpError(err)
	}
	return &ProductOutput{Body: resp}, nil
}

func (h *HTTPHandler) ListProducts(ctx context.Context, _ *struct{}) (*ProductListOutput, error) {
	products, err := h.products.GetAllProducts(ctx)
	if err != nil {
		return nil, httpError(err)
	}
	return &ProductListOutput{Body: products}, nil
}

func httpError(err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, dto.ErrInvalidRequest):
		return huma.Error400BadRequest(err.Error())
	case errors.Is(err, ErrDuplicateRequest):
		return huma.Error409Conflict("duplicate request")
	default:
		logging.Log(logging.Fields{Service: "http", Status: "error", Message: err.Error()})
		return huma.Error500InternalServerError("internal error")
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		logging.Log(logging.Fields{
			Service:    "http",
			Step:       r.Method + " " + r.URL.Path,
			Status:     http.StatusText(ww.Status()),
			DurationMS: time.Since(start).Milliseconds(),
		})
	})
}
