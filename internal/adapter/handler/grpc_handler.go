package handler

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/status"

	"github.com/rl1809/coffee-order/internal/core/domain"
	"github.com/rl1809/coffee-order/internal/core/dto"
	"github.com/rl1809/coffee-order/internal/core/service"
	"github.com/rl1809/coffee-order/internal/logging"
	"github.com/rl1809/coffee-order/internal/metrics"
	"github.com/rl1809/coffee-order/internal/port"
)

const (
	OrderServiceName = "coffee.v1.OrderService"
	CodecName        = "json"
)

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// jsonCodec carries the gRPC messages below as JSON, selected by the
// "application/grpc+json" content subtype.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return CodecName }

type RegisterOrderRequest struct {
	IdempotencyKey string           `json:"idempotency_key,omitempty"`
	Order          dto.OrderRequest `json:"order"`
}

type OrderReply struct {
	Order dto.OrderResponse `json:"order"`
}

type GetOrdersByEmailRequest struct {
	Email string `json:"email"`
}

type GetAllOrdersRequest struct{}

type OrderListReply struct {
	Orders []dto.OrderResponse `json:"orders"`
}

type OrderServiceServer interface {
	RegisterOrder(context.Context, *RegisterOrderRequest) (*OrderReply, error)
	GetOrdersByEmail(context.Context, *GetOrdersByEmailRequest) (*OrderListReply, error)
	GetAllOrders(context.Context, *GetAllOrdersRequest) (*OrderListReply, error)
}

func RegisterOrderServiceServer(s grpc.ServiceRegistrar, srv OrderServiceServer) {
	s.RegisterService(&orderServiceDesc, srv)
}

var orderServiceDesc = grpc.ServiceDesc{
	ServiceName: OrderServiceName,
	HandlerType: (*OrderServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "RegisterOrder", Handler: registerOrderHandler},
		{MethodName: "GetOrdersByEmail", Handler: getOrdersByEmailHandler},
		{MethodName: "GetAllOrders", Handler: getAllOrdersHandler},
	},
	Streams: []grpc.StreamDesc{},
}

func registerOrderHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(RegisterOrderRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OrderServiceServer).RegisterOrder(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + OrderServiceName + "/RegisterOrder"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(OrderServiceServer).RegisterOrder(ctx, req.(*RegisterOrderRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func getOrdersByEmailHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetOrdersByEmailRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OrderServiceServer).GetOrdersByEmail(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + OrderServiceName + "/GetOrdersByEmail"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(OrderServiceServer).GetOrdersByEmail(ctx, req.(*GetOrdersByEmailRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func getAllOrdersHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetAllOrdersRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OrderServiceServer).GetAllOrders(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + OrderServiceName + "/GetAllOrders"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(OrderServiceServer).GetAllOrders(ctx, req.(*GetAllOrdersRequest))
	}
	return interceptor(ctx, in, info, handler)
}

type GRPCHandler struct {
	orders    *service.OrderService
	registrar registrar
}

func NewGRPCHandler(orders *service.OrderService, idempotency port.IdempotencyStore, m *metrics.ServerMetrics) *GRPCHandler {
	return &GRPCHandler{
		orders: orders,
		registrar: registrar{
			orders:      orders,
			idempotency: idempotency,
			metrics:     m,
		},
	}
}

func (h *GRPCHandler) RegisterOrder(ctx context.Context, req *RegisterOrderRequest) (*OrderReply, error) {
	resp, err := h.registrar.register(ctx, req.IdempotencyKey, req.Order)
	if err != nil {
		return nil, grpcError(err)
	}
	return &OrderReply{Order: resp}, nil
}

func (h *GRPCHandler) GetOrdersByEmail(ctx context.Context, req *GetOrdersByEmailRequest) (*OrderListReply, error) {
	orders, err := h.orders.GetOrderByEmail(ctx, req.Email)
	if err != nil {
		return nil, grpcError(err)
	}
	return &OrderListReply{Orders: orders}, nil
}

func (h *GRPCHandler) GetAllOrders(ctx context.Context, _ *GetAllOrdersRequest) (*OrderListReply, error) {
	orders, err := h.orders.GetAllOrders(ctx)
	if err != nil {
		return nil, grpcError(err)
	}
	return &OrderListReply{Orders: orders}, nil
}

func grpcError(err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, dto.ErrInvalidRequest):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, ErrDuplicateRequest):
		return status.Error(codes.AlreadyExists, "duplicate request")
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

// LoggingInterceptor logs every unary call with its status code.
func LoggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	fields := logging.Fields{
		Service:    "grpc",
		Step:       info.FullMethod,
		Status:     status.Code(err).String(),
		DurationMS: time.Since(start).Milliseconds(),
	}
	if err != nil {
		fields.Message = err.Error()
	}
	logging.Log(fields)

	return resp, err
}
