package handler

import (
	"context"

	"google.golang.org/grpc"
)

// OrderServiceClient calls the order service over a gRPC connection using
// the JSON codec.
type OrderServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewOrderServiceClient(cc grpc.ClientConnInterface) *OrderServiceClient {
	return &OrderServiceClient{cc: cc}
}

func (c *OrderServiceClient) RegisterOrder(ctx context.Context, in *RegisterOrderRequest, opts ...grpc.CallOption) (*OrderReply, error) {
	out := new(OrderReply)
	if err := c.invoke(ctx, "RegisterOrder", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OrderServiceClient) GetOrdersByEmail(ctx context.Context, in *GetOrdersByEmailRequest, opts ...grpc.CallOption) (*OrderListReply, error) {
	out := new(OrderListReply)
	if err := c.invoke(ctx, "GetOrdersByEmail", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OrderServiceClient) GetAllOrders(ctx context.Context, in *GetAllOrdersRequest, opts ...grpc.CallOption) (*OrderListReply, error) {
	out := new(OrderListReply)
	if err := c.invoke(ctx, "GetAllOrders", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OrderServiceClient) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, "/"+OrderServiceName+"/"+method, in, out, opts...)
}
