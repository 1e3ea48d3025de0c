package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// The dashboard service exchanges google.protobuf.Struct messages holding the
// JSON form of the report and order types.
const (
	ServiceName = "florist.dashboard.v1.DashboardService"

	MethodGetReport        = "/" + ServiceName + "/GetReport"
	MethodListActiveOrders = "/" + ServiceName + "/ListActiveOrders"
	MethodAdvanceOrder     = "/" + ServiceName + "/AdvanceOrder"
)

// DashboardServiceServer is the server API for the dashboard service.
type DashboardServiceServer interface {
	GetReport(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListActiveOrders(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AdvanceOrder(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterDashboardServiceServer registers srv with s.
func RegisterDashboardServiceServer(s grpc.ServiceRegistrar, srv DashboardServiceServer) {
	s.RegisterService(&dashboardServiceDesc, srv)
}

var dashboardServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DashboardServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetReport", Handler: unaryHandler(MethodGetReport, DashboardServiceServer.GetReport)},
		{MethodName: "ListActiveOrders", Handler: unaryHandler(MethodListActiveOrders, DashboardServiceServer.ListActiveOrders)},
		{MethodName: "AdvanceOrder", Handler: unaryHandler(MethodAdvanceOrder, DashboardServiceServer.AdvanceOrder)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "florist/dashboard/v1/dashboard.proto",
}

type structMethod func(DashboardServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call structMethod) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(DashboardServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(DashboardServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// DashboardServiceClient is the client API for the dashboard service.
type DashboardServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewDashboardServiceClient(cc grpc.ClientConnInterface) *DashboardServiceClient {
	return &DashboardServiceClient{cc: cc}
}

func (c *DashboardServiceClient) GetReport(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodGetReport, in, opts...)
}

func (c *DashboardServiceClient) ListActiveOrders(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodListActiveOrders, in, opts...)
}

func (c *DashboardServiceClient) AdvanceOrder(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodAdvanceOrder, in, opts...)
}

func (c *DashboardServiceClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
