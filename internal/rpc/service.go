package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully-qualified gRPC service name advertised over
// the wire, standing in for the descriptor protoc-gen-go-grpc would emit.
const ServiceName = "adeploy.DeployService"

// DeployServiceServer is implemented by internal/server's RPC handler.
type DeployServiceServer interface {
	Deploy(context.Context, *DeployRequest) (*DeployResponse, error)
}

func deployHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(DeployRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DeployServiceServer).Deploy(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/" + ServiceName + "/Deploy",
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DeployServiceServer).Deploy(ctx, req.(*DeployRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// ServiceDesc is the hand-maintained equivalent of the descriptor
// protoc-gen-go-grpc would generate for a single-method Deploy service.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DeployServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Deploy",
			Handler:    deployHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "adeploy.proto",
}

// RegisterDeployServiceServer attaches srv to s under ServiceDesc.
func RegisterDeployServiceServer(s grpc.ServiceRegistrar, srv DeployServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// DeployServiceClient is the client-side stub for the Deploy RPC.
type DeployServiceClient interface {
	Deploy(ctx context.Context, in *DeployRequest, opts ...grpc.CallOption) (*DeployResponse, error)
}

type deployServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewDeployServiceClient wraps cc with the Deploy RPC stub.
func NewDeployServiceClient(cc grpc.ClientConnInterface) DeployServiceClient {
	return &deployServiceClient{cc: cc}
}

func (c *deployServiceClient) Deploy(ctx context.Context, in *DeployRequest, opts ...grpc.CallOption) (*DeployResponse, error) {
	out := new(DeployResponse)
	err := c.cc.Invoke(ctx, "/"+ServiceName+"/Deploy", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}
