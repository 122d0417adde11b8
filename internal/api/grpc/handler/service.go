package handler

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// GuardServiceName is the fully qualified name of the guard service.
const GuardServiceName = "identity.v1.Guard"

const (
	guardAuthenticateMethod = "/" + GuardServiceName + "/Authenticate"
	guardAuthorizeMethod    = "/" + GuardServiceName + "/Authorize"
)

// GuardServer is served to out-of-process callers that need to resolve a
// bearer token to an identity. Messages are protobuf well-known types so no
// generated code is required on either side.
type GuardServer interface {
	// Authenticate returns the identity behind the caller's bearer token.
	Authenticate(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	// Authorize does the same and additionally requires one of req["roles"].
	Authorize(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// GuardServiceDesc describes identity.v1.Guard for grpc.Server registration.
var GuardServiceDesc = grpc.ServiceDesc{
	ServiceName: GuardServiceName,
	HandlerType: (*GuardServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Authenticate", Handler: guardAuthenticateHandler},
		{MethodName: "Authorize", Handler: guardAuthorizeHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "identity/v1/guard.proto",
}

// RegisterGuardServer registers srv on s.
func RegisterGuardServer(s grpc.ServiceRegistrar, srv GuardServer) {
	s.RegisterService(&GuardServiceDesc, srv)
}

func guardAuthenticateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(GuardServer).Authenticate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: guardAuthenticateMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(GuardServer).Authenticate(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func guardAuthorizeHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(GuardServer).Authorize(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: guardAuthorizeMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(GuardServer).Authorize(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// GuardClient calls identity.v1.Guard.
type GuardClient struct {
	cc grpc.ClientConnInterface
}

func NewGuardClient(cc grpc.ClientConnInterface) *GuardClient {
	return &GuardClient{cc: cc}
}

func (c *GuardClient) Authenticate(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, guardAuthenticateMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *GuardClient) Authorize(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, guardAuthorizeMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
