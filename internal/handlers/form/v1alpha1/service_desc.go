package v1alpha1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "sheetform.form.v1alpha1.FormService"

// Method names
const (
	MethodStartSession      = "StartSession"
	MethodSendMessage       = "SendMessage"
	MethodGetSession        = "GetSession"
	MethodCancelSession     = "CancelSession"
	MethodRollAbilityScores = "RollAbilityScores"
)

// FormServiceServer is the server API for the form service. Requests and
// responses are google.protobuf.Struct messages.
type FormServiceServer interface {
	StartSession(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SendMessage(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetSession(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CancelSession(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RollAbilityScores(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(FormServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, call unaryCall) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(FormServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: FullMethod(method),
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(FormServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// FormServiceDesc describes the form service for grpc.Server registration
var FormServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FormServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: MethodStartSession,
			Handler:    unaryHandler(MethodStartSession, FormServiceServer.StartSession),
		},
		{
			MethodName: MethodSendMessage,
			Handler:    unaryHandler(MethodSendMessage, FormServiceServer.SendMessage),
		},
		{
			MethodName: MethodGetSession,
			Handler:    unaryHandler(MethodGetSession, FormServiceServer.GetSession),
		},
		{
			MethodName: MethodCancelSession,
			Handler:    unaryHandler(MethodCancelSession, FormServiceServer.CancelSession),
		},
		{
			MethodName: MethodRollAbilityScores,
			Handler:    unaryHandler(MethodRollAbilityScores, FormServiceServer.RollAbilityScores),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "sheetform/form/v1alpha1/form.proto",
}

// RegisterFormServiceServer registers srv with s
func RegisterFormServiceServer(s grpc.ServiceRegistrar, srv FormServiceServer) {
	s.RegisterService(&FormServiceDesc, srv)
}

// FullMethod returns the "/service/method" path of a method
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// FormServiceClient calls the form service over a client connection
type FormServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewFormServiceClient wraps a connection
func NewFormServiceClient(cc grpc.ClientConnInterface) *FormServiceClient {
	return &FormServiceClient{cc: cc}
}

// Call invokes method with req
func (c *FormServiceClient) Call(ctx context.Context, method string, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(method), req, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
