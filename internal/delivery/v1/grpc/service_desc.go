package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName — полное имя gRPC-сервиса. Сообщения — google.protobuf.Struct с теми же JSON-полями, что и в HTTP API.
const ServiceName = "intelligence.v1.IntelligenceService"

type IntelligenceServer interface {
	Recommend(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	Classify(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	GenerateTags(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	Rebuild(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(srv IntelligenceServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)

var IntelligenceServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*IntelligenceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Recommend", IntelligenceServer.Recommend),
		unary("Classify", IntelligenceServer.Classify),
		unary("GenerateTags", IntelligenceServer.GenerateTags),
		unary("Rebuild", IntelligenceServer.Rebuild),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "intelligence/v1/intelligence.proto",
}

// FullMethod возвращает путь метода для grpc.ClientConn.Invoke.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

func unary(method string, call unaryCall) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}

			if interceptor == nil {
				return call(srv.(IntelligenceServer), ctx, in)
			}

			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: FullMethod(method),
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(IntelligenceServer), ctx, req.(*structpb.Struct))
			}

			return interceptor(ctx, in, info, handler)
		},
	}
}
