// Package rpc exposes the CryptoLab operations as the gRPC service
// cryptolab.v1.CryptoLab. Messages are google.protobuf.Struct values whose
// fields mirror the JSON bodies of the HTTP API, so no generated code is
// needed on either side.
package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "cryptolab.v1.CryptoLab"

// CryptoLabServer is the server API for the CryptoLab service.
type CryptoLabServer interface {
	Frequency(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Entropy(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Patterns(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Classify(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Caesar(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Vigenere(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Base64(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Pipeline(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Operations(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Health(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(CryptoLabServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// ServiceDesc describes the CryptoLab service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CryptoLabServer)(nil),
	Methods: []grpc.MethodDesc{
		methodDesc("Frequency", CryptoLabServer.Frequency),
		methodDesc("Entropy", CryptoLabServer.Entropy),
		methodDesc("Patterns", CryptoLabServer.Patterns),
		methodDesc("Classify", CryptoLabServer.Classify),
		methodDesc("Caesar", CryptoLabServer.Caesar),
		methodDesc("Vigenere", CryptoLabServer.Vigenere),
		methodDesc("Base64", CryptoLabServer.Base64),
		methodDesc("Pipeline", CryptoLabServer.Pipeline),
		methodDesc("Operations", CryptoLabServer.Operations),
		methodDesc("Health", CryptoLabServer.Health),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "cryptolab/v1/cryptolab.proto",
}

// RegisterCryptoLabServer registers srv on s.
func RegisterCryptoLabServer(s grpc.ServiceRegistrar, srv CryptoLabServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func fullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

func methodDesc(name string, call unaryMethod) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(CryptoLabServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: fullMethod(name),
			}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(CryptoLabServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
