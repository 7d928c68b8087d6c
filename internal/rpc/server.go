package rpc

import (
	"context"
	"errors"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/RowanDark/cryptolab/internal/logging"
	"github.com/RowanDark/cryptolab/internal/observability/metrics"
	"github.com/RowanDark/cryptolab/internal/service"
)

const gracefulStopTimeout = 2 * time.Second

// Server implements CryptoLabServer on top of a service.Lab. Errors are
// returned unconverted; ErrorUnaryInterceptor maps them to status codes.
type Server struct {
	lab *service.Lab
}

// NewServer wraps lab.
func NewServer(lab *service.Lab) *Server {
	return &Server{lab: lab}
}

// NewGRPCServer builds a grpc.Server with the CryptoLab service registered
// behind the standard interceptor chain.
func NewGRPCServer(lab *service.Lab, logger *logging.Logger, m *metrics.Metrics, opts ...grpc.ServerOption) *grpc.Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logger.WithComponent("grpc")
	opts = append([]grpc.ServerOption{
		grpc.ChainUnaryInterceptor(
			RequestIDUnaryInterceptor(),
			LoggingUnaryInterceptor(logger),
			ErrorUnaryInterceptor(),
			MetricsUnaryInterceptor(m),
			RecoveryUnaryInterceptor(logger),
		),
	}, opts...)
	srv := grpc.NewServer(opts...)
	RegisterCryptoLabServer(srv, NewServer(lab))
	return srv
}

// Serve runs srv on lis until ctx is cancelled, then stops it gracefully,
// forcing a stop if in-flight calls take too long.
func Serve(ctx context.Context, srv *grpc.Server, lis net.Listener) error {
	go func() {
		<-ctx.Done()

		done := make(chan struct{})
		go func() {
			srv.GracefulStop()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(gracefulStopTimeout):
			srv.Stop()
		}
	}()

	if err := srv.Serve(lis); err != nil {
		if errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return err
	}
	return nil
}

func (s *Server) Frequency(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return call(ctx, in, s.lab.Frequency)
}

func (s *Server) Entropy(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return call(ctx, in, s.lab.Entropy)
}

func (s *Server) Patterns(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return call(ctx, in, s.lab.Patterns)
}

func (s *Server) Classify(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return call(ctx, in, s.lab.Classify)
}

func (s *Server) Caesar(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return call(ctx, in, s.lab.Caesar)
}

func (s *Server) Vigenere(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return call(ctx, in, s.lab.Vigenere)
}

func (s *Server) Base64(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return call(ctx, in, s.lab.Base64)
}

func (s *Server) Pipeline(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return call(ctx, in, s.lab.Pipeline)
}

func (s *Server) Operations(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return toStruct(OperationsResponse{Operations: s.lab.Operations()})
}

func (s *Server) Health(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return toStruct(s.lab.Health())
}

// OperationsResponse is the reply of the Operations method.
type OperationsResponse struct {
	Operations []service.OperationInfo `json:"operations"`
}

func call[Req, Resp any](ctx context.Context, in *structpb.Struct, fn func(context.Context, Req) (Resp, error)) (*structpb.Struct, error) {
	var req Req
	if err := fromStruct(in, &req); err != nil {
		return nil, err
	}
	resp, err := fn(ctx, req)
	if err != nil {
		return nil, err
	}
	return toStruct(resp)
}

var _ CryptoLabServer = (*Server)(nil)
