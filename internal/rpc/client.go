package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/RowanDark/cryptolab/internal/analysis"
	"github.com/RowanDark/cryptolab/internal/logging"
	"github.com/RowanDark/cryptolab/internal/service"
)

// Client calls a remote CryptoLab service using the service package's
// request and response types.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps an existing connection.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Dial opens a plaintext connection to addr. Extra options are appended after
// the insecure transport credentials.
func Dial(addr string, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	return grpc.NewClient(addr, opts...)
}

func (c *Client) Frequency(ctx context.Context, req service.TextRequest) (analysis.FrequencyReport, error) {
	var out analysis.FrequencyReport
	err := c.invoke(ctx, "Frequency", req, &out)
	return out, err
}

func (c *Client) Entropy(ctx context.Context, req service.TextRequest) (service.EntropyResponse, error) {
	var out service.EntropyResponse
	err := c.invoke(ctx, "Entropy", req, &out)
	return out, err
}

func (c *Client) Patterns(ctx context.Context, req service.PatternsRequest) (service.PatternsResponse, error) {
	var out service.PatternsResponse
	err := c.invoke(ctx, "Patterns", req, &out)
	return out, err
}

func (c *Client) Classify(ctx context.Context, req service.TextRequest) (analysis.ClassificationResult, error) {
	var out analysis.ClassificationResult
	err := c.invoke(ctx, "Classify", req, &out)
	return out, err
}

func (c *Client) Caesar(ctx context.Context, req service.CaesarRequest) (service.ResultResponse, error) {
	var out service.ResultResponse
	err := c.invoke(ctx, "Caesar", req, &out)
	return out, err
}

func (c *Client) Vigenere(ctx context.Context, req service.VigenereRequest) (service.ResultResponse, error) {
	var out service.ResultResponse
	err := c.invoke(ctx, "Vigenere", req, &out)
	return out, err
}

func (c *Client) Base64(ctx context.Context, req service.Base64Request) (service.ResultResponse, error) {
	var out service.ResultResponse
	err := c.invoke(ctx, "Base64", req, &out)
	return out, err
}

func (c *Client) Pipeline(ctx context.Context, req service.PipelineRequest) (service.ResultResponse, error) {
	var out service.ResultResponse
	err := c.invoke(ctx, "Pipeline", req, &out)
	return out, err
}

func (c *Client) Operations(ctx context.Context) ([]service.OperationInfo, error) {
	var out OperationsResponse
	err := c.invoke(ctx, "Operations", struct{}{}, &out)
	return out.Operations, err
}

func (c *Client) Health(ctx context.Context) (service.HealthResponse, error) {
	var out service.HealthResponse
	err := c.invoke(ctx, "Health", struct{}{}, &out)
	return out, err
}

func (c *Client) invoke(ctx context.Context, method string, req, out any) error {
	in, err := toStruct(req)
	if err != nil {
		return err
	}
	if id := logging.RequestIDFromContext(ctx); id != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, RequestIDKey, id)
	}
	reply := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod(method), in, reply); err != nil {
		return err
	}
	return fromStruct(reply, out)
}
