package rpc

import (
	"bytes"
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/RowanDark/cryptolab/internal/analysis"
	"github.com/RowanDark/cryptolab/internal/cipher"
	"github.com/RowanDark/cryptolab/internal/errdefs"
	"github.com/RowanDark/cryptolab/internal/logging"
	"github.com/RowanDark/cryptolab/internal/observability/metrics"
	"github.com/RowanDark/cryptolab/internal/service"
)

type testEnv struct {
	client  *Client
	conn    *grpc.ClientConn
	metrics *metrics.Metrics
	logs    *bytes.Buffer
}

func startServer(t *testing.T) *testEnv {
	t.Helper()

	logs := &bytes.Buffer{}
	logger, err := logging.New("test", logging.DefaultConfig(), logging.WithoutStdout(), logging.WithWriter(logs))
	require.NoError(t, err)
	m := metrics.New()

	lis := bufconn.Listen(1 << 20)
	srv := NewGRPCServer(service.New(service.DefaultLimits(), nil, nil), logger, m)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- Serve(ctx, srv, lis) }()

	conn, err := Dial("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
		cancel()
		select {
		case err := <-errCh:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("grpc server did not stop")
		}
	})

	return &testEnv{client: NewClient(conn), conn: conn, metrics: m, logs: logs}
}

func intPtr(v int) *int { return &v }

func TestAnalysisMethods(t *testing.T) {
	env := startServer(t)
	ctx := context.Background()

	freq, err := env.client.Frequency(ctx, service.TextRequest{Text: "Hello"})
	require.NoError(t, err)
	assert.Equal(t, 5, freq.Total)
	assert.Equal(t, 2, freq.Counts["l"])
	assert.InDelta(t, 40.0, freq.Percentages["l"], 1e-9)

	ent, err := env.client.Entropy(ctx, service.TextRequest{Text: "abcdefghijklmnopqrstuvwxyz"})
	require.NoError(t, err)
	assert.InDelta(t, analysis.MaxEntropy, ent.Entropy, 1e-9)

	pat, err := env.client.Patterns(ctx, service.PatternsRequest{Text: "abcabcabc", MinLength: intPtr(3), MaxLength: intPtr(3)})
	require.NoError(t, err)
	require.NotEmpty(t, pat.Patterns)
	assert.Equal(t, analysis.PatternEntry{Pattern: "abc", Count: 3, Positions: []int{0, 3, 6}}, pat.Patterns[0])

	cls, err := env.client.Classify(ctx, service.TextRequest{Text: "Hello World"})
	require.NoError(t, err)
	assert.Equal(t, analysis.LabelUnknown, cls.Classification)
	assert.Equal(t, 50, cls.Confidence)
}

func TestCipherMethods(t *testing.T) {
	env := startServer(t)
	ctx := context.Background()

	caesar, err := env.client.Caesar(ctx, service.CaesarRequest{Text: "xyz"})
	require.NoError(t, err)
	assert.Equal(t, "abc", caesar.Result)

	key := "LEMON"
	vig, err := env.client.Vigenere(ctx, service.VigenereRequest{Text: "LXFOPVEFRNHR", Key: &key, Action: "decrypt"})
	require.NoError(t, err)
	assert.Equal(t, "ATTACKATDAWN", vig.Result)

	b64, err := env.client.Base64(ctx, service.Base64Request{Text: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "aGVsbG8=", b64.Result)

	pipe, err := env.client.Pipeline(ctx, service.PipelineRequest{
		Text: "hello",
		Operations: []cipher.OperationConfig{
			{Name: "vigenere_encrypt", Parameters: map[string]interface{}{"key": "KEY"}},
			{Name: "base64_encode"},
		},
		Reverse: false,
	})
	require.NoError(t, err)
	back, err := env.client.Pipeline(ctx, service.PipelineRequest{
		Text: pipe.Result,
		Operations: []cipher.OperationConfig{
			{Name: "vigenere_encrypt", Parameters: map[string]interface{}{"key": "KEY"}},
			{Name: "base64_encode"},
		},
		Reverse: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", back.Result)

	ops, err := env.client.Operations(ctx)
	require.NoError(t, err)
	assert.Len(t, ops, 6)

	health, err := env.client.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, "healthy", health.Status)
}

func TestErrorsMapToStatusCodes(t *testing.T) {
	env := startServer(t)
	ctx := context.Background()

	empty := ""
	_, err := env.client.Vigenere(ctx, service.VigenereRequest{Text: "abc", Key: &empty})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Contains(t, status.Convert(err).Message(), "key")

	_, err = env.client.Base64(ctx, service.Base64Request{Text: "@@@", Action: "decode"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = env.client.Patterns(ctx, service.PatternsRequest{Text: "abc", MinLength: intPtr(4), MaxLength: intPtr(2)})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	// a type mismatch in the request struct is rejected before reaching the lab
	var out service.ResultResponse
	err = env.client.invoke(ctx, "Caesar", map[string]any{"text": "abc", "shift": "three"}, &out)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestRequestIDRoundTrip(t *testing.T) {
	env := startServer(t)

	in, err := toStruct(service.TextRequest{Text: "abc"})
	require.NoError(t, err)
	var header metadata.MD
	ctx := metadata.AppendToOutgoingContext(context.Background(), RequestIDKey, "trace-7")
	err = env.conn.Invoke(ctx, fullMethod("Entropy"), in, new(structpb.Struct), grpc.Header(&header))
	require.NoError(t, err)

	assert.Equal(t, []string{"trace-7"}, header.Get(RequestIDKey))
	assert.Contains(t, env.logs.String(), `"request_id":"trace-7"`)
	assert.Contains(t, env.logs.String(), `"rpc.method":"Entropy"`)

	// the client forwards the ID stored on its context
	_, err = env.client.Health(logging.ContextWithRequestID(context.Background(), "trace-8"))
	require.NoError(t, err)
	assert.Contains(t, env.logs.String(), `"request_id":"trace-8"`)
}

func TestMetricsRecorded(t *testing.T) {
	env := startServer(t)
	ctx := context.Background()

	_, err := env.client.Classify(ctx, service.TextRequest{Text: "abc"})
	require.NoError(t, err)
	_, err = env.client.Base64(ctx, service.Base64Request{Text: "%%", Action: "decode"})
	require.Error(t, err)

	n, err := testutil.GatherAndCount(env.metrics.Registry(), "cryptolab_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	n, err = testutil.GatherAndCount(env.metrics.Registry(), "cryptolab_request_errors_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRecoveryInterceptor(t *testing.T) {
	interceptor := RecoveryUnaryInterceptor(logging.NewNop())
	info := &grpc.UnaryServerInfo{FullMethod: fullMethod("Classify")}

	_, err := interceptor(context.Background(), nil, info, func(context.Context, interface{}) (interface{}, error) {
		panic("boom")
	})
	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestToStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want codes.Code
	}{
		{"validation", errdefs.Invalid("key", "must not be empty"), codes.InvalidArgument},
		{"wrapped decode", errors.Join(errors.New("step 1"), &errdefs.DecodeError{Reason: "bad"}), codes.InvalidArgument},
		{"deadline", context.DeadlineExceeded, codes.DeadlineExceeded},
		{"canceled", context.Canceled, codes.Canceled},
		{"status passthrough", status.Error(codes.Unavailable, "down"), codes.Unavailable},
		{"unknown", errors.New("boom"), codes.Internal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, status.Code(toStatus(tt.err)))
		})
	}

	assert.Equal(t, "internal error", status.Convert(toStatus(errors.New("secret detail"))).Message())
}

func TestSplitMethod(t *testing.T) {
	svc, method := splitMethod("/cryptolab.v1.CryptoLab/Classify")
	assert.Equal(t, "cryptolab.v1.CryptoLab", svc)
	assert.Equal(t, "Classify", method)

	svc, method = splitMethod("bogus")
	assert.Equal(t, "bogus", svc)
	assert.Empty(t, method)
}
