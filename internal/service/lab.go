// Package service implements the request-level operations shared by the HTTP
// and gRPC transports: defaults, input limits, logging and metrics around the
// pure analysis and cipher functions.
package service

import (
	"context"
	"fmt"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/RowanDark/cryptolab/internal/analysis"
	"github.com/RowanDark/cryptolab/internal/cipher"
	"github.com/RowanDark/cryptolab/internal/errdefs"
	"github.com/RowanDark/cryptolab/internal/logging"
	"github.com/RowanDark/cryptolab/internal/observability/metrics"
)

// ServiceName is reported by Health.
const ServiceName = "CryptoLab API"

// Limits bounds the work one request can trigger.
type Limits struct {
	MaxTextLength  int
	MaxPatternSpan int
}

// DefaultLimits mirrors the config defaults.
func DefaultLimits() Limits {
	return Limits{MaxTextLength: 100_000, MaxPatternSpan: 32}
}

// Lab is safe for concurrent use; it holds no per-request state.
type Lab struct {
	limits   Limits
	registry *cipher.Registry
	logger   *logging.Logger
	metrics  *metrics.Metrics
}

// New builds a Lab. logger and m may be nil.
func New(limits Limits, logger *logging.Logger, m *metrics.Metrics) *Lab {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Lab{
		limits:   limits,
		registry: cipher.NewDefaultRegistry(),
		logger:   logger.WithComponent("lab"),
		metrics:  m,
	}
}

// Registry returns the operation registry used by Pipeline.
func (l *Lab) Registry() *cipher.Registry {
	return l.registry
}

// Metrics returns the collectors the lab records into; nil when disabled.
func (l *Lab) Metrics() *metrics.Metrics {
	return l.metrics
}

func (l *Lab) checkText(operation, text string) error {
	n := utf8.RuneCountInString(text)
	l.metrics.ObserveInput(operation, n)
	if l.limits.MaxTextLength > 0 && n > l.limits.MaxTextLength {
		return errdefs.Invalid("text", fmt.Sprintf("length %d exceeds limit of %d characters", n, l.limits.MaxTextLength))
	}
	return nil
}

// Frequency returns the letter distribution of the text.
func (l *Lab) Frequency(ctx context.Context, req TextRequest) (analysis.FrequencyReport, error) {
	if err := l.checkText("frequency", req.Text); err != nil {
		return analysis.FrequencyReport{}, err
	}
	report := analysis.AnalyzeFrequency(req.Text)
	l.logger.Debug(ctx, "frequency analysed", zap.Int("letters", report.Total))
	return report, nil
}

// Entropy returns the Shannon entropy of the text's letters.
func (l *Lab) Entropy(ctx context.Context, req TextRequest) (EntropyResponse, error) {
	if err := l.checkText("entropy", req.Text); err != nil {
		return EntropyResponse{}, err
	}
	return EntropyResponse{Entropy: analysis.Entropy(req.Text)}, nil
}

// Patterns validates the length bounds and scans for repeated substrings.
func (l *Lab) Patterns(ctx context.Context, req PatternsRequest) (PatternsResponse, error) {
	if err := l.checkText("patterns", req.Text); err != nil {
		return PatternsResponse{}, err
	}
	minLen, maxLen := analysis.DefaultMinPatternLength, analysis.DefaultMaxPatternLength
	if req.MinLength != nil {
		minLen = *req.MinLength
	}
	if req.MaxLength != nil {
		maxLen = *req.MaxLength
	}
	if minLen < 1 {
		return PatternsResponse{}, errdefs.Invalid("min_length", "must be at least 1")
	}
	if maxLen < minLen {
		return PatternsResponse{}, errdefs.Invalid("max_length", "must not be less than min_length")
	}
	if span := maxLen - minLen + 1; l.limits.MaxPatternSpan > 0 && span > l.limits.MaxPatternSpan {
		return PatternsResponse{}, errdefs.Invalid("max_length",
			fmt.Sprintf("range of %d lengths exceeds limit of %d", span, l.limits.MaxPatternSpan))
	}

	report := analysis.FindPatterns(req.Text, minLen, maxLen)
	l.logger.Debug(ctx, "patterns scanned",
		zap.Int("min_length", minLen),
		zap.Int("max_length", maxLen),
		zap.Int("patterns", len(report)),
	)
	return PatternsResponse{Patterns: report}, nil
}

// Classify guesses the cipher family of the text.
func (l *Lab) Classify(ctx context.Context, req TextRequest) (analysis.ClassificationResult, error) {
	if err := l.checkText("classify", req.Text); err != nil {
		return analysis.ClassificationResult{}, err
	}
	result := analysis.Classify(req.Text)
	l.metrics.ObserveClassification(string(result.Classification))
	l.logger.Debug(ctx, "text classified",
		zap.String("label", string(result.Classification)),
		zap.Float64("entropy", result.Entropy),
	)
	return result, nil
}

// Caesar encrypts or decrypts with a fixed shift.
func (l *Lab) Caesar(ctx context.Context, req CaesarRequest) (ResultResponse, error) {
	if err := l.checkText("caesar", req.Text); err != nil {
		return ResultResponse{}, err
	}
	encrypt, err := parseDirection(req.Action, "encrypt", "decrypt")
	if err != nil {
		return ResultResponse{}, err
	}
	shift := cipher.DefaultShift
	if req.Shift != nil {
		shift = *req.Shift
	}
	return ResultResponse{Result: cipher.Caesar(req.Text, shift, encrypt)}, nil
}

// Vigenere encrypts or decrypts with a repeating key.
func (l *Lab) Vigenere(ctx context.Context, req VigenereRequest) (ResultResponse, error) {
	if err := l.checkText("vigenere", req.Text); err != nil {
		return ResultResponse{}, err
	}
	encrypt, err := parseDirection(req.Action, "encrypt", "decrypt")
	if err != nil {
		return ResultResponse{}, err
	}
	key := cipher.DefaultKey
	if req.Key != nil {
		key = *req.Key
	}
	out, err := cipher.Vigenere(req.Text, key, encrypt)
	if err != nil {
		return ResultResponse{}, err
	}
	return ResultResponse{Result: out}, nil
}

// Base64 encodes or decodes the text.
func (l *Lab) Base64(ctx context.Context, req Base64Request) (ResultResponse, error) {
	if err := l.checkText("base64", req.Text); err != nil {
		return ResultResponse{}, err
	}
	encode, err := parseDirection(req.Action, "encode", "decode")
	if err != nil {
		return ResultResponse{}, err
	}
	if encode {
		return ResultResponse{Result: cipher.Base64Encode(req.Text)}, nil
	}
	out, err := cipher.Base64Decode(req.Text)
	if err != nil {
		return ResultResponse{}, err
	}
	return ResultResponse{Result: out}, nil
}

// Pipeline runs a chain of registered operations, or its inverse.
func (l *Lab) Pipeline(ctx context.Context, req PipelineRequest) (ResultResponse, error) {
	if err := l.checkText("pipeline", req.Text); err != nil {
		return ResultResponse{}, err
	}
	if len(req.Operations) == 0 {
		return ResultResponse{}, errdefs.Invalid("operations", "must not be empty")
	}
	for i, op := range req.Operations {
		if _, ok := l.registry.Get(op.Name); !ok {
			return ResultResponse{}, errdefs.Invalid("operations", fmt.Sprintf("unknown operation at step %d: %q", i, op.Name))
		}
	}

	pipeline := &cipher.Pipeline{Operations: req.Operations}
	if req.Reverse {
		reversed, err := pipeline.Reverse(l.registry)
		if err != nil {
			return ResultResponse{}, errdefs.Invalid("operations", err.Error())
		}
		pipeline = reversed
	}

	out, err := pipeline.Execute(ctx, l.registry, []byte(req.Text))
	if err != nil {
		return ResultResponse{}, err
	}
	l.logger.Debug(ctx, "pipeline executed", zap.Int("steps", len(pipeline.Operations)), zap.Bool("reverse", req.Reverse))
	return ResultResponse{Result: string(out)}, nil
}

// Operations lists the registered pipeline operations.
func (l *Lab) Operations() []OperationInfo {
	ops := l.registry.List()
	infos := make([]OperationInfo, 0, len(ops))
	for _, op := range ops {
		_, reversible := op.Reverse()
		infos = append(infos, OperationInfo{
			Name:        op.Name(),
			Type:        string(op.Type()),
			Description: op.Description(),
			Reversible:  reversible,
		})
	}
	return infos
}

// Health reports liveness.
func (l *Lab) Health() HealthResponse {
	return HealthResponse{Status: "healthy", Service: ServiceName}
}

// parseDirection maps an action name onto the forward (true) or inverse
// direction; an empty action means forward.
func parseDirection(action, forward, inverse string) (bool, error) {
	switch action {
	case "", forward:
		return true, nil
	case inverse:
		return false, nil
	default:
		return false, errdefs.Invalid("action", fmt.Sprintf("must be %q or %q, got %q", forward, inverse, action))
	}
}
