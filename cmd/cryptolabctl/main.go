// Command cryptolabctl runs CryptoLab analyses and ciphers from the command
// line, either in-process or against a running cryptolabd over gRPC.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc/status"

	"github.com/RowanDark/cryptolab/internal/analysis"
	"github.com/RowanDark/cryptolab/internal/rpc"
	"github.com/RowanDark/cryptolab/internal/service"
)

var version = "dev"

const (
	outputJSON = "json"
	outputText = "text"
)

// backend is satisfied by the in-process lab and the gRPC client.
type backend interface {
	Frequency(context.Context, service.TextRequest) (analysis.FrequencyReport, error)
	Entropy(context.Context, service.TextRequest) (service.EntropyResponse, error)
	Patterns(context.Context, service.PatternsRequest) (service.PatternsResponse, error)
	Classify(context.Context, service.TextRequest) (analysis.ClassificationResult, error)
	Caesar(context.Context, service.CaesarRequest) (service.ResultResponse, error)
	Vigenere(context.Context, service.VigenereRequest) (service.ResultResponse, error)
	Base64(context.Context, service.Base64Request) (service.ResultResponse, error)
	Pipeline(context.Context, service.PipelineRequest) (service.ResultResponse, error)
	Operations(context.Context) ([]service.OperationInfo, error)
	Health(context.Context) (service.HealthResponse, error)
}

type localBackend struct {
	*service.Lab
}

func (l localBackend) Operations(context.Context) ([]service.OperationInfo, error) {
	return l.Lab.Operations(), nil
}

func (l localBackend) Health(context.Context) (service.HealthResponse, error) {
	return l.Lab.Health(), nil
}

type options struct {
	remote  string
	output  string
	timeout time.Duration
}

// app carries the state shared by all subcommands.
type app struct {
	opts options
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// connect returns the in-process lab, or a gRPC client when opts.remote is set.
func connect(opts options) (backend, func() error, error) {
	if opts.remote == "" {
		return localBackend{service.New(service.DefaultLimits(), nil, nil)}, func() error { return nil }, nil
	}
	conn, err := rpc.Dial(opts.remote)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to %s: %w", opts.remote, err)
	}
	return rpc.NewClient(conn), conn.Close, nil
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "cryptolabctl",
		Short: "Classical cryptanalysis toolkit",
		Long: `cryptolabctl computes letter frequencies, entropy and repeated patterns,
classifies the likely cipher family of a text, and runs Caesar, Vigenère and
Base64 transforms.

Text is taken from the arguments, or from stdin when none are given or the
only argument is "-". Operations run in-process unless --remote names a
cryptolabd gRPC address.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch a.opts.output {
			case outputJSON, outputText:
				return nil
			default:
				return fmt.Errorf("unsupported output format %q (want %s or %s)", a.opts.output, outputText, outputJSON)
			}
		},
	}

	root.PersistentFlags().StringVar(&a.opts.remote, "remote", "", "cryptolabd gRPC address (host:port); empty runs in-process")
	root.PersistentFlags().StringVarP(&a.opts.output, "output", "o", outputText, "output format: text or json")
	root.PersistentFlags().DurationVar(&a.opts.timeout, "timeout", 30*time.Second, "deadline for each operation")

	root.AddCommand(
		a.frequencyCmd(),
		a.entropyCmd(),
		a.patternsCmd(),
		a.classifyCmd(),
		a.caesarCmd(),
		a.vigenereCmd(),
		a.base64Cmd(),
		a.pipelineCmd(),
		a.operationsCmd(),
		a.healthCmd(),
	)
	return root
}

// run connects to the backend, calls fn under the configured timeout and
// renders its result.
func (a *app) run(cmd *cobra.Command, fn func(context.Context, backend) (any, error), text func(io.Writer, any) error) error {
	b, closeFn, err := connect(a.opts)
	if err != nil {
		return err
	}
	defer func() { _ = closeFn() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), a.opts.timeout)
	defer cancel()

	result, err := fn(ctx, b)
	if err != nil {
		return describe(err)
	}
	out := cmd.OutOrStdout()
	if a.opts.output == outputJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	return text(out, result)
}

// readInput joins the arguments, or reads stdin when there are none. A single
// trailing line terminator is dropped from stdin.
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read from stdin: %w", err)
		}
		text := string(data)
		if strings.HasSuffix(text, "\n") {
			text = strings.TrimSuffix(strings.TrimSuffix(text, "\n"), "\r")
		}
		return text, nil
	}
	return strings.Join(args, " "), nil
}

// describe strips the gRPC envelope so remote and local errors read alike.
func describe(err error) error {
	if st, ok := status.FromError(err); ok {
		return errors.New(st.Message())
	}
	return err
}
