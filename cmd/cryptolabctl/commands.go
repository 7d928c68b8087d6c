package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/RowanDark/cryptolab/internal/analysis"
	"github.com/RowanDark/cryptolab/internal/cipher"
	"github.com/RowanDark/cryptolab/internal/service"
)

func (a *app) frequencyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "frequency [text]",
		Short: "Count letter frequencies",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			return a.run(cmd, func(ctx context.Context, b backend) (any, error) {
				return b.Frequency(ctx, service.TextRequest{Text: text})
			}, printFrequency)
		},
	}
}

func (a *app) entropyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "entropy [text]",
		Short: "Compute the Shannon entropy of the letters in a text",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			return a.run(cmd, func(ctx context.Context, b backend) (any, error) {
				return b.Entropy(ctx, service.TextRequest{Text: text})
			}, func(w io.Writer, v any) error {
				_, err := fmt.Fprintf(w, "%.4f\n", v.(service.EntropyResponse).Entropy)
				return err
			})
		},
	}
}

func (a *app) patternsCmd() *cobra.Command {
	var minLength, maxLength int
	cmd := &cobra.Command{
		Use:   "patterns [text]",
		Short: "Find repeated letter sequences",
		Example: `  # trigrams only
  cryptolabctl patterns --min 3 --max 3 "abcabcabc"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			req := service.PatternsRequest{Text: text}
			if cmd.Flags().Changed("min") {
				req.MinLength = &minLength
			}
			if cmd.Flags().Changed("max") {
				req.MaxLength = &maxLength
			}
			return a.run(cmd, func(ctx context.Context, b backend) (any, error) {
				return b.Patterns(ctx, req)
			}, printPatterns)
		},
	}
	cmd.Flags().IntVar(&minLength, "min", analysis.DefaultMinPatternLength, "shortest pattern length")
	cmd.Flags().IntVar(&maxLength, "max", analysis.DefaultMaxPatternLength, "longest pattern length")
	return cmd
}

func (a *app) classifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify [text]",
		Short: "Guess the cipher family of a text",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			return a.run(cmd, func(ctx context.Context, b backend) (any, error) {
				return b.Classify(ctx, service.TextRequest{Text: text})
			}, func(w io.Writer, v any) error {
				r := v.(analysis.ClassificationResult)
				_, err := fmt.Fprintf(w, "%s (confidence %d%%, entropy %.4f)\n%s\n", r.Classification, r.Confidence, r.Entropy, r.Details)
				return err
			})
		},
	}
}

func (a *app) caesarCmd() *cobra.Command {
	var shift int
	var decrypt bool
	cmd := &cobra.Command{
		Use:   "caesar [text]",
		Short: "Shift letters by a fixed amount",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			req := service.CaesarRequest{Text: text, Shift: &shift, Action: direction(decrypt, "encrypt", "decrypt")}
			return a.run(cmd, func(ctx context.Context, b backend) (any, error) {
				return b.Caesar(ctx, req)
			}, printResult)
		},
	}
	cmd.Flags().IntVarP(&shift, "shift", "s", cipher.DefaultShift, "number of positions to shift")
	cmd.Flags().BoolVarP(&decrypt, "decrypt", "d", false, "decrypt instead of encrypt")
	return cmd
}

func (a *app) vigenereCmd() *cobra.Command {
	var key string
	var decrypt bool
	cmd := &cobra.Command{
		Use:   "vigenere [text]",
		Short: "Apply a Vigenère cipher with a repeating key",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			req := service.VigenereRequest{Text: text, Key: &key, Action: direction(decrypt, "encrypt", "decrypt")}
			return a.run(cmd, func(ctx context.Context, b backend) (any, error) {
				return b.Vigenere(ctx, req)
			}, printResult)
		},
	}
	cmd.Flags().StringVarP(&key, "key", "k", cipher.DefaultKey, "cipher key, upper-cased and repeated over the letters of the text")
	cmd.Flags().BoolVarP(&decrypt, "decrypt", "d", false, "decrypt instead of encrypt")
	return cmd
}

func (a *app) base64Cmd() *cobra.Command {
	var decode bool
	cmd := &cobra.Command{
		Use:   "base64 [text]",
		Short: "Encode or decode standard Base64",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			req := service.Base64Request{Text: text, Action: direction(decode, "encode", "decode")}
			return a.run(cmd, func(ctx context.Context, b backend) (any, error) {
				return b.Base64(ctx, req)
			}, printResult)
		},
	}
	cmd.Flags().BoolVarP(&decode, "decode", "d", false, "decode instead of encode")
	return cmd
}

func (a *app) pipelineCmd() *cobra.Command {
	var steps []string
	var reverse bool
	cmd := &cobra.Command{
		Use:   "pipeline [text]",
		Short: "Chain registered operations",
		Example: `  # encrypt then encode
  cryptolabctl pipeline --op caesar_encrypt:shift=5 --op base64_encode "attack at dawn"

  # undo the same chain
  cryptolabctl pipeline --reverse --op caesar_encrypt:shift=5 --op base64_encode Znl5Zmhw...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ops, err := parseSteps(steps)
			if err != nil {
				return err
			}
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			req := service.PipelineRequest{Text: text, Operations: ops, Reverse: reverse}
			return a.run(cmd, func(ctx context.Context, b backend) (any, error) {
				return b.Pipeline(ctx, req)
			}, printResult)
		},
	}
	cmd.Flags().StringArrayVar(&steps, "op", nil, "operation as name[:param=value,...]; repeat to chain")
	cmd.Flags().BoolVar(&reverse, "reverse", false, "run the inverse of the chain")
	return cmd
}

func (a *app) operationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "operations",
		Short: "List operations usable in a pipeline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, b backend) (any, error) {
				return b.Operations(ctx)
			}, printOperations)
		},
	}
}

func (a *app) healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the backend is serving",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, b backend) (any, error) {
				return b.Health(ctx)
			}, func(w io.Writer, v any) error {
				h := v.(service.HealthResponse)
				_, err := fmt.Fprintf(w, "%s: %s\n", h.Service, h.Status)
				return err
			})
		},
	}
}

func direction(inverse bool, forward, backward string) string {
	if inverse {
		return backward
	}
	return forward
}

// parseSteps turns "name:key=value,key=value" flags into pipeline steps.
// Parameter values stay strings; the operations parse what they need.
func parseSteps(steps []string) ([]cipher.OperationConfig, error) {
	if len(steps) == 0 {
		return nil, fmt.Errorf("at least one --op is required")
	}
	ops := make([]cipher.OperationConfig, 0, len(steps))
	for _, step := range steps {
		name, rawParams, _ := strings.Cut(step, ":")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("invalid --op %q: missing operation name", step)
		}
		op := cipher.OperationConfig{Name: name}
		if rawParams != "" {
			op.Parameters = make(map[string]interface{})
			for _, pair := range strings.Split(rawParams, ",") {
				key, value, ok := strings.Cut(pair, "=")
				key = strings.TrimSpace(key)
				if !ok || key == "" {
					return nil, fmt.Errorf("invalid --op %q: parameter %q is not key=value", step, pair)
				}
				op.Parameters[key] = value
			}
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func printResult(w io.Writer, v any) error {
	_, err := fmt.Fprintln(w, v.(service.ResultResponse).Result)
	return err
}

func printFrequency(w io.Writer, v any) error {
	report := v.(analysis.FrequencyReport)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, r := range analysis.Alphabet {
		letter := string(r)
		count := report.Counts[letter]
		if count == 0 {
			continue
		}
		fmt.Fprintf(tw, "%s\t%d\t%.2f%%\n", letter, count, report.Percentages[letter])
	}
	fmt.Fprintf(tw, "total\t%d\t\n", report.Total)
	return tw.Flush()
}

func printPatterns(w io.Writer, v any) error {
	report := v.(service.PatternsResponse).Patterns
	if len(report) == 0 {
		_, err := fmt.Fprintln(w, "no repeated patterns")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PATTERN\tCOUNT\tPOSITIONS")
	for _, p := range report {
		fmt.Fprintf(tw, "%s\t%d\t%v\n", p.Pattern, p.Count, p.Positions)
	}
	return tw.Flush()
}

func printOperations(w io.Writer, v any) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTYPE\tDESCRIPTION")
	for _, op := range v.([]service.OperationInfo) {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", op.Name, op.Type, op.Description)
	}
	return tw.Flush()
}
