package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RowanDark/cryptolab/internal/analysis"
	"github.com/RowanDark/cryptolab/internal/cipher"
	"github.com/RowanDark/cryptolab/internal/logging"
	"github.com/RowanDark/cryptolab/internal/rpc"
	"github.com/RowanDark/cryptolab/internal/service"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTransformCommands(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{"caesar", "", []string{"caesar", "Hello,", "World!"}, "Khoor, Zruog!\n"},
		{"caesar decrypt with shift", "", []string{"caesar", "-d", "-s", "1", "ifmmp"}, "hello\n"},
		{"stdin keeps inner newlines", "abc\n\n", []string{"caesar"}, "def\n\n"},
		{"stdin drops one crlf", "abc\r\n", []string{"caesar"}, "def\n"},
		{"vigenere", "", []string{"vigenere", "--key", "LEMON", "ATTACKATDAWN"}, "LXFOPVEFRNHR\n"},
		{"vigenere stdin", "LXFOPVEFRNHR\n", []string{"vigenere", "-d", "-k", "LEMON"}, "ATTACKATDAWN\n"},
		{"base64 encode", "", []string{"base64", "hello"}, "aGVsbG8=\n"},
		{"base64 decode dash", "aGVsbG8=", []string{"base64", "--decode", "-"}, "hello\n"},
		{"pipeline", "", []string{"pipeline", "--op", "caesar_encrypt:shift=1", "--op", "base64_encode", "hello"}, "aWZtbXA=\n"},
		{"pipeline reverse", "", []string{"pipeline", "--reverse", "--op", "caesar_encrypt:shift=1", "--op", "base64_encode", "aWZtbXA="}, "hello\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.stdin, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestAnalysisCommandsText(t *testing.T) {
	out, err := execute(t, "", "entropy", "abab")
	require.NoError(t, err)
	assert.Equal(t, "1.0000\n", out)

	out, err = execute(t, "", "classify", "HELLO")
	require.NoError(t, err)
	assert.Contains(t, out, string(analysis.LabelClassical))
	assert.Contains(t, out, "confidence 70%")

	out, err = execute(t, "", "frequency", "aab")
	require.NoError(t, err)
	assert.Contains(t, out, "a")
	assert.Contains(t, out, "66.67%")
	assert.Contains(t, out, "total")

	out, err = execute(t, "", "patterns", "--min", "3", "--max", "3", "abcabcabc")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.GreaterOrEqual(t, len(lines), 2)
	assert.Contains(t, lines[0], "PATTERN")
	assert.Contains(t, lines[1], "abc")
	assert.Contains(t, lines[1], "[0 3 6]")

	out, err = execute(t, "", "patterns", "abcdef")
	require.NoError(t, err)
	assert.Equal(t, "no repeated patterns\n", out)

	out, err = execute(t, "", "operations")
	require.NoError(t, err)
	assert.Contains(t, out, "vigenere_decrypt")
}

func TestJSONOutput(t *testing.T) {
	out, err := execute(t, "", "-o", "json", "classify", "SGVsbG8=")
	require.NoError(t, err)

	var result analysis.ClassificationResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, analysis.LabelEncoded, result.Classification)

	out, err = execute(t, "", "--output", "json", "frequency", "")
	require.NoError(t, err)
	var report analysis.FrequencyReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Zero(t, report.Total)
}

func TestCommandErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"empty key", []string{"vigenere", "--key", "", "abc"}, "key"},
		{"bad base64", []string{"base64", "-d", "@@@"}, "decode failed"},
		{"inverted range", []string{"patterns", "--min", "5", "--max", "2", "abc"}, "max_length"},
		{"no pipeline ops", []string{"pipeline", "abc"}, "--op"},
		{"malformed op param", []string{"pipeline", "--op", "caesar_encrypt:shift", "abc"}, "key=value"},
		{"unknown op", []string{"pipeline", "--op", "rot13", "abc"}, "rot13"},
		{"bad output format", []string{"-o", "yaml", "entropy", "abc"}, "unsupported output format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, "", tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseSteps(t *testing.T) {
	ops, err := parseSteps([]string{"vigenere_encrypt:key=LEMON", " base64_encode "})
	require.NoError(t, err)
	assert.Equal(t, []cipher.OperationConfig{
		{Name: "vigenere_encrypt", Parameters: map[string]interface{}{"key": "LEMON"}},
		{Name: "base64_encode"},
	}, ops)

	_, err = parseSteps([]string{":shift=3"})
	assert.Error(t, err)
}

func TestRemoteBackend(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	srv := rpc.NewGRPCServer(service.New(service.DefaultLimits(), nil, nil), logging.NewNop(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- rpc.Serve(ctx, srv, lis) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	out, err := execute(t, "", "--remote", lis.Addr().String(), "caesar", "abc")
	require.NoError(t, err)
	assert.Equal(t, "def\n", out)

	out, err = execute(t, "", "--remote", lis.Addr().String(), "health")
	require.NoError(t, err)
	assert.Equal(t, "CryptoLab API: healthy\n", out)

	_, err = execute(t, "", "--remote", lis.Addr().String(), "vigenere", "--key", "", "abc")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "invalid key"), err.Error())
}
