package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func TestLoggerWritesJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New("test", DefaultConfig(), WithoutStdout(), WithWriter(buf))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := ContextWithRequestID(context.Background(), "req-1")
	logger.Info(ctx, "classified", zap.String("label", "Unknown/Plain Text"))

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("json.Unmarshal: %v", err)
	}

	if decoded["component"] != "test" {
		t.Fatalf("expected component 'test', got %v", decoded["component"])
	}
	if decoded["request_id"] != "req-1" {
		t.Fatalf("expected request_id 'req-1', got %v", decoded["request_id"])
	}
	if decoded["msg"] != "classified" {
		t.Fatalf("expected msg 'classified', got %v", decoded["msg"])
	}
	if _, ok := decoded["ts"]; !ok {
		t.Fatalf("expected timestamp to be set")
	}
}

func TestLoggerRespectsLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New("test", Config{Level: "warn", Format: "console"}, WithoutStdout(), WithWriter(buf))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.Info(context.Background(), "dropped")
	if buf.Len() != 0 {
		t.Fatalf("expected info to be filtered, got %q", buf.String())
	}
	logger.Warn(context.Background(), "kept")
	if !bytes.Contains(buf.Bytes(), []byte("kept")) {
		t.Fatalf("expected warn line, got %q", buf.String())
	}
}

func TestWithComponentSharesSinks(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New("root", DefaultConfig(), WithoutStdout(), WithWriter(buf))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.WithComponent("api").Info(context.Background(), "child")
	if !bytes.Contains(buf.Bytes(), []byte(`"component":"api"`)) {
		t.Fatalf("expected child component, got %q", buf.String())
	}
	if bytes.Contains(buf.Bytes(), []byte(`"component":"root"`)) {
		t.Fatalf("expected parent component to be replaced, got %q", buf.String())
	}
}

func TestWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cryptolab.log")
	logger, err := New("file", DefaultConfig(), WithoutStdout(), WithFile(path))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info(context.Background(), "persisted")
	if err := logger.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Contains(data, []byte("persisted")) {
		t.Fatalf("expected log line in file, got %q", data)
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		opts []Option
	}{
		{"unknown level", Config{Level: "loud", Format: "json"}, nil},
		{"unknown format", Config{Level: "info", Format: "xml"}, nil},
		{"no writers", DefaultConfig(), []Option{WithoutStdout()}},
		{"nil writer", DefaultConfig(), []Option{WithWriter(nil)}},
		{"empty file path", DefaultConfig(), []Option{WithFile(" ")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New("x", tt.cfg, tt.opts...); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestRequestIDFromContext(t *testing.T) {
	if got := RequestIDFromContext(context.Background()); got != "" {
		t.Fatalf("expected empty id, got %q", got)
	}
	ctx := ContextWithRequestID(context.Background(), "")
	if got := RequestIDFromContext(ctx); got != "" {
		t.Fatalf("expected empty id, got %q", got)
	}
}

func TestNopLogger(t *testing.T) {
	logger := NewNop()
	logger.Error(context.Background(), "ignored")
	if err := logger.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}
}
