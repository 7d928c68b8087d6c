// Package config resolves CryptoLab configuration from defaults, an optional
// file, and environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/RowanDark/cryptolab/internal/logging"
)

// EnvPrefix marks environment variables read by Load.
const EnvPrefix = "CRYPTOLAB_"

const maxConfigFileSize = 1024 * 1024

// Config captures the resolved daemon configuration.
type Config struct {
	HTTP    HTTPConfig     `koanf:"http"`
	GRPC    GRPCConfig     `koanf:"grpc"`
	Log     logging.Config `koanf:"log"`
	Limits  LimitsConfig   `koanf:"limits"`
	Metrics MetricsConfig  `koanf:"metrics"`
}

// HTTPConfig controls the JSON API listener.
type HTTPConfig struct {
	Addr string `koanf:"addr"`
	// AllowOrigins is a comma-separated CORS origin list.
	AllowOrigins   string        `koanf:"allow_origins"`
	BodyLimit      string        `koanf:"body_limit"`
	RequestTimeout time.Duration `koanf:"request_timeout"`
	// RateLimit is requests per second per client IP; 0 disables limiting.
	RateLimit float64 `koanf:"rate_limit"`
	RateBurst int     `koanf:"rate_burst"`
}

// GRPCConfig controls the gRPC listener.
type GRPCConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

// LimitsConfig bounds the work a single request may ask for.
type LimitsConfig struct {
	MaxTextLength  int `koanf:"max_text_length"`
	MaxPatternSpan int `koanf:"max_pattern_span"`
}

// MetricsConfig controls the Prometheus endpoint on the HTTP listener.
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		HTTP: HTTPConfig{
			Addr:           "127.0.0.1:5000",
			AllowOrigins:   "*",
			BodyLimit:      "2M",
			RequestTimeout: 10 * time.Second,
			RateLimit:      0,
			RateBurst:      20,
		},
		GRPC: GRPCConfig{
			Enabled: true,
			Addr:    "127.0.0.1:50051",
		},
		Log: logging.DefaultConfig(),
		Limits: LimitsConfig{
			MaxTextLength:  100_000,
			MaxPatternSpan: 32,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Load resolves configuration. When path is empty the lookup order for files is:
//  1. ~/.cryptolab/config.toml (TOML)
//  2. ./cryptolab.yml (YAML, overrides the home file)
//
// An explicit path replaces both; its format follows the extension.
// Environment variables prefixed with CRYPTOLAB_ have the highest precedence,
// e.g. CRYPTOLAB_HTTP_ADDR -> http.addr, CRYPTOLAB_LIMITS_MAX_TEXT_LENGTH ->
// limits.max_text_length.
func Load(path string) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := loadFile(k, path, true); err != nil {
			return Config{}, err
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			if err := loadFile(k, filepath.Join(home, ".cryptolab", "config.toml"), false); err != nil {
				return Config{}, err
			}
		}
		wd, err := os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("determine working directory: %w", err)
		}
		if err := loadFile(k, filepath.Join(wd, "cryptolab.yml"), false); err != nil {
			return Config{}, err
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// envKey maps CRYPTOLAB_SECTION_FIELD_NAME to section.field_name.
func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	parts := strings.SplitN(lower, "_", 2)
	if len(parts) != 2 || parts[1] == "" {
		return ""
	}
	return parts[0] + "." + parts[1]
}

func loadFile(k *koanf.Koanf, path string, required bool) error {
	info, err := os.Stat(path)
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if info.Size() > maxConfigFileSize {
		return fmt.Errorf("config %s exceeds %d bytes", path, maxConfigFileSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		parser = yaml.Parser()
	case ".toml":
		parser = TOMLParser()
	default:
		return fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
	if err := k.Load(rawbytes.Provider(data), parser); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Validate rejects configurations the daemon cannot run with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.HTTP.Addr) == "" {
		return errors.New("http.addr must be provided")
	}
	if c.GRPC.Enabled && strings.TrimSpace(c.GRPC.Addr) == "" {
		return errors.New("grpc.addr must be provided when grpc is enabled")
	}
	if c.HTTP.RequestTimeout < 0 {
		return errors.New("http.request_timeout must not be negative")
	}
	if c.HTTP.RateLimit < 0 {
		return errors.New("http.rate_limit must not be negative")
	}
	if c.HTTP.RateLimit > 0 && c.HTTP.RateBurst < 1 {
		return errors.New("http.rate_burst must be at least 1 when rate limiting")
	}
	if c.Limits.MaxTextLength <= 0 {
		return errors.New("limits.max_text_length must be positive")
	}
	if c.Limits.MaxPatternSpan <= 0 {
		return errors.New("limits.max_pattern_span must be positive")
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return errors.New("metrics.path must start with /")
	}
	return c.Log.Validate()
}

// Origins splits AllowOrigins into a list.
func (h HTTPConfig) Origins() []string {
	var out []string
	for _, part := range strings.Split(h.AllowOrigins, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
