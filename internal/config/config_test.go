package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPrecedence(t *testing.T) {
	tempDir := t.TempDir()

	homeDir := filepath.Join(tempDir, "home")
	require.NoError(t, os.MkdirAll(filepath.Join(homeDir, ".cryptolab"), 0o755))
	t.Setenv("HOME", homeDir)

	tomlConfig := []byte(`[http]
addr = "0.0.0.0:1111"
request_timeout = "3s"

[limits]
max_text_length = 500
`)
	require.NoError(t, os.WriteFile(filepath.Join(homeDir, ".cryptolab", "config.toml"), tomlConfig, 0o600))

	// Local YAML overrides the home TOML file.
	workDir := filepath.Join(tempDir, "work")
	require.NoError(t, os.Mkdir(workDir, 0o755))
	yamlConfig := []byte(`http:
  addr: 127.0.0.1:6500
grpc:
  enabled: false
log:
  format: console
`)
	require.NoError(t, os.WriteFile(filepath.Join(workDir, "cryptolab.yml"), yamlConfig, 0o600))

	// Env overrides beat file configuration.
	t.Setenv("CRYPTOLAB_LIMITS_MAX_PATTERN_SPAN", "8")
	t.Setenv("CRYPTOLAB_LOG_LEVEL", "debug")

	cwd, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(cwd) })
	require.NoError(t, os.Chdir(workDir))

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:6500", cfg.HTTP.Addr)
	assert.Equal(t, 3*time.Second, cfg.HTTP.RequestTimeout)
	assert.False(t, cfg.GRPC.Enabled)
	assert.Equal(t, 500, cfg.Limits.MaxTextLength)
	assert.Equal(t, 8, cfg.Limits.MaxPatternSpan)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "debug", cfg.Log.Level)
	// untouched keys keep their defaults
	assert.Equal(t, Default().HTTP.BodyLimit, cfg.HTTP.BodyLimit)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoadDefaultsWithoutFiles(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cwd, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(cwd) })
	require.NoError(t, os.Chdir(t.TempDir()))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lab.yaml")
	require.NoError(t, os.WriteFile(path, []byte("grpc:\n  addr: 0.0.0.0:7000\n"), 0o600))
	t.Setenv("CRYPTOLAB_HTTP_RATE_LIMIT", "2.5")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:7000", cfg.GRPC.Addr)
	assert.InDelta(t, 2.5, cfg.HTTP.RateLimit, 1e-9)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err, "explicit path must exist")

	ini := filepath.Join(dir, "lab.ini")
	require.NoError(t, os.WriteFile(ini, []byte("x=1"), 0o600))
	_, err = Load(ini)
	assert.Error(t, err, "unsupported extension")

	broken := filepath.Join(dir, "broken.toml")
	require.NoError(t, os.WriteFile(broken, []byte("[http\naddr ="), 0o600))
	_, err = Load(broken)
	assert.Error(t, err, "malformed toml")

	invalid := filepath.Join(dir, "invalid.toml")
	require.NoError(t, os.WriteFile(invalid, []byte("[limits]\nmax_text_length = 0\n"), 0o600))
	_, err = Load(invalid)
	assert.Error(t, err, "validation failure")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty http addr", func(c *Config) { c.HTTP.Addr = " " }},
		{"grpc without addr", func(c *Config) { c.GRPC.Addr = "" }},
		{"negative timeout", func(c *Config) { c.HTTP.RequestTimeout = -time.Second }},
		{"negative rate", func(c *Config) { c.HTTP.RateLimit = -1 }},
		{"rate without burst", func(c *Config) { c.HTTP.RateLimit = 1; c.HTTP.RateBurst = 0 }},
		{"zero text limit", func(c *Config) { c.Limits.MaxTextLength = 0 }},
		{"zero span", func(c *Config) { c.Limits.MaxPatternSpan = 0 }},
		{"relative metrics path", func(c *Config) { c.Metrics.Path = "metrics" }},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
	}

	require.NoError(t, Default().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "http.addr", envKey("CRYPTOLAB_HTTP_ADDR"))
	assert.Equal(t, "limits.max_text_length", envKey("CRYPTOLAB_LIMITS_MAX_TEXT_LENGTH"))
	assert.Equal(t, "", envKey("CRYPTOLAB_DEBUG"))
}

func TestOrigins(t *testing.T) {
	h := HTTPConfig{AllowOrigins: " https://a.example , ,https://b.example"}
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, h.Origins())
	assert.Empty(t, HTTPConfig{}.Origins())
}

func TestTOMLParser(t *testing.T) {
	parser := TOMLParser()

	out, err := parser.Unmarshal([]byte("[limits]\nmax_text_length = 42\n"))
	require.NoError(t, err)
	limits, ok := out["limits"].(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 42, limits["max_text_length"])

	raw, err := parser.Marshal(out)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "max_text_length = 42")
}
