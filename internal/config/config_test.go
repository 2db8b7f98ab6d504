package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Monitor.Interval != 300*time.Second {
		t.Errorf("Expected probe interval 300s, got %v", cfg.Monitor.Interval)
	}
	if cfg.Monitor.ProbeTimeout != 15*time.Second {
		t.Errorf("Expected probe timeout 15s, got %v", cfg.Monitor.ProbeTimeout)
	}
	if cfg.Monitor.ProbeConcurrency != 8 {
		t.Errorf("Expected probe concurrency 8, got %d", cfg.Monitor.ProbeConcurrency)
	}
	if cfg.Monitor.FallbackInterval != 60*time.Second {
		t.Errorf("Expected fallback interval 60s, got %v", cfg.Monitor.FallbackInterval)
	}
	if cfg.Policy.MinSamples != 10 {
		t.Errorf("Expected min samples 10, got %d", cfg.Policy.MinSamples)
	}
	if cfg.Policy.MinSuccessRate != 0.10 {
		t.Errorf("Expected min success rate 0.10, got %v", cfg.Policy.MinSuccessRate)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Expected log level 'info', got %s", cfg.Logging.Level)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config failed validation: %v", err)
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero interval", func(c *Config) { c.Monitor.Interval = 0 }, "monitor.interval"},
		{"negative probe timeout", func(c *Config) { c.Monitor.ProbeTimeout = -time.Second }, "monitor.probe_timeout"},
		{"zero concurrency", func(c *Config) { c.Monitor.ProbeConcurrency = 0 }, "monitor.probe_concurrency"},
		{"zero fallback", func(c *Config) { c.Monitor.FallbackInterval = 0 }, "monitor.fallback_interval"},
		{"empty target url", func(c *Config) { c.Monitor.ProbeTargetURL = "" }, "monitor.probe_target_url"},
		{"negative min samples", func(c *Config) { c.Policy.MinSamples = -1 }, "policy.min_samples"},
		{"success rate above one", func(c *Config) { c.Policy.MinSuccessRate = 1.5 }, "policy.min_success_rate"},
		{"endpoint without address", func(c *Config) {
			c.Endpoints = []EndpointConfig{{Kind: "http-proxy"}}
		}, "address is required"},
		{"endpoint with bogus kind", func(c *Config) {
			c.Endpoints = []EndpointConfig{{Address: "x.example.com:80", Kind: "smoke-signal"}}
		}, "unknown kind"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

// An explicitly named config file must win even when a config.yaml sits
// in the default search path.
func TestLoad_EnvConfigFileOverridesSearchPath(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	defaultFile := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(defaultFile, []byte("monitor:\n  probe_concurrency: 2\n"), 0o644); err != nil {
		t.Fatalf("write default config: %v", err)
	}
	explicitFile := filepath.Join(dir, "override.yaml")
	if err := os.WriteFile(explicitFile, []byte("monitor:\n  probe_concurrency: 5\n"), 0o644); err != nil {
		t.Fatalf("write override config: %v", err)
	}

	t.Chdir(dir)
	t.Setenv("RELAYPOOL_CONFIG_FILE", explicitFile)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Monitor.ProbeConcurrency != 5 {
		t.Errorf("ProbeConcurrency = %d, want 5 from the explicit file", cfg.Monitor.ProbeConcurrency)
	}
}

func TestLoad_MissingExplicitConfigFileFails(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Chdir(t.TempDir())
	t.Setenv("RELAYPOOL_CONFIG_FILE", "does-not-exist.yaml")

	if _, err := Load(); err == nil {
		t.Fatal("expected an error for a missing explicit config file")
	}
}

func TestValidate_AcceptsSeededEndpoints(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Endpoints = []EndpointConfig{
		{Address: "147.75.113.227:8080", Kind: "http-proxy", Priority: 7},
		{Address: "10.0.0.1:1080", Kind: "socks-proxy", Priority: 3, Username: "u", Password: "p"},
		{Address: "http://cdn.example.com/ch1.m3u8", Kind: "stream-url", Group: "ch1"},
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("valid endpoint seeds rejected: %v", err)
	}
}
