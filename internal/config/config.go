package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/soria/relaypool/internal/core/domain"
)

const (
	DefaultProbeInterval    = 300 * time.Second
	DefaultFallbackInterval = 60 * time.Second
	DefaultProbeTimeout     = 15 * time.Second
	DefaultProbeConcurrency = 8
	DefaultProbeTargetURL   = "https://httpbin.org/ip"
	DefaultCycleTimeout     = 2 * time.Minute

	DefaultMinSamples     = 10
	DefaultMinSuccessRate = 0.10

	DefaultSnapshotInterval = 5 * time.Minute
)

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Monitor: MonitorConfig{
			Interval:         DefaultProbeInterval,
			FallbackInterval: DefaultFallbackInterval,
			ProbeTimeout:     DefaultProbeTimeout,
			ProbeConcurrency: DefaultProbeConcurrency,
			ProbeTargetURL:   DefaultProbeTargetURL,
			CycleTimeout:     DefaultCycleTimeout,
		},
		Policy: PolicyConfig{
			MinSamples:     DefaultMinSamples,
			MinSuccessRate: DefaultMinSuccessRate,
		},
		Store: StoreConfig{
			SnapshotPath:     "data/endpoints.json",
			SnapshotInterval: DefaultSnapshotInterval,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Directory:  "logs",
			FileOutput: false,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     7,
		},
	}
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	config := DefaultConfig()

	// An explicit config file always wins over the default search paths
	if configFile := os.Getenv("RELAYPOOL_CONFIG_FILE"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}

	viper.SetEnvPrefix("RELAYPOOL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// Missing config under the default search is fine, we run on
		// defaults; an explicitly named file must exist.
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !notFound || os.Getenv("RELAYPOOL_CONFIG_FILE") != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Watch re-reads the config on file change and hands the re-parsed result
// to onChange. Parse or validation failures keep the previous config.
func Watch(onChange func(*Config)) {
	viper.OnConfigChange(func(_ fsnotify.Event) {
		config := DefaultConfig()
		if err := viper.Unmarshal(config); err != nil {
			return
		}
		if err := config.Validate(); err != nil {
			return
		}
		onChange(config)
	})
	viper.WatchConfig()
}

// Validate rejects configurations the engine cannot run with. This is the
// only place configuration errors are fatal; nothing re-validates at runtime.
func (c *Config) Validate() error {
	if c.Monitor.Interval <= 0 {
		return fmt.Errorf("monitor.interval must be positive, got %v", c.Monitor.Interval)
	}
	if c.Monitor.FallbackInterval <= 0 {
		return fmt.Errorf("monitor.fallback_interval must be positive, got %v", c.Monitor.FallbackInterval)
	}
	if c.Monitor.ProbeTimeout <= 0 {
		return fmt.Errorf("monitor.probe_timeout must be positive, got %v", c.Monitor.ProbeTimeout)
	}
	if c.Monitor.ProbeConcurrency < 1 {
		return fmt.Errorf("monitor.probe_concurrency must be at least 1, got %d", c.Monitor.ProbeConcurrency)
	}
	if c.Monitor.CycleTimeout <= 0 {
		return fmt.Errorf("monitor.cycle_timeout must be positive, got %v", c.Monitor.CycleTimeout)
	}
	if _, err := url.Parse(c.Monitor.ProbeTargetURL); err != nil || c.Monitor.ProbeTargetURL == "" {
		return fmt.Errorf("monitor.probe_target_url is not a valid URL: %q", c.Monitor.ProbeTargetURL)
	}
	if c.Policy.MinSamples < 0 {
		return fmt.Errorf("policy.min_samples must not be negative, got %d", c.Policy.MinSamples)
	}
	if c.Policy.MinSuccessRate < 0 || c.Policy.MinSuccessRate > 1 {
		return fmt.Errorf("policy.min_success_rate must be within [0,1], got %v", c.Policy.MinSuccessRate)
	}
	for i, e := range c.Endpoints {
		if e.Address == "" {
			return fmt.Errorf("endpoints[%d]: address is required", i)
		}
		if !domain.EndpointKind(e.Kind).IsValid() {
			return fmt.Errorf("endpoints[%d]: unknown kind %q", i, e.Kind)
		}
	}
	return nil
}
