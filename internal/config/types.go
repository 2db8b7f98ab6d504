package config

import (
	"time"
)

// Config is the root configuration for the relaypool daemon
type Config struct {
	Monitor   MonitorConfig    `mapstructure:"monitor"`
	Policy    PolicyConfig     `mapstructure:"policy"`
	Store     StoreConfig      `mapstructure:"store"`
	Logging   LoggingConfig    `mapstructure:"logging"`
	Endpoints []EndpointConfig `mapstructure:"endpoints"`
}

// MonitorConfig drives the background health monitor
type MonitorConfig struct {
	Interval         time.Duration `mapstructure:"interval"`
	FallbackInterval time.Duration `mapstructure:"fallback_interval"`
	ProbeTimeout     time.Duration `mapstructure:"probe_timeout"`
	ProbeConcurrency int           `mapstructure:"probe_concurrency"`
	ProbeTargetURL   string        `mapstructure:"probe_target_url"`
	CycleTimeout     time.Duration `mapstructure:"cycle_timeout"`
}

// PolicyConfig drives the one-way deactivation policy
type PolicyConfig struct {
	MinSamples     int64   `mapstructure:"min_samples"`
	MinSuccessRate float64 `mapstructure:"min_success_rate"`
}

// StoreConfig configures pool persistence
type StoreConfig struct {
	SnapshotPath     string        `mapstructure:"snapshot_path"`
	SnapshotInterval time.Duration `mapstructure:"snapshot_interval"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Directory  string `mapstructure:"directory"`
	FileOutput bool   `mapstructure:"file_output"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
}

// EndpointConfig seeds one endpoint into the store at startup and on
// config reload. Records already in the store keep their statistics.
type EndpointConfig struct {
	ID       string `mapstructure:"id"`
	Address  string `mapstructure:"address"`
	Kind     string `mapstructure:"kind"`
	Group    string `mapstructure:"group"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Priority int    `mapstructure:"priority"`
}
