// Package config decodes the xstreamrt runtime config file, following
// the *Config struct-tree style of oriys-nova/internal/config/config.go
// but backed by gopkg.in/yaml.v3, the library
// oriys-nova/internal/spec/function.go and internal/output/output.go
// use for their config/manifest formats.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// SchedulerConfig holds the priority scheduler defaults (spec §6.4 and
// §4.6's init step).
type SchedulerConfig struct {
	EventFreq    uint32        `yaml:"event_freq"`
	SleepTime    time.Duration `yaml:"sleep_time"`
	SleepEnabled bool          `yaml:"sleep_enabled"`
}

// MetricsConfig holds Prometheus exposure settings.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
	Addr      string `yaml:"addr"`
}

// TracingConfig holds OpenTelemetry exporter settings.
type TracingConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"service_name"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// EventsConfig selects and configures the events.Source implementation
// used for the scheduler's check_events housekeeping hook.
type EventsConfig struct {
	// Source is one of "noop", "channel", "redis".
	Source    string `yaml:"source"`
	RedisAddr string `yaml:"redis_addr"`
	RedisChan string `yaml:"redis_channel"`
}

// Config is the top-level runtime configuration.
type Config struct {
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Tracing   TracingConfig   `yaml:"tracing"`
	Logging   LoggingConfig   `yaml:"logging"`
	Events    EventsConfig    `yaml:"events"`
}

// Default returns the config used when no file is supplied.
func Default() Config {
	return Config{
		Scheduler: SchedulerConfig{
			EventFreq:    50,
			SleepTime:    100 * time.Microsecond,
			SleepEnabled: true,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "xstreamrt",
			Addr:      ":9090",
		},
		Tracing: TracingConfig{
			Enabled:     false,
			ServiceName: "xstreamrt",
		},
		Logging: LoggingConfig{Level: "info"},
		Events:  EventsConfig{Source: "channel"},
	}
}

// Load reads and decodes the YAML config at path, starting from
// Default() so a partial file only overrides what it sets.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config.Load: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config.Load: decode %s: %w", path, err)
	}
	return cfg, nil
}
