// Package config provides configuration loading and management for
// Rosterflow.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/c360studio/rosterflow/schedule"
)

// Config represents the complete Rosterflow configuration
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	NATS       NATSConfig       `yaml:"nats"`
	Oracle     OracleConfig     `yaml:"oracle"`
	Laws       LawsConfig       `yaml:"laws"`
	Scheduling SchedulingConfig `yaml:"scheduling"`
}

// HTTPConfig configures the HTTP API surface
type HTTPConfig struct {
	// Addr is the listen address (default: :8080)
	Addr string `yaml:"addr"`
	// Prefix is the path prefix for API routes (default: /api/v1)
	Prefix string `yaml:"prefix"`
}

// NATSConfig configures the NATS connection and stream layout
type NATSConfig struct {
	// URL is the NATS server URL
	URL string `yaml:"url"`
	// Stream is the JetStream stream holding schedule traffic
	Stream string `yaml:"stream"`
	// RequestSubject carries incoming schedule requests
	RequestSubject string `yaml:"request_subject"`
	// ResultSubject carries finished schedule responses
	ResultSubject string `yaml:"result_subject"`
}

// OracleConfig configures the advisory oracle
type OracleConfig struct {
	// Enabled toggles oracle consultation; false runs fully deterministic
	Enabled bool `yaml:"enabled"`
	// RegistryPath points at a model registry JSON file (empty = built-in
	// defaults)
	RegistryPath string `yaml:"registry_path"`
	// Timeout is the maximum time to wait for oracle responses
	Timeout time.Duration `yaml:"timeout"`
}

// LawsConfig configures the labor-law rule table
type LawsConfig struct {
	// Path points at a YAML rule file overlaying the built-in table
	Path string `yaml:"path"`
	// Watch reloads the rule file on change
	Watch bool `yaml:"watch"`
}

// SchedulingConfig configures allocation behavior
type SchedulingConfig struct {
	// VacationPolicy is "none" or "fairness"
	VacationPolicy string `yaml:"vacation_policy"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Addr:   ":8080",
			Prefix: "/api/v1",
		},
		NATS: NATSConfig{
			URL:            "nats://localhost:4222",
			Stream:         "SCHEDULES",
			RequestSubject: "schedule.request.v1",
			ResultSubject:  "schedule.result.v1",
		},
		Oracle: OracleConfig{
			Enabled: true,
			Timeout: 3 * time.Minute,
		},
		Laws: LawsConfig{
			Watch: true,
		},
		Scheduling: SchedulingConfig{
			VacationPolicy: string(schedule.VacationPolicyNone),
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.HTTP.Addr == "" {
		return fmt.Errorf("http.addr is required")
	}
	if c.NATS.URL == "" {
		return fmt.Errorf("nats.url is required")
	}
	if c.NATS.Stream == "" {
		return fmt.Errorf("nats.stream is required")
	}
	if c.NATS.RequestSubject == "" || c.NATS.ResultSubject == "" {
		return fmt.Errorf("nats.request_subject and nats.result_subject are required")
	}
	switch schedule.VacationPolicy(c.Scheduling.VacationPolicy) {
	case schedule.VacationPolicyNone, schedule.VacationPolicyFairness:
	default:
		return fmt.Errorf("scheduling.vacation_policy must be %q or %q",
			schedule.VacationPolicyNone, schedule.VacationPolicyFairness)
	}
	return nil
}

// VacationPolicy returns the configured policy as its typed form.
func (c *Config) VacationPolicy() schedule.VacationPolicy {
	return schedule.VacationPolicy(c.Scheduling.VacationPolicy)
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for
// non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.HTTP.Addr != "" {
		c.HTTP.Addr = other.HTTP.Addr
	}
	if other.HTTP.Prefix != "" {
		c.HTTP.Prefix = other.HTTP.Prefix
	}

	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
	}
	if other.NATS.Stream != "" {
		c.NATS.Stream = other.NATS.Stream
	}
	if other.NATS.RequestSubject != "" {
		c.NATS.RequestSubject = other.NATS.RequestSubject
	}
	if other.NATS.ResultSubject != "" {
		c.NATS.ResultSubject = other.NATS.ResultSubject
	}

	if other.Oracle.RegistryPath != "" {
		c.Oracle.RegistryPath = other.Oracle.RegistryPath
	}
	if other.Oracle.Timeout != 0 {
		c.Oracle.Timeout = other.Oracle.Timeout
	}

	if other.Laws.Path != "" {
		c.Laws.Path = other.Laws.Path
	}

	if other.Scheduling.VacationPolicy != "" {
		c.Scheduling.VacationPolicy = other.Scheduling.VacationPolicy
	}
}
