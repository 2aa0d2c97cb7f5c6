package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/c360studio/rosterflow/schedule"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("expected default addr :8080, got %s", cfg.HTTP.Addr)
	}
	if cfg.NATS.Stream != "SCHEDULES" {
		t.Errorf("expected default stream SCHEDULES, got %s", cfg.NATS.Stream)
	}
	if cfg.NATS.RequestSubject != "schedule.request.v1" {
		t.Errorf("expected default request subject schedule.request.v1, got %s", cfg.NATS.RequestSubject)
	}
	if !cfg.Oracle.Enabled {
		t.Error("expected oracle enabled by default")
	}
	if cfg.VacationPolicy() != schedule.VacationPolicyNone {
		t.Errorf("expected vacation policy none, got %s", cfg.Scheduling.VacationPolicy)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing http addr",
			modify:  func(c *Config) { c.HTTP.Addr = "" },
			wantErr: true,
		},
		{
			name:    "missing nats url",
			modify:  func(c *Config) { c.NATS.URL = "" },
			wantErr: true,
		},
		{
			name:    "missing stream",
			modify:  func(c *Config) { c.NATS.Stream = "" },
			wantErr: true,
		},
		{
			name:    "missing result subject",
			modify:  func(c *Config) { c.NATS.ResultSubject = "" },
			wantErr: true,
		},
		{
			name:    "fairness vacation policy",
			modify:  func(c *Config) { c.Scheduling.VacationPolicy = "fairness" },
			wantErr: false,
		},
		{
			name:    "unknown vacation policy",
			modify:  func(c *Config) { c.Scheduling.VacationPolicy = "lottery" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
http:
  addr: ":9090"
nats:
  url: "nats://test:4222"
  stream: "TEST_SCHEDULES"
oracle:
  enabled: false
  timeout: 10m
laws:
  path: "/etc/rosterflow/laws.yaml"
scheduling:
  vacation_policy: "fairness"
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	if cfg.HTTP.Addr != ":9090" {
		t.Errorf("expected addr :9090, got %s", cfg.HTTP.Addr)
	}
	// Unset fields keep their defaults
	if cfg.HTTP.Prefix != "/api/v1" {
		t.Errorf("expected prefix to remain default, got %s", cfg.HTTP.Prefix)
	}
	if cfg.NATS.URL != "nats://test:4222" {
		t.Errorf("expected NATS URL nats://test:4222, got %s", cfg.NATS.URL)
	}
	if cfg.NATS.Stream != "TEST_SCHEDULES" {
		t.Errorf("expected stream TEST_SCHEDULES, got %s", cfg.NATS.Stream)
	}
	if cfg.Oracle.Enabled {
		t.Error("expected oracle disabled")
	}
	if cfg.Oracle.Timeout != 10*time.Minute {
		t.Errorf("expected timeout 10m, got %v", cfg.Oracle.Timeout)
	}
	if cfg.Laws.Path != "/etc/rosterflow/laws.yaml" {
		t.Errorf("expected laws path, got %s", cfg.Laws.Path)
	}
	if cfg.VacationPolicy() != schedule.VacationPolicyFairness {
		t.Errorf("expected fairness policy, got %s", cfg.Scheduling.VacationPolicy)
	}
}

func TestConfigMerge(t *testing.T) {
	base := DefaultConfig()
	override := &Config{
		NATS: NATSConfig{
			URL: "nats://override:4222",
		},
		Laws: LawsConfig{
			Path: "/override/laws.yaml",
		},
	}

	base.Merge(override)

	if base.NATS.URL != "nats://override:4222" {
		t.Errorf("expected overridden NATS URL, got %s", base.NATS.URL)
	}
	// Stream should remain from base since override didn't set it
	if base.NATS.Stream != "SCHEDULES" {
		t.Errorf("expected stream to remain default, got %s", base.NATS.Stream)
	}
	if base.Laws.Path != "/override/laws.yaml" {
		t.Errorf("expected overridden laws path, got %s", base.Laws.Path)
	}
}

func TestConfigSaveToFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "subdir", "config.yaml")

	cfg := DefaultConfig()
	cfg.NATS.Stream = "SAVED_SCHEDULES"

	if err := cfg.SaveToFile(configPath); err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("config file was not created")
	}

	loaded, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("failed to load saved config: %v", err)
	}
	if loaded.NATS.Stream != "SAVED_SCHEDULES" {
		t.Errorf("expected stream SAVED_SCHEDULES, got %s", loaded.NATS.Stream)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("ROSTERFLOW_NATS_URL", "nats://env:4222")
	t.Setenv("ROSTERFLOW_ORACLE_DISABLED", "true")
	t.Setenv("ROSTERFLOW_VACATION_POLICY", "fairness")

	cfg := DefaultConfig()
	NewLoader(nil).applyEnv(cfg)

	if cfg.NATS.URL != "nats://env:4222" {
		t.Errorf("expected env NATS URL, got %s", cfg.NATS.URL)
	}
	if cfg.Oracle.Enabled {
		t.Error("expected oracle disabled via env")
	}
	if cfg.VacationPolicy() != schedule.VacationPolicyFairness {
		t.Errorf("expected fairness policy via env, got %s", cfg.Scheduling.VacationPolicy)
	}
}
