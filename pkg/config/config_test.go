package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stagehand.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.Storage.Driver != "memory" {
		t.Errorf("expected memory driver, got %s", cfg.Storage.Driver)
	}
	if cfg.Supervision.MaxRestarts != 5 {
		t.Errorf("expected default restart ceiling 5, got %d", cfg.Supervision.MaxRestarts)
	}
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Storage.Driver != "memory" {
		t.Errorf("expected memory driver, got %s", cfg.Storage.Driver)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
supervision:
  max_restarts: 10
storage:
  driver: sqlite
  path: /var/lib/stagehand/snapshots.db
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Supervision.MaxRestarts != 10 {
		t.Errorf("expected max_restarts 10, got %d", cfg.Supervision.MaxRestarts)
	}
	if cfg.Storage.Driver != "sqlite" {
		t.Errorf("expected sqlite driver, got %s", cfg.Storage.Driver)
	}
	if cfg.Storage.Path != "/var/lib/stagehand/snapshots.db" {
		t.Errorf("unexpected path: %s", cfg.Storage.Path)
	}
	// Untouched sections keep their defaults.
	if cfg.Telemetry.Logging.Level == "" {
		t.Error("expected telemetry defaults preserved")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfigFile(t, "storage: [not a mapping")

	_, err := Load(path)
	if !errors.Is(err, ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{
			name:   "unknown driver",
			mutate: func(c *Config) { c.Storage.Driver = "postgres" },
		},
		{
			name: "sqlite without path",
			mutate: func(c *Config) {
				c.Storage.Driver = "sqlite"
				c.Storage.Path = ""
			},
		},
		{
			name:   "negative restart ceiling",
			mutate: func(c *Config) { c.Supervision.MaxRestarts = -1 },
		},
		{
			name:   "absurd restart ceiling",
			mutate: func(c *Config) { c.Supervision.MaxRestarts = 5000 },
		},
		{
			name:   "bad log level",
			mutate: func(c *Config) { c.Telemetry.Logging.Level = "noisy" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestLoad_InvalidContentFailsValidation(t *testing.T) {
	path := writeConfigFile(t, `
storage:
  driver: sqlite
`)

	_, err := Load(path)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for sqlite without path, got %v", err)
	}
}
