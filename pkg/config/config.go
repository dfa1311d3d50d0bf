// Package config provides the runtime configuration for Stagehand:
// defaults, YAML loading, struct validation, and hot reload.
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/stagehand/stagehand/pkg/telemetry"
)

// Config is the root runtime configuration.
type Config struct {
	// Supervision configures fault recovery defaults.
	Supervision SupervisionConfig `yaml:"supervision"`

	// Storage configures the snapshot storage backend.
	Storage StorageConfig `yaml:"storage"`

	// Telemetry configures logging, metrics, and tracing.
	Telemetry telemetry.Config `yaml:"telemetry"`
}

// SupervisionConfig configures fault recovery defaults.
type SupervisionConfig struct {
	// MaxRestarts is the default restart ceiling for actors under the
	// restart strategy. Exceeding it escalates the fault.
	MaxRestarts int `yaml:"max_restarts" validate:"gte=0,lte=1000"`
}

// StorageConfig configures the snapshot storage backend.
type StorageConfig struct {
	// Driver selects the backend implementation.
	Driver string `yaml:"driver" validate:"oneof=memory sqlite"`

	// Path is the database file path. Required for the sqlite driver.
	Path string `yaml:"path" validate:"required_if=Driver sqlite"`

	// MaxOpenConns bounds the connection pool for the sqlite driver.
	MaxOpenConns int `yaml:"max_open_conns" validate:"gte=0"`
}

// Default returns the default configuration: in-memory storage, bounded
// restarts, console logging, telemetry off.
func Default() *Config {
	return &Config{
		Supervision: SupervisionConfig{
			MaxRestarts: 5,
		},
		Storage: StorageConfig{
			Driver: "memory",
		},
		Telemetry: *telemetry.DefaultConfig(),
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := c.Telemetry.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}
