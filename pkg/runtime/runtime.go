// Package runtime assembles the Stagehand components from configuration.
// The Runtime is an explicit context object constructed once at the
// application boundary and passed by reference to all consumers; there is
// no import-time global state. Reset provides the mandatory wipe between
// independent application runs.
package runtime

import (
	"context"
	"fmt"

	"github.com/stagehand/stagehand/pkg/config"
	"github.com/stagehand/stagehand/pkg/persist"
	"github.com/stagehand/stagehand/pkg/registry"
	"github.com/stagehand/stagehand/pkg/supervision"
	"github.com/stagehand/stagehand/pkg/telemetry"
)

// Runtime owns the long-lived, application-scoped components.
type Runtime struct {
	Config     *config.Config
	Telemetry  *telemetry.Telemetry
	Backend    persist.Backend
	Guard      *persist.Guard
	Aggregator *supervision.Aggregator
	Registry   *registry.Registry
}

// New builds a runtime from configuration. The storage backend is selected
// by the configured driver; the sqlite driver is initialized and migrated
// before use.
func New(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tel, err := telemetry.NewTelemetry(&cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	backend, err := newBackend(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}

	guard := persist.NewGuard(backend, tel.Logger, tel.Metrics, tel.Tracer)
	agg := supervision.NewAggregator(tel.Logger)

	reg := registry.New(registry.Config{
		Logger:      tel.Logger,
		Metrics:     tel.Metrics,
		Tracer:      tel.Tracer,
		Aggregator:  agg,
		Guard:       guard,
		MaxRestarts: cfg.Supervision.MaxRestarts,
	})

	return &Runtime{
		Config:     cfg,
		Telemetry:  tel,
		Backend:    backend,
		Guard:      guard,
		Aggregator: agg,
		Registry:   reg,
	}, nil
}

// newBackend constructs the configured storage backend.
func newBackend(ctx context.Context, cfg config.StorageConfig) (persist.Backend, error) {
	switch cfg.Driver {
	case "sqlite":
		backend, err := persist.NewSQLiteBackend(persist.SQLiteConfig{
			Path:         cfg.Path,
			MaxOpenConns: cfg.MaxOpenConns,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create sqlite backend: %w", err)
		}
		if err := backend.Init(ctx); err != nil {
			return nil, fmt.Errorf("failed to initialize sqlite backend: %w", err)
		}
		if err := backend.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("failed to migrate sqlite backend: %w", err)
		}
		return backend, nil
	default:
		return persist.NewMemoryBackend(), nil
	}
}

// Reset wipes all runtime state: actors, dependency edges, aggregated
// errors, restart counters, and persisted entries. Invoke it before each
// independent run (notably between test cases).
func (rt *Runtime) Reset(ctx context.Context) error {
	return rt.Registry.Reset(ctx)
}

// Close releases runtime resources and flushes telemetry.
func (rt *Runtime) Close(ctx context.Context) error {
	if closer, ok := rt.Backend.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			return err
		}
	}
	return rt.Telemetry.Shutdown(ctx)
}
