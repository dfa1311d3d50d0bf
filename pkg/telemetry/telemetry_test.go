package telemetry

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "defaults",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing service name",
			mutate:  func(c *Config) { c.ServiceName = "" },
			wantErr: true,
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: true,
		},
		{
			name:   "empty log level",
			mutate: func(c *Config) { c.Logging.Level = "" },
		},
		{
			name:    "invalid log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: true,
		},
		{
			name: "invalid exporter when tracing enabled",
			mutate: func(c *Config) {
				c.Tracing.Enabled = true
				c.Tracing.Exporter = "jaeger"
			},
			wantErr: true,
		},
		{
			name: "invalid exporter ignored when tracing disabled",
			mutate: func(c *Config) {
				c.Tracing.Enabled = false
				c.Tracing.Exporter = "jaeger"
			},
		},
		{
			name: "sampling rate out of range",
			mutate: func(c *Config) {
				c.Tracing.Enabled = true
				c.Tracing.Exporter = "none"
				c.Tracing.SamplingRate = 1.5
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestMetrics_NilAndDisabledAreSafe(t *testing.T) {
	var nilMetrics *Metrics

	disabled, err := NewMetrics(MetricsConfig{Enabled: false})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, m := range []*Metrics{nilMetrics, disabled} {
		m.RecordRegistration(true)
		m.RecordUnregistration()
		m.SetActiveActors(3)
		m.RecordRestart("worker")
		m.RecordEscalation()
		m.SetDependencyEdges(2)
		m.RecordCycleDetected()
		m.RecordPersistenceOp("save", time.Millisecond, "")
		if m.enabled() {
			t.Error("expected no-op metrics to report disabled")
		}
	}
}

func TestMetrics_EnabledRecordsAndServes(t *testing.T) {
	m, err := NewMetrics(MetricsConfig{Enabled: true, Namespace: "stagehand"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m.RecordRegistration(true)
	m.SetActiveActors(1)
	m.RecordPersistenceOp("save", time.Millisecond, "storage")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	for _, want := range []string{
		"stagehand_actors_registered_total",
		"stagehand_active_actors 1",
		"stagehand_persistence_errors_total",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected metrics output to contain %q", want)
		}
	}
}

func TestLogger_ComponentAndFields(t *testing.T) {
	var buf strings.Builder
	l := &Logger{zlog: zerolog.New(&buf)}

	l.NewComponentLogger("registry").
		WithActorID("editor").
		WithStrategy("restart").
		Info("actor registered")

	out := buf.String()
	for _, want := range []string{
		`"component":"registry"`,
		`"actor_id":"editor"`,
		`"strategy":"restart"`,
		"actor registered",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected log line to contain %s, got %s", want, out)
		}
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"bogus", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := parseLogLevel(tt.in); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNopLogger_Discards(t *testing.T) {
	// Must not panic and must stay silent through the whole chain.
	NopLogger().NewComponentLogger("x").WithError(nil).WithField("k", "v").Warn("ignored")
}
