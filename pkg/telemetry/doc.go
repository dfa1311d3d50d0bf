// Package telemetry provides observability instrumentation for the
// Stagehand runtime.
//
// The package integrates structured logging (zerolog), distributed tracing
// (OpenTelemetry), and metrics (Prometheus) into a single bundle built once
// at the application boundary.
//
// Initialize telemetry at startup:
//
//	cfg := telemetry.DefaultConfig()
//	cfg.ServiceName = "stagehand"
//
//	tel, err := telemetry.NewTelemetry(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tel.Shutdown(context.Background())
//
// Components receive child loggers scoped with a component field:
//
//	logger := tel.Logger.NewComponentLogger("registry")
//	logger.WithActorID("sequence-editor").Info("actor registered")
//
// Key metrics exposed (namespace configurable, default "stagehand"):
//
//   - stagehand_actors_registered_total{persist}
//   - stagehand_active_actors
//   - stagehand_supervised_restarts_total{actor_id}
//   - stagehand_supervised_escalations_total
//   - stagehand_dependency_edges
//   - stagehand_dependency_cycles_detected_total
//   - stagehand_persistence_operations_total{operation}
//   - stagehand_persistence_errors_total{operation,kind}
//
// Tracing supports the "otlp" (gRPC collector), "stdout" (development), and
// "none" (generate but do not export) exporters.
package telemetry
