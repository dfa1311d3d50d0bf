// Package registry is the façade of the Stagehand runtime: it creates and
// destroys actors, wires them into the dependency graph, attaches a
// supervision strategy, and optionally gates their snapshots through the
// persistence guard.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/stagehand/stagehand/pkg/actor"
	"github.com/stagehand/stagehand/pkg/graph"
	"github.com/stagehand/stagehand/pkg/persist"
	"github.com/stagehand/stagehand/pkg/supervision"
	"github.com/stagehand/stagehand/pkg/telemetry"
)

// DuplicateError is returned by Register when the id is already live.
// Re-registration never silently clobbers an existing actor; callers must
// unregister first.
type DuplicateError struct {
	// ID is the conflicting actor id.
	ID string
}

// Error implements the error interface.
func (e *DuplicateError) Error() string {
	return fmt.Sprintf("actor already registered: %s", e.ID)
}

// IsDuplicate reports whether err is a duplicate-registration error.
func IsDuplicate(err error) bool {
	var e *DuplicateError
	return errors.As(err, &e)
}

// Options configures one actor registration.
type Options struct {
	// Persist attaches the persistence guard: the actor's snapshot is
	// written through after every accepted transition, and a previously
	// persisted snapshot seeds the actor at registration.
	Persist bool

	// Strategy selects the supervision strategy. The zero value means
	// none: faults propagate to the caller.
	Strategy supervision.Strategy

	// Description is diagnostic only.
	Description string
}

// record is the registry's bookkeeping for one live actor.
type record struct {
	id       string
	def      actor.Definition
	opts     Options
	strategy supervision.Strategy
	handle   *actor.Handle
}

// Config wires a Registry's collaborators. All fields are optional; nil
// collaborators get safe defaults (a nop logger, a fresh aggregator, no
// persistence).
type Config struct {
	Logger     *telemetry.Logger
	Metrics    *telemetry.Metrics
	Tracer     *telemetry.Tracer
	Aggregator *supervision.Aggregator
	Guard      *persist.Guard

	// MaxRestarts is the default restart ceiling applied to restart
	// strategies that do not set their own. Zero keeps the supervision
	// package default.
	MaxRestarts int
}

// Registry manages the lifecycle and lookup of all actors in one runtime.
type Registry struct {
	mu sync.RWMutex

	log     *telemetry.Logger
	metrics *telemetry.Metrics
	tracer  *telemetry.Tracer

	records map[string]*record
	graph   *graph.Graph
	sup     *supervision.Supervisor
	agg     *supervision.Aggregator
	guard   *persist.Guard

	maxRestarts int
}

// New creates a registry from the given configuration.
func New(cfg Config) *Registry {
	log := cfg.Logger
	if log == nil {
		log = telemetry.NopLogger()
	}
	agg := cfg.Aggregator
	if agg == nil {
		agg = supervision.NewAggregator(log)
	}

	return &Registry{
		log:         log.NewComponentLogger("registry"),
		metrics:     cfg.Metrics,
		tracer:      cfg.Tracer,
		records:     make(map[string]*record),
		graph:       graph.New(log),
		sup:         supervision.NewSupervisor(agg, log, cfg.Metrics),
		agg:         agg,
		guard:       cfg.Guard,
		maxRestarts: cfg.MaxRestarts,
	}
}

// Register constructs an actor from the definition, stores its record, and
// wires supervision and persistence according to the options. Registering
// an id that is already live fails with a DuplicateError.
func (r *Registry) Register(ctx context.Context, id string, def actor.Definition, opts Options) (*actor.Handle, error) {
	if r.tracer != nil {
		spanCtx, span := r.tracer.StartActorSpan(ctx, "registry.register", id)
		ctx = spanCtx
		defer span.End()
	}

	r.mu.Lock()
	if _, exists := r.records[id]; exists {
		r.mu.Unlock()
		return nil, &DuplicateError{ID: id}
	}

	h := actor.NewHandle(id, def)

	strategy := opts.Strategy
	if strategy.Kind == "" {
		strategy.Kind = supervision.KindNone
	}
	if strategy.Kind == supervision.KindRestart && strategy.MaxRestarts == 0 {
		strategy.MaxRestarts = r.maxRestarts
	}

	if opts.Persist && r.guard != nil {
		r.restore(ctx, h)
		guard := r.guard
		log := r.log
		h.SetTransitionHook(func(snap actor.Snapshot) {
			if err := guard.Save(context.Background(), id, snap); err != nil {
				log.WithActorID(id).WithError(err).Warn("snapshot write-through failed")
			}
		})
	}

	// Only supervised actors get the error hook: with no strategy the
	// fault must surface to the caller, not be absorbed.
	if strategy.Kind != supervision.KindNone {
		sup := r.sup
		h.SetErrorHandler(func(err error) {
			sup.Handle(h, strategy, err)
		})
	}

	r.records[id] = &record{
		id:       id,
		def:      def,
		opts:     opts,
		strategy: strategy,
		handle:   h,
	}
	r.graph.AddNode(id)
	count := len(r.records)
	r.mu.Unlock()

	r.metrics.RecordRegistration(opts.Persist)
	r.metrics.SetActiveActors(float64(count))
	r.log.WithActorID(id).
		WithField("persist", opts.Persist).
		WithStrategy(string(strategy.Kind)).
		Info("actor registered")

	return h, nil
}

// restore seeds a persisted actor from storage. Best-effort: a missing
// entry starts the actor fresh, and a corrupt or unreadable one is logged
// and ignored so registration never fails on stale state.
func (r *Registry) restore(ctx context.Context, h *actor.Handle) {
	snap, err := r.guard.Load(ctx, h.ID())
	switch {
	case err == nil:
		if restoreErr := h.Restore(snap); restoreErr != nil {
			r.log.WithActorID(h.ID()).WithError(restoreErr).Warn("persisted snapshot rejected")
		} else {
			r.log.WithActorID(h.ID()).Debug("actor state restored from storage")
		}
	case errors.Is(err, persist.ErrNotFound):
	case persist.IsCorruption(err):
		r.log.WithActorID(h.ID()).WithError(err).Warn("persisted snapshot corrupted, starting fresh")
	default:
		r.log.WithActorID(h.ID()).WithError(err).Warn("persisted snapshot unavailable, starting fresh")
	}
}

// Unregister tears down the actor and removes every dependency edge
// referencing it, in both directions. Unregistering an unknown id is a
// no-op.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	rec, exists := r.records[id]
	if !exists {
		r.mu.Unlock()
		return
	}
	delete(r.records, id)
	r.graph.RemoveNode(id)
	count := len(r.records)
	edges := r.graph.EdgeCount()
	r.mu.Unlock()

	// Detach hooks before stopping so teardown does not write through.
	rec.handle.SetTransitionHook(nil)
	rec.handle.SetErrorHandler(nil)
	rec.handle.Stop()
	r.sup.Forget(id)

	r.metrics.RecordUnregistration()
	r.metrics.SetActiveActors(float64(count))
	r.metrics.SetDependencyEdges(float64(edges))
	r.log.WithActorID(id).Debug("actor unregistered")
}

// Get returns the handle for id, or false when the id is not registered.
func (r *Registry) Get(id string) (*actor.Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, false
	}
	return rec.handle, true
}

// Len returns the number of live actors.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// IDs returns the ids of all live actors.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.records))
	for id := range r.records {
		ids = append(ids, id)
	}
	return ids
}

// AddDependency records that dependent must initialize after dependency.
// It returns false, without error, when either id is not currently
// registered; this is expected during staggered startup.
func (r *Registry) AddDependency(dependentID, dependencyID string) bool {
	r.mu.Lock()
	ok := r.graph.AddEdge(dependentID, dependencyID)
	edges := r.graph.EdgeCount()
	r.mu.Unlock()

	if ok {
		r.metrics.SetDependencyEdges(float64(edges))
	}
	return ok
}

// GetDependencies returns the ids the given actor depends on.
func (r *Registry) GetDependencies(id string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.graph.Dependencies(id)
}

// GetDependents returns the ids depending on the given actor.
func (r *Registry) GetDependents(id string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.graph.Dependents(id)
}

// TopologicalOrder orders the given ids with dependencies before
// dependents. Cycles are broken rather than fatal; the skipped edges are
// returned for diagnostics.
func (r *Registry) TopologicalOrder(ids []string) ([]string, []graph.Edge) {
	r.mu.RLock()
	order, skipped := r.graph.TopologicalSort(ids)
	r.mu.RUnlock()

	for range skipped {
		r.metrics.RecordCycleDetected()
	}
	return order, skipped
}

// Aggregator returns the root error aggregator serving this registry.
func (r *Registry) Aggregator() *supervision.Aggregator {
	return r.agg
}

// Guard returns the persistence guard, or nil when persistence is not
// configured.
func (r *Registry) Guard() *persist.Guard {
	return r.guard
}

// Reset unregisters every actor, resets the root aggregator and restart
// counters, and clears all persisted entries. This is the one permitted
// entry point for wiping runtime state, and must run between independent
// application runs (notably test cases) to avoid cross-run leakage.
func (r *Registry) Reset(ctx context.Context) error {
	if r.tracer != nil {
		spanCtx, span := r.tracer.Start(ctx, "registry.reset")
		ctx = spanCtx
		defer span.End()
	}

	for _, id := range r.IDs() {
		r.Unregister(id)
	}

	r.agg.Reset()
	r.sup.Reset()

	if r.guard != nil {
		if err := r.guard.ClearAll(ctx); err != nil {
			return err
		}
	}

	r.log.Info("registry reset")
	return nil
}
