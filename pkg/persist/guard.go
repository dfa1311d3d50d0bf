// Package persist gates all reads and writes of actor snapshots through
// structural validation and translates storage backend failures into a
// typed error taxonomy. Callers never see raw backend errors: a failure is
// either corruption (the stored payload is structurally invalid) or a
// storage failure (the backend itself broke).
package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/stagehand/stagehand/pkg/actor"
	"github.com/stagehand/stagehand/pkg/telemetry"
)

// Guard validates snapshots on their way to and from the storage backend.
type Guard struct {
	backend Backend
	log     *telemetry.Logger
	metrics *telemetry.Metrics
	tracer  *telemetry.Tracer
}

// NewGuard creates a persistence guard over the given backend. Metrics and
// tracer may be nil.
func NewGuard(backend Backend, log *telemetry.Logger, metrics *telemetry.Metrics, tracer *telemetry.Tracer) *Guard {
	if log == nil {
		log = telemetry.NopLogger()
	}
	return &Guard{
		backend: backend,
		log:     log.NewComponentLogger("persist"),
		metrics: metrics,
		tracer:  tracer,
	}
}

// ParseSnapshot parses and structurally validates a persisted payload. It
// returns the specific violation rather than a bare pass/fail, so callers
// can report what is wrong with a corrupted entry.
func ParseSnapshot(data []byte) (actor.Snapshot, error) {
	var raw struct {
		Status  *string         `json:"status"`
		Context json.RawMessage `json:"context"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return actor.Snapshot{}, fmt.Errorf("payload is not a structured object: %w", err)
	}

	if raw.Status == nil {
		return actor.Snapshot{}, fmt.Errorf("missing status field")
	}
	status := actor.Status(*raw.Status)
	if !status.Valid() {
		return actor.Snapshot{}, fmt.Errorf("invalid status %q", *raw.Status)
	}

	if len(raw.Context) == 0 {
		return actor.Snapshot{}, fmt.Errorf("missing context field")
	}
	var contextMap map[string]interface{}
	if err := json.Unmarshal(raw.Context, &contextMap); err != nil || contextMap == nil {
		return actor.Snapshot{}, fmt.Errorf("context is not a structured object")
	}

	return actor.Snapshot{Status: status, Context: contextMap}, nil
}

// ValidateSnapshot reports whether the candidate is a structurally valid
// snapshot: a structured object with an enumerated status and an object
// context. Prefer ParseSnapshot when the specific violation matters.
func ValidateSnapshot(candidate interface{}) bool {
	switch v := candidate.(type) {
	case actor.Snapshot:
		return v.Status.Valid() && v.Context != nil
	case *actor.Snapshot:
		return v != nil && v.Status.Valid() && v.Context != nil
	case []byte:
		_, err := ParseSnapshot(v)
		return err == nil
	case string:
		_, err := ParseSnapshot([]byte(v))
		return err == nil
	default:
		data, err := json.Marshal(candidate)
		if err != nil {
			return false
		}
		_, err = ParseSnapshot(data)
		return err == nil
	}
}

// Save validates the snapshot and writes it to the backend under the key
// derived from id. A structurally invalid outgoing snapshot is rejected as
// corruption; a backend write failure surfaces as a storage error wrapping
// the original cause.
func (g *Guard) Save(ctx context.Context, id string, snap actor.Snapshot) error {
	start := time.Now()
	err := g.save(ctx, id, snap)
	g.recordOp("save", start, err)
	return err
}

func (g *Guard) save(ctx context.Context, id string, snap actor.Snapshot) error {
	if g.tracer != nil {
		spanCtx, span := g.tracer.StartPersistenceSpan(ctx, "save", id)
		ctx = spanCtx
		defer span.End()
	}

	if !snap.Status.Valid() {
		return NewCorruptionError(id, fmt.Sprintf("refusing to persist snapshot with invalid status %q", snap.Status), nil).
			WithOperation("save")
	}
	if snap.Context == nil {
		return NewCorruptionError(id, "refusing to persist snapshot with no context", nil).
			WithOperation("save")
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return NewCorruptionError(id, "failed to encode snapshot", err).WithOperation("save")
	}

	if err := g.backend.SetItem(ctx, storageKey(id), string(data)); err != nil {
		g.log.WithActorID(id).WithError(err).Warn("snapshot write failed")
		return NewStorageError("save", id, err)
	}

	g.log.WithActorID(id).Debug("snapshot persisted")
	return nil
}

// Load reads the persisted snapshot for id. It returns ErrNotFound when no
// entry exists, a corruption error identifying the actor when the stored
// payload fails validation, and a storage error when the read itself fails.
func (g *Guard) Load(ctx context.Context, id string) (actor.Snapshot, error) {
	start := time.Now()
	snap, err := g.load(ctx, id)
	g.recordOp("load", start, err)
	return snap, err
}

func (g *Guard) load(ctx context.Context, id string) (actor.Snapshot, error) {
	if g.tracer != nil {
		spanCtx, span := g.tracer.StartPersistenceSpan(ctx, "load", id)
		ctx = spanCtx
		defer span.End()
	}

	raw, ok, err := g.backend.GetItem(ctx, storageKey(id))
	if err != nil {
		return actor.Snapshot{}, NewStorageError("load", id, err)
	}
	if !ok {
		return actor.Snapshot{}, ErrNotFound
	}

	snap, err := ParseSnapshot([]byte(raw))
	if err != nil {
		g.log.WithActorID(id).WithError(err).Warn("persisted snapshot failed validation")
		return actor.Snapshot{}, NewCorruptionError(id, fmt.Sprintf("corrupted snapshot for actor %s", id), err).
			WithOperation("load")
	}
	return snap, nil
}

// Clear removes the persisted entry for id.
func (g *Guard) Clear(ctx context.Context, id string) error {
	start := time.Now()
	var err error
	if rmErr := g.backend.RemoveItem(ctx, storageKey(id)); rmErr != nil {
		err = NewStorageError("clear", id, rmErr)
	}
	g.recordOp("clear", start, err)
	return err
}

// ClearAll removes every persisted entry. Used during registry reset.
func (g *Guard) ClearAll(ctx context.Context) error {
	start := time.Now()
	var err error
	if clErr := g.backend.Clear(ctx); clErr != nil {
		err = NewStorageError("clear_all", "", clErr)
	}
	g.recordOp("clear_all", start, err)
	return err
}

// Entry describes one persisted snapshot for diagnostics. Err is non-nil
// when the stored payload failed validation.
type Entry struct {
	ActorID  string
	Snapshot actor.Snapshot
	Err      error
}

// Entries lists all persisted snapshots with their validation verdicts.
// It requires a backend implementing Lister.
func (g *Guard) Entries(ctx context.Context) ([]Entry, error) {
	lister, ok := g.backend.(Lister)
	if !ok {
		return nil, fmt.Errorf("storage backend does not support key enumeration")
	}

	keys, err := lister.Keys(ctx)
	if err != nil {
		return nil, NewStorageError("list", "", err)
	}

	var entries []Entry
	for _, key := range keys {
		id, ok := actorIDFromKey(key)
		if !ok {
			continue
		}
		snap, err := g.Load(ctx, id)
		entries = append(entries, Entry{ActorID: id, Snapshot: snap, Err: err})
	}
	return entries, nil
}

// recordOp reports metrics for one guard operation.
func (g *Guard) recordOp(operation string, start time.Time, err error) {
	kind := ""
	switch {
	case err == nil || err == ErrNotFound:
	case IsCorruption(err):
		kind = string(KindCorruption)
	case IsStorage(err):
		kind = string(KindStorage)
	default:
		kind = "unknown"
	}
	g.metrics.RecordPersistenceOp(operation, time.Since(start), kind)
}
