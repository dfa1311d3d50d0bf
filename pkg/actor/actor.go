// Package actor provides the state containers managed by the Stagehand
// runtime. An actor is a named, independently lifecycled unit of state with
// an opaque context payload and a defined set of valid statuses.
package actor

import (
	"fmt"
	"sync"
)

// Event is an opaque input delivered to an actor's transition function.
type Event struct {
	// Type identifies the event for the transition function.
	Type string `json:"type"`

	// Data carries optional event payload.
	Data map[string]interface{} `json:"data,omitempty"`
}

// Transition computes the next snapshot from the current snapshot and an
// incoming event. Returning an error marks the actor faulted and routes the
// error through the actor's supervision hook.
type Transition func(snap Snapshot, ev Event) (Snapshot, error)

// Definition declares an actor's initial state and behavior. The runtime
// treats both as opaque: it only needs the definition to construct and
// reconstruct the actor.
type Definition struct {
	// InitialContext is the context the actor starts with. A nil map is
	// treated as an empty context.
	InitialContext map[string]interface{}

	// Transition is invoked for every event sent to the actor. A nil
	// transition leaves the snapshot unchanged.
	Transition Transition
}

// initialSnapshot builds the snapshot a fresh instance of this definition
// starts from.
func (d Definition) initialSnapshot() Snapshot {
	snap := Snapshot{Status: StatusActive, Context: make(map[string]interface{}, len(d.InitialContext))}
	for k, v := range d.InitialContext {
		snap.Context[k] = v
	}
	return snap
}

// NotAcceptingError is returned by Send when the actor is in a terminal
// status and no longer routes events.
type NotAcceptingError struct {
	// ID is the actor id.
	ID string

	// Status is the terminal status that rejected the event.
	Status Status
}

// Error implements the error interface.
func (e *NotAcceptingError) Error() string {
	return fmt.Sprintf("actor %s is %s and no longer accepts events", e.ID, e.Status)
}

// Handle is the caller-facing reference to a registered actor. A handle is
// stable across supervised restarts: the internal state is replaced while
// the handle identity is preserved.
type Handle struct {
	id string

	mu   sync.Mutex
	def  Definition
	snap Snapshot

	// onError routes reported faults to the owning supervisor. Invoked
	// outside the handle lock so recovery may call back into the handle.
	onError func(error)

	// onTransition observes every accepted snapshot change. Used by the
	// registry for persistence write-through. Invoked outside the lock.
	onTransition func(Snapshot)
}

// NewHandle constructs a handle for the given definition. The actor starts
// active with the definition's initial context.
func NewHandle(id string, def Definition) *Handle {
	return &Handle{
		id:   id,
		def:  def,
		snap: def.initialSnapshot(),
	}
}

// ID returns the actor's registration id.
func (h *Handle) ID() string {
	return h.id
}

// GetSnapshot returns a copy of the actor's current snapshot.
func (h *Handle) GetSnapshot() Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snap.Clone()
}

// Send delivers an event to the actor's transition function. A transition
// error marks the actor faulted and is routed to the supervision hook when
// one is attached; only unsupervised actors surface the error to the caller.
func (h *Handle) Send(ev Event) error {
	h.mu.Lock()

	switch h.snap.Status {
	case StatusStopped, StatusDone:
		err := &NotAcceptingError{ID: h.id, Status: h.snap.Status}
		h.mu.Unlock()
		return err
	}

	if h.def.Transition == nil {
		h.mu.Unlock()
		return nil
	}

	next, err := h.def.Transition(h.snap.Clone(), ev)
	if err == nil && !next.Status.Valid() {
		err = fmt.Errorf("transition produced invalid status %q", next.Status)
	}
	if err != nil {
		h.snap.Status = StatusError
		hook := h.onError
		h.mu.Unlock()
		if hook != nil {
			hook(err)
			return nil
		}
		return err
	}

	if next.Context == nil {
		next.Context = make(map[string]interface{})
	}
	h.snap = next.Clone()
	observer := h.onTransition
	h.mu.Unlock()

	if observer != nil {
		observer(next)
	}
	return nil
}

// ReportError signals a fault raised outside the transition function, for
// example by asynchronous work owned by the actor. The fault is routed to
// the supervision hook when one is attached.
func (h *Handle) ReportError(err error) {
	h.mu.Lock()
	h.snap.Status = StatusError
	hook := h.onError
	h.mu.Unlock()

	if hook != nil {
		hook(err)
	}
}

// Restart discards the actor's current state and reconstructs it from the
// initial definition. The handle identity is unchanged.
func (h *Handle) Restart() {
	h.mu.Lock()
	h.snap = h.def.initialSnapshot()
	snap := h.snap.Clone()
	observer := h.onTransition
	h.mu.Unlock()

	if observer != nil {
		observer(snap)
	}
}

// Stop transitions the actor to the stopped status. Further events are
// rejected.
func (h *Handle) Stop() {
	h.mu.Lock()
	h.snap.Status = StatusStopped
	snap := h.snap.Clone()
	observer := h.onTransition
	h.mu.Unlock()

	if observer != nil {
		observer(snap)
	}
}

// Restore replaces the actor's snapshot with a previously persisted one.
// The snapshot must carry a valid status and a non-nil context.
func (h *Handle) Restore(snap Snapshot) error {
	if !snap.Status.Valid() {
		return fmt.Errorf("cannot restore actor %s: invalid status %q", h.id, snap.Status)
	}
	if snap.Context == nil {
		return fmt.Errorf("cannot restore actor %s: snapshot has no context", h.id)
	}

	h.mu.Lock()
	h.snap = snap.Clone()
	h.mu.Unlock()
	return nil
}

// SetErrorHandler attaches the supervision hook. Wired by the registry at
// registration time.
func (h *Handle) SetErrorHandler(fn func(error)) {
	h.mu.Lock()
	h.onError = fn
	h.mu.Unlock()
}

// SetTransitionHook attaches the snapshot observer. Wired by the registry
// when persistence is requested.
func (h *Handle) SetTransitionHook(fn func(Snapshot)) {
	h.mu.Lock()
	h.onTransition = fn
	h.mu.Unlock()
}
