package actor

// Status represents the lifecycle status of an actor.
type Status string

const (
	// StatusActive indicates the actor is running and accepting events.
	StatusActive Status = "active"

	// StatusDone indicates the actor finished its process normally.
	StatusDone Status = "done"

	// StatusError indicates the actor reported a fault that has not been
	// recovered yet.
	StatusError Status = "error"

	// StatusStopped indicates the actor was stopped and no longer accepts
	// events.
	StatusStopped Status = "stopped"
)

// Valid reports whether s is one of the enumerated statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusDone, StatusError, StatusStopped:
		return true
	}
	return false
}

// Snapshot is the externally observable state of an actor at a point in
// time. Context is an opaque payload owned by the actor definition; the
// runtime only inspects Status and the presence of Context.
type Snapshot struct {
	// Status is the current lifecycle status.
	Status Status `json:"status"`

	// Context is the actor-defined state payload.
	Context map[string]interface{} `json:"context"`
}

// Clone returns a copy of the snapshot with a copied top-level context map.
// Nested values are shared; definitions that mutate nested state should
// replace the containing entry.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{Status: s.Status, Context: make(map[string]interface{}, len(s.Context))}
	for k, v := range s.Context {
		out.Context[k] = v
	}
	return out
}
