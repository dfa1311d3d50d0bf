package supervision

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stagehand/stagehand/pkg/telemetry"
)

// CollectedError is one escalated failure recorded by the aggregator.
type CollectedError struct {
	// ID uniquely identifies this entry.
	ID string `json:"id"`

	// ActorID is the actor that escalated the error.
	ActorID string `json:"actor_id"`

	// Err is the escalated error.
	Err error `json:"-"`

	// Message is the error text, kept separately so entries serialize.
	Message string `json:"message"`

	// At is when the error was collected.
	At time.Time `json:"at"`
}

// Aggregator is the process-wide collector for escalated actor errors. It
// is owned by the application-boundary runtime object and injected into the
// registry, never reached through import-time global state. Reset must be
// invoked between independent application runs (notably test cases) so
// accumulated errors do not leak across them.
type Aggregator struct {
	mu      sync.Mutex
	log     *telemetry.Logger
	entries []CollectedError
}

// NewAggregator creates an empty aggregator.
func NewAggregator(log *telemetry.Logger) *Aggregator {
	if log == nil {
		log = telemetry.NopLogger()
	}
	return &Aggregator{log: log.NewComponentLogger("aggregator")}
}

// Collect records an escalated error from the given actor.
func (a *Aggregator) Collect(actorID string, err error) {
	entry := CollectedError{
		ID:      uuid.New().String(),
		ActorID: actorID,
		Err:     err,
		At:      time.Now(),
	}
	if err != nil {
		entry.Message = err.Error()
	}

	a.mu.Lock()
	a.entries = append(a.entries, entry)
	a.mu.Unlock()

	a.log.WithActorID(actorID).WithError(err).Warn("actor error escalated")
}

// Errors returns a copy of the collected entries in collection order.
func (a *Aggregator) Errors() []CollectedError {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]CollectedError, len(a.entries))
	copy(out, a.entries)
	return out
}

// Len returns the number of collected entries.
func (a *Aggregator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.entries)
}

// Reset discards all collected entries.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	a.entries = nil
	a.mu.Unlock()
}
