package supervision

import (
	"sync"

	"github.com/stagehand/stagehand/pkg/actor"
	"github.com/stagehand/stagehand/pkg/telemetry"
)

// Supervisor applies per-actor strategies to reported faults. One
// supervisor serves a whole registry; restart counters are tracked per
// actor id.
type Supervisor struct {
	log     *telemetry.Logger
	metrics *telemetry.Metrics
	agg     *Aggregator

	mu       sync.Mutex
	restarts map[string]int
}

// NewSupervisor creates a supervisor forwarding escalations to agg.
// Metrics may be nil.
func NewSupervisor(agg *Aggregator, log *telemetry.Logger, metrics *telemetry.Metrics) *Supervisor {
	if log == nil {
		log = telemetry.NopLogger()
	}
	return &Supervisor{
		log:      log.NewComponentLogger("supervisor"),
		metrics:  metrics,
		agg:      agg,
		restarts: make(map[string]int),
	}
}

// Handle applies the strategy to a fault reported by the actor behind h and
// returns the action taken. Restart rebuilds the actor in place, keeping
// the handle identity and all dependency edges; the restart count is
// bounded by the strategy ceiling, beyond which the fault escalates.
func (s *Supervisor) Handle(h *actor.Handle, strategy Strategy, err error) Action {
	id := h.ID()
	log := s.log.WithActorID(id).WithStrategy(string(strategy.Kind)).WithError(err)

	switch strategy.Kind {
	case KindRestart:
		s.mu.Lock()
		attempts := s.restarts[id]
		if attempts >= strategy.maxRestarts() {
			s.mu.Unlock()
			log.WithField("attempts", attempts).
				Warn("restart ceiling exceeded, escalating")
			s.escalate(id, err)
			h.Stop()
			return ActionEscalated
		}
		s.restarts[id] = attempts + 1
		s.mu.Unlock()

		h.Restart()
		s.metrics.RecordRestart(id)
		log.WithField("attempt", attempts+1).Info("actor restarted after fault")
		return ActionRestarted

	case KindEscalate:
		s.escalate(id, err)
		h.Stop()
		log.Info("actor stopped, error escalated to root aggregator")
		return ActionEscalated

	default:
		log.Debug("fault left to caller, no supervision strategy")
		return ActionNone
	}
}

// escalate forwards an error to the aggregator.
func (s *Supervisor) escalate(actorID string, err error) {
	if s.agg != nil {
		s.agg.Collect(actorID, err)
	}
	s.metrics.RecordEscalation()
}

// Forget drops the restart counter for an actor. Called when the actor is
// unregistered.
func (s *Supervisor) Forget(actorID string) {
	s.mu.Lock()
	delete(s.restarts, actorID)
	s.mu.Unlock()
}

// Restarts returns the number of restarts performed for an actor.
func (s *Supervisor) Restarts(actorID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.restarts[actorID]
}

// Reset drops all restart counters. Called during registry reset.
func (s *Supervisor) Reset() {
	s.mu.Lock()
	s.restarts = make(map[string]int)
	s.mu.Unlock()
}
