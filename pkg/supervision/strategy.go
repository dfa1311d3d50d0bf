// Package supervision intercepts actor-reported failures and decides
// recovery. A per-actor strategy selects between restarting the actor in
// place and escalating the error to a process-wide root aggregator; errors
// never propagate as unhandled failures out of the actor boundary.
package supervision

// Kind is the strategy variant tag. Dispatch is a plain switch on the tag.
type Kind string

const (
	// KindNone leaves faults unhandled by supervision; the error is
	// surfaced to the caller that triggered it.
	KindNone Kind = "none"

	// KindRestart reconstructs the actor from its initial definition.
	KindRestart Kind = "restart"

	// KindEscalate forwards the error to the root aggregator and stops
	// the actor.
	KindEscalate Kind = "escalate"
)

// DefaultMaxRestarts bounds restart attempts per actor. Unbounded immediate
// restart risks a tight failure loop, so exceeding the ceiling escalates
// instead.
const DefaultMaxRestarts = 5

// Strategy is a per-actor supervision policy, selected at registration
// time.
type Strategy struct {
	// Kind selects the recovery behavior.
	Kind Kind

	// MaxRestarts bounds restart attempts for KindRestart. Zero means
	// DefaultMaxRestarts.
	MaxRestarts int
}

// None returns the propagate-to-caller strategy. This is the default for
// actors registered without an explicit strategy.
func None() Strategy {
	return Strategy{Kind: KindNone}
}

// Restart returns a restart strategy with the given attempt ceiling.
// A ceiling of zero uses DefaultMaxRestarts.
func Restart(maxRestarts int) Strategy {
	return Strategy{Kind: KindRestart, MaxRestarts: maxRestarts}
}

// Escalate returns the escalate-to-aggregator strategy.
func Escalate() Strategy {
	return Strategy{Kind: KindEscalate}
}

// maxRestarts resolves the effective restart ceiling.
func (s Strategy) maxRestarts() int {
	if s.MaxRestarts > 0 {
		return s.MaxRestarts
	}
	return DefaultMaxRestarts
}

// Action reports what the supervisor did with a fault.
type Action string

const (
	// ActionNone indicates the fault was left to the caller.
	ActionNone Action = "none"

	// ActionRestarted indicates the actor was rebuilt from its initial
	// definition and is active again.
	ActionRestarted Action = "restarted"

	// ActionEscalated indicates the fault was forwarded to the root
	// aggregator and the actor was stopped.
	ActionEscalated Action = "escalated"
)
