package registry_test

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/stagehand/stagehand/pkg/actor"
	"github.com/stagehand/stagehand/pkg/persist"
	"github.com/stagehand/stagehand/pkg/registry"
	"github.com/stagehand/stagehand/pkg/supervision"
)

// Example demonstrates registering actors with dependencies and computing
// an initialization order.
func Example_dependencyOrdering() {
	r := registry.New(registry.Config{})
	ctx := context.Background()

	noop := actor.Definition{
		InitialContext: map[string]interface{}{},
		Transition: func(snap actor.Snapshot, ev actor.Event) (actor.Snapshot, error) {
			return snap, nil
		},
	}

	// A web application: the api needs the database, the ui needs the api.
	for _, id := range []string{"database", "api", "ui"} {
		if _, err := r.Register(ctx, id, noop, registry.Options{}); err != nil {
			log.Fatal(err)
		}
	}
	r.AddDependency("api", "database")
	r.AddDependency("ui", "api")

	order, skipped := r.TopologicalOrder([]string{"ui", "api", "database"})
	fmt.Println("order:", strings.Join(order, " -> "))
	fmt.Println("skipped edges:", len(skipped))
	// Output:
	// order: database -> api -> ui
	// skipped edges: 0
}

// Example demonstrates a supervised actor that is restarted after a fault.
func Example_supervisedRestart() {
	r := registry.New(registry.Config{})
	ctx := context.Background()

	def := actor.Definition{
		InitialContext: map[string]interface{}{"attempts": float64(0)},
		Transition: func(snap actor.Snapshot, ev actor.Event) (actor.Snapshot, error) {
			if ev.Type == "work" {
				return actor.Snapshot{}, fmt.Errorf("downstream unavailable")
			}
			return snap, nil
		},
	}

	h, err := r.Register(ctx, "worker", def, registry.Options{
		Strategy: supervision.Restart(3),
	})
	if err != nil {
		log.Fatal(err)
	}

	// The fault is absorbed by the supervisor and the actor restarts.
	if err := h.Send(actor.Event{Type: "work"}); err != nil {
		log.Fatal(err)
	}

	fmt.Println("status:", h.GetSnapshot().Status)
	fmt.Println("escalations:", r.Aggregator().Len())
	// Output:
	// status: active
	// escalations: 0
}

// Example demonstrates persisting actor state across registrations.
func Example_persistence() {
	guard := persist.NewGuard(persist.NewMemoryBackend(), nil, nil, nil)
	r := registry.New(registry.Config{Guard: guard})
	ctx := context.Background()

	def := actor.Definition{
		InitialContext: map[string]interface{}{"count": float64(0)},
		Transition: func(snap actor.Snapshot, ev actor.Event) (actor.Snapshot, error) {
			snap.Context["count"] = snap.Context["count"].(float64) + 1
			return snap, nil
		},
	}

	h, err := r.Register(ctx, "counter", def, registry.Options{Persist: true})
	if err != nil {
		log.Fatal(err)
	}
	_ = h.Send(actor.Event{Type: "tick"})
	_ = h.Send(actor.Event{Type: "tick"})
	r.Unregister("counter")

	// A new registration under the same id resumes from storage.
	h, err = r.Register(ctx, "counter", def, registry.Options{Persist: true})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("count:", h.GetSnapshot().Context["count"])
	// Output: count: 2
}
