package graph

import (
	"testing"
)

func newTestGraph(ids ...string) *Graph {
	g := New(nil)
	for _, id := range ids {
		g.AddNode(id)
	}
	return g
}

func TestGraph_AddEdge_UnknownEndpoints(t *testing.T) {
	g := newTestGraph("a")

	if g.AddEdge("a", "missing") {
		t.Error("expected AddEdge to return false for unknown dependency")
	}
	if g.AddEdge("missing", "a") {
		t.Error("expected AddEdge to return false for unknown dependent")
	}
	if g.AddEdge("missing", "also-missing") {
		t.Error("expected AddEdge to return false when both endpoints are unknown")
	}
	if g.EdgeCount() != 0 {
		t.Errorf("expected no edges, got %d", g.EdgeCount())
	}
}

func TestGraph_AddEdge_BothRegistered(t *testing.T) {
	g := newTestGraph("a", "b")

	if !g.AddEdge("a", "b") {
		t.Fatal("expected AddEdge to succeed once both endpoints are registered")
	}

	deps := g.Dependencies("a")
	if len(deps) != 1 || deps[0] != "b" {
		t.Errorf("expected a to depend on b, got %v", deps)
	}

	dependents := g.Dependents("b")
	if len(dependents) != 1 || dependents[0] != "a" {
		t.Errorf("expected b's dependents to contain a, got %v", dependents)
	}
}

func TestGraph_RemoveNode_StripsEdgesBothDirections(t *testing.T) {
	g := newTestGraph("a", "b", "c")
	g.AddEdge("b", "a")
	g.AddEdge("c", "b")

	g.RemoveNode("b")

	if g.HasNode("b") {
		t.Error("expected b to be removed")
	}
	if deps := g.Dependencies("c"); len(deps) != 0 {
		t.Errorf("expected c to have no dependencies after removal, got %v", deps)
	}
	if dependents := g.Dependents("a"); len(dependents) != 0 {
		t.Errorf("expected a to have no dependents after removal, got %v", dependents)
	}
	if g.EdgeCount() != 0 {
		t.Errorf("expected no edges after removal, got %d", g.EdgeCount())
	}
}

func TestGraph_TopologicalSort_Linear(t *testing.T) {
	g := newTestGraph("a", "b", "c")
	g.AddEdge("b", "a")
	g.AddEdge("c", "b")

	order, skipped := g.TopologicalSort([]string{"c", "b", "a"})

	if len(skipped) != 0 {
		t.Errorf("expected no skipped edges, got %v", skipped)
	}
	want := []string{"a", "b", "c"}
	if len(order) != len(want) {
		t.Fatalf("expected order %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, order)
		}
	}
}

func TestGraph_TopologicalSort_DependenciesBeforeDependents(t *testing.T) {
	g := newTestGraph("app", "db", "cache", "api")
	g.AddEdge("api", "db")
	g.AddEdge("api", "cache")
	g.AddEdge("app", "api")

	order, skipped := g.TopologicalSort([]string{"app", "api", "cache", "db"})

	if len(skipped) != 0 {
		t.Errorf("expected no skipped edges, got %v", skipped)
	}

	pos := make(map[string]int, len(order))
	for i, id := range order {
		pos[id] = i
	}
	for _, id := range []string{"app", "api", "cache", "db"} {
		if _, ok := pos[id]; !ok {
			t.Fatalf("id %s missing from order %v", id, order)
		}
	}
	for _, edge := range []Edge{
		{Dependent: "api", Dependency: "db"},
		{Dependent: "api", Dependency: "cache"},
		{Dependent: "app", Dependency: "api"},
	} {
		if pos[edge.Dependency] > pos[edge.Dependent] {
			t.Errorf("dependency %s ordered after dependent %s: %v",
				edge.Dependency, edge.Dependent, order)
		}
	}
}

func TestGraph_TopologicalSort_CycleTerminates(t *testing.T) {
	g := newTestGraph("a", "b")
	g.AddEdge("a", "b")
	g.AddEdge("b", "a")

	order, skipped := g.TopologicalSort([]string{"a", "b"})

	if len(order) != 2 {
		t.Fatalf("expected both ids exactly once, got %v", order)
	}
	seen := map[string]bool{}
	for _, id := range order {
		if seen[id] {
			t.Fatalf("id %s appears more than once in %v", id, order)
		}
		seen[id] = true
	}
	if !seen["a"] || !seen["b"] {
		t.Fatalf("expected a and b in order, got %v", order)
	}

	if len(skipped) != 1 {
		t.Fatalf("expected one skipped edge, got %v", skipped)
	}
}

func TestGraph_TopologicalSort_IgnoresIDsOutsideRequestedSet(t *testing.T) {
	g := newTestGraph("a", "b", "c")
	g.AddEdge("b", "a")
	g.AddEdge("c", "b")

	order, _ := g.TopologicalSort([]string{"c", "b"})

	if len(order) != 2 {
		t.Fatalf("expected only requested ids in order, got %v", order)
	}
	if order[0] != "b" || order[1] != "c" {
		t.Errorf("expected [b c], got %v", order)
	}
}

func TestGraph_TopologicalSort_DuplicateInput(t *testing.T) {
	g := newTestGraph("a", "b")
	g.AddEdge("b", "a")

	order, _ := g.TopologicalSort([]string{"b", "a", "b"})

	if len(order) != 2 {
		t.Fatalf("expected each id once, got %v", order)
	}
}

func TestGraph_Dependencies_Unknown(t *testing.T) {
	g := newTestGraph()

	if deps := g.Dependencies("nope"); len(deps) != 0 {
		t.Errorf("expected empty dependencies for unknown id, got %v", deps)
	}
	if dependents := g.Dependents("nope"); len(dependents) != 0 {
		t.Errorf("expected empty dependents for unknown id, got %v", dependents)
	}
}
