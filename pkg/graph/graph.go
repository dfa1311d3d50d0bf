// Package graph maintains directed "depends-on" edges between actor ids and
// computes initialization order. Dependency declarations are advisory hints
// for startup convenience, so the package is deliberately forgiving: wiring
// against an unknown id is a reported no-op and cycles are broken rather
// than treated as fatal.
package graph

import (
	"sort"

	"github.com/stagehand/stagehand/pkg/telemetry"
)

// Edge is a directed dependency declaration: Dependent must initialize
// after Dependency.
type Edge struct {
	Dependent  string `json:"dependent"`
	Dependency string `json:"dependency"`
}

// Graph records dependency edges between registered actor ids.
type Graph struct {
	log *telemetry.Logger

	// dependencies maps an id to the set of ids it depends on.
	dependencies map[string]map[string]struct{}

	// dependents is the reverse adjacency: id to the set of ids that
	// depend on it.
	dependents map[string]map[string]struct{}
}

// New creates an empty dependency graph.
func New(log *telemetry.Logger) *Graph {
	if log == nil {
		log = telemetry.NopLogger()
	}
	return &Graph{
		log:          log.NewComponentLogger("graph"),
		dependencies: make(map[string]map[string]struct{}),
		dependents:   make(map[string]map[string]struct{}),
	}
}

// AddNode makes an id known to the graph. Adding an existing id is a no-op.
func (g *Graph) AddNode(id string) {
	if _, ok := g.dependencies[id]; ok {
		return
	}
	g.dependencies[id] = make(map[string]struct{})
	g.dependents[id] = make(map[string]struct{})
}

// RemoveNode removes an id and every edge referencing it, in both
// directions. Removing an unknown id is a no-op.
func (g *Graph) RemoveNode(id string) {
	for dep := range g.dependencies[id] {
		delete(g.dependents[dep], id)
	}
	for dependent := range g.dependents[id] {
		delete(g.dependencies[dependent], id)
	}
	delete(g.dependencies, id)
	delete(g.dependents, id)
}

// HasNode reports whether id is known to the graph.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.dependencies[id]
	return ok
}

// Len returns the number of known ids.
func (g *Graph) Len() int {
	return len(g.dependencies)
}

// EdgeCount returns the number of dependency edges.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, deps := range g.dependencies {
		n += len(deps)
	}
	return n
}

// AddEdge records that dependent depends on dependency. It returns false
// when either endpoint is not a known id. Dependency wiring commonly races
// with registration during staggered startup, so a miss is an expected
// condition reported at debug severity, not an error.
func (g *Graph) AddEdge(dependent, dependency string) bool {
	if !g.HasNode(dependent) || !g.HasNode(dependency) {
		g.log.WithField("dependent", dependent).
			WithField("dependency", dependency).
			Debug("dependency edge skipped: endpoint not registered")
		return false
	}

	g.dependencies[dependent][dependency] = struct{}{}
	g.dependents[dependency][dependent] = struct{}{}
	return true
}

// Dependencies returns the ids that id depends on, sorted for determinism.
func (g *Graph) Dependencies(id string) []string {
	return sortedKeys(g.dependencies[id])
}

// Dependents returns the ids that depend on id, sorted for determinism.
func (g *Graph) Dependents(id string) []string {
	return sortedKeys(g.dependents[id])
}

// TopologicalSort orders the given ids with dependencies before dependents
// using a depth-first traversal. Traversal is restricted to the requested
// ids; dependencies outside the set are ignored for ordering purposes.
//
// Cycles are not fatal: a back-edge is skipped so that a total order is
// still produced, an error-level diagnostic is emitted, and the skipped
// edges are returned so callers can surface them. Every requested id
// appears in the result exactly once.
func (g *Graph) TopologicalSort(ids []string) ([]string, []Edge) {
	requested := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		requested[id] = struct{}{}
	}

	const (
		unvisited = iota
		visiting
		visited
	)

	state := make(map[string]int, len(ids))
	order := make([]string, 0, len(ids))
	var skipped []Edge

	var visit func(id string)
	visit = func(id string) {
		state[id] = visiting
		for _, dep := range g.Dependencies(id) {
			if _, ok := requested[dep]; !ok {
				continue
			}
			switch state[dep] {
			case unvisited:
				visit(dep)
			case visiting:
				// Back-edge: breaking it keeps the traversal
				// terminating and the order total.
				skipped = append(skipped, Edge{Dependent: id, Dependency: dep})
				g.log.WithField("dependent", id).
					WithField("dependency", dep).
					Error("dependency cycle detected, edge skipped in ordering")
			}
		}
		state[id] = visited
		order = append(order, id)
	}

	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if state[id] == unvisited {
			visit(id)
		}
	}

	return order, skipped
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
