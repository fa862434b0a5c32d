// Where: curstack/internal/domain/graph/toposort.go
// What: Deterministic topological ordering for the resource graph.
// Why: Materialization order must be stable across runs and map iteration orders.
package graph

import (
	"fmt"
	"sort"
	"strings"
)

// TopoSort returns a linearization of the graph in which every node appears
// after all of its dependencies. Ties among ready nodes are broken
// lexicographically so the same graph always yields the same order.
// An edge to an unknown node or a dependency cycle is an error.
func (g *Graph) TopoSort() ([]*Node, error) {
	indegree := make(map[string]int, len(g.nodes))
	dependents := make(map[string][]string, len(g.nodes))

	for name, n := range g.nodes {
		if _, ok := indegree[name]; !ok {
			indegree[name] = 0
		}
		for _, dep := range n.DependsOn {
			if _, ok := g.nodes[dep]; !ok {
				return nil, fmt.Errorf("node %s depends on unknown node %s", name, dep)
			}
			indegree[name]++
			dependents[dep] = append(dependents[dep], name)
		}
	}

	ready := make([]string, 0, len(g.nodes))
	for name, deg := range indegree {
		if deg == 0 {
			ready = append(ready, name)
		}
	}
	sort.Strings(ready)

	order := make([]*Node, 0, len(g.nodes))
	for len(ready) > 0 {
		name := ready[0]
		ready = ready[1:]
		order = append(order, g.nodes[name])

		released := make([]string, 0, len(dependents[name]))
		for _, dependent := range dependents[name] {
			indegree[dependent]--
			if indegree[dependent] == 0 {
				released = append(released, dependent)
			}
		}
		if len(released) > 0 {
			ready = append(ready, released...)
			sort.Strings(ready)
		}
	}

	if len(order) != len(g.nodes) {
		remaining := make([]string, 0)
		for name, deg := range indegree {
			if deg > 0 {
				remaining = append(remaining, name)
			}
		}
		sort.Strings(remaining)
		return nil, fmt.Errorf("dependency cycle involving: %s", strings.Join(remaining, ", "))
	}
	return order, nil
}
