// Where: curstack/internal/domain/graph/toposort_test.go
// What: Tests for graph ordering.
// Why: Materialization order must be stable and reject malformed graphs.
package graph

import (
	"strings"
	"testing"
)

func buildGraph(t *testing.T, nodes ...*Node) *Graph {
	t.Helper()
	g := New()
	for _, n := range nodes {
		if err := g.Add(n); err != nil {
			t.Fatalf("add %s: %v", n.Name, err)
		}
	}
	return g
}

func orderNames(t *testing.T, g *Graph) []string {
	t.Helper()
	order, err := g.TopoSort()
	if err != nil {
		t.Fatalf("toposort: %v", err)
	}
	names := make([]string, 0, len(order))
	for _, n := range order {
		names = append(names, n.Name)
	}
	return names
}

func TestTopoSortRespectsDependencies(t *testing.T) {
	g := buildGraph(t,
		&Node{Name: "policy", DependsOn: []string{"bucket"}},
		&Node{Name: "bucket"},
		&Node{Name: "report", DependsOn: []string{"policy"}},
	)

	names := orderNames(t, g)
	want := []string{"bucket", "policy", "report"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("unexpected order: %v", names)
		}
	}
}

func TestTopoSortBreaksTiesLexicographically(t *testing.T) {
	g := buildGraph(t,
		&Node{Name: "zeta"},
		&Node{Name: "alpha"},
		&Node{Name: "mid"},
	)

	names := orderNames(t, g)
	want := []string{"alpha", "mid", "zeta"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("unexpected order: %v", names)
		}
	}
}

func TestTopoSortIsDeterministic(t *testing.T) {
	build := func() *Graph {
		return buildGraph(t,
			&Node{Name: "b", DependsOn: []string{"root"}},
			&Node{Name: "a", DependsOn: []string{"root"}},
			&Node{Name: "root"},
			&Node{Name: "leaf", DependsOn: []string{"a", "b"}},
		)
	}

	first := orderNames(t, build())
	for i := 0; i < 20; i++ {
		again := orderNames(t, build())
		for j := range first {
			if first[j] != again[j] {
				t.Fatalf("order changed between runs: %v vs %v", first, again)
			}
		}
	}
}

func TestTopoSortRejectsUnknownDependency(t *testing.T) {
	g := buildGraph(t, &Node{Name: "orphan", DependsOn: []string{"ghost"}})

	if _, err := g.TopoSort(); err == nil || !strings.Contains(err.Error(), "unknown node ghost") {
		t.Fatalf("expected unknown-node error, got %v", err)
	}
}

func TestTopoSortRejectsCycle(t *testing.T) {
	g := buildGraph(t,
		&Node{Name: "a", DependsOn: []string{"b"}},
		&Node{Name: "b", DependsOn: []string{"a"}},
	)

	if _, err := g.TopoSort(); err == nil || !strings.Contains(err.Error(), "cycle") {
		t.Fatalf("expected cycle error, got %v", err)
	}
}

func TestGraphRejectsDuplicateNames(t *testing.T) {
	g := New()
	if err := g.Add(&Node{Name: "bucket"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := g.Add(&Node{Name: "bucket"}); err == nil {
		t.Fatalf("expected duplicate error")
	}
}
