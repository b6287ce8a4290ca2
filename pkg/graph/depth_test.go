package graph

import (
	"fmt"
	"testing"

	"github.com/matzehuels/treasuremap/pkg/metadata"
)

func TestAnnotateDepths_FirstDiscoveryNotShortest(t *testing.T) {
	// A declares E before B, and E also depends on B. The walk reaches B
	// through E first, so B gets depth 2 although A -> B has length 1.
	g := mustBuild(t, snapshot(
		rootPkg("A", dep("E"), dep("B")),
		regPkg("E", "1.0.0", dep("B")),
		regPkg("B", "1.0.0", dep("D")),
		regPkg("D", "1.0.0"),
	))
	AnnotateDepths(g)

	want := map[string]int{"A": 0, "E": 1, "B": 2, "D": 3}
	for name, depth := range want {
		if got := nodeByName(t, g, name).Depth; got != depth {
			t.Errorf("%s.Depth = %d, want %d", name, got, depth)
		}
	}
	if got := g.MaxDepth(); got != 3 {
		t.Errorf("MaxDepth() = %d, want 3", got)
	}
}

func TestAnnotateDepths_TreeMatchesDistance(t *testing.T) {
	g := mustBuild(t, snapshot(
		rootPkg("app", dep("a"), dep("b")),
		regPkg("a", "1.0.0", dep("a1"), dep("a2")),
		regPkg("b", "1.0.0", dep("b1")),
		regPkg("a1", "1.0.0"),
		regPkg("a2", "1.0.0"),
		regPkg("b1", "1.0.0", dep("b2")),
		regPkg("b2", "1.0.0"),
	))
	AnnotateDepths(g)

	want := map[string]int{"app": 0, "a": 1, "b": 1, "a1": 2, "a2": 2, "b1": 2, "b2": 3}
	for name, depth := range want {
		if got := nodeByName(t, g, name).Depth; got != depth {
			t.Errorf("%s.Depth = %d, want %d", name, got, depth)
		}
	}
}

func TestAnnotateDepths_Unreachable(t *testing.T) {
	g := mustBuild(t, snapshot(
		rootPkg("app", dep("a")),
		regPkg("a", "1.0.0"),
		regPkg("z", "1.0.0", dep("a")),
	))
	AnnotateDepths(g)

	z := mustIndex(t, g, "z", "1.0.0")
	if g.Node(z).Depth != 0 {
		t.Errorf("z.Depth = %d, want 0", g.Node(z).Depth)
	}
	if g.Reachable(z) {
		t.Error("z should not be reachable")
	}
	if a := mustIndex(t, g, "a", "1.0.0"); !g.Reachable(a) {
		t.Error("a should be reachable")
	}
	root, _ := g.Root()
	if !g.Reachable(root) {
		t.Error("root should be reachable")
	}
}

func TestAnnotateDepths_Cycle(t *testing.T) {
	g := mustBuild(t, snapshot(
		rootPkg("A", dep("D")),
		regPkg("D", "1.0.0", dep("A")),
	))
	AnnotateDepths(g)

	if got := nodeByName(t, g, "A").Depth; got != 0 {
		t.Errorf("A.Depth = %d, want 0", got)
	}
	if got := nodeByName(t, g, "D").Depth; got != 1 {
		t.Errorf("D.Depth = %d, want 1", got)
	}
}

func TestAnnotateDepths_NoRoot(t *testing.T) {
	md := &metadata.Metadata{Packages: []metadata.Package{
		regPkg("a", "1.0.0", dep("b")),
		regPkg("b", "1.0.0"),
	}}
	g := mustBuild(t, md)
	AnnotateDepths(g)

	for i := range g.NodeCount() {
		if g.Node(i).Depth != 0 || g.Reachable(i) {
			t.Errorf("node %s: depth %d reachable %v, want 0 false", g.Node(i).ID, g.Node(i).Depth, g.Reachable(i))
		}
	}
}

func TestAnnotateDepths_Idempotent(t *testing.T) {
	g := mustBuild(t, snapshot(rootPkg("app", dep("a")), regPkg("a", "1.0.0", dep("b")), regPkg("b", "1.0.0")))
	AnnotateDepths(g)
	AnnotateDepths(g)
	if got := nodeByName(t, g, "b").Depth; got != 2 {
		t.Errorf("b.Depth = %d after two passes, want 2", got)
	}
}

func TestAnnotateDepths_LongChain(t *testing.T) {
	const n = 100_000
	nodes := make([]Node, n)
	edges := make([]Edge, 0, n-1)
	for i := range nodes {
		name := fmt.Sprintf("c%d", i)
		nodes[i] = Node{ID: name + " 1.0.0", Name: name, Version: "1.0.0"}
		if i > 0 {
			edges = append(edges, Edge{From: i - 1, To: i, Kind: metadata.Normal})
		}
	}
	g, err := New(nodes, edges, nodes[0].ID)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	AnnotateDepths(g)

	if got := g.Node(n - 1).Depth; got != n-1 {
		t.Errorf("last depth = %d, want %d", got, n-1)
	}
	if got := g.MaxDepth(); got != n-1 {
		t.Errorf("MaxDepth() = %d, want %d", got, n-1)
	}
}
