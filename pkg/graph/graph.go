package graph

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/matzehuels/treasuremap/pkg/metadata"
)

var (
	// ErrNoMetadata is returned by [Build] when there is no snapshot to
	// build from.
	ErrNoMetadata = errors.New("no metadata snapshot")

	// ErrInvalidPackageID is returned when a package has an empty id.
	ErrInvalidPackageID = errors.New("package id must not be empty")

	// ErrDuplicatePackageID is returned when two packages share an id.
	// The id table must stay a bijection onto the node set.
	ErrDuplicatePackageID = errors.New("duplicate package id")

	// ErrUnknownRoot is returned when the designated root id names no package.
	ErrUnknownRoot = errors.New("root package not found")

	// ErrInvalidEdgeEndpoint is returned by [New] when an edge refers to a
	// node index outside the node slice.
	ErrInvalidEdgeEndpoint = errors.New("invalid edge endpoint")
)

// Node is one resolved package.
type Node struct {
	ID      string `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	Version string `json:"version" yaml:"version"`
	// Source is nil for members of the project's own workspace.
	Source   *string  `json:"source,omitempty" yaml:"source,omitempty"`
	Features []string `json:"features,omitempty" yaml:"features,omitempty"`
	// SizeBytes approximates the package footprint by summing the sizes of
	// its target source files. Nil when nothing could be measured.
	SizeBytes *uint64 `json:"size_bytes,omitempty" yaml:"size_bytes,omitempty"`
	License   *string `json:"license,omitempty" yaml:"license,omitempty"`
	// IsDev and IsBuild are set when any incoming edge has that kind.
	IsDev   bool `json:"is_dev,omitempty" yaml:"is_dev,omitempty"`
	IsBuild bool `json:"is_build,omitempty" yaml:"is_build,omitempty"`
	Depth   int  `json:"depth" yaml:"depth"`
}

// Label returns "name vVERSION".
func (n Node) Label() string { return n.Name + " v" + n.Version }

// IsWorkspaceMember reports whether the package belongs to the project
// itself rather than to a registry, git or path dependency.
func (n Node) IsWorkspaceMember() bool { return n.Source == nil }

// Edge is a dependency from node From on node To.
type Edge struct {
	From int                     `json:"from"`
	To   int                     `json:"to"`
	Kind metadata.DependencyKind `json:"kind"`
}

// Graph is an indexed dependency graph. See the package documentation.
// Use [Build] or [New] to create one.
type Graph struct {
	nodes   []Node
	edges   []Edge
	out     [][]int // node index -> indices into edges, declaration order
	index   map[string]int
	root    int
	reached []bool // set by AnnotateDepths
}

// New assembles a graph from nodes and edges. rootID names the root package
// and may be empty. Edge order is preserved and defines traversal order.
func New(nodes []Node, edges []Edge, rootID string) (*Graph, error) {
	g := &Graph{
		nodes: slices.Clone(nodes),
		edges: slices.Clone(edges),
		out:   make([][]int, len(nodes)),
		index: make(map[string]int, len(nodes)),
		root:  -1,
	}
	for i, n := range g.nodes {
		if n.ID == "" {
			return nil, fmt.Errorf("package %q: %w", n.Name, ErrInvalidPackageID)
		}
		if _, exists := g.index[n.ID]; exists {
			return nil, fmt.Errorf("package %s: %w", n.ID, ErrDuplicatePackageID)
		}
		g.index[n.ID] = i
	}
	for ei, e := range g.edges {
		if e.From < 0 || e.From >= len(g.nodes) || e.To < 0 || e.To >= len(g.nodes) {
			return nil, fmt.Errorf("edge %d (%d -> %d): %w", ei, e.From, e.To, ErrInvalidEdgeEndpoint)
		}
		g.out[e.From] = append(g.out[e.From], ei)
	}
	if rootID != "" {
		idx, ok := g.index[rootID]
		if !ok {
			return nil, fmt.Errorf("%s: %w", rootID, ErrUnknownRoot)
		}
		g.root = idx
	}
	return g, nil
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Node returns the node at index i. It panics if i is out of range.
func (g *Graph) Node(i int) Node { return g.nodes[i] }

// Nodes returns a copy of all nodes in index order.
func (g *Graph) Nodes() []Node { return slices.Clone(g.nodes) }

// Edges returns a copy of all edges in declaration order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// OutEdges returns the edges leaving node i in declaration order.
func (g *Graph) OutEdges(i int) []Edge {
	out := make([]Edge, len(g.out[i]))
	for k, ei := range g.out[i] {
		out[k] = g.edges[ei]
	}
	return out
}

// Children returns the target indices of the edges leaving node i, in
// declaration order. A target appears once per edge.
func (g *Graph) Children(i int) []int {
	out := make([]int, len(g.out[i]))
	for k, ei := range g.out[i] {
		out[k] = g.edges[ei].To
	}
	return out
}

// OutDegree returns the number of edges leaving node i.
func (g *Graph) OutDegree(i int) int { return len(g.out[i]) }

// Index returns the node index of the package with the given id.
func (g *Graph) Index(id string) (int, bool) {
	i, ok := g.index[id]
	return i, ok
}

// IDIndex returns a copy of the package id to node index table.
func (g *Graph) IDIndex() map[string]int { return maps.Clone(g.index) }

// Root returns the root node index, if the graph has a root.
func (g *Graph) Root() (int, bool) { return g.root, g.root >= 0 }

// FindByName returns the first node, in index order, with the given name.
func (g *Graph) FindByName(name string) (int, bool) {
	for i := range g.nodes {
		if g.nodes[i].Name == name {
			return i, true
		}
	}
	return -1, false
}

// Reachable reports whether node i was reached from the root by
// [AnnotateDepths]. It returns false for every node before annotation.
func (g *Graph) Reachable(i int) bool {
	return i >= 0 && i < len(g.reached) && g.reached[i]
}
