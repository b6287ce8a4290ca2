package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/treasuremap/pkg/graph"
	"github.com/matzehuels/treasuremap/pkg/metadata"
)

type document struct {
	Root  string       `json:"root,omitempty"`
	Nodes []graph.Node `json:"nodes"`
	Edges []edge       `json:"edges"`
}

type edge struct {
	From string                  `json:"from"`
	To   string                  `json:"to"`
	Kind metadata.DependencyKind `json:"kind"`
}

// WriteJSON encodes g as indented JSON and writes it to w.
func WriteJSON(g *graph.Graph, w io.Writer) error {
	nodes := g.Nodes()
	doc := document{
		Nodes: nodes,
		Edges: make([]edge, 0, g.EdgeCount()),
	}
	if root, ok := g.Root(); ok {
		doc.Root = nodes[root].ID
	}
	for _, e := range g.Edges() {
		doc.Edges = append(doc.Edges, edge{From: nodes[e.From].ID, To: nodes[e.To].ID, Kind: e.Kind})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes g to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(g *graph.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(g, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
