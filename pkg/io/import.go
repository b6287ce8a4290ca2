package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/treasuremap/pkg/graph"
)

// ReadJSON decodes a graph written by [WriteJSON].
//
// ReadJSON returns an error if the JSON is malformed, a node id is empty or
// repeated, the root is unknown, or an edge references an unknown id.
// Errors from graph validation wrap the graph package sentinels, so
// errors.Is(err, graph.ErrDuplicatePackageID) and friends work.
//
// Depths are recomputed from the root. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*graph.Graph, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	index := make(map[string]int, len(doc.Nodes))
	for i, n := range doc.Nodes {
		index[n.ID] = i
	}
	edges := make([]graph.Edge, 0, len(doc.Edges))
	for _, e := range doc.Edges {
		from, ok := index[e.From]
		if !ok {
			return nil, fmt.Errorf("edge %s->%s: unknown source: %w", e.From, e.To, graph.ErrInvalidEdgeEndpoint)
		}
		to, ok := index[e.To]
		if !ok {
			return nil, fmt.Errorf("edge %s->%s: unknown target: %w", e.From, e.To, graph.ErrInvalidEdgeEndpoint)
		}
		edges = append(edges, graph.Edge{From: from, To: to, Kind: e.Kind})
	}

	g, err := graph.New(doc.Nodes, edges, doc.Root)
	if err != nil {
		return nil, err
	}
	graph.AnnotateDepths(g)
	return g, nil
}

// ImportJSON reads a JSON file at path and returns the decoded graph.
// It returns the same validation errors as [ReadJSON].
func ImportJSON(path string) (*graph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
