// Package analysis computes structural metrics over a dependency graph:
// counts, duplicated crates, cycles and source sizes.
//
// Every function here only reads the graph. Depth-based figures require
// [graph.AnnotateDepths] to have run first.
package analysis

import (
	"github.com/google/uuid"

	"github.com/matzehuels/treasuremap/pkg/enrich"
	"github.com/matzehuels/treasuremap/pkg/graph"
)

// DefaultTopN is the number of largest dependencies reported by default.
const DefaultTopN = 10

// Options configures [Analyze].
type Options struct {
	// TopN limits Report.Largest. Zero means DefaultTopN.
	TopN int
}

// Report summarizes a dependency graph.
type Report struct {
	RunID string `json:"run_id" yaml:"run_id"`
	// Root is the root package label, empty for graphs without a root.
	Root string `json:"root,omitempty" yaml:"root,omitempty"`

	TotalDependencies  int `json:"total_dependencies" yaml:"total_dependencies"`
	DirectDependencies int `json:"direct_dependencies" yaml:"direct_dependencies"`
	DevDependencies    int `json:"dev_dependencies" yaml:"dev_dependencies"`
	MaxDepth           int `json:"max_depth" yaml:"max_depth"`

	Duplicates []DuplicateDependency `json:"duplicates" yaml:"duplicates"`
	Cycles     []Cycle               `json:"cycles" yaml:"cycles"`

	TotalSize uint64       `json:"total_size" yaml:"total_size"`
	Largest   []SizedEntry `json:"largest" yaml:"largest"`

	// Enrichment is nil unless the enrichment checks were requested.
	Enrichment *enrich.Results `json:"enrichment,omitempty" yaml:"enrichment,omitempty"`
}

// Analyze builds a report for g. It never runs external tools; see
// package enrich for that.
func Analyze(g *graph.Graph, opts Options) *Report {
	topN := opts.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}

	r := &Report{
		RunID:             uuid.NewString(),
		TotalDependencies: g.NodeCount(),
		MaxDepth:          g.MaxDepth(),
		Duplicates:        FindDuplicates(g),
		Cycles:            FindCycles(g),
		TotalSize:         TotalSize(g),
		Largest:           Largest(g, topN),
	}
	if root, ok := g.Root(); ok {
		r.Root = g.Node(root).Label()
		r.DirectDependencies = g.OutDegree(root)
	}
	for _, n := range g.Nodes() {
		if n.IsDev {
			r.DevDependencies++
		}
	}
	return r
}
