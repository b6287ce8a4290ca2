package analysis

import (
	"slices"
	"strings"

	"github.com/matzehuels/treasuremap/pkg/graph"
)

// DuplicateDependency is a crate present in more than one version.
type DuplicateDependency struct {
	Name string `json:"name" yaml:"name"`
	// Versions lists the version of every node with this name, in node
	// order. A version appears more than once when several packages share
	// name and version, for example a registry and a git copy.
	Versions []string `json:"versions" yaml:"versions"`
}

// FindDuplicates reports every name carried by nodes with at least two
// distinct versions, sorted by name.
func FindDuplicates(g *graph.Graph) []DuplicateDependency {
	versions := make(map[string][]string)
	var names []string
	for _, n := range g.Nodes() {
		if _, seen := versions[n.Name]; !seen {
			names = append(names, n.Name)
		}
		versions[n.Name] = append(versions[n.Name], n.Version)
	}

	out := []DuplicateDependency{}
	for _, name := range names {
		vs := versions[name]
		if distinct(vs) < 2 {
			continue
		}
		out = append(out, DuplicateDependency{Name: name, Versions: vs})
	}
	slices.SortStableFunc(out, func(a, b DuplicateDependency) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

func distinct(vs []string) int {
	seen := make(map[string]struct{}, len(vs))
	for _, v := range vs {
		seen[v] = struct{}{}
	}
	return len(seen)
}
