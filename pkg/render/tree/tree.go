// Package tree prints a dependency graph as an indented box-drawing tree.
//
//	└── 📦 app v0.1.0
//	    ├── 🔨 cc v1.0.90
//	    ├── 🔧 insta v1.34.0
//	    │   └── 📚 serde v1.0.200
//	    └── 📚 serde v1.0.200 [circular]
//
// The walk starts at the root and visits children sorted by name. A package
// is expanded only the first time it is printed; later occurrences, whether
// from a real cycle or from a second parent, carry a "[circular]" marker.
// The walk is independent of the depth annotation.
package tree

import (
	"cmp"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/treasuremap/pkg/graph"
)

// Branch prefixes.
const (
	branchMid   = "├── "
	branchLast  = "└── "
	indentMid   = "│   "
	indentLast  = "    "
	circularTag = " [circular]"
)

// Icons by package kind.
const (
	IconWorkspace = "📦"
	IconDev       = "🔧"
	IconBuild     = "🔨"
	IconLibrary   = "📚"
)

var classStyles = map[graph.Class]lipgloss.Style{
	graph.ClassRoot:   lipgloss.NewStyle().Foreground(lipgloss.Color("35")),
	graph.ClassDev:    lipgloss.NewStyle().Foreground(lipgloss.Color("75")),
	graph.ClassBuild:  lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	graph.ClassDeep:   lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	graph.ClassNormal: lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
}

// Options configures tree output.
type Options struct {
	// Plain disables colors.
	Plain bool
	// MaxDepth stops expanding below this many levels under the root.
	// Zero means unlimited.
	MaxDepth int
}

// Icon returns the icon for a node. Workspace members take precedence,
// then dev, then build dependencies.
func Icon(n graph.Node) string {
	switch {
	case n.IsWorkspaceMember():
		return IconWorkspace
	case n.IsDev:
		return IconDev
	case n.IsBuild:
		return IconBuild
	default:
		return IconLibrary
	}
}

type item struct {
	node   int
	prefix string
	last   bool
	level  int
}

// Print writes the tree below the root of g to w. Graphs without a root
// print nothing. Write errors are ignored.
func Print(w io.Writer, g *graph.Graph, opts Options) {
	root, ok := g.Root()
	if !ok {
		return
	}

	visited := make([]bool, g.NodeCount())
	stack := []item{{node: root, last: true}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := g.Node(it.node)
		line := Icon(n) + " " + n.Label()
		if !opts.Plain {
			line = classStyles[graph.Classify(n)].Render(line)
		}
		connector := branchMid
		if it.last {
			connector = branchLast
		}
		if visited[it.node] {
			_, _ = io.WriteString(w, it.prefix+connector+line+circularTag+"\n")
			continue
		}
		_, _ = io.WriteString(w, it.prefix+connector+line+"\n")
		visited[it.node] = true

		if opts.MaxDepth > 0 && it.level >= opts.MaxDepth {
			continue
		}
		children := sortedChildren(g, it.node)
		childPrefix := it.prefix + indentMid
		if it.last {
			childPrefix = it.prefix + indentLast
		}
		// Push in reverse so the first child is printed first.
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, item{
				node:   children[i],
				prefix: childPrefix,
				last:   i == len(children)-1,
				level:  it.level + 1,
			})
		}
	}
}

// Render returns the tree as a string.
func Render(g *graph.Graph, opts Options) string {
	var b strings.Builder
	Print(&b, g, opts)
	return b.String()
}

// sortedChildren returns the edge targets of node ordered by name. Equal
// names keep declaration order.
func sortedChildren(g *graph.Graph, node int) []int {
	children := g.Children(node)
	slices.SortStableFunc(children, func(a, b int) int {
		return cmp.Compare(g.Node(a).Name, g.Node(b).Name)
	})
	return children
}
