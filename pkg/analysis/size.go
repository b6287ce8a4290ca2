package analysis

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/matzehuels/treasuremap/pkg/graph"
)

// SizedEntry is a package label with its estimated source size.
type SizedEntry struct {
	Label string `json:"label" yaml:"label"`
	Bytes uint64 `json:"bytes" yaml:"bytes"`
}

// TotalSize sums the size of every node; unknown sizes count as zero.
func TotalSize(g *graph.Graph) uint64 {
	var total uint64
	for _, n := range g.Nodes() {
		if n.SizeBytes != nil {
			total += *n.SizeBytes
		}
	}
	return total
}

// Largest returns up to n nodes with known sizes, largest first. Equal
// sizes keep node order.
func Largest(g *graph.Graph, n int) []SizedEntry {
	out := []SizedEntry{}
	for _, node := range g.Nodes() {
		if node.SizeBytes == nil {
			continue
		}
		out = append(out, SizedEntry{Label: node.Label(), Bytes: *node.SizeBytes})
	}
	slices.SortStableFunc(out, func(a, b SizedEntry) int {
		return cmp.Compare(b.Bytes, a.Bytes)
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

var sizeUnits = []string{"B", "KB", "MB", "GB"}

// FormatSize renders a byte count with two decimals in binary units,
// e.g. "1.50 KB". Values beyond the largest unit stay in GB.
func FormatSize(bytes uint64) string {
	size := float64(bytes)
	unit := 0
	for size >= 1024 && unit < len(sizeUnits)-1 {
		size /= 1024
		unit++
	}
	return fmt.Sprintf("%.2f %s", size, sizeUnits[unit])
}
