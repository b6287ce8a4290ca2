package analysis

import "github.com/matzehuels/treasuremap/pkg/graph"

// Cycle lists the package names around a dependency cycle, starting at the
// package the closing edge points back to. The closing edge from the last
// entry to the first is implied.
type Cycle []string

// FindCycles walks the graph depth-first from every not yet visited node in
// index order, following edges in declaration order. Whenever an edge
// points at a node on the current path, the path from that node to the top
// is reported. Nodes finished by an earlier walk are not entered again.
//
// Cycles are reported as discovered, without canonical rotation, so the
// same cycle may appear more than once when reached through different
// edges. Every reported cycle exists in the edge set.
func FindCycles(g *graph.Graph) []Cycle {
	n := g.NodeCount()
	visited := make([]bool, n)
	// onStack maps a node to its position on the current path, or -1.
	onStack := make([]int, n)
	for i := range onStack {
		onStack[i] = -1
	}

	type frame struct {
		node     int
		children []int
		next     int
	}

	cycles := []Cycle{}
	var path []int
	var stack []frame

	enter := func(v int) {
		visited[v] = true
		onStack[v] = len(path)
		path = append(path, v)
		stack = append(stack, frame{node: v, children: g.Children(v)})
	}

	for start := range n {
		if visited[start] {
			continue
		}
		enter(start)
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next == len(top.children) {
				onStack[top.node] = -1
				path = path[:len(path)-1]
				stack = stack[:len(stack)-1]
				continue
			}
			child := top.children[top.next]
			top.next++

			if pos := onStack[child]; pos >= 0 {
				cycle := make(Cycle, 0, len(path)-pos)
				for _, v := range path[pos:] {
					cycle = append(cycle, g.Node(v).Name)
				}
				cycles = append(cycles, cycle)
			} else if !visited[child] {
				enter(child)
			}
		}
	}
	return cycles
}
