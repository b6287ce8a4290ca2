package graph

// AnnotateDepths assigns every node reachable from the root its
// first-discovery depth under a depth-first walk.
//
// The walk starts at the root with depth 0 and explores each node's edges
// in declaration order, descending into a child before looking at the
// node's next edge. A node receives parent depth + 1 the first time it is
// reached and is never visited again, even when a shorter path to it is
// found later. Nodes that are not reached keep depth 0, as does every node
// of a graph without a root.
//
// AnnotateDepths is the only operation that modifies a built graph and must
// complete before the graph is shared with readers.
func AnnotateDepths(g *Graph) {
	g.reached = make([]bool, len(g.nodes))
	for i := range g.nodes {
		g.nodes[i].Depth = 0
	}
	root, ok := g.Root()
	if !ok {
		return
	}

	type frame struct {
		node  int
		depth int
		next  int // position in g.out[node]
	}

	g.reached[root] = true
	stack := []frame{{node: root}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next == len(g.out[top.node]) {
			stack = stack[:len(stack)-1]
			continue
		}
		child := g.edges[g.out[top.node][top.next]].To
		top.next++
		if g.reached[child] {
			continue
		}
		g.reached[child] = true
		g.nodes[child].Depth = top.depth + 1
		stack = append(stack, frame{node: child, depth: top.depth + 1})
	}
}

// MaxDepth returns the largest depth of any node, or 0 for an empty graph.
func (g *Graph) MaxDepth() int {
	deepest := 0
	for _, n := range g.nodes {
		if n.Depth > deepest {
			deepest = n.Depth
		}
	}
	return deepest
}
