package graph

// FindPath returns the names along a shortest path, by edge count, from the
// package named from to the package named to, both endpoints included.
//
// Both endpoints are looked up by name; when several versions share a name
// the first node in index order is used. Edges are followed in declaration
// order, so among equally short paths the one discovered first wins.
// The second result is false when either name is unknown or to is not
// reachable from from. Identical endpoints yield a single-element path.
func FindPath(g *Graph, from, to string) ([]string, bool) {
	src, ok := g.FindByName(from)
	if !ok {
		return nil, false
	}
	dst, ok := g.FindByName(to)
	if !ok {
		return nil, false
	}

	idx, ok := shortestPath(g, src, dst)
	if !ok {
		return nil, false
	}
	names := make([]string, len(idx))
	for i, n := range idx {
		names[i] = g.nodes[n].Name
	}
	return names, true
}

// shortestPath runs a breadth-first search from src and returns the node
// indices of the first shortest path found to dst.
func shortestPath(g *Graph, src, dst int) ([]int, bool) {
	if src == dst {
		return []int{src}, true
	}

	prev := make([]int, len(g.nodes))
	for i := range prev {
		prev[i] = -1
	}
	seen := make([]bool, len(g.nodes))
	seen[src] = true
	queue := []int{src}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, ei := range g.out[cur] {
			next := g.edges[ei].To
			if seen[next] {
				continue
			}
			seen[next] = true
			prev[next] = cur
			if next == dst {
				return unwind(prev, src, dst), true
			}
			queue = append(queue, next)
		}
	}
	return nil, false
}

func unwind(prev []int, src, dst int) []int {
	var path []int
	for n := dst; n != -1; n = prev[n] {
		path = append(path, n)
		if n == src {
			break
		}
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
