package graph

// Components summarizes the connected components of a graph, in the
// undirected sense regardless of edge direction.
type Components struct {
	Count    int
	Largest  int
	Smallest int
}

// ConnectedComponents computes component count and extreme sizes with a
// union-find over the edge list. Edge direction is ignored.
func (g *Graph) ConnectedComponents() Components {
	n := g.NodeCount()
	if n == 0 {
		return Components{}
	}

	parent := make([]int, n)
	size := make([]int, n)
	for i := range parent {
		parent[i] = i
		size[i] = 1
	}

	var find func(x int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]] // path halving
			x = parent[x]
		}
		return x
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra == rb {
			return
		}
		if size[ra] < size[rb] {
			ra, rb = rb, ra
		}
		parent[rb] = ra
		size[ra] += size[rb]
	}

	for _, e := range g.edges {
		union(e.Source, e.Destination)
	}

	comps := Components{Smallest: n}
	for i := 0; i < n; i++ {
		if find(i) != i {
			continue
		}
		comps.Count++
		if size[i] > comps.Largest {
			comps.Largest = size[i]
		}
		if size[i] < comps.Smallest {
			comps.Smallest = size[i]
		}
	}
	return comps
}
