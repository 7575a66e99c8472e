package graph

import "sort"

// DegreeStats summarizes the node degree distribution.
type DegreeStats struct {
	Min    int
	Max    int
	Mean   float64
	Median int
	Mode   int
}

// NodeDegree pairs a node name with its degree, for centrality listings.
type NodeDegree struct {
	Name   string
	Degree int
}

// DegreeStatistics computes min/max/mean/median/mode over all node degrees.
// An empty graph yields the zero value.
func (g *Graph) DegreeStatistics() DegreeStats {
	n := g.NodeCount()
	if n == 0 {
		return DegreeStats{}
	}

	degrees := make([]int, n)
	total := 0
	counts := make(map[int]int, n)
	for id := 0; id < n; id++ {
		d := g.Degree(id)
		degrees[id] = d
		total += d
		counts[d]++
	}
	sort.Ints(degrees)

	mode := degrees[0]
	best := 0
	for d, c := range counts {
		// Ties resolve to the smaller degree so the result is deterministic
		if c > best || (c == best && d < mode) {
			mode = d
			best = c
		}
	}

	return DegreeStats{
		Min:    degrees[0],
		Max:    degrees[n-1],
		Mean:   float64(total) / float64(n),
		Median: degrees[n/2],
		Mode:   mode,
	}
}

// TopDegreeNodes returns the k highest-degree nodes, ties broken by node name
// so the listing is stable.
func (g *Graph) TopDegreeNodes(k int) []NodeDegree {
	n := g.NodeCount()
	if k > n {
		k = n
	}
	if k <= 0 {
		return nil
	}

	all := make([]NodeDegree, n)
	for id := 0; id < n; id++ {
		all[id] = NodeDegree{Name: g.names[id], Degree: g.Degree(id)}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Degree != all[j].Degree {
			return all[i].Degree > all[j].Degree
		}
		return all[i].Name < all[j].Name
	})
	return all[:k]
}
