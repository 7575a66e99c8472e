package graph

import (
	"fmt"
	"strings"
)

// densityThreshold separates the "dense" and "sparse" wordings in the report.
const densityThreshold = 0.001

// topCentralNodes is how many high-degree nodes the report lists.
const topCentralNodes = 5

// Report renders a human-readable summary of the graph characteristics:
// node and edge counts, self-loops, density, connected components, degree
// statistics and the most central nodes by degree.
func (g *Graph) Report() string {
	var b strings.Builder

	direction := "undirected"
	if g.directed {
		direction = "directed"
	}
	weighting := "edges"
	if g.weighted {
		weighting = "weighted edges"
	}

	var loops string
	switch g.selfLoops {
	case 0:
		loops = "none are self-loops"
	case 1:
		loops = "one is a self-loop"
	default:
		loops = fmt.Sprintf("%d are self-loops", g.selfLoops)
	}
	fmt.Fprintf(&b, "The %s graph %s has %d nodes and %d %s, of which %s.",
		direction, g.name, g.NodeCount(), g.EdgeCount(), weighting, loops)

	density := g.Density()
	kind := "sparse"
	if density >= densityThreshold {
		kind = "dense"
	}
	comps := g.ConnectedComponents()
	if comps.Count == 1 {
		fmt.Fprintf(&b, " The graph is %s as it has a density of %.5f and is connected, as it has a single component.",
			kind, density)
	} else {
		smallest := fmt.Sprintf("%d nodes", comps.Smallest)
		if comps.Smallest == 1 {
			smallest = "a single node"
		}
		fmt.Fprintf(&b, " The graph is %s as it has a density of %.5f and has %d connected components, where the component with most nodes has %d nodes and the component with the least nodes has %s.",
			kind, density, comps.Count, comps.Largest, smallest)
	}

	stats := g.DegreeStatistics()
	fmt.Fprintf(&b, " The graph median node degree is %d, the mean node degree is %.2f, and the node degree mode is %d.",
		stats.Median, stats.Mean, stats.Mode)

	top := g.TopDegreeNodes(topCentralNodes)
	if len(top) > 0 {
		parts := make([]string, len(top))
		for i, nd := range top {
			parts[i] = fmt.Sprintf("%s (degree %d)", nd.Name, nd.Degree)
		}
		listing := parts[0]
		if len(parts) > 1 {
			listing = strings.Join(parts[:len(parts)-1], ", ") + " and " + parts[len(parts)-1]
		}
		fmt.Fprintf(&b, " The top %d most central nodes are %s.", len(top), listing)
	}

	return b.String()
}
