// Package graph provides the in-memory graph that retrieved datasets are
// loaded into: a node vocabulary with stable IDs, optional node types, and
// weighted or unweighted edges, plus the degree and component statistics the
// retrieval report is built from.
package graph

import (
	pkgerrors "graphmine/pkg/errors"
)

// Edge is a single edge between two node IDs. Weight is meaningful only when
// the graph reports HasWeights.
type Edge struct {
	Source      int
	Destination int
	Weight      float64
}

// Graph is an in-memory graph keyed by node name. Node IDs are dense and
// assigned in first-seen order, so loading the same files twice yields the
// same IDs.
type Graph struct {
	name     string
	directed bool
	weighted bool

	names     []string
	index     map[string]int
	nodeTypes []string

	edges     []Edge
	adjacency [][]int
	selfLoops int

	// Citations and JobID are attached by the retrieval layer.
	Citations []string
	JobID     string
}

// New creates an empty graph.
func New(name string, directed bool) *Graph {
	return &Graph{
		name:     name,
		directed: directed,
		index:    make(map[string]int),
	}
}

// Name returns the graph name.
func (g *Graph) Name() string { return g.name }

// Directed reports whether edges are interpreted as one-way.
func (g *Graph) Directed() bool { return g.directed }

// HasWeights reports whether any edge carries an explicit weight.
func (g *Graph) HasWeights() bool { return g.weighted }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.names) }

// EdgeCount returns the number of stored edges. Undirected edges are stored
// once.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// SelfLoopCount returns the number of self-loop edges.
func (g *Graph) SelfLoopCount() int { return g.selfLoops }

// AddNode inserts a node if it is not present and returns its ID.
func (g *Graph) AddNode(name string) int {
	if id, ok := g.index[name]; ok {
		return id
	}
	id := len(g.names)
	g.names = append(g.names, name)
	g.nodeTypes = append(g.nodeTypes, "")
	g.adjacency = append(g.adjacency, nil)
	g.index[name] = id
	return id
}

// NodeID returns the ID for a node name.
func (g *Graph) NodeID(name string) (int, error) {
	id, ok := g.index[name]
	if !ok {
		return 0, pkgerrors.NewNodeNotFound(g.name, name)
	}
	return id, nil
}

// NodeName returns the name for a node ID. Panics on out-of-range IDs, which
// can only come from caller bugs.
func (g *Graph) NodeName(id int) string { return g.names[id] }

// NodeNames returns all node names in ID order. The returned slice is shared;
// callers must not mutate it.
func (g *Graph) NodeNames() []string { return g.names }

// SetNodeType assigns a type to an existing node.
func (g *Graph) SetNodeType(name, nodeType string) error {
	id, err := g.NodeID(name)
	if err != nil {
		return err
	}
	g.nodeTypes[id] = nodeType
	return nil
}

// NodeType returns the type assigned to a node, or the empty string.
func (g *Graph) NodeType(name string) (string, error) {
	id, err := g.NodeID(name)
	if err != nil {
		return "", err
	}
	return g.nodeTypes[id], nil
}

// AddEdge inserts an unweighted edge, creating missing endpoints.
func (g *Graph) AddEdge(source, destination string) {
	g.addEdge(source, destination, 0, false)
}

// AddWeightedEdge inserts a weighted edge, creating missing endpoints. Any
// weighted edge marks the whole graph as weighted.
func (g *Graph) AddWeightedEdge(source, destination string, weight float64) {
	g.addEdge(source, destination, weight, true)
}

func (g *Graph) addEdge(source, destination string, weight float64, weighted bool) {
	src := g.AddNode(source)
	dst := g.AddNode(destination)

	g.edges = append(g.edges, Edge{Source: src, Destination: dst, Weight: weight})
	if weighted {
		g.weighted = true
	}

	if src == dst {
		g.selfLoops++
		g.adjacency[src] = append(g.adjacency[src], dst)
		return
	}
	g.adjacency[src] = append(g.adjacency[src], dst)
	if !g.directed {
		g.adjacency[dst] = append(g.adjacency[dst], src)
	}
}

// Edges returns the stored edges. The returned slice is shared; callers must
// not mutate it.
func (g *Graph) Edges() []Edge { return g.edges }

// Degree returns the degree of a node: neighbors in both directions for
// undirected graphs, outbound neighbors for directed ones. Self-loops count
// once.
func (g *Graph) Degree(id int) int { return len(g.adjacency[id]) }

// Neighbors returns the adjacency list of a node. The returned slice is
// shared; callers must not mutate it.
func (g *Graph) Neighbors(id int) []int { return g.adjacency[id] }

// Density returns the ratio of stored edges to possible edges between
// distinct nodes. Graphs with fewer than two nodes have density zero.
func (g *Graph) Density() float64 {
	n := float64(g.NodeCount())
	if n < 2 {
		return 0
	}
	possible := n * (n - 1)
	if !g.directed {
		possible /= 2
	}
	return float64(g.EdgeCount()-g.selfLoops) / possible
}
