package graph

import (
	"strings"
	"testing"

	pkgerrors "graphmine/pkg/errors"
)

func TestGraph_AddNode_Dedup(t *testing.T) {
	g := New("test", false)

	a := g.AddNode("a")
	b := g.AddNode("b")
	again := g.AddNode("a")

	if a != again {
		t.Errorf("Expected same ID for repeated node, got %d and %d", a, again)
	}
	if b == a {
		t.Error("Expected distinct IDs for distinct nodes")
	}
	if g.NodeCount() != 2 {
		t.Errorf("Expected 2 nodes, got %d", g.NodeCount())
	}
}

func TestGraph_NodeID_Unknown(t *testing.T) {
	g := New("test", false)
	g.AddNode("a")

	_, err := g.NodeID("missing")
	if err == nil {
		t.Fatal("Expected error for unknown node")
	}
	if !pkgerrors.IsErrorType(err, pkgerrors.ErrorTypeGraph) {
		t.Errorf("Expected graph error, got %v", err)
	}
}

func TestGraph_NodeTypes(t *testing.T) {
	g := New("test", false)
	g.AddNode("a")

	if err := g.SetNodeType("a", "Paper"); err != nil {
		t.Fatalf("SetNodeType failed: %v", err)
	}
	nt, err := g.NodeType("a")
	if err != nil {
		t.Fatalf("NodeType failed: %v", err)
	}
	if nt != "Paper" {
		t.Errorf("Expected type 'Paper', got %q", nt)
	}
	if err := g.SetNodeType("missing", "Word"); err == nil {
		t.Error("Expected error for unknown node")
	}
}

func TestGraph_UndirectedDegrees(t *testing.T) {
	g := New("test", false)
	g.AddEdge("a", "b")
	g.AddEdge("a", "c")
	g.AddEdge("a", "a")

	if g.EdgeCount() != 3 {
		t.Errorf("Expected 3 edges, got %d", g.EdgeCount())
	}
	if g.SelfLoopCount() != 1 {
		t.Errorf("Expected 1 self-loop, got %d", g.SelfLoopCount())
	}

	a, _ := g.NodeID("a")
	b, _ := g.NodeID("b")
	// a: b, c and the loop once
	if g.Degree(a) != 3 {
		t.Errorf("Expected degree 3 for a, got %d", g.Degree(a))
	}
	// undirected edges are mirrored
	if g.Degree(b) != 1 {
		t.Errorf("Expected degree 1 for b, got %d", g.Degree(b))
	}
}

func TestGraph_DirectedDegrees(t *testing.T) {
	g := New("test", true)
	g.AddEdge("a", "b")
	g.AddEdge("a", "c")

	a, _ := g.NodeID("a")
	b, _ := g.NodeID("b")
	if g.Degree(a) != 2 {
		t.Errorf("Expected out-degree 2 for a, got %d", g.Degree(a))
	}
	if g.Degree(b) != 0 {
		t.Errorf("Expected out-degree 0 for b, got %d", g.Degree(b))
	}
}

func TestGraph_Weights(t *testing.T) {
	g := New("test", false)
	g.AddEdge("a", "b")
	if g.HasWeights() {
		t.Error("Expected unweighted graph")
	}
	g.AddWeightedEdge("b", "c", 0.5)
	if !g.HasWeights() {
		t.Error("Expected weighted graph after weighted edge")
	}
}

func TestGraph_Density(t *testing.T) {
	// Triangle: 3 of 3 possible undirected edges
	g := New("test", false)
	g.AddEdge("a", "b")
	g.AddEdge("b", "c")
	g.AddEdge("c", "a")

	if d := g.Density(); d != 1.0 {
		t.Errorf("Expected density 1.0, got %f", d)
	}

	// Self-loops do not count towards density
	g.AddEdge("a", "a")
	if d := g.Density(); d != 1.0 {
		t.Errorf("Expected density 1.0 with self-loop, got %f", d)
	}

	empty := New("empty", false)
	if d := empty.Density(); d != 0 {
		t.Errorf("Expected density 0 for empty graph, got %f", d)
	}
}

func TestDegreeStatistics(t *testing.T) {
	// Star: hub with 3 spokes
	g := New("star", false)
	g.AddEdge("hub", "a")
	g.AddEdge("hub", "b")
	g.AddEdge("hub", "c")

	stats := g.DegreeStatistics()
	if stats.Min != 1 {
		t.Errorf("Expected min 1, got %d", stats.Min)
	}
	if stats.Max != 3 {
		t.Errorf("Expected max 3, got %d", stats.Max)
	}
	if stats.Mean != 1.5 {
		t.Errorf("Expected mean 1.5, got %f", stats.Mean)
	}
	if stats.Median != 1 {
		t.Errorf("Expected median 1, got %d", stats.Median)
	}
	if stats.Mode != 1 {
		t.Errorf("Expected mode 1, got %d", stats.Mode)
	}
}

func TestDegreeStatistics_Empty(t *testing.T) {
	g := New("empty", false)
	if stats := g.DegreeStatistics(); stats != (DegreeStats{}) {
		t.Errorf("Expected zero stats for empty graph, got %+v", stats)
	}
}

func TestTopDegreeNodes(t *testing.T) {
	g := New("test", false)
	g.AddEdge("hub", "a")
	g.AddEdge("hub", "b")
	g.AddEdge("a", "b")

	top := g.TopDegreeNodes(2)
	if len(top) != 2 {
		t.Fatalf("Expected 2 nodes, got %d", len(top))
	}
	// hub, a and b all have degree 2; ties break by name
	if top[0].Name != "a" || top[1].Name != "b" {
		t.Errorf("Expected a, b by tie-break, got %s, %s", top[0].Name, top[1].Name)
	}

	if top := g.TopDegreeNodes(10); len(top) != 3 {
		t.Errorf("Expected k clamped to node count, got %d", len(top))
	}
	if top := g.TopDegreeNodes(0); top != nil {
		t.Errorf("Expected nil for k=0, got %v", top)
	}
}

func TestConnectedComponents(t *testing.T) {
	g := New("test", false)
	g.AddEdge("a", "b")
	g.AddEdge("b", "c")
	g.AddEdge("x", "y")
	g.AddNode("lonely")

	comps := g.ConnectedComponents()
	if comps.Count != 3 {
		t.Errorf("Expected 3 components, got %d", comps.Count)
	}
	if comps.Largest != 3 {
		t.Errorf("Expected largest component of 3, got %d", comps.Largest)
	}
	if comps.Smallest != 1 {
		t.Errorf("Expected smallest component of 1, got %d", comps.Smallest)
	}
}

func TestConnectedComponents_IgnoresDirection(t *testing.T) {
	g := New("test", true)
	g.AddEdge("a", "b")
	g.AddEdge("c", "b")

	comps := g.ConnectedComponents()
	if comps.Count != 1 {
		t.Errorf("Expected 1 component in the undirected sense, got %d", comps.Count)
	}
}

func TestReport(t *testing.T) {
	g := New("TestGraph", false)
	g.AddEdge("a", "b")
	g.AddEdge("b", "c")
	g.AddEdge("a", "a")

	report := g.Report()
	for _, want := range []string{
		"The undirected graph TestGraph has 3 nodes and 3 edges",
		"one is a self-loop",
		"is connected, as it has a single component",
		"median node degree",
		"most central nodes",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("Report missing %q:\n%s", want, report)
		}
	}
}

func TestReport_Disconnected(t *testing.T) {
	g := New("TestGraph", true)
	g.AddWeightedEdge("a", "b", 2.0)
	g.AddNode("lonely")

	report := g.Report()
	for _, want := range []string{
		"The directed graph TestGraph",
		"weighted edges",
		"none are self-loops",
		"2 connected components",
		"the least nodes has a single node",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("Report missing %q:\n%s", want, report)
		}
	}
}
