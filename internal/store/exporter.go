// Package store exports retrieved graphs into Neo4j so they can be queried
// after retrieval. Every exported graph lives under its own namespace
// property, so multiple datasets share one database without colliding.
package store

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"graphmine/internal/graph"
	pkgerrors "graphmine/pkg/errors"
	"graphmine/pkg/logger"
)

// DefaultBatchSize is how many nodes or edges each UNWIND statement carries.
const DefaultBatchSize = 1000

// Exporter writes graphs to a Neo4j database.
type Exporter struct {
	driver neo4j.DriverWithContext
	logger *zap.Logger
}

// NewExporter creates an exporter over an existing driver.
func NewExporter(driver neo4j.DriverWithContext) *Exporter {
	return &Exporter{
		driver: driver,
		logger: logger.Named("store"),
	}
}

// Close closes the underlying driver.
func (e *Exporter) Close() error {
	return e.driver.Close(context.Background())
}

// Export writes the graph's nodes and edges in batches. The operation is
// idempotent: nodes merge on (graph, name) and edges are recreated from
// scratch for the namespace.
func (e *Exporter) Export(ctx context.Context, g *graph.Graph, batchSize int) error {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	session := e.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	// Re-exporting replaces previous edges so retries do not duplicate them.
	if err := e.dropEdges(ctx, session, g.Name()); err != nil {
		return err
	}

	names := g.NodeNames()
	for start := 0; start < len(names); start += batchSize {
		end := min(start+batchSize, len(names))
		batch := make([]map[string]any, 0, end-start)
		for _, name := range names[start:end] {
			nodeType, _ := g.NodeType(name)
			batch = append(batch, map[string]any{"name": name, "node_type": nodeType})
		}
		if err := e.writeNodeBatch(ctx, session, g.Name(), batch); err != nil {
			return err
		}
	}

	edges := g.Edges()
	for start := 0; start < len(edges); start += batchSize {
		end := min(start+batchSize, len(edges))
		batch := make([]map[string]any, 0, end-start)
		for _, edge := range edges[start:end] {
			batch = append(batch, map[string]any{
				"source":      g.NodeName(edge.Source),
				"destination": g.NodeName(edge.Destination),
				"weight":      edge.Weight,
			})
		}
		if err := e.writeEdgeBatch(ctx, session, g.Name(), batch); err != nil {
			return err
		}
	}

	e.logger.Info("Graph exported",
		zap.String("graph", g.Name()),
		zap.Int("nodes", g.NodeCount()),
		zap.Int("edges", g.EdgeCount()))
	return nil
}

func (e *Exporter) writeNodeBatch(ctx context.Context, session neo4j.SessionWithContext, graphName string, batch []map[string]any) error {
	query := `
		UNWIND $batch AS row
		MERGE (n:GraphNode {graph: $graph, name: row.name})
		SET n.node_type = row.node_type
	`
	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, query, map[string]any{"graph": graphName, "batch": batch})
	})
	if err != nil {
		return pkgerrors.NewStoreQueryFailed(query, err)
	}
	return nil
}

func (e *Exporter) writeEdgeBatch(ctx context.Context, session neo4j.SessionWithContext, graphName string, batch []map[string]any) error {
	query := `
		UNWIND $batch AS row
		MATCH (src:GraphNode {graph: $graph, name: row.source})
		MATCH (dst:GraphNode {graph: $graph, name: row.destination})
		CREATE (src)-[:CONNECTS {graph: $graph, weight: row.weight}]->(dst)
	`
	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, query, map[string]any{"graph": graphName, "batch": batch})
	})
	if err != nil {
		return pkgerrors.NewStoreQueryFailed(query, err)
	}
	return nil
}

func (e *Exporter) dropEdges(ctx context.Context, session neo4j.SessionWithContext, graphName string) error {
	query := `
		MATCH (:GraphNode {graph: $graph})-[r:CONNECTS {graph: $graph}]->()
		DELETE r
	`
	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, query, map[string]any{"graph": graphName})
	})
	if err != nil {
		return pkgerrors.NewStoreQueryFailed(query, err)
	}
	return nil
}

// Count returns the node and edge counts stored for a graph namespace.
func (e *Exporter) Count(ctx context.Context, graphName string) (nodes, edges int64, err error) {
	session := e.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (n:GraphNode {graph: $graph})
		OPTIONAL MATCH (n)-[r:CONNECTS {graph: $graph}]->()
		RETURN count(DISTINCT n) AS nodes, count(r) AS edges
	`
	result, err := session.Run(ctx, query, map[string]any{"graph": graphName})
	if err != nil {
		return 0, 0, pkgerrors.NewStoreQueryFailed(query, err)
	}
	record, err := result.Single(ctx)
	if err != nil {
		return 0, 0, pkgerrors.NewStoreQueryFailed(query, err)
	}

	if v, ok := record.Get("nodes"); ok {
		nodes, _ = v.(int64)
	}
	if v, ok := record.Get("edges"); ok {
		edges, _ = v.(int64)
	}
	return nodes, edges, nil
}

// Drop removes every node and edge in a graph namespace.
func (e *Exporter) Drop(ctx context.Context, graphName string) error {
	session := e.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := `MATCH (n:GraphNode {graph: $graph}) DETACH DELETE n`
	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, query, map[string]any{"graph": graphName})
	})
	if err != nil {
		return pkgerrors.NewStoreQueryFailed(query, err)
	}
	return nil
}
