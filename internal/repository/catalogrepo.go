package repository

import (
	"context"

	"graphmine/internal/catalog"
	"graphmine/internal/graph"
)

// catalogRepository implements the catalog-backed parts of Repository. The
// Yue, STRING, and LINQS adapters embed it and override what differs.
type catalogRepository struct {
	name        string
	packageName string
	catalog     *catalog.Catalog

	// bibliography is the repository-wide citation prepended to every
	// graph's own citations.
	bibliography []string
}

func (c *catalogRepository) Name() string        { return c.name }
func (c *catalogRepository) PackageName() string { return c.packageName }

func (c *catalogRepository) GraphNames(ctx context.Context) ([]string, error) {
	return c.catalog.Names(), nil
}

// StoredGraphName is the identity for catalog repositories; their catalog
// keys are already the stored names.
func (c *catalogRepository) StoredGraphName(partial string) string { return partial }

func (c *catalogRepository) URLs(ctx context.Context, graphName string) ([]string, error) {
	entry, err := c.catalog.Get(graphName)
	if err != nil {
		return nil, err
	}
	return entry.URLs, nil
}

func (c *catalogRepository) Paths(graphName string, urls []string) []string {
	entry, err := c.catalog.Get(graphName)
	if err != nil {
		return nil
	}
	return entry.Paths
}

func (c *catalogRepository) Citations(ctx context.Context, graphName string) ([]string, error) {
	entry, err := c.catalog.Get(graphName)
	if err != nil {
		return nil, err
	}
	citations := make([]string, 0, len(c.bibliography)+len(entry.Citations))
	citations = append(citations, c.bibliography...)
	citations = append(citations, entry.Citations...)
	return citations, nil
}

func (c *catalogRepository) LoadOptions(graphName string) (graph.LoadOptions, error) {
	entry, err := c.catalog.Get(graphName)
	if err != nil {
		return graph.LoadOptions{}, err
	}
	return entry.Arguments, nil
}

func (c *catalogRepository) Callbacks(graphName string) []Callback { return nil }
