package graph

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	pkgerrors "graphmine/pkg/errors"
)

// LoadOptions describes how to read a dataset's edge list and optional node
// list. The JSON tags match the argument keys carried by repository catalogs.
// Columns can be addressed by header name or, for headerless files, by index.
type LoadOptions struct {
	EdgePath string `json:"edge_path"`
	NodePath string `json:"node_path,omitempty"`

	// Separators default to tab. Only the first rune is used.
	EdgeSeparator string `json:"edge_separator,omitempty"`
	NodeSeparator string `json:"node_separator,omitempty"`

	// Headers default to true, matching the lists the adapters write.
	EdgeHeader *bool `json:"edge_header,omitempty"`
	NodeHeader *bool `json:"node_header,omitempty"`

	SourcesColumn      string `json:"sources_column,omitempty"`
	DestinationsColumn string `json:"destinations_column,omitempty"`
	WeightsColumn      string `json:"weights_column,omitempty"`
	NodesColumn        string `json:"nodes_column,omitempty"`
	NodeTypesColumn    string `json:"node_types_column,omitempty"`

	SourcesColumnNumber      *int `json:"sources_column_number,omitempty"`
	DestinationsColumnNumber *int `json:"destinations_column_number,omitempty"`
	WeightsColumnNumber      *int `json:"weights_column_number,omitempty"`
	NodesColumnNumber        *int `json:"nodes_column_number,omitempty"`
	NodeTypesColumnNumber    *int `json:"node_types_column_number,omitempty"`

	// DefaultWeight fills empty weight fields when a weight column is set.
	DefaultWeight float64 `json:"default_weight,omitempty"`

	// CommentPrefix skips lines starting with the prefix, e.g. "%" in
	// MatrixMarket edge lists. Only the first rune is used.
	CommentPrefix string `json:"comment_prefix,omitempty"`

	// SkipRows drops that many non-comment records at the top of the edge
	// list, after the header when one is configured. When unset, edge paths
	// ending in .mtx skip one record: the MatrixMarket dimension line.
	SkipRows int `json:"skip_rows,omitempty"`
}

// Merge overlays non-zero fields of other onto a copy of o. Used by the
// retrieval layer to apply caller overrides on top of catalog arguments.
func (o LoadOptions) Merge(other LoadOptions) LoadOptions {
	merged := o
	if other.EdgePath != "" {
		merged.EdgePath = other.EdgePath
	}
	if other.NodePath != "" {
		merged.NodePath = other.NodePath
	}
	if other.EdgeSeparator != "" {
		merged.EdgeSeparator = other.EdgeSeparator
	}
	if other.NodeSeparator != "" {
		merged.NodeSeparator = other.NodeSeparator
	}
	if other.EdgeHeader != nil {
		merged.EdgeHeader = other.EdgeHeader
	}
	if other.NodeHeader != nil {
		merged.NodeHeader = other.NodeHeader
	}
	if other.SourcesColumn != "" {
		merged.SourcesColumn = other.SourcesColumn
	}
	if other.DestinationsColumn != "" {
		merged.DestinationsColumn = other.DestinationsColumn
	}
	if other.WeightsColumn != "" {
		merged.WeightsColumn = other.WeightsColumn
	}
	if other.NodesColumn != "" {
		merged.NodesColumn = other.NodesColumn
	}
	if other.NodeTypesColumn != "" {
		merged.NodeTypesColumn = other.NodeTypesColumn
	}
	if other.SourcesColumnNumber != nil {
		merged.SourcesColumnNumber = other.SourcesColumnNumber
	}
	if other.DestinationsColumnNumber != nil {
		merged.DestinationsColumnNumber = other.DestinationsColumnNumber
	}
	if other.WeightsColumnNumber != nil {
		merged.WeightsColumnNumber = other.WeightsColumnNumber
	}
	if other.NodesColumnNumber != nil {
		merged.NodesColumnNumber = other.NodesColumnNumber
	}
	if other.NodeTypesColumnNumber != nil {
		merged.NodeTypesColumnNumber = other.NodeTypesColumnNumber
	}
	if other.DefaultWeight != 0 {
		merged.DefaultWeight = other.DefaultWeight
	}
	if other.CommentPrefix != "" {
		merged.CommentPrefix = other.CommentPrefix
	}
	if other.SkipRows != 0 {
		merged.SkipRows = other.SkipRows
	}
	return merged
}

func (o LoadOptions) edgeHeader() bool { return o.EdgeHeader == nil || *o.EdgeHeader }
func (o LoadOptions) nodeHeader() bool { return o.NodeHeader == nil || *o.NodeHeader }

func separatorRune(s string) rune {
	if s == "" {
		return '\t'
	}
	return []rune(s)[0]
}

// Load builds a graph from the files described by opts. The node list, when
// present, is read first and establishes the node vocabulary and node types;
// the edge list may still introduce nodes the node list does not mention.
func Load(name string, directed bool, opts LoadOptions) (*Graph, error) {
	g := New(name, directed)

	if opts.NodePath != "" {
		if err := loadNodeList(g, opts); err != nil {
			return nil, err
		}
	}
	if err := loadEdgeList(g, opts); err != nil {
		return nil, err
	}
	if g.EdgeCount() == 0 {
		return nil, pkgerrors.NewEmptyGraph(name)
	}
	return g, nil
}

func newListReader(f io.Reader, separator, commentPrefix string) *csv.Reader {
	r := csv.NewReader(f)
	r.Comma = separatorRune(separator)
	if commentPrefix != "" {
		r.Comment = []rune(commentPrefix)[0]
	}
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r
}

// resolveColumn picks the index for a logical column: by header name when one
// is given, by explicit index otherwise, falling back to def. A def of -1
// means the column is optional and absent by default.
func resolveColumn(header []string, name string, number *int, def int, path string) (int, error) {
	if name != "" {
		for i, h := range header {
			if h == name {
				return i, nil
			}
		}
		if header == nil {
			return 0, pkgerrors.NewParseFailed(path, 0,
				fmt.Sprintf("column %q requires a header row", name), nil)
		}
		return 0, pkgerrors.NewParseFailed(path, 0,
			fmt.Sprintf("column %q not found in header", name), nil)
	}
	if number != nil {
		return *number, nil
	}
	return def, nil
}

func loadNodeList(g *Graph, opts LoadOptions) error {
	f, err := os.Open(opts.NodePath)
	if err != nil {
		return pkgerrors.NewParseFailed(opts.NodePath, 0, "cannot open node list", err)
	}
	defer f.Close()

	r := newListReader(f, opts.NodeSeparator, opts.CommentPrefix)

	var header []string
	line := 0
	if opts.nodeHeader() {
		header, err = r.Read()
		if err != nil {
			return pkgerrors.NewParseFailed(opts.NodePath, 0, "cannot read header", err)
		}
		line++
	}

	nodeIdx, err := resolveColumn(header, opts.NodesColumn, opts.NodesColumnNumber, 0, opts.NodePath)
	if err != nil {
		return err
	}
	typeIdx, err := resolveColumn(header, opts.NodeTypesColumn, opts.NodeTypesColumnNumber, -1, opts.NodePath)
	if err != nil {
		return err
	}
	if typeIdx < 0 && header != nil && len(header) > 1 {
		// Node lists written by the adapters carry the type in column 1
		typeIdx = 1
	}

	seen := make(map[string]bool)
	for {
		record, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return pkgerrors.NewParseFailed(opts.NodePath, line+1, "malformed row", err)
		}
		line++

		if nodeIdx >= len(record) {
			return pkgerrors.NewParseFailed(opts.NodePath, line,
				fmt.Sprintf("row has %d columns, node column is %d", len(record), nodeIdx), nil)
		}
		nodeName := record[nodeIdx]
		if seen[nodeName] {
			return pkgerrors.NewParseFailed(opts.NodePath, line,
				fmt.Sprintf("duplicate node %q", nodeName), nil)
		}
		seen[nodeName] = true

		g.AddNode(nodeName)
		if typeIdx >= 0 && typeIdx < len(record) {
			if err := g.SetNodeType(nodeName, record[typeIdx]); err != nil {
				return err
			}
		}
	}
}

func loadEdgeList(g *Graph, opts LoadOptions) error {
	f, err := os.Open(opts.EdgePath)
	if err != nil {
		return pkgerrors.NewParseFailed(opts.EdgePath, 0, "cannot open edge list", err)
	}
	defer f.Close()

	r := newListReader(f, opts.EdgeSeparator, opts.CommentPrefix)

	var header []string
	line := 0
	if opts.edgeHeader() {
		header, err = r.Read()
		if err != nil {
			return pkgerrors.NewParseFailed(opts.EdgePath, 0, "cannot read header", err)
		}
		line++
	}

	srcIdx, err := resolveColumn(header, opts.SourcesColumn, opts.SourcesColumnNumber, 0, opts.EdgePath)
	if err != nil {
		return err
	}
	dstIdx, err := resolveColumn(header, opts.DestinationsColumn, opts.DestinationsColumnNumber, 1, opts.EdgePath)
	if err != nil {
		return err
	}
	weightIdx, err := resolveColumn(header, opts.WeightsColumn, opts.WeightsColumnNumber, -1, opts.EdgePath)
	if err != nil {
		return err
	}

	skip := opts.SkipRows
	if skip == 0 && strings.HasSuffix(strings.ToLower(opts.EdgePath), ".mtx") {
		// The rows/cols/nnz dimension line after the comment block is
		// mandatory in MatrixMarket files and is not an edge.
		skip = 1
	}
	for ; skip > 0; skip-- {
		if _, err := r.Read(); err == io.EOF {
			return nil
		} else if err != nil {
			return pkgerrors.NewParseFailed(opts.EdgePath, line+1, "malformed row", err)
		}
		line++
	}

	for {
		record, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return pkgerrors.NewParseFailed(opts.EdgePath, line+1, "malformed row", err)
		}
		line++

		if srcIdx >= len(record) || dstIdx >= len(record) {
			return pkgerrors.NewParseFailed(opts.EdgePath, line,
				fmt.Sprintf("row has %d columns, need source %d and destination %d", len(record), srcIdx, dstIdx), nil)
		}

		if weightIdx < 0 || weightIdx >= len(record) || record[weightIdx] == "" {
			if weightIdx >= 0 && opts.DefaultWeight != 0 {
				g.AddWeightedEdge(record[srcIdx], record[dstIdx], opts.DefaultWeight)
			} else {
				g.AddEdge(record[srcIdx], record[dstIdx])
			}
			continue
		}

		weight, err := strconv.ParseFloat(record[weightIdx], 64)
		if err != nil {
			return pkgerrors.NewParseFailed(opts.EdgePath, line,
				fmt.Sprintf("invalid weight %q", record[weightIdx]), err)
		}
		g.AddWeightedEdge(record[srcIdx], record[dstIdx], weight)
	}
}
