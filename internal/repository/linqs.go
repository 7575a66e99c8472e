package repository

import (
	"context"
	"os"
	"path/filepath"

	"graphmine/internal/catalog"
)

// linqsBibliography is cited by every LINQS graph.
const linqsBibliography = `@article{sen2008collective,
    title={Collective classification in network data},
    author={Sen, Prithviraj and Namata, Galileo and Bilgic, Mustafa and Getoor, Lise and Galligher, Brian and Eliassi-Rad, Tina},
    journal={AI magazine},
    volume={29},
    number={3},
    pages={93--93},
    year={2008}
}`

// linqsLayout records where a LINQS archive keeps its raw cites/content
// files, relative to the cache directory, and which parser applies.
type linqsLayout struct {
	CitesFile   string
	ContentFile string
	Pubmed      bool
}

// The LINQS archives each use their own internal layout; Pubmed additionally
// uses a different incidence format.
var linqsLayouts = map[string]linqsLayout{
	"Cora": {
		CitesFile:   "cora/cora.cites",
		ContentFile: "cora/cora.content",
	},
	"CiteSeer": {
		CitesFile:   "citeseer/citeseer.cites",
		ContentFile: "citeseer/citeseer.content",
	},
	"Pubmed": {
		CitesFile:   "Pubmed-Diabetes/data/Pubmed-Diabetes.DIRECTED.cites.tab",
		ContentFile: "Pubmed-Diabetes/data/Pubmed-Diabetes.NODE.paper.tab",
		Pubmed:      true,
	},
}

// LINQS serves the citation benchmark graphs (Cora, CiteSeer, Pubmed). The
// downloads are incidence matrices, not edge lists, so each graph carries a
// preprocessing callback that writes the edge and node lists the catalog's
// load arguments point at.
type LINQS struct {
	catalogRepository
}

// NewLINQS creates the LINQS adapter from its catalog file.
func NewLINQS(catalogPath string) (*LINQS, error) {
	cat, err := catalog.Load(catalogPath)
	if err != nil {
		return nil, err
	}
	return &LINQS{catalogRepository{
		name:         "LINQS",
		packageName:  "linqs",
		catalog:      cat,
		bibliography: []string{linqsBibliography},
	}}, nil
}

func (l *LINQS) Callbacks(graphName string) []Callback {
	layout, ok := linqsLayouts[graphName]
	if !ok {
		return nil
	}
	entry, err := l.catalog.Get(graphName)
	if err != nil {
		return nil
	}

	return []Callback{func(ctx context.Context, cacheDir string) error {
		edgeList := filepath.Join(cacheDir, entry.Arguments.EdgePath)
		nodeList := filepath.Join(cacheDir, entry.Arguments.NodePath)

		// The lists are derived deterministically from the raw files, so a
		// warm cache can skip the conversion.
		if fileExists(edgeList) && fileExists(nodeList) {
			return nil
		}

		cites := filepath.Join(cacheDir, layout.CitesFile)
		content := filepath.Join(cacheDir, layout.ContentFile)
		if layout.Pubmed {
			return ParsePubmedIncidenceMatrix(cites, content, edgeList, nodeList)
		}
		return ParseIncidenceMatrix(cites, content, edgeList, nodeList)
	}}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Size() > 0
}
