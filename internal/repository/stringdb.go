package repository

import (
	"strings"
	"unicode"

	"graphmine/internal/catalog"
)

// stringBibliography is cited by every STRING graph.
const stringBibliography = `@article{szklarczyk2019string,
    title={STRING v11: protein--protein association networks with increased coverage, supporting functional discovery in genome-wide experimental datasets},
    author={Szklarczyk, Damian and Gable, Annika L and Lyon, David and Junge, Alexander and Wyder, Stefan and Huerta-Cepas, Jaime and Simonovic, Milan and Doncheva, Nadezhda T and Morris, John H and Bork, Peer and others},
    journal={Nucleic acids research},
    volume={47},
    number={D1},
    pages={D607--D613},
    year={2019},
    publisher={Oxford University Press}
}`

// STRING serves the per-species protein association networks from the STRING
// database. Graph names are species names; the links files are space
// separated with a header and a combined_score weight column, all recorded in
// the catalog per species.
type STRING struct {
	catalogRepository
}

// NewSTRING creates the STRING adapter from its catalog file.
func NewSTRING(catalogPath string) (*STRING, error) {
	cat, err := catalog.Load(catalogPath)
	if err != nil {
		return nil, err
	}
	return &STRING{catalogRepository{
		name:         "STRING",
		packageName:  "string",
		catalog:      cat,
		bibliography: []string{stringBibliography},
	}}, nil
}

// StoredGraphName collapses a species name like "Homo sapiens" into the
// identifier-safe "HomoSapiens": terms are capitalized and everything outside
// letters and digits is dropped.
func (s *STRING) StoredGraphName(partial string) string {
	var b strings.Builder
	upperNext := true
	for _, r := range partial {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upperNext = true
			continue
		}
		if upperNext {
			b.WriteRune(unicode.ToUpper(r))
			upperNext = false
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
