package repository

import "graphmine/internal/catalog"

// yueBibliography is cited by every Yue graph.
const yueBibliography = `@article{yue2020graph,
    title={Graph embedding on biomedical networks: methods, applications and evaluations},
    author={Yue, Xiang and Wang, Zhen and Huang, Jingong and Parthasarathy, Srinivasan and Moosavinasab, Soheil and Huang, Yungui and Lin, Simon M and Zhang, Wen and Zhang, Ping and Sun, Huan},
    journal={Bioinformatics},
    volume={36},
    number={4},
    pages={1241--1251},
    year={2020},
    publisher={Oxford University Press}
}`

// Yue serves the biomedical benchmark graphs published by Yue et al. The
// whole repository is catalog-driven: per-graph URLs and load arguments come
// from the catalog file.
type Yue struct {
	catalogRepository
}

// NewYue creates the Yue adapter from its catalog file.
func NewYue(catalogPath string) (*Yue, error) {
	cat, err := catalog.Load(catalogPath)
	if err != nil {
		return nil, err
	}
	return &Yue{catalogRepository{
		name:         "Yue",
		packageName:  "yue",
		catalog:      cat,
		bibliography: []string{yueBibliography},
	}}, nil
}
