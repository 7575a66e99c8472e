package repository

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"graphmine/internal/download"
	"graphmine/internal/graph"
	pkgerrors "graphmine/pkg/errors"
	"graphmine/pkg/logger"
)

// networkRepositoryBibliography is cited by every NetworkRepository graph.
const networkRepositoryBibliography = `@inproceedings{nr-aaai15,
    title={The Network Data Repository with Interactive Graph Analytics and Visualization},
    author={Ryan A. Rossi and Nesreen K. Ahmed},
    booktitle={Proceedings of the Twenty-Ninth AAAI Conference on Artificial Intelligence},
    url={http://networkrepository.com},
    year={2015}
}`

// Some NetworkRepository graphs are derived from third-party measurement
// projects; their citation pages mention these and the corresponding entry is
// added to the bibliography.
var networkRepositorySourceCitations = map[string]string{
	"Skitter": `@misc{caida-skitter,
    title={Macroscopic Internet Topology Data Kit (Skitter)},
    author={{CAIDA}},
    url={https://www.caida.org},
}`,
	"WHOIS": `@misc{caida-whois,
    title={Internet Topology Data from WHOIS},
    author={{CAIDA}},
    url={https://www.caida.org},
}`,
	"RouteViews": `@misc{routeviews,
    title={University of Oregon Route Views Project},
    author={{University of Oregon}},
    url={http://www.routeviews.org},
}`,
}

// NetworkRepository serves networkrepository.com graphs. The listing page is
// scraped and memoized on first success; download URLs point at the
// nrvis.com mirror and per-graph citations come from blockquote elements on
// the graph page.
type NetworkRepository struct {
	client    download.HTTPClient
	userAgent string
	from      string

	listingURL   string
	graphPageURL string // format: graph name
	downloadURL  string // format: graph type, graph name

	mu      sync.Mutex
	listing map[string]string // graph name -> graph type

	logger *zap.Logger
}

// NetworkRepositoryOptions configures the adapter; zero values select the
// live endpoints.
type NetworkRepositoryOptions struct {
	Client    download.HTTPClient
	UserAgent string
	// From is the contact mail sent with every request; the mirror asks
	// crawlers to identify themselves.
	From string

	ListingURL   string
	GraphPageURL string
	DownloadURL  string
}

// NewNetworkRepository creates the NetworkRepository adapter.
func NewNetworkRepository(opts NetworkRepositoryOptions) *NetworkRepository {
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "graphmine/1.0"
	}
	if opts.ListingURL == "" {
		opts.ListingURL = "http://networkrepository.com/networks.php"
	}
	if opts.GraphPageURL == "" {
		opts.GraphPageURL = "http://networkrepository.com/%s.php"
	}
	if opts.DownloadURL == "" {
		opts.DownloadURL = "http://nrvis.com/download/data/%s/%s.zip"
	}
	return &NetworkRepository{
		client:       opts.Client,
		userAgent:    opts.UserAgent,
		from:         opts.From,
		listingURL:   opts.ListingURL,
		graphPageURL: opts.GraphPageURL,
		downloadURL:  opts.DownloadURL,
		logger:       logger.Named("repository.networkrepository"),
	}
}

func (n *NetworkRepository) Name() string        { return "NetworkRepository" }
func (n *NetworkRepository) PackageName() string { return "networkrepository" }

// StoredGraphName CamelCases a dash-separated name like "soc-flickr" into
// "SocFlickr". Each term is capitalized with the rest lowercased, so
// "ca-AstroPh" stores as "CaAstroph". Names that would start with a digit get
// a "Graph" prefix so the result is identifier-safe.
func (n *NetworkRepository) StoredGraphName(partial string) string {
	terms := strings.Split(partial, "-")
	var b strings.Builder
	for _, term := range terms {
		if term == "" {
			continue
		}
		runes := []rune(term)
		b.WriteRune(unicode.ToUpper(runes[0]))
		b.WriteString(strings.ToLower(string(runes[1:])))
	}
	stored := b.String()
	if stored != "" && unicode.IsDigit([]rune(stored)[0]) {
		stored = "Graph" + stored
	}
	return stored
}

func (n *NetworkRepository) GraphNames(ctx context.Context) ([]string, error) {
	listing, err := n.graphListing(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(listing))
	for name := range listing {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (n *NetworkRepository) URLs(ctx context.Context, graphName string) ([]string, error) {
	raw, graphType, err := n.resolveGraph(ctx, graphName)
	if err != nil {
		return nil, err
	}
	return []string{fmt.Sprintf(n.downloadURL, graphType, raw)}, nil
}

// resolveGraph maps a raw or stored graph name to its listing entry. The
// mirror's URLs are keyed by the raw dashed names, so stored names like
// "SocFlickr" must resolve back to "soc-flickr".
func (n *NetworkRepository) resolveGraph(ctx context.Context, graphName string) (string, string, error) {
	listing, err := n.graphListing(ctx)
	if err != nil {
		return "", "", err
	}
	if graphType, ok := listing[graphName]; ok {
		return graphName, graphType, nil
	}
	for raw, graphType := range listing {
		if n.StoredGraphName(raw) == graphName {
			return raw, graphType, nil
		}
	}
	return "", "", pkgerrors.NewGraphNotFound(n.Name(), graphName)
}

// Paths derive from the URL basenames.
func (n *NetworkRepository) Paths(graphName string, urls []string) []string { return nil }

// Citations always include the repository's own citation. The per-graph page
// is scraped for blockquote references; when the page cannot be fetched the
// baseline citation is returned rather than an error.
func (n *NetworkRepository) Citations(ctx context.Context, graphName string) ([]string, error) {
	raw, _, err := n.resolveGraph(ctx, graphName)
	if err != nil {
		return nil, err
	}

	citations := []string{networkRepositoryBibliography}

	doc, err := n.fetchDocument(ctx, fmt.Sprintf(n.graphPageURL, raw))
	if err != nil {
		n.logger.Warn("Citation page unavailable, using baseline citation",
			zap.String("graph", graphName),
			zap.Error(err))
		return citations, nil
	}

	var scraped []string
	doc.Find("blockquote").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if text != "" {
			scraped = append(scraped, text)
		}
	})

	for source, bib := range networkRepositorySourceCitations {
		for _, cite := range scraped {
			if strings.Contains(cite, source) {
				citations = append(citations, bib)
				break
			}
		}
	}

	for _, cite := range scraped {
		if n.isRepositoryCitation(cite) {
			continue
		}
		citations = append(citations, cite)
	}
	return citations, nil
}

// isRepositoryCitation filters blockquotes that duplicate the baseline or
// source bibliographies already included.
func (n *NetworkRepository) isRepositoryCitation(cite string) bool {
	if strings.Contains(cite, "The Network Data Repository") {
		return true
	}
	for source := range networkRepositorySourceCitations {
		if strings.Contains(cite, source) {
			return true
		}
	}
	return false
}

// LoadOptions describe the generic nrvis edge list format: headerless, space
// separated, "%" comments. The edge path is left empty and resolved from the
// download report after extraction.
func (n *NetworkRepository) LoadOptions(graphName string) (graph.LoadOptions, error) {
	noHeader := false
	return graph.LoadOptions{
		EdgeSeparator: " ",
		EdgeHeader:    &noHeader,
		CommentPrefix: "%",
	}, nil
}

func (n *NetworkRepository) Callbacks(graphName string) []Callback { return nil }

// graphListing scrapes the networks table and memoizes name -> type. Only a
// successful scrape is latched; a failed fetch is retried on the next call.
func (n *NetworkRepository) graphListing(ctx context.Context) (map[string]string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.listing != nil {
		return n.listing, nil
	}

	doc, err := n.fetchDocument(ctx, n.listingURL)
	if err != nil {
		return nil, pkgerrors.NewListingFailed(n.Name(), n.listingURL, err)
	}
	listing, err := parseNetworksTable(doc, n.Name(), n.listingURL)
	if err != nil {
		return nil, err
	}
	n.listing = listing
	return listing, nil
}

// parseNetworksTable reads the first table carrying "Graph Name" and "Type"
// header cells.
func parseNetworksTable(doc *goquery.Document, repoName, url string) (map[string]string, error) {
	listing := make(map[string]string)

	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		nameCol, typeCol := -1, -1
		table.Find("th").Each(func(i int, th *goquery.Selection) {
			switch strings.TrimSpace(th.Text()) {
			case "Graph Name":
				nameCol = i
			case "Type":
				typeCol = i
			}
		})
		if nameCol < 0 || typeCol < 0 {
			return true // wrong table, keep looking
		}

		table.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
			cells := row.Find("td")
			name := strings.TrimSpace(cells.Eq(nameCol).Text())
			graphType := strings.TrimSpace(cells.Eq(typeCol).Text())
			if name != "" && graphType != "" {
				listing[name] = graphType
			}
		})
		return false
	})

	if len(listing) == 0 {
		return nil, pkgerrors.NewListingFailed(repoName, url,
			fmt.Errorf("no graph listing table found"))
	}
	return listing, nil
}

func (n *NetworkRepository) fetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", n.userAgent)
	if n.from != "" {
		req.Header.Set("From", n.from)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return goquery.NewDocumentFromReader(resp.Body)
}
