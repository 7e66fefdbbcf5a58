// Package catalog discovers the remote snapshot catalog and resolves
// dated snapshot versions to locally cached files.
package catalog

import (
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"sync"
	"time"

	"golang.org/x/net/html"

	"prophet-bnb/config"
	"prophet-bnb/models"
	"prophet-bnb/utils"
)

// UnavailableError reports that the remote catalog index could not be
// reached or parsed.
type UnavailableError struct {
	URL string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("catalog unavailable (%s): %v", e.URL, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// dataFileRe matches snapshot data links of the form
// https://host/{country}/{region}/{city}/{date}/data/{file}.csv.gz
var dataFileRe = regexp.MustCompile(
	`^/([^/]+)/([^/]+)/([^/]+)/(\d{4}-\d{2}-\d{2})/data/(listings|reviews|neighbourhoods)\.csv\.gz$`)

// Directory discovers the country → region → city → date hierarchy of
// available snapshots by scraping the remote index page. The discovered
// tree is memoized for the process lifetime; the index markup is not a
// stable API, so anything that fails to match degrades to "entry not
// found" rather than an error.
type Directory struct {
	indexURL string
	client   *http.Client
	logger   *utils.Logger
	retry    *utils.RetryConfig

	mu   sync.Mutex
	tree models.Catalog
}

// NewDirectory creates a Directory for the configured index URL.
func NewDirectory(cfg *config.Config, logger *utils.Logger) *Directory {
	return &Directory{
		indexURL: cfg.CatalogIndexURL,
		client:   &http.Client{Timeout: time.Duration(cfg.HTTPTimeoutSec) * time.Second},
		logger:   logger,
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			MaxDelay:    30 * time.Second,
			Logger:      logger,
		},
	}
}

// Discover returns the catalog tree, fetching and parsing the index on the
// first call and returning the memoized tree afterwards. force bypasses
// the memo and re-fetches.
func (d *Directory) Discover(force bool) (models.Catalog, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.tree != nil && !force {
		return d.tree, nil
	}

	var doc *html.Node
	err := d.retry.Do("catalog-index", func() error {
		resp, err := d.client.Get(d.indexURL)
		if err != nil {
			return fmt.Errorf("fetch index: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("index returned status %d", resp.StatusCode)
		}

		doc, err = html.Parse(resp.Body)
		if err != nil {
			return fmt.Errorf("parse index: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, &UnavailableError{URL: d.indexURL, Err: err}
	}

	tree := d.buildTree(doc)
	if len(tree) == 0 {
		return nil, &UnavailableError{
			URL: d.indexURL,
			Err: fmt.Errorf("no snapshot links found in index markup"),
		}
	}

	d.tree = tree
	return tree, nil
}

// buildTree walks every anchor in the index document and groups matching
// data links into catalog entries.
func (d *Directory) buildTree(doc *html.Node) models.Catalog {
	base, err := url.Parse(d.indexURL)
	if err != nil {
		base = nil
	}

	tree := make(models.Catalog)
	seen := utils.NewURLSet()
	links := 0

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if href := attrValue(n, "href"); href != "" {
				if d.addLink(tree, seen, base, href) {
					links++
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	d.logger.Debug("[catalog] Index parsed — %d data links, %d countries", links, len(tree))
	return tree
}

// addLink parses one href and, if it is a snapshot data link not seen
// before, records it in the tree. Returns true when the link was consumed.
func (d *Directory) addLink(tree models.Catalog, seen *utils.URLSet, base *url.URL, href string) bool {
	u, err := url.Parse(href)
	if err != nil {
		return false
	}
	if base != nil {
		u = base.ResolveReference(u)
	}

	m := dataFileRe.FindStringSubmatch(u.Path)
	if m == nil {
		return false
	}
	if !seen.Add(u.String()) {
		return false
	}
	country, region, city, date, file := m[1], m[2], m[3], m[4], m[5]

	if tree[country] == nil {
		tree[country] = make(map[string]map[string]*models.CatalogEntry)
	}
	if tree[country][region] == nil {
		tree[country][region] = make(map[string]*models.CatalogEntry)
	}
	entry := tree[country][region][city]
	if entry == nil {
		entry = &models.CatalogEntry{
			Country:  country,
			Region:   region,
			City:     city,
			Versions: make(map[string]models.VersionDescriptor),
		}
		tree[country][region][city] = entry
	}

	version := entry.Versions[date]
	switch file {
	case "listings":
		version.ListingsURL = u.String()
	case "reviews":
		version.ReviewsURL = u.String()
	case "neighbourhoods":
		version.NeighbourhoodsURL = u.String()
	}
	entry.Versions[date] = version

	if date > entry.LatestDate {
		entry.LatestDate = date
	}
	return true
}

func attrValue(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}
