package models

// VersionDescriptor identifies exactly one snapshot of one city on one
// date. Immutable value; the optional file URLs may be empty.
type VersionDescriptor struct {
	ListingsURL       string
	ReviewsURL        string
	NeighbourhoodsURL string
}

// CatalogEntry models one city in the remote snapshot catalog: a set of
// dated versions plus the most recent date. Versions is keyed by ISO date
// and is non-empty once the entry has been discovered.
type CatalogEntry struct {
	Country string
	Region  string
	City    string

	Versions   map[string]VersionDescriptor
	LatestDate string
}

// Catalog is the discovered country → region → city hierarchy.
type Catalog map[string]map[string]map[string]*CatalogEntry

// Entry looks up a city entry, or nil if any level is missing.
func (c Catalog) Entry(country, region, city string) *CatalogEntry {
	regions, ok := c[country]
	if !ok {
		return nil
	}
	cities, ok := regions[region]
	if !ok {
		return nil
	}
	return cities[city]
}

// CachedFiles holds local paths to the resolved snapshot files. Listings is
// always set; the optional paths are empty when the file is unavailable.
type CachedFiles struct {
	Listings       string
	Reviews        string
	Neighbourhoods string
}
