package sources

import (
	"fmt"
	"os"
	"strings"

	"prophet-bnb/catalog"
	"prophet-bnb/models"
	"prophet-bnb/utils"
)

// RemoteSnapshotSource loads one dated city snapshot through the snapshot
// cache and joins its files: listings are the base table, per-listing
// review counts are merged from the reviews file, and neighbourhood values
// are normalized against the neighbourhoods file when present.
type RemoteSnapshotSource struct {
	Cache   *catalog.SnapshotCache
	Version models.VersionDescriptor
	City    string
	Date    string

	Force       bool
	URLOverride string

	Logger *utils.Logger
}

// Load resolves the snapshot and returns the joined listings table with
// provenance label "{city} {date}".
func (s *RemoteSnapshotSource) Load() (*models.RecordSet, string, error) {
	files, err := s.Cache.Resolve(s.Version, s.City, s.Date, s.Force, s.URLOverride)
	if err != nil {
		return nil, "", &SourceError{Kind: FetchError, Reason: "snapshot resolve", Err: err}
	}

	listings, err := readCSVFile(files.Listings)
	if err != nil {
		return nil, "", &SourceError{Kind: ParseError, Reason: "listings file", Err: err}
	}

	if files.Reviews != "" {
		reviews, err := readCSVFile(files.Reviews)
		if err != nil {
			s.Logger.Warn("[remote] Reviews file unreadable, continuing without review counts: %v", err)
		} else {
			mergeReviewCounts(listings, reviews, s.Logger)
		}
	}

	if files.Neighbourhoods != "" {
		s.normaliseNeighbourhoods(listings, files.Neighbourhoods)
	}

	return listings, fmt.Sprintf("%s %s", s.City, s.Date), nil
}

// normaliseNeighbourhoods maps neighbourhood values onto the canonical
// casing from the snapshot's neighbourhoods file. Values with no canonical
// match are left as-is.
func (s *RemoteSnapshotSource) normaliseNeighbourhoods(listings *models.RecordSet, path string) {
	hoods, err := readCSVFile(path)
	if err != nil {
		s.Logger.Warn("[remote] Neighbourhoods file unreadable: %v", err)
		return
	}

	nameCol := findColumn(hoods, "neighbourhood")
	if nameCol < 0 {
		return
	}
	canonical := make(map[string]string, hoods.Len())
	for _, row := range hoods.Rows {
		name := strings.TrimSpace(row[nameCol])
		if name != "" {
			canonical[strings.ToLower(name)] = name
		}
	}

	col := findColumn(listings, "neighbourhood")
	if col < 0 {
		return
	}
	for i, row := range listings.Rows {
		if fixed, ok := canonical[strings.ToLower(strings.TrimSpace(row[col]))]; ok {
			listings.Rows[i][col] = fixed
		}
	}
}

func readCSVFile(path string) (*models.RecordSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readCSV(f)
}
