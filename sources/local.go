package sources

import (
	"io"
	"strconv"
	"strings"

	"prophet-bnb/models"
	"prophet-bnb/utils"
)

// LocalUploadSource parses a caller-supplied listings table and an optional
// reviews table, both in-memory streams. When both tables carry their join
// keys (listings "id", reviews "listing_id"), per-listing review counts are
// grouped and merged in as a num_reviews column with left-join semantics:
// listings without matching reviews get a count of 0 and are never dropped.
type LocalUploadSource struct {
	Listings io.Reader
	Reviews  io.Reader // optional
	Label    string    // defaults to "Local CSV Upload"
	Logger   *utils.Logger
}

// Load parses the uploaded tables. A malformed listings table fails with a
// ParseError; a malformed reviews table is a warning and the listings are
// still returned.
func (s *LocalUploadSource) Load() (*models.RecordSet, string, error) {
	label := s.Label
	if label == "" {
		label = "Local CSV Upload"
	}

	if s.Listings == nil {
		return nil, "", &SourceError{Kind: ParseError, Reason: "no listings table supplied"}
	}

	listings, err := readCSV(s.Listings)
	if err != nil {
		return nil, "", &SourceError{Kind: ParseError, Reason: "listings table", Err: err}
	}

	if s.Reviews != nil {
		reviews, err := readCSV(s.Reviews)
		if err != nil {
			s.Logger.Warn("[local] Reviews table unreadable, continuing without review counts: %v", err)
		} else {
			mergeReviewCounts(listings, reviews, s.Logger)
		}
	}

	return listings, label, nil
}

// mergeReviewCounts groups reviews by listing_id and merges the counts into
// the listings table as a num_reviews column. Skipped with a warning when
// either join key is missing.
func mergeReviewCounts(listings, reviews *models.RecordSet, logger *utils.Logger) {
	idCol := findColumn(listings, "id")
	keyCol := findColumn(reviews, "listing_id")
	if idCol < 0 || keyCol < 0 {
		logger.Warn("[local] Join keys missing (listings id: %v, reviews listing_id: %v) — review counts skipped",
			idCol >= 0, keyCol >= 0)
		return
	}

	counts := make(map[string]int, reviews.Len())
	for _, row := range reviews.Rows {
		key := strings.TrimSpace(row[keyCol])
		if key != "" {
			counts[key]++
		}
	}

	values := make([]string, listings.Len())
	for i, row := range listings.Rows {
		// Left join: unmatched listings get an explicit 0.
		values[i] = strconv.Itoa(counts[strings.TrimSpace(row[idCol])])
	}

	if existing := listings.ColumnIndex("num_reviews"); existing >= 0 {
		for i := range listings.Rows {
			listings.Rows[i][existing] = values[i]
		}
	} else {
		listings.AddColumn("num_reviews", values)
	}

	logger.Debug("[local] Merged review counts for %d listings (%d reviews)",
		listings.Len(), reviews.Len())
}

// findColumn matches a column by exact name first, then case-insensitively.
func findColumn(rs *models.RecordSet, name string) int {
	if i := rs.ColumnIndex(name); i >= 0 {
		return i
	}
	for i, c := range rs.Columns {
		if strings.EqualFold(strings.TrimSpace(c), name) {
			return i
		}
	}
	return -1
}
