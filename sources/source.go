// Package sources provides the closed set of data-source variants that
// feed the analysis pipeline. Every variant produces a raw RecordSet plus
// a provenance label, so downstream stages stay source-agnostic.
package sources

import (
	"encoding/csv"
	"fmt"
	"io"

	"prophet-bnb/models"
)

// Kind identifies one of the data-source variants.
type Kind int

const (
	KindRemoteSnapshot Kind = iota
	KindLocalUpload
	KindDirectURL
	KindWebScrape
)

func (k Kind) String() string {
	switch k {
	case KindRemoteSnapshot:
		return "remote-snapshot"
	case KindLocalUpload:
		return "local-upload"
	case KindDirectURL:
		return "direct-url"
	case KindWebScrape:
		return "web-scrape"
	default:
		return "unknown"
	}
}

// DataSource produces a raw tabular dataset plus a human-readable
// provenance label describing where the rows came from.
type DataSource interface {
	Load() (*models.RecordSet, string, error)
}

// ErrorKind classifies source failures.
type ErrorKind int

const (
	// ParseError means the source's payload could not be parsed.
	ParseError ErrorKind = iota
	// FetchError means the source could not be retrieved.
	FetchError
	// NoListingsFound means a scrape matched zero listing cards. This is
	// reported, never silently returned as an empty result.
	NoListingsFound
)

func (k ErrorKind) String() string {
	switch k {
	case ParseError:
		return "parse error"
	case FetchError:
		return "fetch error"
	case NoListingsFound:
		return "no listings found"
	default:
		return "source error"
	}
}

// SourceError is the common failure type for all data-source variants.
type SourceError struct {
	Kind   ErrorKind
	Reason string
	Err    error
}

func (e *SourceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *SourceError) Unwrap() error { return e.Err }

// readCSV parses a tabular text stream with a header row into a RecordSet.
// Ragged rows are tolerated and padded or truncated to the header width.
func readCSV(r io.Reader) (*models.RecordSet, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	rs := models.NewRecordSet(header...)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", rs.Len()+1, err)
		}
		rs.Append(row)
	}
	return rs, nil
}
