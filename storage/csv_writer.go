package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"prophet-bnb/models"
)

// csvHeader is the export column order.
var csvHeader = []string{
	"id", "name", "neighbourhood", "room_type", "price", "predicted_price",
	"review_scores_rating", "num_reviews", "availability_365",
	"amenities_count", "accommodates", "host_cluster", "total_score",
	"image_url", "recommendation_reason",
}

// CSVWriter writes the scored dataset to a CSV file for the display layer
// and offline analysis. It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

// WriteListings appends the dataset rows. Optional fields are written as
// empty cells.
func (c *CSVWriter) WriteListings(listings []models.AugmentedListing) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range listings {
		l := &listings[i]
		row := []string{
			l.ID,
			l.Name,
			strOr(l.Neighbourhood),
			strOr(l.RoomType),
			formatFloat(l.Price),
			floatCell(l.PredictedPrice),
			floatCell(l.Rating),
			intCell(l.NumReviews),
			intCell(l.Availability365),
			intCell(l.AmenitiesCount),
			intCell(l.Accommodates),
			intCell(l.HostCluster),
			formatFloat(l.TotalScore),
			strOr(l.ImageURL),
			strOr(l.Reason),
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}

func strOr(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func floatCell(p *float64) string {
	if p == nil {
		return ""
	}
	return formatFloat(*p)
}

func intCell(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
