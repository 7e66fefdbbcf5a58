package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"prophet-bnb/models"
)

// PostgresWriter persists the scored dataset to PostgreSQL.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema
// migrations, and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS scored_listings (
			listing_id      TEXT         PRIMARY KEY,
			name            TEXT         NOT NULL,
			neighbourhood   TEXT,
			room_type       TEXT,
			price           NUMERIC(12,2) NOT NULL,
			predicted_price NUMERIC(12,2),
			rating          NUMERIC(4,2),
			num_reviews     INTEGER,
			availability    INTEGER,
			amenities       INTEGER,
			accommodates    INTEGER,
			host_cluster    INTEGER,
			total_score     NUMERIC(6,3) NOT NULL,
			image_url       TEXT,
			reason          TEXT,
			created_at      TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_scored_price   ON scored_listings(price);
		CREATE INDEX IF NOT EXISTS idx_scored_score   ON scored_listings(total_score);
		CREATE INDEX IF NOT EXISTS idx_scored_cluster ON scored_listings(host_cluster);
	`)
	return err
}

// Clear deletes all existing rows from the table.
func (pw *PostgresWriter) Clear() error {
	_, err := pw.db.Exec("DELETE FROM scored_listings")
	if err != nil {
		return fmt.Errorf("postgres: clear: %w", err)
	}
	return nil
}

// WriteListings batch-inserts the dataset, clearing old rows first.
func (pw *PostgresWriter) WriteListings(listings []models.AugmentedListing) error {
	if len(listings) == 0 {
		return nil
	}

	if err := pw.Clear(); err != nil {
		return err
	}

	const batchSize = 50
	for i := 0; i < len(listings); i += batchSize {
		end := i + batchSize
		if end > len(listings) {
			end = len(listings)
		}
		if err := pw.insertBatch(listings[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (pw *PostgresWriter) insertBatch(batch []models.AugmentedListing) error {
	const cols = 15
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*cols)

	for idx := range batch {
		l := &batch[idx]
		base := idx * cols
		placeholders := make([]string, cols)
		for p := range placeholders {
			placeholders[p] = fmt.Sprintf("$%d", base+p+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")
		valueArgs = append(valueArgs,
			l.ID, l.Name, nullStr(l.Neighbourhood), nullStr(l.RoomType),
			l.Price, nullFloat(l.PredictedPrice), nullFloat(l.Rating),
			nullInt(l.NumReviews), nullInt(l.Availability365),
			nullInt(l.AmenitiesCount), nullInt(l.Accommodates),
			nullInt(l.HostCluster), l.TotalScore,
			nullStr(l.ImageURL), nullStr(l.Reason))
	}

	query := fmt.Sprintf(`
		INSERT INTO scored_listings (
			listing_id, name, neighbourhood, room_type, price,
			predicted_price, rating, num_reviews, availability, amenities,
			accommodates, host_cluster, total_score, image_url, reason
		)
		VALUES %s
		ON CONFLICT (listing_id) DO NOTHING
	`, strings.Join(valueStrings, ","))

	_, err := pw.db.Exec(query, valueArgs...)
	return err
}

// Count returns the number of stored rows.
func (pw *PostgresWriter) Count() (int, error) {
	var n int
	if err := pw.db.QueryRow("SELECT COUNT(*) FROM scored_listings").Scan(&n); err != nil {
		return 0, fmt.Errorf("postgres: count: %w", err)
	}
	return n, nil
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

func nullStr(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}
