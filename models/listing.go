package models

// RecordSet is source-agnostic tabular data as produced by any data source:
// an ordered list of named columns and string-valued rows. No schema is
// assumed beyond "rows are records, columns are named fields".
type RecordSet struct {
	Columns []string
	Rows    [][]string
}

// NewRecordSet creates an empty RecordSet with the given column order.
func NewRecordSet(columns ...string) *RecordSet {
	return &RecordSet{Columns: columns}
}

// Len returns the number of data rows.
func (rs *RecordSet) Len() int { return len(rs.Rows) }

// ColumnIndex returns the position of the named column, or -1.
func (rs *RecordSet) ColumnIndex(name string) int {
	for i, c := range rs.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Append adds a row, padding or truncating it to the column count so every
// row stays aligned with the header.
func (rs *RecordSet) Append(row []string) {
	for len(row) < len(rs.Columns) {
		row = append(row, "")
	}
	rs.Rows = append(rs.Rows, row[:len(rs.Columns)])
}

// AddColumn appends a new column with one value per existing row.
// Values shorter than the row count are padded with empty strings.
func (rs *RecordSet) AddColumn(name string, values []string) {
	rs.Columns = append(rs.Columns, name)
	for i := range rs.Rows {
		v := ""
		if i < len(values) {
			v = values[i]
		}
		rs.Rows[i] = append(rs.Rows[i], v)
	}
}

// CanonicalListing is the normalized row schema every ingested dataset is
// coerced into before scoring. ID, Name and Price are required; pointer
// fields are optional and nil when the source did not provide them.
type CanonicalListing struct {
	ID    string
	Name  string
	Price float64

	Neighbourhood   *string
	RoomType        *string
	Rating          *float64 // review_scores_rating, 0–5
	NumReviews      *int
	Availability365 *int
	AmenitiesCount  *int
	Accommodates    *int
	ImageURL        *string
	Reason          *string // recommendation_reason passthrough, if present
}

// AugmentedListing is a CanonicalListing plus model-derived fields and the
// composite recommendation score. Augmentation never overwrites canonical
// fields.
type AugmentedListing struct {
	CanonicalListing

	PredictedPrice *float64
	HostCluster    *int
	TotalScore     float64
}

// Augment wraps canonical listings into augmented rows, preserving the
// original ingestion order.
func Augment(listings []CanonicalListing) []AugmentedListing {
	out := make([]AugmentedListing, len(listings))
	for i, l := range listings {
		out[i] = AugmentedListing{CanonicalListing: l}
	}
	return out
}

// MetricsSummary holds per-column averages over an augmented dataset.
// Averages are computed over non-null values only; a nil average means the
// column had no values at all.
type MetricsSummary struct {
	Listings        int
	AvgPrice        *float64
	AvgReviews      *float64
	AvgRating       *float64
	AvgAvailability *float64
	AvgAmenities    *float64

	// PriceColumn is the source column canonicalization resolved as "the"
	// price column. Consumers must use this name, not a fixed literal.
	PriceColumn string
}

// StrPtr, FloatPtr and IntPtr are small helpers for building optional fields.
func StrPtr(s string) *string     { return &s }
func FloatPtr(f float64) *float64 { return &f }
func IntPtr(i int) *int           { return &i }
