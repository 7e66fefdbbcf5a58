package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"prophet-bnb/models"
	"prophet-bnb/utils"
)

// CanonicalizationError reports that zero rows survived required-field
// coercion. Partial row loss is not an error.
type CanonicalizationError struct {
	Reason string
}

func (e *CanonicalizationError) Error() string {
	return "canonicalization failed: " + e.Reason
}

// fieldAliases is the accepted alias table per canonical field. Resolution
// tries an exact match against every alias first, then a case-insensitive
// substring match, in table order, so behavior stays auditable.
var fieldAliases = map[string][]string{
	"id":                    {"id", "listing_id"},
	"name":                  {"name", "listing_name", "title", "listing_title"},
	"price":                 {"price", "nightly_rate", "price_per_night", "rate", "cost"},
	"neighbourhood":         {"neighbourhood", "neighborhood", "neighbourhood_cleansed", "location", "district", "area"},
	"room_type":             {"room_type", "property_type"},
	"review_scores_rating":  {"review_scores_rating", "rating", "stars", "review_score"},
	"num_reviews":           {"num_reviews", "number_of_reviews", "reviews_count", "review_count"},
	"availability_365":      {"availability_365", "availability", "days_available"},
	"amenities_count":       {"amenities_count", "num_amenities", "amenities"},
	"accommodates":          {"accommodates", "guests", "max_guests", "person_capacity"},
	"image_url":             {"image_url", "picture_url", "thumbnail_url", "image"},
	"recommendation_reason": {"recommendation_reason", "reason"},
}

var (
	// priceRegexp captures numeric price values. The sign is part of the
	// match so negative prices coerce as negative and get dropped, instead
	// of surviving with a fabricated positive value.
	priceRegexp = regexp.MustCompile(`-?[\d,]+(?:\.\d+)?`)
	// numberRegexp captures a plain numeric value
	numberRegexp = regexp.MustCompile(`-?\d+(?:\.\d+)?`)
)

// Resolution records how canonicalization mapped the source columns.
type Resolution struct {
	// PriceColumn is the source column treated as "the" price column.
	PriceColumn string
	// Columns maps canonical field → resolved source column.
	Columns map[string]string
	// Dropped counts rows lost to required-field coercion or duplicate IDs.
	Dropped int
}

// Preprocessor normalizes any raw RecordSet into the canonical listing
// schema. Deterministic: the same input always yields the same rows in the
// same order.
type Preprocessor struct {
	logger *utils.Logger
}

// NewPreprocessor creates a Preprocessor with the given logger.
func NewPreprocessor(logger *utils.Logger) *Preprocessor {
	return &Preprocessor{logger: logger}
}

// Normalize coerces a raw RecordSet into canonical listings. Rows failing
// numeric coercion on required fields are dropped, never retained with a
// null; optional fields are left nil on coercion failure. Fails with a
// CanonicalizationError when no rows survive.
func (p *Preprocessor) Normalize(rs *models.RecordSet) ([]models.CanonicalListing, *Resolution, error) {
	res := &Resolution{Columns: make(map[string]string)}

	cols := make(map[string]int, len(fieldAliases))
	for field := range fieldAliases {
		if i := resolveColumn(rs.Columns, field); i >= 0 {
			cols[field] = i
			res.Columns[field] = rs.Columns[i]
		}
	}

	for _, required := range []string{"id", "name", "price"} {
		if _, ok := cols[required]; !ok {
			return nil, nil, &CanonicalizationError{
				Reason: fmt.Sprintf("no column resolves to required field %q", required),
			}
		}
	}
	res.PriceColumn = res.Columns["price"]

	seen := make(map[string]struct{}, rs.Len())
	out := make([]models.CanonicalListing, 0, rs.Len())

	for _, row := range rs.Rows {
		id := strings.TrimSpace(row[cols["id"]])
		if id == "" {
			res.Dropped++
			continue
		}
		if _, dup := seen[id]; dup {
			p.logger.Debug("[preprocess] Duplicate id skipped: %s", id)
			res.Dropped++
			continue
		}

		price, ok := parsePrice(row[cols["price"]])
		if !ok || price < 0 {
			res.Dropped++
			continue
		}

		seen[id] = struct{}{}
		l := models.CanonicalListing{
			ID:    id,
			Name:  normaliseText(row[cols["name"]]),
			Price: price,
		}

		l.Neighbourhood = optionalText(row, cols, "neighbourhood")
		l.RoomType = optionalText(row, cols, "room_type")
		l.ImageURL = optionalText(row, cols, "image_url")
		l.Reason = optionalText(row, cols, "recommendation_reason")

		if v, ok := optionalFloat(row, cols, "review_scores_rating"); ok && v >= 0 && v <= 5 {
			l.Rating = models.FloatPtr(v)
		}
		if v, ok := optionalInt(row, cols, "num_reviews"); ok && v >= 0 {
			l.NumReviews = models.IntPtr(v)
		}
		if v, ok := optionalInt(row, cols, "availability_365"); ok && v >= 0 && v <= 365 {
			l.Availability365 = models.IntPtr(v)
		}
		if v, ok := optionalAmenities(row, cols); ok && v >= 0 {
			l.AmenitiesCount = models.IntPtr(v)
		}
		if v, ok := optionalInt(row, cols, "accommodates"); ok && v > 0 {
			l.Accommodates = models.IntPtr(v)
		}

		out = append(out, l)
	}

	if len(out) == 0 {
		return nil, nil, &CanonicalizationError{
			Reason: fmt.Sprintf("all %d rows failed required-field coercion", rs.Len()),
		}
	}

	p.logger.Info("[preprocess] Canonicalized %d → %d listings (dropped %d), price column %q",
		rs.Len(), len(out), res.Dropped, res.PriceColumn)
	return out, res, nil
}

// resolveColumn finds the column index for a canonical field: exact alias
// match first, then case-insensitive substring match, in alias order.
func resolveColumn(columns []string, field string) int {
	aliases := fieldAliases[field]

	for _, alias := range aliases {
		for i, col := range columns {
			if col == alias {
				return i
			}
		}
	}
	for _, alias := range aliases {
		lower := strings.ToLower(alias)
		for i, col := range columns {
			if strings.Contains(strings.ToLower(col), lower) {
				return i
			}
		}
	}
	return -1
}

// parsePrice extracts a numeric price from raw text, tolerating currency
// symbols and thousands separators.
func parsePrice(raw string) (float64, bool) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	match := priceRegexp.FindString(cleaned)
	if match == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func optionalText(row []string, cols map[string]int, field string) *string {
	i, ok := cols[field]
	if !ok {
		return nil
	}
	v := normaliseText(row[i])
	if v == "" {
		return nil
	}
	return &v
}

func optionalFloat(row []string, cols map[string]int, field string) (float64, bool) {
	i, ok := cols[field]
	if !ok {
		return 0, false
	}
	match := numberRegexp.FindString(strings.ReplaceAll(row[i], ",", ""))
	if match == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(match, 64)
	return v, err == nil
}

func optionalInt(row []string, cols map[string]int, field string) (int, bool) {
	v, ok := optionalFloat(row, cols, field)
	if !ok {
		return 0, false
	}
	return int(v), true
}

// optionalAmenities handles both a plain count and the snapshot format
// where amenities is a bracketed list of quoted names.
func optionalAmenities(row []string, cols map[string]int) (int, bool) {
	i, ok := cols["amenities_count"]
	if !ok {
		return 0, false
	}
	raw := strings.TrimSpace(row[i])
	if raw == "" {
		return 0, false
	}
	if strings.HasPrefix(raw, "[") || strings.HasPrefix(raw, "{") {
		inner := strings.Trim(raw, "[]{}")
		if strings.TrimSpace(inner) == "" {
			return 0, true
		}
		return len(strings.Split(inner, ",")), true
	}
	return optionalInt(row, cols, "amenities_count")
}

// normaliseText strips leading/trailing whitespace and collapses internal
// whitespace.
func normaliseText(s string) string {
	fields := strings.FieldsFunc(strings.TrimSpace(s), func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}
