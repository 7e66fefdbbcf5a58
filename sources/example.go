package sources

import "prophet-bnb/models"

// ExampleSource serves the built-in demo dataset so the tool works without
// any network or upload. Always succeeds.
type ExampleSource struct{}

// ExampleLabel is the provenance label of the demo dataset.
const ExampleLabel = "Demo Example Data"

// Load returns the demo dataset.
func (ExampleSource) Load() (*models.RecordSet, string, error) {
	return ExampleRecordSet(), ExampleLabel, nil
}

// ExampleRecordSet builds the 10-row demo table used by the landing page
// and the scoring tests.
func ExampleRecordSet() *models.RecordSet {
	rs := models.NewRecordSet(
		"id", "name", "neighbourhood", "room_type", "price",
		"review_scores_rating", "image_url", "num_reviews",
		"availability_365", "amenities_count", "recommendation_reason",
	)

	rows := []struct {
		id, name, hood, room string
		price                string
		rating               string
		reviews, avail, amen string
	}{
		{"1", "Demo Home 1", "Downtown", "Entire home", "120", "4.8", "25", "320", "12"},
		{"2", "Demo Home 2", "Uptown", "Private room", "80", "4.5", "40", "180", "8"},
		{"3", "Demo Home 3", "Central", "Shared room", "45", "4.2", "12", "90", "6"},
		{"4", "Demo Home 4", "Beach", "Entire home", "200", "4.9", "60", "360", "15"},
		{"5", "Demo Home 5", "Suburb", "Private room", "90", "4.0", "10", "200", "7"},
		{"6", "Demo Home 6", "Park", "Entire home", "130", "4.7", "15", "300", "10"},
		{"7", "Demo Home 7", "Museum", "Private room", "60", "4.6", "30", "150", "5"},
		{"8", "Demo Home 8", "Old Town", "Shared room", "30", "3.9", "8", "60", "4"},
		{"9", "Demo Home 9", "Lake", "Entire home", "170", "4.8", "50", "330", "13"},
		{"10", "Demo Home 10", "Market", "Private room", "100", "4.4", "20", "210", "9"},
	}

	for _, r := range rows {
		rs.Append([]string{
			r.id, r.name, r.hood, r.room, r.price, r.rating,
			"https://picsum.photos/200/150?random=" + r.id,
			r.reviews, r.avail, r.amen, "Great reviews",
		})
	}
	return rs
}
