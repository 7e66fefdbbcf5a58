package services

import (
	"testing"

	"prophet-bnb/models"
)

func TestSummarizeAverages(t *testing.T) {
	dataset := []models.AugmentedListing{
		{CanonicalListing: models.CanonicalListing{ID: "1", Name: "A", Price: 100,
			Rating: models.FloatPtr(4.0), NumReviews: models.IntPtr(10)}},
		{CanonicalListing: models.CanonicalListing{ID: "2", Name: "B", Price: 200,
			Rating: models.FloatPtr(5.0)}},
		{CanonicalListing: models.CanonicalListing{ID: "3", Name: "C", Price: 60}},
	}

	s := NewAggregator(newTestLogger()).Summarize(dataset, "nightly_rate")

	if s.Listings != 3 {
		t.Errorf("listings: got %d, want 3", s.Listings)
	}
	if s.PriceColumn != "nightly_rate" {
		t.Errorf("price column: got %q", s.PriceColumn)
	}
	if s.AvgPrice == nil || *s.AvgPrice != 120 {
		t.Errorf("avg price: got %v, want 120", s.AvgPrice)
	}
	// Rating averaged over the two rated rows only.
	if s.AvgRating == nil || *s.AvgRating != 4.5 {
		t.Errorf("avg rating: got %v, want 4.5", s.AvgRating)
	}
	// Reviews averaged over the single row that has them.
	if s.AvgReviews == nil || *s.AvgReviews != 10 {
		t.Errorf("avg reviews: got %v, want 10", s.AvgReviews)
	}
}

func TestSummarizeAllNullColumnIsUnavailable(t *testing.T) {
	dataset := []models.AugmentedListing{
		{CanonicalListing: models.CanonicalListing{ID: "1", Name: "A", Price: 100}},
		{CanonicalListing: models.CanonicalListing{ID: "2", Name: "B", Price: 50}},
	}

	s := NewAggregator(newTestLogger()).Summarize(dataset, "price")

	if s.AvgAmenities != nil {
		t.Errorf("all-null amenities should be unavailable, got %v", *s.AvgAmenities)
	}
	if s.AvgAvailability != nil {
		t.Errorf("all-null availability should be unavailable, got %v", *s.AvgAvailability)
	}
}

func TestSummarizeEmptyDataset(t *testing.T) {
	s := NewAggregator(newTestLogger()).Summarize(nil, "price")
	if s.Listings != 0 || s.AvgPrice != nil {
		t.Errorf("empty dataset: got %d listings, avg price %v", s.Listings, s.AvgPrice)
	}
}
