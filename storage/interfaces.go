package storage

import "prophet-bnb/models"

// ListingWriter is the interface any export backend must satisfy.
type ListingWriter interface {
	WriteListings(listings []models.AugmentedListing) error
	Close() error
}
