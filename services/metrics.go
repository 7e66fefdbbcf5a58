package services

import (
	"prophet-bnb/models"
	"prophet-bnb/utils"
)

// Aggregator computes summary statistics over an augmented dataset.
type Aggregator struct {
	logger *utils.Logger
}

// NewAggregator creates an Aggregator with the given logger.
func NewAggregator(logger *utils.Logger) *Aggregator {
	return &Aggregator{logger: logger}
}

// Summarize computes per-column averages over non-null values only. A
// column with no values at all yields a nil average, never a numeric
// artifact. priceColumn is the resolved source name of the price column,
// passed through for downstream consumers.
func (a *Aggregator) Summarize(listings []models.AugmentedListing, priceColumn string) models.MetricsSummary {
	summary := models.MetricsSummary{
		Listings:    len(listings),
		PriceColumn: priceColumn,
	}

	var price, reviews, rating, avail, amen mean
	for i := range listings {
		l := &listings[i]
		price.add(l.Price)
		if l.NumReviews != nil {
			reviews.add(float64(*l.NumReviews))
		}
		if l.Rating != nil {
			rating.add(*l.Rating)
		}
		if l.Availability365 != nil {
			avail.add(float64(*l.Availability365))
		}
		if l.AmenitiesCount != nil {
			amen.add(float64(*l.AmenitiesCount))
		}
	}

	summary.AvgPrice = price.value()
	summary.AvgReviews = reviews.value()
	summary.AvgRating = rating.value()
	summary.AvgAvailability = avail.value()
	summary.AvgAmenities = amen.value()

	a.logger.Debug("[metrics] Summarized %d listings (price column %q)", len(listings), priceColumn)
	return summary
}

// mean accumulates an average over observed values.
type mean struct {
	sum   float64
	count int
}

func (m *mean) add(v float64) {
	m.sum += v
	m.count++
}

// value returns the rounded average, or nil when nothing was observed.
func (m *mean) value() *float64 {
	if m.count == 0 {
		return nil
	}
	return models.FloatPtr(round2(m.sum / float64(m.count)))
}
