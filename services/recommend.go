package services

import (
	"fmt"
	"sort"

	"prophet-bnb/models"
	"prophet-bnb/utils"
)

// Fixed relative weights of the composite score. They sum to 1, so the
// total stays on the shared 0–10 scale.
const (
	weightPriceFit     = 0.35
	weightRating       = 0.25
	weightReviews      = 0.15
	weightAvailability = 0.15
	weightAmenities    = 0.10
)

// Engine computes composite recommendation scores and ranks listings
// against user preferences. Scoring and ranking are deterministic: the
// same dataset and filter always produce the same ordered output.
type Engine struct {
	logger *utils.Logger
}

// NewEngine creates a recommendation Engine.
func NewEngine(logger *utils.Logger) *Engine {
	return &Engine{logger: logger}
}

// Score fills each listing's total_score in place and returns the slice.
// Every contributing metric is normalized to 0–10 before weighting; a
// missing metric contributes 0. Price-fit measures closeness to the user's
// selected price band, not raw price.
func (e *Engine) Score(listings []models.AugmentedListing, pf models.PreferenceFilter) []models.AugmentedListing {
	band := pf.PriceMode.Band(pf.CustomPriceRange)

	reviewsLo, reviewsHi := intBounds(listings, func(l *models.AugmentedListing) *int { return l.NumReviews })
	amenLo, amenHi := intBounds(listings, func(l *models.AugmentedListing) *int { return l.AmenitiesCount })

	for i := range listings {
		l := &listings[i]

		score := weightPriceFit * priceFitScore(l.Price, band)
		if l.Rating != nil {
			score += weightRating * (*l.Rating * 2)
		}
		if l.NumReviews != nil {
			score += weightReviews * minMaxScore(float64(*l.NumReviews), reviewsLo, reviewsHi)
		}
		if l.Availability365 != nil {
			score += weightAvailability * (float64(*l.Availability365) / 365 * 10)
		}
		if l.AmenitiesCount != nil {
			score += weightAmenities * minMaxScore(float64(*l.AmenitiesCount), amenLo, amenHi)
		}

		l.TotalScore = score
	}

	e.logger.Debug("[recommend] Scored %d listings against %s band [%.0f, %.0f]",
		len(listings), pf.PriceMode, band.Min, band.Max)
	return listings
}

// priceFitScore is 10 inside the band and decays linearly with distance
// from the nearest edge, measured in band widths.
func priceFitScore(price float64, band models.PriceRange) float64 {
	width := band.Max - band.Min
	if width < 1 {
		width = 1
	}

	var dist float64
	switch {
	case price < band.Min:
		dist = band.Min - price
	case price > band.Max:
		dist = price - band.Max
	default:
		return 10
	}

	score := 10 * (1 - dist/width)
	if score < 0 {
		return 0
	}
	return score
}

// minMaxScore normalizes v to 0–10 over the dataset's observed range. A
// degenerate range scores a flat 10 (every row is equally good).
func minMaxScore(v, lo, hi float64) float64 {
	if hi <= lo {
		return 10
	}
	return (v - lo) / (hi - lo) * 10
}

func intBounds(listings []models.AugmentedListing, get func(*models.AugmentedListing) *int) (float64, float64) {
	first := true
	var lo, hi float64
	for i := range listings {
		p := get(&listings[i])
		if p == nil {
			continue
		}
		v := float64(*p)
		if first || v < lo {
			lo = v
		}
		if first || v > hi {
			hi = v
		}
		first = false
	}
	return lo, hi
}

// FilterByPreferences applies the filter's active range predicates and
// returns the surviving subset in input order. A range left at its full
// default span is inactive; rows missing the field for an active filter
// are excluded. An empty result is a valid outcome, not an error.
func (e *Engine) FilterByPreferences(listings []models.AugmentedListing, pf models.PreferenceFilter) []models.AugmentedListing {
	reviewsActive := pf.ReviewsRange != models.DefaultReviewsRange
	starsActive := pf.StarsRange != models.DefaultStarsRange
	availActive := pf.AvailabilityRange != models.DefaultAvailabilityRange
	occupancyActive := pf.Occupancy != models.OccupancyAny
	occupancyBounds := pf.Occupancy.Bounds()

	out := make([]models.AugmentedListing, 0, len(listings))
	for _, l := range listings {
		if reviewsActive && (l.NumReviews == nil || !pf.ReviewsRange.Contains(*l.NumReviews)) {
			continue
		}
		if starsActive && (l.Rating == nil || !pf.StarsRange.Contains(*l.Rating)) {
			continue
		}
		if availActive && (l.Availability365 == nil || !pf.AvailabilityRange.Contains(*l.Availability365)) {
			continue
		}
		if occupancyActive && (l.Accommodates == nil || !occupancyBounds.Contains(*l.Accommodates)) {
			continue
		}
		out = append(out, l)
	}

	e.logger.Debug("[recommend] Preference filter kept %d of %d listings", len(out), len(listings))
	return out
}

// Rank sorts scored listings and returns the top suggestion_count rows.
// Ties break by rating descending, then review count descending, then by
// the row's original ingestion order, so the result is stable.
func (e *Engine) Rank(listings []models.AugmentedListing, pf models.PreferenceFilter) []models.AugmentedListing {
	ranked := append([]models.AugmentedListing{}, listings...)

	sort.SliceStable(ranked, func(a, b int) bool {
		if ranked[a].TotalScore != ranked[b].TotalScore {
			return ranked[a].TotalScore > ranked[b].TotalScore
		}
		ra, rb := floatOr(ranked[a].Rating, -1), floatOr(ranked[b].Rating, -1)
		if ra != rb {
			return ra > rb
		}
		na, nb := intOr(ranked[a].NumReviews, -1), intOr(ranked[b].NumReviews, -1)
		return na > nb
	})

	n := pf.SuggestionCount
	if n <= 0 {
		n = models.DefaultSuggestionCount
	}
	if n > len(ranked) {
		n = len(ranked)
	}
	return ranked[:n]
}

// Justify assembles the human-readable justification for a recommended
// listing from its name, neighbourhood, price and stored reason.
func (e *Engine) Justify(l models.AugmentedListing) string {
	where := ""
	if l.Neighbourhood != nil {
		where = " in " + *l.Neighbourhood
	}
	reason := "Strong overall value across price, reviews and availability."
	if l.Reason != nil {
		reason = *l.Reason
	}
	return fmt.Sprintf("%s%s at $%.0f/night — %s", l.Name, where, l.Price, reason)
}
