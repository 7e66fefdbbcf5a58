package models

import (
	"fmt"
	"math"
)

// PriceMode selects the price band the price-fit score is computed against.
type PriceMode int

const (
	PriceBudget PriceMode = iota
	PriceComfort
	PricePremium
	PriceCustom
)

// Predefined price bands, in the single dataset currency.
var (
	budgetBand  = PriceRange{Min: 0, Max: 100}
	comfortBand = PriceRange{Min: 100, Max: 250}
	premiumBand = PriceRange{Min: 250, Max: 10000}
)

func (m PriceMode) String() string {
	switch m {
	case PriceBudget:
		return "Budget"
	case PriceComfort:
		return "Comfort"
	case PricePremium:
		return "Premium"
	case PriceCustom:
		return "Custom Range"
	default:
		return "unknown"
	}
}

// ParsePriceMode maps a user-facing band name to its PriceMode.
func ParsePriceMode(s string) (PriceMode, error) {
	switch s {
	case "Budget", "budget":
		return PriceBudget, nil
	case "Comfort", "comfort":
		return PriceComfort, nil
	case "Premium", "premium":
		return PricePremium, nil
	case "Custom Range", "custom", "Custom":
		return PriceCustom, nil
	default:
		return PriceBudget, fmt.Errorf("unknown price mode %q", s)
	}
}

// Band returns the effective price range for this mode. The custom range is
// used only when the mode is PriceCustom.
func (m PriceMode) Band(custom PriceRange) PriceRange {
	switch m {
	case PriceComfort:
		return comfortBand
	case PricePremium:
		return premiumBand
	case PriceCustom:
		return custom
	default:
		return budgetBand
	}
}

// PriceRange is an inclusive min/max price bound.
type PriceRange struct {
	Min, Max float64
}

// IntRange is an inclusive integer bound.
type IntRange struct {
	Min, Max int
}

// Contains reports whether v lies inside the range.
func (r IntRange) Contains(v int) bool { return v >= r.Min && v <= r.Max }

// FloatRange is an inclusive float bound.
type FloatRange struct {
	Min, Max float64
}

// Contains reports whether v lies inside the range.
func (r FloatRange) Contains(v float64) bool { return v >= r.Min && v <= r.Max }

// OccupancyGroup is the guest-group preference from the sidebar.
type OccupancyGroup int

const (
	OccupancyAny OccupancyGroup = iota
	OccupancySolo
	OccupancyDuo
	OccupancySmallGroup
	OccupancyFamily
	OccupancyLarge
)

func (g OccupancyGroup) String() string {
	switch g {
	case OccupancySolo:
		return "Solo (1)"
	case OccupancyDuo:
		return "Duo (2)"
	case OccupancySmallGroup:
		return "Small group (3-4)"
	case OccupancyFamily:
		return "Family (5-6)"
	case OccupancyLarge:
		return "Large (7+)"
	default:
		return "Any"
	}
}

// ParseOccupancyGroup accepts either the display label or a guest count.
func ParseOccupancyGroup(s string) (OccupancyGroup, error) {
	switch s {
	case "Any", "any", "":
		return OccupancyAny, nil
	case "Solo (1)", "solo", "1":
		return OccupancySolo, nil
	case "Duo (2)", "duo", "2":
		return OccupancyDuo, nil
	case "Small group (3-4)", "small", "3", "4":
		return OccupancySmallGroup, nil
	case "Family (5-6)", "family", "5", "6":
		return OccupancyFamily, nil
	case "Large (7+)", "large", "7":
		return OccupancyLarge, nil
	default:
		return OccupancyAny, fmt.Errorf("unknown occupancy group %q", s)
	}
}

// Bounds returns the inclusive guest-capacity bounds for the group.
func (g OccupancyGroup) Bounds() IntRange {
	switch g {
	case OccupancySolo:
		return IntRange{Min: 1, Max: 1}
	case OccupancyDuo:
		return IntRange{Min: 2, Max: 2}
	case OccupancySmallGroup:
		return IntRange{Min: 3, Max: 4}
	case OccupancyFamily:
		return IntRange{Min: 5, Max: 6}
	case OccupancyLarge:
		return IntRange{Min: 7, Max: math.MaxInt32}
	default:
		return IntRange{Min: 0, Max: math.MaxInt32}
	}
}

// Full default spans for the range filters. A filter left at its full span
// is inactive: it excludes nothing, including rows missing the field.
var (
	DefaultReviewsRange      = IntRange{Min: 0, Max: 1000}
	DefaultStarsRange        = FloatRange{Min: 1.0, Max: 5.0}
	DefaultAvailabilityRange = IntRange{Min: 0, Max: 365}
	DefaultCustomPriceRange  = PriceRange{Min: 0, Max: 10000}
)

// DefaultSuggestionCount matches the original sidebar default.
const DefaultSuggestionCount = 6

// PreferenceFilter carries the user's per-run preferences. It is immutable
// for the duration of one scoring pass.
type PreferenceFilter struct {
	PriceMode        PriceMode
	CustomPriceRange PriceRange

	ReviewsRange      IntRange
	StarsRange        FloatRange
	AvailabilityRange IntRange
	Occupancy         OccupancyGroup

	SuggestionCount int
}

// DefaultPreferenceFilter returns a filter with every range at its full
// span, Budget pricing and the default suggestion count.
func DefaultPreferenceFilter() PreferenceFilter {
	return PreferenceFilter{
		PriceMode:         PriceBudget,
		CustomPriceRange:  DefaultCustomPriceRange,
		ReviewsRange:      DefaultReviewsRange,
		StarsRange:        DefaultStarsRange,
		AvailabilityRange: DefaultAvailabilityRange,
		Occupancy:         OccupancyAny,
		SuggestionCount:   DefaultSuggestionCount,
	}
}
