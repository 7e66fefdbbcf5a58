package services

import (
	"fmt"
	"math"

	"prophet-bnb/models"
	"prophet-bnb/utils"
)

// StageResult reports whether an optional model stage ran or was skipped.
// Skips are an inspectable outcome, never a propagated failure.
type StageResult struct {
	Name    string
	Skipped bool
	Reason  string
}

func (r StageResult) String() string {
	if r.Skipped {
		return fmt.Sprintf("%s: skipped (%s)", r.Name, r.Reason)
	}
	return r.Name + ": ok"
}

// minTrainRows is the smallest dataset the price model will fit on.
const minTrainRows = 12

// priceFeatures extracts the numeric feature vector (without intercept)
// used by both the price model and host clustering. Missing values read
// as 0.
func priceFeatures(l *models.AugmentedListing) []float64 {
	return []float64{
		floatOr(l.Rating, 0),
		float64(intOr(l.NumReviews, 0)),
		float64(intOr(l.Availability365, 0)),
		float64(intOr(l.AmenitiesCount, 0)),
		float64(intOr(l.Accommodates, 0)),
	}
}

// PriceModel is a least-squares linear model over the canonical numeric
// features, trained to predict the nightly price.
type PriceModel struct {
	Weights []float64 // intercept first
}

// Predict returns the model's price estimate for one listing, clamped to
// non-negative.
func (m *PriceModel) Predict(l *models.AugmentedListing) float64 {
	feats := priceFeatures(l)
	v := m.Weights[0]
	for i, f := range feats {
		v += m.Weights[i+1] * f
	}
	return math.Max(0, v)
}

// AugmentPredictedPrice trains the price model on the dataset and fills
// each row's predicted_price. Best-effort: on insufficient or degenerate
// data the stage is skipped and the dataset passes through unchanged.
func AugmentPredictedPrice(listings []models.AugmentedListing, logger *utils.Logger) (*PriceModel, StageResult) {
	const stage = "price-regression"

	if len(listings) < minTrainRows {
		return nil, StageResult{
			Name: stage, Skipped: true,
			Reason: fmt.Sprintf("need at least %d rows, have %d", minTrainRows, len(listings)),
		}
	}

	dims := len(priceFeatures(&listings[0])) + 1
	xtx := make([][]float64, dims)
	for i := range xtx {
		xtx[i] = make([]float64, dims)
	}
	xty := make([]float64, dims)

	for i := range listings {
		feats := append([]float64{1}, priceFeatures(&listings[i])...)
		y := listings[i].Price
		for r := 0; r < dims; r++ {
			for c := 0; c < dims; c++ {
				xtx[r][c] += feats[r] * feats[c]
			}
			xty[r] += feats[r] * y
		}
	}

	weights, ok := solveLinearSystem(xtx, xty)
	if !ok {
		return nil, StageResult{
			Name: stage, Skipped: true,
			Reason: "normal equations are singular (no usable numeric features)",
		}
	}

	model := &PriceModel{Weights: weights}
	for i := range listings {
		listings[i].PredictedPrice = models.FloatPtr(round2(model.Predict(&listings[i])))
	}

	logger.Debug("[features] Price model fitted on %d rows", len(listings))
	return model, StageResult{Name: stage}
}

// solveLinearSystem solves Ax = b by Gaussian elimination with partial
// pivoting. Returns ok=false when the system is singular.
func solveLinearSystem(a [][]float64, b []float64) ([]float64, bool) {
	n := len(b)
	m := make([][]float64, n)
	for i := range m {
		m[i] = append(append([]float64{}, a[i]...), b[i])
	}

	for col := 0; col < n; col++ {
		pivot := col
		for r := col + 1; r < n; r++ {
			if math.Abs(m[r][col]) > math.Abs(m[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(m[pivot][col]) < 1e-10 {
			return nil, false
		}
		m[col], m[pivot] = m[pivot], m[col]

		for r := 0; r < n; r++ {
			if r == col {
				continue
			}
			factor := m[r][col] / m[col][col]
			for c := col; c <= n; c++ {
				m[r][c] -= factor * m[col][c]
			}
		}
	}

	x := make([]float64, n)
	for i := 0; i < n; i++ {
		x[i] = m[i][n] / m[i][i]
	}
	return x, true
}

func floatOr(p *float64, fallback float64) float64 {
	if p == nil {
		return fallback
	}
	return *p
}

func intOr(p *int, fallback int) int {
	if p == nil {
		return fallback
	}
	return *p
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
