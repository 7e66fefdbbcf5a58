package services

import (
	"math"
	"testing"

	"prophet-bnb/models"
)

// syntheticDataset builds rows whose price is an exact linear function of
// the features, so the regression should recover it almost perfectly.
func syntheticDataset(n int) []models.AugmentedListing {
	out := make([]models.AugmentedListing, n)
	for i := 0; i < n; i++ {
		rating := 1 + float64(i%5)*0.5
		reviews := i * 3
		avail := 100 + (i%9)*20
		amen := i % 7
		acc := 1 + i%6

		price := 20 + 12*rating + 0.5*float64(reviews) +
			0.1*float64(avail) + 3*float64(amen) + 5*float64(acc)

		out[i] = models.AugmentedListing{CanonicalListing: models.CanonicalListing{
			ID:              string(rune('a' + i)),
			Name:            "Synthetic",
			Price:           price,
			Rating:          models.FloatPtr(rating),
			NumReviews:      models.IntPtr(reviews),
			Availability365: models.IntPtr(avail),
			AmenitiesCount:  models.IntPtr(amen),
			Accommodates:    models.IntPtr(acc),
		}}
	}
	return out
}

func TestPriceRegressionFitsLinearData(t *testing.T) {
	dataset := syntheticDataset(20)

	model, stage := AugmentPredictedPrice(dataset, newTestLogger())
	if stage.Skipped {
		t.Fatalf("stage unexpectedly skipped: %s", stage.Reason)
	}
	if model == nil {
		t.Fatal("expected a fitted model")
	}

	for i := range dataset {
		if dataset[i].PredictedPrice == nil {
			t.Fatalf("row %d has no predicted price", i)
		}
		diff := math.Abs(*dataset[i].PredictedPrice - dataset[i].Price)
		if diff > 0.05 {
			t.Errorf("row %d: predicted %.2f vs actual %.2f", i,
				*dataset[i].PredictedPrice, dataset[i].Price)
		}
	}
}

func TestPriceRegressionSkipsSmallDataset(t *testing.T) {
	dataset := syntheticDataset(5)

	model, stage := AugmentPredictedPrice(dataset, newTestLogger())
	if !stage.Skipped {
		t.Fatal("expected stage to be skipped on 5 rows")
	}
	if model != nil {
		t.Error("skipped stage should not return a model")
	}
	for i := range dataset {
		if dataset[i].PredictedPrice != nil {
			t.Errorf("row %d was augmented despite the skip", i)
		}
	}
}

func TestPriceRegressionSkipsDegenerateFeatures(t *testing.T) {
	// Every feature identical: the normal equations are singular.
	dataset := make([]models.AugmentedListing, minTrainRows)
	for i := range dataset {
		dataset[i] = models.AugmentedListing{CanonicalListing: models.CanonicalListing{
			ID: string(rune('a' + i)), Name: "Same", Price: 100,
			Rating:     models.FloatPtr(4.0),
			NumReviews: models.IntPtr(10),
		}}
	}

	_, stage := AugmentPredictedPrice(dataset, newTestLogger())
	if !stage.Skipped {
		t.Fatal("expected a skip on degenerate features")
	}
}

func TestHostClusteringLabelsAllRows(t *testing.T) {
	dataset := syntheticDataset(16)

	model, stage := AugmentHostClusters(dataset, newTestLogger())
	if stage.Skipped {
		t.Fatalf("stage unexpectedly skipped: %s", stage.Reason)
	}
	if model == nil || len(model.Centroids) != defaultClusterCount {
		t.Fatal("expected a model with the default cluster count")
	}

	for i := range dataset {
		if dataset[i].HostCluster == nil {
			t.Fatalf("row %d has no cluster label", i)
		}
		if *dataset[i].HostCluster < 0 || *dataset[i].HostCluster >= defaultClusterCount {
			t.Errorf("row %d: label %d out of range", i, *dataset[i].HostCluster)
		}
	}
}

func TestHostClusteringDeterministic(t *testing.T) {
	first := syntheticDataset(16)
	second := syntheticDataset(16)

	AugmentHostClusters(first, newTestLogger())
	AugmentHostClusters(second, newTestLogger())

	for i := range first {
		if *first[i].HostCluster != *second[i].HostCluster {
			t.Fatalf("row %d: labels differ between identical runs", i)
		}
	}
}

func TestHostClusteringSkipsSmallDataset(t *testing.T) {
	dataset := syntheticDataset(5)

	_, stage := AugmentHostClusters(dataset, newTestLogger())
	if !stage.Skipped {
		t.Fatal("expected a skip on 5 rows")
	}
}

func TestSolveLinearSystemSingular(t *testing.T) {
	a := [][]float64{{1, 1}, {2, 2}}
	b := []float64{1, 2}
	if _, ok := solveLinearSystem(a, b); ok {
		t.Error("expected singular system to be rejected")
	}
}

func TestSolveLinearSystem(t *testing.T) {
	// x + y = 3, x - y = 1 → x=2, y=1
	a := [][]float64{{1, 1}, {1, -1}}
	b := []float64{3, 1}
	x, ok := solveLinearSystem(a, b)
	if !ok {
		t.Fatal("system should be solvable")
	}
	if math.Abs(x[0]-2) > 1e-9 || math.Abs(x[1]-1) > 1e-9 {
		t.Errorf("solution: got %v, want [2 1]", x)
	}
}
