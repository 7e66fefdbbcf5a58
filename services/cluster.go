package services

import (
	"fmt"
	"math"
	"sort"

	"prophet-bnb/models"
	"prophet-bnb/utils"
)

const (
	defaultClusterCount = 4
	maxKMeansIterations = 25
)

// ClusterModel holds the fitted k-means centroids over standardized host
// features (price, rating, reviews, availability, amenities).
type ClusterModel struct {
	Centroids [][]float64
	Means     []float64
	Stds      []float64
}

// AugmentHostClusters groups listings into host clusters and labels each
// row. Best-effort: skipped when the dataset is too small or has no
// feature variance. Deterministic: centroids are seeded from rows sorted
// by price, not at random.
func AugmentHostClusters(listings []models.AugmentedListing, logger *utils.Logger) (*ClusterModel, StageResult) {
	const stage = "host-clustering"

	k := defaultClusterCount
	if len(listings) < 2*k {
		return nil, StageResult{
			Name: stage, Skipped: true,
			Reason: fmt.Sprintf("need at least %d rows for %d clusters, have %d", 2*k, k, len(listings)),
		}
	}

	points := make([][]float64, len(listings))
	for i := range listings {
		points[i] = clusterFeatures(&listings[i])
	}

	means, stds, ok := standardize(points)
	if !ok {
		return nil, StageResult{
			Name: stage, Skipped: true,
			Reason: "features have zero variance",
		}
	}

	centroids := seedCentroids(points, listings, k)
	labels := make([]int, len(points))

	for iter := 0; iter < maxKMeansIterations; iter++ {
		changed := false
		for i, p := range points {
			best := nearestCentroid(p, centroids)
			if best != labels[i] {
				labels[i] = best
				changed = true
			}
		}

		sums := make([][]float64, k)
		counts := make([]int, k)
		for c := range sums {
			sums[c] = make([]float64, len(points[0]))
		}
		for i, p := range points {
			counts[labels[i]]++
			for d, v := range p {
				sums[labels[i]][d] += v
			}
		}
		for c := 0; c < k; c++ {
			if counts[c] == 0 {
				continue // empty cluster keeps its centroid
			}
			for d := range sums[c] {
				centroids[c][d] = sums[c][d] / float64(counts[c])
			}
		}

		if !changed {
			break
		}
	}

	for i := range listings {
		listings[i].HostCluster = models.IntPtr(labels[i])
	}

	logger.Debug("[features] Clustered %d listings into %d host groups", len(listings), k)
	return &ClusterModel{Centroids: centroids, Means: means, Stds: stds}, StageResult{Name: stage}
}

func clusterFeatures(l *models.AugmentedListing) []float64 {
	return []float64{
		l.Price,
		floatOr(l.Rating, 0),
		float64(intOr(l.NumReviews, 0)),
		float64(intOr(l.Availability365, 0)),
		float64(intOr(l.AmenitiesCount, 0)),
	}
}

// standardize shifts each dimension to zero mean and unit variance in
// place. Returns ok=false when every dimension is constant.
func standardize(points [][]float64) (means, stds []float64, ok bool) {
	n := float64(len(points))
	dims := len(points[0])
	means = make([]float64, dims)
	stds = make([]float64, dims)

	for _, p := range points {
		for d, v := range p {
			means[d] += v
		}
	}
	for d := range means {
		means[d] /= n
	}
	for _, p := range points {
		for d, v := range p {
			diff := v - means[d]
			stds[d] += diff * diff
		}
	}

	anyVariance := false
	for d := range stds {
		stds[d] = math.Sqrt(stds[d] / n)
		if stds[d] > 1e-9 {
			anyVariance = true
		} else {
			stds[d] = 1 // constant dimension contributes nothing
		}
	}
	if !anyVariance {
		return nil, nil, false
	}

	for _, p := range points {
		for d := range p {
			p[d] = (p[d] - means[d]) / stds[d]
		}
	}
	return means, stds, true
}

// seedCentroids picks k evenly spaced rows from the price ordering so
// repeated runs on the same dataset start identically.
func seedCentroids(points [][]float64, listings []models.AugmentedListing, k int) [][]float64 {
	order := make([]int, len(listings))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return listings[order[a]].Price < listings[order[b]].Price
	})

	centroids := make([][]float64, k)
	for c := 0; c < k; c++ {
		idx := order[c*(len(order)-1)/(k-1)]
		centroids[c] = append([]float64{}, points[idx]...)
	}
	return centroids
}

func nearestCentroid(p []float64, centroids [][]float64) int {
	best, bestDist := 0, math.Inf(1)
	for c, centroid := range centroids {
		var dist float64
		for d, v := range p {
			diff := v - centroid[d]
			dist += diff * diff
		}
		if dist < bestDist {
			best, bestDist = c, dist
		}
	}
	return best
}
