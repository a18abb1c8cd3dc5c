package ml

import (
	"fmt"
	"math"
	"sort"

	"retailbi/pkg/contracts/domain"
)

// maxKMeansIterations bounds the assignment/update loop.
const maxKMeansIterations = 100

// ClusterAssignment maps one customer to a behavioral cluster. The RFM
// metrics are carried along so the artifact is self-contained.
type ClusterAssignment struct {
	CustomerID string
	Recency    int
	Frequency  int64
	Monetary   float64
	Cluster    int
}

// ClusterRFM runs k-means over the standardized (recency, frequency,
// monetary) columns. Initial centroids are taken at evenly spaced ranks
// of the monetary ordering, so the result is deterministic for a given
// input.
func ClusterRFM(rows []domain.CustomerRFM, k int) ([]ClusterAssignment, error) {
	if k < 2 {
		return nil, fmt.Errorf("cluster count must be at least 2, got %d", k)
	}
	if len(rows) < k {
		return nil, fmt.Errorf("need at least %d customers for %d clusters, got %d", k, k, len(rows))
	}

	points := make([][3]float64, len(rows))
	for i, r := range rows {
		points[i] = [3]float64{float64(r.Recency), float64(r.Frequency), r.Monetary}
	}
	standardize(points)

	// Rank customers by monetary and seed centroids along that axis.
	order := make([]int, len(points))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		if points[order[a]][2] != points[order[b]][2] {
			return points[order[a]][2] < points[order[b]][2]
		}
		return rows[order[a]].CustomerID < rows[order[b]].CustomerID
	})

	centroids := make([][3]float64, k)
	for c := 0; c < k; c++ {
		idx := order[c*(len(order)-1)/(k-1)]
		centroids[c] = points[idx]
	}

	assignments := make([]int, len(points))
	for iter := 0; iter < maxKMeansIterations; iter++ {
		changed := false
		for i, p := range points {
			best := nearestCentroid(p, centroids)
			if assignments[i] != best {
				assignments[i] = best
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}

		var sums [][3]float64 = make([][3]float64, k)
		counts := make([]int, k)
		for i, p := range points {
			c := assignments[i]
			for d := 0; d < 3; d++ {
				sums[c][d] += p[d]
			}
			counts[c]++
		}
		for c := 0; c < k; c++ {
			if counts[c] == 0 {
				continue // empty cluster keeps its centroid
			}
			for d := 0; d < 3; d++ {
				centroids[c][d] = sums[c][d] / float64(counts[c])
			}
		}
	}

	result := make([]ClusterAssignment, len(rows))
	for i, r := range rows {
		result[i] = ClusterAssignment{
			CustomerID: r.CustomerID,
			Recency:    r.Recency,
			Frequency:  r.Frequency,
			Monetary:   r.Monetary,
			Cluster:    assignments[i],
		}
	}
	return result, nil
}

// standardize rescales each column to zero mean and unit variance in
// place. Constant columns are left at zero.
func standardize(points [][3]float64) {
	n := float64(len(points))
	for d := 0; d < 3; d++ {
		var sum float64
		for _, p := range points {
			sum += p[d]
		}
		mean := sum / n

		var sumSq float64
		for _, p := range points {
			diff := p[d] - mean
			sumSq += diff * diff
		}
		std := math.Sqrt(sumSq / n)

		for i := range points {
			if std == 0 {
				points[i][d] = 0
			} else {
				points[i][d] = (points[i][d] - mean) / std
			}
		}
	}
}

func nearestCentroid(p [3]float64, centroids [][3]float64) int {
	best := 0
	bestDist := math.MaxFloat64
	for c, centroid := range centroids {
		var dist float64
		for d := 0; d < 3; d++ {
			diff := p[d] - centroid[d]
			dist += diff * diff
		}
		if dist < bestDist {
			bestDist = dist
			best = c
		}
	}
	return best
}
