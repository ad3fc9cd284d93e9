package analyze

import (
	"math"
	"math/rand/v2"
)

const maxIterations = 300

type partition struct {
	labels    []int
	centroids [][]float64
	inertia   float64
}

// clusterCount is max(2, round(sqrt(n))) capped at n.
func clusterCount(n int) int {
	k := int(math.Round(math.Sqrt(float64(n))))
	if k < 2 {
		k = 2
	}
	if k > n {
		k = n
	}
	return k
}

// kmeans partitions points into k clusters. Each restart seeds with k-means++
// from one generator, so a given seed always yields the same partition. The
// restart with the lowest inertia wins; earlier restarts win ties.
func kmeans(points [][]float64, k int, seed int64, restarts int) partition {
	if restarts < 1 {
		restarts = 1
	}
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))

	best := partition{inertia: math.Inf(1)}
	for r := 0; r < restarts; r++ {
		p := lloyd(points, seedPlusPlus(points, k, rng))
		if p.inertia < best.inertia {
			best = p
		}
	}
	return best
}

// seedPlusPlus picks k initial centroids, each later one with probability
// proportional to its squared distance from the nearest already chosen.
func seedPlusPlus(points [][]float64, k int, rng *rand.Rand) [][]float64 {
	n := len(points)
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, clone(points[rng.IntN(n)]))

	dist := make([]float64, n)
	for i := range points {
		dist[i] = sqDist(points[i], centroids[0])
	}

	for len(centroids) < k {
		total := 0.0
		for _, d := range dist {
			total += d
		}

		next := rng.IntN(n)
		if total > 0 {
			target := rng.Float64() * total
			acc := 0.0
			for i, d := range dist {
				acc += d
				if acc >= target && d > 0 {
					next = i
					break
				}
			}
		}

		c := clone(points[next])
		centroids = append(centroids, c)
		for i := range points {
			if d := sqDist(points[i], c); d < dist[i] {
				dist[i] = d
			}
		}
	}
	return centroids
}

// lloyd alternates assignment and update steps until assignments settle.
// A cluster that loses all its points keeps its previous centroid.
func lloyd(points [][]float64, centroids [][]float64) partition {
	labels := make([]int, len(points))
	for i := range labels {
		labels[i] = -1
	}

	for iter := 0; iter < maxIterations; iter++ {
		changed := false
		for i, p := range points {
			l := nearest(p, centroids)
			if l != labels[i] {
				labels[i] = l
				changed = true
			}
		}
		if !changed {
			break
		}

		dims := len(points[0])
		sums := make([][]float64, len(centroids))
		counts := make([]int, len(centroids))
		for c := range sums {
			sums[c] = make([]float64, dims)
		}
		for i, p := range points {
			l := labels[i]
			counts[l]++
			for d, x := range p {
				sums[l][d] += x
			}
		}
		for c := range centroids {
			if counts[c] == 0 {
				continue
			}
			for d := range sums[c] {
				sums[c][d] /= float64(counts[c])
			}
			centroids[c] = sums[c]
		}
	}

	inertia := 0.0
	for i, p := range points {
		inertia += sqDist(p, centroids[labels[i]])
	}
	return partition{labels: labels, centroids: centroids, inertia: inertia}
}

// nearest returns the index of the closest centroid, lowest index on ties.
func nearest(p []float64, centroids [][]float64) int {
	best, bestDist := 0, math.Inf(1)
	for c, centroid := range centroids {
		if d := sqDist(p, centroid); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

func sqDist(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

func clone(v []float64) []float64 {
	return append([]float64(nil), v...)
}

func cosine64(a, b []float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
