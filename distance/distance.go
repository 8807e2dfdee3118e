package distance

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Func is a function type for distance calculation.
type Func func(a, b []float64) float64

// SquaredL2 calculates the squared L2 (Euclidean) distance between two vectors.
// Assumes vectors are the same length (caller's responsibility).
func SquaredL2(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// L2 calculates the Euclidean distance between two vectors.
func L2(a, b []float64) float64 {
	return floats.Distance(a, b, 2)
}

// Nearest returns the index of the centroid row closest to vec under
// squared L2, and that distance. Ties resolve to the lowest index.
// It returns -1 and +Inf if centroids has no rows.
func Nearest(vec []float64, centroids mat.RawMatrixer) (int, float64) {
	raw := centroids.RawMatrix()
	best := -1
	minDist := math.Inf(1)
	for j := 0; j < raw.Rows; j++ {
		off := j * raw.Stride
		d := SquaredL2(vec, raw.Data[off:off+raw.Cols])
		if d < minDist {
			minDist = d
			best = j
		}
	}
	return best, minDist
}
