package distance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestSquaredL2(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float64
		expected float64
	}{
		{"Simple", []float64{1, 2, 3}, []float64{4, 5, 6}, 27},
		{"Zero", []float64{0, 0, 0}, []float64{0, 0, 0}, 0},
		{"Identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 0},
		{"Mixed", []float64{1, -1}, []float64{-1, 1}, 8},
		{"Empty", []float64{}, []float64{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SquaredL2(tt.a, tt.b)
			assert.InDelta(t, tt.expected, got, 1e-12)
		})
	}
}

func TestL2(t *testing.T) {
	assert.InDelta(t, 5.0, L2([]float64{0, 0}, []float64{3, 4}), 1e-12)
}

func TestNearest(t *testing.T) {
	centroids := mat.NewDense(3, 2, []float64{
		0, 0,
		10, 10,
		20, 20,
	})

	j, d := Nearest([]float64{1, 1}, centroids)
	assert.Equal(t, 0, j)
	assert.InDelta(t, 2.0, d, 1e-12)

	j, _ = Nearest([]float64{19, 19}, centroids)
	assert.Equal(t, 2, j)

	t.Run("TieLowestIndex", func(t *testing.T) {
		j, _ := Nearest([]float64{5, 5}, centroids)
		assert.Equal(t, 0, j)

		j, _ = Nearest([]float64{15, 15}, centroids)
		assert.Equal(t, 1, j)
	})

	t.Run("Slice", func(t *testing.T) {
		// A view with a stride larger than the column count.
		sub := centroids.Slice(1, 3, 0, 1).(*mat.Dense)
		j, d := Nearest([]float64{19}, sub)
		assert.Equal(t, 1, j)
		assert.InDelta(t, 1.0, d, 1e-12)
	})

	t.Run("NoCentroids", func(t *testing.T) {
		j, d := Nearest([]float64{1}, &mat.Dense{})
		assert.Equal(t, -1, j)
		assert.True(t, math.IsInf(d, 1))
	})
}
